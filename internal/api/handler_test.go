package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/rules"
	"github.com/park285/cheese-board/internal/service/board"
	"github.com/park285/cheese-board/pkg/boarddto"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	svc := board.NewService(
		board.Config{SessionTTL: time.Hour, HistoryLimit: 20, EnPassant: rules.EnPassantLegacy, Workers: 2},
		board.NewMemoryStore(time.Hour),
		board.NewMemoryRepository(),
		zap.NewNop(),
	)
	return NewHandler(svc, cat, zap.NewNop())
}

func do(t *testing.T, h *Handler, method, uri, body string) *fasthttp.RequestCtx {
	t.Helper()
	var rc fasthttp.RequestCtx
	rc.Request.Header.SetMethod(method)
	rc.Request.SetRequestURI(uri)
	if body != "" {
		rc.Request.Header.SetContentType("application/json")
		rc.Request.SetBodyString(body)
	}
	h.Handle(&rc)
	return &rc
}

func decode[T any](t *testing.T, rc *fasthttp.RequestCtx) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rc.Response.Body(), &v); err != nil {
		t.Fatalf("decode %s: %v", rc.Response.Body(), err)
	}
	return v
}

func createSession(t *testing.T, h *Handler, fen string) boarddto.SessionState {
	t.Helper()
	body := ""
	if fen != "" {
		body = `{"fen":"` + fen + `"}`
	}
	rc := do(t, h, http.MethodPost, "/sessions", body)
	if rc.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("create status = %d body=%s", rc.Response.StatusCode(), rc.Response.Body())
	}
	return decode[boarddto.SessionState](t, rc)
}

func TestHealthz(t *testing.T) {
	rc := do(t, newHandler(t), http.MethodGet, "/healthz", "")
	if rc.Response.StatusCode() != fasthttp.StatusOK || string(rc.Response.Body()) != "ok" {
		t.Fatalf("healthz = %d %q", rc.Response.StatusCode(), rc.Response.Body())
	}
}

func TestCreateAndGetSession(t *testing.T) {
	h := newHandler(t)
	st := createSession(t, h, "")
	if st.Turn != "white" || len(st.Diagram) != 8 || st.Diagram[0] != "rnbqkbnr" || len(st.Squares) != 32 {
		t.Fatalf("state = %+v", st)
	}

	rc := do(t, h, http.MethodGet, "/sessions/"+st.ID, "")
	got := decode[boarddto.SessionState](t, rc)
	if got.ID != st.ID || got.FEN != st.FEN {
		t.Fatalf("get = %+v", got)
	}

	rc = do(t, h, http.MethodGet, "/sessions/missing", "")
	if rc.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("missing status = %d", rc.Response.StatusCode())
	}
	if e := decode[boarddto.DomainError](t, rc); e.Code != boarddto.CodeNotFound || e.Message != "session not found" {
		t.Fatalf("error body = %+v", e)
	}
}

func TestCreateRejectsBadFEN(t *testing.T) {
	rc := do(t, newHandler(t), http.MethodPost, "/sessions", `{"fen":"not a fen"}`)
	if rc.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d", rc.Response.StatusCode())
	}
	if e := decode[boarddto.DomainError](t, rc); e.Code != boarddto.CodeInvalidFEN {
		t.Fatalf("code = %q", e.Code)
	}
}

func TestSelectAndCommit(t *testing.T) {
	h := newHandler(t)
	st := createSession(t, h, "")

	rc := do(t, h, http.MethodGet, "/sessions/"+st.ID+"/moves?square=g1", "")
	sel := decode[boarddto.Selection](t, rc)
	if sel.Piece != "knight" || len(sel.Destinations) != 2 || !sel.Moves[0].Stay {
		t.Fatalf("selection = %+v", sel)
	}
	if sel.Description != "g1: knight (white)" {
		t.Fatalf("description = %q", sel.Description)
	}

	rc = do(t, h, http.MethodPost, "/sessions/"+st.ID+"/moves", `{"from":"g1","to":"f3"}`)
	if rc.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("commit status = %d body=%s", rc.Response.StatusCode(), rc.Response.Body())
	}
	res := decode[boarddto.CommitResponse](t, rc)
	if res.Move != "g1f3" || res.State.Turn != "black" || res.Message != "g1f3 played, black to move" {
		t.Fatalf("commit = %+v", res)
	}

	rc = do(t, h, http.MethodPost, "/sessions/"+st.ID+"/moves", `{"from":"f3","to":"e5"}`)
	if rc.Response.StatusCode() != fasthttp.StatusConflict {
		t.Fatalf("wrong side status = %d", rc.Response.StatusCode())
	}
	if e := decode[boarddto.DomainError](t, rc); e.Message != "it is black's turn" {
		t.Fatalf("wrong side message = %q", e.Message)
	}

	rc = do(t, h, http.MethodPost, "/sessions/"+st.ID+"/moves", `{"from":"b8","to":"b6"}`)
	if rc.Response.StatusCode() != fasthttp.StatusUnprocessableEntity {
		t.Fatalf("illegal status = %d", rc.Response.StatusCode())
	}

	rc = do(t, h, http.MethodPost, "/sessions/"+st.ID+"/moves", `{"from":`)
	if rc.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("malformed status = %d", rc.Response.StatusCode())
	}

	rc = do(t, h, http.MethodGet, "/sessions/"+st.ID+"/history", "")
	hist := decode[boarddto.HistoryResponse](t, rc)
	if len(hist.Moves) != 1 || hist.Moves[0].Move != "g1f3" || hist.Moves[0].Piece != "knight" {
		t.Fatalf("history = %+v", hist)
	}
}

func TestSelectInvalidSquare(t *testing.T) {
	h := newHandler(t)
	st := createSession(t, h, "")
	rc := do(t, h, http.MethodGet, "/sessions/"+st.ID+"/moves?square=q1", "")
	if rc.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d", rc.Response.StatusCode())
	}
	if e := decode[boarddto.DomainError](t, rc); e.Message != "invalid square q1" {
		t.Fatalf("message = %q", e.Message)
	}
}

func TestThreatEndpoint(t *testing.T) {
	h := newHandler(t)
	st := createSession(t, h, "4k3/8/8/8/8/8/8/r3K3 w - - 0 1")
	rc := do(t, h, http.MethodGet, "/sessions/"+st.ID+"/threats?square=e1", "")
	rep := decode[boarddto.ThreatResponse](t, rc)
	if !rep.Attacked || rep.Message != "e1 is attacked by black" {
		t.Fatalf("threat = %+v", rep)
	}
	if !st.InCheck {
		t.Fatalf("state should report check")
	}
}

func TestCandidatesEndpoint(t *testing.T) {
	h := newHandler(t)
	st := createSession(t, h, "")
	rc := do(t, h, http.MethodGet, "/sessions/"+st.ID+"/candidates", "")
	resp := decode[boarddto.CandidatesResponse](t, rc)
	if resp.Turn != "white" || len(resp.Moves) != 16 || len(resp.Moves["b1"]) != 2 {
		t.Fatalf("candidates = %+v", resp)
	}
}

func TestBoardPNG(t *testing.T) {
	h := newHandler(t)
	st := createSession(t, h, "")
	rc := do(t, h, http.MethodGet, "/sessions/"+st.ID+"/board.png?square=e2", "")
	if rc.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", rc.Response.StatusCode())
	}
	if ct := string(rc.Response.Header.ContentType()); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.HasPrefix(string(rc.Response.Body()), "\x89PNG") {
		t.Fatalf("body is not a PNG")
	}
}

func TestDeleteSession(t *testing.T) {
	h := newHandler(t)
	st := createSession(t, h, "")
	rc := do(t, h, http.MethodDelete, "/sessions/"+st.ID, "")
	if rc.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Fatalf("delete status = %d", rc.Response.StatusCode())
	}
	rc = do(t, h, http.MethodGet, "/sessions/"+st.ID, "")
	if rc.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("after delete status = %d", rc.Response.StatusCode())
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newHandler(t)
	if rc := do(t, h, http.MethodGet, "/nope", ""); rc.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status = %d", rc.Response.StatusCode())
	}
	if rc := do(t, h, http.MethodPut, "/sessions", ""); rc.Response.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rc.Response.StatusCode())
	}
}
