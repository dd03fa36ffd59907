// Package api exposes board sessions over HTTP with fasthttp.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/adapter/boardpresenter"
	"github.com/park285/cheese-board/internal/domain"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/rules"
	"github.com/park285/cheese-board/internal/service/board"
	"github.com/park285/cheese-board/pkg/boarddto"
)

// BoardService is the part of board.Service the handler needs.
type BoardService interface {
	Create(ctx context.Context, fen string) (*board.Session, error)
	Get(ctx context.Context, id string) (*board.Session, error)
	Delete(ctx context.Context, id string) error
	Select(ctx context.Context, id, square string) (*board.Selection, error)
	Threat(ctx context.Context, id, square string) (*board.ThreatReport, error)
	Commit(ctx context.Context, id, from, to string) (*board.CommitResult, error)
	History(ctx context.Context, id string, limit int) ([]*domain.MoveRecord, error)
	Candidates(ctx context.Context, id string) (map[rules.Position][]rules.Move, error)
	Render(ctx context.Context, id, square string) ([]byte, error)
	SideInCheck(sess *board.Session) bool
}

type Handler struct {
	svc     BoardService
	fmt     *boardpresenter.Formatter
	logger  *zap.Logger
	timeout time.Duration
}

func NewHandler(svc BoardService, cat *msgcat.Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, fmt: boardpresenter.NewFormatter(cat), logger: logger.Named("api"), timeout: 10 * time.Second}
}

// Handle routes one request. Paths:
//
//	GET    /healthz
//	POST   /sessions
//	GET    /sessions/{id}
//	DELETE /sessions/{id}
//	GET    /sessions/{id}/moves?square=e2
//	POST   /sessions/{id}/moves
//	GET    /sessions/{id}/candidates
//	GET    /sessions/{id}/threats?square=e1
//	GET    /sessions/{id}/history?limit=20
//	GET    /sessions/{id}/board.png?square=e2
func (h *Handler) Handle(rc *fasthttp.RequestCtx) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.route(ctx, rc)

	h.logger.Debug("http_request",
		zap.ByteString("method", rc.Method()),
		zap.ByteString("path", rc.Path()),
		zap.Int("status", rc.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (h *Handler) route(ctx context.Context, rc *fasthttp.RequestCtx) {
	parts := strings.Split(strings.Trim(string(rc.Path()), "/"), "/")
	method := string(rc.Method())

	switch {
	case len(parts) == 1 && parts[0] == "healthz":
		rc.SetStatusCode(fasthttp.StatusOK)
		rc.SetBodyString("ok")
		return
	case parts[0] != "sessions":
		h.writeError(rc, fasthttp.StatusNotFound, boarddto.DomainError{Code: boarddto.CodeNotFound, Message: "no such route"})
		return
	}

	switch len(parts) {
	case 1:
		if method == fasthttp.MethodPost {
			h.createSession(ctx, rc)
			return
		}
	case 2:
		switch method {
		case fasthttp.MethodGet:
			h.getSession(ctx, rc, parts[1])
			return
		case fasthttp.MethodDelete:
			h.deleteSession(ctx, rc, parts[1])
			return
		}
	case 3:
		id := parts[1]
		switch {
		case parts[2] == "moves" && method == fasthttp.MethodGet:
			h.selectSquare(ctx, rc, id)
			return
		case parts[2] == "moves" && method == fasthttp.MethodPost:
			h.commitMove(ctx, rc, id)
			return
		case parts[2] == "candidates" && method == fasthttp.MethodGet:
			h.candidates(ctx, rc, id)
			return
		case parts[2] == "threats" && method == fasthttp.MethodGet:
			h.threat(ctx, rc, id)
			return
		case parts[2] == "history" && method == fasthttp.MethodGet:
			h.history(ctx, rc, id)
			return
		case parts[2] == "board.png" && method == fasthttp.MethodGet:
			h.renderBoard(ctx, rc, id)
			return
		}
	}
	h.writeError(rc, fasthttp.StatusMethodNotAllowed, boarddto.DomainError{Code: boarddto.CodeBadRequest, Message: "unsupported method or route"})
}

func (h *Handler) createSession(ctx context.Context, rc *fasthttp.RequestCtx) {
	var req boarddto.CreateSessionRequest
	if body := rc.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.writeError(rc, fasthttp.StatusBadRequest, boarddto.DomainError{Code: boarddto.CodeBadRequest, Message: "malformed JSON body"})
			return
		}
	}
	sess, err := h.svc.Create(ctx, req.FEN)
	if err != nil {
		h.fail(rc, err, nil)
		return
	}
	h.writeJSON(rc, fasthttp.StatusCreated, h.sessionState(sess))
}

func (h *Handler) getSession(ctx context.Context, rc *fasthttp.RequestCtx, id string) {
	sess, err := h.svc.Get(ctx, id)
	if err != nil {
		h.fail(rc, err, nil)
		return
	}
	h.writeJSON(rc, fasthttp.StatusOK, h.sessionState(sess))
}

func (h *Handler) deleteSession(ctx context.Context, rc *fasthttp.RequestCtx, id string) {
	if err := h.svc.Delete(ctx, id); err != nil {
		h.fail(rc, err, nil)
		return
	}
	rc.SetStatusCode(fasthttp.StatusNoContent)
}

func (h *Handler) selectSquare(ctx context.Context, rc *fasthttp.RequestCtx, id string) {
	square := string(rc.QueryArgs().Peek("square"))
	sel, err := h.svc.Select(ctx, id, square)
	if err != nil {
		h.fail(rc, err, map[string]any{"Square": square})
		return
	}
	out := boardpresenter.ToDTOSelection(sel)
	out.Description = h.fmt.Describe(out)
	h.writeJSON(rc, fasthttp.StatusOK, out)
}

func (h *Handler) commitMove(ctx context.Context, rc *fasthttp.RequestCtx, id string) {
	var req boarddto.CommitRequest
	if err := json.Unmarshal(rc.PostBody(), &req); err != nil {
		h.writeError(rc, fasthttp.StatusBadRequest, boarddto.DomainError{Code: boarddto.CodeBadRequest, Message: "malformed JSON body"})
		return
	}
	res, err := h.svc.Commit(ctx, id, req.From, req.To)
	if err != nil {
		data := map[string]any{"Move": req.From + req.To, "Square": req.From + " " + req.To}
		if errors.Is(err, board.ErrNotYourTurn) {
			if sess, gerr := h.svc.Get(ctx, id); gerr == nil {
				data["Turn"] = sess.Turn.String()
			}
		}
		h.fail(rc, err, data)
		return
	}
	resp := boardpresenter.ToDTOCommit(res, h.svc.SideInCheck(res.Session))
	resp.Message = h.fmt.Committed(resp)
	h.writeJSON(rc, fasthttp.StatusOK, resp)
}

func (h *Handler) candidates(ctx context.Context, rc *fasthttp.RequestCtx, id string) {
	sess, err := h.svc.Get(ctx, id)
	if err != nil {
		h.fail(rc, err, nil)
		return
	}
	all, err := h.svc.Candidates(ctx, id)
	if err != nil {
		h.fail(rc, err, nil)
		return
	}
	resp := boardpresenter.ToDTOCandidates(sess.Turn, all)
	h.writeJSON(rc, fasthttp.StatusOK, resp)
}

func (h *Handler) threat(ctx context.Context, rc *fasthttp.RequestCtx, id string) {
	square := string(rc.QueryArgs().Peek("square"))
	rep, err := h.svc.Threat(ctx, id, square)
	if err != nil {
		h.fail(rc, err, map[string]any{"Square": square})
		return
	}
	resp := boardpresenter.ToDTOThreat(rep)
	resp.Message = h.fmt.Threat(resp)
	h.writeJSON(rc, fasthttp.StatusOK, resp)
}

func (h *Handler) history(ctx context.Context, rc *fasthttp.RequestCtx, id string) {
	limit, err := rc.QueryArgs().GetUint("limit")
	if err != nil {
		limit = 0
	}
	recs, err := h.svc.History(ctx, id, limit)
	if err != nil {
		h.fail(rc, err, nil)
		return
	}
	h.writeJSON(rc, fasthttp.StatusOK, boardpresenter.ToDTOHistory(id, recs))
}

func (h *Handler) renderBoard(ctx context.Context, rc *fasthttp.RequestCtx, id string) {
	square := string(rc.QueryArgs().Peek("square"))
	img, err := h.svc.Render(ctx, id, square)
	if err != nil {
		h.fail(rc, err, map[string]any{"Square": square})
		return
	}
	rc.SetStatusCode(fasthttp.StatusOK)
	rc.SetContentType("image/png")
	rc.SetBody(img)
}

func (h *Handler) sessionState(sess *board.Session) *boarddto.SessionState {
	return boardpresenter.ToDTOState(sess, h.svc.SideInCheck(sess))
}

func (h *Handler) render(key string, data any, fallback string) string {
	return h.fmt.Message(key, data, fallback)
}
