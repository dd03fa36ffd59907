package api

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-board/internal/fenboard"
	"github.com/park285/cheese-board/internal/service/board"
	"github.com/park285/cheese-board/pkg/boarddto"
)

type errorMapping struct {
	target error
	status int
	code   string
	msgKey string
	retry  bool
}

var errorMappings = []errorMapping{
	{board.ErrSessionNotFound, fasthttp.StatusNotFound, boarddto.CodeNotFound, "error.not_found", false},
	{board.ErrInvalidSquare, fasthttp.StatusBadRequest, boarddto.CodeInvalidSquare, "error.invalid_square", false},
	{fenboard.ErrInvalidFEN, fasthttp.StatusBadRequest, boarddto.CodeInvalidFEN, "", false},
	{board.ErrNotYourTurn, fasthttp.StatusConflict, boarddto.CodeNotYourTurn, "error.not_your_turn", false},
	{board.ErrIllegalMove, fasthttp.StatusUnprocessableEntity, boarddto.CodeIllegalMove, "error.illegal_move", false},
	{board.ErrConflict, fasthttp.StatusConflict, boarddto.CodeConflict, "", true},
}

// fail maps a service error to a status and DomainError body. data feeds the catalog
// template; a template that cannot render falls back to the error text.
func (h *Handler) fail(rc *fasthttp.RequestCtx, err error, data map[string]any) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := err.Error()
		if m.msgKey != "" {
			msg = h.render(m.msgKey, data, msg)
		}
		h.writeError(rc, m.status, boarddto.DomainError{Code: m.code, Message: msg, Retryable: m.retry})
		return
	}
	h.logger.Error("request_failed", zap.ByteString("path", rc.Path()), zap.Error(err))
	h.writeError(rc, fasthttp.StatusInternalServerError, boarddto.DomainError{Code: boarddto.CodeInternal, Message: "internal error", Retryable: true})
}

func (h *Handler) writeError(rc *fasthttp.RequestCtx, status int, e boarddto.DomainError) {
	h.writeJSON(rc, status, e)
}

func (h *Handler) writeJSON(rc *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode_response", zap.Error(err))
		rc.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	rc.SetStatusCode(status)
	rc.SetContentType("application/json; charset=utf-8")
	rc.SetBody(body)
}
