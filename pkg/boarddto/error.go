package boarddto

// Error codes carried in DomainError.Code.
const (
	CodeNotFound      = "not_found"
	CodeIllegalMove   = "illegal_move"
	CodeNotYourTurn   = "not_your_turn"
	CodeInvalidSquare = "invalid_square"
	CodeInvalidFEN    = "invalid_fen"
	CodeBadRequest    = "bad_request"
	CodeConflict      = "conflict"
	CodeInternal      = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "board service error"
}
