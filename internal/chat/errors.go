package chat

import "errors"

// Error codes for domain errors.
const (
	ErrCodeInvalidInput      = "invalid_input"
	ErrCodeNotFound          = "not_found"
	ErrCodeForbidden         = "forbidden"
	ErrCodeUnknownConnection = "unknown_connection"
	ErrCodeInternal          = "internal"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnknownConnection = errors.New("unknown connection")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// coreErrorFrom maps a use case failure to a wire-safe CoreError.
// Anything outside the domain taxonomy (ledger I/O, for example) is
// reported as a generic internal failure so storage details never
// leak to the caller.
func coreErrorFrom(err error) *CoreError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return coreError(ErrCodeInvalidInput, err.Error())
	case errors.Is(err, ErrNotFound):
		return coreError(ErrCodeNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return coreError(ErrCodeForbidden, err.Error())
	case errors.Is(err, ErrUnknownConnection):
		return coreError(ErrCodeUnknownConnection, err.Error())
	default:
		return coreError(ErrCodeInternal, "internal error")
	}
}
