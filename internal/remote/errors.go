package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned before any network call when the
	// backend needs a token and none was supplied.
	ErrMissingCredential = errors.New("remote summarizer: missing credential")
	// ErrUnrecognizedShape means the response body decoded but matched none
	// of the accepted summary shapes.
	ErrUnrecognizedShape = errors.New("remote summarizer: unrecognized response shape")
	// ErrNotConfigured is returned when no backend is set up.
	ErrNotConfigured = errors.New("remote summarizer: not configured")
)

// Backend names recorded in ServiceError.
const (
	BackendHuggingFace = "huggingface"
	BackendChat        = "chat"
)

// ServiceError covers everything that went wrong after a request was
// attempted: transport failures (StatusCode 0), non-2xx responses and bodies
// that could not be decoded.
type ServiceError struct {
	Backend    string
	StatusCode int
	// Body is a bounded prefix of the response body, for logs.
	Body string
	Err  error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Backend, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Backend, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v", e.Backend, e.Err)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsServiceError reports whether err is, or wraps, a *ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
