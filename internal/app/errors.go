package app

import (
	"errors"
	"fmt"

	"github.com/hyperifyio/shortly/internal/remote"
)

var (
	// ErrTextTooShort means extraction produced less text than the
	// summarizer needs.
	ErrTextTooShort = errors.New("text too short")
	// ErrSuperseded is returned to a request whose result was dropped because
	// a newer request started.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrTokenUnsupported is returned by SetToken for backends that do not
	// take a bearer token.
	ErrTokenUnsupported = errors.New("backend does not accept a token")
)

// ExtractionError reports that no usable text could be obtained for Target.
type ExtractionError struct {
	Target string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Target, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Target, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsRequestFailure reports whether err ended a request without a summary:
// extraction failures, missing credentials and remote service errors.
func IsRequestFailure(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee) || errors.Is(err, remote.ErrMissingCredential) || remote.IsServiceError(err)
}
