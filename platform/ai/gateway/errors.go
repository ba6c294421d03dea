package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a chat-completions call failed.
type ErrorKind string

const (
	// KindTransport covers DNS, TLS, connection and timeout failures.
	KindTransport ErrorKind = "transport"
	// KindStatus means the gateway answered with a non-2xx status.
	KindStatus ErrorKind = "status"
	// KindDecode means the body was not a chat-completions response.
	KindDecode ErrorKind = "decode"
	// KindEmpty means the response carried no choices or only blank text.
	KindEmpty ErrorKind = "empty"
)

// CallError is returned by every failed gateway call.
type CallError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *CallError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("llm gateway returned %d: %s", e.StatusCode, e.Body)
	case KindEmpty:
		return "llm gateway returned an empty completion"
	default:
		if e.Err != nil {
			return fmt.Sprintf("llm gateway %s error: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("llm gateway %s error", e.Kind)
	}
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *CallError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CallError
	return errors.As(err, &ce) && ce.Kind == kind
}
