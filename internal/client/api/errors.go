package api

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure the way the presentation layer needs to
// distinguish them: no response at all, a 4xx rejection, a 5xx failure, or an
// unparseable body.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindClient
	KindServer
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a classified request failure. Message holds the server-supplied
// error text verbatim when one was present (4xx responses), otherwise a
// generic description.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// NewError builds a classified failure; cause may be nil.
func NewError(kind Kind, status int, message string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, cause: cause}
}

// KindOf returns the classification of err, or 0 when err is not an api error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// MessageOf returns the server-supplied message carried by err, or err's own
// text when it is not an api error. Handy for display.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
