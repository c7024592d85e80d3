package gameapi

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport means no usable response arrived: the connection failed,
	// timed out or the context ended.
	ErrTransport = errors.New("game service unreachable")
	// ErrMalformed means the service answered 2xx with a body that did not decode.
	ErrMalformed = errors.New("malformed game service response")
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("game service %s %s: status=%d body=%s", e.Method, e.Path, e.Code, e.Body)
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
