package integration

import (
	"errors"
	"fmt"
)

var (
	ErrTransport        = errors.New("connection failed")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// TransportError is a network-level failure (DNS, refused connection,
// timeout) of a single outbound call.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}
