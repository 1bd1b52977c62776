package errors

import (
	"errors"
)

// Kind classifies every error the client raises. Sequencing errors (misuse of the request
// builder) are reported as Protocol, as they are caller-protocol violations.
type Kind uint8

const (
	Transport Kind = iota + 1
	Protocol
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Protocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// TransportError is raised when one of the socket primitives fails. Op names the failing
// operation: resolve, connect, send, recv or poll.
type TransportError struct {
	Op  string
	Err error
}

func NewTransportError(op string, err error) error {
	return &TransportError{
		Op:  op,
		Err: err,
	}
}

func (t *TransportError) Error() string {
	if t.Err == nil {
		return t.Op
	}

	return t.Op + ": " + t.Err.Error()
}

func (t *TransportError) Unwrap() error {
	return t.Err
}

// ProtocolError is a malformed message or a misuse of the connection. Values are compared
// by identity of the sentinels below, so wrap them with %w when adding context.
type ProtocolError struct {
	Message string
}

func NewProtocolError(message string) error {
	return ProtocolError{Message: message}
}

func (p ProtocolError) Error() string {
	return p.Message
}

var (
	ErrMalformedStatusLine = NewProtocolError("malformed status line")
	ErrMalformedVersion    = NewProtocolError("malformed protocol version")
	ErrBadChunk            = NewProtocolError("malformed chunk length")
	ErrBadContentLength    = NewProtocolError("malformed content length")
	ErrLineTooLong         = NewProtocolError("line exceeds the maximal allowed length")
	ErrPrematureClose      = NewProtocolError("connection closed before the response was complete")

	ErrRequestInProgress = NewProtocolError("request already started")
	ErrNotBuilding       = NewProtocolError("no request is being built")
)

// KindOf reports the kind of err, looking through wrapping. The second value is false
// for errors that didn't originate from the client.
func KindOf(err error) (Kind, bool) {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return Transport, true
	}

	var protocolErr ProtocolError
	if errors.As(err, &protocolErr) {
		return Protocol, true
	}

	return 0, false
}
