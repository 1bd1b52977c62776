package parser

import "github.com/indigo-web/hclient/http"

// Parser is a general interface for every response parser. A parser handles exactly one
// response and is discarded as soon as the response completes.
type Parser interface {
	// Consume feeds the parser with data, returning how many bytes were used. The number may
	// be less than len(data) only if the response completed, leaving the rest for the next
	// response on the same connection.
	Consume(data []byte) (n int, err error)
	// ConnectionClosed notifies the parser that the peer has closed the connection.
	ConnectionClosed() error
	Response() *http.Response
	Completed() bool
}

// Sink receives parser events. They are invoked synchronously and in-order, from inside
// Consume or ConnectionClosed.
type Sink interface {
	OnHeaders(resp *http.Response)
	OnData(resp *http.Response, data []byte)
	OnComplete(resp *http.Response)
}

// Event is what a single parsing step may produce.
type Event struct {
	Kind EventKind
	// Data is only set for EventData. It refers to the input slice, so it's valid until
	// the input is overwritten.
	Data []byte
}

type EventKind uint8

const (
	EventNone EventKind = iota
	EventHeaders
	EventData
	EventComplete
)

func (e EventKind) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventHeaders:
		return "headers"
	case EventData:
		return "data"
	case EventComplete:
		return "complete"
	default:
		return "unknown"
	}
}
