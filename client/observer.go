package client

import (
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/internal/parser"
)

// Observer receives the progress of every response on a connection. All the methods are
// called synchronously from inside Connection.ProcessStep, in the order the events occur.
// The ctx is the value passed to Connection.Observe.
//
// Data passed to OnData refers to the read buffer and is only valid until the call returns.
type Observer[C any] interface {
	OnHeaders(ctx C, resp *http.Response)
	OnData(ctx C, resp *http.Response, data []byte)
	OnComplete(ctx C, resp *http.Response)
}

// binding is shared by all the parsers of the connection, so re-registering an observer
// takes effect for responses that are already pending.
type binding[C any] struct {
	observer Observer[C]
	ctx      C
}

var _ parser.Sink = new(binding[any])

func (b *binding[C]) OnHeaders(resp *http.Response) {
	b.observer.OnHeaders(b.ctx, resp)
}

func (b *binding[C]) OnData(resp *http.Response, data []byte) {
	b.observer.OnData(b.ctx, resp, data)
}

func (b *binding[C]) OnComplete(resp *http.Response) {
	b.observer.OnComplete(b.ctx, resp)
}

type nopObserver[C any] struct{}

func (nopObserver[C]) OnHeaders(C, *http.Response)      {}
func (nopObserver[C]) OnData(C, *http.Response, []byte) {}
func (nopObserver[C]) OnComplete(C, *http.Response)     {}
