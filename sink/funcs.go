package sink

import (
	"github.com/indigo-web/hclient/client"
	"github.com/indigo-web/hclient/http"
)

var _ client.Observer[any] = Funcs[any]{}

// Funcs adapts plain functions into an observer. Any of them may be nil.
type Funcs[C any] struct {
	Headers  func(ctx C, resp *http.Response)
	Data     func(ctx C, resp *http.Response, data []byte)
	Complete func(ctx C, resp *http.Response)
}

func (f Funcs[C]) OnHeaders(ctx C, resp *http.Response) {
	if f.Headers != nil {
		f.Headers(ctx, resp)
	}
}

func (f Funcs[C]) OnData(ctx C, resp *http.Response, data []byte) {
	if f.Data != nil {
		f.Data(ctx, resp, data)
	}
}

func (f Funcs[C]) OnComplete(ctx C, resp *http.Response) {
	if f.Complete != nil {
		f.Complete(ctx, resp)
	}
}
