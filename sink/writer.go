package sink

import (
	"io"

	"github.com/indigo-web/hclient/client"
	"github.com/indigo-web/hclient/http"
)

var _ client.Observer[any] = new(Writer[any])

// Writer streams bodies into W as they arrive, never buffering them. A failed write is
// remembered in Err, and the following data is dropped.
type Writer[C any] struct {
	W io.Writer
	// Bytes counts body bytes written across all responses.
	Bytes uint64
	// Completed counts completed responses.
	Completed int
	Err       error
	// Headers, if set, is called once the response headers are ready.
	Headers func(resp *http.Response)
}

func NewWriter[C any](w io.Writer) *Writer[C] {
	return &Writer[C]{W: w}
}

func (w *Writer[C]) OnHeaders(_ C, resp *http.Response) {
	if w.Headers != nil {
		w.Headers(resp)
	}
}

func (w *Writer[C]) OnData(_ C, _ *http.Response, data []byte) {
	if w.Err != nil {
		return
	}

	n, err := w.W.Write(data)
	w.Bytes += uint64(n)
	w.Err = err
}

func (w *Writer[C]) OnComplete(C, *http.Response) {
	w.Completed++
}
