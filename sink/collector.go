package sink

import (
	"strings"

	"github.com/indigo-web/hclient/client"
	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/http/status"
	"github.com/indigo-web/hclient/kv"
	json "github.com/json-iterator/go"
)

var ErrNotJSON = errors.NewProtocolError("response body is not JSON")

// Result is a completed response along with its whole body.
type Result struct {
	Code      status.Code
	Reason    status.Status
	Headers   *kv.Storage
	Body      []byte
	AutoClose bool
}

// JSON decodes the body into the model. Responses declaring a Content-Type other than
// JSON are refused with ErrNotJSON.
func (r *Result) JSON(model any) error {
	if contentType, found := r.Headers.Get("content-type"); found && !strings.Contains(contentType, "json") {
		return ErrNotJSON
	}

	iterator := json.ConfigDefault.BorrowIterator(r.Body)
	iterator.ReadVal(model)
	err := iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	return err
}

// MaxBodyPrealloc caps the body buffer allocated upfront for a response with known length.
// The rest grows as the data arrives.
const MaxBodyPrealloc = 64 * 1024

var _ client.Observer[any] = new(Collector[any])

// Collector buffers every response entirely. Results are appended in the order responses
// complete, which is the order requests were sent.
type Collector[C any] struct {
	Results []*Result
	current *Result
}

func NewCollector[C any]() *Collector[C] {
	return new(Collector[C])
}

func (c *Collector[C]) OnHeaders(_ C, resp *http.Response) {
	c.current = &Result{
		Code:    resp.Code,
		Reason:  resp.Reason,
		Headers: resp.Headers.Clone(),
	}

	if resp.ContentLength > 0 {
		c.current.Body = make([]byte, 0, min(resp.ContentLength, MaxBodyPrealloc))
	}
}

func (c *Collector[C]) OnData(_ C, _ *http.Response, data []byte) {
	c.current.Body = append(c.current.Body, data...)
}

func (c *Collector[C]) OnComplete(_ C, resp *http.Response) {
	c.current.AutoClose = resp.AutoClose
	c.Results = append(c.Results, c.current)
	c.current = nil
}

// Last returns the most recently completed result, or nil if there are none.
func (c *Collector[C]) Last() *Result {
	if len(c.Results) == 0 {
		return nil
	}

	return c.Results[len(c.Results)-1]
}
