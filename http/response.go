package http

import (
	"github.com/indigo-web/hclient/http/proto"
	"github.com/indigo-web/hclient/http/status"
	"github.com/indigo-web/hclient/kv"
)

// Response is the queryable side of a response being received. It's filled by the parser
// as bytes arrive, so fields are only meaningful as of the moment of the callback they
// are inspected from: headers are complete starting from the headers-ready notification,
// BytesRead and Completed are updated with every data chunk.
type Response struct {
	// Method of the request this response answers. Consulted to decide whether a body
	// may follow (responses to HEAD never carry one).
	Method   string
	Protocol proto.Proto
	Code     status.Code
	Reason   status.Status
	// Headers hold a single value per name; a repeated header overrides the earlier one.
	// Names are stored lower-cased.
	Headers *kv.Storage
	// ContentLength is -1 when the length isn't known in advance, that is the body is
	// either chunked or delimited by connection close.
	ContentLength int64
	Chunked       bool
	// BytesRead counts body bytes delivered so far (chunked framing excluded).
	BytesRead uint64
	// AutoClose reports whether the server is going to close the connection after this
	// response.
	AutoClose bool
	Completed bool
}

func NewResponse(method string, headers *kv.Storage) *Response {
	return &Response{
		Method:        method,
		Headers:       headers,
		ContentLength: -1,
	}
}

// Header returns the value of the header, looked up case-insensitively.
func (r *Response) Header(name string) (value string, found bool) {
	return r.Headers.Get(name)
}
