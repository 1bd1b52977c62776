package testutil

import (
	"strconv"

	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/utils/strcomp"
)

// Response describes a response to be serialized into its wire form.
type Response struct {
	// Protocol defaults to HTTP/1.1
	Protocol string
	Code     int
	Reason   string
	Headers  []kv.Pair
	Body     string
	// ChunkSize, if positive, makes the body chunked, split into chunks of at most
	// that size. Otherwise, Content-Length is added unless already present.
	ChunkSize int
}

func SerializeResponse(response Response) string {
	var buff []byte

	protocol := response.Protocol
	if len(protocol) == 0 {
		protocol = "HTTP/1.1"
	}

	buff = append(buff, protocol...)
	buff = space(buff)
	buff = strconv.AppendInt(buff, int64(response.Code), 10)
	buff = space(buff)
	buff = append(buff, response.Reason...)
	buff = crlf(buff)

	for _, h := range response.Headers {
		buff = header(buff, h)
	}

	if response.ChunkSize > 0 {
		buff = header(buff, kv.Pair{Key: "Transfer-Encoding", Value: "chunked"})
		buff = crlf(buff)

		return string(chunked(buff, response.Body, response.ChunkSize))
	}

	if !hasHeader(response.Headers, "content-length") {
		buff = header(buff, kv.Pair{
			Key:   "Content-Length",
			Value: strconv.Itoa(len(response.Body)),
		})
	}

	buff = crlf(buff)
	buff = append(buff, response.Body...)

	return string(buff)
}

func chunked(b []byte, body string, size int) []byte {
	for len(body) > 0 {
		chunk := body[:min(size, len(body))]
		body = body[len(chunk):]
		b = strconv.AppendUint(b, uint64(len(chunk)), 16)
		b = crlf(b)
		b = append(b, chunk...)
		b = crlf(b)
	}

	b = append(b, '0')
	return crlf(crlf(b))
}

func hasHeader(headers []kv.Pair, name string) bool {
	for _, h := range headers {
		if strcomp.EqualFold(h.Key, name) {
			return true
		}
	}

	return false
}

func space(b []byte) []byte {
	return append(b, ' ')
}

func crlf(b []byte) []byte {
	return append(b, '\r', '\n')
}

func header(b []byte, h kv.Pair) []byte {
	b = append(b, h.Key...)
	b = colonsp(b)
	b = append(b, h.Value...)

	return crlf(b)
}

func colonsp(b []byte) []byte {
	return append(b, ':', ' ')
}
