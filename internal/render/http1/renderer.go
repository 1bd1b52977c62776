package http1

import (
	"strconv"
)

const crlf = "\r\n"

// Renderer accumulates the request head line by line. Every line is terminated with CRLF
// right away, so Finish only has to append the blank line.
type Renderer struct {
	buff  []byte
	lines int
}

func NewRenderer(buff []byte) *Renderer {
	return &Renderer{
		buff: buff[:0],
	}
}

// RequestLine appends the request line. The protocol is always HTTP/1.1.
func (r *Renderer) RequestLine(method, url string) {
	r.buff = append(r.buff, method...)
	r.buff = append(r.buff, ' ')
	r.buff = append(r.buff, url...)
	r.buff = append(r.buff, " HTTP/1.1"+crlf...)
	r.lines++
}

func (r *Renderer) Header(name, value string) {
	r.buff = append(r.buff, name...)
	r.buff = append(r.buff, ": "...)
	r.buff = append(r.buff, value...)
	r.buff = append(r.buff, crlf...)
	r.lines++
}

func (r *Renderer) HeaderInt(name string, value int64) {
	r.buff = append(r.buff, name...)
	r.buff = append(r.buff, ": "...)
	r.buff = strconv.AppendInt(r.buff, value, 10)
	r.buff = append(r.buff, crlf...)
	r.lines++
}

// Lines returns the number of lines rendered since the last reset.
func (r *Renderer) Lines() int {
	return r.lines
}

// Finish terminates the head with the blank line and returns it. The returned slice is
// valid until the next Reset.
func (r *Renderer) Finish() []byte {
	r.buff = append(r.buff, crlf...)
	return r.buff
}

func (r *Renderer) Reset() {
	r.buff = r.buff[:0]
	r.lines = 0
}
