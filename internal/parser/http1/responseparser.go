package http1

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/http/method"
	"github.com/indigo-web/hclient/http/proto"
	"github.com/indigo-web/hclient/http/status"
	"github.com/indigo-web/hclient/internal/hexconv"
	"github.com/indigo-web/hclient/internal/parser"
	"github.com/indigo-web/hclient/internal/strutil"
	"github.com/indigo-web/utils/buffer"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

var _ parser.Parser = &Parser{}

// maxChunkLengthDigits sets the implicit limit of a single chunk length to 4GiB, which
// is supposedly should be enough.
const maxChunkLengthDigits = 8

// Parser is a resumable HTTP/1.x response parser. Data may be fed in arbitrary pieces, the
// result is always the same as if the whole response was fed at once.
type Parser struct {
	state    state
	response *http.Response
	// line persists among calls, so a line split between reads is kept here until its LF
	// arrives.
	line *buffer.Buffer[byte]
	sink parser.Sink
}

// NewParser returns a parser filling the response. Sink may be nil, in which case events
// are discarded.
func NewParser(response *http.Response, line *buffer.Buffer[byte], sink parser.Sink) *Parser {
	if sink == nil {
		sink = nopSink{}
	}

	return &Parser{
		state:    statusLine{},
		response: response,
		line:     line,
		sink:     sink,
	}
}

func (p *Parser) Response() *http.Response {
	return p.response
}

func (p *Parser) Phase() Phase {
	return p.state.phase()
}

func (p *Parser) Completed() bool {
	_, ok := p.state.(complete)
	return ok
}

// Consume feeds the data, dispatching every produced event into the sink. Returns the number
// of used bytes, which is less than len(data) only if the response is completed.
func (p *Parser) Consume(data []byte) (n int, err error) {
	for !p.Completed() {
		used, event, err := p.Next(data[n:])
		n += used
		if err != nil {
			return n, err
		}

		if event.Kind == parser.EventNone {
			break
		}

		p.dispatch(event)
	}

	return n, nil
}

// Next makes a single parsing step, consuming data until an event is produced or the data
// is exhausted. No sink is called from here, so driving the parser only via Next leaves
// dispatching up to the caller.
func (p *Parser) Next(data []byte) (n int, event parser.Event, err error) {
	for {
		switch s := p.state.(type) {
		case complete:
			return n, event, nil
		case body:
			if s.sized && s.left == 0 {
				p.finish()
				return n, parser.Event{Kind: parser.EventComplete}, nil
			}

			if n == len(data) {
				return n, event, nil
			}

			chunk := data[n:]
			if s.sized && uint64(len(chunk)) > s.left {
				chunk = chunk[:s.left]
			}

			if s.sized {
				s.left -= uint64(len(chunk))
				p.state = s
			}

			p.response.BytesRead += uint64(len(chunk))

			return n + len(chunk), parser.Event{Kind: parser.EventData, Data: chunk}, nil
		case chunkBody:
			if n == len(data) {
				return n, event, nil
			}

			chunk := data[n:]
			if uint64(len(chunk)) > s.left {
				chunk = chunk[:s.left]
			}

			s.left -= uint64(len(chunk))
			if s.left == 0 {
				p.state = chunkComplete{}
			} else {
				p.state = s
			}

			p.response.BytesRead += uint64(len(chunk))

			return n + len(chunk), parser.Event{Kind: parser.EventData, Data: chunk}, nil
		default:
			if n == len(data) {
				return n, event, nil
			}

			lf := bytes.IndexByte(data[n:], '\n')
			if lf == -1 {
				if !p.line.Append(data[n:]...) {
					return len(data), event, errors.ErrLineTooLong
				}

				return len(data), event, nil
			}

			if !p.line.Append(data[n : n+lf]...) {
				return n + lf + 1, event, errors.ErrLineTooLong
			}

			n += lf + 1
			event, err = p.processLine(uf.B2S(rstripCR(p.line.Finish())))
			p.line.Clear()
			if err != nil || event.Kind != parser.EventNone {
				return n, event, err
			}
		}
	}
}

// ConnectionClosed completes a response, whose body is delimited by the connection close.
// Otherwise, the close is premature and is reported as an error.
func (p *Parser) ConnectionClosed() error {
	if s, ok := p.state.(body); ok && !s.sized {
		p.finish()
		p.sink.OnComplete(p.response)
		return nil
	}

	return fmt.Errorf("%w (while reading %s)", errors.ErrPrematureClose, p.Phase())
}

func (p *Parser) dispatch(event parser.Event) {
	switch event.Kind {
	case parser.EventHeaders:
		p.sink.OnHeaders(p.response)
	case parser.EventData:
		p.sink.OnData(p.response, event.Data)
	case parser.EventComplete:
		p.sink.OnComplete(p.response)
	}
}

// processLine handles a completed line. The line refers to the line buffer, so it must be
// copied if stored.
func (p *Parser) processLine(line string) (parser.Event, error) {
	switch s := p.state.(type) {
	case statusLine:
		return parser.Event{}, p.processStatusLine(line)
	case header:
		return p.processHeader(s, line)
	case chunkLength:
		return parser.Event{}, p.processChunkLength(line)
	case chunkComplete:
		p.state = chunkLength{}
		return parser.Event{}, nil
	case trailer:
		// trailer field lines aren't supported. The first line after the last chunk,
		// whether empty or not, completes the response.
		p.finish()
		return parser.Event{Kind: parser.EventComplete}, nil
	default:
		panic(fmt.Sprintf("BUG: response parser: line in %s state", p.Phase()))
	}
}

func (p *Parser) processStatusLine(line string) error {
	version, rest := strutil.CutSpaces(strutil.LStripSpaces(line))
	code, reason := strutil.CutSpaces(rest)

	value, err := strconv.ParseUint(code, 10, 16)
	if err != nil || !status.Code(value).Valid() {
		return fmt.Errorf("%w: %q", errors.ErrMalformedStatusLine, line)
	}

	protocol := proto.FromToken(version)
	if protocol == proto.Unknown {
		return fmt.Errorf("%w: %q", errors.ErrMalformedVersion, version)
	}

	p.response.Protocol = protocol
	p.response.Code = status.Code(value)
	p.response.Reason = status.Status(strings.Clone(reason))
	p.state = header{}

	return nil
}

func (p *Parser) processHeader(s header, line string) (parser.Event, error) {
	switch {
	case len(line) == 0:
		p.commitHeader(s.current)

		// interim response, the real status line follows
		if p.response.Code == status.Continue {
			p.state = statusLine{}
			return parser.Event{}, nil
		}

		return p.initBody()
	case strutil.IsSpace(line[0]):
		s.current += " " + strutil.LStripSpace(line)
		p.state = s
	default:
		p.commitHeader(s.current)
		p.state = header{current: strings.Clone(line)}
	}

	return parser.Event{}, nil
}

func (p *Parser) commitHeader(raw string) {
	if len(raw) == 0 {
		return
	}

	name, value, _ := strings.Cut(raw, ":")
	p.response.Headers.Set(strings.ToLower(name), strutil.LStripWS(value))
}

func (p *Parser) initBody() (parser.Event, error) {
	resp := p.response
	resp.AutoClose = autoClose(resp)
	resp.ContentLength = -1
	resp.Chunked = false

	if resp.Code.BodyForbidden() || method.IsHead(resp.Method) {
		resp.ContentLength = 0
	} else if te, found := resp.Headers.Get("transfer-encoding"); found && strcomp.EqualFold(te, "chunked") {
		resp.Chunked = true
	} else if value, found := resp.Headers.Get("content-length"); found {
		length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || length < 0 {
			return parser.Event{}, fmt.Errorf("%w: %q", errors.ErrBadContentLength, value)
		}

		resp.ContentLength = length
	}

	switch {
	case resp.Chunked:
		p.state = chunkLength{}
	case resp.ContentLength == -1:
		// the body lasts until the server closes the connection
		resp.AutoClose = true
		p.state = body{}
	default:
		p.state = body{left: uint64(resp.ContentLength), sized: true}
	}

	return parser.Event{Kind: parser.EventHeaders}, nil
}

func (p *Parser) processChunkLength(line string) error {
	length, ok := hexconv.ParseUint(line, maxChunkLengthDigits)
	if !ok {
		return fmt.Errorf("%w: %q", errors.ErrBadChunk, line)
	}

	if length == 0 {
		p.state = trailer{}
	} else {
		p.state = chunkBody{left: length}
	}

	return nil
}

func (p *Parser) finish() {
	p.state = complete{}
	p.response.Completed = true
}

// autoClose reports whether the server is going to close the connection after the response,
// judging by headers only.
func autoClose(resp *http.Response) bool {
	if resp.Protocol == proto.HTTP10 {
		return !resp.Headers.Has("keep-alive")
	}

	conn, found := resp.Headers.Get("connection")
	return found && strcomp.EqualFold(conn, "close")
}

func rstripCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
	}

	return b
}

type nopSink struct{}

func (nopSink) OnHeaders(*http.Response)      {}
func (nopSink) OnData(*http.Response, []byte) {}
func (nopSink) OnComplete(*http.Response)     {}
