package client

import (
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/indigo-web/hclient/config"
	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/internal/parser"
	"github.com/indigo-web/hclient/internal/parser/http1"
	render "github.com/indigo-web/hclient/internal/render/http1"
	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/hclient/transport"
	"github.com/indigo-web/utils/buffer"
	"github.com/indigo-web/utils/strcomp"
)

// Connection is a single HTTP/1.x connection to a host. It has no goroutines of its own:
// requests are written synchronously by the sending methods, while responses progress only
// inside ProcessStep, which the caller must invoke in a loop until ResponsesPending
// reports false.
//
// A Connection must not be used concurrently.
type Connection[C any] struct {
	host   string
	port   uint16
	cfg    *config.Config
	dialer transport.Dialer
	logger *slog.Logger
	client transport.Client
	sink   *binding[C]
	// building is set between InitRequest and SendHeaders.
	building bool
	renderer *render.Renderer
	// queue holds parsers of responses yet to complete, in the order requests were sent.
	queue []parser.Parser
	// arrested is the protocol error the connection has stopped on.
	arrested error
}

// New returns a connection to the host, which is established lazily on the first send.
// Host may be either a literal address or a name.
func New[C any](host string, port uint16) *Connection[C] {
	return &Connection[C]{
		host:     host,
		port:     port,
		cfg:      config.Default(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sink:     &binding[C]{observer: nopObserver[C]{}},
		renderer: render.NewRenderer(nil),
	}
}

// Tune replaces the default config. Must be called before the connection is established.
func (c *Connection[C]) Tune(cfg *config.Config) *Connection[C] {
	c.cfg = cfg
	return c
}

// WithDialer overrides the default TCP dialer.
func (c *Connection[C]) WithDialer(dialer transport.Dialer) *Connection[C] {
	c.dialer = dialer
	return c
}

func (c *Connection[C]) Logger(logger *slog.Logger) *Connection[C] {
	c.logger = logger.With("host", c.host, "port", c.port)
	return c
}

// Observe registers the observer along with the context passed back into every call.
// It may be called at any time, including between steps with responses pending. A nil
// observer discards all the events.
func (c *Connection[C]) Observe(observer Observer[C], ctx C) *Connection[C] {
	if observer == nil {
		observer = nopObserver[C]{}
	}

	c.sink.observer, c.sink.ctx = observer, ctx
	return c
}

// SendRequest composes and sends the whole request at once. If body is non-nil and no
// Content-Length header is supplied, it is added automatically.
func (c *Connection[C]) SendRequest(method, url string, headers []kv.Pair, body []byte) error {
	if err := c.InitRequest(method, url); err != nil {
		return err
	}

	if body != nil && !hasHeader(headers, "content-length") {
		if err := c.AddHeaderInt("Content-Length", int64(len(body))); err != nil {
			return err
		}
	}

	for _, header := range headers {
		if err := c.AddHeader(header.Key, header.Value); err != nil {
			return err
		}
	}

	if err := c.SendHeaders(); err != nil {
		return err
	}

	if body != nil {
		return c.Send(body)
	}

	return nil
}

// InitSocket establishes the connection, if it isn't yet.
func (c *Connection[C]) InitSocket() error {
	if c.client != nil {
		return nil
	}

	dialer := c.dialer
	if dialer == nil {
		dialer = transport.NewTCP(c.cfg.NET)
	}

	client, err := dialer.Dial(c.host, c.port)
	if err != nil {
		c.logger.Debug("dial failed", "err", err)
		return err
	}

	c.logger.Debug("connected", "remote", client.Remote())
	c.client = client

	return nil
}

// InitRequest starts composing a new request. It fails if the previous one is still being
// composed, regardless of whether earlier responses have arrived. The response is enqueued
// right away and is discarded along with all the others if sending fails.
func (c *Connection[C]) InitRequest(method, url string) error {
	if c.building {
		return errors.ErrRequestInProgress
	}

	c.building = true
	response := http.NewResponse(method, kv.NewPrealloc(c.cfg.Headers.Prealloc))
	line := buffer.NewBuffer[byte](c.cfg.Headers.LineSize.Default, c.cfg.Headers.LineSize.Maximal)
	c.queue = append(c.queue, http1.NewParser(response, line, c.sink))

	c.renderer.RequestLine(method, url)
	c.renderer.Header("Host", c.host)
	c.renderer.Header("Accept-Encoding", "identity")

	return nil
}

func (c *Connection[C]) AddHeader(name, value string) error {
	if !c.building {
		return errors.ErrNotBuilding
	}

	c.renderer.Header(name, value)
	return nil
}

func (c *Connection[C]) AddHeaderInt(name string, value int64) error {
	if !c.building {
		return errors.ErrNotBuilding
	}

	c.renderer.HeaderInt(name, value)
	return nil
}

// SendHeaders terminates the request head and sends it. After that, a new request may be
// initialized, even though the body of the current one may still be sent via Send.
func (c *Connection[C]) SendHeaders() error {
	if !c.building {
		return errors.ErrNotBuilding
	}

	head := c.renderer.Finish()
	c.building = false
	err := c.Send(head)
	c.renderer.Reset()

	return err
}

// Send writes the data entirely, establishing the connection if needed. A failure is
// unrecoverable: the connection is torn down, discarding all pending responses.
func (c *Connection[C]) Send(data []byte) error {
	if err := c.InitSocket(); err != nil {
		c.CleanUp()
		return err
	}

	if err := c.client.Write(data); err != nil {
		c.logger.Debug("write failed", "err", err)
		c.CleanUp()
		return err
	}

	c.logger.Debug("sent", "bytes", len(data))
	return nil
}

// ProcessStep makes a single bounded step: waits for the socket for at most the poll
// timeout, reads whatever is available and feeds it to pending responses. It returns
// immediately if no responses are pending.
//
// If the server closes the connection, the connection is torn down. The returned error
// is nil if the response being received could legally end on close. A failing read tears
// the connection down as well. A protocol error, in contrast, leaves the connection as is,
// but every further step returns the same error until CleanUp.
func (c *Connection[C]) ProcessStep() error {
	if c.arrested != nil {
		return c.arrested
	}

	if len(c.queue) == 0 || c.client == nil {
		return nil
	}

	data, err := c.client.Read()
	switch {
	case stderrors.Is(err, io.EOF):
		err = c.queue[0].ConnectionClosed()
		c.logger.Debug("connection closed by peer", "dropped", len(c.queue)-1, "err", err)
		c.CleanUp()
		return err
	case err != nil:
		c.logger.Debug("read failed", "err", err)
		c.CleanUp()
		return err
	case len(data) == 0:
		return nil
	}

	for len(data) > 0 && len(c.queue) > 0 {
		head := c.queue[0]
		n, err := head.Consume(data)
		data = data[n:]
		if err != nil {
			c.logger.Debug("malformed response", "err", err)
			c.arrested = err
			return err
		}

		if head.Completed() {
			c.queue[0] = nil
			c.queue = c.queue[1:]
			c.logger.Debug(
				"response completed",
				"code", head.Response().Code,
				"bytes", head.Response().BytesRead,
				"pending", len(c.queue),
			)
		}
	}

	if len(data) > 0 {
		c.logger.Warn("discarding unsolicited data", "bytes", len(data))
	}

	return nil
}

// CleanUp closes the connection and discards all pending responses without completing
// them. The connection may be used again afterward. It's safe to call it multiple times.
func (c *Connection[C]) CleanUp() {
	if c.client != nil {
		_ = c.client.Close()
		c.client = nil
		c.logger.Debug("connection closed")
	}

	clear(c.queue)
	c.queue = c.queue[:0]
	c.building = false
	c.renderer.Reset()
	c.arrested = nil
}

// ResponsesPending reports whether there are responses yet to complete.
func (c *Connection[C]) ResponsesPending() bool {
	return len(c.queue) > 0
}

func hasHeader(headers []kv.Pair, name string) bool {
	for _, header := range headers {
		if strcomp.EqualFold(header.Key, name) {
			return true
		}
	}

	return false
}
