package dummy

import (
	"io"
	"net"

	"github.com/indigo-web/hclient/transport"
)

var _ transport.Client = new(Client)

// Client returns the data it was initialised with, piece by piece, and reports io.EOF
// once it runs out of them. A nil piece simulates a socket that isn't readable yet. All
// the written data is tracked, making it thereby a universal mock suitable for most of
// the tests.
type Client struct {
	closed  bool
	loop    bool
	pointer   int
	written   []byte
	data      [][]byte
	fail      error
	writeFail error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed {
		return nil, io.EOF
	}

	if c.pointer >= len(c.data) {
		if !c.loop || len(c.data) == 0 {
			if c.fail != nil {
				return nil, c.fail
			}

			return nil, io.EOF
		}

		c.pointer = 0
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Write(p []byte) error {
	if c.writeFail != nil {
		return c.writeFail
	}

	c.written = append(c.written, p...)
	return nil
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closed = true
	return nil
}

// LoopReads makes the client start over instead of reporting io.EOF.
func (c *Client) LoopReads() *Client {
	c.loop = true
	return c
}

// FailWith makes the read after the last piece return err instead of io.EOF.
func (c *Client) FailWith(err error) *Client {
	c.fail = err
	return c
}

// FailWritesWith makes every write return err. Nothing is journaled then.
func (c *Client) FailWritesWith(err error) *Client {
	c.writeFail = err
	return c
}

func (c *Client) Closed() bool {
	return c.closed
}

func (c *Client) Written() string {
	return string(c.written)
}

// Dialer hands out the same client on every dial, or fails with Err if set.
type Dialer struct {
	Client *Client
	Err    error
	Dials  int
}

func NewDialer(client *Client) *Dialer {
	return &Dialer{Client: client}
}

func (d *Dialer) Dial(string, uint16) (transport.Client, error) {
	d.Dials++
	if d.Err != nil {
		return nil, d.Err
	}

	return d.Client, nil
}
