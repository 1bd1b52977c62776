package transport

import (
	stderrors "errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/indigo-web/hclient/errors"
)

type Client interface {
	// Read waits at most for the poll timeout and returns whatever arrived. Both values
	// are nil if the socket wasn't readable in time. The end of the stream is reported as
	// io.EOF, every other failure as a transport error.
	Read() ([]byte, error)
	// Write sends the whole data or fails with a transport error.
	Write([]byte) error
	Remote() net.Addr
	Close() error
}

type client struct {
	conn         net.Conn
	buff         []byte
	pollTimeout  time.Duration
	writeTimeout time.Duration
}

// NewClient wraps the conn. The buff is used for every read, so data returned by Read
// is valid only until the next call.
func NewClient(conn net.Conn, pollTimeout, writeTimeout time.Duration, buff []byte) Client {
	return &client{
		conn:         conn,
		buff:         buff,
		pollTimeout:  pollTimeout,
		writeTimeout: writeTimeout,
	}
}

func (c *client) Read() ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.pollTimeout)); err != nil {
		return nil, errors.NewTransportError("poll", err)
	}

	n, err := c.conn.Read(c.buff)
	switch {
	case n > 0:
		// the data is delivered first, a possible error will repeat on the next read
		return c.buff[:n], nil
	case err == nil:
		return nil, nil
	case stderrors.Is(err, os.ErrDeadlineExceeded):
		return nil, nil
	case stderrors.Is(err, io.EOF):
		return nil, io.EOF
	default:
		return nil, errors.NewTransportError("recv", err)
	}
}

func (c *client) Write(b []byte) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return errors.NewTransportError("send", err)
		}
	}

	// net.Conn.Write returns a non-nil error whenever the data wasn't sent entirely
	for len(b) > 0 {
		n, err := c.conn.Write(b)
		if err != nil {
			return errors.NewTransportError("send", err)
		}

		b = b[n:]
	}

	return nil
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Close() error {
	return c.conn.Close()
}
