package transport

import (
	"net"
	"strconv"

	"github.com/indigo-web/hclient/config"
	"github.com/indigo-web/hclient/errors"
)

// Dialer establishes connections. It is called lazily, once per connection lifetime.
type Dialer interface {
	Dial(host string, port uint16) (Client, error)
}

type TCP struct {
	cfg config.NET
}

func NewTCP(cfg config.NET) *TCP {
	return &TCP{cfg: cfg}
}

// Dial resolves the host and connects to it. Host may be either a literal address or
// a name.
func (t *TCP) Dial(host string, port uint16) (Client, error) {
	addr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return nil, errors.NewTransportError("resolve", err)
	}

	conn, err := net.DialTimeout("tcp", addr.String(), t.cfg.DialTimeout)
	if err != nil {
		return nil, errors.NewTransportError("connect", err)
	}

	return NewClient(conn, t.cfg.PollTimeout, t.cfg.WriteTimeout, make([]byte, t.cfg.ReadBufferSize)), nil
}
