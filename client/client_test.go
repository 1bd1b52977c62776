package client

import (
	"bufio"
	"fmt"
	"io"
	"net"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/hclient/config"
	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/http/method"
	"github.com/indigo-web/hclient/http/status"
	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/hclient/transport/dummy"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
	ctxs   []int
}

func (r *recorder) OnHeaders(ctx int, resp *http.Response) {
	r.ctxs = append(r.ctxs, ctx)
	r.events = append(r.events, fmt.Sprintf("headers %d", resp.Code))
}

func (r *recorder) OnData(ctx int, _ *http.Response, data []byte) {
	r.ctxs = append(r.ctxs, ctx)
	r.events = append(r.events, "data "+string(data))
}

func (r *recorder) OnComplete(ctx int, resp *http.Response) {
	r.ctxs = append(r.ctxs, ctx)
	r.events = append(r.events, fmt.Sprintf("complete %d", resp.Code))
}

func newConnection(data ...[]byte) (*Connection[int], *dummy.Client, *dummy.Dialer, *recorder) {
	client := dummy.NewMockClient(data...)
	dialer := dummy.NewDialer(client)
	rec := new(recorder)
	conn := New[int]("h", 80).WithDialer(dialer).Observe(rec, 42)

	return conn, client, dialer, rec
}

// drive steps the connection until no responses are pending, returning the first error.
func drive(conn *Connection[int]) error {
	for i := 0; conn.ResponsesPending(); i++ {
		if i > 100 {
			return fmt.Errorf("the connection is stuck")
		}

		if err := conn.ProcessStep(); err != nil {
			return err
		}
	}

	return nil
}

func TestSendRequest(t *testing.T) {
	t.Run("serialization", func(t *testing.T) {
		conn, client, _, _ := newConnection()
		headers := []kv.Pair{{Key: "Content-type", Value: "text/plain"}}
		require.NoError(t, conn.SendRequest(method.POST, "/x", headers, []byte("abc")))
		require.Equal(t,
			"POST /x HTTP/1.1\r\nHost: h\r\nAccept-Encoding: identity\r\nContent-Length: 3\r\nContent-type: text/plain\r\n\r\nabc",
			client.Written(),
		)
		require.True(t, conn.ResponsesPending())
	})

	t.Run("no body", func(t *testing.T) {
		conn, client, _, _ := newConnection()
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.Equal(t, "GET / HTTP/1.1\r\nHost: h\r\nAccept-Encoding: identity\r\n\r\n", client.Written())
	})

	t.Run("empty body", func(t *testing.T) {
		conn, client, _, _ := newConnection()
		require.NoError(t, conn.SendRequest(method.PUT, "/", nil, []byte{}))
		require.Contains(t, client.Written(), "Content-Length: 0\r\n")
	})

	t.Run("caller content length", func(t *testing.T) {
		conn, client, _, _ := newConnection()
		headers := []kv.Pair{{Key: "CONTENT-LENGTH", Value: "3"}}
		require.NoError(t, conn.SendRequest(method.POST, "/", headers, []byte("abc")))
		require.Equal(t, 1, strings.Count(strings.ToLower(client.Written()), "content-length"))
	})

	t.Run("lazy dial", func(t *testing.T) {
		conn, _, dialer, _ := newConnection()
		require.Zero(t, dialer.Dials)
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.Equal(t, 1, dialer.Dials)
	})

	t.Run("dial failure", func(t *testing.T) {
		conn, _, dialer, _ := newConnection()
		dialer.Err = errors.NewTransportError("connect", io.ErrClosedPipe)
		err := conn.SendRequest(method.GET, "/", nil, nil)
		kind, ok := errors.KindOf(err)
		require.True(t, ok)
		require.Equal(t, errors.Transport, kind)
		require.EqualError(t, err, "connect: "+io.ErrClosedPipe.Error())
		require.False(t, conn.ResponsesPending())
		require.NoError(t, drive(conn))

		dialer.Err = nil
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.True(t, conn.ResponsesPending())
	})

	t.Run("write failure", func(t *testing.T) {
		conn, client, _, _ := newConnection()
		require.NoError(t, conn.SendRequest(method.GET, "/first", nil, nil))
		client.FailWritesWith(errors.NewTransportError("send", io.ErrClosedPipe))
		err := conn.SendRequest(method.POST, "/second", nil, []byte("abc"))
		require.ErrorIs(t, err, io.ErrClosedPipe)
		require.True(t, client.Closed())
		require.False(t, conn.ResponsesPending())
		require.NoError(t, conn.InitRequest(method.GET, "/"), "the connection must be reusable")
	})
}

func TestSequencing(t *testing.T) {
	t.Run("header before init", func(t *testing.T) {
		conn, client, _, _ := newConnection()
		require.ErrorIs(t, conn.AddHeader("X", "y"), errors.ErrNotBuilding)
		require.ErrorIs(t, conn.AddHeaderInt("X", 1), errors.ErrNotBuilding)
		require.ErrorIs(t, conn.SendHeaders(), errors.ErrNotBuilding)
		require.False(t, conn.ResponsesPending())
		require.Empty(t, client.Written())
	})

	t.Run("double init", func(t *testing.T) {
		conn, client, _, _ := newConnection()
		require.NoError(t, conn.InitRequest(method.GET, "/first"))
		require.ErrorIs(t, conn.InitRequest(method.GET, "/second"), errors.ErrRequestInProgress)
		require.Len(t, conn.queue, 1)

		require.NoError(t, conn.AddHeader("X", "y"))
		require.NoError(t, conn.SendHeaders())
		require.Equal(t, "GET /first HTTP/1.1\r\nHost: h\r\nAccept-Encoding: identity\r\nX: y\r\n\r\n", client.Written())

		kind, _ := errors.KindOf(errors.ErrRequestInProgress)
		require.Equal(t, errors.Protocol, kind)
	})

	t.Run("next request while previous is pending", func(t *testing.T) {
		conn, _, _, _ := newConnection()
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.NoError(t, conn.InitRequest(method.GET, "/"))
		require.True(t, conn.ResponsesPending())
	})

	t.Run("manual body", func(t *testing.T) {
		conn, client, _, _ := newConnection()
		require.NoError(t, conn.InitSocket())
		require.NoError(t, conn.InitRequest(method.POST, "/upload"))
		require.NoError(t, conn.AddHeaderInt("Content-Length", 10))
		require.NoError(t, conn.SendHeaders())
		require.NoError(t, conn.Send([]byte("Hello")))
		require.NoError(t, conn.Send([]byte("World")))
		require.True(t, strings.HasSuffix(client.Written(), "Content-Length: 10\r\n\r\nHelloWorld"))
	})
}

func TestProcessStep(t *testing.T) {
	t.Run("nothing pending", func(t *testing.T) {
		conn, _, dialer, rec := newConnection([]byte("HTTP/1.1 200 OK\r\n\r\n"))
		require.NoError(t, conn.ProcessStep())
		require.Zero(t, dialer.Dials)
		require.Empty(t, rec.events)
	})

	t.Run("pipelined responses in a single read", func(t *testing.T) {
		conn, _, _, rec := newConnection(
			[]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nHelloHTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"),
		)
		require.NoError(t, conn.SendRequest(method.GET, "/a", nil, nil))
		require.NoError(t, conn.SendRequest(method.GET, "/b", nil, nil))
		require.NoError(t, conn.ProcessStep())
		require.False(t, conn.ResponsesPending())
		require.Equal(t, []string{
			"headers 200", "data Hello", "complete 200",
			"headers 404", "complete 404",
		}, rec.events)

		for _, ctx := range rec.ctxs {
			require.Equal(t, 42, ctx)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		conn, _, _, rec := newConnection(
			nil,
			[]byte("HTTP/1.1 200 OK\r\nContent-"),
			nil,
			[]byte("Length: 2\r\n\r\nok"),
		)
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.NoError(t, conn.ProcessStep())
		require.Empty(t, rec.events)
		require.NoError(t, drive(conn))
		require.Equal(t, []string{"headers 200", "data ok", "complete 200"}, rec.events)
	})

	t.Run("close-delimited body", func(t *testing.T) {
		conn, client, _, rec := newConnection([]byte("HTTP/1.0 200 OK\r\n\r\nbye"))
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.NoError(t, drive(conn))
		require.Equal(t, []string{"headers 200", "data bye", "complete 200"}, rec.events)
		require.True(t, client.Closed())
	})

	t.Run("premature close", func(t *testing.T) {
		conn, client, _, rec := newConnection([]byte("HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nshort"))
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.ErrorIs(t, drive(conn), errors.ErrPrematureClose)
		require.False(t, conn.ResponsesPending())
		require.True(t, client.Closed())
		require.NotContains(t, rec.events, "complete 200")
	})

	t.Run("read failure", func(t *testing.T) {
		fail := errors.NewTransportError("recv", io.ErrUnexpectedEOF)
		conn, client, _, _ := newConnection([]byte("HTTP/1.1 200 OK\r\n"))
		client.FailWith(fail)
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		err := drive(conn)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
		require.False(t, conn.ResponsesPending())
		require.True(t, client.Closed())
	})

	t.Run("arrested", func(t *testing.T) {
		conn, client, dialer, _ := newConnection(
			[]byte("HTTP/1.1 abc OK\r\n"),
			[]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"),
		)
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		err := conn.ProcessStep()
		require.ErrorIs(t, err, errors.ErrMalformedStatusLine)
		require.ErrorIs(t, conn.ProcessStep(), errors.ErrMalformedStatusLine)
		require.True(t, conn.ResponsesPending())
		require.False(t, client.Closed())

		conn.CleanUp()
		conn.CleanUp()
		require.False(t, conn.ResponsesPending())
		require.True(t, client.Closed())
		require.NoError(t, conn.ProcessStep())

		// the connection is usable again and dials anew
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.Equal(t, 2, dialer.Dials)
	})

	t.Run("re-observe", func(t *testing.T) {
		conn, _, _, first := newConnection(
			[]byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n"),
			[]byte("ok"),
		)
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.NoError(t, conn.ProcessStep())

		second := new(recorder)
		conn.Observe(second, 7)
		require.NoError(t, drive(conn))
		require.Equal(t, []string{"headers 200"}, first.events)
		require.Equal(t, []string{"data ok", "complete 200"}, second.events)
		require.Equal(t, []int{7, 7}, second.ctxs)
	})

	t.Run("nil observer", func(t *testing.T) {
		conn, _, _, rec := newConnection([]byte("HTTP/1.1 204 No Content\r\n\r\n"))
		conn.Observe(nil, 0)
		require.NoError(t, conn.SendRequest(method.GET, "/", nil, nil))
		require.NoError(t, drive(conn))
		require.Empty(t, rec.events)
	})

	t.Run("HEAD", func(t *testing.T) {
		conn, _, _, rec := newConnection([]byte("HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\n"))
		require.NoError(t, conn.SendRequest(method.HEAD, "/", nil, nil))
		require.NoError(t, drive(conn))
		require.Equal(t, []string{"headers 200", "complete 200"}, rec.events)
	})
}

func TestLoopback(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	requests := make(chan *stdhttp.Request, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		req, err := stdhttp.ReadRequest(bufio.NewReader(conn))
		if err != nil {
			return
		}

		requests <- req
		for _, piece := range []string{
			"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n",
			"Connection: close\r\n\r\n4\r\nWi",
			"ki\r\n5\r\npedia\r\n0\r\n\r\n",
		} {
			_, _ = conn.Write([]byte(piece))
			time.Sleep(5 * time.Millisecond)
		}
	}()

	port := uint16(l.Addr().(*net.TCPAddr).Port)
	var (
		body     strings.Builder
		response *http.Response
	)

	observer := funcs{
		onData: func(data []byte) {
			body.Write(data)
		},
		onComplete: func(resp *http.Response) {
			response = resp
		},
	}

	conn := New[*strings.Builder]("127.0.0.1", port).Tune(config.Default()).Observe(observer, &body)
	defer conn.CleanUp()

	require.NoError(t, conn.SendRequest(method.GET, "/wiki", []kv.Pair{{Key: "User-Agent", Value: "hclient"}}, nil))
	req := <-requests
	require.Equal(t, "/wiki", req.RequestURI)
	require.Equal(t, "hclient", req.Header.Get("User-Agent"))
	require.Equal(t, "identity", req.Header.Get("Accept-Encoding"))

	deadline := time.Now().Add(5 * time.Second)
	for conn.ResponsesPending() {
		require.True(t, time.Now().Before(deadline), "timed out")
		require.NoError(t, conn.ProcessStep())
	}

	require.Equal(t, "Wikipedia", body.String())
	require.NotNil(t, response)
	require.Equal(t, status.OK, response.Code)
	require.True(t, response.AutoClose)
	require.Equal(t, uint64(9), response.BytesRead)
}

type funcs struct {
	onData     func([]byte)
	onComplete func(*http.Response)
}

func (funcs) OnHeaders(*strings.Builder, *http.Response) {}

func (f funcs) OnData(_ *strings.Builder, _ *http.Response, data []byte) {
	f.onData(data)
}

func (f funcs) OnComplete(_ *strings.Builder, resp *http.Response) {
	f.onComplete(resp)
}
