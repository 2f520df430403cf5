package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pollingServer is a fake engine.io endpoint. Every GET is answered with the
// next payload from out, every POST body goes to posts.
type pollingServer struct {
	t     *testing.T
	sid   string
	out   chan string
	posts chan string
	done  chan struct{}
}

func newPollingServer(t *testing.T, sid string) (*pollingServer, *httptest.Server) {
	ps := &pollingServer{
		t:     t,
		sid:   sid,
		out:   make(chan string, 8),
		posts: make(chan string, 8),
		done:  make(chan struct{}),
	}

	srv := httptest.NewServer(ps)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(ps.done) })
	return ps, srv
}

func (ps *pollingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	assert.Equal(ps.t, "4", query.Get("EIO"))
	assert.Equal(ps.t, "polling", query.Get("transport"))
	assert.NotEmpty(ps.t, query.Get("t"))
	if sid := query.Get("sid"); sid != "" {
		assert.Equal(ps.t, ps.sid, sid)
	}

	switch r.Method {
	case http.MethodGet:
		select {
		case payload := <-ps.out:
			io.WriteString(w, payload)
		case <-r.Context().Done():
		case <-ps.done:
		}
	case http.MethodPost:
		assert.Equal(ps.t, contentType, r.Header.Get("Content-Type"))
		assert.Equal(ps.t, ps.sid, query.Get("sid"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(ps.t, err)
		ps.posts <- string(body)
		io.WriteString(w, "ok")
	}
}

func (ps *pollingServer) expectPost(t *testing.T, want string) {
	t.Helper()

	select {
	case have := <-ps.posts:
		assert.Equal(t, want, have)
	case <-time.After(5 * time.Second):
		t.Fatalf("no POST of %q", want)
	}
}

func TestPollingTransportLifecycle(t *testing.T) {
	ps, srv := newPollingServer(t, "eio-p")
	ps.out <- `0{"sid":"eio-p","upgrades":["websocket"],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`
	ps.out <- `40{"sid":"s1"}`

	e, err := NewPolling(srv.URL, map[string]interface{}{
		"auth":    map[string]interface{}{"token": "abc"},
		"headers": map[string]interface{}{"X-Token": "t1"},
		"query":   map[string]interface{}{"room": "lobby"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SocketIO/polling", e.Name())
	assert.Equal(t, "t1", e.header.Get("X-Token"))
	assert.Equal(t, "lobby", e.endpoint("http", nil).Query().Get("room"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, e.Connect(ctx))
	ps.expectPost(t, `40{"token":"abc"}`)
	assert.Equal(t, "eio-p", e.SessionID())
	assert.Equal(t, "s1", e.SocketID())

	require.NoError(t, e.Emit(ctx, "hello", "world"))
	ps.expectPost(t, `42["hello","world"]`)

	ps.out <- "2\x1e42[\"reply\",\"ok\"]"

	pac, err := e.Read(ctx)
	require.NoError(t, err)
	name, args, err := pac.Event()
	require.NoError(t, err)
	assert.Equal(t, "reply", name)
	assert.Equal(t, []interface{}{"ok"}, args)
	ps.expectPost(t, "3")

	require.NoError(t, e.Close())
	ps.expectPost(t, "41\x1e1")

	_, err = e.Read(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPollingTransportKeepAlive(t *testing.T) {
	ps, srv := newPollingServer(t, "eio-k")
	ps.out <- `0{"sid":"eio-k","upgrades":[],"pingInterval":50,"pingTimeout":10000,"maxPayload":1000000}`
	ps.out <- `40{"sid":"s1"}`

	e, err := NewPolling(srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, e.Connect(ctx))
	ps.expectPost(t, "40")

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, e.KeepAlive(ctx))
	ps.expectPost(t, "3")

	require.NoError(t, e.KeepAlive(ctx))
	assert.Len(t, ps.posts, 0)

	require.NoError(t, e.Close())
	ps.expectPost(t, "41\x1e1")
}

func TestPollingTransportHandshakeFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	e, err := NewPolling(srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = e.Connect(ctx)
	assert.ErrorIs(t, err, ErrHandshake)
	assert.ErrorIs(t, err, ErrBadStatus)

	assert.ErrorIs(t, e.Emit(ctx, "hello"), ErrNotConnected)
	assert.ErrorIs(t, e.Connect(ctx), ErrHandshake)
}
