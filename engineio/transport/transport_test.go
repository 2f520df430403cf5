package transport

import (
	"context"
	"testing"
	"time"

	"github.com/njones/sioengine"
	eiop "github.com/njones/sioengine/engineio/protocol"
	siop "github.com/njones/sioengine/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ sioengine.Engine = &PollingTransport{}
	_ sioengine.Engine = &WebsocketTransport{}
)

func TestNew(t *testing.T) {
	var tests = map[string]struct {
		url       string
		overrides map[string]interface{}
		name      string
		err       error
	}{
		"default":        {name: "SocketIO/websocket"},
		"polling":        {overrides: map[string]interface{}{"transport": "polling"}, name: "SocketIO/polling"},
		"upper case":     {overrides: map[string]interface{}{"transport": "WebSocket"}, name: "SocketIO/websocket"},
		"unknown":        {overrides: map[string]interface{}{"transport": "pigeon"}, err: ErrUnknownTransport},
		"unknown parser": {overrides: map[string]interface{}{"parser": "xml"}, err: siop.ErrUnknownParser},
		"malformed url":  {url: "http://localhost:port", err: sioengine.ErrMalformedURL},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			rawURL := test.url
			if rawURL == "" {
				rawURL = "http://localhost:3000"
			}

			e, err := New(rawURL, test.overrides)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				assert.Nil(t, e)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.name, e.Name())
		})
	}
}

func TestTransportOptions(t *testing.T) {
	e, err := NewWebsocket("https://example.com/chat.io", map[string]interface{}{
		"namespace": "admin",
		"timeout":   "2s",
		"query":     map[string]interface{}{"v": 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "/admin", e.Namespace())
	assert.Equal(t, 2*time.Second, e.timeout)
	assert.Equal(t, siop.JSON, e.parser.Name())

	u := e.endpoint("wss", nil)
	assert.Equal(t, "wss", u.Scheme)
	assert.Equal(t, "example.com:443", u.Host)
	assert.Equal(t, "/chat.io/", u.Path)
	assert.Equal(t, "4", u.Query().Get("EIO"))
	assert.Equal(t, "websocket", u.Query().Get("transport"))
	assert.Equal(t, "2", u.Query().Get("v"))

	options := e.Options()
	assert.False(t, options.CheckSSL())
	assert.Equal(t, "websocket", options.String(OptTransport))
}

func TestTransportNotConnected(t *testing.T) {
	e, err := NewPolling("http://localhost:3000", nil)
	require.NoError(t, err)

	ctx := context.Background()

	var tests = map[string]func() error{
		"emit":      func() error { return e.Emit(ctx, "hello") },
		"write":     func() error { return e.Write(ctx, siop.EventPacket, `["hello"]`) },
		"keepAlive": func() error { return e.KeepAlive(ctx) },
		"read":      func() error { _, err := e.Read(ctx); return err },
	}

	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), ErrNotConnected)
		})
	}

	assert.NoError(t, e.Close())

	for name, call := range tests {
		t.Run(name+" after close", func(t *testing.T) {
			assert.ErrorIs(t, call(), ErrClosed)
		})
	}
	assert.ErrorIs(t, e.Connect(ctx), ErrClosed)
	assert.NoError(t, e.Close())
}

func TestSession(t *testing.T) {
	hs := eiop.Handshake{
		SID:          "abc",
		PingInterval: eiop.Duration(25 * time.Second),
		PingTimeout:  eiop.Duration(20 * time.Second),
	}

	s := newSession(hs)
	assert.Equal(t, 45*time.Second, s.pingLimit)
	assert.False(t, s.needsHeartbeat(s.lastBeat.Add(time.Second)))
	assert.True(t, s.needsHeartbeat(s.lastBeat.Add(25*time.Second)))
}

func TestOptionHelpers(t *testing.T) {
	var tests = map[string]struct {
		in        string
		namespace string
	}{
		"empty":    {in: "", namespace: "/"},
		"root":     {in: "/", namespace: "/"},
		"no slash": {in: "chat", namespace: "/chat"},
		"slash":    {in: "/chat", namespace: "/chat"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			opts := sioengine.MergeOptions(Defaults(), map[string]interface{}{OptNamespace: test.in})
			assert.Equal(t, test.namespace, namespaceFrom(opts))
		})
	}

	opts := sioengine.MergeOptions(Defaults(), nil)
	assert.Nil(t, authFrom(opts))
	assert.Equal(t, defaultTimeout, timeoutFrom(opts))

	opts = sioengine.MergeOptions(Defaults(), map[string]interface{}{OptTimeout: 0})
	assert.Equal(t, defaultTimeout, timeoutFrom(opts))

	opts = sioengine.MergeOptions(Defaults(), map[string]interface{}{
		OptHeaders: map[string]interface{}{"x-count": 3},
		OptAuth:    map[string]interface{}{"token": "abc"},
	})
	assert.Equal(t, "3", headersFrom(opts).Get("X-Count"))
	assert.Equal(t, map[string]interface{}{"token": "abc"}, authFrom(opts))
}
