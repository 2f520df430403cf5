package sioengine

import (
	"bytes"
	"context"
	"errors"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/njones/sioengine/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeOnly is the smallest engine there is, it can only write.
type writeOnly struct {
	*Base
	written []string
}

func (e *writeOnly) Write(_ context.Context, code protocol.PacketType, message string) error {
	e.written = append(e.written, string(code.Char())+message)
	return nil
}

// named adds a transport suffix and supports connecting.
type named struct {
	writeOnly
	connected bool
}

func (e *named) Name() string                  { return Family + "/test" }
func (e *named) Connect(context.Context) error { e.connected = true; return nil }

var (
	_ Engine = &writeOnly{}
	_ Engine = &named{}
)

func TestEngineUnsupported(t *testing.T) {
	base, err := NewBase("http://localhost:3000", nil)
	require.NoError(t, err)

	var e Engine = &writeOnly{Base: base}
	ctx := context.Background()

	var tests = map[string]func() error{
		"connect":   func() error { return e.Connect(ctx) },
		"keepAlive": func() error { return e.KeepAlive(ctx) },
		"close":     func() error { return e.Close() },
		"emit":      func() error { return e.Emit(ctx, "hello", "world") },
		"read":      func() error { _, err := e.Read(ctx); return err },
	}

	for action, call := range tests {
		t.Run(action, func(t *testing.T) {
			err := call()
			assert.ErrorIs(t, err, ErrUnsupportedAction)

			var unsupported *UnsupportedActionError
			require.True(t, errors.As(err, &unsupported))
			assert.Equal(t, action, unsupported.Action)
			assert.Equal(t, "SocketIO", unsupported.Engine)
			assert.Equal(t, base.ID(), unsupported.ID)
			assert.Contains(t, err.Error(), `the SocketIO engine does not support the "`+action+`" action`)
		})
	}

	assert.NoError(t, e.Write(ctx, protocol.EventPacket, `["hello"]`))
	assert.Equal(t, []string{`2["hello"]`}, e.(*writeOnly).written)
}

func TestEngineOverride(t *testing.T) {
	e := &named{}
	base, err := NewBase("http://localhost:3000", nil, WithEngine(e))
	require.NoError(t, err)
	e.Base = base

	assert.Equal(t, "SocketIO", base.Name())
	assert.Equal(t, "SocketIO/test", e.Name())

	assert.NoError(t, e.Connect(context.Background()))
	assert.True(t, e.connected)

	var unsupported *UnsupportedActionError
	require.True(t, errors.As(e.Close(), &unsupported))
	assert.Equal(t, "SocketIO/test", unsupported.Engine)
	assert.Equal(t, "close", unsupported.Action)
}

func TestNewBase(t *testing.T) {
	base, err := NewBase("https://example.com", nil)
	require.NoError(t, err)

	assert.Equal(t, Options{"check_ssl": false, "debug": false}, base.Options())
	assert.Equal(t, 443, base.Server().Port)
	assert.True(t, base.Server().Secured)
	assert.NotEmpty(t, base.ID())

	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Debug})

	base, err = NewBase("http://example.com", map[string]interface{}{"debug": true, "wait": 50},
		WithLogger(logger),
		WithDefaults(map[string]interface{}{"timeout": "5s", "debug": false}),
	)
	require.NoError(t, err)

	opts := base.Options()
	assert.Equal(t, Options{"check_ssl": false, "debug": true, "timeout": "5s", "wait": 50}, opts)
	assert.Contains(t, buf.String(), "engine created")

	opts["debug"] = false
	assert.True(t, base.Options().Debug())
}

func TestNewBaseMalformed(t *testing.T) {
	base, err := NewBase("", map[string]interface{}{"debug": true})
	assert.Nil(t, base)
	assert.ErrorIs(t, err, ErrMalformedURL)
}
