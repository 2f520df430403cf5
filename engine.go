// Package sioengine defines the contract between a socket.io client and the
// transports that carry it.
//
// An engine is built from a raw URL and an optional map of option overrides:
//
//     base, err := sioengine.NewBase("https://example.com:8443/socket.io", map[string]interface{}{"debug": true})
//
// Base supplies every lifecycle operation except Write and fails each of them
// with an *UnsupportedActionError. Transports embed *Base, implement Write and
// override the operations they support.
package sioengine

import (
	"context"

	"github.com/google/uuid"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/njones/sioengine/protocol"
)

// Family is the name of every engine in this module.
const Family = "SocketIO"

type Namer interface{ Name() string }

type Engine interface {
	Namer

	Connect(context.Context) error
	KeepAlive(context.Context) error
	Close() error
	Emit(ctx context.Context, event string, args ...interface{}) error
	Read(context.Context) (protocol.Packet, error)

	// Write sends a packet of type code. The message is the already encoded
	// packet data, an empty message sends the packet without data.
	Write(ctx context.Context, code protocol.PacketType, message string) error
}

// Base is the shared part of every engine. It does not implement Write.
type Base struct {
	id       string
	outer    Namer
	server   Server
	options  Options
	defaults map[string]interface{}
	logger   hclog.Logger
}

func NewBase(rawURL string, overrides map[string]interface{}, opts ...Option) (*Base, error) {
	b := &Base{id: uuid.NewString()}
	for _, opt := range opts {
		opt(b)
	}

	server, err := ParseServer(rawURL)
	if err != nil {
		return nil, err
	}

	b.server = server
	b.options = MergeOptions(MergeOptions(DefaultOptions(), b.defaults), overrides)

	if b.logger == nil {
		level := hclog.Warn
		if b.options.Debug() {
			level = hclog.Debug
		}
		b.logger = hclog.New(&hclog.LoggerOptions{Name: "sioengine", Level: level})
	}
	b.logger = b.logger.With("engine", b.identity(), "id", b.id)
	b.logger.Debug("engine created", "server", b.server.String())

	return b, nil
}

func (b *Base) ID() string     { return b.id }
func (b *Base) Server() Server { return b.server }

// Options returns a copy of the merged options.
func (b *Base) Options() Options { return MergeOptions(b.options, nil) }

func (b *Base) Logger() hclog.Logger { return b.logger }

func (b *Base) Name() string { return Family }

func (b *Base) Connect(context.Context) error   { return b.Unsupported("connect") }
func (b *Base) KeepAlive(context.Context) error { return b.Unsupported("keepAlive") }
func (b *Base) Close() error                    { return b.Unsupported("close") }

func (b *Base) Emit(context.Context, string, ...interface{}) error {
	return b.Unsupported("emit")
}

func (b *Base) Read(context.Context) (protocol.Packet, error) {
	return protocol.Packet{}, b.Unsupported("read")
}

// Unsupported builds the error for an action the engine can not perform.
func (b *Base) Unsupported(action string) error {
	return &UnsupportedActionError{Engine: b.identity(), ID: b.id, Action: action}
}

func (b *Base) identity() string {
	if b.outer != nil {
		return b.outer.Name()
	}
	return b.Name()
}
