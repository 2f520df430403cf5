package transport

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/njones/sioengine"
	"github.com/njones/sioengine/callback"
	eiop "github.com/njones/sioengine/engineio/protocol"
	siop "github.com/njones/sioengine/protocol"
	"github.com/njones/sioengine/serialize"
	"golang.org/x/sync/errgroup"
)

const protocolVersion = "4"

type Name string

const (
	Polling   Name = "polling"
	Websocket Name = "websocket"
)

func (name Name) String() string { return string(name) }

// conn is the part of a transport that moves packets. Transport drives it and
// never calls poll concurrently with itself.
type conn interface {
	open(context.Context) ([]eiop.Packet, error)
	opened(eiop.Handshake)
	send(context.Context, ...eiop.Packet) error
	poll(context.Context) ([]eiop.Packet, error)
	close() error
}

// New builds the engine named by the "transport" option.
func New(rawURL string, overrides map[string]interface{}, opts ...sioengine.Option) (sioengine.Engine, error) {
	name := sioengine.MergeOptions(Defaults(), overrides).String(OptTransport)
	switch Name(strings.ToLower(name)) {
	case Polling:
		t, err := NewPolling(rawURL, overrides, opts...)
		if err != nil {
			return nil, err
		}
		return t, nil
	case Websocket:
		t, err := NewWebsocket(rawURL, overrides, opts...)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, ErrUnknownTransport.F(name)
}

// Transport implements the engine lifecycle on top of a conn. The incoming
// packets are read by one pump goroutine which answers pings, watches the ping
// timeout and queues socket.io packets for Read. The queue is unbounded so a
// caller that never reads can not stall the heartbeat.
type Transport struct {
	*sioengine.Base

	name      Name
	conn      conn
	parser    siop.Parser
	namespace string
	timeout   time.Duration

	mu      sync.Mutex
	state   state
	session session
	pending []siop.Packet

	wmu sync.Mutex

	queued chan struct{}
	pinged chan struct{}
	done   chan struct{}
	cancel context.CancelFunc // stops the pump, set once it runs
	abort  context.CancelFunc // stops a Connect in progress
	err    error

	acks      callback.Registry
	attaching *siop.Packet
	closeOnce sync.Once
}

func newTransport(name Name, c conn, rawURL string, overrides map[string]interface{}, opts ...sioengine.Option) (*Transport, error) {
	t := &Transport{
		name:    name,
		conn:    c,
		queued: make(chan struct{}, 1),
		pinged: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	opts = append([]sioengine.Option{sioengine.WithDefaults(Defaults()), sioengine.WithEngine(t)}, opts...)
	base, err := sioengine.NewBase(rawURL, overrides, opts...)
	if err != nil {
		return nil, err
	}
	t.Base = base

	options := base.Options()
	if t.parser, err = siop.ParserFor(options.String(OptParser)); err != nil {
		return nil, err
	}
	t.namespace = namespaceFrom(options)
	t.timeout = timeoutFrom(options)

	return t, nil
}

func (t *Transport) Name() string { return sioengine.Family + "/" + t.name.String() }

// SessionID is the engine.io session id given by the handshake.
func (t *Transport) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.SID
}

// SocketID is the socket.io id given when the namespace accepted the connection.
func (t *Transport) SocketID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.socketID
}

func (t *Transport) Namespace() string { return t.namespace }

func (t *Transport) endpoint(scheme string, query url.Values) *url.URL {
	values := queryFrom(t.Options())
	values.Set("EIO", protocolVersion)
	values.Set("transport", t.name.String())
	for k, v := range query {
		values[k] = v
	}
	return t.Server().Endpoint(scheme, values)
}

// Connect runs the engine.io handshake and then connects to the namespace.
// A handshake failure leaves the engine ready for another Connect, any later
// failure closes it. A Close while connecting wins, Connect then returns
// ErrClosed.
func (t *Transport) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	t.mu.Lock()
	switch t.state {
	case stateConnecting, stateConnected:
		t.mu.Unlock()
		return ErrAlreadyConnected
	case stateClosed:
		t.mu.Unlock()
		return ErrClosed
	}
	t.state = stateConnecting
	t.abort = cancel
	t.mu.Unlock()

	hs, packets, err := t.handshake(ctx)

	t.mu.Lock()
	if t.state == stateClosed {
		t.mu.Unlock()
		t.shutdown()
		return ErrClosed
	}
	if err != nil {
		t.state = stateUninitialized
		t.abort = nil
		t.mu.Unlock()
		return err
	}
	t.session = newSession(hs)
	t.conn.opened(hs)
	t.run(packets)
	t.mu.Unlock()

	t.Logger().Debug("handshake", "sid", hs.SID, "ping_interval", hs.PingInterval.Std(), "ping_timeout", hs.PingTimeout.Std(),
		"websocket_upgrade", t.name == Polling && hs.CanUpgrade(Websocket.String()))

	connect := siop.NewPacket(siop.ConnectPacket, authFrom(t.Options()), siop.WithNamespace(t.namespace))
	if err := t.writePacket(ctx, connect); err != nil {
		return t.fail(ErrConnect.F(err))
	}

	for {
		pac, ok := t.takeConnect()
		if !ok {
			select {
			case <-t.queued:
				continue
			case <-t.done:
				if pac, ok = t.takeConnect(); !ok {
					return t.fail(ErrConnect.F(t.exitErr()))
				}
			case <-ctx.Done():
				return t.fail(ErrConnect.F(ctx.Err()))
			}
		}

		if pac.Type == siop.ErrorPacket {
			return t.fail(ErrConnectRefused.F(t.namespace, errorMessage(pac.Data)))
		}

		t.mu.Lock()
		if t.state != stateConnecting {
			t.mu.Unlock()
			return t.fail(ErrClosed)
		}
		t.session.socketID = socketID(pac.Data)
		t.state = stateConnected
		t.abort = nil
		t.mu.Unlock()

		t.Logger().Debug("connected", "namespace", t.namespace, "socket_id", t.SocketID())
		return nil
	}
}

// takeConnect removes the CONNECT or ERROR answer for the namespace from the
// queue. Everything else stays queued for Read.
func (t *Transport) takeConnect() (siop.Packet, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, pac := range t.pending {
		if pac.Namespace == t.namespace && (pac.Type == siop.ConnectPacket || pac.Type == siop.ErrorPacket) {
			t.pending = append(t.pending[:i:i], t.pending[i+1:]...)
			return pac, true
		}
	}
	return siop.Packet{}, false
}

func (t *Transport) handshake(ctx context.Context) (eiop.Handshake, []eiop.Packet, error) {
	packets, err := t.conn.open(ctx)
	if err != nil {
		return eiop.Handshake{}, nil, ErrHandshake.F(err)
	}
	if len(packets) == 0 {
		t.conn.close()
		return eiop.Handshake{}, nil, ErrHandshake.F(ErrEmptyHandshake)
	}

	hs, err := eiop.DecodeHandshake(packets[0])
	if err != nil {
		t.conn.close()
		return eiop.Handshake{}, nil, ErrHandshake.F(err)
	}
	return hs, packets[1:], nil
}

// run starts the pump. Packets that came with the handshake are handled first.
// It is called with t.mu held.
func (t *Transport) run(packets []eiop.Packet) {
	ctx, cancel := context.WithCancel(context.Background())
	grp, ctx := errgroup.WithContext(ctx)
	t.cancel = cancel

	grp.Go(func() error {
		for _, pac := range packets {
			if err := t.handle(ctx, pac); err != nil {
				return err
			}
		}
		return t.incoming(ctx)
	})
	grp.Go(func() error { return t.heartbeat(ctx) })

	go func() {
		err := grp.Wait()
		if err != nil {
			t.Logger().Debug("pump stopped", "error", err)
		}
		t.err = err
		close(t.done)
	}()
}

func (t *Transport) incoming(ctx context.Context) error {
	for {
		packets, err := t.conn.poll(ctx)
		if err != nil {
			if ctx.Err() != nil || t.isClosed() {
				return nil
			}
			return ErrReceive.F(err)
		}

		for _, pac := range packets {
			if err := t.handle(ctx, pac); err != nil {
				return err
			}
		}
	}
}

func (t *Transport) handle(ctx context.Context, pac eiop.Packet) error {
	t.Logger().Trace("receive", "packet", pac.String())

	switch pac.T {
	case eiop.PingPacket:
		t.beat()
		return t.send(ctx, eiop.Packet{T: eiop.PongPacket, D: pac.D})
	case eiop.ClosePacket:
		return ErrServerClosed
	case eiop.MessagePacket:
		t.message(pac)
	}
	return nil
}

func (t *Transport) message(pac eiop.Packet) {
	if t.attaching != nil && !pac.Binary {
		t.Logger().Warn("dropping packet", "packet", t.attaching.String(), "error", ErrMissingAttachments.F(len(t.attaching.Buffers), t.attaching.Attachments))
		t.attaching = nil
	}

	if t.attaching != nil {
		t.attaching.Buffers = append(t.attaching.Buffers, pac.D)
		if len(t.attaching.Buffers) < t.attaching.Attachments {
			return
		}
		sio := *t.attaching
		t.attaching = nil

		data, err := serialize.Reconstruct(sio.Data, sio.Buffers)
		if err != nil {
			t.Logger().Warn("dropping packet", "packet", sio.String(), "error", err)
			return
		}
		sio.Data = data
		t.deliver(sio)
		return
	}

	sio, err := t.parser.Decode(pac.D, pac.Binary)
	if err != nil {
		t.Logger().Warn("dropping packet", "packet", pac.String(), "error", err)
		return
	}

	if sio.Attachments > 0 {
		t.attaching = &sio
		return
	}
	t.deliver(sio)
}

// deliver queues pac for Read, unless it acknowledges an EmitWithAck. Those
// run their callback on the pump goroutine.
func (t *Transport) deliver(pac siop.Packet) {
	if (pac.Type == siop.AckPacket || pac.Type == siop.BinaryAckPacket) && pac.AckID != nil {
		if cb, ok := t.acks.Remove(*pac.AckID); ok {
			args, _ := pac.Data.([]interface{})
			if err := cb.Callback(args...); err != nil {
				t.Logger().Warn("ack callback", "ack_id", *pac.AckID, "error", err)
			}
			return
		}
	}

	t.mu.Lock()
	t.pending = append(t.pending, pac)
	t.mu.Unlock()
	t.signal()
}

func (t *Transport) signal() {
	select {
	case t.queued <- struct{}{}:
	default:
	}
}

// heartbeat fails the pump when the server stops pinging.
func (t *Transport) heartbeat(ctx context.Context) error {
	t.mu.Lock()
	limit := t.session.pingLimit
	t.mu.Unlock()

	if limit <= 0 {
		<-ctx.Done()
		return nil
	}

	timer := time.NewTimer(limit)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.pinged:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(limit)
		case <-timer.C:
			return ErrPingTimeout.F(limit)
		}
	}
}

func (t *Transport) beat() {
	t.mu.Lock()
	t.session.lastBeat = time.Now()
	t.mu.Unlock()

	select {
	case t.pinged <- struct{}{}:
	default:
	}
}

// KeepAlive answers the server heartbeat with a pong once the ping interval
// has passed since the last one.
func (t *Transport) KeepAlive(ctx context.Context) error {
	if err := t.ready(); err != nil {
		return err
	}

	t.mu.Lock()
	due := t.session.needsHeartbeat(time.Now())
	t.mu.Unlock()
	if !due {
		return nil
	}

	if err := t.send(ctx, eiop.Packet{T: eiop.PongPacket}); err != nil {
		return err
	}

	t.mu.Lock()
	t.session.lastBeat = time.Now()
	t.mu.Unlock()
	return nil
}

func (t *Transport) Emit(ctx context.Context, event string, args ...interface{}) error {
	if err := t.ready(); err != nil {
		return err
	}

	pac, err := t.packet(siop.EventPacket, append([]interface{}{event}, args...))
	if err != nil {
		return err
	}
	return t.writePacket(ctx, pac)
}

// EmitWithAck emits event and asks the server to acknowledge it. cb runs with
// the acknowledgement arguments on the goroutine reading from the server, so
// it must not block on Read.
func (t *Transport) EmitWithAck(ctx context.Context, cb callback.Callback, event string, args ...interface{}) error {
	if err := t.ready(); err != nil {
		return err
	}

	pac, err := t.packet(siop.EventPacket, append([]interface{}{event}, args...))
	if err != nil {
		return err
	}

	id := t.acks.Add(cb)
	pac.AckID = &id
	if err := t.writePacket(ctx, pac); err != nil {
		t.acks.Remove(id)
		return err
	}
	return nil
}

// Ack answers a server event that asked for an acknowledgement with id.
func (t *Transport) Ack(ctx context.Context, id uint64, args ...interface{}) error {
	if err := t.ready(); err != nil {
		return err
	}

	if args == nil {
		args = []interface{}{}
	}
	pac, err := t.packet(siop.AckPacket, args)
	if err != nil {
		return err
	}
	pac.AckID = &id
	return t.writePacket(ctx, pac)
}

// packet builds an event or ack for the namespace. With the JSON parser
// binary values become attachments, the msgpack parser carries them inline.
func (t *Transport) packet(typ siop.PacketType, data []interface{}) (siop.Packet, error) {
	pac := siop.NewPacket(typ, data, siop.WithNamespace(t.namespace))
	if !serialize.HasBinary(pac.Data) {
		return pac, nil
	}

	out, buffers, err := serialize.Deconstruct(pac.Data)
	if err != nil {
		return pac, err
	}

	if t.parser.Name() != siop.JSON {
		pac.Data, err = serialize.Reconstruct(out, buffers)
		return pac, err
	}

	pac.Type += siop.BinaryEventPacket - siop.EventPacket
	pac.Data = out
	pac.Attachments = len(buffers)
	pac.Buffers = buffers
	return pac, nil
}

// Write sends a socket.io packet of type code to the namespace. The message
// must already be JSON.
func (t *Transport) Write(ctx context.Context, code siop.PacketType, message string) error {
	if err := t.ready(); err != nil {
		return err
	}

	var data interface{}
	if message != "" {
		data = siop.RawMessage(message)
	}
	return t.writePacket(ctx, siop.NewPacket(code, data, siop.WithNamespace(t.namespace)))
}

// Read returns the next socket.io packet. It blocks until one arrives, ctx is
// done or the engine stops. Packets queued before the engine stopped are
// still returned.
func (t *Transport) Read(ctx context.Context) (siop.Packet, error) {
	if err := t.ready(); err != nil {
		return siop.Packet{}, err
	}

	for {
		if pac, ok := t.dequeue(); ok {
			return pac, nil
		}

		select {
		case <-t.queued:
		case <-t.done:
			if pac, ok := t.dequeue(); ok {
				return pac, nil
			}
			return siop.Packet{}, t.exitErr()
		case <-ctx.Done():
			return siop.Packet{}, ctx.Err()
		}
	}
}

func (t *Transport) dequeue() (siop.Packet, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.pending) == 0 {
		return siop.Packet{}, false
	}
	pac := t.pending[0]
	t.pending[0] = siop.Packet{}
	t.pending = t.pending[1:]
	if len(t.pending) > 0 {
		t.signal()
	}
	return pac, true
}

// Close leaves the namespace, closes the engine.io session and releases the
// connection. Closing more than once is a no-op. Closing during Connect makes
// it give up and release the connection itself.
func (t *Transport) Close() error {
	t.mu.Lock()
	prev := t.state
	t.state = stateClosed
	abort, running := t.abort, t.cancel != nil
	t.mu.Unlock()

	if prev == stateClosed {
		return nil
	}
	if prev == stateConnecting {
		if abort != nil {
			abort()
		}
		if !running {
			t.Logger().Debug("closed while connecting")
			return nil
		}
	}

	var err error
	if prev == stateConnected && !t.exited() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		err = t.writePacket(ctx, siop.NewPacket(siop.DisconnectPacket, nil, siop.WithNamespace(t.namespace)), eiop.Packet{T: eiop.ClosePacket})
	}

	t.shutdown()
	t.Logger().Debug("closed", "error", err)
	return err
}

// writePacket sends pac followed by its attachments and then extra.
func (t *Transport) writePacket(ctx context.Context, pac siop.Packet, extra ...eiop.Packet) error {
	data, binary, err := t.parser.Encode(pac)
	if err != nil {
		return err
	}

	packets := make([]eiop.Packet, 0, 1+len(pac.Buffers)+len(extra))
	packets = append(packets, eiop.Packet{T: eiop.MessagePacket, D: data, Binary: binary})
	for _, buf := range pac.Buffers {
		packets = append(packets, eiop.Packet{T: eiop.MessagePacket, D: buf, Binary: true})
	}
	return t.send(ctx, append(packets, extra...)...)
}

func (t *Transport) send(ctx context.Context, packets ...eiop.Packet) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()

	for _, pac := range packets {
		t.Logger().Trace("send", "packet", pac.String())
	}
	if err := t.conn.send(ctx, packets...); err != nil {
		return ErrSend.F(err)
	}
	return nil
}

// fail closes the engine after a failed Connect. When Close got there first
// the result is ErrClosed instead of err.
func (t *Transport) fail(err error) error {
	t.mu.Lock()
	if t.state == stateClosed {
		err = ErrClosed
	}
	t.state = stateClosed
	t.mu.Unlock()

	t.shutdown()
	return err
}

func (t *Transport) shutdown() {
	t.closeOnce.Do(func() {
		if err := t.conn.close(); err != nil {
			t.Logger().Debug("connection close", "error", err)
		}

		t.mu.Lock()
		cancel := t.cancel
		t.mu.Unlock()
		if cancel != nil {
			cancel()
			<-t.done
		}
	})
}

func (t *Transport) ready() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case stateConnected:
		return nil
	case stateClosed:
		return ErrClosed
	}
	return ErrNotConnected
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateClosed
}

func (t *Transport) exited() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// exitErr is the reason the pump stopped. It must only be called after done
// is closed.
func (t *Transport) exitErr() error {
	if t.isClosed() || t.err == nil {
		return ErrClosed
	}
	return t.err
}

func socketID(data interface{}) string {
	if m, ok := data.(map[string]interface{}); ok {
		sid, _ := m["sid"].(string)
		return sid
	}
	return ""
}

func errorMessage(data interface{}) interface{} {
	if m, ok := data.(map[string]interface{}); ok {
		if msg, ok := m["message"]; ok {
			return msg
		}
	}
	return data
}
