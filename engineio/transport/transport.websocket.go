package transport

import (
	"context"
	"net/http"

	"github.com/njones/sioengine"
	eiop "github.com/njones/sioengine/engineio/protocol"
	ws "nhooyr.io/websocket"
)

type WebsocketTransport struct {
	*Transport

	client *http.Client
	header http.Header
	socket *ws.Conn
}

func NewWebsocket(rawURL string, overrides map[string]interface{}, opts ...sioengine.Option) (*WebsocketTransport, error) {
	t := &WebsocketTransport{}

	tr, err := newTransport(Websocket, t, rawURL, overrides, opts...)
	if err != nil {
		return nil, err
	}
	t.Transport = tr

	options := tr.Options()
	t.client = newHTTPClient(options)
	t.header = headersFrom(options)

	return t, nil
}

func (t *WebsocketTransport) open(ctx context.Context) ([]eiop.Packet, error) {
	scheme := "ws"
	if t.Server().Secured {
		scheme = "wss"
	}

	conn, _, err := ws.Dial(ctx, t.endpoint(scheme, nil).String(), &ws.DialOptions{
		HTTPClient:      t.client,
		HTTPHeader:      t.header,
		CompressionMode: ws.CompressionDisabled,
	})
	if err != nil {
		return nil, err
	}
	t.socket = conn

	pac, err := t.read(ctx)
	if err != nil {
		conn.Close(ws.StatusProtocolError, "no open packet")
		return nil, err
	}
	return []eiop.Packet{pac}, nil
}

func (t *WebsocketTransport) opened(hs eiop.Handshake) {
	if hs.MaxPayload > 0 {
		t.socket.SetReadLimit(int64(hs.MaxPayload))
	}
}

func (t *WebsocketTransport) send(ctx context.Context, packets ...eiop.Packet) error {
	for _, pac := range packets {
		data, binary := pac.Frame()

		typ := ws.MessageText
		if binary {
			typ = ws.MessageBinary
		}
		if err := t.socket.Write(ctx, typ, data); err != nil {
			return err
		}
	}
	return nil
}

// poll blocks for the next frame. Frames that are not engine.io packets are
// skipped.
func (t *WebsocketTransport) poll(ctx context.Context) ([]eiop.Packet, error) {
	for {
		typ, data, err := t.socket.Read(ctx)
		if err != nil {
			return nil, err
		}

		pac, err := eiop.FromFrame(data, typ == ws.MessageBinary)
		if err != nil {
			t.Logger().Warn("dropping frame", "error", err)
			continue
		}
		return []eiop.Packet{pac}, nil
	}
}

func (t *WebsocketTransport) read(ctx context.Context) (eiop.Packet, error) {
	typ, data, err := t.socket.Read(ctx)
	if err != nil {
		return eiop.Packet{}, err
	}
	return eiop.FromFrame(data, typ == ws.MessageBinary)
}

func (t *WebsocketTransport) close() error {
	if t.socket == nil {
		return nil
	}
	return t.socket.Close(ws.StatusNormalClosure, "")
}
