package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/njones/sioengine"
	eiop "github.com/njones/sioengine/engineio/protocol"
)

const contentType = "text/plain;charset=UTF-8"

// PollingTransport speaks engine.io over HTTP long-polling. A GET waits for
// the next payload from the server and every send is one POST.
type PollingTransport struct {
	*Transport

	client *http.Client
	header http.Header
	sid    string
}

func NewPolling(rawURL string, overrides map[string]interface{}, opts ...sioengine.Option) (*PollingTransport, error) {
	t := &PollingTransport{}

	tr, err := newTransport(Polling, t, rawURL, overrides, opts...)
	if err != nil {
		return nil, err
	}
	t.Transport = tr

	options := tr.Options()
	t.client = newHTTPClient(options)
	t.header = headersFrom(options)

	return t, nil
}

func (t *PollingTransport) open(ctx context.Context) ([]eiop.Packet, error) {
	t.sid = ""
	return t.poll(ctx)
}

func (t *PollingTransport) opened(hs eiop.Handshake) { t.sid = hs.SID }

func (t *PollingTransport) send(ctx context.Context, packets ...eiop.Packet) error {
	_, err := t.do(ctx, http.MethodPost, eiop.EncodePayload(packets...))
	return err
}

func (t *PollingTransport) poll(ctx context.Context) ([]eiop.Packet, error) {
	body, err := t.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return eiop.DecodePayload(body)
}

func (t *PollingTransport) close() error {
	t.client.CloseIdleConnections()
	return nil
}

func (t *PollingTransport) do(ctx context.Context, method string, body []byte) ([]byte, error) {
	query := url.Values{"t": {timestamp()}}
	if t.sid != "" {
		query.Set("sid", t.sid)
	}

	scheme := "http"
	if t.Server().Secured {
		scheme = "https"
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.endpoint(scheme, query).String(), rdr)
	if err != nil {
		return nil, err
	}
	for k, v := range t.header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ErrBadStatus.F(resp.Status)
	}
	return data, nil
}
