package transport

import erro "github.com/njones/sioengine/internal/errors"

const (
	ErrNotConnected       erro.String = "engine is not connected"
	ErrAlreadyConnected   erro.String = "engine is already connected"
	ErrClosed             erro.String = "engine is closed"
	ErrHandshake          erro.String = "handshake: %w"
	ErrEmptyHandshake     erro.String = "no open packet received"
	ErrConnect            erro.String = "connect: %w"
	ErrConnectRefused     erro.String = "namespace %q refused the connection: %v"
	ErrPingTimeout        erro.String = "no ping from the server for %s"
	ErrServerClosed       erro.String = "server closed the session"
	ErrReceive            erro.String = "receive: %w"
	ErrSend               erro.String = "send: %w"
	ErrBadStatus          erro.String = "unexpected HTTP status %q"
	ErrUnknownTransport   erro.String = "unknown transport %q"
	ErrMissingAttachments erro.String = "got %d of %d attachments before the next packet"
)
