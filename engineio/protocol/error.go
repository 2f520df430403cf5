package protocol

import erro "github.com/njones/sioengine/internal/errors"

const (
	ErrEmptyPacket       erro.String = "empty packet"
	ErrEmptyPayload      erro.String = "empty payload"
	ErrInvalidPacketType erro.String = "invalid packet type: %q"
	ErrInvalidHandshake  erro.String = "invalid handshake: %v"
	ErrHandshakeDecode   erro.String = "handshake decode: %w"
	ErrPayloadDecode     erro.String = "payload decode, record %d: %w"
	ErrBadDuration       erro.String = "invalid duration %q: %w"
)
