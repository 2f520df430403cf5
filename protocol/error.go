package protocol

import errs "github.com/njones/sioengine/internal/errors"

const (
	ErrShortWrite        errs.String = "short write"
	ErrEmptyPacket       errs.String = "empty packet"
	ErrEmptyDataArray    errs.String = "empty data array"
	ErrInvalidPacketType errs.String = "invalid packet type %v"
	ErrUnknownEventName  errs.String = "unknown event name, expected a string but found %v (%[1]T)"
	ErrNotAnEvent        errs.String = "packet type %s is not an event"
	ErrBadAttachments    errs.String = "invalid binary attachment count: %q"
	ErrBadAckID          errs.String = "ack id parse: %w"
	ErrBadMarshal        errs.String = "data marshal: %w"
	ErrBadUnmarshal      errs.String = "data unmarshal: %w"
	ErrUnexpectedBinary  errs.String = "the %s parser does not decode binary data"
	ErrUnexpectedText    errs.String = "the %s parser does not decode text data"
	ErrUnknownParser     errs.String = "unknown parser %q"
)
