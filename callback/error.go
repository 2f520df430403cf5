package callback

import erro "github.com/njones/sioengine/internal/errors"

const (
	ErrNotAFunc               erro.String = "callback is a %T, not a func"
	ErrUnexpectedDataInParams erro.String = "expected %d callback input parameters, found %d"
	ErrUnexpectedOutParams    erro.String = "expected a single error return parameter, found %d return parameters"
	ErrUnexpectedParamType    erro.String = "callback parameter %d: can not use %#v as %s"
	ErrUnknownAck             erro.String = "no callback is waiting for ack %d"
	ErrUnknownPanic           erro.String = "unknown panic"
)
