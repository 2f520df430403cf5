package protocol

import "strings"

// Parser converts socket.io packets to and from the data of an engine.io
// message packet. Encode reports whether the result must be sent as binary.
type Parser interface {
	Name() string
	Encode(Packet) (data []byte, binary bool, err error)
	Decode(data []byte, binary bool) (Packet, error)
}

const (
	JSON    = "json"
	Msgpack = "msgpack"
)

// ParserFor returns the parser registered under name. An empty name is the
// default JSON parser.
func ParserFor(name string) (Parser, error) {
	switch strings.ToLower(name) {
	case "", JSON, "default":
		return JSONParser{}, nil
	case Msgpack:
		return MsgpackParser{}, nil
	}
	return nil, ErrUnknownParser.F(name)
}
