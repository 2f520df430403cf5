package protocol

import "strconv"

const DefaultNamespace = "/"

// RawMessage is packet data that is already JSON encoded. It is written to
// the wire as is.
type RawMessage []byte

// Packet is a single socket.io packet. Buffers holds the binary attachments of
// a BINARY_EVENT or BINARY_ACK in the order they were received.
type Packet struct {
	Type        PacketType
	Namespace   string
	AckID       *uint64
	Attachments int
	Data        interface{}
	Buffers     [][]byte
}

func NewPacket(t PacketType, data interface{}, opts ...Option) Packet {
	pac := Packet{Type: t, Namespace: DefaultNamespace, Data: data}
	for _, opt := range opts {
		opt(&pac)
	}
	return pac
}

// Event splits the data of an EVENT packet into its name and arguments.
func (pac Packet) Event() (name string, args []interface{}, err error) {
	if pac.Type != EventPacket && pac.Type != BinaryEventPacket {
		return "", nil, ErrNotAnEvent.F(pac.Type)
	}

	fields, ok := pac.Data.([]interface{})
	if !ok || len(fields) == 0 {
		return "", nil, ErrEmptyDataArray
	}

	if name, ok = fields[0].(string); !ok {
		return "", nil, ErrUnknownEventName.F(fields[0])
	}
	return name, fields[1:], nil
}

func (pac Packet) String() string {
	str := pac.Type.String() + " " + pac.Namespace
	if pac.AckID != nil {
		str += " #" + strconv.FormatUint(*pac.AckID, 10)
	}
	return str
}
