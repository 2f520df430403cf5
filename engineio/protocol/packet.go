package protocol

const (
	OpenPacket PacketType = iota
	ClosePacket
	PingPacket
	PongPacket
	MessagePacket
	UpgradePacket
	NoopPacket
)

// Packet is an engine.io v4 packet. Binary is only meaningful for a
// MessagePacket, where D then holds raw bytes instead of text.
type Packet struct {
	T      PacketType
	D      []byte
	Binary bool
}

type PacketType byte

func (pt PacketType) Char() byte  { return byte(pt) + '0' }
func (pt PacketType) Valid() bool { return pt <= NoopPacket }

func (pt PacketType) String() string {
	switch pt {
	case OpenPacket:
		return "open"
	case ClosePacket:
		return "close"
	case PingPacket:
		return "ping"
	case PongPacket:
		return "pong"
	case MessagePacket:
		return "message"
	case UpgradePacket:
		return "upgrade"
	case NoopPacket:
		return "noop"
	}
	return "unknown packet type"
}

func (pac Packet) String() string {
	if pac.Binary {
		return "binary " + pac.T.String()
	}
	return pac.T.String()
}

// Frame returns the packet as the data of a single websocket message. Binary
// messages are sent as is, without a type prefix.
func (pac Packet) Frame() (data []byte, binary bool) {
	if pac.Binary {
		return pac.D, true
	}
	return append([]byte{pac.T.Char()}, pac.D...), false
}

// FromFrame reads a packet from the data of a single websocket message.
func FromFrame(data []byte, binary bool) (Packet, error) {
	if binary {
		return Packet{T: MessagePacket, D: data, Binary: true}, nil
	}
	if len(data) == 0 {
		return Packet{}, ErrEmptyPacket
	}

	pt := PacketType(data[0] - '0')
	if !pt.Valid() {
		return Packet{}, ErrInvalidPacketType.F(data[0])
	}
	return Packet{T: pt, D: data[1:]}, nil
}
