package protocol

// PacketType is the Type part of a socket.io packet. The values are part of
// the wire format and must not change.
type PacketType byte

const (
	ConnectPacket PacketType = iota
	DisconnectPacket
	EventPacket
	AckPacket
	ErrorPacket
	BinaryEventPacket
	BinaryAckPacket

	// ConnectErrorPacket is the version 5 name of ErrorPacket. The code is the same.
	ConnectErrorPacket = ErrorPacket
)

// Byte returns the Type as the underlining byte type
func (x PacketType) Byte() byte { return byte(x) }

// Char returns the ASCII digit used on the wire.
func (x PacketType) Char() byte { return byte(x) + '0' }

func (x PacketType) Valid() bool { return x <= BinaryAckPacket }

func (x PacketType) IsBinary() bool { return x == BinaryEventPacket || x == BinaryAckPacket }

func (x PacketType) String() string {
	switch x {
	case ConnectPacket:
		return "CONNECT"
	case DisconnectPacket:
		return "DISCONNECT"
	case EventPacket:
		return "EVENT"
	case AckPacket:
		return "ACK"
	case ErrorPacket:
		return "ERROR"
	case BinaryEventPacket:
		return "BINARY_EVENT"
	case BinaryAckPacket:
		return "BINARY_ACK"
	}
	return "UNKNOWN"
}

// Read writes the ASCII digit of the Type into p.
func (x PacketType) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = x.Char()
	return 1, nil
}

// Write sets the Type from the first ASCII digit in p.
func (x *PacketType) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, ErrShortWrite
	}
	t := PacketType(p[0] - '0') // bytes below '0' wrap around and are invalid
	if !t.Valid() {
		return 0, ErrInvalidPacketType.F(p[0])
	}
	*x = t
	return 1, nil
}
