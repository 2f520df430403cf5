package protocol

// Handshake is the data of the OPEN packet sent by the server.
type Handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval Duration `json:"pingInterval"`
	PingTimeout  Duration `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// DecodeHandshake reads the handshake from an OPEN packet.
func DecodeHandshake(pac Packet) (hs Handshake, err error) {
	if pac.T != OpenPacket {
		return hs, ErrInvalidHandshake.F(pac.T)
	}
	if err = json.Unmarshal(pac.D, &hs); err != nil {
		return hs, ErrHandshakeDecode.F(err)
	}
	if hs.SID == "" {
		return hs, ErrInvalidHandshake.F("empty sid")
	}
	return hs, nil
}

func (hs Handshake) CanUpgrade(transport string) bool {
	for _, upgrade := range hs.Upgrades {
		if upgrade == transport {
			return true
		}
	}
	return false
}
