package protocol

import (
	"bytes"
	"encoding/base64"
)

// RecordSeparator delimits the packets of a v4 polling payload.
const RecordSeparator byte = 0x1e

// EncodePayload joins packets into a v4 polling payload. Binary packets are
// written as a 'b' followed by the base64 of the data.
func EncodePayload(packets ...Packet) []byte {
	var buf bytes.Buffer
	for i, pac := range packets {
		if i > 0 {
			buf.WriteByte(RecordSeparator)
		}
		if pac.Binary {
			buf.WriteByte('b')
			buf.WriteString(base64.StdEncoding.EncodeToString(pac.D))
			continue
		}
		buf.WriteByte(pac.T.Char())
		buf.Write(pac.D)
	}
	return buf.Bytes()
}

func DecodePayload(data []byte) ([]Packet, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	records := bytes.Split(data, []byte{RecordSeparator})
	packets := make([]Packet, 0, len(records))
	for i, record := range records {
		if len(record) > 0 && record[0] == 'b' {
			raw, err := base64.StdEncoding.DecodeString(string(record[1:]))
			if err != nil {
				return nil, ErrPayloadDecode.F(i, err)
			}
			packets = append(packets, Packet{T: MessagePacket, D: raw, Binary: true})
			continue
		}

		pac, err := FromFrame(record, false)
		if err != nil {
			return nil, ErrPayloadDecode.F(i, err)
		}
		packets = append(packets, pac)
	}
	return packets, nil
}
