package protocol

import (
	"bytes"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONParser reads and writes the default socket.io text format:
//
//     <packet type>[<# of binary attachments>-][<namespace>,][<acknowledgment id>][JSON-stringified payload without binary]
//
// for example:
//
//     2/admin,456["project:delete",123]
type JSONParser struct{}

func (JSONParser) Name() string { return JSON }

func (JSONParser) Encode(pac Packet) ([]byte, bool, error) {
	if !pac.Type.Valid() {
		return nil, false, ErrInvalidPacketType.F(pac.Type.Byte())
	}

	var buf bytes.Buffer
	buf.WriteByte(pac.Type.Char())

	if pac.Type.IsBinary() {
		buf.WriteString(strconv.Itoa(pac.Attachments))
		buf.WriteByte('-')
	}

	if pac.Namespace != "" && pac.Namespace != DefaultNamespace {
		buf.WriteString(pac.Namespace)
		buf.WriteByte(',')
	}

	if pac.AckID != nil {
		buf.WriteString(strconv.FormatUint(*pac.AckID, 10))
	}

	switch data := pac.Data.(type) {
	case nil:
	case RawMessage:
		buf.Write(data)
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, false, ErrBadMarshal.F(err)
		}
		buf.Write(b)
	}

	return buf.Bytes(), false, nil
}

func (p JSONParser) Decode(data []byte, binary bool) (pac Packet, err error) {
	if binary {
		return pac, ErrUnexpectedBinary.F(p.Name())
	}
	if len(data) == 0 {
		return pac, ErrEmptyPacket
	}

	if _, err = pac.Type.Write(data); err != nil {
		return pac, err
	}
	data = data[1:]

	if pac.Type.IsBinary() {
		idx := bytes.IndexByte(data, '-')
		if idx < 0 {
			return pac, ErrBadAttachments.F(data)
		}
		if pac.Attachments, err = strconv.Atoi(string(data[:idx])); err != nil || pac.Attachments < 0 {
			return pac, ErrBadAttachments.F(data[:idx])
		}
		data = data[idx+1:]
	}

	pac.Namespace = DefaultNamespace
	if len(data) > 0 && data[0] == '/' {
		idx := bytes.IndexByte(data, ',')
		if idx < 0 {
			idx = len(data)
		}
		pac.Namespace = string(data[:idx])
		data = data[min(idx+1, len(data)):]
	}

	var n int
	for n < len(data) && data[n] >= '0' && data[n] <= '9' {
		n++
	}
	if n > 0 {
		ackID, err := strconv.ParseUint(string(data[:n]), 10, 64)
		if err != nil {
			return pac, ErrBadAckID.F(err)
		}
		pac.AckID = &ackID
		data = data[n:]
	}

	if len(data) > 0 {
		if err = json.Unmarshal(data, &pac.Data); err != nil {
			return pac, ErrBadUnmarshal.F(err)
		}
	}

	return pac, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
