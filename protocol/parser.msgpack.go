package protocol

import "github.com/vmihailenco/msgpack"

// MsgpackParser encodes every packet as a msgpack map. Binary values travel
// inside the map so there are never any attachments.
type MsgpackParser struct{}

type msgpackPacket struct {
	Type PacketType  `msgpack:"type"`
	Nsp  string      `msgpack:"nsp"`
	Data interface{} `msgpack:"data,omitempty"`
	ID   *uint64     `msgpack:"id,omitempty"`
}

func (MsgpackParser) Name() string { return Msgpack }

func (MsgpackParser) Encode(pac Packet) ([]byte, bool, error) {
	if !pac.Type.Valid() {
		return nil, true, ErrInvalidPacketType.F(pac.Type.Byte())
	}

	out := msgpackPacket{Type: pac.Type, Nsp: pac.Namespace, Data: pac.Data, ID: pac.AckID}
	if out.Nsp == "" {
		out.Nsp = DefaultNamespace
	}

	if raw, ok := pac.Data.(RawMessage); ok {
		out.Data = nil
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &out.Data); err != nil {
				return nil, true, ErrBadUnmarshal.F(err)
			}
		}
	}

	b, err := msgpack.Marshal(out)
	if err != nil {
		return nil, true, ErrBadMarshal.F(err)
	}
	return b, true, nil
}

func (p MsgpackParser) Decode(data []byte, binary bool) (pac Packet, err error) {
	if !binary {
		return pac, ErrUnexpectedText.F(p.Name())
	}
	if len(data) == 0 {
		return pac, ErrEmptyPacket
	}

	var in msgpackPacket
	if err = msgpack.Unmarshal(data, &in); err != nil {
		return pac, ErrBadUnmarshal.F(err)
	}
	if !in.Type.Valid() {
		return pac, ErrInvalidPacketType.F(in.Type.Byte())
	}

	pac = Packet{Type: in.Type, Namespace: in.Nsp, AckID: in.ID, Data: in.Data}
	if pac.Namespace == "" {
		pac.Namespace = DefaultNamespace
	}
	return pac, nil
}
