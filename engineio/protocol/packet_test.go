package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketFrame(t *testing.T) {
	var tests = map[string]struct {
		pac    Packet
		data   string
		binary bool
	}{
		"Open":           {Packet{T: OpenPacket, D: []byte(`{"sid":"x"}`)}, `0{"sid":"x"}`, false},
		"Close":          {Packet{T: ClosePacket}, `1`, false},
		"Ping":           {Packet{T: PingPacket}, `2`, false},
		"Pong with text": {Packet{T: PongPacket, D: []byte("probe")}, `3probe`, false},
		"Message":        {Packet{T: MessagePacket, D: []byte(`2["hi"]`)}, `42["hi"]`, false},
		"Binary message": {Packet{T: MessagePacket, D: []byte{0x01, 0x02}, Binary: true}, "\x01\x02", true},
		"Noop":           {Packet{T: NoopPacket}, `6`, false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			data, binary := test.pac.Frame()
			assert.Equal(t, test.data, string(data))
			assert.Equal(t, test.binary, binary)

			have, err := FromFrame(data, binary)
			require.NoError(t, err)
			assert.Equal(t, test.pac.T, have.T)
			assert.Equal(t, test.pac.Binary, have.Binary)
			assert.Equal(t, string(test.pac.D), string(have.D))
		})
	}

	_, err := FromFrame(nil, false)
	assert.ErrorIs(t, err, ErrEmptyPacket)

	_, err = FromFrame([]byte("9"), false)
	assert.ErrorIs(t, err, ErrInvalidPacketType)
}

func TestPayload(t *testing.T) {
	packets := []Packet{
		{T: MessagePacket, D: []byte("hello")},
		{T: MessagePacket, D: []byte{1, 2, 3, 4}, Binary: true},
		{T: PingPacket},
	}

	data := EncodePayload(packets...)
	assert.Equal(t, "4hello\x1ebAQIDBA==\x1e2", string(data))

	have, err := DecodePayload(data)
	require.NoError(t, err)
	assert.Equal(t, []Packet{
		{T: MessagePacket, D: []byte("hello")},
		{T: MessagePacket, D: []byte{1, 2, 3, 4}, Binary: true},
		{T: PingPacket, D: []byte{}},
	}, have)

	_, err = DecodePayload(nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = DecodePayload([]byte("4ok\x1ebnot base64!"))
	assert.ErrorIs(t, err, ErrPayloadDecode)

	_, err = DecodePayload([]byte("4ok\x1e\x1e"))
	assert.ErrorIs(t, err, ErrEmptyPacket)
}

func TestDecodeHandshake(t *testing.T) {
	pac, err := FromFrame([]byte(`0{"sid":"lv_VI97HAXpY6yYWAAAC","upgrades":["websocket"],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`), false)
	require.NoError(t, err)

	hs, err := DecodeHandshake(pac)
	require.NoError(t, err)
	assert.Equal(t, "lv_VI97HAXpY6yYWAAAC", hs.SID)
	assert.Equal(t, 25*time.Second, hs.PingInterval.Std())
	assert.Equal(t, 20*time.Second, hs.PingTimeout.Std())
	assert.Equal(t, 1000000, hs.MaxPayload)
	assert.True(t, hs.CanUpgrade("websocket"))
	assert.False(t, hs.CanUpgrade("webtransport"))

	_, err = DecodeHandshake(Packet{T: MessagePacket})
	assert.ErrorIs(t, err, ErrInvalidHandshake)

	_, err = DecodeHandshake(Packet{T: OpenPacket, D: []byte(`{"sid":""}`)})
	assert.ErrorIs(t, err, ErrInvalidHandshake)

	_, err = DecodeHandshake(Packet{T: OpenPacket, D: []byte(`{"sid":"x","pingInterval":"soon"}`)})
	assert.ErrorIs(t, err, ErrHandshakeDecode)

	b, err := json.Marshal(Duration(1500 * time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "1500", string(b))
}
