package protocol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukinoo0/Blazefield/internal/types"
)

var codecs = []Codec{JSONCodec{}, MsgpackCodec{}, ProtoCodec{}}

func encode(t *testing.T, codec Codec, v any) []byte {
	t.Helper()
	data, err := codec.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestDecode_AllCodecs(t *testing.T) {
	for _, codec := range codecs {
		t.Run(codec.Name(), func(t *testing.T) {
			msg, err := Decode(codec, encode(t, codec, map[string]any{
				"type": "join", "nickname": "Nova", "class": "sniper", "profileId": "p1", "extra": true,
			}))
			require.NoError(t, err)
			assert.Equal(t, Join{Nickname: "Nova", Class: "sniper", ProfileID: "p1"}, msg)

			msg, err = Decode(codec, encode(t, codec, map[string]any{
				"type": "state", "x": 1.5, "y": 2, "z": -3, "rotY": 0.25,
			}))
			require.NoError(t, err)
			assert.Equal(t, State{Position: types.Vector3{X: 1.5, Y: 2, Z: -3}, RotY: 0.25}, msg)

			msg, err = Decode(codec, encode(t, codec, map[string]any{
				"type":   "shot",
				"origin": map[string]any{"x": 0, "y": 1.6, "z": 0},
				"dir":    map[string]any{"x": 0, "y": 0, "z": 1},
				"damage": 34,
			}))
			require.NoError(t, err)
			shot, ok := msg.(Shot)
			require.True(t, ok)
			assert.Equal(t, types.Vector3{Y: 1.6}, shot.Origin)
			assert.Equal(t, types.Vector3{Z: 1}, shot.Direction)
			require.NotNil(t, shot.Damage)
			assert.Equal(t, 34.0, *shot.Damage)

			msg, err = Decode(codec, encode(t, codec, map[string]any{"type": "resetProfile"}))
			require.NoError(t, err)
			assert.Equal(t, ResetProfile{}, msg)
		})
	}
}

func TestDecode_ExternalProfileIDAlias(t *testing.T) {
	msg, err := Decode(JSONCodec{}, []byte(`{"type":"join","nickname":"a","externalProfileId":"ext-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "ext-1", msg.(Join).ProfileID)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{name: "not json", payload: `{"type":`, wantErr: ErrMalformed},
		{name: "type not a string", payload: `{"type":5}`, wantErr: ErrMalformed},
		{name: "unknown type", payload: `{"type":"teleport"}`, wantErr: ErrUnknownType},
		{name: "state missing rotY", payload: `{"type":"state","x":1,"y":1,"z":1}`, wantErr: ErrMissingField},
		{name: "state with string field", payload: `{"type":"state","x":"1","y":1,"z":1,"rotY":0}`, wantErr: ErrMalformed},
		{name: "shot without origin", payload: `{"type":"shot","dir":{"x":0,"y":0,"z":1}}`, wantErr: ErrMissingField},
		{name: "shot with partial dir", payload: `{"type":"shot","origin":{"x":0,"y":0,"z":0},"dir":{"x":1}}`, wantErr: ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(JSONCodec{}, []byte(tt.payload))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDropReason(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{payload: `{"type":`, want: "malformed"},
		{payload: `{"type":"teleport"}`, want: "unknown_type"},
		{payload: `{"type":"state","x":1}`, want: "missing_field"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			_, err := Decode(JSONCodec{}, []byte(tt.payload))
			require.Error(t, err)
			assert.Equal(t, tt.want, DropReason(err))
		})
	}
}

func TestDecode_NonFiniteStateFromBinary(t *testing.T) {
	codec := MsgpackCodec{}
	data := encode(t, codec, map[string]any{
		"type": "state", "x": math.NaN(), "y": 1.0, "z": 1.0, "rotY": 0.0,
	})

	_, err := Decode(codec, data)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestCodecFor(t *testing.T) {
	assert.Equal(t, "json", CodecFor("").Name())
	assert.Equal(t, "msgpack", CodecFor("msgpack").Name())
	assert.Equal(t, "protobuf", CodecFor("binary").Name())
	assert.False(t, CodecFor("").Binary())
	assert.True(t, CodecFor("binary").Binary())
}

func TestOutboundEncoding(t *testing.T) {
	spawn := types.Vector3{X: 1, Y: 1.6, Z: 2}
	msg := NewHitInfo(100, true, "Viktor", &spawn)

	for _, codec := range codecs {
		t.Run(codec.Name(), func(t *testing.T) {
			var decoded map[string]any
			require.NoError(t, codec.Unmarshal(encode(t, codec, msg), &decoded))

			assert.Equal(t, "hitInfo", decoded["type"])
			assert.Equal(t, true, decoded["killed"])
			assert.Equal(t, "Viktor", decoded["killer"])
			assert.Contains(t, decoded, "spawn")
		})
	}
}

// countingCodec counts Marshal calls on top of JSON
type countingCodec struct {
	JSONCodec
	calls *int
}

func (c countingCodec) Marshal(v any) ([]byte, error) {
	*c.calls++
	return c.JSONCodec.Marshal(v)
}

func TestPrepared_EncodesOncePerCodec(t *testing.T) {
	var calls int
	codec := countingCodec{calls: &calls}
	msg := Prepare(NewKillEvent(1, 2))

	for range 5 {
		data, err := Encode(codec, msg)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"killEvent","killerId":1,"victimId":2}`, string(data))
	}
	assert.Equal(t, 1, calls)

	packed, err := Encode(MsgpackCodec{}, msg)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, MsgpackCodec{}.Unmarshal(packed, &decoded))
	assert.Equal(t, "killEvent", decoded["type"])
	assert.Equal(t, TypeKillEvent, msg.MessageType())
}

func TestEncode_PlainMessage(t *testing.T) {
	var calls int
	codec := countingCodec{calls: &calls}

	_, err := Encode(codec, NewHitConfirm(3))
	require.NoError(t, err)
	_, err = Encode(codec, NewHitConfirm(3))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestToSnapshot(t *testing.T) {
	entities := []*types.Entity{
		{ID: 3, Kind: types.KindHuman, Health: 66, Class: "assault", Gamemode: "ffa"},
		{ID: 4, Name: "Lukas", Kind: types.KindBot, Health: 100, Kills: 2},
	}

	snap := ToSnapshot(entities)

	require.Len(t, snap.Players, 2)
	assert.Equal(t, TypeSnapshot, snap.Type)
	assert.Equal(t, "Player3", snap.Players[0].Nickname)
	assert.Equal(t, 66, snap.Players[0].HP)
	assert.True(t, snap.Players[1].IsBot)
	assert.Equal(t, 2, snap.Players[1].Kills)
}
