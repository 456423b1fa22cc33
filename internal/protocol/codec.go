package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Codec serializes messages for one wire format
type Codec interface {
	Name() string
	// Binary reports whether frames must be sent as binary websocket messages
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// CodecFor maps the ?protocol= query value to a codec. Unknown values get JSON.
func CodecFor(name string) Codec {
	switch name {
	case "msgpack":
		return MsgpackCodec{}
	case "binary", "proto", "protobuf":
		return ProtoCodec{}
	default:
		return JSONCodec{}
	}
}

// Prepared wraps an outbound message shared by many sessions so each wire
// format encodes it once
type Prepared struct {
	Message

	mu      sync.Mutex
	encoded map[string][]byte
}

func Prepare(msg Message) *Prepared {
	return &Prepared{Message: msg, encoded: make(map[string][]byte, 3)}
}

// Encode returns the cached frame for codec, marshaling on first use. The
// returned slice is shared and must not be modified.
func (p *Prepared) Encode(codec Codec) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if data, ok := p.encoded[codec.Name()]; ok {
		return data, nil
	}
	data, err := codec.Marshal(p.Message)
	if err != nil {
		return nil, err
	}
	p.encoded[codec.Name()] = data
	return data, nil
}

// Encode marshals msg with codec, reusing the cached frame of a Prepared message
func Encode(codec Codec, msg Message) ([]byte, error) {
	if prepared, ok := msg.(*Prepared); ok {
		return prepared.Encode(codec)
	}
	return codec.Marshal(msg)
}

// JSONCodec is the default text protocol
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// MsgpackCodec encodes the same field names as JSON in MessagePack
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding msgpack: %w", err)
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding msgpack: %w", err)
	}
	return nil
}

// ProtoCodec carries messages as a google.protobuf.Struct
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return "protobuf" }
func (ProtoCodec) Binary() bool { return true }

func (ProtoCodec) Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("message is not an object: %w", err)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("building struct: %w", err)
	}
	return proto.Marshal(s)
}

func (ProtoCodec) Unmarshal(data []byte, v any) error {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshaling proto message: %w", err)
	}
	raw, err := protojson.Marshal(&s)
	if err != nil {
		return fmt.Errorf("converting proto message: %w", err)
	}
	return json.Unmarshal(raw, v)
}
