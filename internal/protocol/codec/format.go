package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/flip-seven/internal/protocol"
)

// Format is the wire framing negotiated per connection
type Format int

const (
	// FormatJSON sends the envelope as a JSON text frame
	FormatJSON Format = iota
	// FormatProto sends the envelope as a protobuf google.protobuf.Struct binary frame
	FormatProto
)

var errMissingType = errors.New("message has no type")

// ParseFormat maps the ?format= query value to a Format; anything unknown is JSON
func ParseFormat(s string) Format {
	switch s {
	case "proto", "protobuf", "pb":
		return FormatProto
	default:
		return FormatJSON
	}
}

func (f Format) String() string {
	if f == FormatProto {
		return "proto"
	}
	return "json"
}

// Binary reports whether frames of this format go out as websocket binary messages
func (f Format) Binary() bool {
	return f == FormatProto
}

// Encode serializes a message
func (f Format) Encode(m *protocol.Message) ([]byte, error) {
	if f == FormatProto {
		return encodeProto(m)
	}
	return encodeJSON(m)
}

// Decode parses a frame. The returned message comes from the pool; call PutMessage when done.
func (f Format) Decode(data []byte) (*protocol.Message, error) {
	if f == FormatProto {
		return decodeProto(data)
	}
	return decodeJSON(data)
}

func encodeJSON(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func decodeJSON(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, errMissingType
	}
	return msg, nil
}

func encodeProto(m *protocol.Message) ([]byte, error) {
	fields := map[string]any{"type": string(m.Type)}
	if len(m.Payload) > 0 {
		var payload any
		if err := json.Unmarshal(m.Payload, &payload); err != nil {
			return nil, fmt.Errorf("payload is not json: %w", err)
		}
		fields["payload"] = payload
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func decodeProto(data []byte) (*protocol.Message, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, err
	}

	typ := st.GetFields()["type"].GetStringValue()
	if typ == "" {
		return nil, errMissingType
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(typ)
	if payload, ok := st.GetFields()["payload"]; ok {
		data, err := payload.MarshalJSON()
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = data
	}
	return msg, nil
}
