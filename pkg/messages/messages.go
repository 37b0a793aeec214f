// Package messages defines the collaboration protocol: every message the
// editor and relay exchange, and the [type, object] frame they travel in.
package messages

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned when a frame is not a [type, object] pair.
var ErrMalformedFrame = errors.New("malformed frame")

// Header holds the fields every message carries.
type Header struct {
	MsgType   string `json:"msg_type"`
	Sender    int    `json:"sender"`
	MessageID int    `json:"message_id,omitempty"`
	TraceID   int    `json:"trace_id,omitempty"`
}

// Head returns the header for stamping.
func (h *Header) Head() *Header { return h }

// Message is implemented by every catalogue entry.
type Message interface {
	TypeName() string
	Head() *Header
}

// UnknownMessageError reports a frame whose type is not in the catalogue.
type UnknownMessageError struct {
	Type    string
	Payload json.RawMessage
}

func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

var (
	registry = make(map[string]func() Message)

	// Names some messages travel under on the wire.
	wireAliases = map[string]string{
		"id":       "ClientId",
		"topology": "Topology",
	}
	wireNames = map[string]string{
		"ClientId": "id",
		"Topology": "topology",
	}
)

func register[T any, P interface {
	*T
	Message
}]() {
	name := P(new(T)).TypeName()
	registry[name] = func() Message { return P(new(T)) }
}

// Types returns the names of every registered message.
func Types() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

// New returns a zero message of the named type, or nil.
func New(name string) Message {
	if alias, ok := wireAliases[name]; ok {
		name = alias
	}
	fn, ok := registry[name]
	if !ok {
		return nil
	}
	return fn()
}

// WireName returns the frame type name m is sent under.
func WireName(m Message) string {
	if alias, ok := wireNames[m.TypeName()]; ok {
		return alias
	}
	return m.TypeName()
}

// Stamp fills in msg_type on m and on any messages it carries.
func Stamp(m Message) {
	m.Head().MsgType = m.TypeName()
	if mm, ok := m.(*MultipleMessage); ok {
		for _, sub := range mm.Messages {
			Stamp(sub)
		}
	}
}

// Serialize encodes m as a [type, object] frame.
func Serialize(m Message) ([]byte, error) {
	Stamp(m)
	return json.Marshal([2]any{WireName(m), m})
}

// Parse decodes a [type, object] frame into its typed message.
func Parse(frame []byte) (Message, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(frame, &pair); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("%w: want 2 elements, got %d", ErrMalformedFrame, len(pair))
	}
	var name string
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return nil, fmt.Errorf("%w: type name: %v", ErrMalformedFrame, err)
	}
	return Decode(name, pair[1])
}

// Decode decodes the object part of a frame of the given type.
func Decode(name string, data []byte) (Message, error) {
	m := New(name)
	if m == nil {
		return nil, &UnknownMessageError{Type: name, Payload: append(json.RawMessage(nil), data...)}
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if m.Head().MsgType == "" {
		m.Head().MsgType = m.TypeName()
	}
	return m, nil
}

// DecodeObject decodes a bare message object using its msg_type field.
func DecodeObject(data []byte) (Message, error) {
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if h.MsgType == "" {
		return nil, fmt.Errorf("%w: object has no msg_type", ErrMalformedFrame)
	}
	return Decode(h.MsgType, data)
}

// Frame is an undecoded [type, object] pair, as stored in history and
// carried by Undo and Redo.
type Frame struct {
	Type string
	Data json.RawMessage
}

// FrameOf encodes m as a Frame.
func FrameOf(m Message) (Frame, error) {
	Stamp(m)
	data, err := json.Marshal(m)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: WireName(m), Data: data}, nil
}

// Decode decodes the frame's object.
func (f Frame) Decode() (Message, error) {
	return Decode(f.Type, f.Data)
}

func (f Frame) MarshalJSON() ([]byte, error) {
	data := f.Data
	if data == nil {
		data = json.RawMessage("null")
	}
	return json.Marshal([2]any{f.Type, data})
}

func (f *Frame) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: want 2 elements, got %d", ErrMalformedFrame, len(pair))
	}
	if err := json.Unmarshal(pair[0], &f.Type); err != nil {
		return fmt.Errorf("%w: type name: %v", ErrMalformedFrame, err)
	}
	f.Data = append(json.RawMessage(nil), pair[1]...)
	return nil
}
