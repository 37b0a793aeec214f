package messages

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSerializeFrameShape(t *testing.T) {
	m := &DeviceMove{Header: Header{Sender: 3, MessageID: 9}, ID: 1, X: 10, Y: 20, PreviousX: 1, PreviousY: 2}
	data, err := Serialize(m)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		t.Fatalf("frame is not a JSON array: %v", err)
	}
	if len(pair) != 2 || string(pair[0]) != `"DeviceMove"` {
		t.Fatalf("got frame %s", data)
	}

	var obj map[string]any
	if err := json.Unmarshal(pair[1], &obj); err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]any{
		"msg_type":   "DeviceMove",
		"sender":     3.0,
		"message_id": 9.0,
		"previous_x": 1.0,
	} {
		if obj[key] != want {
			t.Errorf("%s: got %v, want %v", key, obj[key], want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []Message{
		&DeviceCreate{Header: Header{Sender: 1}, ID: 4, X: 1.5, Y: 2, Name: "R4", Type: "router"},
		&LinkDestroy{ID: 5, Name: "l", FromDeviceID: 1, ToDeviceID: 2, FromInterfaceID: 1, ToInterfaceID: 1},
		&GroupMembership{ID: 2, Members: []int{1, 3}},
		&KeyEvent{Key: "z", KeyCode: 90, Type: "keydown", CtrlKey: true},
		&MouseWheelEvent{Delta: -1, Type: "mousewheel", OriginalEvent: OriginalEvent{MetaKey: true}},
	}
	for _, m := range tests {
		t.Run(m.TypeName(), func(t *testing.T) {
			data, err := Serialize(m)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			got, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got.TypeName() != m.TypeName() {
				t.Errorf("type: got %s, want %s", got.TypeName(), m.TypeName())
			}
			again, _ := Serialize(got)
			if string(again) != string(data) {
				t.Errorf("re-encoded frame differs:\n got %s\nwant %s", again, data)
			}
		})
	}
}

func TestParseUnknownType(t *testing.T) {
	_, err := Parse([]byte(`["Teleport", {"x": 1}]`))
	var unk *UnknownMessageError
	if !errors.As(err, &unk) {
		t.Fatalf("got %v, want *UnknownMessageError", err)
	}
	if unk.Type != "Teleport" || string(unk.Payload) != `{"x": 1}` {
		t.Errorf("got type %q payload %s", unk.Type, unk.Payload)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, frame := range []string{`{}`, `["DeviceMove"]`, `[1, {}]`, `not json`} {
		if _, err := Parse([]byte(frame)); !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("Parse(%s): got %v, want ErrMalformedFrame", frame, err)
		}
	}
}

func TestWireAliases(t *testing.T) {
	m, err := Parse([]byte(`["id", 42]`))
	if err != nil {
		t.Fatal(err)
	}
	cid, ok := m.(*ClientID)
	if !ok || cid.ID != 42 {
		t.Fatalf("got %#v, want ClientID 42", m)
	}
	data, _ := Serialize(&ClientID{ID: 7})
	if string(data) != `["id",7]` {
		t.Errorf("got %s", data)
	}

	m, err = Parse([]byte(`["topology", {"topology_id": 3, "panX": 1, "panY": 2, "scale": 0.5, "device_id_seq": 9}]`))
	if err != nil {
		t.Fatal(err)
	}
	topo := m.(*Topology)
	if topo.TopologyID != 3 || topo.PanY != 2 || topo.DeviceIDSeq != 9 {
		t.Errorf("got %+v", topo)
	}
}

func TestMultipleMessageDecodesSubMessages(t *testing.T) {
	frame := `["MultipleMessage", {"msg_type": "MultipleMessage", "sender": 1, "messages": [
		{"msg_type": "StartRecording", "sender": 1, "message_id": 2},
		{"msg_type": "ViewPort", "sender": 1, "message_id": 3, "scale": 2, "panX": 5, "panY": 6}
	]}]`
	m, err := Parse([]byte(frame))
	if err != nil {
		t.Fatal(err)
	}
	mm := m.(*MultipleMessage)
	if len(mm.Messages) != 2 {
		t.Fatalf("got %d sub-messages, want 2", len(mm.Messages))
	}
	vp, ok := mm.Messages[1].(*ViewPort)
	if !ok || vp.Scale != 2 || vp.MessageID != 3 {
		t.Errorf("got %#v", mm.Messages[1])
	}
}

func TestStampSetsSubMessageTypes(t *testing.T) {
	mm := &MultipleMessage{Messages: []Message{&StartRecording{}, &ViewPort{Scale: 1}}}
	data, err := Serialize(mm)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg_type":"ViewPort"`) {
		t.Errorf("sub-message type missing: %s", data)
	}
}

func TestUndoCarriesFrame(t *testing.T) {
	orig, err := FrameOf(&DeviceMove{ID: 1, X: 5, Y: 5})
	if err != nil {
		t.Fatal(err)
	}
	data, _ := Serialize(&Undo{OriginalMessage: orig})
	m, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	inner, err := m.(*Undo).OriginalMessage.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if mv, ok := inner.(*DeviceMove); !ok || mv.X != 5 {
		t.Errorf("got %#v", inner)
	}
}

func TestHistoryIsBareList(t *testing.T) {
	f, _ := FrameOf(&DeviceCreate{ID: 1, Name: "a"})
	data, _ := Serialize(&History{Messages: []Frame{f}})
	if !strings.HasPrefix(string(data), `["History",[["DeviceCreate",`) {
		t.Errorf("got %s", data)
	}
	m, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if h := m.(*History); len(h.Messages) != 1 || h.Messages[0].Type != "DeviceCreate" {
		t.Errorf("got %+v", h)
	}

	empty, _ := Serialize(&History{})
	if string(empty) != `["History",[]]` {
		t.Errorf("empty history: got %s", empty)
	}
}

func TestFactsDecode(t *testing.T) {
	f := &Facts{Key: "leaf1", Value: json.RawMessage(`{
		"ansible_local": {"ptm": {"0": {"port": "swp1", "cbl status": "pass"}}},
		"ansible_net_neighbors": {"swp2": [{"host": "spine1", "port": "swp9"}]}
	}`)}
	v, err := f.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if v.AnsibleLocal == nil || v.AnsibleLocal.PTM["0"].CblStatus != "pass" {
		t.Errorf("ptm: got %+v", v.AnsibleLocal)
	}
	if got := v.AnsibleNetNeighbors["swp2"]; len(got) != 1 || got[0].Host != "spine1" {
		t.Errorf("neighbors: got %+v", got)
	}
}

func TestEveryTypeRegistered(t *testing.T) {
	for _, name := range []string{"DeviceMove", "StreamUnSelected", "TableCellEdit", "CopySite", "Snapshot", "Facts", "ClientId"} {
		if New(name) == nil {
			t.Errorf("%s not registered", name)
		}
	}
	if len(Types()) != 51 {
		t.Errorf("got %d registered types, want 51", len(Types()))
	}
}
