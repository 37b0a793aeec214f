package session

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

type recorder struct {
	frames [][]byte
	fail   bool
}

func (r *recorder) Send(frame []byte) error {
	if r.fail {
		return errors.New("socket closed")
	}
	r.frames = append(r.frames, append([]byte(nil), frame...))
	return nil
}

func (r *recorder) parsed(t *testing.T) []messages.Message {
	t.Helper()
	out := make([]messages.Message, 0, len(r.frames))
	for _, f := range r.frames {
		m, err := messages.Parse(f)
		if err != nil {
			t.Fatalf("Parse(%s): %v", f, err)
		}
		out = append(out, m)
	}
	return out
}

func connected(t *testing.T) (*Session, *recorder) {
	t.Helper()
	s := New(Options{})
	r := &recorder{}
	s.SetTransport(r)
	s.OnClientID(1)
	return s, r
}

// twoSwitches builds a-b linked through eth0 on each side.
func twoSwitches(s *Session) {
	s.CreateDevice(1, "a", 0, 0, "switch")
	s.CreateDevice(2, "b", 200, 0, "switch")
	s.CreateInterface(1, 1, "eth0")
	s.CreateInterface(2, 1, "eth0")
	s.CreateLink(LinkEnds{ID: 1, FromDeviceID: 1, ToDeviceID: 2, FromInterfaceID: 1, ToInterfaceID: 1}, "l1")
}

func checkLinkSymmetry(t *testing.T, s *Session) {
	t.Helper()
	for _, l := range s.Links {
		if l.FromInterface.Link != l || l.ToInterface.Link != l {
			t.Errorf("link %d: interfaces do not point back at it", l.ID)
		}
	}
}

func TestLinkEndpointSymmetry(t *testing.T) {
	s := New(Options{})
	twoSwitches(s)
	s.CreateDevice(3, "c", 100, 200, "router")
	s.CreateInterface(3, 1, "eth0")
	s.CreateInterface(1, 2, "eth1")
	s.CreateLink(LinkEnds{ID: 2, FromDeviceID: 3, ToDeviceID: 1, FromInterfaceID: 1, ToInterfaceID: 2}, "l2")
	checkLinkSymmetry(t, s)

	// b.eth0 already carries link 1.
	s.CreateInterface(3, 2, "eth1")
	if l := s.CreateLink(LinkEnds{ID: 3, FromDeviceID: 2, ToDeviceID: 3, FromInterfaceID: 1, ToInterfaceID: 2}, "l3"); l != nil {
		t.Error("link created on an interface that already has one")
	}
	checkLinkSymmetry(t, s)
	if len(s.Links) != 2 {
		t.Errorf("links: got %d, want 2", len(s.Links))
	}
	if got := s.Device(2).Interface(1).Link; got == nil || got.ID != 1 {
		t.Errorf("b.eth0 link: got %v, want link 1", got)
	}
	if s.Device(3).Interface(2).Link != nil {
		t.Error("skipped link left c.eth1 attached")
	}

	s.MoveDevice(1, 50, 50)
	checkLinkSymmetry(t, s)

	s.DestroyLink(LinkEnds{ID: 1, FromDeviceID: 1, ToDeviceID: 2, FromInterfaceID: 1, ToInterfaceID: 1})
	checkLinkSymmetry(t, s)
	if s.Device(2).Interface(1).Link != nil {
		t.Error("destroyed link still attached to interface")
	}

	s.DestroyDevice(1)
	checkLinkSymmetry(t, s)
	if len(s.Links) != 0 {
		t.Errorf("links: got %d, want 0 after destroying their device", len(s.Links))
	}
	if s.Device(3).Interface(1).Link != nil {
		t.Error("far interface still attached after device destroy")
	}
}

func TestCreateLinkRequiresEndpoints(t *testing.T) {
	s := New(Options{})
	s.CreateDevice(1, "a", 0, 0, "switch")
	s.CreateDevice(2, "b", 100, 0, "switch")
	s.CreateInterface(1, 1, "eth0")

	if l := s.CreateLink(LinkEnds{ID: 1, FromDeviceID: 1, ToDeviceID: 2, FromInterfaceID: 1, ToInterfaceID: 1}, ""); l != nil {
		t.Error("link created without its to interface")
	}
	if l := s.CreateLink(LinkEnds{ID: 1, FromDeviceID: 1, ToDeviceID: 9, FromInterfaceID: 1, ToInterfaceID: 1}, ""); l != nil {
		t.Error("link created to a missing device")
	}
	if len(s.Links) != 0 || s.Device(1).Interface(1).Link != nil {
		t.Error("skipped link left state behind")
	}
}

func TestMoveDeviceRecomputesDots(t *testing.T) {
	s := New(Options{})
	twoSwitches(s)
	ib := s.Device(2).Interface(1)
	if ib.DotX != 150 {
		t.Fatalf("initial dot: got %v, want 150", ib.DotX)
	}
	s.MoveDevice(1, 400, 0)
	if ib.DotX != 250 {
		t.Errorf("far dot after move: got %v, want 250", ib.DotX)
	}
}

func TestStaleLinkDestroy(t *testing.T) {
	s := New(Options{})
	twoSwitches(s)

	tests := []LinkEnds{
		{ID: 5, FromDeviceID: 1, ToDeviceID: 2, FromInterfaceID: 1, ToInterfaceID: 1},
		{ID: 1, FromDeviceID: 2, ToDeviceID: 1, FromInterfaceID: 1, ToInterfaceID: 1},
		{ID: 1, FromDeviceID: 1, ToDeviceID: 2, FromInterfaceID: 1, ToInterfaceID: 7},
	}
	for _, ends := range tests {
		s.Apply(&messages.LinkDestroy{
			ID: ends.ID, FromDeviceID: ends.FromDeviceID, ToDeviceID: ends.ToDeviceID,
			FromInterfaceID: ends.FromInterfaceID, ToInterfaceID: ends.ToInterfaceID,
		})
		if len(s.Links) != 1 {
			t.Fatalf("%+v: links: got %d, want 1", ends, len(s.Links))
		}
	}
}

func TestUndoRoundTrip(t *testing.T) {
	type fields struct {
		exists     bool
		x, y       float64
		name, kind string
	}
	observe := func(s *Session) fields {
		d := s.Device(1)
		if d == nil {
			return fields{}
		}
		return fields{true, d.X, d.Y, d.Name, d.Type}
	}

	tests := []struct {
		name  string
		setup bool
		msg   messages.Message
	}{
		{"DeviceMove", true, &messages.DeviceMove{ID: 1, X: 90, Y: 80, PreviousX: 10, PreviousY: 20}},
		{"DeviceCreate", false, &messages.DeviceCreate{ID: 1, X: 10, Y: 20, Name: "R1", Type: "router"}},
		{"DeviceDestroy", true, &messages.DeviceDestroy{ID: 1, PreviousX: 10, PreviousY: 20, PreviousName: "R1", PreviousType: "router"}},
		{"DeviceLabelEdit", true, &messages.DeviceLabelEdit{ID: 1, Name: "core", PreviousName: "R1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{})
			if tt.setup {
				s.CreateDevice(1, "R1", 10, 20, "router")
			}
			before := observe(s)

			c, err := NewCommand(tt.msg)
			if err != nil {
				t.Fatal(err)
			}
			c.Apply(s)
			if observe(s) == before {
				t.Fatal("apply changed nothing")
			}
			c.Invert().Apply(s)
			if got := observe(s); got != before {
				t.Errorf("after inverse: got %+v, want %+v", got, before)
			}
		})
	}
}

func TestInvertIsPure(t *testing.T) {
	m := &messages.GroupMove{ID: 1, X1: 5, Y1: 5, X2: 15, Y2: 15, PreviousX2: 10, PreviousY2: 10}
	inv, ok := Invert(m)
	if !ok {
		t.Fatal("GroupMove not invertible")
	}
	back, _ := Invert(inv)
	if *back.(*messages.GroupMove) != *m {
		t.Errorf("double inverse: got %+v, want %+v", back, m)
	}
	if m.X2 != 15 {
		t.Error("Invert mutated its argument")
	}
	if _, ok := Invert(&messages.Deploy{}); ok {
		t.Error("Deploy reported invertible")
	}
}

func TestLocalUndoRedo(t *testing.T) {
	s, r := connected(t)
	d := s.CreateDevice(s.DeviceSeq.Next(), "R1", 10, 10, "router")
	s.Emit(&messages.DeviceCreate{ID: d.ID, X: 10, Y: 10, Name: "R1", Type: "router"})
	s.MoveDevice(d.ID, 50, 60)
	s.Emit(&messages.DeviceMove{ID: d.ID, X: 50, Y: 60, PreviousX: 10, PreviousY: 10})

	if !s.Undo() {
		t.Fatal("nothing to undo")
	}
	if d.X != 10 || d.Y != 10 {
		t.Errorf("after undo: got (%v, %v), want (10, 10)", d.X, d.Y)
	}
	if !s.Redo() {
		t.Fatal("nothing to redo")
	}
	if d.X != 50 || d.Y != 60 {
		t.Errorf("after redo: got (%v, %v), want (50, 60)", d.X, d.Y)
	}

	s.Undo()
	s.Undo()
	if s.Device(d.ID) != nil {
		t.Error("undoing create left the device")
	}
	if s.Undo() {
		t.Error("undo past the start of history")
	}

	sent := r.parsed(t)
	undo, ok := sent[2].(*messages.Undo)
	if !ok || undo.OriginalMessage.Type != "DeviceMove" {
		t.Fatalf("third frame: got %#v, want Undo of DeviceMove", sent[2])
	}
	if _, ok := sent[3].(*messages.Redo); !ok {
		t.Errorf("fourth frame: got %T, want Redo", sent[3])
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	s, _ := connected(t)
	s.CreateDevice(1, "a", 0, 0, "switch")
	s.Emit(&messages.DeviceLabelEdit{ID: 1, Name: "b", PreviousName: "a"})
	s.Undo()
	s.Emit(&messages.DeviceLabelEdit{ID: 1, Name: "c", PreviousName: "a"})
	if s.History.CanRedo() {
		t.Error("redo survived a new edit")
	}
}

func TestRemoteUndoRedo(t *testing.T) {
	s, _ := connected(t)
	s.CreateDevice(1, "a", 10, 10, "switch")
	mv := &messages.DeviceMove{Header: messages.Header{Sender: 2}, ID: 1, X: 40, Y: 40, PreviousX: 10, PreviousY: 10}
	s.Apply(mv)

	f, _ := messages.FrameOf(mv)
	s.Apply(&messages.Undo{Header: messages.Header{Sender: 2}, OriginalMessage: f})
	if d := s.Device(1); d.X != 10 {
		t.Errorf("after remote undo: x=%v, want 10", d.X)
	}
	s.Apply(&messages.Redo{Header: messages.Header{Sender: 2}, OriginalMessage: f})
	if d := s.Device(1); d.X != 40 {
		t.Errorf("after remote redo: x=%v, want 40", d.X)
	}
}

func TestSnapshotReseedsSequences(t *testing.T) {
	s := New(Options{})
	s.LoadSnapshot(&messages.Snapshot{
		Devices: []messages.SnapshotDevice{
			{ID: 3, Name: "a", X: 0, Y: 0, Type: "switch"},
			{ID: 7, Name: "b", X: 100, Y: 0, Type: "switch"},
			{ID: 2, Name: "c", X: 0, Y: 100, Type: "switch"},
		},
		Groups: []messages.SnapshotGroup{{ID: 4, Name: "g", Type: "group", X1: -10, Y1: -10, X2: 50, Y2: 50}},
	})
	if got := s.DeviceSeq.Next(); got <= 7 {
		t.Errorf("device seq: got %d, want > 7", got)
	}
	if got := s.GroupSeq.Next(); got <= 4 {
		t.Errorf("group seq: got %d, want > 4", got)
	}
	if g := s.Group(4); len(g.Devices) != 1 || g.Devices[0].ID != 3 {
		t.Errorf("membership after load: got %v", g.Devices)
	}
}

func TestSnapshotFitsViewport(t *testing.T) {
	s := New(Options{Width: 1200, Height: 800})
	s.LoadSnapshot(&messages.Snapshot{
		Devices: []messages.SnapshotDevice{
			{ID: 1, Name: "a", X: 0, Y: 0, Type: "switch"},
			{ID: 2, Name: "b", X: 2000, Y: 1000, Type: "switch"},
		},
	})
	// min((1200-200)/2000, (800-300)/1000) = 0.5
	if math.Abs(s.Scale-0.5) > 1e-9 {
		t.Errorf("scale: got %v, want 0.5", s.Scale)
	}
	if math.Abs(s.PanX-(0.5*-1000+600)) > 1e-9 || math.Abs(s.PanY-(0.5*-500+400)) > 1e-9 {
		t.Errorf("pan: got (%v, %v), want (100, 150)", s.PanX, s.PanY)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New(Options{})
	twoSwitches(s)
	s.CreateGroup(1, "g", "group", -50, -50, 100, 100)
	s.CreateStream(1, 1, 2, "flow")
	snap := s.Snapshot()

	data, err := messages.Serialize(snap)
	if err != nil {
		t.Fatal(err)
	}
	m, err := messages.Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	other := New(Options{})
	other.Apply(m)
	if len(other.Devices) != 2 || len(other.Links) != 1 || len(other.Groups) != 1 || len(other.Streams) != 1 {
		t.Fatalf("got %d devices %d links %d groups %d streams",
			len(other.Devices), len(other.Links), len(other.Groups), len(other.Streams))
	}
	checkLinkSymmetry(t, other)
	if !other.Device(1).Interface(1).HasDot {
		t.Error("dots not computed after snapshot")
	}
}

func TestQueuedUntilClientID(t *testing.T) {
	s := New(Options{})
	r := &recorder{}
	s.SetTransport(r)

	s.Send(&messages.DeviceCreate{ID: 1, Name: "a", Type: "switch"})
	s.Send(&messages.DeviceMove{ID: 1, X: 5, Y: 5})
	if len(r.frames) != 0 || s.Pending() != 2 {
		t.Fatalf("sent %d frames before client id, pending %d", len(r.frames), s.Pending())
	}

	s.Apply(&messages.ClientID{ID: 9})
	sent := r.parsed(t)
	if len(sent) != 2 {
		t.Fatalf("flushed %d, want 2", len(sent))
	}
	if sent[0].TypeName() != "DeviceCreate" || sent[1].TypeName() != "DeviceMove" {
		t.Errorf("order: got %s, %s", sent[0].TypeName(), sent[1].TypeName())
	}
	if sent[0].Head().MessageID >= sent[1].Head().MessageID {
		t.Errorf("message ids not increasing: %d, %d", sent[0].Head().MessageID, sent[1].Head().MessageID)
	}
	for _, m := range sent {
		if m.Head().Sender != 9 {
			t.Errorf("sender: got %d, want 9", m.Head().Sender)
		}
	}
}

func TestFailedWriteQueues(t *testing.T) {
	s, r := connected(t)
	r.fail = true
	s.Send(&messages.Deploy{})
	if s.Pending() != 1 {
		t.Fatalf("pending: got %d, want 1", s.Pending())
	}
	r.fail = false
	s.Flush()
	if s.Pending() != 0 || len(r.frames) != 1 {
		t.Errorf("after flush: pending %d, sent %d", s.Pending(), len(r.frames))
	}
}

func TestReconnectKeepsQueuedEdits(t *testing.T) {
	s, r := connected(t)
	s.CreateDevice(1, "a", 0, 0, "switch")
	before := s.Snapshot()

	// Relay down.
	r.fail = true
	d := s.CreateDevice(s.DeviceSeq.Next(), "b", 40, 40, "router")
	s.Emit(&messages.DeviceCreate{ID: d.ID, X: 40, Y: 40, Name: "b", Type: "router"})
	if s.Pending() != 1 {
		t.Fatalf("pending: got %d, want 1", s.Pending())
	}

	// Reconnect: the relay sends a new id, then a snapshot taken before it
	// read the flushed frame.
	r.fail = false
	s.Apply(&messages.ClientID{ID: 2})
	s.Apply(before)

	if len(r.frames) != 1 || s.Pending() != 0 {
		t.Fatalf("after reconnect: sent %d, pending %d", len(r.frames), s.Pending())
	}
	if got := s.Device(d.ID); got == nil || got.Name != "b" {
		t.Fatalf("queued device: got %v, want it kept over the snapshot", got)
	}
	if s.Device(1) == nil {
		t.Error("snapshot device lost")
	}
	if !s.Undo() || s.Device(d.ID) != nil {
		t.Error("undo did not remove the re-applied device")
	}

	// Later snapshots are taken as they are.
	s.Apply(before)
	if len(s.Devices) != 1 {
		t.Errorf("devices after second snapshot: got %d, want 1", len(s.Devices))
	}
}

func TestMultipleMessageSubIDs(t *testing.T) {
	s, r := connected(t)
	s.Send(&messages.MultipleMessage{Messages: []messages.Message{&messages.StartRecording{}, &messages.ViewPort{Scale: 1}}})
	mm := r.parsed(t)[0].(*messages.MultipleMessage)
	ids := map[int]bool{mm.MessageID: true}
	for _, sub := range mm.Messages {
		if ids[sub.Head().MessageID] || sub.Head().MessageID == 0 {
			t.Errorf("sub-message id %d not unique", sub.Head().MessageID)
		}
		ids[sub.Head().MessageID] = true
	}
}

func TestDisconnectedDrops(t *testing.T) {
	s, r := connected(t)
	s.Disconnected = true
	s.Send(&messages.Deploy{})
	if len(r.frames) != 0 || s.Pending() != 0 {
		t.Errorf("offline send: sent %d, pending %d", len(r.frames), s.Pending())
	}
}

func TestEchoSkipped(t *testing.T) {
	s, _ := connected(t)
	s.Apply(&messages.DeviceCreate{Header: messages.Header{Sender: 1}, ID: 5, Name: "mine"})
	if s.Device(5) != nil {
		t.Error("own echo applied")
	}
	s.Apply(&messages.DeviceCreate{Header: messages.Header{Sender: 2}, ID: 5, Name: "theirs"})
	if s.Device(5) == nil {
		t.Error("remote create not applied")
	}
}

func TestClearSelectionsSendsOnlyForSelected(t *testing.T) {
	s, r := connected(t)
	twoSwitches(s)
	s.Device(1).Selected = true
	s.ClearSelections()

	sent := r.parsed(t)
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if u, ok := sent[0].(*messages.DeviceUnSelected); !ok || u.ID != 1 {
		t.Errorf("got %#v", sent[0])
	}
}

func TestSelectItemsPrefersDevices(t *testing.T) {
	s, _ := connected(t)
	twoSwitches(s)

	s.SetMouse(10, 0)
	sel := s.SelectItems(false)
	if sel.Device == nil || sel.Device.ID != 1 || sel.Link != nil {
		t.Errorf("device press: got %+v", sel)
	}

	s.SetMouse(100, 2)
	sel = s.SelectItems(false)
	if sel.Link == nil || sel.Device != nil {
		t.Errorf("link press: got %+v", sel)
	}
	if s.Device(1).Selected {
		t.Error("previous selection kept without multiple")
	}

	s.SetMouse(60, 0)
	sel = s.SelectItems(false)
	if sel.Interface == nil || sel.Link != nil {
		t.Errorf("interface press: got %+v", sel)
	}
	s.HideInterfaces = true
	sel = s.SelectItems(false)
	if sel.Interface != nil || sel.Link == nil {
		t.Errorf("hidden interfaces: got %+v", sel)
	}
}

func TestStatusAndFacts(t *testing.T) {
	s := New(Options{})
	twoSwitches(s)
	pass, fail := "pass", "fail"
	working := true

	s.Apply(&messages.TaskStatus{DeviceName: "a", TaskID: 3, Status: &pass, Working: &working})
	a := s.Device(1)
	if len(a.Tasks) != 1 || a.Status == nil || !*a.Status || !a.Working {
		t.Errorf("task status: %+v", a)
	}
	s.Apply(&messages.DeviceStatus{Name: "a", Status: &fail})
	if *a.Status {
		t.Error("device status not updated")
	}

	facts, _ := json.Marshal(map[string]any{
		"ansible_net_neighbors": map[string]any{"eth0": []map[string]string{{"host": "b", "port": "eth0"}}},
	})
	s.Apply(&messages.Facts{Key: "a", Value: facts})
	l := s.Link(1)
	if l.Status == nil || !*l.Status {
		t.Errorf("lldp status: got %v, want pass", l.Status)
	}

	facts, _ = json.Marshal(map[string]any{
		"ansible_local": map[string]any{"ptm": map[string]any{"p": map[string]string{"port": "eth0", "cbl status": "fail"}}},
	})
	s.Apply(&messages.Facts{Key: "b", Value: facts})
	if *l.Status {
		t.Error("ptm status not applied")
	}

	s.ResetStatus()
	if a.Status != nil || l.Status != nil || len(a.Tasks) != 0 {
		t.Error("ResetStatus left status behind")
	}
}

func TestToolboxItemClonesSite(t *testing.T) {
	src := New(Options{})
	twoSwitches(src)
	src.CreateStream(1, 1, 2, "flow")
	g := src.CreateGroup(9, "Site9", "site", -100, -100, 300, 100)
	site := src.SiteTemplate(g)
	data, _ := json.Marshal(site)

	s := New(Options{})
	s.Apply(&messages.ToolboxItem{ToolboxName: "Site", Data: string(data)})
	if len(s.SiteToolbox.Items) != 1 {
		t.Fatalf("site toolbox: got %d items", len(s.SiteToolbox.Items))
	}
	clone, ok := s.SiteToolbox.Items[0].(*model.Group)
	if !ok {
		t.Fatalf("got %T, want *model.Group", s.SiteToolbox.Items[0])
	}
	if len(clone.Devices) != 2 || len(clone.Links) != 1 || len(clone.Streams) != 1 {
		t.Fatalf("clone: %d devices %d links %d streams", len(clone.Devices), len(clone.Links), len(clone.Streams))
	}
	l := clone.Links[0]
	if l.FromInterface.Link != l || l.FromInterface.Device != l.From {
		t.Error("cloned link not rewired to cloned interfaces")
	}
	if l.From == src.Device(1) {
		t.Error("clone shares devices with the source")
	}
}

func TestTopologyData(t *testing.T) {
	s := New(Options{})
	s.Name = "lab"
	twoSwitches(s)
	doc := s.TopologyData()
	if len(doc.Devices) != 2 || doc.Devices[0].Name != "a" {
		t.Fatalf("devices: %+v", doc.Devices)
	}
	intf := doc.Devices[0].Interfaces[0]
	if intf.RemoteDeviceName != "b" || intf.RemoteInterfaceName != "eth0" || intf.Network != 1 {
		t.Errorf("interface: %+v", intf)
	}
	if len(doc.Links) != 1 || doc.Links[0].FromDevice != "a" || doc.Links[0].Network != 1 {
		t.Errorf("links: %+v", doc.Links)
	}
}

func TestTopologyMessage(t *testing.T) {
	s := New(Options{})
	s.DeviceSeq.Observe(20)
	s.Apply(&messages.Topology{TopologyID: 4, PanX: 10, PanY: 30, Scale: 0.5, DeviceIDSeq: 12, LinkIDSeq: 3})
	if s.TopologyID != 4 || s.PanY != 30 || s.Scale != 0.5 {
		t.Errorf("got id=%d panY=%v scale=%v", s.TopologyID, s.PanY, s.Scale)
	}
	if s.DeviceSeq.Next() != 21 || s.LinkSeq.Next() != 4 {
		t.Error("sequences not raised monotonically")
	}
}

func TestStreamOffsets(t *testing.T) {
	s := New(Options{})
	twoSwitches(s)
	s.CreateStream(1, 1, 2, "x")
	s.CreateStream(2, 1, 2, "y")
	s.CreateStream(3, 2, 1, "z")
	if s.Stream(1).Offset != 0 || s.Stream(2).Offset != 1 || s.Stream(3).Offset != 0 {
		t.Errorf("offsets: %d %d %d", s.Stream(1).Offset, s.Stream(2).Offset, s.Stream(3).Offset)
	}
	s.DestroyStream(1)
	if s.Stream(2).Offset != 0 {
		t.Errorf("offset after destroy: %d", s.Stream(2).Offset)
	}
}

func TestAddInventoryHost(t *testing.T) {
	s := New(Options{})
	d := s.AddInventoryHost("leaf1", "switch")
	if !d.Icon || d.ID != 0 {
		t.Errorf("got icon=%v id=%d, want an icon template with no id", d.Icon, d.ID)
	}
	if n := len(s.InventoryToolbox.Items); n != 1 {
		t.Errorf("inventory items: got %d, want 1", n)
	}
}
