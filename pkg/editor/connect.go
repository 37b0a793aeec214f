package editor

import (
	"fmt"

	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
	"github.com/ha1tch/netui/pkg/session"
)

type connectState int

const (
	connectStart connectState = iota
	connectReady
	connectSelecting
	connectConnecting
)

func (s connectState) String() string {
	return [...]string{"Start", "Ready", "Selecting", "Connecting"}[s]
}

// connectMachine draws something between two devices: pick the first
// device, then the second. The link and stream machines differ only in
// what they create.
type connectMachine struct {
	machine[connectState]
	trigger Kind
	from    *model.Device
	connect func(from, to *model.Device)
}

func connectTable(name string, trigger Kind) *fsm.Table {
	t := fsm.NewTable(name, connectStart.String())
	t.Description = "Two-click " + trigger.String() + "."
	ready, selecting, connecting := connectReady.String(), connectSelecting.String(), connectConnecting.String()
	t.Allow(connectStart.String(), evStart, ready)
	t.Allow(ready, trigger.String(), selecting)
	t.Allow(selecting, MouseUp.String(), connecting, ready)
	t.Allow(connecting, MouseUp.String(), ready)
	for _, from := range []string{selecting, connecting} {
		t.Allow(from, KeyDown.String(), ready)
		t.Allow(from, UnselectAll.String(), ready)
	}
	return t
}

func newConnectMachine(e *Editor, name string, trigger Kind, connect func(from, to *model.Device)) *connectMachine {
	m := &connectMachine{
		machine: newMachine(e, name, connectStart, connectTable(name, trigger)),
		trigger: trigger,
		connect: connect,
	}
	m.ctl.SetHooks(m.enter, nil)
	return m
}

func newLinkMachine(e *Editor) *connectMachine {
	return newConnectMachine(e, "link_fsm", NewLink, e.createLink)
}

func newStreamMachine(e *Editor) *connectMachine {
	return newConnectMachine(e, "stream_fsm", NewStream, e.createStream)
}

func (m *connectMachine) enter(s connectState) {
	switch s {
	case connectStart:
		m.ctl.Change(connectReady, evStart)
	case connectReady:
		m.from = nil
	}
}

// From returns the device picked first while waiting for the second.
func (m *connectMachine) From() *model.Device { return m.from }

func (m *connectMachine) Handle(ev Event) fsm.Result {
	s := m.session()
	switch m.State() {
	case connectReady:
		if ev.Kind == m.trigger {
			m.change(connectSelecting, ev)
			return fsm.Handled
		}

	case connectSelecting, connectConnecting:
		switch ev.Kind {
		case MouseDown, MouseMove:
			return fsm.Handled
		case MouseUp:
			d := s.DeviceAt(s.ScaledX, s.ScaledY)
			if m.State() == connectSelecting {
				if d == nil {
					m.change(connectReady, ev)
					return fsm.Handled
				}
				m.from = d
				m.change(connectConnecting, ev)
				return fsm.Handled
			}
			if d != nil && d != m.from {
				m.connect(m.from, d)
			}
			m.change(connectReady, ev)
			return fsm.Handled
		case KeyDown:
			if ev.KeyCode == KeyEscape {
				m.change(connectReady, ev)
				return fsm.Handled
			}
		case UnselectAll:
			m.change(connectReady, ev)
		}
	}
	return fsm.NotHandled
}

// createLink adds a fresh interface on each device and links them.
func (e *Editor) createLink(from, to *model.Device) {
	s := e.s
	fromIntf := e.newInterface(from)
	toIntf := e.newInterface(to)
	if fromIntf == nil || toIntf == nil {
		return
	}
	ends := session.LinkEnds{
		ID:              s.LinkSeq.Next(),
		FromDeviceID:    from.ID,
		ToDeviceID:      to.ID,
		FromInterfaceID: fromIntf.ID,
		ToInterfaceID:   toIntf.ID,
	}
	l := s.CreateLink(ends, "")
	if l == nil {
		return
	}
	s.Emit(&messages.LinkCreate{
		ID:              l.ID,
		Name:            l.Name,
		FromDeviceID:    ends.FromDeviceID,
		ToDeviceID:      ends.ToDeviceID,
		FromInterfaceID: ends.FromInterfaceID,
		ToInterfaceID:   ends.ToInterfaceID,
	})
	e.log.Debug(e.ctx, "link created",
		logging.Int("link_id", l.ID), logging.String("from", from.Name), logging.String("to", to.Name))
}

func (e *Editor) newInterface(d *model.Device) *model.Interface {
	id := d.InterfaceSeq.Next()
	name := fmt.Sprintf("eth%d", id)
	intf := e.s.CreateInterface(d.ID, id, name)
	if intf != nil {
		e.s.Send(&messages.InterfaceCreate{DeviceID: d.ID, ID: id, Name: name})
	}
	return intf
}

func (e *Editor) createStream(from, to *model.Device) {
	s := e.s
	st := s.CreateStream(s.StreamSeq.Next(), from.ID, to.ID, "")
	if st == nil {
		return
	}
	s.Emit(&messages.StreamCreate{ID: st.ID, FromID: from.ID, ToID: to.ID, Label: st.Label})
}
