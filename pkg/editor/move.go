package editor

import (
	"slices"
	"strconv"

	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
	"github.com/ha1tch/netui/pkg/session"
)

type moveState int

const (
	moveStart moveState = iota
	moveReady
	moveSelected1
	moveSelected2
	moveSelected3
	moveMove
	moveEditLabel
	movePlacing
)

func (s moveState) String() string {
	return [...]string{"Start", "Ready", "Selected1", "Selected2", "Selected3", "Move", "EditLabel", "Placing"}[s]
}

// moveMachine selects, places, drags, renames and deletes devices and
// links.
type moveMachine struct {
	machine[moveState]
	placingType string
	// Ghost is where a device being placed would land, in canvas
	// coordinates.
	GhostX, GhostY float64
}

func moveTable() *fsm.Table {
	t := fsm.NewTable("move_fsm", moveStart.String())
	t.Description = "Device and link editing."
	ready := moveReady.String()
	s1, s2, s3 := moveSelected1.String(), moveSelected2.String(), moveSelected3.String()
	t.Allow(moveStart.String(), evStart, ready)
	for _, s := range []moveState{moveSelected1, moveSelected2, moveSelected3, moveMove, moveEditLabel, movePlacing} {
		t.Allow(s.String(), UnselectAll.String(), ready)
	}
	t.Allow(ready, MouseDown.String(), s1, s2)
	t.Allow(ready, NewDevice.String(), movePlacing.String())
	t.Allow(ready, PasteDevice.String(), s2)
	t.Allow(s1, MouseMove.String(), moveMove.String())
	t.Allow(s1, MouseUp.String(), s2)
	t.Allow(moveMove.String(), MouseUp.String(), s2)
	t.Allow(s2, MouseDown.String(), s3, ready)
	t.Allow(s2, KeyDown.String(), ready)
	t.Allow(s2, NewDevice.String(), ready)
	t.Allow(s2, PasteDevice.String(), ready)
	t.Allow(s2, PasteProcess.String(), ready)
	t.Allow(s3, MouseUp.String(), moveEditLabel.String())
	t.Allow(s3, MouseMove.String(), moveMove.String())
	t.Allow(moveEditLabel.String(), KeyDown.String(), s2)
	t.Allow(moveEditLabel.String(), MouseDown.String(), ready)
	t.Allow(movePlacing.String(), MouseDown.String(), s2)
	t.Allow(movePlacing.String(), KeyDown.String(), ready)
	return t
}

func newMoveMachine(e *Editor) *moveMachine {
	m := &moveMachine{machine: newMachine(e, "move_fsm", moveStart, moveTable())}
	m.ctl.SetHooks(m.enter, m.exit)
	return m
}

func (m *moveMachine) enter(st moveState) {
	s := m.session()
	switch st {
	case moveStart:
		m.ctl.Change(moveReady, evStart)
	case moveEditLabel:
		if d := first(s.SelectedDevices); d != nil {
			d.EditLabel = true
		} else if l := first(s.SelectedLinks); l != nil {
			l.EditLabel = true
		}
	case movePlacing:
		m.GhostX, m.GhostY = s.ScaledX, s.ScaledY
	}
}

func (m *moveMachine) exit(st moveState) {
	s := m.session()
	switch st {
	case moveEditLabel:
		for _, d := range s.SelectedDevices {
			d.EditLabel = false
		}
		for _, l := range s.SelectedLinks {
			l.EditLabel = false
		}
	case movePlacing:
		m.placingType = ""
	}
}

// Placing returns the type of device being placed, or "".
func (m *moveMachine) Placing() string { return m.placingType }

func (m *moveMachine) Handle(ev Event) fsm.Result {
	if ev.Kind == UnselectAll {
		if m.State() != moveReady {
			m.change(moveReady, ev)
		}
		return fsm.NotHandled
	}

	s := m.session()
	switch m.State() {
	case moveReady:
		return m.ready(ev)

	case moveSelected1:
		switch ev.Kind {
		case MouseMove:
			m.change(moveMove, ev)
			return m.Handle(ev)
		case MouseUp:
			m.change(moveSelected2, ev)
			return fsm.Handled
		}

	case moveMove:
		switch ev.Kind {
		case MouseMove:
			m.drag()
			return fsm.Handled
		case MouseUp:
			m.change(moveSelected2, ev)
			return fsm.Handled
		case MouseDown:
			return fsm.Handled
		}

	case moveSelected2:
		switch ev.Kind {
		case NewDevice, PasteDevice, PasteProcess:
			m.change(moveReady, ev)
			return m.Handle(ev)
		case MouseDown:
			if m.rehit() {
				s.Press()
				m.change(moveSelected3, ev)
				return fsm.Handled
			}
			m.change(moveReady, ev)
			return m.Handle(ev)
		case KeyDown:
			if ev.KeyCode != KeyBackspace && ev.KeyCode != KeyDelete {
				return fsm.NotHandled
			}
			m.destroySelected()
			m.change(moveReady, ev)
			return fsm.Handled
		}

	case moveSelected3:
		switch ev.Kind {
		case MouseUp:
			m.change(moveEditLabel, ev)
			return fsm.Handled
		case MouseMove:
			m.change(moveMove, ev)
			return m.Handle(ev)
		}

	case moveEditLabel:
		switch ev.Kind {
		case MouseDown:
			m.change(moveReady, ev)
			return m.Handle(ev)
		case KeyDown:
			if d := first(s.SelectedDevices); d != nil {
				previous := d.Name
				name, done := editLabel(d.Name, ev)
				s.EditDeviceLabel(d.ID, name)
				s.Emit(&messages.DeviceLabelEdit{ID: d.ID, Name: name, PreviousName: previous})
				if done {
					m.change(moveSelected2, ev)
				}
				return fsm.Handled
			}
			if l := first(s.SelectedLinks); l != nil {
				previous := l.Name
				name, done := editLabel(l.Name, ev)
				s.EditLinkLabel(l.ID, name)
				s.Emit(&messages.LinkLabelEdit{ID: l.ID, Name: name, PreviousName: previous})
				if done {
					m.change(moveSelected2, ev)
				}
				return fsm.Handled
			}
		}

	case movePlacing:
		switch ev.Kind {
		case MouseMove:
			m.GhostX, m.GhostY = s.ScaledX, s.ScaledY
			return fsm.Handled
		case MouseDown:
			id := s.DeviceSeq.Next()
			m.place(id, m.placingType+strconv.Itoa(id), m.placingType)
			m.change(moveSelected2, ev)
			return fsm.Handled
		case KeyDown:
			if ev.KeyCode == KeyEscape {
				m.change(moveReady, ev)
				return fsm.Handled
			}
		}
	}
	return fsm.NotHandled
}

func (m *moveMachine) ready(ev Event) fsm.Result {
	s := m.session()
	switch ev.Kind {
	case MouseDown:
		sel := s.SelectItems(ev.has(ModShift))
		switch {
		case sel.Device != nil:
			m.change(moveSelected1, ev)
			return fsm.Handled
		case sel.Link != nil, sel.Interface != nil:
			m.change(moveSelected2, ev)
			return fsm.Handled
		}
	case NewDevice:
		m.placingType = ev.DeviceType
		m.change(movePlacing, ev)
		return fsm.Handled
	case PasteDevice:
		item, ok := ev.Item.(*model.Device)
		if !ok {
			return fsm.NotHandled
		}
		m.place(s.DeviceSeq.Next(), item.Name, item.Type)
		m.change(moveSelected2, ev)
		return fsm.Handled
	case PasteProcess:
		item, ok := ev.Item.(*model.Process)
		if !ok {
			return fsm.NotHandled
		}
		d := s.DeviceAt(s.ScaledX, s.ScaledY)
		if d == nil {
			m.ed.log.Debug(m.ed.ctx, "process dropped off any device", logging.String("process", item.Name))
			return fsm.Handled
		}
		id := d.ProcessSeq.Next()
		p := s.CreateProcess(d.ID, id, item.Name, item.Type, 0, 0)
		s.Send(&messages.ProcessCreate{ID: p.ID, Name: p.Name, Type: p.Type, DeviceID: d.ID, X: p.X, Y: p.Y})
		return fsm.Handled
	}
	return fsm.NotHandled
}

// place creates a device at the pointer and makes it the only selection.
func (m *moveMachine) place(id int, name, typ string) {
	s := m.session()
	s.ClearSelections()
	d := s.CreateDevice(id, name, s.ScaledX, s.ScaledY, typ)
	s.Emit(&messages.DeviceCreate{ID: d.ID, X: d.X, Y: d.Y, Name: d.Name, Type: d.Type})
	d.Selected = true
	s.SelectedDevices = append(s.SelectedDevices, d)
	s.Send(&messages.DeviceSelected{ID: d.ID})
	s.UpdateMemberships()
}

// rehit reports whether the pointer is on something already selected.
func (m *moveMachine) rehit() bool {
	s := m.session()
	for _, d := range s.SelectedDevices {
		if d.IsSelected(s.ScaledX, s.ScaledY) {
			return true
		}
	}
	for _, l := range s.SelectedLinks {
		if l.IsSelected(s.ScaledX, s.ScaledY) {
			return true
		}
	}
	return false
}

// drag moves every selected device by the pointer delta and reports any
// group membership that changed.
func (m *moveMachine) drag() {
	s := m.session()
	dx := s.ScaledX - s.PressedScaledX
	dy := s.ScaledY - s.PressedScaledY
	for _, d := range s.SelectedDevices {
		mv := &messages.DeviceMove{ID: d.ID, X: d.X + dx, Y: d.Y + dy, PreviousX: d.X, PreviousY: d.Y}
		s.MoveDevice(d.ID, mv.X, mv.Y)
		s.Emit(mv)
	}
	for _, g := range s.Groups {
		removed, added, members := g.UpdateMembership(s.Devices)
		if len(removed) > 0 || len(added) > 0 {
			s.Send(&messages.GroupMembership{ID: g.ID, Members: members})
		}
	}
	s.PressedScaledX = s.ScaledX
	s.PressedScaledY = s.ScaledY
}

// destroySelected deletes the selected links, then the selected devices
// together with every link that touches them.
func (m *moveMachine) destroySelected() {
	s := m.session()
	devices := slices.Clone(s.SelectedDevices)
	links := slices.Clone(s.SelectedLinks)
	for _, l := range s.Links {
		for _, d := range devices {
			if l.Touches(d) && !slices.Contains(links, l) {
				links = append(links, l)
			}
		}
	}
	for _, l := range links {
		ends := session.Ends(l)
		if s.DestroyLink(ends) == nil {
			continue
		}
		s.Emit(&messages.LinkDestroy{
			ID:              ends.ID,
			Name:            l.Name,
			FromDeviceID:    ends.FromDeviceID,
			ToDeviceID:      ends.ToDeviceID,
			FromInterfaceID: ends.FromInterfaceID,
			ToInterfaceID:   ends.ToInterfaceID,
		})
	}
	for _, d := range devices {
		if s.DestroyDevice(d.ID) == nil {
			continue
		}
		s.Emit(&messages.DeviceDestroy{ID: d.ID, PreviousX: d.X, PreviousY: d.Y, PreviousName: d.Name, PreviousType: d.Type})
	}
	s.SelectedDevices = nil
	s.SelectedLinks = nil
	s.SelectedInterfaces = nil
}

func first[T any](list []*T) *T {
	if len(list) == 0 {
		return nil
	}
	return list[0]
}
