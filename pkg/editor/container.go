package editor

import (
	"encoding/json"

	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
	"github.com/ha1tch/netui/pkg/session"
)

type containerState int

const (
	containerDisable containerState = iota
	containerReady
	containerSelected
	containerMove
)

func (s containerState) String() string {
	return [...]string{"Disable", "Ready", "Selected", "Move"}[s]
}

// containerMachine selects, drags, copies and pastes whole sites or racks:
// a group of one type together with the devices and groups inside it. It
// only runs while the mode machine has enabled it.
type containerMachine struct {
	machine[containerState]
	typ      string
	paste    Kind
	selected *model.Group
}

func containerTable(name string) *fsm.Table {
	t := fsm.NewTable(name, containerDisable.String())
	t.Description = "Site and rack containers."
	disable, ready, selected, move := containerDisable.String(), containerReady.String(), containerSelected.String(), containerMove.String()
	t.Allow(disable, Enable.String(), ready)
	for _, from := range []string{ready, selected, move} {
		t.Allow(from, Disable.String(), disable)
	}
	t.Allow(ready, MouseDown.String(), selected)
	t.Allow(selected, MouseMove.String(), move)
	t.Allow(selected, MouseDown.String(), ready)
	t.Allow(selected, UnselectAll.String(), ready)
	t.Allow(move, MouseUp.String(), selected)
	t.Allow(move, UnselectAll.String(), ready)
	return t
}

func newContainerMachine(e *Editor, name, typ string, paste Kind) *containerMachine {
	return &containerMachine{
		machine: newMachine(e, name, containerDisable, containerTable(name)),
		typ:     typ,
		paste:   paste,
	}
}

func (m *containerMachine) Handle(ev Event) fsm.Result {
	switch ev.Kind {
	case Enable:
		if ev.Target != m.Name() {
			return fsm.NotHandled
		}
		if m.State() == containerDisable {
			m.change(containerReady, ev)
		}
		return fsm.Handled
	case Disable:
		if ev.Target != m.Name() {
			return fsm.NotHandled
		}
		if m.State() != containerDisable {
			m.deselect()
			m.change(containerDisable, ev)
		}
		return fsm.Handled
	}

	s := m.session()
	switch m.State() {
	case containerReady:
		switch ev.Kind {
		case m.paste:
			tpl, ok := ev.Item.(*model.Group)
			if !ok {
				return fsm.NotHandled
			}
			m.pasteTemplate(tpl)
			return fsm.Handled
		case MouseDown:
			if s.HideGroups {
				return fsm.NotHandled
			}
			if g := m.groupAt(s.ScaledX, s.ScaledY); g != nil {
				s.ClearSelections()
				s.SelectGroup(g)
				s.Press()
				m.selected = g
				m.change(containerSelected, ev)
				return fsm.Handled
			}
		}

	case containerSelected:
		switch ev.Kind {
		case MouseMove:
			m.change(containerMove, ev)
			return m.Handle(ev)
		case MouseUp:
			return fsm.Handled
		case MouseDown:
			if m.selected != nil && m.selected.IsSelected(s.ScaledX, s.ScaledY) {
				s.Press()
				return fsm.Handled
			}
			m.deselect()
			m.change(containerReady, ev)
			return m.Handle(ev)
		case KeyDown:
			if ev.Key != "c" || ev.command() {
				return fsm.NotHandled
			}
			m.copySite()
			return fsm.Handled
		case UnselectAll:
			m.deselect()
			m.change(containerReady, ev)
		}

	case containerMove:
		switch ev.Kind {
		case MouseMove:
			m.drag()
			return fsm.Handled
		case MouseUp:
			m.change(containerSelected, ev)
			return fsm.Handled
		case MouseDown:
			return fsm.Handled
		case UnselectAll:
			m.deselect()
			m.change(containerReady, ev)
		}
	}
	return fsm.NotHandled
}

// groupAt returns the topmost container of this machine's type whose border
// is under (x, y). Corner handles are left to the group machine.
func (m *containerMachine) groupAt(x, y float64) *model.Group {
	groups := m.session().Groups
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g.Type != m.typ || g.HasCornerSelected(x, y) {
			continue
		}
		if g.IsSelected(x, y) {
			return g
		}
	}
	return nil
}

func (m *containerMachine) deselect() {
	if m.selected != nil {
		m.selected.Selected = false
	}
	m.selected = nil
}

func (m *containerMachine) copySite() {
	s := m.session()
	if m.selected == nil {
		return
	}
	data, err := json.Marshal(s.SiteTemplate(m.selected))
	if err != nil {
		m.ed.log.Error(m.ed.ctx, "encode site", logging.Int("group_id", m.selected.ID), logging.Err(err))
		return
	}
	s.Send(&messages.CopySite{Site: data})
}

// drag moves the selected container, every group nested inside it and the
// devices it contains by the pointer delta as one undoable edit.
func (m *containerMachine) drag() {
	s := m.session()
	g := m.selected
	if g == nil {
		return
	}
	dx := s.ScaledX - s.PressedScaledX
	dy := s.ScaledY - s.PressedScaledY

	groups := []*model.Group{g}
	for _, inner := range s.Groups {
		if inner != g && nested(inner, g) {
			groups = append(groups, inner)
		}
	}
	var devices []*model.Device
	for _, d := range s.Devices {
		if g.Contains(d) {
			devices = append(devices, d)
		}
	}

	batch := make([]messages.Message, 0, len(groups)+len(devices))
	for _, gr := range groups {
		mv := &messages.GroupMove{
			ID:         gr.ID,
			X1:         gr.X1 + dx,
			Y1:         gr.Y1 + dy,
			X2:         gr.X2 + dx,
			Y2:         gr.Y2 + dy,
			PreviousX1: gr.X1,
			PreviousY1: gr.Y1,
			PreviousX2: gr.X2,
			PreviousY2: gr.Y2,
		}
		s.MoveGroup(gr.ID, mv.X1, mv.Y1, mv.X2, mv.Y2)
		batch = append(batch, mv)
	}
	for _, d := range devices {
		mv := &messages.DeviceMove{ID: d.ID, X: d.X + dx, Y: d.Y + dy, PreviousX: d.X, PreviousY: d.Y}
		s.MoveDevice(d.ID, mv.X, mv.Y)
		batch = append(batch, mv)
	}
	s.Emit(&messages.MultipleMessage{Messages: batch})
	s.Press()
	s.UpdateMemberships()
}

func nested(inner, outer *model.Group) bool {
	return inner.Left() > outer.Left() && inner.Right() < outer.Right() &&
		inner.Top() > outer.Top() && inner.Bottom() < outer.Bottom()
}

// pasteTemplate stamps a copy of tpl at the pointer. Devices, links, groups
// and streams get fresh ids; interfaces and processes keep theirs since they
// are scoped to their device.
func (m *containerMachine) pasteTemplate(tpl *model.Group) {
	s := m.session()
	dx := s.ScaledX - tpl.X1
	dy := s.ScaledY - tpl.Y1

	var batch []messages.Message
	ids := make(map[int]int, len(tpl.Devices))
	for _, td := range tpl.Devices {
		id := s.DeviceSeq.Next()
		ids[td.ID] = id
		d := s.CreateDevice(id, td.Name, td.X+dx, td.Y+dy, td.Type)
		batch = append(batch, &messages.DeviceCreate{ID: id, X: d.X, Y: d.Y, Name: d.Name, Type: d.Type})
	}
	for _, td := range tpl.Devices {
		for _, intf := range td.Interfaces {
			s.CreateInterface(ids[td.ID], intf.ID, intf.Name)
			batch = append(batch, &messages.InterfaceCreate{DeviceID: ids[td.ID], ID: intf.ID, Name: intf.Name})
		}
	}
	for _, td := range tpl.Devices {
		for _, p := range td.Processes {
			s.CreateProcess(ids[td.ID], p.ID, p.Name, p.Type, p.X, p.Y)
			batch = append(batch, &messages.ProcessCreate{ID: p.ID, Name: p.Name, Type: p.Type, DeviceID: ids[td.ID], X: p.X, Y: p.Y})
		}
	}
	for _, tl := range tpl.Links {
		ends := session.LinkEnds{
			ID:              s.LinkSeq.Next(),
			FromDeviceID:    ids[tl.From.ID],
			ToDeviceID:      ids[tl.To.ID],
			FromInterfaceID: tl.FromInterface.ID,
			ToInterfaceID:   tl.ToInterface.ID,
		}
		s.CreateLink(ends, tl.Name)
		batch = append(batch, &messages.LinkCreate{
			ID:              ends.ID,
			Name:            tl.Name,
			FromDeviceID:    ends.FromDeviceID,
			ToDeviceID:      ends.ToDeviceID,
			FromInterfaceID: ends.FromInterfaceID,
			ToInterfaceID:   ends.ToInterfaceID,
		})
	}
	for _, tg := range append([]*model.Group{tpl}, tpl.Groups...) {
		id := s.GroupSeq.Next()
		g := s.CreateGroup(id, tg.Name, tg.Type, tg.X1+dx, tg.Y1+dy, tg.X2+dx, tg.Y2+dy)
		batch = append(batch, &messages.GroupCreate{ID: id, X1: g.X1, Y1: g.Y1, X2: g.X2, Y2: g.Y2, Name: g.Name, Type: g.Type})
	}
	for _, ts := range tpl.Streams {
		id := s.StreamSeq.Next()
		s.CreateStream(id, ids[ts.From.ID], ids[ts.To.ID], ts.Label)
		batch = append(batch, &messages.StreamCreate{ID: id, FromID: ids[ts.From.ID], ToID: ids[ts.To.ID], Label: ts.Label})
	}
	s.UpdateMemberships()
	// Pastes are sent without an undo entry.
	s.Send(&messages.MultipleMessage{Messages: batch})
	m.ed.log.Debug(m.ed.ctx, "template pasted",
		logging.String("type", m.typ), logging.String("name", tpl.Name), logging.Int("devices", len(tpl.Devices)))
}
