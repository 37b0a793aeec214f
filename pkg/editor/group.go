package editor

import (
	"strconv"

	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

type groupState int

const (
	groupStart groupState = iota
	groupReady
	groupCornerSelected
	groupResize
	groupSelected1
	groupSelected2
	groupSelected3
	groupMove
	groupEditLabel
	groupPlacing
)

func (s groupState) String() string {
	return [...]string{
		"Start", "Ready", "CornerSelected", "Resize", "Selected1",
		"Selected2", "Selected3", "Move", "EditLabel", "Placing",
	}[s]
}

// groupMachine places, resizes, moves, renames and deletes groups of any
// type. Selected1 is a fresh press, Selected2 a settled selection and
// Selected3 a second press on it, which either drags or starts a rename.
type groupMachine struct {
	machine[groupState]
	newGroupType string
}

func groupTable() *fsm.Table {
	t := fsm.NewTable("group_fsm", groupStart.String())
	t.Description = "Group placement and editing."
	ready := groupReady.String()
	t.Allow(groupStart.String(), evStart, ready)
	for _, s := range []groupState{groupCornerSelected, groupResize, groupSelected1, groupSelected2, groupSelected3, groupMove, groupEditLabel, groupPlacing} {
		t.Allow(s.String(), UnselectAll.String(), ready)
	}
	t.Allow(ready, MouseDown.String(), groupCornerSelected.String(), groupSelected1.String())
	t.Allow(ready, NewGroup.String(), groupPlacing.String())
	t.Allow(ready, PasteGroup.String(), groupSelected2.String())
	t.Allow(groupCornerSelected.String(), MouseMove.String(), groupResize.String())
	t.Allow(groupCornerSelected.String(), MouseUp.String(), groupSelected1.String())
	t.Allow(groupResize.String(), MouseUp.String(), groupSelected1.String())
	t.Allow(groupSelected1.String(), MouseMove.String(), groupMove.String())
	t.Allow(groupSelected1.String(), MouseUp.String(), groupSelected2.String())
	t.Allow(groupSelected3.String(), MouseMove.String(), groupMove.String())
	t.Allow(groupSelected3.String(), MouseUp.String(), groupEditLabel.String())
	t.Allow(groupMove.String(), MouseUp.String(), groupSelected2.String())
	t.Allow(groupMove.String(), MouseDown.String(), groupSelected1.String())
	t.Allow(groupSelected2.String(), NewGroup.String(), ready)
	t.Allow(groupSelected2.String(), MouseDown.String(), ready, groupSelected3.String())
	t.Allow(groupSelected2.String(), KeyDown.String(), ready)
	t.Allow(groupEditLabel.String(), MouseDown.String(), ready)
	t.Allow(groupEditLabel.String(), KeyDown.String(), groupSelected2.String())
	t.Allow(groupPlacing.String(), MouseDown.String(), groupResize.String())
	return t
}

func newGroupMachine(e *Editor) *groupMachine {
	m := &groupMachine{machine: newMachine(e, "group_fsm", groupStart, groupTable())}
	m.ctl.SetHooks(m.enter, m.exit)
	return m
}

func (m *groupMachine) enter(st groupState) {
	s := m.session()
	switch st {
	case groupStart:
		m.ctl.Change(groupReady, evStart)
	case groupCornerSelected:
		for _, g := range s.SelectedGroups {
			g.SelectedCorner = g.SelectCorner(s.ScaledX, s.ScaledY)
		}
	case groupResize, groupMove:
		for _, g := range s.SelectedGroups {
			g.Moving = true
		}
	case groupEditLabel:
		if len(s.SelectedGroups) > 0 {
			s.SelectedGroups[0].EditLabel = true
		}
	}
}

func (m *groupMachine) exit(st groupState) {
	s := m.session()
	switch st {
	case groupResize, groupMove:
		for _, g := range s.SelectedGroups {
			for _, d := range g.Devices {
				d.Selected = false
			}
			g.Moving = false
		}
	case groupEditLabel:
		if len(s.SelectedGroups) > 0 {
			s.SelectedGroups[0].EditLabel = false
		}
	}
}

func (m *groupMachine) Handle(ev Event) fsm.Result {
	if ev.Kind == UnselectAll {
		if m.State() != groupReady {
			m.change(groupReady, ev)
		}
		return fsm.NotHandled
	}

	s := m.session()
	switch m.State() {
	case groupReady:
		return m.ready(ev)

	case groupCornerSelected:
		switch ev.Kind {
		case MouseMove:
			m.change(groupResize, ev)
			return fsm.Handled
		case MouseUp:
			m.change(groupSelected1, ev)
			return m.Handle(ev)
		}

	case groupResize:
		switch ev.Kind {
		case MouseMove:
			m.drag(true)
			return fsm.Handled
		case MouseUp:
			m.change(groupSelected1, ev)
			return m.Handle(ev)
		}

	case groupSelected1:
		switch ev.Kind {
		case MouseMove:
			m.change(groupMove, ev)
			return fsm.Handled
		case MouseUp:
			m.change(groupSelected2, ev)
			return fsm.Handled
		}

	case groupSelected3:
		switch ev.Kind {
		case MouseMove:
			m.change(groupMove, ev)
			return fsm.Handled
		case MouseUp:
			m.change(groupEditLabel, ev)
			return fsm.Handled
		}

	case groupMove:
		switch ev.Kind {
		case MouseMove:
			m.drag(false)
			return fsm.Handled
		case MouseUp:
			m.change(groupSelected2, ev)
			return fsm.Handled
		case MouseDown:
			m.change(groupSelected1, ev)
			return fsm.Handled
		}

	case groupSelected2:
		switch ev.Kind {
		case NewGroup:
			m.change(groupReady, ev)
			return m.Handle(ev)
		case MouseDown:
			s.Press()
			groups := s.SelectedGroups
			s.SelectedGroups = nil
			for _, g := range groups {
				if g.HasCornerSelected(s.ScaledX, s.ScaledY) {
					s.SelectedGroups = nil
					break
				}
				if g.IsSelected(s.ScaledX, s.ScaledY) {
					s.SelectGroup(g)
				}
			}
			if len(s.SelectedGroups) > 0 {
				m.change(groupSelected3, ev)
				return fsm.Handled
			}
			for _, g := range groups {
				g.Selected = false
			}
			m.change(groupReady, ev)
			return m.Handle(ev)
		case KeyDown:
			// Only backspace deletes here; other keys go down the chain.
			if ev.KeyCode != KeyBackspace {
				return fsm.NotHandled
			}
			m.change(groupReady, ev)
			groups := s.SelectedGroups
			s.SelectedGroups = nil
			for _, g := range groups {
				g.Selected = false
				g.RemoteSelected = false
				s.DestroyGroup(g.ID)
				s.Emit(&messages.GroupDestroy{
					ID:           g.ID,
					PreviousX1:   g.X1,
					PreviousY1:   g.Y1,
					PreviousX2:   g.X2,
					PreviousY2:   g.Y2,
					PreviousName: g.Name,
					PreviousType: g.Type,
				})
			}
			return fsm.Handled
		}

	case groupEditLabel:
		switch ev.Kind {
		case MouseDown:
			m.change(groupReady, ev)
			return fsm.Handled
		case KeyDown:
			if len(s.SelectedGroups) == 0 {
				return fsm.NotHandled
			}
			g := s.SelectedGroups[0]
			previous := g.Name
			name, done := editLabel(g.Name, ev)
			g.Name = name
			if done {
				m.change(groupSelected2, ev)
			}
			s.Emit(&messages.GroupLabelEdit{ID: g.ID, Name: g.Name, PreviousName: previous})
			return fsm.Handled
		}

	case groupPlacing:
		if ev.Kind != MouseDown {
			return fsm.NotHandled
		}
		s.Press()
		s.ClearSelections()
		id := s.GroupSeq.Next()
		g := s.CreateGroup(id, model.TitleCase(m.newGroupType+strconv.Itoa(id)), m.newGroupType, s.ScaledX, s.ScaledY, s.ScaledX, s.ScaledY)
		s.Emit(&messages.GroupCreate{ID: g.ID, X1: g.X1, Y1: g.Y1, X2: g.X2, Y2: g.Y2, Name: g.Name, Type: g.Type})
		s.SelectGroup(g)
		g.SelectedCorner = model.BottomRight
		m.newGroupType = ""
		m.change(groupResize, ev)
		return fsm.Handled
	}
	return fsm.NotHandled
}

func (m *groupMachine) ready(ev Event) fsm.Result {
	s := m.session()
	switch ev.Kind {
	case MouseMove:
		if !s.HideGroups {
			for _, g := range s.Groups {
				g.UpdateHighlighted(s.ScaledX, s.ScaledY)
			}
		}
	case MouseDown:
		if s.HideGroups {
			return fsm.NotHandled
		}
		for _, g := range s.Groups {
			g.Selected = false
		}
		s.SelectedGroups = nil
		for _, g := range s.Groups {
			next := groupReady
			switch {
			case g.HasCornerSelected(s.ScaledX, s.ScaledY):
				next = groupCornerSelected
			case g.IsSelected(s.ScaledX, s.ScaledY):
				next = groupSelected1
			default:
				continue
			}
			s.ClearSelections()
			s.SelectGroup(g)
			s.Press()
			m.change(next, ev)
			return fsm.Handled
		}
	case NewGroup:
		s.HideGroups = false
		m.newGroupType = ev.GroupType
		m.change(groupPlacing, ev)
		return fsm.Handled
	case PasteGroup:
		tpl, ok := ev.Item.(*model.Group)
		if !ok {
			return fsm.NotHandled
		}
		s.HideGroups = false
		s.Press()
		id := s.GroupSeq.Next()
		g := s.CreateGroup(id, tpl.Name, tpl.Type, s.ScaledX, s.ScaledY, s.ScaledX+tpl.Width(), s.ScaledY+tpl.Height())
		s.Emit(&messages.GroupCreate{ID: g.ID, X1: g.X1, Y1: g.Y1, X2: g.X2, Y2: g.Y2, Name: g.Name, Type: g.Type})
		s.SelectGroup(g)
		m.change(groupSelected2, ev)
		return fsm.Handled
	}
	return fsm.NotHandled
}

// drag applies the pointer delta to every selected group, by its selected
// corner when resizing, and reports the new geometry and membership.
func (m *groupMachine) drag(resize bool) {
	s := m.session()
	dx := s.ScaledX - s.PressedScaledX
	dy := s.ScaledY - s.PressedScaledY
	for _, g := range s.SelectedGroups {
		mv := &messages.GroupMove{ID: g.ID, PreviousX1: g.X1, PreviousY1: g.Y1, PreviousX2: g.X2, PreviousY2: g.Y2}
		if resize {
			g.MoveCorner(g.SelectedCorner, dx, dy)
		} else {
			g.Translate(dx, dy)
		}
		removed, added, members := g.UpdateMembership(s.Devices)
		for _, d := range removed {
			d.Selected = false
		}
		for _, d := range added {
			d.Selected = true
		}
		mv.X1, mv.Y1, mv.X2, mv.Y2 = g.X1, g.Y1, g.X2, g.Y2
		s.Emit(mv)
		s.Send(&messages.GroupMembership{ID: g.ID, Members: members})
	}
	s.PressedScaledX = s.ScaledX
	s.PressedScaledY = s.ScaledY
}
