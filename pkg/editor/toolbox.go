package editor

import (
	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/model"
)

type toolboxState int

const (
	toolboxStart toolboxState = iota
	toolboxReady
	toolboxSelecting
	toolboxSelected
	toolboxMove
	toolboxDropping
	toolboxScrolling
)

func (s toolboxState) String() string {
	return [...]string{"Start", "Ready", "Selecting", "Selected", "Move", "Dropping", "Scrolling"}[s]
}

// toolboxMachine drags items out of one toolbox and scrolls it. Dropping
// an item hands it to dropped, which pastes it onto the canvas.
type toolboxMachine struct {
	machine[toolboxState]
	tb      *model.Toolbox
	dropped func(model.ToolboxItem)
}

func toolboxTable(name string) *fsm.Table {
	t := fsm.NewTable(name, toolboxStart.String())
	t.Description = "Toolbox drag and scroll."
	t.Allow(toolboxStart.String(), evStart, toolboxReady.String())
	t.Allow(toolboxReady.String(), MouseDown.String(), toolboxSelecting.String())
	t.Allow(toolboxReady.String(), MouseWheel.String(), toolboxScrolling.String())
	t.Allow(toolboxSelecting.String(), MouseDown.String(), toolboxSelected.String(), toolboxReady.String())
	t.Allow(toolboxSelected.String(), MouseMove.String(), toolboxMove.String())
	t.Allow(toolboxSelected.String(), MouseUp.String(), toolboxReady.String())
	t.Allow(toolboxMove.String(), MouseUp.String(), toolboxDropping.String())
	t.Allow(toolboxDropping.String(), evStart, toolboxReady.String())
	t.Allow(toolboxScrolling.String(), MouseWheel.String(), toolboxReady.String())
	return t
}

func newToolboxMachine(e *Editor, name string, tb *model.Toolbox, dropped func(model.ToolboxItem)) *toolboxMachine {
	m := &toolboxMachine{
		machine: newMachine(e, name, toolboxStart, toolboxTable(name)),
		tb:      tb,
		dropped: dropped,
	}
	m.ctl.SetHooks(m.enter, nil)
	return m
}

func (m *toolboxMachine) enter(s toolboxState) {
	switch s {
	case toolboxStart:
		m.ctl.Change(toolboxReady, evStart)
	case toolboxDropping:
		item := m.tb.SelectedItem
		if item != nil {
			item.SetSelected(false)
			m.ed.log.Debug(m.ed.ctx, "toolbox item dropped",
				logging.String("toolbox", m.tb.Name), logging.String("item", item.ItemName()))
			m.dropped(item)
			if m.tb.RemoveOnDrop {
				m.tb.Remove(item)
			}
		}
		m.tb.SelectedItem = nil
		m.ctl.Change(toolboxReady, evStart)
	}
}

func (m *toolboxMachine) Handle(ev Event) fsm.Result {
	switch ev.Kind {
	case Enable, Disable:
		if ev.Target != m.Name() {
			return fsm.NotHandled
		}
		m.tb.Enabled = ev.Kind == Enable
		return fsm.Handled
	case ToggleToolbox:
		m.tb.Collapsed = !m.tb.Collapsed
		return fsm.NotHandled
	}

	s := m.session()
	switch m.State() {
	case toolboxReady:
		if !m.tb.Active() || !m.tb.Contains(s.MouseX, s.MouseY) {
			return fsm.NotHandled
		}
		switch ev.Kind {
		case MouseDown:
			m.change(toolboxSelecting, ev)
			return m.Handle(ev)
		case MouseWheel:
			m.change(toolboxScrolling, ev)
			return m.Handle(ev)
		}

	case toolboxSelecting:
		if ev.Kind != MouseDown {
			return fsm.NotHandled
		}
		item, i := m.tb.ItemAt(s.MouseY)
		if item == nil {
			m.change(toolboxReady, ev)
			return fsm.Handled
		}
		s.ClearSelections()
		m.ed.send(Event{Kind: UnselectAll})
		for _, it := range m.tb.Items {
			it.SetSelected(false)
		}
		item.SetSelected(true)
		m.tb.SelectedItem = item
		s.Press()
		item.MoveTo(m.tb.X+m.tb.Width/2, float64(i)*m.tb.Spacing+m.tb.Y+m.tb.ScrollOffset+m.tb.Spacing/2)
		m.change(toolboxSelected, ev)
		return fsm.Handled

	case toolboxSelected:
		switch ev.Kind {
		case MouseMove:
			m.change(toolboxMove, ev)
			return m.Handle(ev)
		case MouseUp:
			if m.tb.SelectedItem != nil {
				m.tb.SelectedItem.SetSelected(false)
			}
			m.tb.SelectedItem = nil
			m.change(toolboxReady, ev)
			return fsm.Handled
		case MouseDown:
			return fsm.Handled
		}

	case toolboxMove:
		switch ev.Kind {
		case MouseMove:
			if item := m.tb.SelectedItem; item != nil {
				x, y := item.Position()
				item.MoveTo(x+s.MouseX-s.PressedX, y+s.MouseY-s.PressedY)
			}
			s.PressedX = s.MouseX
			s.PressedY = s.MouseY
			return fsm.Handled
		case MouseUp:
			m.change(toolboxDropping, ev)
			return fsm.Handled
		case MouseDown:
			return fsm.Handled
		}

	case toolboxScrolling:
		if ev.Kind == MouseWheel {
			m.tb.Scroll(-ev.Delta)
			m.change(toolboxReady, ev)
			return fsm.Handled
		}
	}
	return fsm.NotHandled
}
