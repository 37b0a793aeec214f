package editor

import (
	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/messages"
)

// Zoom bounds.
const (
	MinScale = 0.1
	MaxScale = 10
)

type viewState int

const (
	viewStart viewState = iota
	viewReady
	viewPressed
	viewPan
)

func (s viewState) String() string {
	return [...]string{"Start", "Ready", "Pressed", "Pan"}[s]
}

// viewMachine pans the canvas on a drag over empty space and zooms it
// around the pointer on the wheel.
type viewMachine struct {
	machine[viewState]
}

func viewTable() *fsm.Table {
	t := fsm.NewTable("view_fsm", viewStart.String())
	t.Description = "Pan and zoom."
	t.Allow(viewStart.String(), evStart, viewReady.String())
	t.Allow(viewReady.String(), MouseDown.String(), viewPressed.String())
	t.Allow(viewPressed.String(), MouseMove.String(), viewPan.String())
	t.Allow(viewPressed.String(), MouseUp.String(), viewReady.String())
	t.Allow(viewPan.String(), MouseUp.String(), viewReady.String())
	return t
}

func newViewMachine(e *Editor) *viewMachine {
	m := &viewMachine{machine: newMachine(e, "view_fsm", viewStart, viewTable())}
	m.ctl.SetHooks(m.enter, nil)
	return m
}

func (m *viewMachine) enter(s viewState) {
	if s == viewStart {
		m.ctl.Change(viewReady, evStart)
	}
}

func (m *viewMachine) Handle(ev Event) fsm.Result {
	s := m.session()
	switch m.State() {
	case viewReady:
		switch ev.Kind {
		case MouseWheel:
			m.zoom(ev.Delta)
			return fsm.Handled
		case MouseDown:
			s.Press()
			m.change(viewPressed, ev)
			return fsm.Handled
		}

	case viewPressed:
		switch ev.Kind {
		case MouseMove:
			m.change(viewPan, ev)
			return m.Handle(ev)
		case MouseUp:
			m.change(viewReady, ev)
			return fsm.Handled
		}

	case viewPan:
		switch ev.Kind {
		case MouseMove:
			s.PanX += s.MouseX - s.PressedX
			s.PanY += s.MouseY - s.PressedY
			s.UpdateScaledXY()
			s.Press()
			m.viewPort()
			return fsm.Handled
		case MouseUp:
			m.change(viewReady, ev)
			return fsm.Handled
		}
	}
	return fsm.NotHandled
}

// zoom changes the scale by delta, keeping the canvas point under the
// pointer where it is.
func (m *viewMachine) zoom(delta float64) {
	s := m.session()
	scale := s.Scale + delta/(100/s.Scale)
	scale = max(MinScale, min(MaxScale, scale))
	s.PanX = s.MouseX - scale*((s.MouseX-s.PanX)/s.Scale)
	s.PanY = s.MouseY - scale*((s.MouseY-s.PanY)/s.Scale)
	s.Scale = scale
	s.UpdateScaledXY()
	m.viewPort()
	m.ed.mode.evaluate(evScale)
}

func (m *viewMachine) viewPort() {
	s := m.session()
	if s.Recording {
		s.Send(&messages.ViewPort{Scale: s.Scale, PanX: s.PanX, PanY: s.PanY})
	}
}
