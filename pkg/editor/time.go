package editor

import (
	"errors"

	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
)

type timeState int

const (
	timeStart timeState = iota
	timePresent
	timePast
)

func (s timeState) String() string {
	return [...]string{"Start", "Present", "Past"}[s]
}

// timeMachine applies inbound frames and moves through the local undo
// history. It is Past while there is something to redo.
type timeMachine struct {
	machine[timeState]
}

func timeTable() *fsm.Table {
	t := fsm.NewTable("time_fsm", timeStart.String())
	t.Description = "Inbound messages and undo/redo."
	present, past := timePresent.String(), timePast.String()
	t.Allow(timeStart.String(), evStart, present)
	for _, ev := range []string{KeyDown.String(), MouseWheel.String()} {
		t.Allow(present, ev, past)
		t.Allow(past, ev, present)
	}
	return t
}

func newTimeMachine(e *Editor) *timeMachine {
	m := &timeMachine{machine: newMachine(e, "time_fsm", timeStart, timeTable())}
	m.ctl.SetHooks(m.enter, nil)
	return m
}

func (m *timeMachine) enter(s timeState) {
	if s == timeStart {
		m.ctl.Change(timePresent, evStart)
	}
}

func (m *timeMachine) Handle(ev Event) fsm.Result {
	switch ev.Kind {
	case Message:
		m.receive(ev)
		return fsm.Handled
	case KeyDown:
		if !ev.command() {
			return fsm.NotHandled
		}
		switch {
		case (ev.Key == "z" || ev.Key == "Z") && ev.has(ModShift):
			m.redo(ev)
		case ev.Key == "z" || ev.Key == "Z":
			m.undo(ev)
		case (ev.Key == "y" || ev.Key == "Y") && ev.has(ModCtrl):
			m.redo(ev)
		default:
			return fsm.NotHandled
		}
		return fsm.Handled
	case MouseWheel:
		if !ev.has(ModMeta) {
			return fsm.NotHandled
		}
		if ev.Delta > 0 {
			m.undo(ev)
		} else if ev.Delta < 0 {
			m.redo(ev)
		}
		return fsm.Handled
	}
	return fsm.NotHandled
}

func (m *timeMachine) receive(ev Event) {
	s := m.session()
	msg := ev.Msg
	if msg == nil {
		var err error
		msg, err = messages.Parse(ev.Frame)
		if err != nil {
			var unknown *messages.UnknownMessageError
			if errors.As(err, &unknown) {
				m.ed.log.Debug(m.ed.ctx, "unknown message dropped", logging.String("type", unknown.Type))
			} else {
				m.ed.log.Warn(m.ed.ctx, "malformed frame dropped", logging.Err(err))
			}
			return
		}
	}
	s.Apply(msg)
	// A snapshot or topology may have changed the zoom level.
	m.ed.mode.evaluate(evScale)
}

func (m *timeMachine) undo(ev Event) {
	if m.session().Undo() {
		m.ed.metrics.Undo()
	}
	m.sync(ev)
}

func (m *timeMachine) redo(ev Event) {
	if m.session().Redo() {
		m.ed.metrics.Redo()
	}
	m.sync(ev)
}

func (m *timeMachine) sync(ev Event) {
	want := timePresent
	if m.session().History.CanRedo() {
		want = timePast
	}
	if want != m.State() {
		m.change(want, ev)
	}
}
