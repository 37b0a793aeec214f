package editor

import "github.com/ha1tch/netui/pkg/fsm"

type detailState int

const (
	detailStart detailState = iota
	detailReady
	detailDetail
)

func (s detailState) String() string {
	return [...]string{"Start", "Ready", "Detail"}[s]
}

// detailMachine opens the detail panel for a single selected device on
// Enter and closes it on Escape, a click or a change of selection.
type detailMachine struct {
	machine[detailState]
}

func detailTable() *fsm.Table {
	t := fsm.NewTable("details_panel_fsm", detailStart.String())
	t.Description = "Device detail panel."
	t.Allow(detailStart.String(), evStart, detailReady.String())
	t.Allow(detailReady.String(), KeyDown.String(), detailDetail.String())
	for _, k := range []Kind{KeyDown, MouseDown, MouseUp, MouseMove, MouseWheel, Message, UnselectAll} {
		t.Allow(detailDetail.String(), k.String(), detailReady.String())
	}
	return t
}

func newDetailMachine(e *Editor) *detailMachine {
	m := &detailMachine{machine: newMachine(e, "details_panel_fsm", detailStart, detailTable())}
	m.ctl.SetHooks(m.enter, nil)
	return m
}

func (m *detailMachine) enter(s detailState) {
	switch s {
	case detailStart:
		m.ctl.Change(detailReady, evStart)
	case detailReady:
		m.session().DetailDevice = nil
	}
}

func (m *detailMachine) Handle(ev Event) fsm.Result {
	s := m.session()
	switch m.State() {
	case detailReady:
		if ev.Kind == KeyDown && ev.KeyCode == KeyEnter && len(s.SelectedDevices) == 1 {
			m.change(detailDetail, ev)
			s.DetailDevice = s.SelectedDevices[0]
			return fsm.Handled
		}

	case detailDetail:
		if len(s.SelectedDevices) != 1 || s.SelectedDevices[0] != s.DetailDevice {
			if m.closes(ev.Kind) {
				m.change(detailReady, ev)
			}
			return fsm.NotHandled
		}
		switch ev.Kind {
		case KeyDown:
			if ev.KeyCode == KeyEscape {
				m.change(detailReady, ev)
				return fsm.Handled
			}
		case MouseDown, UnselectAll:
			m.change(detailReady, ev)
		}
	}
	return fsm.NotHandled
}

// closes reports whether kind is declared to leave Detail.
func (m *detailMachine) closes(kind Kind) bool {
	switch kind {
	case KeyDown, MouseDown, MouseUp, MouseMove, MouseWheel, Message, UnselectAll:
		return true
	}
	return false
}
