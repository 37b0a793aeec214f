package editor

import (
	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/session"
)

// evStart names changes made by a state's entry action rather than by an
// event handler.
const evStart = "start"

// machine is the part every interaction machine shares: its controller and
// a way back to the editor.
type machine[S fsm.State] struct {
	ed  *Editor
	ctl *fsm.Controller[S]
}

func newMachine[S fsm.State](e *Editor, name string, initial S, t *fsm.Table) machine[S] {
	ctl := fsm.NewController(name, initial)
	ctl.SetTable(t, e.violation)
	e.tables = append(e.tables, t)
	return machine[S]{ed: e, ctl: ctl}
}

func (m *machine[S]) Name() string { return m.ctl.Name() }

// State returns the current state.
func (m *machine[S]) State() S { return m.ctl.State() }

func (m *machine[S]) start() { m.ctl.Start() }

func (m *machine[S]) current() string { return m.ctl.State().String() }

func (m *machine[S]) change(to S, ev Event) { m.ctl.Change(to, ev.Kind.String()) }

func (m *machine[S]) session() *session.Session { return m.ed.s }

// states lists the names of a closed state enum for table building.
func states[S fsm.State](all ...S) []string {
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = s.String()
	}
	return out
}
