package editor

import "github.com/ha1tch/netui/pkg/fsm"

type hotkeysState int

const (
	hotkeysStart hotkeysState = iota
	hotkeysReady
)

func (s hotkeysState) String() string {
	return [...]string{"Start", "Ready"}[s]
}

// Device and group types the hotkeys create.
var (
	deviceKeys = map[string]string{"r": "router", "s": "switch", "a": "rack", "h": "host"}
	groupKeys  = map[string]string{"g": "group", "e": "site", "k": "rack"}
)

// hotkeysMachine turns single unmodified keys into editor commands. It is
// last in the chain so every other machine sees the key first.
type hotkeysMachine struct {
	machine[hotkeysState]
}

func hotkeysTable() *fsm.Table {
	t := fsm.NewTable("hotkeys_fsm", hotkeysStart.String())
	t.Description = "Keyboard shortcuts."
	t.Allow(hotkeysStart.String(), evStart, hotkeysReady.String())
	return t
}

func newHotkeysMachine(e *Editor) *hotkeysMachine {
	m := &hotkeysMachine{machine: newMachine(e, "hotkeys_fsm", hotkeysStart, hotkeysTable())}
	m.ctl.SetHooks(m.enter, nil)
	return m
}

func (m *hotkeysMachine) enter(s hotkeysState) {
	if s == hotkeysStart {
		m.ctl.Change(hotkeysReady, evStart)
	}
}

func (m *hotkeysMachine) Handle(ev Event) fsm.Result {
	if m.State() != hotkeysReady || ev.Kind != KeyDown || ev.command() {
		return fsm.NotHandled
	}
	s := m.session()
	if typ, ok := deviceKeys[ev.Key]; ok {
		m.ed.send(Event{Kind: NewDevice, DeviceType: typ})
		return fsm.Handled
	}
	if typ, ok := groupKeys[ev.Key]; ok {
		m.ed.send(Event{Kind: NewGroup, GroupType: typ})
		return fsm.Handled
	}
	switch ev.Key {
	case "l":
		m.ed.send(Event{Kind: NewLink})
	case "p":
		m.ed.send(Event{Kind: NewStream})
	case "i":
		s.HideInterfaces = !s.HideInterfaces
	case "d":
		s.Debug = !s.Debug
	case "0":
		s.PanX, s.PanY, s.Scale = 0, 0, 1
		s.UpdateScaledXY()
		m.ed.mode.evaluate(evScale)
	default:
		return fsm.NotHandled
	}
	return fsm.Handled
}
