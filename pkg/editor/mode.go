package editor

import "github.com/ha1tch/netui/pkg/fsm"

// Zoom levels at which the editor changes mode.
const (
	SiteScale   = 0.5
	RackScale   = 1.0
	DeviceScale = 2.0
)

type modeState int

const (
	modeStart modeState = iota
	modeMultiSite
	modeSite
	modeRack
	modeDevice
)

func (s modeState) String() string {
	return [...]string{"Start", "MultiSite", "Site", "Rack", "Device"}[s]
}

// evScale names mode changes caused by the zoom level.
const evScale = "scale"

func modeFor(scale float64) modeState {
	switch {
	case scale < SiteScale:
		return modeMultiSite
	case scale < RackScale:
		return modeSite
	case scale < DeviceScale:
		return modeRack
	}
	return modeDevice
}

// modeMachine follows the zoom level and switches the toolboxes and
// container machines that make sense at that level. It never handles an
// event.
type modeMachine struct {
	machine[modeState]
}

func modeTable() *fsm.Table {
	t := fsm.NewTable("mode_fsm", modeStart.String())
	t.Description = "Zoom-level modes."
	all := []modeState{modeMultiSite, modeSite, modeRack, modeDevice}
	t.Allow(modeStart.String(), evStart, states(all...)...)
	for _, from := range all {
		var to []string
		for _, s := range all {
			if s != from {
				to = append(to, s.String())
			}
		}
		t.Allow(from.String(), evScale, to...)
	}
	return t
}

func newModeMachine(e *Editor) *modeMachine {
	m := &modeMachine{machine: newMachine(e, "mode_fsm", modeStart, modeTable())}
	m.ctl.SetHooks(m.enter, nil)
	return m
}

func (m *modeMachine) Handle(ev Event) fsm.Result {
	m.evaluate(evScale)
	return fsm.NotHandled
}

func (m *modeMachine) evaluate(event string) {
	if want := modeFor(m.session().Scale); want != m.State() {
		m.ctl.Change(want, event)
	}
}

func (m *modeMachine) enter(s modeState) {
	e := m.ed
	switch s {
	case modeStart:
		m.evaluate(evStart)
		return
	case modeMultiSite:
		m.toggle(e.siteToolbox.Name(), e.site.Name())
	case modeSite:
		m.toggle(e.rackToolbox.Name(), e.rack.Name())
	case modeRack:
		m.toggle(e.inventoryToolbox.Name())
	case modeDevice:
		m.toggle(e.appToolbox.Name())
	}
}

// toggle enables the named machines and disables the other mode-dependent
// ones.
func (m *modeMachine) toggle(enabled ...string) {
	e := m.ed
	for _, target := range []fsm.Machine[Event]{
		e.siteToolbox, e.rackToolbox, e.inventoryToolbox, e.appToolbox, e.site, e.rack,
	} {
		kind := Disable
		for _, name := range enabled {
			if target.Name() == name {
				kind = Enable
			}
		}
		target.Handle(Event{Kind: kind, Target: target.Name()})
	}
}
