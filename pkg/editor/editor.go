// Package editor drives a session from user input. Input and inbound frames
// become Events that travel down a fixed chain of interaction machines,
// each owning one layer of editing behaviour; the first machine that
// handles an event stops it.
//
// An Editor is safe for concurrent use: every entry point takes the same
// lock, and handlers only ever run under it.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ha1tch/netui/pkg/export"
	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
	"github.com/ha1tch/netui/pkg/observability"
	"github.com/ha1tch/netui/pkg/session"
)

// DefaultFrameInterval is the redraw tick.
const DefaultFrameInterval = 17 * time.Millisecond

// Job templates launched by the DISCOVER and CONFIGURE buttons.
const (
	DiscoverJobTemplate  = 7
	ConfigureJobTemplate = 9
)

// Hooks connect button actions and redraws to the front-end. They run on
// the dispatching goroutine with the editor locked, so they must not call
// back into the Editor and should hand slow work to another goroutine.
type Hooks struct {
	ExportSVG     func(snap *messages.Snapshot) error
	LaunchJob     func(templateID int) error
	ExportYAML    func(doc *export.Document) error
	DownloadTrace func(traceID int, frames []messages.Frame) error
	Redraw        func(frame int64)
}

// Options configures an Editor.
type Options struct {
	Logger        logging.Logger
	Metrics       *observability.EditorCollector
	Hooks         Hooks
	FrameInterval time.Duration
}

// Editor owns a session and the machines that edit it.
type Editor struct {
	mu sync.Mutex

	s       *session.Session
	log     logging.Logger
	metrics *observability.EditorCollector
	hooks   Hooks
	ctx     context.Context

	interval time.Duration

	chain      *fsm.Chain[Event]
	tables     []*fsm.Table
	violations []fsm.Step

	mode             *modeMachine
	time             *timeMachine
	buttons          *buttonsMachine
	siteToolbox      *toolboxMachine
	rackToolbox      *toolboxMachine
	inventoryToolbox *toolboxMachine
	appToolbox       *toolboxMachine
	site             *containerMachine
	rack             *containerMachine
	group            *groupMachine
	stream           *connectMachine
	link             *connectMachine
	move             *moveMachine
	detail           *detailMachine
	view             *viewMachine
	hotkeys          *hotkeysMachine

	// Buttons are the canvas chrome buttons in drawing order.
	Buttons      []*model.Button
	recordButton *model.ToggleButton
}

// New builds the machine chain around s and starts every machine.
func New(s *session.Session, opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = s.Logger()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	e := &Editor{
		s:        s,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		hooks:    opts.Hooks,
		ctx:      context.Background(),
		interval: opts.FrameInterval,
	}
	e.buildButtons()

	e.mode = newModeMachine(e)
	e.time = newTimeMachine(e)
	e.buttons = newButtonsMachine(e)
	e.siteToolbox = newToolboxMachine(e, "site_toolbox_fsm", s.SiteToolbox, e.dropAs(PasteSite))
	e.rackToolbox = newToolboxMachine(e, "rack_toolbox_fsm", s.RackToolbox, e.dropAs(PasteRack))
	e.inventoryToolbox = newToolboxMachine(e, "inventory_toolbox_fsm", s.InventoryToolbox, e.dropAs(PasteDevice))
	e.appToolbox = newToolboxMachine(e, "app_toolbox_fsm", s.AppToolbox, e.dropAs(PasteProcess))
	e.site = newContainerMachine(e, "site_fsm", model.GroupTypeSite, PasteSite)
	e.rack = newContainerMachine(e, "rack_fsm", model.GroupTypeRack, PasteRack)
	e.group = newGroupMachine(e)
	e.stream = newStreamMachine(e)
	e.link = newLinkMachine(e)
	e.move = newMoveMachine(e)
	e.detail = newDetailMachine(e)
	e.view = newViewMachine(e)
	e.hotkeys = newHotkeysMachine(e)

	e.chain = fsm.NewChain[Event](
		e.mode,
		e.time,
		e.buttons,
		e.siteToolbox,
		e.rackToolbox,
		e.inventoryToolbox,
		e.appToolbox,
		e.site,
		e.rack,
		e.group,
		e.stream,
		e.link,
		e.move,
		e.detail,
		e.view,
		e.hotkeys,
	)

	// The mode machine enables and disables its siblings on entry, so it
	// starts after them.
	for _, m := range e.chain.Machines()[1:] {
		m.(starter).start()
	}
	e.mode.start()
	return e
}

type starter interface {
	start()
	current() string
}

// SetContext sets the context handlers log with.
func (e *Editor) SetContext(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx = ctx
	e.s.SetContext(ctx)
}

// View runs fn with the editor locked. fn must not retain s.
func (e *Editor) View(fn func(s *session.Session)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.s)
}

// Tables returns the declared transition table of every machine in chain
// order.
func (e *Editor) Tables() []*fsm.Table {
	out := make([]*fsm.Table, len(e.tables))
	copy(out, e.tables)
	return out
}

// Machines returns the machine names in chain order.
func (e *Editor) Machines() []string {
	ms := e.chain.Machines()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name()
	}
	return out
}

// States returns the current state of every machine, keyed by name.
func (e *Editor) States() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ms := e.chain.Machines()
	out := make(map[string]string, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.(starter).current()
	}
	return out
}

// Violations returns every state change a machine made that its table does
// not declare.
func (e *Editor) Violations() []fsm.Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]fsm.Step, len(e.violations))
	copy(out, e.violations)
	return out
}

func (e *Editor) violation(step fsm.Step) {
	e.violations = append(e.violations, step)
	e.metrics.Violation(step.Machine)
	e.log.Warn(e.ctx, "undeclared transition",
		logging.String("machine", step.Machine),
		logging.String("from", step.From),
		logging.String("event", step.Event),
		logging.String("to", step.To))
}

// Dispatch normalises an input event and sends it down the chain. A
// handler panic is logged and reported as NotHandled; whatever the handler
// changed before panicking stays changed.
func (e *Editor) Dispatch(ev Event) (res fsm.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.recoverPanic(ev.Kind)

	e.normalise(ev)
	res = e.send(ev)
	e.metrics.Event(ev.Kind.String(), res == fsm.Handled)
	e.metrics.SetPending(e.s.Pending())
	return res
}

func (e *Editor) recoverPanic(kind Kind) {
	if r := recover(); r != nil {
		e.metrics.Panic()
		e.log.Error(e.ctx, "handler panic",
			logging.String("event", kind.String()),
			logging.String("panic", fmt.Sprint(r)))
	}
}

// send dispatches from the head of the chain. Handlers use it to raise
// follow-up events while the lock is held.
func (e *Editor) send(ev Event) fsm.Result {
	return e.chain.Dispatch(ev)
}

// normalise applies the pointer and keyboard bookkeeping every input needs
// before the machines see it, and records input while recording.
func (e *Editor) normalise(ev Event) {
	s := e.s
	switch ev.Kind {
	case MouseDown, MouseUp, MouseMove:
		s.SetMouse(ev.X, ev.Y)
		if s.Recording {
			s.Send(&messages.MouseEvent{X: ev.X, Y: ev.Y, Type: mouseEventType(ev.Kind)})
		}
	case MouseWheel:
		if s.Recording {
			s.Send(&messages.MouseWheelEvent{
				Delta:         ev.Delta,
				DeltaX:        ev.DeltaX,
				DeltaY:        ev.DeltaY,
				Type:          "mousewheel",
				OriginalEvent: messages.OriginalEvent{MetaKey: ev.has(ModMeta)},
			})
		}
	case KeyDown:
		s.LastKey = ev.Key
		s.LastKeyCode = ev.KeyCode
		if s.Recording {
			s.Send(&messages.KeyEvent{
				Key:      ev.Key,
				KeyCode:  ev.KeyCode,
				Type:     "keydown",
				AltKey:   ev.has(ModAlt),
				ShiftKey: ev.has(ModShift),
				CtrlKey:  ev.has(ModCtrl),
				MetaKey:  ev.has(ModMeta),
			})
		}
	case TouchStart, TouchMove, TouchEnd:
		if s.Recording {
			s.Send(&messages.TouchEvent{Type: touchEventType(ev.Kind), Touches: ev.Touches})
		}
		if ev.Kind != TouchEnd && len(ev.Touches) == 1 {
			s.SetMouse(ev.Touches[0].PageX, ev.Touches[0].PageY)
		}
	}
}

func mouseEventType(k Kind) string {
	switch k {
	case MouseDown:
		return "mousedown"
	case MouseUp:
		return "mouseup"
	}
	return "mousemove"
}

func touchEventType(k Kind) string {
	switch k {
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	}
	return "touchend"
}

// MouseDown presses the pointer at screen (x, y).
func (e *Editor) MouseDown(x, y float64, mod Mod) fsm.Result {
	return e.Dispatch(Event{Kind: MouseDown, X: x, Y: y, Mod: mod})
}

// MouseUp releases the pointer at screen (x, y).
func (e *Editor) MouseUp(x, y float64) fsm.Result {
	return e.Dispatch(Event{Kind: MouseUp, X: x, Y: y})
}

// MouseMove moves the pointer to screen (x, y).
func (e *Editor) MouseMove(x, y float64) fsm.Result {
	return e.Dispatch(Event{Kind: MouseMove, X: x, Y: y})
}

// MouseWheel scrolls by delta; positive is away from the user.
func (e *Editor) MouseWheel(delta, deltaX, deltaY float64, mod Mod) fsm.Result {
	return e.Dispatch(Event{Kind: MouseWheel, Delta: delta, DeltaX: deltaX, DeltaY: deltaY, Mod: mod})
}

// KeyDown presses a key.
func (e *Editor) KeyDown(key string, keyCode int, mod Mod) fsm.Result {
	return e.Dispatch(Event{Kind: KeyDown, Key: key, KeyCode: keyCode, Mod: mod})
}

// Receive handles one inbound frame from the relay.
func (e *Editor) Receive(frame []byte) fsm.Result {
	return e.Dispatch(Event{Kind: Message, Frame: frame})
}

// Tick advances the frame counter and asks the front-end to redraw.
func (e *Editor) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.Frame++
	if e.hooks.Redraw != nil {
		e.hooks.Redraw(e.s.Frame)
	}
}

// Run consumes inbound frames and input events until ctx ends, ticking the
// frame counter in between. Closed channels are ignored from then on.
func (e *Editor) Run(ctx context.Context, frames <-chan []byte, events <-chan Event) error {
	e.SetContext(ctx)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			e.Receive(f)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			e.Dispatch(ev)
		case <-ticker.C:
			e.Tick()
		}
	}
}

// dropAs returns a toolbox drop action that pastes the item as kind from
// the head of the chain.
func (e *Editor) dropAs(kind Kind) func(model.ToolboxItem) {
	return func(item model.ToolboxItem) {
		e.send(Event{Kind: kind, Item: item})
	}
}
