package editor

import (
	"github.com/ha1tch/netui/pkg/fsm"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

// Button bar geometry.
const (
	buttonOffset = 200
	buttonY      = 48
	buttonHeight = 30
)

type buttonsState int

const (
	buttonsStart buttonsState = iota
	buttonsReady
	buttonsPressed
)

func (s buttonsState) String() string {
	return [...]string{"Start", "Ready", "Pressed"}[s]
}

// buttonsMachine presses and releases the chrome buttons. A click fires
// only when the pointer is released over the button it went down on.
type buttonsMachine struct {
	machine[buttonsState]
	pressed *model.Button
}

func buttonsTable() *fsm.Table {
	t := fsm.NewTable("buttons_fsm", buttonsStart.String())
	t.Description = "Toolbar buttons."
	t.Allow(buttonsStart.String(), evStart, buttonsReady.String())
	t.Allow(buttonsReady.String(), MouseDown.String(), buttonsPressed.String())
	t.Allow(buttonsPressed.String(), MouseUp.String(), buttonsReady.String())
	return t
}

func newButtonsMachine(e *Editor) *buttonsMachine {
	m := &buttonsMachine{machine: newMachine(e, "buttons_fsm", buttonsStart, buttonsTable())}
	m.ctl.SetHooks(m.enter, nil)
	return m
}

func (m *buttonsMachine) enter(s buttonsState) {
	if s == buttonsStart {
		m.ctl.Change(buttonsReady, evStart)
	}
}

func (m *buttonsMachine) Handle(ev Event) fsm.Result {
	s := m.session()
	switch m.State() {
	case buttonsReady:
		switch ev.Kind {
		case MouseMove:
			m.hover()
		case MouseDown:
			if s.HideButtons {
				return fsm.NotHandled
			}
			for _, b := range m.ed.Buttons {
				if b.IsSelected(s.MouseX, s.MouseY) {
					b.Pressed = true
					m.pressed = b
					m.change(buttonsPressed, ev)
					return fsm.Handled
				}
			}
		}
	case buttonsPressed:
		switch ev.Kind {
		case MouseMove:
			m.hover()
			return fsm.Handled
		case MouseUp:
			b := m.pressed
			b.Pressed = false
			m.pressed = nil
			m.change(buttonsReady, ev)
			if b.IsSelected(s.MouseX, s.MouseY) {
				m.ed.log.Debug(m.ed.ctx, "button clicked", logging.String("button", b.Name))
				b.Click()
			}
			return fsm.Handled
		}
	}
	return fsm.NotHandled
}

func (m *buttonsMachine) hover() {
	s := m.session()
	for _, b := range m.ed.Buttons {
		b.MouseOver = !s.HideButtons && b.IsSelected(s.MouseX, s.MouseY)
	}
}

func (e *Editor) buildButtons() {
	e.recordButton = model.NewToggleButton("RECORD", buttonOffset+180, buttonY, 80, buttonHeight, e.startRecording, e.stopRecording)
	e.Buttons = []*model.Button{
		model.NewButton("DEPLOY", buttonOffset+10, buttonY, 70, buttonHeight, e.onDeploy),
		model.NewButton("DESTROY", buttonOffset+90, buttonY, 80, buttonHeight, e.onDestroy),
		&e.recordButton.Button,
		model.NewButton("EXPORT", buttonOffset+270, buttonY, 70, buttonHeight, e.onExport),
		model.NewButton("DISCOVER", buttonOffset+350, buttonY, 80, buttonHeight, func() { e.launch(DiscoverJobTemplate) }),
		model.NewButton("LAYOUT", buttonOffset+440, buttonY, 70, buttonHeight, e.onLayout),
		model.NewButton("CONFIGURE", buttonOffset+520, buttonY, 90, buttonHeight, func() { e.launch(ConfigureJobTemplate) }),
		model.NewButton("EXPORT YAML", buttonOffset+620, buttonY, 120, buttonHeight, e.onExportYAML),
		model.NewButton("DOWNLOAD TRACE", buttonOffset+750, buttonY, 150, buttonHeight, e.onDownloadTrace),
	}
}

// Button returns the chrome button with the given label.
func (e *Editor) Button(name string) *model.Button {
	for _, b := range e.Buttons {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (e *Editor) onDeploy() {
	e.s.Send(&messages.Deploy{})
}

func (e *Editor) onDestroy() {
	e.s.ResetStatus()
	e.s.Send(&messages.Destroy{})
}

func (e *Editor) onLayout() {
	e.s.Send(&messages.Layout{})
}

func (e *Editor) startRecording() {
	s := e.s
	s.Recording = true
	s.Trace = nil
	s.TraceID = s.TraceSeq.Next()
	s.Send(&messages.MultipleMessage{Messages: []messages.Message{
		&messages.StartRecording{},
		&messages.ViewPort{Scale: s.Scale, PanX: s.PanX, PanY: s.PanY},
	}})
}

func (e *Editor) stopRecording() {
	e.s.Send(&messages.StopRecording{})
	e.s.Recording = false
}

func (e *Editor) onExport() {
	if e.hooks.ExportSVG == nil {
		return
	}
	if err := e.hooks.ExportSVG(e.s.Snapshot()); err != nil {
		e.log.Error(e.ctx, "export failed", logging.Err(err))
	}
}

func (e *Editor) launch(templateID int) {
	if e.hooks.LaunchJob == nil {
		return
	}
	if err := e.hooks.LaunchJob(templateID); err != nil {
		e.log.Error(e.ctx, "job launch failed", logging.Int("job_template", templateID), logging.Err(err))
	}
}

func (e *Editor) onExportYAML() {
	if e.hooks.ExportYAML == nil {
		return
	}
	if err := e.hooks.ExportYAML(e.s.TopologyData()); err != nil {
		e.log.Error(e.ctx, "yaml export failed", logging.Err(err))
	}
}

func (e *Editor) onDownloadTrace() {
	if e.hooks.DownloadTrace == nil {
		return
	}
	frames := append([]messages.Frame(nil), e.s.Trace...)
	if err := e.hooks.DownloadTrace(e.s.TraceID, frames); err != nil {
		e.log.Error(e.ctx, "trace download failed", logging.Int("trace_id", e.s.TraceID), logging.Err(err))
	}
}
