package session

import (
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
)

// DefaultUndoLimit bounds the local undo stack.
const DefaultUndoLimit = 1000

// Invert returns the message that undoes m. ok is false for messages that
// cannot be undone. Invert never mutates m.
func Invert(m messages.Message) (inv messages.Message, ok bool) {
	switch m := m.(type) {
	case *messages.DeviceMove:
		return &messages.DeviceMove{ID: m.ID, X: m.PreviousX, Y: m.PreviousY, PreviousX: m.X, PreviousY: m.Y}, true
	case *messages.DeviceCreate:
		return &messages.DeviceDestroy{ID: m.ID, PreviousX: m.X, PreviousY: m.Y, PreviousName: m.Name, PreviousType: m.Type}, true
	case *messages.DeviceDestroy:
		return &messages.DeviceCreate{ID: m.ID, X: m.PreviousX, Y: m.PreviousY, Name: m.PreviousName, Type: m.PreviousType}, true
	case *messages.DeviceLabelEdit:
		return &messages.DeviceLabelEdit{ID: m.ID, Name: m.PreviousName, PreviousName: m.Name}, true
	case *messages.InterfaceLabelEdit:
		return &messages.InterfaceLabelEdit{ID: m.ID, DeviceID: m.DeviceID, Name: m.PreviousName, PreviousName: m.Name}, true
	case *messages.LinkCreate:
		return &messages.LinkDestroy{
			ID: m.ID, Name: m.Name,
			FromDeviceID: m.FromDeviceID, ToDeviceID: m.ToDeviceID,
			FromInterfaceID: m.FromInterfaceID, ToInterfaceID: m.ToInterfaceID,
		}, true
	case *messages.LinkDestroy:
		return &messages.LinkCreate{
			ID: m.ID, Name: m.Name,
			FromDeviceID: m.FromDeviceID, ToDeviceID: m.ToDeviceID,
			FromInterfaceID: m.FromInterfaceID, ToInterfaceID: m.ToInterfaceID,
		}, true
	case *messages.LinkLabelEdit:
		return &messages.LinkLabelEdit{ID: m.ID, Name: m.PreviousName, PreviousName: m.Name}, true
	case *messages.GroupMove:
		return &messages.GroupMove{
			ID: m.ID,
			X1: m.PreviousX1, Y1: m.PreviousY1, X2: m.PreviousX2, Y2: m.PreviousY2,
			PreviousX1: m.X1, PreviousY1: m.Y1, PreviousX2: m.X2, PreviousY2: m.Y2,
		}, true
	case *messages.GroupCreate:
		return &messages.GroupDestroy{
			ID: m.ID,
			PreviousX1: m.X1, PreviousY1: m.Y1, PreviousX2: m.X2, PreviousY2: m.Y2,
			PreviousName: m.Name, PreviousType: m.Type,
		}, true
	case *messages.GroupDestroy:
		return &messages.GroupCreate{
			ID: m.ID,
			X1: m.PreviousX1, Y1: m.PreviousY1, X2: m.PreviousX2, Y2: m.PreviousY2,
			Name: m.PreviousName, Type: m.PreviousType,
		}, true
	case *messages.GroupLabelEdit:
		return &messages.GroupLabelEdit{ID: m.ID, Name: m.PreviousName, PreviousName: m.Name}, true
	case *messages.StreamCreate:
		return &messages.StreamDestroy{ID: m.ID, FromID: m.FromID, ToID: m.ToID, Label: m.Label}, true
	case *messages.StreamDestroy:
		return &messages.StreamCreate{ID: m.ID, FromID: m.FromID, ToID: m.ToID, Label: m.Label}, true
	case *messages.StreamLabelEdit:
		return &messages.StreamLabelEdit{ID: m.ID, Label: m.PreviousLabel, PreviousLabel: m.Label}, true
	case *messages.MultipleMessage:
		out := &messages.MultipleMessage{Messages: make([]messages.Message, 0, len(m.Messages))}
		for i := len(m.Messages) - 1; i >= 0; i-- {
			sub, ok := Invert(m.Messages[i])
			if !ok {
				return nil, false
			}
			out.Messages = append(out.Messages, sub)
		}
		return out, true
	}
	return nil, false
}

// Command is an undoable edit: a message together with its inverse.
type Command struct {
	msg messages.Message
	inv messages.Message
}

// NewCommand wraps m, failing with ErrNotUndoable if it has no inverse.
func NewCommand(m messages.Message) (Command, error) {
	inv, ok := Invert(m)
	if !ok {
		return Command{}, ErrNotUndoable
	}
	return Command{msg: m, inv: inv}, nil
}

// Message returns the edit the command performs.
func (c Command) Message() messages.Message { return c.msg }

// Apply performs the edit on s.
func (c Command) Apply(s *Session) { s.applyEdit(c.msg) }

// Invert returns the command that undoes c.
func (c Command) Invert() Command { return Command{msg: c.inv, inv: c.msg} }

// History holds the local undo and redo stacks.
type History struct {
	undo  []Command
	redo  []Command
	limit int
}

// NewHistory creates a history keeping at most limit commands.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultUndoLimit
	}
	return &History{limit: limit}
}

// Record pushes a new edit and clears the redo stack.
func (h *History) Record(c Command) {
	h.undo = append(h.undo, c)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

// CanUndo reports whether there is an edit to undo.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether there is an undone edit to redo.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the number of undoable edits.
func (h *History) Len() int { return len(h.undo) }

func (h *History) popUndo() (Command, bool) {
	if len(h.undo) == 0 {
		return Command{}, false
	}
	c := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, c)
	return c, true
}

func (h *History) popRedo() (Command, bool) {
	if len(h.redo) == 0 {
		return Command{}, false
	}
	c := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, c)
	return c, true
}

// Emit sends an edit the caller has already applied locally, recording it
// for undo when it has an inverse.
func (s *Session) Emit(m messages.Message) error {
	if c, err := NewCommand(m); err == nil {
		s.History.Record(c)
	}
	return s.Send(m)
}

// Undo reverts the most recent local edit and tells the relay.
func (s *Session) Undo() bool {
	c, ok := s.History.popUndo()
	if !ok {
		return false
	}
	c.Invert().Apply(s)
	f, err := messages.FrameOf(c.Message())
	if err != nil {
		s.log.Error(s.ctx, "encode undo", logging.Err(err))
		return true
	}
	s.Send(&messages.Undo{OriginalMessage: f})
	return true
}

// Redo re-applies the most recently undone edit and tells the relay.
func (s *Session) Redo() bool {
	c, ok := s.History.popRedo()
	if !ok {
		return false
	}
	c.Apply(s)
	f, err := messages.FrameOf(c.Message())
	if err != nil {
		s.log.Error(s.ctx, "encode redo", logging.Err(err))
		return true
	}
	s.Send(&messages.Redo{OriginalMessage: f})
	return true
}
