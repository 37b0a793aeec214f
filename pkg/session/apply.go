package session

import (
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
)

// Apply applies a message received from the relay. Echoes of this client's
// own messages are skipped; messages that reference unknown items are
// ignored.
func (s *Session) Apply(m messages.Message) {
	if s.clientID != 0 && m.Head().Sender == s.clientID {
		return
	}

	switch m := m.(type) {
	case *messages.ClientID:
		s.OnClientID(m.ID)
	case *messages.Topology:
		s.OnTopology(m)
	case *messages.Snapshot:
		s.LoadSnapshot(m)
	case *messages.History:
		s.ServerHistory = append([]messages.Frame(nil), m.Messages...)
	case *messages.ToolboxItem:
		s.OnToolboxItem(m)
	case *messages.TaskStatus:
		s.OnTaskStatus(m)
	case *messages.DeviceStatus:
		s.OnDeviceStatus(m)
	case *messages.Facts:
		s.OnFacts(m)

	case *messages.DeviceSelected:
		if d := s.Device(m.ID); d != nil {
			d.RemoteSelected = true
		}
	case *messages.DeviceUnSelected:
		if d := s.Device(m.ID); d != nil {
			d.RemoteSelected = false
		}
	case *messages.LinkSelected:
		if l := s.Link(m.ID); l != nil {
			l.RemoteSelected = true
		}
	case *messages.LinkUnSelected:
		if l := s.Link(m.ID); l != nil {
			l.RemoteSelected = false
		}
	case *messages.GroupSelected:
		if g := s.Group(m.ID); g != nil {
			g.RemoteSelected = true
		}
	case *messages.GroupUnSelected:
		if g := s.Group(m.ID); g != nil {
			g.RemoteSelected = false
		}
	case *messages.StreamSelected:
		if st := s.Stream(m.ID); st != nil {
			st.RemoteSelected = true
		}
	case *messages.StreamUnSelected:
		if st := s.Stream(m.ID); st != nil {
			st.RemoteSelected = false
		}

	case *messages.Undo:
		s.applyFrame(m.OriginalMessage, true)
	case *messages.Redo:
		s.applyFrame(m.OriginalMessage, false)
	case *messages.MultipleMessage:
		for _, sub := range m.Messages {
			s.Apply(sub)
		}

	default:
		if !s.applyEdit(m) {
			s.log.Debug(s.ctx, "message ignored", logging.String("type", m.TypeName()))
		}
	}
}

func (s *Session) applyFrame(f messages.Frame, undo bool) {
	inner, err := f.Decode()
	if err != nil {
		s.log.Debug(s.ctx, "undo frame ignored", logging.Err(err))
		return
	}
	c, err := NewCommand(inner)
	if err != nil {
		s.log.Debug(s.ctx, "undo frame ignored", logging.String("type", inner.TypeName()), logging.Err(err))
		return
	}
	if undo {
		c = c.Invert()
	}
	c.Apply(s)
}

// applyEdit performs a topology edit. It reports false for messages that
// are not edits.
func (s *Session) applyEdit(m messages.Message) bool {
	switch m := m.(type) {
	case *messages.DeviceCreate:
		s.CreateDevice(m.ID, m.Name, m.X, m.Y, m.Type)
	case *messages.DeviceMove:
		s.MoveDevice(m.ID, m.X, m.Y)
	case *messages.DeviceDestroy:
		s.DestroyDevice(m.ID)
	case *messages.DeviceLabelEdit:
		s.EditDeviceLabel(m.ID, m.Name)
	case *messages.InterfaceCreate:
		s.CreateInterface(m.DeviceID, m.ID, m.Name)
	case *messages.InterfaceLabelEdit:
		s.EditInterfaceLabel(m.DeviceID, m.ID, m.Name)
	case *messages.LinkCreate:
		s.CreateLink(LinkEnds{
			ID:              m.ID,
			FromDeviceID:    m.FromDeviceID,
			ToDeviceID:      m.ToDeviceID,
			FromInterfaceID: m.FromInterfaceID,
			ToInterfaceID:   m.ToInterfaceID,
		}, m.Name)
	case *messages.LinkDestroy:
		s.DestroyLink(LinkEnds{
			ID:              m.ID,
			FromDeviceID:    m.FromDeviceID,
			ToDeviceID:      m.ToDeviceID,
			FromInterfaceID: m.FromInterfaceID,
			ToInterfaceID:   m.ToInterfaceID,
		})
	case *messages.LinkLabelEdit:
		s.EditLinkLabel(m.ID, m.Name)
	case *messages.GroupCreate:
		s.CreateGroup(m.ID, m.Name, m.Type, m.X1, m.Y1, m.X2, m.Y2)
	case *messages.GroupMove:
		s.MoveGroup(m.ID, m.X1, m.Y1, m.X2, m.Y2)
	case *messages.GroupDestroy:
		s.DestroyGroup(m.ID)
	case *messages.GroupLabelEdit:
		s.EditGroupLabel(m.ID, m.Name)
	case *messages.GroupMembership:
		s.SetGroupMembership(m.ID, m.Members)
	case *messages.StreamCreate:
		s.CreateStream(m.ID, m.FromID, m.ToID, m.Label)
	case *messages.StreamDestroy:
		s.DestroyStream(m.ID)
	case *messages.StreamLabelEdit:
		s.EditStreamLabel(m.ID, m.Label)
	case *messages.ProcessCreate:
		s.CreateProcess(m.DeviceID, m.ID, m.Name, m.Type, m.X, m.Y)
	case *messages.MultipleMessage:
		for _, sub := range m.Messages {
			s.applyEdit(sub)
		}
	default:
		return false
	}
	return true
}
