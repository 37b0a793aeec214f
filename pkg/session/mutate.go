package session

import (
	"slices"

	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/model"
)

// CreateDevice adds a device unless one with the same id exists. The device
// sequence is raised past id.
func (s *Session) CreateDevice(id int, name string, x, y float64, typ string) *model.Device {
	s.DeviceSeq.Observe(id)
	if d := s.Device(id); d != nil {
		s.log.Debug(s.ctx, "duplicate device ignored", logging.Int("device_id", id))
		return d
	}
	d := model.NewDevice(id, name, x, y, typ)
	s.Devices = append(s.Devices, d)
	return d
}

// MoveDevice moves a device and recomputes every dot its links touch.
func (s *Session) MoveDevice(id int, x, y float64) bool {
	d := s.Device(id)
	if d == nil {
		return false
	}
	d.X = x
	d.Y = y
	refreshDots(d)
	return true
}

func refreshDots(d *model.Device) {
	for _, intf := range d.Interfaces {
		intf.Dot()
		if intf.Link != nil {
			if intf.Link.ToInterface != nil {
				intf.Link.ToInterface.Dot()
			}
			if intf.Link.FromInterface != nil {
				intf.Link.FromInterface.Dot()
			}
		}
	}
}

// DestroyDevice removes a device and every link touching it. Interfaces on
// the far side of those links are detached.
func (s *Session) DestroyDevice(id int) *model.Device {
	d := s.Device(id)
	if d == nil {
		return nil
	}
	s.Devices = remove(s.Devices, d)
	s.SelectedDevices = remove(s.SelectedDevices, d)
	if s.DetailDevice == d {
		s.DetailDevice = nil
	}

	kept := s.Links[:0]
	for _, l := range s.Links {
		if !l.Touches(d) {
			kept = append(kept, l)
			continue
		}
		detach(l)
		s.SelectedLinks = remove(s.SelectedLinks, l)
	}
	s.Links = kept

	for _, g := range s.Groups {
		g.Devices = remove(g.Devices, d)
	}
	return d
}

func detach(l *model.Link) {
	if l.FromInterface != nil && l.FromInterface.Link == l {
		l.FromInterface.Link = nil
	}
	if l.ToInterface != nil && l.ToInterface.Link == l {
		l.ToInterface.Link = nil
	}
}

// EditDeviceLabel renames a device.
func (s *Session) EditDeviceLabel(id int, name string) bool {
	d := s.Device(id)
	if d == nil {
		return false
	}
	d.Name = name
	return true
}

// CreateInterface adds an interface to a device and raises the device's
// interface sequence past id.
func (s *Session) CreateInterface(deviceID, id int, name string) *model.Interface {
	d := s.Device(deviceID)
	if d == nil {
		s.log.Debug(s.ctx, "interface for unknown device ignored", logging.Int("device_id", deviceID))
		return nil
	}
	d.InterfaceSeq.Observe(id)
	if intf := d.Interface(id); intf != nil {
		return intf
	}
	intf := model.NewInterface(id, name)
	d.AddInterface(intf)
	return intf
}

// EditInterfaceLabel renames an interface.
func (s *Session) EditInterfaceLabel(deviceID, id int, name string) bool {
	d := s.Device(deviceID)
	if d == nil {
		return false
	}
	intf := d.Interface(id)
	if intf == nil {
		return false
	}
	intf.Name = name
	return true
}

// LinkEnds identifies a link by its id and both endpoints.
type LinkEnds struct {
	ID              int
	FromDeviceID    int
	ToDeviceID      int
	FromInterfaceID int
	ToInterfaceID   int
}

// CreateLink connects two existing interfaces. It is skipped unless both
// devices and both interfaces exist, so every stored link has both of its
// interfaces pointing back at it.
func (s *Session) CreateLink(ends LinkEnds, name string) *model.Link {
	s.LinkSeq.Observe(ends.ID)
	from := s.Device(ends.FromDeviceID)
	to := s.Device(ends.ToDeviceID)
	if from == nil || to == nil {
		s.log.Debug(s.ctx, "link to unknown device ignored", logging.Int("link_id", ends.ID))
		return nil
	}
	fromIntf := from.Interface(ends.FromInterfaceID)
	toIntf := to.Interface(ends.ToInterfaceID)
	if fromIntf == nil || toIntf == nil {
		s.log.Debug(s.ctx, "link to unknown interface ignored", logging.Int("link_id", ends.ID))
		return nil
	}
	if l := s.Link(ends.ID); l != nil {
		return l
	}
	if fromIntf.Link != nil || toIntf.Link != nil {
		s.log.Debug(s.ctx, "link to busy interface ignored", logging.Int("link_id", ends.ID))
		return nil
	}

	l := model.NewLink(ends.ID, from, to, fromIntf, toIntf)
	l.Name = name
	fromIntf.Link = l
	toIntf.Link = l
	fromIntf.Dot()
	toIntf.Dot()
	s.Links = append(s.Links, l)
	return l
}

// DestroyLink removes the link matching ends exactly. Anything else is a
// stale message and leaves the links untouched.
func (s *Session) DestroyLink(ends LinkEnds) *model.Link {
	for i, l := range s.Links {
		if l.ID == ends.ID &&
			l.From.ID == ends.FromDeviceID &&
			l.To.ID == ends.ToDeviceID &&
			l.FromInterface.ID == ends.FromInterfaceID &&
			l.ToInterface.ID == ends.ToInterfaceID {
			detach(l)
			s.Links = append(s.Links[:i], s.Links[i+1:]...)
			s.SelectedLinks = remove(s.SelectedLinks, l)
			return l
		}
	}
	s.log.Debug(s.ctx, "stale link destroy ignored", logging.Int("link_id", ends.ID))
	return nil
}

// Ends returns the identifying ends of l.
func Ends(l *model.Link) LinkEnds {
	return LinkEnds{
		ID:              l.ID,
		FromDeviceID:    l.From.ID,
		ToDeviceID:      l.To.ID,
		FromInterfaceID: l.FromInterface.ID,
		ToInterfaceID:   l.ToInterface.ID,
	}
}

// EditLinkLabel renames a link.
func (s *Session) EditLinkLabel(id int, name string) bool {
	l := s.Link(id)
	if l == nil {
		return false
	}
	l.Name = name
	return true
}

// CreateGroup adds a group and computes its membership.
func (s *Session) CreateGroup(id int, name, typ string, x1, y1, x2, y2 float64) *model.Group {
	s.GroupSeq.Observe(id)
	if g := s.Group(id); g != nil {
		return g
	}
	g := model.NewGroup(id, name, typ, x1, y1, x2, y2)
	g.UpdateMembership(s.Devices)
	s.Groups = append(s.Groups, g)
	return g
}

// MoveGroup sets a group's corners and refreshes its membership.
func (s *Session) MoveGroup(id int, x1, y1, x2, y2 float64) bool {
	g := s.Group(id)
	if g == nil {
		return false
	}
	g.X1, g.Y1, g.X2, g.Y2 = x1, y1, x2, y2
	g.UpdateMembership(s.Devices)
	return true
}

// DestroyGroup removes a group by id. Member devices stay.
func (s *Session) DestroyGroup(id int) *model.Group {
	for i, g := range s.Groups {
		if g.ID == id {
			s.Groups = append(s.Groups[:i], s.Groups[i+1:]...)
			s.SelectedGroups = remove(s.SelectedGroups, g)
			return g
		}
	}
	return nil
}

// EditGroupLabel renames a group.
func (s *Session) EditGroupLabel(id int, name string) bool {
	g := s.Group(id)
	if g == nil {
		return false
	}
	g.Name = name
	return true
}

// SetGroupMembership replaces a group's members with the given device ids.
func (s *Session) SetGroupMembership(id int, members []int) bool {
	g := s.Group(id)
	if g == nil {
		return false
	}
	g.Devices = g.Devices[:0]
	for _, m := range members {
		if d := s.Device(m); d != nil {
			g.Devices = append(g.Devices, d)
		}
	}
	return true
}

// UpdateMemberships refreshes every group.
func (s *Session) UpdateMemberships() {
	for _, g := range s.Groups {
		g.UpdateMembership(s.Devices)
	}
}

// CreateStream adds a stream between two existing devices.
func (s *Session) CreateStream(id, fromID, toID int, label string) *model.Stream {
	s.StreamSeq.Observe(id)
	from := s.Device(fromID)
	to := s.Device(toID)
	if from == nil || to == nil {
		s.log.Debug(s.ctx, "stream to unknown device ignored", logging.Int("stream_id", id))
		return nil
	}
	if st := s.Stream(id); st != nil {
		return st
	}
	st := model.NewStream(id, from, to, label)
	s.Streams = append(s.Streams, st)
	s.UpdateStreamOffsets()
	return st
}

// DestroyStream removes a stream by id.
func (s *Session) DestroyStream(id int) *model.Stream {
	for i, st := range s.Streams {
		if st.ID == id {
			s.Streams = append(s.Streams[:i], s.Streams[i+1:]...)
			s.UpdateStreamOffsets()
			return st
		}
	}
	return nil
}

// EditStreamLabel relabels a stream.
func (s *Session) EditStreamLabel(id int, label string) bool {
	st := s.Stream(id)
	if st == nil {
		return false
	}
	st.Label = label
	return true
}

// UpdateStreamOffsets numbers parallel streams between the same ordered
// pair of devices so they can be drawn apart.
func (s *Session) UpdateStreamOffsets() {
	next := make(map[[2]int]int)
	for _, st := range s.Streams {
		key := [2]int{st.From.ID, st.To.ID}
		st.Offset = next[key]
		next[key]++
	}
}

// CreateProcess attaches a process to a device.
func (s *Session) CreateProcess(deviceID, id int, name, typ string, x, y float64) *model.Process {
	d := s.Device(deviceID)
	if d == nil {
		return nil
	}
	d.ProcessSeq.Observe(id)
	p := model.NewProcess(id, name, typ, x, y)
	p.Device = d
	d.Processes = append(d.Processes, p)
	return p
}

// UpdateInterfaceDots recomputes every dot.
func (s *Session) UpdateInterfaceDots() {
	for i := len(s.Devices) - 1; i >= 0; i-- {
		for j := len(s.Devices[i].Interfaces) - 1; j >= 0; j-- {
			s.Devices[i].Interfaces[j].Dot()
		}
	}
}

func remove[T comparable](list []T, v T) []T {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}
