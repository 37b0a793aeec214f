package session

import (
	"slices"

	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

// Selection is what a click picked.
type Selection struct {
	Device    *model.Device
	Link      *model.Link
	Interface *model.Interface
}

// Empty reports whether nothing was picked.
func (sel Selection) Empty() bool {
	return sel.Device == nil && sel.Link == nil && sel.Interface == nil
}

// ClearSelections deselects everything. Unselect messages are sent only for
// devices and links that were selected.
func (s *Session) ClearSelections() {
	for _, d := range s.Devices {
		if d.Selected {
			s.Send(&messages.DeviceUnSelected{ID: d.ID})
		}
		d.Selected = false
		for _, intf := range d.Interfaces {
			intf.Selected = false
		}
	}
	for _, l := range s.Links {
		if l.Selected {
			s.Send(&messages.LinkUnSelected{ID: l.ID})
		}
		l.Selected = false
	}
	for _, g := range s.Groups {
		g.Selected = false
	}
	for _, st := range s.Streams {
		st.Selected = false
	}
	for _, item := range s.SelectedItems {
		item.SetSelected(false)
	}
	s.SelectedDevices = nil
	s.SelectedLinks = nil
	s.SelectedInterfaces = nil
	s.SelectedGroups = nil
	s.SelectedStreams = nil
	s.SelectedItems = nil
}

// SelectItems picks what is under the scaled pointer and records the press
// position. Devices are tried topmost first; interfaces only when no device
// was hit and interfaces are shown; links only when neither was hit.
// Without multiple the previous selection is cleared and the first hit of
// each kind wins.
func (s *Session) SelectItems(multiple bool) Selection {
	s.Press()
	if !multiple {
		s.ClearSelections()
	}
	x, y := s.ScaledX, s.ScaledY

	var sel Selection
	for i := len(s.Devices) - 1; i >= 0; i-- {
		d := s.Devices[i]
		if !d.IsSelected(x, y) {
			continue
		}
		d.Selected = true
		s.Send(&messages.DeviceSelected{ID: d.ID})
		sel.Device = d
		s.SelectedItems = appendItem(s.SelectedItems, d)
		if !slices.Contains(s.SelectedDevices, d) {
			s.SelectedDevices = append(s.SelectedDevices, d)
		}
		if !multiple {
			break
		}
	}

	if sel.Device == nil && !s.HideInterfaces {
	devices:
		for _, d := range s.Devices {
			for _, intf := range d.Interfaces {
				if !intf.IsSelected(x, y) {
					continue
				}
				intf.Selected = true
				sel.Interface = intf
				if !slices.Contains(s.SelectedInterfaces, intf) {
					s.SelectedInterfaces = append(s.SelectedInterfaces, intf)
				}
				if !multiple {
					break devices
				}
			}
		}
	}

	if sel.Device == nil && sel.Interface == nil && !s.HideLinks {
		for _, l := range s.Links {
			if !l.IsSelected(x, y) {
				continue
			}
			l.Selected = true
			s.Send(&messages.LinkSelected{ID: l.ID})
			sel.Link = l
			if !slices.Contains(s.SelectedLinks, l) {
				s.SelectedLinks = append(s.SelectedLinks, l)
			}
			if !multiple {
				break
			}
		}
	}
	return sel
}

// SelectGroup marks a group selected.
func (s *Session) SelectGroup(g *model.Group) {
	g.Selected = true
	if !slices.Contains(s.SelectedGroups, g) {
		s.SelectedGroups = append(s.SelectedGroups, g)
	}
}

// SelectStream marks a stream selected.
func (s *Session) SelectStream(st *model.Stream) {
	st.Selected = true
	if !slices.Contains(s.SelectedStreams, st) {
		s.SelectedStreams = append(s.SelectedStreams, st)
	}
}

func appendItem(items []model.ToolboxItem, item model.ToolboxItem) []model.ToolboxItem {
	for _, it := range items {
		if it == item {
			return items
		}
	}
	return append(items, item)
}
