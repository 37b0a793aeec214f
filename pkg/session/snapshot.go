package session

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/ha1tch/netui/pkg/export"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

// Viewport fitting bounds used when a snapshot loads.
const (
	MinFitScale = 0.1
	MaxFitScale = 2.0
)

// LoadSnapshot replaces the topology with snap, re-seeds every id sequence
// past the largest id it contains and fits the viewport around the devices.
// Local edits queued before the last client id are applied again on top.
func (s *Session) LoadSnapshot(snap *messages.Snapshot) {
	s.Devices = nil
	s.Links = nil
	s.Groups = nil
	s.Streams = nil
	s.SelectedDevices = nil
	s.SelectedLinks = nil
	s.SelectedInterfaces = nil
	s.SelectedGroups = nil
	s.SelectedStreams = nil
	s.DetailDevice = nil
	if snap.TopologyID != 0 {
		s.TopologyID = snap.TopologyID
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sd := range snap.Devices {
		d := model.NewDevice(sd.ID, sd.Name, sd.X, sd.Y, sd.Type)
		d.InterfaceSeq = model.NaturalNumbers(sd.InterfaceIDSeq)
		d.ProcessSeq = model.NaturalNumbers(sd.ProcessIDSeq)
		for _, si := range sd.Interfaces {
			d.InterfaceSeq.Observe(si.ID)
			d.AddInterface(model.NewInterface(si.ID, si.Name))
		}
		for _, sp := range sd.Processes {
			d.ProcessSeq.Observe(sp.ID)
			p := model.NewProcess(sp.ID, sp.Name, sp.Type, sp.X, sp.Y)
			p.Device = d
			d.Processes = append(d.Processes, p)
		}
		s.Devices = append(s.Devices, d)
		s.DeviceSeq.Observe(sd.ID)

		minX = math.Min(minX, sd.X)
		minY = math.Min(minY, sd.Y)
		maxX = math.Max(maxX, sd.X)
		maxY = math.Max(maxY, sd.Y)
	}

	for _, sl := range snap.Links {
		s.CreateLink(LinkEnds{
			ID:              sl.ID,
			FromDeviceID:    sl.FromDeviceID,
			ToDeviceID:      sl.ToDeviceID,
			FromInterfaceID: sl.FromInterfaceID,
			ToInterfaceID:   sl.ToInterfaceID,
		}, sl.Name)
	}
	for _, ss := range snap.Streams {
		s.CreateStream(ss.ID, ss.FromID, ss.ToID, ss.Label)
	}
	for _, sg := range snap.Groups {
		g := s.CreateGroup(sg.ID, sg.Name, sg.Type, sg.X1, sg.Y1, sg.X2, sg.Y2)
		if len(sg.Members) > 0 {
			s.SetGroupMembership(g.ID, sg.Members)
		}
	}
	s.UpdateMemberships()

	if len(snap.Devices) > 0 {
		dx := maxX - minX
		dy := maxY - minY
		scale := math.Min((s.Width-200)/dx, (s.Height-300)/dy)
		s.Scale = math.Min(MaxFitScale, math.Max(MinFitScale, scale))
		s.PanX = s.Scale*(-minX-dx/2) + s.Width/2
		s.PanY = s.Scale*(-minY-dy/2) + s.Height/2
	}
	if len(s.resync) > 0 {
		for _, m := range s.resync {
			s.applyEdit(m)
		}
		s.log.Debug(s.ctx, "queued edits reapplied over snapshot", logging.Int("messages", len(s.resync)))
		s.resync = nil
		s.UpdateMemberships()
	}
	s.UpdateScaledXY()
	s.UpdateInterfaceDots()
}

// Snapshot returns the full state of the topology.
func (s *Session) Snapshot() *messages.Snapshot {
	snap := &messages.Snapshot{
		TopologyID: s.TopologyID,
		Devices:    make([]messages.SnapshotDevice, 0, len(s.Devices)),
		Links:      make([]messages.SnapshotLink, 0, len(s.Links)),
		Groups:     make([]messages.SnapshotGroup, 0, len(s.Groups)),
		Streams:    make([]messages.SnapshotStream, 0, len(s.Streams)),
	}
	for _, d := range s.Devices {
		snap.Devices = append(snap.Devices, snapshotDevice(d))
	}
	for _, l := range s.Links {
		snap.Links = append(snap.Links, snapshotLink(l))
	}
	for _, g := range s.Groups {
		snap.Groups = append(snap.Groups, snapshotGroup(g))
	}
	for _, st := range s.Streams {
		snap.Streams = append(snap.Streams, messages.SnapshotStream{
			ID: st.ID, FromID: st.From.ID, ToID: st.To.ID, Label: st.Label,
		})
	}
	return snap
}

func snapshotDevice(d *model.Device) messages.SnapshotDevice {
	sd := messages.SnapshotDevice{
		ID:             d.ID,
		Name:           d.Name,
		X:              d.X,
		Y:              d.Y,
		Type:           d.Type,
		InterfaceIDSeq: d.InterfaceSeq.Last(),
		ProcessIDSeq:   d.ProcessSeq.Last(),
		Interfaces:     make([]messages.SnapshotInterface, 0, len(d.Interfaces)),
		Processes:      make([]messages.SnapshotProcess, 0, len(d.Processes)),
	}
	for _, intf := range d.Interfaces {
		sd.Interfaces = append(sd.Interfaces, messages.SnapshotInterface{ID: intf.ID, Name: intf.Name})
	}
	for _, p := range d.Processes {
		sd.Processes = append(sd.Processes, messages.SnapshotProcess{ID: p.ID, Name: p.Name, Type: p.Type, X: p.X, Y: p.Y})
	}
	return sd
}

func snapshotLink(l *model.Link) messages.SnapshotLink {
	return messages.SnapshotLink{
		ID:              l.ID,
		Name:            l.Name,
		FromDeviceID:    l.From.ID,
		ToDeviceID:      l.To.ID,
		FromInterfaceID: l.FromInterface.ID,
		ToInterfaceID:   l.ToInterface.ID,
	}
}

func snapshotGroup(g *model.Group) messages.SnapshotGroup {
	sg := messages.SnapshotGroup{ID: g.ID, Name: g.Name, Type: g.Type, X1: g.X1, Y1: g.Y1, X2: g.X2, Y2: g.Y2}
	for _, d := range g.Devices {
		sg.Members = append(sg.Members, d.ID)
	}
	return sg
}

// OnTopology adopts the topology the relay placed this client in.
func (s *Session) OnTopology(t *messages.Topology) {
	s.TopologyID = t.TopologyID
	s.Name = t.Name
	s.PanX = t.PanX
	s.PanY = t.PanY
	if t.Scale > 0 {
		s.Scale = t.Scale
	}
	s.DeviceSeq.Observe(t.DeviceIDSeq)
	s.LinkSeq.Observe(t.LinkIDSeq)
	s.GroupSeq.Observe(t.GroupIDSeq)
	s.StreamSeq.Observe(t.StreamIDSeq)
	s.UpdateScaledXY()
}

// TopologyInfo describes the session as a Topology message.
func (s *Session) TopologyInfo() *messages.Topology {
	return &messages.Topology{
		TopologyID:  s.TopologyID,
		Name:        s.Name,
		PanX:        s.PanX,
		PanY:        s.PanY,
		Scale:       s.Scale,
		DeviceIDSeq: s.DeviceSeq.Last(),
		LinkIDSeq:   s.LinkSeq.Last(),
		GroupIDSeq:  s.GroupSeq.Last(),
		StreamIDSeq: s.StreamSeq.Last(),
	}
}

// AddInventoryHost puts an inventory host in the inventory toolbox as a
// device template.
func (s *Session) AddInventoryHost(name, typ string) *model.Device {
	d := model.NewDevice(0, name, 0, 0, typ)
	d.Icon = true
	s.InventoryToolbox.Add(d)
	return d
}

// OnToolboxItem adds a shared site or rack template to its toolbox.
func (s *Session) OnToolboxItem(item *messages.ToolboxItem) {
	var tb *model.Toolbox
	switch item.ToolboxName {
	case "Site":
		tb = s.SiteToolbox
	case "Rack":
		tb = s.RackToolbox
	default:
		s.log.Debug(s.ctx, "toolbox item for unknown toolbox", logging.String("toolbox", item.ToolboxName))
		return
	}
	var site messages.Site
	if err := json.Unmarshal([]byte(item.Data), &site); err != nil {
		s.log.Warn(s.ctx, "toolbox item ignored", logging.String("toolbox", item.ToolboxName), logging.Err(err))
		return
	}
	tb.Add(CloneSite(&site))
}

// CloneSite builds a detached template group from a site description. Links
// are rewired to the cloned interfaces; items referring to missing devices
// are dropped.
func CloneSite(site *messages.Site) *model.Group {
	g := model.NewGroup(site.ID, site.Name, site.Type, site.X1, site.Y1, site.X2, site.Y2)

	devices := make(map[int]*model.Device, len(site.Devices))
	for _, sd := range site.Devices {
		d := model.NewDevice(sd.ID, sd.Name, sd.X, sd.Y, sd.Type)
		d.InterfaceSeq = model.NaturalNumbers(sd.InterfaceIDSeq)
		d.ProcessSeq = model.NaturalNumbers(sd.ProcessIDSeq)
		for _, si := range sd.Interfaces {
			d.InterfaceSeq.Observe(si.ID)
			d.AddInterface(model.NewInterface(si.ID, si.Name))
		}
		for _, sp := range sd.Processes {
			d.ProcessSeq.Observe(sp.ID)
			p := model.NewProcess(sp.ID, sp.Name, sp.Type, sp.X, sp.Y)
			p.Device = d
			d.Processes = append(d.Processes, p)
		}
		devices[sd.ID] = d
		g.Devices = append(g.Devices, d)
	}
	for _, sg := range site.Groups {
		g.Groups = append(g.Groups, model.NewGroup(sg.ID, sg.Name, sg.Type, sg.X1, sg.Y1, sg.X2, sg.Y2))
	}
	for _, sl := range site.Links {
		from, to := devices[sl.FromDeviceID], devices[sl.ToDeviceID]
		if from == nil || to == nil {
			continue
		}
		fi, ti := from.Interface(sl.FromInterfaceID), to.Interface(sl.ToInterfaceID)
		if fi == nil || ti == nil {
			continue
		}
		l := model.NewLink(sl.ID, from, to, fi, ti)
		l.Name = sl.Name
		fi.Link = l
		ti.Link = l
		g.Links = append(g.Links, l)
	}
	for _, ss := range site.Streams {
		from, to := devices[ss.FromDevice], devices[ss.ToDevice]
		if from == nil || to == nil {
			continue
		}
		g.Streams = append(g.Streams, model.NewStream(ss.ID, from, to, ss.Label))
	}
	return g
}

// SiteTemplate describes g and everything inside it as a site template.
func (s *Session) SiteTemplate(g *model.Group) *messages.Site {
	site := &messages.Site{ID: g.ID, Name: g.Name, Type: g.Type, X1: g.X1, Y1: g.Y1, X2: g.X2, Y2: g.Y2}
	members := make(map[*model.Device]bool)
	for _, d := range s.Devices {
		if g.Contains(d) {
			members[d] = true
			site.Devices = append(site.Devices, snapshotDevice(d))
		}
	}
	for _, l := range s.Links {
		if members[l.From] && members[l.To] {
			site.Links = append(site.Links, snapshotLink(l))
		}
	}
	for _, inner := range s.Groups {
		if inner == g {
			continue
		}
		if inner.Left() > g.Left() && inner.Right() < g.Right() && inner.Top() > g.Top() && inner.Bottom() < g.Bottom() {
			site.Groups = append(site.Groups, snapshotGroup(inner))
		}
	}
	for _, st := range s.Streams {
		if members[st.From] && members[st.To] {
			site.Streams = append(site.Streams, messages.SiteStream{
				ID: st.ID, FromDevice: st.From.ID, ToDevice: st.To.ID, Label: st.Label,
			})
		}
	}
	return site
}

// TopologyData returns the topology document automation consumes: devices
// by name with each interface's remote end, and every link.
func (s *Session) TopologyData() *export.Document {
	doc := &export.Document{
		Name:       s.Name,
		TopologyID: s.TopologyID,
		Devices:    make([]export.Device, 0, len(s.Devices)),
		Links:      make([]export.Link, 0, len(s.Links)),
	}

	devices := append([]*model.Device(nil), s.Devices...)
	sort.SliceStable(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	for _, d := range devices {
		dev := export.Device{Name: d.Name, Type: d.Type, X: d.X, Y: d.Y, ID: d.ID, Interfaces: make([]export.Interface, 0, len(d.Interfaces))}
		intfs := append([]*model.Interface(nil), d.Interfaces...)
		sort.SliceStable(intfs, func(i, j int) bool { return intfs[i].Name < intfs[j].Name })
		for _, intf := range intfs {
			ei := export.Interface{Name: intf.Name, ID: intf.ID}
			if l := intf.Link; l != nil {
				ei.Network = l.ID
				remote := l.ToInterface
				if remote == intf {
					remote = l.FromInterface
				}
				if remote != nil && remote.Device != nil {
					ei.RemoteDeviceName = remote.Device.Name
					ei.RemoteInterfaceName = remote.Name
				}
			}
			dev.Interfaces = append(dev.Interfaces, ei)
		}
		doc.Devices = append(doc.Devices, dev)
	}

	for _, l := range s.Links {
		doc.Links = append(doc.Links, export.Link{
			FromDevice:      l.From.Name,
			ToDevice:        l.To.Name,
			FromInterface:   l.FromInterface.Name,
			ToInterface:     l.ToInterface.Name,
			FromDeviceID:    l.From.ID,
			ToDeviceID:      l.To.ID,
			FromInterfaceID: l.FromInterface.ID,
			ToInterfaceID:   l.ToInterface.ID,
			Name:            l.Name,
			Network:         l.ID,
		})
	}
	return doc
}
