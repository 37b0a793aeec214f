package session

import (
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

func passed(status *string) *bool {
	if status == nil {
		return nil
	}
	v := *status == "pass"
	return &v
}

// OnTaskStatus records a task result on every device with the given name.
func (s *Session) OnTaskStatus(m *messages.TaskStatus) {
	for _, d := range s.Devices {
		if d.Name != m.DeviceName {
			continue
		}
		t := d.Task(m.TaskID)
		if t == nil {
			t = model.NewTask(m.TaskID, m.DeviceName)
			d.Tasks = append(d.Tasks, t)
		}
		if st := passed(m.Status); st != nil {
			t.Status = st
			d.Status = passed(m.Status)
		}
		if m.Working != nil {
			w := *m.Working
			t.Working = &w
			d.Working = w
		}
	}
}

// OnDeviceStatus records an overall status on every device with the given
// name.
func (s *Session) OnDeviceStatus(m *messages.DeviceStatus) {
	for _, d := range s.Devices {
		if d.Name != m.Name {
			continue
		}
		if st := passed(m.Status); st != nil {
			d.Status = st
		}
		if m.Working != nil {
			d.Working = *m.Working
		}
	}
}

// OnFacts marks link status from gathered facts: cable checks reported by
// PTM on the device's ports, and whether LLDP neighbours match the far end
// of each link.
func (s *Session) OnFacts(m *messages.Facts) {
	d := s.DeviceByName(m.Key)
	if d == nil {
		return
	}
	v, err := m.Decode()
	if err != nil {
		s.log.Debug(s.ctx, "facts ignored", logging.String("host", m.Key), logging.Err(err))
		return
	}

	if v.AnsibleLocal != nil {
		for _, ptm := range v.AnsibleLocal.PTM {
			for _, intf := range d.Interfaces {
				if intf.Name == ptm.Port && intf.Link != nil {
					ok := ptm.CblStatus == "pass"
					intf.Link.Status = &ok
				}
			}
		}
	}

	for port, peers := range v.AnsibleNetNeighbors {
		intf := d.InterfaceByName(port)
		if intf == nil || intf.Link == nil {
			continue
		}
		far := intf.Link.ToInterface
		if far == intf {
			far = intf.Link.FromInterface
		}
		for _, peer := range peers {
			ok := s.DeviceInterface(peer.Host, peer.Port) == far
			intf.Link.Status = &ok
		}
	}
}

// ResetStatus clears every device, interface and link status.
func (s *Session) ResetStatus() {
	for _, d := range s.Devices {
		d.Status = nil
		d.Working = false
		d.Tasks = nil
		for _, intf := range d.Interfaces {
			intf.Status = nil
		}
	}
	for _, l := range s.Links {
		l.Status = nil
	}
}
