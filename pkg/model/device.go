// Package model holds the topology records the editor manipulates and the
// geometry used to hit-test and attach them.
package model

import "math"

// Shape is how a device is drawn; hit-testing is rectangular for every shape.
type Shape string

const (
	ShapeCircular    Shape = "circular"
	ShapeRectangular Shape = "rectangular"
)

// Device sizes.
const (
	DeviceWidth      = 50
	DeviceSize       = 50
	DeviceHeight     = 50
	HostDeviceHeight = 15
)

// Device is a node on the canvas.
type Device struct {
	ID   int
	Name string
	X, Y float64
	Type string

	Width, Height, Size float64
	Shape               Shape

	Selected       bool
	RemoteSelected bool
	EditLabel      bool
	Icon           bool

	// Status is nil until a task reports, then pass (true) or fail (false).
	Status  *bool
	Working bool
	Tasks   []*Task

	Interfaces   []*Interface
	Processes    []*Process
	InterfaceSeq *Seq
	ProcessSeq   *Seq
}

// NewDevice creates a device with the geometry its type implies.
func NewDevice(id int, name string, x, y float64, typ string) *Device {
	d := &Device{
		ID:           id,
		Name:         name,
		X:            x,
		Y:            y,
		Type:         typ,
		Width:        DeviceWidth,
		Height:       DeviceHeight,
		Size:         DeviceSize,
		Shape:        ShapeRectangular,
		InterfaceSeq: NaturalNumbers(0),
		ProcessSeq:   NaturalNumbers(0),
	}
	if typ == "host" {
		d.Height = HostDeviceHeight
	}
	if typ == "router" {
		d.Shape = ShapeCircular
	}
	return d
}

// IsSelected reports whether (x, y) falls strictly inside the device's
// bounding box, which extends width and height from the centre.
func (d *Device) IsSelected(x, y float64) bool {
	return x > d.X-d.Width &&
		x < d.X+d.Width &&
		y > d.Y-d.Height &&
		y < d.Y+d.Height
}

// Interface returns the interface with the given id.
func (d *Device) Interface(id int) *Interface {
	for _, intf := range d.Interfaces {
		if intf.ID == id {
			return intf
		}
	}
	return nil
}

// InterfaceByName returns the interface with the given name.
func (d *Device) InterfaceByName(name string) *Interface {
	for _, intf := range d.Interfaces {
		if intf.Name == name {
			return intf
		}
	}
	return nil
}

// AddInterface attaches intf to the device.
func (d *Device) AddInterface(intf *Interface) {
	intf.Device = d
	d.Interfaces = append(d.Interfaces, intf)
}

// Task returns the task with the given id.
func (d *Device) Task(id int) *Task {
	for _, t := range d.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ItemName implements ToolboxItem.
func (d *Device) ItemName() string { return d.Name }

// Position implements ToolboxItem.
func (d *Device) Position() (float64, float64) { return d.X, d.Y }

// MoveTo implements ToolboxItem.
func (d *Device) MoveTo(x, y float64) { d.X, d.Y = x, y }

// SetSelected implements ToolboxItem.
func (d *Device) SetSelected(v bool) { d.Selected = v }

// Interface is a port on a device. It may be the endpoint of one link.
type Interface struct {
	ID     int
	Name   string
	Device *Device
	Link   *Link

	// DotX, DotY is where the link meets the device border; HasDot is false
	// until it has been computed.
	DotX, DotY float64
	DotD       float64
	HasDot     bool

	Selected  bool
	EditLabel bool
	Status    *bool
}

// NewInterface creates a detached interface.
func NewInterface(id int, name string) *Interface {
	return &Interface{ID: id, Name: name}
}

// IsSelected reports whether (x, y) is on the interface's link close to its
// device.
func (i *Interface) IsSelected(x, y float64) bool {
	if i.Link == nil || i.Device == nil {
		return false
	}
	d := Distance(x, y, i.Device.X, i.Device.Y)
	return i.Link.IsSelected(x, y) && d < i.DotD+30
}

// Dot recomputes the attachment point of the interface's link on the
// device border. It is a no-op without a link and device.
func (i *Interface) Dot() {
	l := i.Link
	d := i.Device
	if l == nil || d == nil || l.From == nil || l.To == nil {
		return
	}

	if d.Shape == ShapeCircular {
		theta := l.SlopeRads()
		if l.FromInterface == i {
			theta += math.Pi
		}
		i.setDot(d.X-d.Size*math.Cos(theta), d.Y-d.Size*math.Sin(theta))
		return
	}

	x3, y3 := l.To.X, l.To.Y
	x4, y4 := l.From.X, l.From.Y

	// Top, bottom, right, left.
	borders := [4][4]float64{
		{d.X - d.Width, d.Y - d.Height, d.X + d.Width, d.Y - d.Height},
		{d.X - d.Width, d.Y + d.Height, d.X + d.Width, d.Y + d.Height},
		{d.X + d.Width, d.Y - d.Height, d.X + d.Width, d.Y + d.Height},
		{d.X - d.Width, d.Y - d.Height, d.X - d.Width, d.Y + d.Height},
	}
	for _, b := range borders {
		x1, y1, x2, y2 := b[0], b[1], b[2], b[3]
		p, ok := Intersection(x3, y3, x4, y4, x1, y1, x2, y2)
		if !ok {
			continue
		}
		param1 := PCase(p.X, p.Y, x1, y1, x2, y2)
		param2 := PCase(p.X, p.Y, x3, y3, x4, y4)
		if param1 >= 0 && param1 <= 1 && param2 >= 0 && param2 <= 1 {
			i.setDot(p.X, p.Y)
			return
		}
	}
}

func (i *Interface) setDot(x, y float64) {
	i.DotX = x
	i.DotY = y
	i.HasDot = true
	i.DotD = Distance(i.Device.X, i.Device.Y, x, y)
}

// Task is a unit of automation work reported against a device.
type Task struct {
	ID      int
	Name    string
	Status  *bool
	Working *bool
}

// NewTask creates a task with unknown status.
func NewTask(id int, name string) *Task {
	return &Task{ID: id, Name: name}
}

// Process is an application placed on a device.
type Process struct {
	ID     int
	Name   string
	Type   string
	X, Y   float64
	Device *Device

	Selected bool
	Icon     bool
}

// NewProcess creates a detached process.
func NewProcess(id int, name, typ string, x, y float64) *Process {
	return &Process{ID: id, Name: name, Type: typ, X: x, Y: y}
}

// ItemName implements ToolboxItem.
func (p *Process) ItemName() string { return p.Name }

// Position implements ToolboxItem.
func (p *Process) Position() (float64, float64) { return p.X, p.Y }

// MoveTo implements ToolboxItem.
func (p *Process) MoveTo(x, y float64) { p.X, p.Y = x, y }

// SetSelected implements ToolboxItem.
func (p *Process) SetSelected(v bool) { p.Selected = v }
