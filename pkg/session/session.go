// Package session holds the state of one editing session: the topology, the
// selection, the viewport and the message flow to and from the relay.
// Every mutation goes through a Session method so the invariants between
// devices, interfaces and links hold after each call.
//
// A Session is not safe for concurrent use; the editor serialises access.
package session

import (
	"context"
	"errors"

	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

// ErrNotUndoable is returned for messages without an inverse.
var ErrNotUndoable = errors.New("message is not undoable")

// Default canvas size used until the front-end reports one.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
)

// Toolbox geometry.
const (
	ToolboxX      = 0
	ToolboxY      = 40
	ToolboxWidth  = 200
	ProcessHeight = 150
)

// Options configures a new session.
type Options struct {
	Width, Height float64
	UndoLimit     int
	Logger        logging.Logger
}

// Session is the editor's view of one topology.
type Session struct {
	clientID   int
	TopologyID int
	Name       string

	Devices []*model.Device
	Links   []*model.Link
	Groups  []*model.Group
	Streams []*model.Stream

	SelectedDevices    []*model.Device
	SelectedLinks      []*model.Link
	SelectedInterfaces []*model.Interface
	SelectedGroups     []*model.Group
	SelectedStreams    []*model.Stream
	SelectedItems      []model.ToolboxItem
	DetailDevice       *model.Device

	MouseX, MouseY                 float64
	ScaledX, ScaledY               float64
	PressedX, PressedY             float64
	PressedScaledX, PressedScaledY float64
	LastKey                        string
	LastKeyCode                    int

	PanX, PanY float64
	Scale      float64
	ViewPort   model.Rect
	Width      float64
	Height     float64

	HideLinks      bool
	HideInterfaces bool
	HideGroups     bool
	HideButtons    bool
	Recording      bool
	Replay         bool
	Debug          bool
	Disconnected   bool
	Frame          int64

	InventoryToolbox *model.Toolbox
	SiteToolbox      *model.Toolbox
	RackToolbox      *model.Toolbox
	AppToolbox       *model.Toolbox

	// ServerHistory is the message log the relay sent on join.
	ServerHistory []messages.Frame
	// Trace collects every message sent while recording.
	Trace   []messages.Frame
	TraceID int

	History *History

	DeviceSeq  *model.Seq
	LinkSeq    *model.Seq
	GroupSeq   *model.Seq
	StreamSeq  *model.Seq
	MessageSeq *model.Seq
	TraceSeq   *model.Seq

	transport Transport
	initial   []messages.Message
	resync    []messages.Message
	log       logging.Logger
	ctx       context.Context
}

// New creates an empty session.
func New(opts Options) *Session {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	s := &Session{
		Scale:      1,
		Width:      opts.Width,
		Height:     opts.Height,
		History:    NewHistory(opts.UndoLimit),
		DeviceSeq:  model.NaturalNumbers(0),
		LinkSeq:    model.NaturalNumbers(0),
		GroupSeq:   model.NaturalNumbers(0),
		StreamSeq:  model.NaturalNumbers(0),
		MessageSeq: model.NaturalNumbers(0),
		TraceSeq:   model.NaturalNumbers(0),
		log:        opts.Logger,
		ctx:        context.Background(),
	}
	s.buildToolboxes()
	s.UpdateScaledXY()
	return s
}

func (s *Session) buildToolboxes() {
	h := s.Height - ToolboxY
	s.InventoryToolbox = model.NewToolbox(1, "Inventory", "device", ToolboxX, ToolboxY, ToolboxWidth, h, 150)
	s.InventoryToolbox.Enabled = true
	s.InventoryToolbox.RemoveOnDrop = true

	s.AppToolbox = model.NewToolbox(2, "Applications", "process", ToolboxX, ToolboxY, ToolboxWidth, h, ProcessHeight)
	for i, name := range []string{"BGP", "OSPF", "STP", "Zero Pipeline"} {
		typ := "process"
		if name == "Zero Pipeline" {
			typ = "pipeline"
		}
		s.AppToolbox.Add(model.NewProcess(i+1, name, typ, 0, 0))
	}

	s.RackToolbox = model.NewToolbox(3, "Rack", "rack", ToolboxX, ToolboxY, ToolboxWidth, h, 200)
	s.SiteToolbox = model.NewToolbox(4, "Site", "site", ToolboxX, ToolboxY, ToolboxWidth, h, 200)
}

// Toolboxes returns the four toolboxes in drawing order.
func (s *Session) Toolboxes() []*model.Toolbox {
	return []*model.Toolbox{s.SiteToolbox, s.RackToolbox, s.InventoryToolbox, s.AppToolbox}
}

// Resize updates the canvas size and the toolboxes that span it.
func (s *Session) Resize(width, height float64) {
	s.Width = width
	s.Height = height
	for _, tb := range s.Toolboxes() {
		tb.Height = height - ToolboxY
	}
	s.UpdateScaledXY()
}

// SetContext sets the context used for logging from handlers.
func (s *Session) SetContext(ctx context.Context) {
	if ctx != nil {
		s.ctx = ctx
	}
}

// Logger returns the session logger.
func (s *Session) Logger() logging.Logger { return s.log }

// ClientID returns the id the relay assigned, or 0 before it arrives.
func (s *Session) ClientID() int { return s.clientID }

// Pending returns the number of messages waiting for a client id.
func (s *Session) Pending() int { return len(s.initial) }

// UpdateScaledXY recomputes the pointer in canvas coordinates and the
// visible canvas rectangle.
func (s *Session) UpdateScaledXY() {
	s.ScaledX = (s.MouseX - s.PanX) / s.Scale
	s.ScaledY = (s.MouseY - s.PanY) / s.Scale
	s.ViewPort = model.Rect{
		X: -s.PanX / s.Scale,
		Y: -s.PanY / s.Scale,
		W: s.Width / s.Scale,
		H: s.Height / s.Scale,
	}
}

// SetMouse records a pointer position in screen coordinates.
func (s *Session) SetMouse(x, y float64) {
	s.MouseX = x
	s.MouseY = y
	s.UpdateScaledXY()
}

// Press records the current pointer as the drag origin.
func (s *Session) Press() {
	s.PressedX = s.MouseX
	s.PressedY = s.MouseY
	s.PressedScaledX = s.ScaledX
	s.PressedScaledY = s.ScaledY
}

// Device returns the device with the given id.
func (s *Session) Device(id int) *model.Device {
	for _, d := range s.Devices {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// DeviceByName returns the first device with the given name.
func (s *Session) DeviceByName(name string) *model.Device {
	for _, d := range s.Devices {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// DeviceInterface returns the named interface of the named device.
func (s *Session) DeviceInterface(device, intf string) *model.Interface {
	d := s.DeviceByName(device)
	if d == nil {
		return nil
	}
	return d.InterfaceByName(intf)
}

// Link returns the link with the given id.
func (s *Session) Link(id int) *model.Link {
	for _, l := range s.Links {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Group returns the group with the given id.
func (s *Session) Group(id int) *model.Group {
	for _, g := range s.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Stream returns the stream with the given id.
func (s *Session) Stream(id int) *model.Stream {
	for _, st := range s.Streams {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// DeviceAt returns the topmost device under the scaled pointer.
func (s *Session) DeviceAt(x, y float64) *model.Device {
	for i := len(s.Devices) - 1; i >= 0; i-- {
		if s.Devices[i].IsSelected(x, y) {
			return s.Devices[i]
		}
	}
	return nil
}
