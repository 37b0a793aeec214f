package model

import "math"

// LinkTolerance is how far from a link's segment a point still selects it.
const LinkTolerance = 10

// Link connects an interface on one device to an interface on another.
type Link struct {
	ID            int
	Name          string
	From, To      *Device
	FromInterface *Interface
	ToInterface   *Interface

	Selected       bool
	RemoteSelected bool
	EditLabel      bool
	Status         *bool
}

// NewLink creates a link between the given endpoints.
func NewLink(id int, from, to *Device, fromIntf, toIntf *Interface) *Link {
	return &Link{ID: id, From: from, To: to, FromInterface: fromIntf, ToInterface: toIntf}
}

// IsSelected reports whether (x, y) is within LinkTolerance of the segment
// between the two devices. The side of the link the point is on is computed
// but does not change the tolerance.
func (l *Link) IsSelected(x, y float64) bool {
	if l.From == nil || l.To == nil {
		return false
	}
	d := PDistance(x, y, l.From.X, l.From.Y, l.To.X, l.To.Y)
	if CrossZPos(x, y, l.From.X, l.From.Y, l.To.X, l.To.Y) {
		return d < LinkTolerance
	}
	return d < LinkTolerance
}

// SlopeRads returns the direction from the from device to the to device.
func (l *Link) SlopeRads() float64 {
	return math.Atan2(l.To.Y-l.From.Y, l.To.X-l.From.X)
}

// Slope returns the link direction in degrees, shifted into [0, 360].
func (l *Link) Slope() float64 {
	return l.SlopeRads()*180/math.Pi + 180
}

// Length returns the distance between the two devices.
func (l *Link) Length() float64 {
	return Distance(l.From.X, l.From.Y, l.To.X, l.To.Y)
}

// PLength returns the distance from (x, y) to the link segment.
func (l *Link) PLength(x, y float64) float64 {
	return PDistance(x, y, l.From.X, l.From.Y, l.To.X, l.To.Y)
}

// PDistanceLine returns the distance from (x, y) to the link's infinite line.
func (l *Link) PDistanceLine(x, y float64) float64 {
	return PDistanceLine(x, y, l.From.X, l.From.Y, l.To.X, l.To.Y)
}

// Touches reports whether d is either endpoint of the link.
func (l *Link) Touches(d *Device) bool {
	return l.From == d || l.To == d
}

// Stream is a logical flow drawn between two devices.
type Stream struct {
	ID       int
	From, To *Device
	Label    string
	Offset   int

	Selected       bool
	RemoteSelected bool
	EditLabel      bool
}

// NewStream creates a stream between two devices.
func NewStream(id int, from, to *Device, label string) *Stream {
	return &Stream{ID: id, From: from, To: to, Label: label}
}
