package model

import (
	"math"
	"strings"
)

// Corner identifies one corner of a group's rectangle.
type Corner int

const (
	NoCorner Corner = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "TopLeft"
	case TopRight:
		return "TopRight"
	case BottomLeft:
		return "BottomLeft"
	case BottomRight:
		return "BottomRight"
	}
	return "None"
}

// Group types.
const (
	GroupTypeGroup = "group"
	GroupTypeSite  = "site"
	GroupTypeRack  = "rack"
)

// GroupBorder is the width of the band around a group's edge that selects
// it, and the size of each corner handle.
const GroupBorder = 10

// Group is a rectangle that collects the devices it contains. When used as a
// site or rack template it also carries the nested items it stamps out.
type Group struct {
	ID   int
	Name string
	Type string

	X1, Y1, X2, Y2 float64

	SelectedCorner Corner
	Selected       bool
	RemoteSelected bool
	Highlighted    bool
	EditLabel      bool
	Moving         bool
	Icon           bool

	Devices []*Device
	Links   []*Link
	Groups  []*Group
	Streams []*Stream
}

// NewGroup creates a group spanning (x1,y1)-(x2,y2).
func NewGroup(id int, name, typ string, x1, y1, x2, y2 float64) *Group {
	return &Group{ID: id, Name: name, Type: typ, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Left returns the smaller x coordinate.
func (g *Group) Left() float64 { return math.Min(g.X1, g.X2) }

// Right returns the larger x coordinate.
func (g *Group) Right() float64 { return math.Max(g.X1, g.X2) }

// Top returns the smaller y coordinate.
func (g *Group) Top() float64 { return math.Min(g.Y1, g.Y2) }

// Bottom returns the larger y coordinate.
func (g *Group) Bottom() float64 { return math.Max(g.Y1, g.Y2) }

// Width returns the horizontal extent.
func (g *Group) Width() float64 { return g.Right() - g.Left() }

// Height returns the vertical extent.
func (g *Group) Height() float64 { return g.Bottom() - g.Top() }

// CornerPoint returns the coordinates of c.
func (g *Group) CornerPoint(c Corner) Point {
	switch c {
	case TopLeft:
		return Point{g.X1, g.Y1}
	case TopRight:
		return Point{g.X2, g.Y1}
	case BottomLeft:
		return Point{g.X1, g.Y2}
	case BottomRight:
		return Point{g.X2, g.Y2}
	}
	return Point{math.NaN(), math.NaN()}
}

// HasCornerSelected reports whether (x, y) is within a corner handle.
func (g *Group) HasCornerSelected(x, y float64) bool {
	l, r, t, b := g.Left(), g.Right(), g.Top(), g.Bottom()
	handles := []Rect{
		{X: l, Y: t, W: GroupBorder, H: GroupBorder},
		{X: r - GroupBorder, Y: t, W: GroupBorder, H: GroupBorder},
		{X: l, Y: b - GroupBorder, W: GroupBorder, H: GroupBorder},
		{X: r - GroupBorder, Y: b - GroupBorder, W: GroupBorder, H: GroupBorder},
	}
	for _, h := range handles {
		if h.Contains(x, y) {
			return true
		}
	}
	return false
}

// SelectCorner returns the corner nearest to (x, y).
func (g *Group) SelectCorner(x, y float64) Corner {
	best := NoCorner
	bestD := math.Inf(1)
	for _, c := range []Corner{TopLeft, TopRight, BottomLeft, BottomRight} {
		p := g.CornerPoint(c)
		if d := Distance(x, y, p.X, p.Y); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

// IsSelected reports whether (x, y) is on the group's border band.
func (g *Group) IsSelected(x, y float64) bool {
	l, r, t, b := g.Left(), g.Right(), g.Top(), g.Bottom()
	outer := Rect{X: l - GroupBorder, Y: t - GroupBorder, W: r - l + 2*GroupBorder, H: b - t + 2*GroupBorder}
	if !outer.Contains(x, y) {
		return false
	}
	return x < l+GroupBorder || x > r-GroupBorder || y < t+GroupBorder || y > b-GroupBorder
}

// IsHighlighted reports whether (x, y) is inside the group.
func (g *Group) IsHighlighted(x, y float64) bool {
	return x > g.Left() && x < g.Right() && y > g.Top() && y < g.Bottom()
}

// UpdateHighlighted sets Highlighted from the pointer position.
func (g *Group) UpdateHighlighted(x, y float64) {
	g.Highlighted = g.IsHighlighted(x, y)
}

// Contains reports whether the device's centre is strictly inside the group.
func (g *Group) Contains(d *Device) bool {
	return d.X > g.Left() && d.X < g.Right() && d.Y > g.Top() && d.Y < g.Bottom()
}

// UpdateMembership recomputes Devices from the candidates' positions. It
// returns the devices that left, the devices that joined and the ids of
// every member after the update.
func (g *Group) UpdateMembership(devices []*Device) (removed, added []*Device, members []int) {
	old := make(map[int]bool, len(g.Devices))
	for _, d := range g.Devices {
		old[d.ID] = true
	}

	var next []*Device
	now := make(map[int]bool)
	for _, d := range devices {
		if g.Contains(d) {
			next = append(next, d)
			now[d.ID] = true
			members = append(members, d.ID)
			if !old[d.ID] {
				added = append(added, d)
			}
		}
	}
	for _, d := range g.Devices {
		if !now[d.ID] {
			removed = append(removed, d)
		}
	}
	g.Devices = next
	return removed, added, members
}

// Translate moves both corners by (dx, dy).
func (g *Group) Translate(dx, dy float64) {
	g.X1 += dx
	g.Y1 += dy
	g.X2 += dx
	g.Y2 += dy
}

// MoveCorner moves the selected corner by (dx, dy).
func (g *Group) MoveCorner(c Corner, dx, dy float64) {
	switch c {
	case TopLeft:
		g.X1 += dx
		g.Y1 += dy
	case TopRight:
		g.X2 += dx
		g.Y1 += dy
	case BottomLeft:
		g.X1 += dx
		g.Y2 += dy
	case BottomRight:
		g.X2 += dx
		g.Y2 += dy
	}
}

// ItemName implements ToolboxItem.
func (g *Group) ItemName() string { return g.Name }

// Position implements ToolboxItem.
func (g *Group) Position() (float64, float64) { return g.X1, g.Y1 }

// MoveTo implements ToolboxItem, translating the group so its first corner
// is at (x, y). The devices and groups of a template move with it.
func (g *Group) MoveTo(x, y float64) {
	dx, dy := x-g.X1, y-g.Y1
	g.Translate(dx, dy)
	for _, d := range g.Devices {
		d.X += dx
		d.Y += dy
	}
	for _, inner := range g.Groups {
		inner.Translate(dx, dy)
	}
}

// SetSelected implements ToolboxItem.
func (g *Group) SetSelected(v bool) { g.Selected = v }

// TitleCase upper-cases the first letter of each space separated word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
