package model

import (
	"math"
	"testing"
)

func linked(fromType, toType string) (*Device, *Device, *Link) {
	a := NewDevice(1, "a", 0, 0, fromType)
	b := NewDevice(2, "b", 200, 0, toType)
	ia := NewInterface(1, "eth0")
	ib := NewInterface(1, "eth0")
	a.AddInterface(ia)
	b.AddInterface(ib)
	l := NewLink(1, a, b, ia, ib)
	ia.Link = l
	ib.Link = l
	ia.Dot()
	ib.Dot()
	return a, b, l
}

func TestDeviceGeometryByType(t *testing.T) {
	tests := []struct {
		typ    string
		height float64
		shape  Shape
	}{
		{"host", HostDeviceHeight, ShapeRectangular},
		{"router", DeviceHeight, ShapeCircular},
		{"switch", DeviceHeight, ShapeRectangular},
		{"rack", DeviceHeight, ShapeRectangular},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			d := NewDevice(1, "d", 0, 0, tt.typ)
			if d.Height != tt.height {
				t.Errorf("height: got %v, want %v", d.Height, tt.height)
			}
			if d.Shape != tt.shape {
				t.Errorf("shape: got %v, want %v", d.Shape, tt.shape)
			}
		})
	}
}

func TestDeviceIsSelected(t *testing.T) {
	sw := NewDevice(1, "sw", 100, 100, "switch")
	host := NewDevice(2, "h", 100, 100, "host")

	tests := []struct {
		name string
		d    *Device
		x, y float64
		want bool
	}{
		{"centre", sw, 100, 100, true},
		{"inside edge", sw, 149, 149, true},
		{"on edge", sw, 150, 100, false},
		{"outside", sw, 200, 100, false},
		{"host short", host, 100, 120, false},
		{"host inside", host, 140, 110, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.IsSelected(tt.x, tt.y); got != tt.want {
				t.Errorf("IsSelected(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRectangularDot(t *testing.T) {
	a, b, _ := linked("switch", "switch")
	ia, ib := a.Interfaces[0], b.Interfaces[0]

	if !ia.HasDot || !ib.HasDot {
		t.Fatal("expected dots to be computed")
	}
	if math.Abs(ia.DotX-50) > 1e-9 || math.Abs(ia.DotY) > 1e-9 {
		t.Errorf("from dot: got (%v, %v), want (50, 0)", ia.DotX, ia.DotY)
	}
	if math.Abs(ib.DotX-150) > 1e-9 || math.Abs(ib.DotY) > 1e-9 {
		t.Errorf("to dot: got (%v, %v), want (150, 0)", ib.DotX, ib.DotY)
	}
	if math.Abs(ia.DotD-50) > 1e-9 {
		t.Errorf("dot distance: got %v, want 50", ia.DotD)
	}
}

func TestRectangularDotDiagonal(t *testing.T) {
	a := NewDevice(1, "a", 0, 0, "switch")
	b := NewDevice(2, "b", 100, 300, "switch")
	ia, ib := NewInterface(1, "a"), NewInterface(1, "b")
	a.AddInterface(ia)
	b.AddInterface(ib)
	l := NewLink(1, a, b, ia, ib)
	ia.Link, ib.Link = l, l
	ia.Dot()

	// The link leaves a through its bottom border at y=50.
	if math.Abs(ia.DotY-50) > 1e-9 {
		t.Errorf("DotY: got %v, want 50", ia.DotY)
	}
	if math.Abs(ia.DotX-50.0/3) > 1e-9 {
		t.Errorf("DotX: got %v, want %v", ia.DotX, 50.0/3)
	}
}

func TestCircularDot(t *testing.T) {
	a, b, _ := linked("router", "router")
	ia, ib := a.Interfaces[0], b.Interfaces[0]

	if math.Abs(ia.DotX-50) > 1e-9 || math.Abs(ia.DotY) > 1e-9 {
		t.Errorf("from dot: got (%v, %v), want (50, 0)", ia.DotX, ia.DotY)
	}
	if math.Abs(ib.DotX-150) > 1e-9 || math.Abs(ib.DotY) > 1e-9 {
		t.Errorf("to dot: got (%v, %v), want (150, 0)", ib.DotX, ib.DotY)
	}
}

func TestDotWithoutLinkIsNoop(t *testing.T) {
	d := NewDevice(1, "a", 0, 0, "switch")
	i := NewInterface(1, "eth0")
	d.AddInterface(i)
	i.Dot()
	if i.HasDot {
		t.Error("dot computed for an unlinked interface")
	}
}

func TestLinkIsSelected(t *testing.T) {
	_, _, l := linked("switch", "switch")

	tests := []struct {
		x, y float64
		want bool
	}{
		{100, 0, true},
		{100, 9, true},
		{100, -9, true},
		{100, 10, false},
		{100, -15, false},
		{205, 0, true},
		{215, 0, false},
	}
	for _, tt := range tests {
		if got := l.IsSelected(tt.x, tt.y); got != tt.want {
			t.Errorf("IsSelected(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestLinkMeasures(t *testing.T) {
	_, _, l := linked("switch", "switch")
	if got := l.Length(); got != 200 {
		t.Errorf("Length: got %v, want 200", got)
	}
	if got := l.Slope(); got != 180 {
		t.Errorf("Slope: got %v, want 180", got)
	}
	if got := l.PDistanceLine(500, 30); math.Abs(got-30) > 1e-9 {
		t.Errorf("PDistanceLine: got %v, want 30", got)
	}
	if got := l.PLength(500, 0); got != 300 {
		t.Errorf("PLength: got %v, want 300", got)
	}
}

func TestInterfaceIsSelected(t *testing.T) {
	a, _, _ := linked("switch", "switch")
	ia := a.Interfaces[0]
	if !ia.IsSelected(60, 0) {
		t.Error("expected hit near the from device")
	}
	if ia.IsSelected(100, 0) {
		t.Error("expected miss at the middle of the link")
	}
	if ia.IsSelected(60, 20) {
		t.Error("expected miss away from the link")
	}
}

func TestGroupCorners(t *testing.T) {
	g := NewGroup(1, "g", GroupTypeGroup, 0, 0, 10, 10)
	if !g.HasCornerSelected(9, 9) {
		t.Fatal("expected a corner hit at (9, 9)")
	}
	if got := g.SelectCorner(9, 9); got != BottomRight {
		t.Errorf("SelectCorner: got %v, want %v", got, BottomRight)
	}

	big := NewGroup(2, "big", GroupTypeGroup, 0, 0, 100, 100)
	tests := []struct {
		x, y float64
		want Corner
	}{
		{1, 1, TopLeft},
		{99, 1, TopRight},
		{1, 99, BottomLeft},
		{99, 99, BottomRight},
	}
	for _, tt := range tests {
		if !big.HasCornerSelected(tt.x, tt.y) {
			t.Errorf("HasCornerSelected(%v, %v) = false", tt.x, tt.y)
		}
		if got := big.SelectCorner(tt.x, tt.y); got != tt.want {
			t.Errorf("SelectCorner(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if big.HasCornerSelected(50, 50) {
		t.Error("unexpected corner hit in the middle")
	}
}

func TestGroupIsSelected(t *testing.T) {
	g := NewGroup(1, "g", GroupTypeGroup, 0, 0, 100, 100)
	tests := []struct {
		x, y float64
		want bool
	}{
		{5, 50, true},
		{-5, 50, true},
		{95, 50, true},
		{50, 105, true},
		{50, 50, false},
		{-20, 50, false},
	}
	for _, tt := range tests {
		if got := g.IsSelected(tt.x, tt.y); got != tt.want {
			t.Errorf("IsSelected(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestGroupExtentsSwappedCorners(t *testing.T) {
	g := NewGroup(1, "g", GroupTypeGroup, 100, 80, 10, 20)
	if g.Left() != 10 || g.Right() != 100 || g.Top() != 20 || g.Bottom() != 80 {
		t.Errorf("extents: got %v %v %v %v", g.Left(), g.Top(), g.Right(), g.Bottom())
	}
	if g.Width() != 90 || g.Height() != 60 {
		t.Errorf("size: got %vx%v, want 90x60", g.Width(), g.Height())
	}
}

func TestGroupMembershipIdempotent(t *testing.T) {
	g := NewGroup(1, "g", GroupTypeGroup, 0, 0, 100, 100)
	devices := []*Device{
		NewDevice(1, "in", 50, 50, "switch"),
		NewDevice(2, "out", 150, 50, "switch"),
		NewDevice(3, "edge", 100, 50, "switch"),
	}

	removed, added, members := g.UpdateMembership(devices)
	if len(removed) != 0 || len(added) != 1 || len(members) != 1 || members[0] != 1 {
		t.Fatalf("first update: removed=%d added=%d members=%v", len(removed), len(added), members)
	}

	removed, added, _ = g.UpdateMembership(devices)
	if len(removed) != 0 || len(added) != 0 {
		t.Errorf("second update: got removed=%d added=%d, want no delta", len(removed), len(added))
	}

	devices[0].X = 500
	removed, added, members = g.UpdateMembership(devices)
	if len(removed) != 1 || removed[0].ID != 1 || len(added) != 0 || len(members) != 0 {
		t.Errorf("after move: removed=%v added=%v members=%v", removed, added, members)
	}
}

func TestGroupMoveCorner(t *testing.T) {
	g := NewGroup(1, "g", GroupTypeGroup, 0, 0, 10, 10)
	g.MoveCorner(BottomRight, 5, 5)
	if g.X1 != 0 || g.Y1 != 0 || g.X2 != 15 || g.Y2 != 15 {
		t.Errorf("got (%v,%v)-(%v,%v), want (0,0)-(15,15)", g.X1, g.Y1, g.X2, g.Y2)
	}
	g.MoveTo(100, 100)
	if g.X1 != 100 || g.X2 != 115 {
		t.Errorf("MoveTo: got x1=%v x2=%v", g.X1, g.X2)
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("site 12"); got != "Site 12" {
		t.Errorf("got %q, want %q", got, "Site 12")
	}
}

func TestToolboxItemAtAndScroll(t *testing.T) {
	tb := NewToolbox(1, "Inventory", "device", 0, 40, 200, 400, 150)
	for i := 0; i < 5; i++ {
		tb.Add(NewDevice(i+1, "d", 0, 0, "host"))
	}

	if _, i := tb.ItemAt(40 + 160); i != 1 {
		t.Errorf("ItemAt: got index %d, want 1", i)
	}
	if item, i := tb.ItemAt(40 + 150*5 + 1); item != nil || i != -1 {
		t.Errorf("ItemAt past end: got %v, %d", item, i)
	}

	tb.Scroll(-1000)
	if want := -(150.0*5 - 400); tb.ScrollOffset != want {
		t.Errorf("scroll low clamp: got %v, want %v", tb.ScrollOffset, want)
	}
	tb.Scroll(5000)
	if tb.ScrollOffset != 0 {
		t.Errorf("scroll high clamp: got %v, want 0", tb.ScrollOffset)
	}

	item := tb.Items[2]
	if !tb.Remove(item) || len(tb.Items) != 4 {
		t.Errorf("Remove: got %d items, want 4", len(tb.Items))
	}
}

func TestButtons(t *testing.T) {
	clicks := 0
	b := NewButton("DEPLOY", 210, 48, 70, 30, func() { clicks++ })
	if !b.IsSelected(220, 60) || b.IsSelected(210, 60) {
		t.Error("unexpected hit test result")
	}
	b.Click()
	if clicks != 1 {
		t.Errorf("clicks: got %d, want 1", clicks)
	}

	on, off := 0, 0
	tb := NewToggleButton("RECORD", 380, 48, 80, 30, func() { on++ }, func() { off++ })
	tb.Click()
	tb.Click()
	tb.Click()
	if on != 2 || off != 1 || !tb.Toggled {
		t.Errorf("toggle: on=%d off=%d toggled=%v", on, off, tb.Toggled)
	}
}

func TestSeq(t *testing.T) {
	s := NaturalNumbers(0)
	if s.Next() != 1 || s.Next() != 2 {
		t.Fatal("unexpected sequence start")
	}
	s.Observe(7)
	if got := s.Next(); got != 8 {
		t.Errorf("after Observe(7): got %d, want 8", got)
	}
	s.Observe(3)
	if got := s.Next(); got != 9 {
		t.Errorf("after Observe(3): got %d, want 9", got)
	}
}
