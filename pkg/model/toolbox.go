package model

import "math"

// ToolboxItem is anything that can sit in a toolbox and be dragged onto the
// canvas.
type ToolboxItem interface {
	ItemName() string
	Position() (x, y float64)
	MoveTo(x, y float64)
	SetSelected(bool)
}

// Toolbox is a scrollable drag-source palette on the left of the canvas.
type Toolbox struct {
	ID     int
	Name   string
	Type   string
	X, Y   float64
	Width  float64
	Height float64

	Items        []ToolboxItem
	Spacing      float64
	ScrollOffset float64
	SelectedItem ToolboxItem
	Enabled      bool
	Collapsed    bool
	RemoveOnDrop bool

	TitleX, TitleY float64
}

// NewToolbox creates an empty toolbox.
func NewToolbox(id int, name, typ string, x, y, width, height, spacing float64) *Toolbox {
	return &Toolbox{
		ID:      id,
		Name:    name,
		Type:    typ,
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		Spacing: spacing,
		TitleX:  x + 10,
		TitleY:  y + 20,
	}
}

// Contains reports whether (x, y) is strictly inside the toolbox.
func (t *Toolbox) Contains(x, y float64) bool {
	return Rect{X: t.X, Y: t.Y, W: t.Width, H: t.Height}.Contains(x, y)
}

// Active reports whether the toolbox takes pointer input: enabled by the
// current mode and not collapsed by the user.
func (t *Toolbox) Active() bool {
	return t.Enabled && !t.Collapsed
}

// IndexAt returns the item index under screen y, which may be out of range.
func (t *Toolbox) IndexAt(y float64) int {
	return int(math.Floor((y - t.Y - t.ScrollOffset) / t.Spacing))
}

// ItemAt returns the item under screen y, or nil.
func (t *Toolbox) ItemAt(y float64) (ToolboxItem, int) {
	i := t.IndexAt(y)
	if i < 0 || i >= len(t.Items) {
		return nil, -1
	}
	return t.Items[i], i
}

// Scroll adjusts the offset by delta, keeping the list within view.
func (t *Toolbox) Scroll(delta float64) {
	t.ScrollOffset += delta
	low := -(t.Spacing*float64(len(t.Items)) - t.Height)
	if low > 0 {
		low = 0
	}
	if t.ScrollOffset < low {
		t.ScrollOffset = low
	}
	if t.ScrollOffset > 0 {
		t.ScrollOffset = 0
	}
}

// Remove drops item from the toolbox.
func (t *Toolbox) Remove(item ToolboxItem) bool {
	for i, it := range t.Items {
		if it == item {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Add appends an item.
func (t *Toolbox) Add(item ToolboxItem) {
	t.Items = append(t.Items, item)
}
