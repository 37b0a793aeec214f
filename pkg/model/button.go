package model

// Button is a clickable region of the canvas chrome.
type Button struct {
	Name          string
	X, Y          float64
	Width, Height float64
	Callback      func()

	Pressed   bool
	MouseOver bool
}

// NewButton creates a button.
func NewButton(name string, x, y, width, height float64, callback func()) *Button {
	return &Button{Name: name, X: x, Y: y, Width: width, Height: height, Callback: callback}
}

// IsSelected reports strict containment of (x, y).
func (b *Button) IsSelected(x, y float64) bool {
	return Rect{X: b.X, Y: b.Y, W: b.Width, H: b.Height}.Contains(x, y)
}

// Click runs the callback.
func (b *Button) Click() {
	if b.Callback != nil {
		b.Callback()
	}
}

// ToggleButton is a button with on and off actions.
type ToggleButton struct {
	Button
	Toggled bool
	On, Off func()
}

// NewToggleButton creates a toggle button in the off position.
func NewToggleButton(name string, x, y, width, height float64, on, off func()) *ToggleButton {
	t := &ToggleButton{Button: Button{Name: name, X: x, Y: y, Width: width, Height: height}, On: on, Off: off}
	t.Callback = t.Toggle
	return t
}

// Toggle flips the state and runs the matching action.
func (t *ToggleButton) Toggle() {
	t.Toggled = !t.Toggled
	if t.Toggled {
		if t.On != nil {
			t.On()
		}
		return
	}
	if t.Off != nil {
		t.Off()
	}
}
