package main

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/netui/pkg/editor"
)

// Terminal cells are mapped to canvas pixels at this size.
const (
	cellW = 8
	cellH = 16
)

// wheelStep is the zoom delta of one wheel notch.
const wheelStep = 10

// toCanvas converts a cell position to the pixel at its centre.
func toCanvas(col, row int) (float64, float64) {
	return float64(col*cellW + cellW/2), float64(row*cellH + cellH/2)
}

// toCell converts a canvas pixel to the cell containing it.
func toCell(x, y float64) (int, int) {
	return floorDiv(x, cellW), floorDiv(y, cellH)
}

func floorDiv(v float64, d int) int {
	q := int(v) / d
	if v < 0 && int(v)%d != 0 {
		q--
	}
	return q
}

func translateMod(m tcell.ModMask) editor.Mod {
	var out editor.Mod
	if m&tcell.ModShift != 0 {
		out |= editor.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= editor.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= editor.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= editor.ModMeta
	}
	return out
}

var namedKeys = map[tcell.Key]struct {
	name string
	code int
}{
	tcell.KeyEnter:      {"Enter", editor.KeyEnter},
	tcell.KeyEscape:     {"Escape", editor.KeyEscape},
	tcell.KeyBackspace:  {"Backspace", editor.KeyBackspace},
	tcell.KeyBackspace2: {"Backspace", editor.KeyBackspace},
	tcell.KeyDelete:     {"Delete", editor.KeyDelete},
	tcell.KeyTab:        {"Tab", 9},
	tcell.KeyLeft:       {"ArrowLeft", 37},
	tcell.KeyUp:         {"ArrowUp", 38},
	tcell.KeyRight:      {"ArrowRight", 39},
	tcell.KeyDown:       {"ArrowDown", 40},
}

// translateKey maps a terminal key press to the key name, key code and
// modifiers the editor reads. Control chords come back as the lower case
// letter with ModCtrl set.
func translateKey(ev *tcell.EventKey) (key string, code int, mod editor.Mod, ok bool) {
	mod = translateMod(ev.Modifiers())
	if k, found := namedKeys[ev.Key()]; found {
		return k.name, k.code, mod &^ editor.ModCtrl, true
	}
	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			return " ", editor.KeySpace, mod, true
		}
		return string(r), int(unicode.ToUpper(r)), mod, true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		r := rune('a' + (k - tcell.KeyCtrlA))
		return string(r), int(unicode.ToUpper(r)), mod | editor.ModCtrl, true
	}
	return "", 0, 0, false
}

// mouseTracker turns tcell's button state snapshots into down, up, move
// and wheel events.
type mouseTracker struct {
	buttons  tcell.ButtonMask
	col, row int
}

func (t *mouseTracker) translate(ev *tcell.EventMouse) []editor.Event {
	col, row := ev.Position()
	x, y := toCanvas(col, row)
	mod := translateMod(ev.Modifiers())
	buttons := ev.Buttons()

	var out []editor.Event
	switch {
	case buttons&tcell.WheelUp != 0:
		return append(out, editor.Event{Kind: editor.MouseWheel, X: x, Y: y, Delta: wheelStep, DeltaY: -wheelStep, Mod: mod})
	case buttons&tcell.WheelDown != 0:
		return append(out, editor.Event{Kind: editor.MouseWheel, X: x, Y: y, Delta: -wheelStep, DeltaY: wheelStep, Mod: mod})
	}

	moved := col != t.col || row != t.row
	if moved {
		out = append(out, editor.Event{Kind: editor.MouseMove, X: x, Y: y, Mod: mod})
	}
	was, is := t.buttons&tcell.Button1 != 0, buttons&tcell.Button1 != 0
	switch {
	case is && !was:
		out = append(out, editor.Event{Kind: editor.MouseDown, X: x, Y: y, Mod: mod})
	case was && !is:
		out = append(out, editor.Event{Kind: editor.MouseUp, X: x, Y: y, Mod: mod})
	}
	t.buttons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	t.col, t.row = col, row
	return out
}
