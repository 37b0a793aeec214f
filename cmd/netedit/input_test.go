package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/netui/pkg/editor"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name     string
		ev       *tcell.EventKey
		wantKey  string
		wantCode int
		wantMod  editor.Mod
	}{
		{"letter", tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), "r", 'R', 0},
		{"shifted letter", tcell.NewEventKey(tcell.KeyRune, 'R', tcell.ModShift), "R", 'R', editor.ModShift},
		{"digit", tcell.NewEventKey(tcell.KeyRune, '0', tcell.ModNone), "0", '0', 0},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), " ", editor.KeySpace, 0},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "Enter", editor.KeyEnter, 0},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "Escape", editor.KeyEscape, 0},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), "Backspace", editor.KeyBackspace, 0},
		{"delete", tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone), "Delete", editor.KeyDelete, 0},
		{"ctrl z", tcell.NewEventKey(tcell.KeyCtrlZ, 0, tcell.ModCtrl), "z", 'Z', editor.ModCtrl},
		{"meta z", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModMeta), "z", 'Z', editor.ModMeta},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, code, mod, ok := translateKey(tt.ev)
			if !ok {
				t.Fatal("key not translated")
			}
			if key != tt.wantKey || code != tt.wantCode || mod != tt.wantMod {
				t.Errorf("got (%q, %d, %v), want (%q, %d, %v)", key, code, mod, tt.wantKey, tt.wantCode, tt.wantMod)
			}
		})
	}
}

func TestTranslateKeyIgnoresFunctionKeys(t *testing.T) {
	if _, _, _, ok := translateKey(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone)); ok {
		t.Error("F5 translated")
	}
}

func kinds(evs []editor.Event) []editor.Kind {
	out := make([]editor.Kind, len(evs))
	for i, e := range evs {
		out[i] = e.Kind
	}
	return out
}

func TestMouseTracker(t *testing.T) {
	var m mouseTracker
	steps := []struct {
		name    string
		x, y    int
		buttons tcell.ButtonMask
		want    []editor.Kind
	}{
		{"move", 3, 2, tcell.ButtonNone, []editor.Kind{editor.MouseMove}},
		{"press", 3, 2, tcell.Button1, []editor.Kind{editor.MouseDown}},
		{"drag", 5, 2, tcell.Button1, []editor.Kind{editor.MouseMove}},
		{"hold still", 5, 2, tcell.Button1, nil},
		{"release", 5, 2, tcell.ButtonNone, []editor.Kind{editor.MouseUp}},
		{"wheel", 5, 2, tcell.WheelUp, []editor.Kind{editor.MouseWheel}},
	}
	for _, st := range steps {
		got := kinds(m.translate(tcell.NewEventMouse(st.x, st.y, st.buttons, tcell.ModNone)))
		if len(got) != len(st.want) {
			t.Fatalf("%s: got %v, want %v", st.name, got, st.want)
		}
		for i := range got {
			if got[i] != st.want[i] {
				t.Errorf("%s: got %v, want %v", st.name, got, st.want)
			}
		}
	}
}

func TestMouseTrackerCanvasPosition(t *testing.T) {
	var m mouseTracker
	evs := m.translate(tcell.NewEventMouse(10, 4, tcell.Button1, tcell.ModNone))
	down := evs[len(evs)-1]
	if down.Kind != editor.MouseDown {
		t.Fatalf("got %v, want MouseDown", down.Kind)
	}
	if down.X != 10*cellW+cellW/2 || down.Y != 4*cellH+cellH/2 {
		t.Errorf("got (%v, %v), want centre of cell (10, 4)", down.X, down.Y)
	}
}

func TestWheelDirection(t *testing.T) {
	var m mouseTracker
	up := m.translate(tcell.NewEventMouse(0, 0, tcell.WheelUp, tcell.ModNone))[0]
	down := m.translate(tcell.NewEventMouse(0, 0, tcell.WheelDown, tcell.ModNone))[0]
	if up.Delta <= 0 || down.Delta >= 0 {
		t.Errorf("got up %v down %v, want up zooming in", up.Delta, down.Delta)
	}
}

func TestToCellRoundTrip(t *testing.T) {
	tests := []struct{ col, row int }{{0, 0}, {7, 3}, {120, 40}}
	for _, tt := range tests {
		x, y := toCanvas(tt.col, tt.row)
		col, row := toCell(x, y)
		if col != tt.col || row != tt.row {
			t.Errorf("(%d, %d): got (%d, %d)", tt.col, tt.row, col, row)
		}
	}
	if col, row := toCell(-1, -17); col != -1 || row != -2 {
		t.Errorf("negative: got (%d, %d), want (-1, -2)", col, row)
	}
}

func TestTopologyURL(t *testing.T) {
	got := topologyURL("ws://localhost:8013/network_ui/topology", 4)
	want := "ws://localhost:8013/network_ui/topology?topology_id=4"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLine(t *testing.T) {
	var cells [][2]int
	line(0, 0, 3, 1, func(x, y int) { cells = append(cells, [2]int{x, y}) })
	if len(cells) != 4 {
		t.Fatalf("got %v, want 4 cells", cells)
	}
	if cells[0] != [2]int{0, 0} || cells[3] != [2]int{3, 1} {
		t.Errorf("endpoints: got %v", cells)
	}
}
