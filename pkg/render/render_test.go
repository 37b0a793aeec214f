package render

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/ha1tch/netui/pkg/messages"
)

func sample() *messages.Snapshot {
	return &messages.Snapshot{
		Devices: []messages.SnapshotDevice{
			{ID: 1, Name: "core<1>", X: 100, Y: 100, Type: "router",
				Interfaces: []messages.SnapshotInterface{{ID: 1, Name: "eth1"}}},
			{ID: 2, Name: "leaf", X: 400, Y: 300, Type: "switch",
				Interfaces: []messages.SnapshotInterface{{ID: 1, Name: "swp1"}}},
			{ID: 3, Name: "web", X: 600, Y: 300, Type: "host"},
		},
		Links: []messages.SnapshotLink{
			{ID: 1, Name: "uplink", FromDeviceID: 1, ToDeviceID: 2, FromInterfaceID: 1, ToInterfaceID: 1},
			{ID: 2, FromDeviceID: 2, ToDeviceID: 99},
		},
		Groups: []messages.SnapshotGroup{
			{ID: 1, Name: "Rack1", Type: "rack", X1: 350, Y1: 250, X2: 650, Y2: 380},
		},
		Streams: []messages.SnapshotStream{
			{ID: 1, FromID: 1, ToID: 3, Label: "http"},
			{ID: 2, FromID: 1, ToID: 3},
		},
	}
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, sample(), Options{Title: "lab"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="1024" height="768"`,
		`class="router"`,
		`class="device"`,
		`class="host"`,
		`class="group"`,
		`core&lt;1&gt;`,
		`>uplink<`,
		`>eth1<`,
		`>swp1<`,
		`>http<`,
		`>lab<`,
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if got := strings.Count(out, `<circle`); got != 1 {
		t.Errorf("circles: got %d, want 1 (the router)", got)
	}
	if got := strings.Count(out, `class="link"`); got != 1 {
		t.Errorf("links: got %d, want 1 (the dangling one is skipped)", got)
	}
	if got := strings.Count(out, `class="stream"`); got != 2 {
		t.Errorf("streams: got %d, want 2", got)
	}
}

func TestSVGHideInterfaces(t *testing.T) {
	out := SVGString(sample(), Options{HideInterfaces: true})
	if strings.Contains(out, ">eth1<") {
		t.Error("interface label drawn with HideInterfaces")
	}
}

func TestSVGEmpty(t *testing.T) {
	out := SVGString(&messages.Snapshot{}, Options{Width: 200, Height: 100})
	if !strings.Contains(out, `width="200" height="100"`) || !strings.HasSuffix(out, "</svg>\n") {
		t.Errorf("got %s", out)
	}
}

func TestFitCentresDevice(t *testing.T) {
	snap := &messages.Snapshot{Devices: []messages.SnapshotDevice{{ID: 1, X: -300, Y: 50, Type: "switch"}}}
	opts := DefaultOptions()
	p := fit(snap, opts)
	x, _ := p.pt(-300, 50)
	if math.Abs(x-float64(opts.Width)/2) > 1e-9 {
		t.Errorf("x: got %v, want %v", x, opts.Width/2)
	}
	if p.scale < minScale || p.scale > maxScale {
		t.Errorf("scale %v outside [%v, %v]", p.scale, minScale, maxScale)
	}
}

func TestStreamOffsets(t *testing.T) {
	snap := &messages.Snapshot{Streams: []messages.SnapshotStream{
		{FromID: 1, ToID: 2}, {FromID: 1, ToID: 2}, {FromID: 2, ToID: 1},
	}}
	got := streamOffsets(snap)
	want := []int{0, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stream %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPNG(t *testing.T) {
	snap := sample()
	opts := Options{Width: 320, Height: 240}
	var buf bytes.Buffer
	if err := PNG(&buf, snap, opts); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("size: got %v, want 320x240", b)
	}

	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("background: got %d,%d,%d, want white", r>>8, g>>8, b>>8)
	}

	p := fit(snap, opts.withDefaults())
	x, y := p.pt(100, 100)
	r, _, _, _ = img.At(int(x), int(y)).RGBA()
	if r>>8 > 240 {
		t.Errorf("router centre red channel %d, want router fill", r>>8)
	}
}
