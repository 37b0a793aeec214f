// Package render draws a topology snapshot as an SVG document or a PNG
// image. Both renderers share the same projection, so a device sits at the
// same pixel in either output.
package render

import (
	"math"

	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

// Options controls rendering.
type Options struct {
	Width    int    // canvas width in pixels
	Height   int    // canvas height in pixels
	Padding  int    // space around the drawing
	FontSize int    // device label size
	Title    string // drawn centred at the top when set

	// HideInterfaces leaves interface names off link ends.
	HideInterfaces bool
}

// DefaultOptions returns a 1024x768 canvas.
func DefaultOptions() Options {
	return Options{
		Width:    1024,
		Height:   768,
		Padding:  40,
		FontSize: 14,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Padding <= 0 {
		o.Padding = d.Padding
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	return o
}

// Scale limits for fitting the topology to the canvas.
const (
	minScale = 0.3
	maxScale = 1.5
)

// projection maps canvas coordinates to output pixels.
type projection struct {
	scale      float64
	offX, offY float64
}

func (p projection) pt(x, y float64) (float64, float64) {
	return x*p.scale + p.offX, y*p.scale + p.offY
}

func (p projection) len(v float64) float64 { return v * p.scale }

// fit centres the bounding box of every device and group in the canvas.
func fit(snap *messages.Snapshot, o Options) projection {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x1, y1, x2, y2 float64) {
		minX = math.Min(minX, x1)
		minY = math.Min(minY, y1)
		maxX = math.Max(maxX, x2)
		maxY = math.Max(maxY, y2)
	}
	for _, d := range snap.Devices {
		w, h := extent(d)
		// Labels hang below the device.
		grow(d.X-w, d.Y-h, d.X+w, d.Y+h+float64(o.FontSize)+8)
	}
	for _, g := range snap.Groups {
		grow(math.Min(g.X1, g.X2), math.Min(g.Y1, g.Y2), math.Max(g.X1, g.X2), math.Max(g.Y1, g.Y2))
	}
	if math.IsInf(minX, 1) {
		return projection{scale: 1}
	}

	contentW := math.Max(maxX-minX, 100)
	contentH := math.Max(maxY-minY, 100)
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	titleSpace := 0.0
	if o.Title != "" {
		titleSpace = 35
	}
	availW := float64(o.Width - 2*o.Padding)
	availH := float64(o.Height-2*o.Padding) - titleSpace
	scale := math.Min(availW/contentW, availH/contentH)
	scale = math.Min(maxScale, math.Max(minScale, scale))

	return projection{
		scale: scale,
		offX:  float64(o.Width)/2 - cx*scale,
		offY:  float64(o.Padding) + titleSpace + availH/2 - cy*scale,
	}
}

// extent returns a device's half width and half height by type.
func extent(d messages.SnapshotDevice) (float64, float64) {
	m := model.NewDevice(d.ID, d.Name, d.X, d.Y, d.Type)
	return m.Width, m.Height
}

func circular(d messages.SnapshotDevice) bool {
	return model.NewDevice(d.ID, d.Name, d.X, d.Y, d.Type).Shape == model.ShapeCircular
}

// index maps device ids to snapshot devices.
func index(snap *messages.Snapshot) map[int]messages.SnapshotDevice {
	out := make(map[int]messages.SnapshotDevice, len(snap.Devices))
	for _, d := range snap.Devices {
		out[d.ID] = d
	}
	return out
}

func interfaceName(d messages.SnapshotDevice, id int) string {
	for _, i := range d.Interfaces {
		if i.ID == id {
			return i.Name
		}
	}
	return ""
}

// streamControl returns the control point of the curve for a stream. The
// nth stream between the same pair bows further out.
func streamControl(x1, y1, x2, y2 float64, n int) (float64, float64) {
	mx, my := (x1+x2)/2, (y1+y2)/2
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return mx, my - 40
	}
	bow := 40 + 25*float64(n)
	return mx - dy/dist*bow, my + dx/dist*bow
}

// streamOffsets numbers streams sharing the same ordered pair of devices.
func streamOffsets(snap *messages.Snapshot) []int {
	seen := make(map[[2]int]int)
	out := make([]int, len(snap.Streams))
	for i, s := range snap.Streams {
		key := [2]int{s.FromID, s.ToID}
		out[i] = seen[key]
		seen[key]++
	}
	return out
}
