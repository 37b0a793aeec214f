package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/netui/pkg/messages"
)

// supersample is the factor PNGs are drawn at before downsampling.
const supersample = 4

var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorInk       = color.RGBA{51, 51, 51, 255}    // #333
	colorMuted     = color.RGBA{102, 102, 102, 255} // #666
	colorStream    = color.RGBA{127, 127, 127, 255} // #7f7f7f
	colorDevice    = color.RGBA{245, 245, 245, 255} // #f5f5f5
	colorRouter    = color.RGBA{227, 242, 253, 255} // #e3f2fd
	colorRouterBdr = color.RGBA{21, 101, 192, 255}  // #1565c0
	colorHost      = color.RGBA{255, 243, 224, 255} // #fff3e0
	colorHostBdr   = color.RGBA{230, 81, 0, 255}    // #e65100
	colorGroup     = color.RGBA{46, 125, 50, 255}   // #2e7d32
)

// canvas is an image being drawn at supersample resolution.
type canvas struct {
	img       *image.RGBA
	ss        float64
	lineWidth float64
	face      font.Face
	small     font.Face
}

func newCanvas(width, height, fontSize int) (*canvas, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(fontSize * supersample),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	small, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64((fontSize - 3) * supersample),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width*supersample, height*supersample))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)
	return &canvas{img: img, ss: supersample, lineWidth: 2 * supersample, face: face, small: small}, nil
}

// PNG writes snap as a PNG image.
func PNG(w io.Writer, snap *messages.Snapshot, opts Options) error {
	img, err := Image(snap, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Image renders snap at the requested size.
func Image(snap *messages.Snapshot, opts Options) (*image.RGBA, error) {
	opts = opts.withDefaults()
	c, err := newCanvas(opts.Width, opts.Height, opts.FontSize)
	if err != nil {
		return nil, err
	}
	c.draw(snap, opts)

	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), c.img, c.img.Bounds(), draw.Over, nil)
	return out, nil
}

func (c *canvas) draw(snap *messages.Snapshot, opts Options) {
	base := fit(snap, opts)
	p := projection{scale: base.scale * c.ss, offX: base.offX * c.ss, offY: base.offY * c.ss}
	devices := index(snap)
	fontPx := float64(opts.FontSize) * c.ss

	if opts.Title != "" {
		c.text(c.face, float64(opts.Width)/2*c.ss, 25*c.ss, opts.Title, colorInk)
	}

	for _, g := range snap.Groups {
		x1, y1 := p.pt(min(g.X1, g.X2), min(g.Y1, g.Y2))
		x2, y2 := p.pt(max(g.X1, g.X2), max(g.Y1, g.Y2))
		c.dashedRect(x1, y1, x2, y2, colorGroup)
		c.textLeft(x1+6*c.ss, y1+fontPx+4*c.ss, g.Name, colorGroup)
	}

	for _, l := range snap.Links {
		from, okF := devices[l.FromDeviceID]
		to, okT := devices[l.ToDeviceID]
		if !okF || !okT {
			continue
		}
		x1, y1 := p.pt(from.X, from.Y)
		x2, y2 := p.pt(to.X, to.Y)
		c.line(x1, y1, x2, y2, colorInk)
		if l.Name != "" {
			c.text(c.small, (x1+x2)/2, (y1+y2)/2-4*c.ss, l.Name, colorMuted)
		}
		if !opts.HideInterfaces {
			if name := interfaceName(from, l.FromInterfaceID); name != "" {
				c.text(c.small, x1+(x2-x1)/4, y1+(y2-y1)/4, name, colorMuted)
			}
			if name := interfaceName(to, l.ToInterfaceID); name != "" {
				c.text(c.small, x2+(x1-x2)/4, y2+(y1-y2)/4, name, colorMuted)
			}
		}
	}

	offsets := streamOffsets(snap)
	for i, s := range snap.Streams {
		from, okF := devices[s.FromID]
		to, okT := devices[s.ToID]
		if !okF || !okT {
			continue
		}
		x1, y1 := p.pt(from.X, from.Y)
		x2, y2 := p.pt(to.X, to.Y)
		cx, cy := streamControl(x1, y1, x2, y2, offsets[i])
		c.quadArrow(x1, y1, cx, cy, x2, y2, colorStream)
		if s.Label != "" {
			c.text(c.small, (x1+2*cx+x2)/4, (y1+2*cy+y2)/4, s.Label, colorMuted)
		}
	}

	for _, d := range snap.Devices {
		x, y := p.pt(d.X, d.Y)
		w, h := extent(d)
		w, h = p.len(w), p.len(h)
		fill, stroke := color.Color(colorDevice), color.Color(colorInk)
		switch d.Type {
		case "router":
			fill, stroke = colorRouter, colorRouterBdr
		case "host":
			fill, stroke = colorHost, colorHostBdr
		}
		if circular(d) {
			c.circle(x, y, w, fill, stroke)
		} else {
			c.rect(x-w, y-h, x+w, y+h, fill, stroke)
		}
		c.text(c.face, x, y+h+fontPx, d.Name, colorInk)
	}
}

func (c *canvas) circle(cx, cy, r float64, fill, stroke color.Color) {
	for dy := -r; dy <= r; dy++ {
		xExtent := math.Sqrt(r*r - dy*dy)
		for dx := -xExtent; dx <= xExtent; dx++ {
			c.img.Set(int(cx+dx), int(cy+dy), fill)
		}
	}
	for angle := 0.0; angle < 2*math.Pi; angle += 0.005 {
		nx, ny := math.Cos(angle), math.Sin(angle)
		for t := -c.lineWidth / 2; t <= c.lineWidth/2; t += 0.5 {
			c.img.Set(int(cx+nx*(r+t)), int(cy+ny*(r+t)), stroke)
		}
	}
}

func (c *canvas) rect(x1, y1, x2, y2 float64, fill, stroke color.Color) {
	draw.Draw(c.img, image.Rect(int(x1), int(y1), int(x2), int(y2)), image.NewUniform(fill), image.Point{}, draw.Over)
	c.line(x1, y1, x2, y1, stroke)
	c.line(x2, y1, x2, y2, stroke)
	c.line(x2, y2, x1, y2, stroke)
	c.line(x1, y2, x1, y1, stroke)
}

func (c *canvas) dashedRect(x1, y1, x2, y2 float64, stroke color.Color) {
	c.dashed(x1, y1, x2, y1, stroke)
	c.dashed(x2, y1, x2, y2, stroke)
	c.dashed(x2, y2, x1, y2, stroke)
	c.dashed(x1, y2, x1, y1, stroke)
}

func (c *canvas) dashed(x1, y1, x2, y2 float64, col color.Color) {
	dist := math.Hypot(x2-x1, y2-y1)
	if dist < 1 {
		return
	}
	dash, gap := 10*c.ss, 5*c.ss
	for s := 0.0; s < dist; s += dash + gap {
		e := math.Min(s+dash, dist)
		c.line(x1+(x2-x1)*s/dist, y1+(y2-y1)*s/dist, x1+(x2-x1)*e/dist, y1+(y2-y1)*e/dist, col)
	}
}

// line draws a segment lineWidth thick.
func (c *canvas) line(x1, y1, x2, y2 float64, col color.Color) {
	dx, dy := x2-x1, y2-y1
	half := c.lineWidth / 2
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		for ty := -half; ty <= half; ty++ {
			for tx := -half; tx <= half; tx++ {
				c.img.Set(int(x1+tx), int(y1+ty), col)
			}
		}
		return
	}
	perpX, perpY := -dy/dist, dx/dist
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		px, py := x1+dx*t, y1+dy*t
		for off := -half; off <= half; off += 0.5 {
			c.img.Set(int(px+perpX*off), int(py+perpY*off), col)
		}
	}
}

// quadArrow draws a quadratic Bezier curve ending in an arrowhead.
func (c *canvas) quadArrow(x1, y1, cx, cy, x2, y2 float64, col color.Color) {
	const steps = 100.0
	prevX, prevY := x1, y1
	for i := 1.0; i <= steps; i++ {
		t := i / steps
		x := (1-t)*(1-t)*x1 + 2*(1-t)*t*cx + t*t*x2
		y := (1-t)*(1-t)*y1 + 2*(1-t)*t*cy + t*t*y2
		c.line(prevX, prevY, x, y, col)
		prevX, prevY = x, y
	}

	tx, ty := x2-cx, y2-cy
	dist := math.Hypot(tx, ty)
	if dist < 1 {
		return
	}
	nx, ny := tx/dist, ty/dist
	arrowLen, arrowWidth := 8*c.ss, 4*c.ss
	ax1, ay1 := x2-nx*arrowLen+ny*arrowWidth, y2-ny*arrowLen-nx*arrowWidth
	ax2, ay2 := x2-nx*arrowLen-ny*arrowWidth, y2-ny*arrowLen+nx*arrowWidth
	for t := 0.0; t <= 1.0; t += 0.05 {
		c.line(x2, y2, ax1+(ax2-ax1)*t, ay1+(ay2-ay1)*t, col)
	}
}

// text draws s centred horizontally on x with its baseline at y.
func (c *canvas) text(face font.Face, x, y float64, s string, col color.Color) {
	width := font.MeasureString(face, s).Ceil()
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(int(x) - width/2), Y: fixed.I(int(y))},
	}
	d.DrawString(s)
}

func (c *canvas) textLeft(x, y float64, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(int(x)), Y: fixed.I(int(y))},
	}
	d.DrawString(s)
}
