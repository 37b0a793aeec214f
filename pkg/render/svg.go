package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/ha1tch/netui/pkg/messages"
)

const svgStyle = `<defs>
  <marker id="arrowhead" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto">
    <polygon points="0 0, 10 3.5, 0 7" fill="#7f7f7f"/>
  </marker>
</defs>
<style>
  .device { fill: #f5f5f5; stroke: #333; stroke-width: 2; }
  .router { fill: #e3f2fd; stroke: #1565c0; stroke-width: 2; }
  .host { fill: #fff3e0; stroke: #e65100; stroke-width: 2; }
  .label { font-family: sans-serif; font-size: %dpx; text-anchor: middle; fill: #333; }
  .intf { font-family: sans-serif; font-size: %dpx; text-anchor: middle; fill: #666; }
  .link { stroke: #333; stroke-width: 2; }
  .stream { fill: none; stroke: #7f7f7f; stroke-width: 1.5; stroke-dasharray: 6 3; marker-end: url(#arrowhead); }
  .group { fill: none; stroke: #2e7d32; stroke-width: 2; stroke-dasharray: 10 5; }
  .group-label { font-family: sans-serif; font-size: %dpx; fill: #2e7d32; }
  .title { font-family: sans-serif; font-size: %dpx; font-weight: bold; text-anchor: middle; }
</style>
`

// SVG writes snap as a standalone SVG document.
func SVG(w io.Writer, snap *messages.Snapshot, opts Options) error {
	_, err := io.WriteString(w, SVGString(snap, opts))
	return err
}

// SVGString renders snap to an SVG string.
func SVGString(snap *messages.Snapshot, opts Options) string {
	opts = opts.withDefaults()
	p := fit(snap, opts)
	devices := index(snap)
	small := opts.FontSize - 3

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, opts.Width, opts.Height, opts.Width, opts.Height)
	fmt.Fprintf(&sb, svgStyle, opts.FontSize, small, opts.FontSize, opts.FontSize+4)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="white"/>
`, opts.Width, opts.Height)
	if opts.Title != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="25" class="title">%s</text>
`, opts.Width/2, html.EscapeString(opts.Title))
	}

	// Groups under everything else.
	for _, g := range snap.Groups {
		x1, y1 := p.pt(min(g.X1, g.X2), min(g.Y1, g.Y2))
		x2, y2 := p.pt(max(g.X1, g.X2), max(g.Y1, g.Y2))
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" class="group"/>
`, x1, y1, x2-x1, y2-y1)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" class="group-label">%s</text>
`, x1+6, y1+float64(opts.FontSize)+4, html.EscapeString(g.Name))
	}

	for _, l := range snap.Links {
		from, okF := devices[l.FromDeviceID]
		to, okT := devices[l.ToDeviceID]
		if !okF || !okT {
			continue
		}
		x1, y1 := p.pt(from.X, from.Y)
		x2, y2 := p.pt(to.X, to.Y)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" class="link"/>
`, x1, y1, x2, y2)
		if l.Name != "" {
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" class="intf">%s</text>
`, (x1+x2)/2, (y1+y2)/2-4, html.EscapeString(l.Name))
		}
		if !opts.HideInterfaces {
			writeInterfaceLabel(&sb, x1, y1, x2, y2, interfaceName(from, l.FromInterfaceID))
			writeInterfaceLabel(&sb, x2, y2, x1, y1, interfaceName(to, l.ToInterfaceID))
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
		fmt.Fprintf(&sb, `<path d="M %.1f %.1f Q %.1f %.1f %.1f %.1f" class="stream"/>
`, x1, y1, cx, cy, x2, y2)
		if s.Label != "" {
			lx, ly := (x1+2*cx+x2)/4, (y1+2*cy+y2)/4
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" class="intf">%s</text>
`, lx, ly, html.EscapeString(s.Label))
		}
	}

	for _, d := range snap.Devices {
		x, y := p.pt(d.X, d.Y)
		w, h := extent(d)
		w, h = p.len(w), p.len(h)
		class := "device"
		switch d.Type {
		case "router":
			class = "router"
		case "host":
			class = "host"
		}
		if circular(d) {
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" class="%s"/>
`, x, y, w, class)
		} else {
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" class="%s"/>
`, x-w, y-h, 2*w, 2*h, class)
		}
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" class="label">%s</text>
`, x, y+h+float64(opts.FontSize)+4, html.EscapeString(d.Name))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// writeInterfaceLabel puts name a quarter of the way along the link from
// (x1, y1).
func writeInterfaceLabel(sb *strings.Builder, x1, y1, x2, y2 float64, name string) {
	if name == "" {
		return
	}
	fmt.Fprintf(sb, `<text x="%.1f" y="%.1f" class="intf">%s</text>
`, x1+(x2-x1)/4, y1+(y2-y1)/4, html.EscapeString(name))
}
