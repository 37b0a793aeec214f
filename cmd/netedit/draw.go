package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/netui/pkg/model"
	"github.com/ha1tch/netui/pkg/session"
)

// Styles
var (
	styleDevice   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRouter   = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleHost     = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleSelected = tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	styleRemote   = tcell.StyleDefault.Background(tcell.ColorPurple).Foreground(tcell.ColorWhite)
	styleFail     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleLink     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleStream   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(200, 162, 200)) // Lilac
	styleGroup    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGroupSel = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleButton   = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleButtonOn = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite).Bold(true)
	styleToolbox  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleToolboxH = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgError = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
)

// canvasCell projects a canvas point through the session's pan and scale
// onto the terminal.
func canvasCell(s *session.Session, x, y float64) (int, int) {
	return toCell(x*s.Scale+s.PanX, y*s.Scale+s.PanY)
}

func (a *app) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()

	debug := false
	a.ed.View(func(s *session.Session) {
		if !s.HideGroups {
			for _, g := range s.Groups {
				a.drawGroup(s, g, w, h)
			}
		}
		if !s.HideLinks {
			for _, l := range s.Links {
				a.drawLink(s, l, w, h)
			}
		}
		for _, st := range s.Streams {
			a.drawStream(s, st, w, h)
		}
		for _, d := range s.Devices {
			a.drawDevice(s, d, w, h)
		}
		a.drawToolboxes(s, h)
		if !s.HideButtons {
			a.drawButtons()
		}
		debug = s.Debug
		a.drawStatusBar(s, w, h)
	})
	// States takes the editor lock.
	if debug {
		a.drawDebug(w, h)
	}
}

func (a *app) put(x, y int, r rune, style tcell.Style, w, h int) {
	if x < 0 || y < 0 || x >= w || y >= h-1 {
		return
	}
	a.screen.SetContent(x, y, r, nil, style)
}

func (a *app) text(x, y int, s string, style tcell.Style, w, h int) {
	for i, r := range []rune(s) {
		a.put(x+i, y, r, style, w, h)
	}
}

func (a *app) drawGroup(s *session.Session, g *model.Group, w, h int) {
	x1, y1 := canvasCell(s, min(g.X1, g.X2), min(g.Y1, g.Y2))
	x2, y2 := canvasCell(s, max(g.X1, g.X2), max(g.Y1, g.Y2))
	style := styleGroup
	if g.Selected || g.Highlighted {
		style = styleGroupSel
	}
	for x := x1 + 1; x < x2; x++ {
		a.put(x, y1, '╌', style, w, h)
		a.put(x, y2, '╌', style, w, h)
	}
	for y := y1 + 1; y < y2; y++ {
		a.put(x1, y, '╎', style, w, h)
		a.put(x2, y, '╎', style, w, h)
	}
	a.put(x1, y1, '┌', style, w, h)
	a.put(x2, y1, '┐', style, w, h)
	a.put(x1, y2, '└', style, w, h)
	a.put(x2, y2, '┘', style, w, h)
	a.text(x1+2, y1, " "+g.Name+" ", style, w, h)
}

// line walks the cells between two points.
func line(x1, y1, x2, y2 int, fn func(x, y int)) {
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	e := dx + dy
	for {
		fn(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (a *app) drawLink(s *session.Session, l *model.Link, w, h int) {
	x1, y1 := canvasCell(s, l.From.X, l.From.Y)
	x2, y2 := canvasCell(s, l.To.X, l.To.Y)
	style := styleLink
	switch {
	case l.Selected:
		style = styleSelected
	case l.RemoteSelected:
		style = styleRemote
	case l.Status != nil && !*l.Status:
		style = styleFail
	}
	line(x1, y1, x2, y2, func(x, y int) { a.put(x, y, '·', style, w, h) })
	if l.Name != "" {
		a.text((x1+x2)/2-len(l.Name)/2, (y1+y2)/2, l.Name, style, w, h)
	}
	if !s.HideInterfaces {
		if l.FromInterface != nil {
			a.text(x1+(x2-x1)/4, y1+(y2-y1)/4, l.FromInterface.Name, styleLink, w, h)
		}
		if l.ToInterface != nil {
			a.text(x2+(x1-x2)/4, y2+(y1-y2)/4, l.ToInterface.Name, styleLink, w, h)
		}
	}
}

func (a *app) drawStream(s *session.Session, st *model.Stream, w, h int) {
	x1, y1 := canvasCell(s, st.From.X, st.From.Y)
	x2, y2 := canvasCell(s, st.To.X, st.To.Y)
	// Streams between the same pair are stacked a row apart.
	off := st.Offset + 1
	style := styleStream
	if st.Selected {
		style = styleSelected
	}
	line(x1, y1-off, x2, y2-off, func(x, y int) { a.put(x, y, '∙', style, w, h) })
	arrow := '→'
	if x2 < x1 {
		arrow = '←'
	}
	a.put(x2, y2-off, arrow, style, w, h)
	if st.Label != "" {
		a.text((x1+x2)/2-len(st.Label)/2, (y1+y2)/2-off-1, st.Label, style, w, h)
	}
}

func (a *app) drawDevice(s *session.Session, d *model.Device, w, h int) {
	cx, cy := canvasCell(s, d.X, d.Y)
	hw := max(1, int(d.Width*s.Scale)/cellW)
	hh := max(0, int(d.Height*s.Scale)/cellH)

	style := styleDevice
	switch d.Type {
	case "router":
		style = styleRouter
	case "host":
		style = styleHost
	}
	switch {
	case d.Selected:
		style = styleSelected
	case d.RemoteSelected:
		style = styleRemote
	case d.Status != nil && !*d.Status:
		style = styleFail
	}

	tl, tr, bl, br := '┌', '┐', '└', '┘'
	if d.Shape == model.ShapeCircular {
		tl, tr, bl, br = '╭', '╮', '╰', '╯'
	}
	for x := cx - hw; x <= cx+hw; x++ {
		for y := cy - hh; y <= cy+hh; y++ {
			r := ' '
			switch {
			case x == cx-hw && y == cy-hh:
				r = tl
			case x == cx+hw && y == cy-hh:
				r = tr
			case x == cx-hw && y == cy+hh:
				r = bl
			case x == cx+hw && y == cy+hh:
				r = br
			case y == cy-hh || y == cy+hh:
				r = '─'
			case x == cx-hw || x == cx+hw:
				r = '│'
			}
			if hh == 0 && (x == cx-hw || x == cx+hw) {
				r = '['
				if x == cx+hw {
					r = ']'
				}
			}
			a.put(x, y, r, style, w, h)
		}
	}

	name := d.Name
	if d.EditLabel && s.Frame%40 < 20 {
		name += "_"
	}
	a.text(cx-len([]rune(name))/2, cy+hh+1, name, style, w, h)
	if d.Working {
		a.put(cx, cy, spinner[s.Frame/8%int64(len(spinner))], style, w, h)
	}
}

var spinner = []rune{'|', '/', '-', '\\'}

func (a *app) drawToolboxes(s *session.Session, h int) {
	for _, tb := range s.Toolboxes() {
		if !tb.Enabled {
			continue
		}
		col, row := toCell(tb.X, tb.Y)
		w := int(tb.Width) / cellW
		title := tb.Name
		if tb.Collapsed {
			title = "▸ " + title
			a.text(col, row, title, styleToolboxH, col+w+1, h)
			continue
		}
		a.text(col, row, "▾ "+title, styleToolboxH, col+w+1, h)
		for i, item := range tb.Items {
			y := tb.Y + 30 + float64(i)*tb.Spacing + tb.ScrollOffset
			if y < tb.Y+30 || y > tb.Y+tb.Height {
				continue
			}
			_, r := toCell(0, y)
			style := styleToolbox
			if item == tb.SelectedItem {
				style = styleSelected
			}
			a.text(col+1, r, item.ItemName(), style, col+w+1, h)
		}
	}
}

func (a *app) drawButtons() {
	w, h := a.screen.Size()
	for _, b := range a.ed.Buttons {
		col, row := toCell(b.X, b.Y)
		style := styleButton
		if b.Pressed || b.MouseOver {
			style = styleButtonOn
		}
		a.text(col, row, " "+b.Name+" ", style, w, h)
	}
}

// drawDebug lists every machine's current state down the right edge.
func (a *app) drawDebug(w, h int) {
	states := a.ed.States()
	names := make([]string, 0, len(states))
	for n := range states {
		names = append(names, n)
	}
	sort.Strings(names)
	for i, n := range names {
		a.text(w-40, 5+i, fmt.Sprintf("%-22s %s", n, states[n]), styleToolbox, w, h)
	}
}

func (a *app) drawStatusBar(s *session.Session, w, h int) {
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, h-1, ' ', nil, styleStatus)
	}
	conn := "offline"
	if !s.Disconnected {
		conn = fmt.Sprintf("client %d", s.ClientID())
		if s.ClientID() == 0 {
			conn = "connecting"
		}
	}
	parts := []string{
		fmt.Sprintf(" %s #%d", s.Name, s.TopologyID),
		conn,
		fmt.Sprintf("scale %.2f", s.Scale),
		fmt.Sprintf("%d devices", len(s.Devices)),
	}
	if n := s.Pending(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", n))
	}
	if s.Recording {
		parts = append(parts, "● REC")
	}
	status := strings.Join(parts, "  │  ")
	style := styleStatus
	if msg := a.message(); msg != "" {
		status = " " + msg
		style = styleMsgError
	}
	for i, r := range []rune(status) {
		if i >= w {
			break
		}
		a.screen.SetContent(i, h-1, r, nil, style)
	}
}
