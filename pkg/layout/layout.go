// Package layout places the devices of a topology automatically. Devices
// are graph nodes and links are undirected edges; every algorithm returns a
// canvas position per device id.
package layout

import (
	"math"
	"sort"

	"github.com/ha1tch/netui/pkg/messages"
)

// Algorithm is a placement strategy.
type Algorithm int

const (
	Grid Algorithm = iota
	Circular
	Hierarchical
	ForceDirected
)

var algorithmNames = map[string]Algorithm{
	"grid":         Grid,
	"circular":     Circular,
	"hierarchical": Hierarchical,
	"force":        ForceDirected,
}

// ParseAlgorithm maps a name to an algorithm. ok is false for unknown names.
func ParseAlgorithm(name string) (Algorithm, bool) {
	a, ok := algorithmNames[name]
	return a, ok
}

// Node is one device.
type Node struct {
	ID   int
	Name string
	Type string
}

// Graph is the topology as seen by the layout.
type Graph struct {
	Nodes []Node
	Edges [][2]int
}

// FromSnapshot builds the graph of a snapshot's devices and links.
func FromSnapshot(snap *messages.Snapshot) Graph {
	var g Graph
	for _, d := range snap.Devices {
		g.Nodes = append(g.Nodes, Node{ID: d.ID, Name: d.Name, Type: d.Type})
	}
	for _, l := range snap.Links {
		g.Edges = append(g.Edges, [2]int{l.FromDeviceID, l.ToDeviceID})
	}
	return g
}

// Point is a canvas position.
type Point struct{ X, Y float64 }

// Bounds is the canvas area to lay out in.
type Bounds struct {
	X, Y          float64
	Width, Height float64
	// Spacing is the minimum distance between device centres.
	Spacing float64
}

// DefaultBounds fits a topology on a 1024x768 canvas.
var DefaultBounds = Bounds{X: 250, Y: 100, Width: 1000, Height: 700, Spacing: 150}

// Layout places g's nodes with algorithm a inside b.
func Layout(g Graph, a Algorithm, b Bounds) map[int]Point {
	if b.Spacing <= 0 {
		b.Spacing = DefaultBounds.Spacing
	}
	var pos map[int]Point
	switch a {
	case Circular:
		pos = circular(g, b)
	case Hierarchical:
		pos = hierarchical(g, b)
	case ForceDirected:
		pos = forceDirected(g, b)
	default:
		pos = grid(g, b)
	}
	pos = resolveCollisions(g, pos, b.Spacing)
	return clamp(pos, b)
}

// Smart picks an algorithm from the shape of g.
func Smart(g Graph, b Bounds) map[int]Point {
	return Layout(g, Choose(g), b)
}

// Choose returns the algorithm Smart would use.
func Choose(g Graph) Algorithm {
	n := len(g.Nodes)
	switch {
	case n <= 4 || isLinearChain(g):
		return Hierarchical
	case n <= 15:
		return Circular
	case float64(len(g.Edges))/float64(n*n) > 0.25:
		return ForceDirected
	}
	return Hierarchical
}

func grid(g Graph, b Bounds) map[int]Point {
	pos := make(map[int]Point, len(g.Nodes))
	n := len(g.Nodes)
	if n == 0 {
		return pos
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	cell := math.Max(b.Spacing, b.Width/float64(cols))
	for i, node := range g.Nodes {
		pos[node.ID] = Point{
			X: b.X + float64(i%cols)*cell,
			Y: b.Y + float64(i/cols)*b.Spacing,
		}
	}
	return pos
}

// circular puts the root at the top and walks the rest clockwise in
// breadth-first order.
func circular(g Graph, b Bounds) map[int]Point {
	pos := make(map[int]Point, len(g.Nodes))
	n := len(g.Nodes)
	if n == 0 {
		return pos
	}
	cx, cy := b.X+b.Width/2, b.Y+b.Height/2
	rx := math.Max(b.Spacing, b.Width/2)
	ry := math.Max(b.Spacing, b.Height/2)
	for i, id := range bfsOrder(g) {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		pos[id] = Point{X: cx + rx*math.Cos(angle), Y: cy + ry*math.Sin(angle)}
	}
	return pos
}

// hierarchical layers nodes by hop distance from the root, top to bottom.
func hierarchical(g Graph, b Bounds) map[int]Point {
	pos := make(map[int]Point, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return pos
	}
	adj := adjacency(g)
	layer := make(map[int]int)
	maxLayer := 0
	for _, root := range roots(g) {
		if _, seen := layer[root]; seen {
			continue
		}
		if len(layer) > 0 {
			maxLayer++
		}
		layer[root] = maxLayer
		queue := []int{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if _, seen := layer[next]; !seen {
					layer[next] = layer[cur] + 1
					maxLayer = max(maxLayer, layer[next])
					queue = append(queue, next)
				}
			}
		}
	}

	rows := make([][]int, maxLayer+1)
	for _, node := range g.Nodes {
		rows[layer[node.ID]] = append(rows[layer[node.ID]], node.ID)
	}
	rowSpacing := math.Max(b.Spacing, b.Height/float64(len(rows)))
	for r, ids := range rows {
		sort.Ints(ids)
		colSpacing := b.Spacing
		if len(ids) > 1 {
			colSpacing = math.Max(b.Spacing, b.Width/float64(len(ids)))
		}
		startX := b.X + (b.Width-float64(len(ids)-1)*colSpacing)/2
		startX = math.Max(b.X, startX)
		for i, id := range ids {
			pos[id] = Point{X: startX + float64(i)*colSpacing, Y: b.Y + float64(r)*rowSpacing}
		}
	}
	return pos
}

func forceDirected(g Graph, b Bounds) map[int]Point {
	pos := make(map[int]Point, len(g.Nodes))
	n := len(g.Nodes)
	if n == 0 {
		return pos
	}

	// Start on a circle so the result is deterministic.
	cx, cy := b.X+b.Width/2, b.Y+b.Height/2
	for i, node := range g.Nodes {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pos[node.ID] = Point{X: cx + b.Width/3*math.Cos(angle), Y: cy + b.Height/3*math.Sin(angle)}
	}

	const (
		iterations = 100
		attraction = 0.05
		damping    = 0.85
	)
	repulsion := b.Spacing * b.Spacing * 10

	for iter := 0; iter < iterations; iter++ {
		force := make(map[int]Point, n)
		for i, a := range g.Nodes {
			for j, c := range g.Nodes {
				if i >= j {
					continue
				}
				dx := pos[a.ID].X - pos[c.ID].X
				dy := pos[a.ID].Y - pos[c.ID].Y
				dist := math.Max(1, math.Hypot(dx, dy))
				f := repulsion / (dist * dist)
				fa, fc := force[a.ID], force[c.ID]
				fa.X += f * dx / dist
				fa.Y += f * dy / dist
				fc.X -= f * dx / dist
				fc.Y -= f * dy / dist
				force[a.ID], force[c.ID] = fa, fc
			}
		}
		for _, e := range g.Edges {
			a, c := e[0], e[1]
			if a == c {
				continue
			}
			pa, okA := pos[a]
			pc, okC := pos[c]
			if !okA || !okC {
				continue
			}
			dx, dy := pc.X-pa.X, pc.Y-pa.Y
			dist := math.Hypot(dx, dy)
			if dist == 0 {
				continue
			}
			f := attraction * dist
			fa, fc := force[a], force[c]
			fa.X += f * dx / dist
			fa.Y += f * dy / dist
			fc.X -= f * dx / dist
			fc.Y -= f * dy / dist
			force[a], force[c] = fa, fc
		}
		for _, node := range g.Nodes {
			p := pos[node.ID]
			p.X += force[node.ID].X * damping
			p.Y += force[node.ID].Y * damping
			pos[node.ID] = p
		}
		pos = clamp(pos, b)
	}

	for id, p := range pos {
		pos[id] = Point{X: math.Round(p.X), Y: math.Round(p.Y)}
	}
	return pos
}

func adjacency(g Graph) map[int][]int {
	adj := make(map[int][]int, len(g.Nodes))
	for _, e := range g.Edges {
		if e[0] == e[1] {
			continue
		}
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	for id := range adj {
		sort.Ints(adj[id])
	}
	return adj
}

// roots orders nodes as layout roots: routers first, then by degree, then
// by id.
func roots(g Graph) []int {
	adj := adjacency(g)
	nodes := append([]Node(nil), g.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		ri, rj := nodes[i].Type == "router", nodes[j].Type == "router"
		if ri != rj {
			return ri
		}
		if di, dj := len(adj[nodes[i].ID]), len(adj[nodes[j].ID]); di != dj {
			return di > dj
		}
		return nodes[i].ID < nodes[j].ID
	})
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func bfsOrder(g Graph) []int {
	adj := adjacency(g)
	seen := make(map[int]bool, len(g.Nodes))
	out := make([]int, 0, len(g.Nodes))
	for _, root := range roots(g) {
		if seen[root] {
			continue
		}
		seen[root] = true
		queue := []int{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			out = append(out, cur)
			for _, next := range adj[cur] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return out
}

// isLinearChain reports whether the graph is a single path.
func isLinearChain(g Graph) bool {
	if len(g.Nodes) <= 2 {
		return true
	}
	adj := adjacency(g)
	ends := 0
	for _, n := range g.Nodes {
		switch len(adj[n.ID]) {
		case 1:
			ends++
		case 2:
		default:
			return false
		}
	}
	return ends == 2 && len(g.Edges) == len(g.Nodes)-1
}

// resolveCollisions nudges nodes closer than spacing to another node right,
// then down, until they are clear.
func resolveCollisions(g Graph, pos map[int]Point, spacing float64) map[int]Point {
	if len(pos) <= 1 {
		return pos
	}
	ids := make([]int, 0, len(pos))
	for _, n := range g.Nodes {
		if _, ok := pos[n.ID]; ok {
			ids = append(ids, n.ID)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := pos[ids[i]], pos[ids[j]]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	out := make(map[int]Point, len(pos))
	var placed []Point
	free := func(p Point) bool {
		for _, q := range placed {
			if math.Hypot(p.X-q.X, p.Y-q.Y) < spacing/2 {
				return false
			}
		}
		return true
	}
	for _, id := range ids {
		start := pos[id]
		p := start
		for attempt := 0; !free(p) && attempt < 20; attempt++ {
			if attempt%2 == 0 {
				p.X += spacing
			} else {
				p.X = start.X
				p.Y += spacing
			}
		}
		out[id] = p
		placed = append(placed, p)
	}
	return out
}

func clamp(pos map[int]Point, b Bounds) map[int]Point {
	maxX := b.X + b.Width
	maxY := b.Y + b.Height
	for id, p := range pos {
		p.X = math.Min(math.Max(p.X, b.X), maxX)
		p.Y = math.Min(math.Max(p.Y, b.Y), maxY)
		pos[id] = p
	}
	return pos
}
