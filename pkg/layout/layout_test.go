package layout

import (
	"math"
	"testing"

	"github.com/ha1tch/netui/pkg/messages"
)

func star(n int) Graph {
	g := Graph{Nodes: []Node{{ID: 1, Name: "core", Type: "router"}}}
	for i := 2; i <= n; i++ {
		g.Nodes = append(g.Nodes, Node{ID: i, Name: "leaf", Type: "switch"})
		g.Edges = append(g.Edges, [2]int{1, i})
	}
	return g
}

func inBounds(p Point, b Bounds) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

func TestEveryAlgorithmPlacesEveryNode(t *testing.T) {
	g := star(9)
	for _, name := range []string{"grid", "circular", "hierarchical", "force"} {
		t.Run(name, func(t *testing.T) {
			a, ok := ParseAlgorithm(name)
			if !ok {
				t.Fatalf("ParseAlgorithm(%q) failed", name)
			}
			pos := Layout(g, a, DefaultBounds)
			if len(pos) != len(g.Nodes) {
				t.Fatalf("got %d positions, want %d", len(pos), len(g.Nodes))
			}
			for id, p := range pos {
				if !inBounds(p, DefaultBounds) {
					t.Errorf("device %d at %v is outside the bounds", id, p)
				}
			}
		})
	}
}

func TestParseAlgorithmUnknown(t *testing.T) {
	if _, ok := ParseAlgorithm("spiral"); ok {
		t.Error("expected unknown algorithm")
	}
}

func TestGridSpacing(t *testing.T) {
	g := Graph{Nodes: []Node{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}}
	pos := Layout(g, Grid, DefaultBounds)
	for i := 1; i <= 4; i++ {
		for j := i + 1; j <= 4; j++ {
			if d := math.Hypot(pos[i].X-pos[j].X, pos[i].Y-pos[j].Y); d < DefaultBounds.Spacing {
				t.Errorf("devices %d and %d are %v apart, want at least %v", i, j, d, DefaultBounds.Spacing)
			}
		}
	}
}

func TestHierarchicalPutsRouterOnTop(t *testing.T) {
	g := star(4)
	pos := Layout(g, Hierarchical, DefaultBounds)
	if pos[1].Y != DefaultBounds.Y {
		t.Errorf("router y: got %v, want %v", pos[1].Y, DefaultBounds.Y)
	}
	for id := 2; id <= 4; id++ {
		if pos[id].Y <= pos[1].Y {
			t.Errorf("switch %d at y=%v is not below the router", id, pos[id].Y)
		}
		if pos[id].Y != pos[2].Y {
			t.Errorf("switch %d is not on the same layer as switch 2", id)
		}
	}
}

func TestCircularRootAtTop(t *testing.T) {
	pos := Layout(star(6), Circular, DefaultBounds)
	for id, p := range pos {
		if id != 1 && p.Y < pos[1].Y {
			t.Errorf("device %d above the root", id)
		}
	}
}

func TestForceDirectedDeterministic(t *testing.T) {
	g := star(7)
	a := Layout(g, ForceDirected, DefaultBounds)
	b := Layout(g, ForceDirected, DefaultBounds)
	for id := range a {
		if a[id] != b[id] {
			t.Errorf("device %d: %v then %v", id, a[id], b[id])
		}
	}
}

func TestChoose(t *testing.T) {
	chain := Graph{Nodes: []Node{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}, {ID: 6}},
		Edges: [][2]int{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}}}
	tests := []struct {
		name string
		g    Graph
		want Algorithm
	}{
		{"small", star(3), Hierarchical},
		{"chain", chain, Hierarchical},
		{"medium", star(10), Circular},
		{"large sparse", star(30), Hierarchical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Choose(tt.g); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromSnapshot(t *testing.T) {
	snap := &messages.Snapshot{
		Devices: []messages.SnapshotDevice{{ID: 1, Name: "a", Type: "router"}, {ID: 2, Name: "b", Type: "switch"}},
		Links:   []messages.SnapshotLink{{ID: 1, FromDeviceID: 1, ToDeviceID: 2}},
	}
	g := FromSnapshot(snap)
	if len(g.Nodes) != 2 || len(g.Edges) != 1 || g.Edges[0] != [2]int{1, 2} {
		t.Errorf("got %+v", g)
	}
	if pos := Smart(g, DefaultBounds); len(pos) != 2 {
		t.Errorf("Smart placed %d devices, want 2", len(pos))
	}
}

func TestEmptyGraph(t *testing.T) {
	for a := Grid; a <= ForceDirected; a++ {
		if pos := Layout(Graph{}, a, DefaultBounds); len(pos) != 0 {
			t.Errorf("algorithm %d: got %v, want empty", a, pos)
		}
	}
}
