package fsm

import (
	"strings"
	"testing"
)

type light int

const (
	lightOff light = iota
	lightOn
	lightBroken
)

func (l light) String() string {
	switch l {
	case lightOff:
		return "Off"
	case lightOn:
		return "On"
	case lightBroken:
		return "Broken"
	}
	return "?"
}

func lightTable() *Table {
	t := NewTable("light", "Off")
	t.Allow("Off", "Toggle", "On")
	t.Allow("On", "Toggle", "Off")
	t.Allow("On", "Surge", "Broken")
	return t
}

func TestTableValidate(t *testing.T) {
	if err := lightTable().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name  string
		table *Table
		want  string
	}{
		{"no initial", &Table{Name: "x", States: []string{"a"}}, "no initial state"},
		{"unknown initial", &Table{Name: "x", States: []string{"a"}, Initial: "b"}, "not in states"},
		{"unknown target", &Table{
			Name: "x", States: []string{"a"}, Events: []string{"e"}, Initial: "a",
			Transitions: []Transition{{From: "a", Event: "e", To: []string{"z"}}},
		}, "to state \"z\""},
		{"unknown event", &Table{
			Name: "x", States: []string{"a"}, Initial: "a",
			Transitions: []Transition{{From: "a", Event: "e", To: []string{"a"}}},
		}, "event \"e\""},
		{"duplicate", &Table{
			Name: "x", States: []string{"a"}, Events: []string{"e"}, Initial: "a",
			Transitions: []Transition{
				{From: "a", Event: "e", To: []string{"a"}},
				{From: "a", Event: "e", To: []string{"a"}},
			},
		}, "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestAllowMerges(t *testing.T) {
	tb := NewTable("m", "A")
	tb.Allow("A", "Go", "B")
	tb.Allow("A", "Go", "C", "B")
	got := tb.Allowed("A", "Go")
	if len(got) != 2 || got[0] != "B" || got[1] != "C" {
		t.Errorf("Allowed = %v, want [B C]", got)
	}
	if len(tb.Transitions) != 1 {
		t.Errorf("transitions = %d, want 1", len(tb.Transitions))
	}
}

func TestUnreachableStates(t *testing.T) {
	tb := lightTable()
	tb.AddState("Orphan")
	got := tb.UnreachableStates()
	if len(got) != 1 || got[0] != "Orphan" {
		t.Errorf("UnreachableStates = %v, want [Orphan]", got)
	}
}

func TestControllerHooksAndHistory(t *testing.T) {
	var calls []string
	c := NewController[light]("light", lightOff)
	c.SetHooks(
		func(s light) { calls = append(calls, "enter "+s.String()) },
		func(s light) { calls = append(calls, "exit "+s.String()) },
	)
	c.Start()
	c.Change(lightOn, "Toggle")

	want := []string{"enter Off", "exit Off", "enter On"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("hooks = %v, want %v", calls, want)
	}
	if c.State() != lightOn {
		t.Errorf("state = %v, want On", c.State())
	}
	h := c.History()
	if len(h) != 1 || h[0].From != "Off" || h[0].To != "On" || h[0].Event != "Toggle" {
		t.Errorf("history = %v", h)
	}
}

func TestControllerReportsUndeclaredChange(t *testing.T) {
	var bad []Step
	c := NewController[light]("light", lightOff)
	c.SetTable(lightTable(), func(s Step) { bad = append(bad, s) })

	c.Change(lightOn, "Toggle")
	if len(bad) != 0 {
		t.Fatalf("declared change reported: %v", bad)
	}
	c.Change(lightOff, "Surge")
	if len(bad) != 1 {
		t.Fatalf("violations = %d, want 1", len(bad))
	}
	if c.State() != lightOff {
		t.Errorf("undeclared change not performed, state = %v", c.State())
	}
}

func TestHistoryLimit(t *testing.T) {
	c := NewController[light]("light", lightOff)
	c.SetHistoryLimit(3)
	for i := 0; i < 10; i++ {
		if c.State() == lightOff {
			c.Change(lightOn, "Toggle")
		} else {
			c.Change(lightOff, "Toggle")
		}
	}
	if got := len(c.History()); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}
}

type recorder struct {
	name   string
	handle bool
	seen   *[]string
}

func (r recorder) Name() string { return r.name }

func (r recorder) Handle(ev string) Result {
	*r.seen = append(*r.seen, r.name+":"+ev)
	if r.handle {
		return Handled
	}
	return NotHandled
}

func TestChainStopsAtFirstHandler(t *testing.T) {
	var seen []string
	c := NewChain[string](
		recorder{"a", false, &seen},
		recorder{"b", true, &seen},
		recorder{"c", true, &seen},
	)
	if got := c.Dispatch("x"); got != Handled {
		t.Errorf("Dispatch = %v, want handled", got)
	}
	if strings.Join(seen, ",") != "a:x,b:x" {
		t.Errorf("seen = %v", seen)
	}

	seen = nil
	if got := c.DispatchAfter("b", "y"); got != Handled {
		t.Errorf("DispatchAfter = %v, want handled", got)
	}
	if strings.Join(seen, ",") != "c:y" {
		t.Errorf("seen = %v, want [c:y]", seen)
	}

	seen = nil
	if got := c.DispatchAfter("missing", "z"); got != NotHandled || len(seen) != 0 {
		t.Errorf("DispatchAfter(missing) = %v, seen %v", got, seen)
	}
}

func TestGenerateDOT(t *testing.T) {
	out := GenerateDOT(lightTable(), "")
	for _, want := range []string{
		"digraph Machine",
		"label=\"light\"",
		"__start -> \"Off\"",
		"\"On\" -> \"Broken\" [label=\"Surge\"]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
}
