// Package fsm provides the state machine engine behind the editor's
// interaction modes: declared transition tables, per-machine controllers
// and the chain that hands events from one machine to the next.
package fsm

import (
	"fmt"
	"sort"
	"strings"
)

// Transition declares that a handler for Event in state From may move the
// machine to any of To.
type Transition struct {
	From  string   `json:"from"`
	Event string   `json:"event"`
	To    []string `json:"to"`
}

// Table is the declared shape of one interaction machine. It documents the
// legal transitions and lets tests and tooling check them; dispatch never
// consults it.
type Table struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	States      []string     `json:"states"`
	Events      []string     `json:"events"`
	Initial     string       `json:"initial"`
	Transitions []Transition `json:"transitions"`
}

// NewTable creates an empty table with the given name and initial state.
func NewTable(name, initial string) *Table {
	t := &Table{
		Name:        name,
		States:      make([]string, 0),
		Events:      make([]string, 0),
		Transitions: make([]Transition, 0),
	}
	t.AddState(initial)
	t.Initial = initial
	return t
}

// AddState adds a state to the table.
func (t *Table) AddState(name string) {
	for _, s := range t.States {
		if s == name {
			return
		}
	}
	t.States = append(t.States, name)
}

// AddEvent adds an event name to the alphabet.
func (t *Table) AddEvent(name string) {
	for _, e := range t.Events {
		if e == name {
			return
		}
	}
	t.Events = append(t.Events, name)
}

// Allow declares the targets a handler for event in state from may reach.
// States and events are added as needed. Calling Allow twice for the same
// (from, event) pair merges the targets.
func (t *Table) Allow(from, event string, to ...string) *Table {
	t.AddState(from)
	t.AddEvent(event)
	for _, s := range to {
		t.AddState(s)
	}
	for i := range t.Transitions {
		tr := &t.Transitions[i]
		if tr.From == from && tr.Event == event {
			for _, s := range to {
				if !contains(tr.To, s) {
					tr.To = append(tr.To, s)
				}
			}
			return t
		}
	}
	t.Transitions = append(t.Transitions, Transition{From: from, Event: event, To: append([]string(nil), to...)})
	return t
}

// Validate checks that the table is well formed.
func (t *Table) Validate() error {
	if len(t.States) == 0 {
		return fmt.Errorf("table %s has no states", t.Name)
	}
	if t.Initial == "" {
		return fmt.Errorf("table %s has no initial state", t.Name)
	}
	if !contains(t.States, t.Initial) {
		return fmt.Errorf("table %s: initial state %q not in states", t.Name, t.Initial)
	}

	seen := make(map[[2]string]bool)
	for i, tr := range t.Transitions {
		if !contains(t.States, tr.From) {
			return fmt.Errorf("table %s: transition %d: from state %q not in states", t.Name, i, tr.From)
		}
		if !contains(t.Events, tr.Event) {
			return fmt.Errorf("table %s: transition %d: event %q not in events", t.Name, i, tr.Event)
		}
		if len(tr.To) == 0 {
			return fmt.Errorf("table %s: transition %d: no target states", t.Name, i)
		}
		for _, to := range tr.To {
			if !contains(t.States, to) {
				return fmt.Errorf("table %s: transition %d: to state %q not in states", t.Name, i, to)
			}
		}
		key := [2]string{tr.From, tr.Event}
		if seen[key] {
			return fmt.Errorf("table %s: duplicate transition for (%s, %s)", t.Name, tr.From, tr.Event)
		}
		seen[key] = true
	}
	return nil
}

// Allowed returns the declared targets for event in state from.
func (t *Table) Allowed(from, event string) []string {
	for _, tr := range t.Transitions {
		if tr.From == from && tr.Event == event {
			return tr.To
		}
	}
	return nil
}

// Legal reports whether moving from -> to while handling event was declared.
func (t *Table) Legal(from, event, to string) bool {
	return contains(t.Allowed(from, event), to)
}

// UnreachableStates returns states with no declared path from the initial
// state, sorted by name.
func (t *Table) UnreachableStates() []string {
	reached := map[string]bool{t.Initial: true}
	queue := []string{t.Initial}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, tr := range t.Transitions {
			if tr.From != s {
				continue
			}
			for _, to := range tr.To {
				if !reached[to] {
					reached[to] = true
					queue = append(queue, to)
				}
			}
		}
	}

	var out []string
	for _, s := range t.States {
		if !reached[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// String returns a short summary of the table.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Machine: %s\n", t.Name))
	sb.WriteString(fmt.Sprintf("  States: %v\n", t.States))
	sb.WriteString(fmt.Sprintf("  Events: %v\n", t.Events))
	sb.WriteString(fmt.Sprintf("  Initial: %s\n", t.Initial))
	sb.WriteString(fmt.Sprintf("  Transitions: %d\n", len(t.Transitions)))
	return sb.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
