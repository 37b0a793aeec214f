package fsm

// Result tells the chain whether a machine consumed an event.
type Result int

const (
	NotHandled Result = iota
	Handled
)

func (r Result) String() string {
	if r == Handled {
		return "handled"
	}
	return "not handled"
}

// Machine is one link of a Chain.
type Machine[E any] interface {
	Name() string
	Handle(ev E) Result
}

// Chain is an ordered list of machines. Earlier machines look at every event
// first; an event travels down the list until a machine handles it.
type Chain[E any] struct {
	machines []Machine[E]
}

// NewChain builds a chain in priority order.
func NewChain[E any](machines ...Machine[E]) *Chain[E] {
	return &Chain[E]{machines: machines}
}

// Append adds a machine at the lowest priority.
func (c *Chain[E]) Append(m Machine[E]) {
	c.machines = append(c.machines, m)
}

// Machines returns the machines in dispatch order.
func (c *Chain[E]) Machines() []Machine[E] {
	out := make([]Machine[E], len(c.machines))
	copy(out, c.machines)
	return out
}

// Lookup returns the machine with the given name.
func (c *Chain[E]) Lookup(name string) (Machine[E], bool) {
	for _, m := range c.machines {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// Dispatch offers ev to each machine in turn and stops at the first one
// that handles it.
func (c *Chain[E]) Dispatch(ev E) Result {
	return c.dispatch(0, ev)
}

// DispatchAfter offers ev only to the machines after the named one. Unknown
// names dispatch to nobody.
func (c *Chain[E]) DispatchAfter(name string, ev E) Result {
	for i, m := range c.machines {
		if m.Name() == name {
			return c.dispatch(i+1, ev)
		}
	}
	return NotHandled
}

func (c *Chain[E]) dispatch(from int, ev E) Result {
	for _, m := range c.machines[from:] {
		if m.Handle(ev) == Handled {
			return Handled
		}
	}
	return NotHandled
}
