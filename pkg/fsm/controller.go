package fsm

import "fmt"

// State is implemented by the closed enum each machine uses for its states.
type State interface {
	comparable
	fmt.Stringer
}

// Step records one state change.
type Step struct {
	Machine string
	From    string
	Event   string
	To      string
}

func (s Step) String() string {
	return fmt.Sprintf("%s: %s --%s--> %s", s.Machine, s.From, s.Event, s.To)
}

// DefaultHistoryLimit bounds the transition log kept by a Controller.
const DefaultHistoryLimit = 256

// Controller holds the current state of one machine and runs the exit and
// enter hooks around every change.
type Controller[S State] struct {
	name    string
	initial S
	state   S

	enter func(S)
	exit  func(S)

	table       *Table
	onViolation func(Step)

	history []Step
	limit   int
}

// NewController creates a controller parked in initial. Hooks are not run
// until Start is called.
func NewController[S State](name string, initial S) *Controller[S] {
	return &Controller[S]{
		name:    name,
		initial: initial,
		state:   initial,
		limit:   DefaultHistoryLimit,
	}
}

// SetHooks installs the enter and exit hooks. Either may be nil.
func (c *Controller[S]) SetHooks(enter, exit func(S)) {
	c.enter = enter
	c.exit = exit
}

// SetTable attaches a declared table. Changes not allowed by the table are
// reported to fn but still performed.
func (c *Controller[S]) SetTable(t *Table, fn func(Step)) {
	c.table = t
	c.onViolation = fn
}

// SetHistoryLimit changes how many steps are kept. Zero disables the log.
func (c *Controller[S]) SetHistoryLimit(n int) {
	c.limit = n
	c.trim()
}

// Name returns the machine name.
func (c *Controller[S]) Name() string { return c.name }

// State returns the current state.
func (c *Controller[S]) State() S { return c.state }

// Table returns the attached table, if any.
func (c *Controller[S]) Table() *Table { return c.table }

// Start enters the initial state, running its enter hook.
func (c *Controller[S]) Start() {
	c.state = c.initial
	if c.enter != nil {
		c.enter(c.state)
	}
}

// Change exits the current state, records the step and enters to.
// event names what the handler was processing when it changed state.
func (c *Controller[S]) Change(to S, event string) {
	from := c.state
	if c.exit != nil {
		c.exit(from)
	}
	c.state = to

	step := Step{Machine: c.name, From: from.String(), Event: event, To: to.String()}
	c.record(step)
	if c.table != nil && !c.table.Legal(step.From, step.Event, step.To) && c.onViolation != nil {
		c.onViolation(step)
	}

	if c.enter != nil {
		c.enter(to)
	}
}

// History returns a copy of the recorded steps, oldest first.
func (c *Controller[S]) History() []Step {
	out := make([]Step, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Controller[S]) record(step Step) {
	if c.limit <= 0 {
		return
	}
	c.history = append(c.history, step)
	c.trim()
}

func (c *Controller[S]) trim() {
	if c.limit <= 0 {
		c.history = nil
		return
	}
	if over := len(c.history) - c.limit; over > 0 {
		c.history = append(c.history[:0], c.history[over:]...)
	}
}
