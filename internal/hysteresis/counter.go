package hysteresis

type State int

const (
	StateUnknown State = iota // No debounced determination yet
	StateUp                   // Routes should be announced
	StateDown                 // Routes should be withdrawn
)

func (s State) String() string {
	switch s {
	case StateUp:
		return "UP"
	case StateDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Counter debounces probe results. It is owned by a single goroutine and
// does no locking.
type Counter struct {
	state     State
	successes int
	failures  int
	rise      int
	fall      int
}

func NewCounter(rise, fall int) *Counter {
	if rise < 1 {
		rise = 1
	}
	if fall < 1 {
		fall = 1
	}

	return &Counter{
		state: StateUnknown,
		rise:  rise,
		fall:  fall,
	}
}

// Observe records one probe result and returns the reported state along
// with whether this observation flipped it.
func (c *Counter) Observe(healthy bool) (State, bool) {
	if healthy {
		c.successes++
		c.failures = 0

		if c.state != StateUp && c.successes >= c.rise {
			c.flip(StateUp)
			return c.state, true
		}
	} else {
		c.failures++
		c.successes = 0

		if c.state != StateDown && c.failures >= c.fall {
			c.flip(StateDown)
			return c.state, true
		}
	}

	return c.state, false
}

func (c *Counter) flip(to State) {
	c.state = to
	c.successes = 0
	c.failures = 0
}

func (c *Counter) State() State {
	return c.state
}

// Streaks returns the current consecutive success and failure counts.
func (c *Counter) Streaks() (successes, failures int) {
	return c.successes, c.failures
}
