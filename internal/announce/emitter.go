package announce

import (
	"bufio"
	"fmt"
	"io"

	"github.com/angeloszaimis/ober/internal/hysteresis"
	"github.com/angeloszaimis/ober/internal/vip"
)

type Action string

const (
	ActionAnnounce Action = "announce"
	ActionWithdraw Action = "withdraw"
)

// Command renders one control line, without the trailing newline.
func Command(action Action, addr vip.Address) string {
	return fmt.Sprintf("%s route %s next-hop self", action, addr.Route())
}

// ActionFor maps a debounced health state to the route action it implies.
func ActionFor(state hysteresis.State) (Action, bool) {
	switch state {
	case hysteresis.StateUp:
		return ActionAnnounce, true
	case hysteresis.StateDown:
		return ActionWithdraw, true
	default:
		return "", false
	}
}

// Emitter writes route control lines for this node's virtual addresses.
// Nothing is read back from the announcer.
type Emitter struct {
	w    *bufio.Writer
	vips []vip.Address
	last hysteresis.State
}

func NewEmitter(w io.Writer, vips []vip.Address) *Emitter {
	return &Emitter{
		w:    bufio.NewWriter(w),
		vips: vips,
		last: hysteresis.StateUnknown,
	}
}

// Emit writes one line per address for state. Emitting the state that was
// emitted last, or StateUnknown, writes nothing. It returns the number of
// lines written.
func (e *Emitter) Emit(state hysteresis.State) (int, error) {
	action, ok := ActionFor(state)
	if !ok || state == e.last {
		return 0, nil
	}

	n, err := e.write(action)
	if err != nil {
		return n, err
	}

	e.last = state
	return n, nil
}

// WithdrawAll writes a withdraw line for every address, whatever was
// emitted before.
func (e *Emitter) WithdrawAll() (int, error) {
	n, err := e.write(ActionWithdraw)
	if err != nil {
		return n, err
	}

	e.last = hysteresis.StateDown
	return n, nil
}

// Last returns the state most recently emitted.
func (e *Emitter) Last() hysteresis.State {
	return e.last
}

func (e *Emitter) Addresses() []vip.Address {
	return e.vips
}

// write flushes after every line so each line reaches the pipe in a single
// write and the announcer never sees a partial command.
func (e *Emitter) write(action Action) (int, error) {
	for i, addr := range e.vips {
		if _, err := e.w.WriteString(Command(action, addr) + "\n"); err != nil {
			return i, fmt.Errorf("write %s for %s: %w", action, addr, err)
		}
		if err := e.w.Flush(); err != nil {
			return i, fmt.Errorf("flush %s for %s: %w", action, addr, err)
		}
	}

	return len(e.vips), nil
}
