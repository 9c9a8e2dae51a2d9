// Package hysteresis turns a stream of health probe results into a
// debounced UP/DOWN signal.
//
// The counter keeps two streaks with independent thresholds:
//
//   - rise: consecutive successes needed to report UP
//   - fall: consecutive failures needed to report DOWN
//
// Each result extends its own streak and resets the other, so an
// alternating pass/fail sequence never flips the state when both
// thresholds are above one. The reported state starts UNKNOWN and leaves
// it on the first streak that reaches its threshold.
//
// Usage:
//
//	c := hysteresis.NewCounter(2, 2)
//	if state, changed := c.Observe(probe.Check(ctx).Healthy); changed {
//	    // announce or withdraw
//	}
package hysteresis
