// Package failover implements the decision loop that turns local proxy
// health into route announcements.
//
// The controller moves through three phases:
//
//   - RUNNING: on every tick it probes the proxy, feeds the hysteresis
//     counter and, when the debounced state flips, announces or withdraws
//     the node's routes. Nothing is emitted before the first flip.
//   - DRAINING: entered when the run context is cancelled. Every route is
//     withdrawn, even if DOWN was already announced.
//   - TERMINATED: final. No further probes or commands.
//
// Probe, emitter, ticker and metrics are injected, so the loop can be
// driven tick by tick in tests without network calls or timers.
package failover
