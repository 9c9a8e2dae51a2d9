// Package metrics exposes the failover engine's behaviour as Prometheus
// metrics:
//   - probe results and probe latency
//   - the current debounced health state and every transition
//   - route control lines written, by action
//   - the controller's lifecycle phase (RUNNING, DRAINING, TERMINATED)
//
// Collectors live on a private registry served by Handler, usually on
// the optional metrics listener from package httpserver.
//
// Example usage:
//
//	m := metrics.New()
//	m.ObserveProbe(obs.Healthy, obs.Latency, obs.StatusCode != 0)
//	m.RecordTransition("DOWN")
//	m.RecordCommands("withdraw", 2)
//
//	mux.Handle("/metrics", m.Handler())
package metrics
