// Package signals bridges SIGINT and SIGTERM to context cancellation.
//
// Only the first signal has an effect. The failover loop sees it as a
// cancelled context and drains; repeated signals during the drain are
// no-ops.
package signals
