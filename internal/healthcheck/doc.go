// Package healthcheck implements the liveness probe against the local
// proxy. A probe is a single bounded HTTP GET; it reports healthy only for
// an explicit 200 OK and folds every error into an unhealthy observation.
// Debouncing repeated results is left to package hysteresis.
package healthcheck
