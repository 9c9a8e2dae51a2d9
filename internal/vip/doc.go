// Package vip parses and validates the virtual IPv4 addresses a node
// exposes. Each address is announced to the router as a /32 regardless of
// the interface prefix it was configured with.
package vip
