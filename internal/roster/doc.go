// Package roster holds cluster membership as seen from configuration:
// node identities, their canonical (sorted, de-duplicated) order, and the
// hostlist expressions operators use to write them down.
package roster
