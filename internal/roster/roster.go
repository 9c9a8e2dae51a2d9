package roster

import (
	"slices"
)

// Node identifies a cluster member, typically a hostname or address.
type Node string

func (n Node) String() string {
	return string(n)
}

// Parse expands hostlist expressions into the node identities they name,
// in the order written.
func Parse(exprs []string) ([]Node, error) {
	var nodes []Node

	for _, expr := range exprs {
		hosts, err := ParseHostlist(expr)
		if err != nil {
			return nil, err
		}
		for _, h := range hosts {
			nodes = append(nodes, Node(h))
		}
	}

	return nodes, nil
}

// Canonical returns the roster as a set: duplicates removed, sorted by the
// identity's string form. The input is not modified.
func Canonical(nodes []Node) []Node {
	sorted := slices.Clone(nodes)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// Contains reports whether n is a member of nodes.
func Contains(nodes []Node, n Node) bool {
	return slices.Contains(nodes, n)
}
