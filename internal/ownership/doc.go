// Package ownership decides, for address-per-node failover, which cluster
// member owns each virtual address.
//
// The owner of an address is the node at index hash(address) mod N in the
// lexicographically sorted roster, where hash is CRC-32 (IEEE) of the
// address's dotted-quad form. Every node computes the same answer from
// its own copy of the configuration, so no coordination protocol is
// needed. Adding or removing a node may move addresses that did not
// belong to it; rosters change only with a config regeneration on every
// node.
package ownership
