package ownership

import (
	"errors"
	"fmt"
	"hash/crc32"
	"slices"

	"github.com/angeloszaimis/ober/internal/roster"
	"github.com/angeloszaimis/ober/internal/vip"
)

const (
	OwnerPriority   = 100
	StandbyPriority = 90

	// MaxRouterID is the largest VRRP virtual router id.
	MaxRouterID = 255
)

var (
	ErrEmptyRoster      = errors.New("empty roster: no owner can be computed")
	ErrTooManyAddresses = errors.New("too many virtual addresses")
)

// Assignment says which node owns a virtual address and how the VRRP
// instance for it is identified.
type Assignment struct {
	Address  vip.Address
	Owner    roster.Node
	Ordinal  int
	RouterID int
	Instance string
}

// Priority is the VRRP priority node should advertise for this address.
// The owner always outranks standbys, so it reclaims the address when it
// recovers.
func (a Assignment) Priority(node roster.Node) int {
	if node == a.Owner {
		return OwnerPriority
	}
	return StandbyPriority
}

// Hash is the integer hash of the address's canonical string form.
func Hash(addr vip.Address) uint32 {
	return crc32.ChecksumIEEE([]byte(addr.String()))
}

// OwnerOf picks the owner from a roster that is already canonical (see
// roster.Canonical).
func OwnerOf(addr vip.Address, sorted []roster.Node) (roster.Node, error) {
	if len(sorted) == 0 {
		return "", ErrEmptyRoster
	}

	return sorted[Hash(addr)%uint32(len(sorted))], nil
}

// Owner returns the owner of addr for any ordering of nodes.
func Owner(addr vip.Address, nodes []roster.Node) (roster.Node, error) {
	return OwnerOf(addr, roster.Canonical(nodes))
}

// Resolve computes the full assignment from scratch. Addresses are ordered
// numerically to derive ordinals, so the result depends only on the two
// inputs taken as sets.
func Resolve(addrs []vip.Address, nodes []roster.Node) ([]Assignment, error) {
	sorted := roster.Canonical(nodes)
	if len(sorted) == 0 {
		return nil, ErrEmptyRoster
	}

	ordered := slices.Clone(addrs)
	slices.SortFunc(ordered, vip.Address.Compare)
	ordered = slices.CompactFunc(ordered, func(a, b vip.Address) bool {
		return a.Compare(b) == 0
	})

	if len(ordered) > MaxRouterID {
		return nil, fmt.Errorf("%w: %d addresses, at most %d router ids",
			ErrTooManyAddresses, len(ordered), MaxRouterID)
	}

	assignments := make([]Assignment, 0, len(ordered))
	for i, addr := range ordered {
		owner, err := OwnerOf(addr, sorted)
		if err != nil {
			return nil, err
		}

		ordinal := i + 1
		assignments = append(assignments, Assignment{
			Address:  addr,
			Owner:    owner,
			Ordinal:  ordinal,
			RouterID: ordinal,
			Instance: fmt.Sprintf("VI_%d", ordinal),
		})
	}

	return assignments, nil
}

// Owned returns the assignments whose owner is node.
func Owned(assignments []Assignment, node roster.Node) []Assignment {
	var owned []Assignment
	for _, a := range assignments {
		if a.Owner == node {
			owned = append(owned, a)
		}
	}
	return owned
}
