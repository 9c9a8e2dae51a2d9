package vip

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"
)

var (
	ErrInvalidAddress = errors.New("invalid IP address")
	ErrInvalidPrefix  = errors.New("invalid CIDR prefix")
	ErrNotIPv4        = errors.New("not an IPv4 address")
	ErrDuplicate      = errors.New("duplicate virtual address")
)

// Address is a virtual IPv4 address. Routes for it are always announced
// as a /32; bits only records the interface prefix the VRRP daemon binds
// it with.
type Address struct {
	addr netip.Addr
	bits int
}

// Parse accepts "a.b.c.d" or "a.b.c.d/n". A missing prefix means /32.
func Parse(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)
	host, prefix, hasPrefix := strings.Cut(raw, "/")

	ip, err := netip.ParseAddr(host)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	if !ip.Is4() {
		return Address{}, fmt.Errorf("%w: %q", ErrNotIPv4, raw)
	}

	bits := 32
	if hasPrefix {
		bits, err = strconv.Atoi(prefix)
		if err != nil || bits < 0 || bits > 32 {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, raw)
		}
	}

	if bits < 31 {
		_, network, err := net.ParseCIDR(fmt.Sprintf("%s/%d", ip, bits))
		if err != nil {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, raw)
		}
		first, last := cidr.AddressRange(network)
		if first.Equal(ip.AsSlice()) || last.Equal(ip.AsSlice()) {
			return Address{}, fmt.Errorf("%w: %q is the network or broadcast address of %s",
				ErrInvalidAddress, raw, network)
		}
	}

	return Address{addr: ip, bits: bits}, nil
}

// MustParse is Parse for constants and tests.
func MustParse(raw string) Address {
	a, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseList parses every configured entry, keeping configuration order.
func ParseList(raws []string) ([]Address, error) {
	addrs := make([]Address, 0, len(raws))
	seen := make(map[netip.Addr]bool, len(raws))

	for _, raw := range raws {
		a, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		if seen[a.addr] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, a)
		}
		seen[a.addr] = true
		addrs = append(addrs, a)
	}

	return addrs, nil
}

// String is the canonical form, without prefix.
func (a Address) String() string {
	return a.addr.String()
}

// Route is the prefix announced to the router.
func (a Address) Route() string {
	return a.addr.String() + "/32"
}

// CIDR is the address with its interface prefix.
func (a Address) CIDR() string {
	return a.addr.String() + "/" + strconv.Itoa(a.bits)
}

func (a Address) Addr() netip.Addr {
	return a.addr
}

func (a Address) IsValid() bool {
	return a.addr.IsValid()
}

// Compare orders addresses numerically.
func (a Address) Compare(b Address) int {
	return a.addr.Compare(b.addr)
}
