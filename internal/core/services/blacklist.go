package services

import (
	"fmt"
	"net/netip"
	"strings"
)

// addrRange is an inclusive address interval within one family.
type addrRange struct {
	from netip.Addr
	to   netip.Addr
}

func (r addrRange) overlaps(o addrRange) bool {
	if r.from.Is4() != o.from.Is4() {
		return false
	}
	return r.from.Compare(o.to) <= 0 && o.from.Compare(r.to) <= 0
}

// parseAddrRange reads an address, a CIDR or "first-last".
func parseAddrRange(s string) (addrRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return addrRange{}, fmt.Errorf("empty ip target")
	}

	if first, last, ok := strings.Cut(s, "-"); ok {
		from, err := netip.ParseAddr(strings.TrimSpace(first))
		if err != nil {
			return addrRange{}, err
		}
		to, err := netip.ParseAddr(strings.TrimSpace(last))
		if err != nil {
			return addrRange{}, err
		}
		from, to = from.Unmap(), to.Unmap()
		if from.Is4() != to.Is4() {
			return addrRange{}, fmt.Errorf("mixed address families in %q", s)
		}
		if from.Compare(to) > 0 {
			return addrRange{}, fmt.Errorf("range start after end in %q", s)
		}
		return addrRange{from: from, to: to}, nil
	}

	if strings.Contains(s, "/") {
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return addrRange{}, err
		}
		prefix = prefix.Masked()
		return addrRange{from: prefix.Addr(), to: lastAddr(prefix)}, nil
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return addrRange{}, err
	}
	addr = addr.Unmap()
	return addrRange{from: addr, to: addr}, nil
}

func lastAddr(p netip.Prefix) netip.Addr {
	if p.Addr().Is4() {
		a := p.Addr().As4()
		for bit := p.Bits(); bit < 32; bit++ {
			a[bit/8] |= 1 << (7 - bit%8)
		}
		return netip.AddrFrom4(a)
	}
	a := p.Addr().As16()
	for bit := p.Bits(); bit < 128; bit++ {
		a[bit/8] |= 1 << (7 - bit%8)
	}
	return netip.AddrFrom16(a)
}

// BlacklistGuard answers whether an ip target touches the exclusion policy.
type BlacklistGuard struct {
	ranges []addrRange
}

// NewBlacklistGuard builds a guard from policy entries. Entries that do not
// parse are returned so the caller can report them; they never match.
func NewBlacklistGuard(entries []string) (*BlacklistGuard, []string) {
	g := &BlacklistGuard{}
	var skipped []string
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		r, err := parseAddrRange(e)
		if err != nil {
			skipped = append(skipped, e)
			continue
		}
		g.ranges = append(g.ranges, r)
	}
	return g, skipped
}

// IsBlacklisted reports whether any address of the ip target lies inside
// a policy entry. Tokens that are not ip targets are never blacklisted.
func (g *BlacklistGuard) IsBlacklisted(token string) bool {
	r, err := parseAddrRange(token)
	if err != nil {
		return false
	}
	for _, b := range g.ranges {
		if r.overlaps(b) {
			return true
		}
	}
	return false
}

// ValidatePolicyEntry checks a single blacklist entry.
func ValidatePolicyEntry(entry string) error {
	_, err := parseAddrRange(entry)
	return err
}
