package services

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// FirstLevelDomain returns the registrable domain of host ("a.b.example.co.uk"
// gives "example.co.uk").
func FirstLevelDomain(host string) (string, error) {
	return publicsuffix.EffectiveTLDPlusOne(strings.ToLower(strings.TrimSpace(host)))
}

// IsInScopes reports whether target equals, or is a subdomain of, any of
// the scope patterns.
func IsInScopes(target string, patterns []string) bool {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return false
	}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if target == p || strings.HasSuffix(target, "."+p) {
			return true
		}
	}
	return false
}
