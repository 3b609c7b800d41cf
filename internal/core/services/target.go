package services

import (
	"net/netip"
	"regexp"
	"strings"
	"unicode"

	"github.com/lighthouse/backend/internal/domain"
	"golang.org/x/net/publicsuffix"
)

var domainPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z][a-z0-9-]{0,61}[a-z0-9]$`)

// SplitTargets splits a raw target string on commas and whitespace,
// dropping empty tokens.
func SplitTargets(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ClassifyTargets tags every token of raw as a domain, an ip target or
// invalid, preserving input order.
func ClassifyTargets(raw string) []domain.TargetUnit {
	tokens := SplitTargets(raw)
	units := make([]domain.TargetUnit, 0, len(tokens))
	for _, tok := range tokens {
		units = append(units, ClassifyTarget(tok))
	}
	return units
}

func ClassifyTarget(token string) domain.TargetUnit {
	switch {
	case IsValidDomain(token):
		return domain.TargetUnit{Kind: domain.TargetKindDomain, Value: token}
	case IsValidIPTarget(token):
		return domain.TargetUnit{Kind: domain.TargetKindIP, Value: token}
	default:
		return domain.TargetUnit{Kind: domain.TargetKindInvalid, Value: token}
	}
}

// IsValidDomain accepts lowercase host names that have a registrable domain
// under the public suffix list.
func IsValidDomain(s string) bool {
	if len(s) == 0 || len(s) > 253 || !domainPattern.MatchString(s) {
		return false
	}
	if _, err := netip.ParseAddr(s); err == nil {
		return false
	}
	_, err := publicsuffix.EffectiveTLDPlusOne(s)
	return err == nil
}

// IsValidIPTarget accepts a single address, a CIDR or a dash range
// "10.0.0.1-10.0.0.20".
func IsValidIPTarget(s string) bool {
	_, err := parseAddrRange(s)
	return err == nil
}
