package denylist

import (
	"net"
	"sort"
	"strings"
)

// Evaluator answers is-blocked questions against a single loaded
// BlockedData snapshot. It holds no state of its own beyond that snapshot,
// so a fresh Evaluator is cheap to build per request.
type Evaluator struct {
	bd *BlockedData
}

// NewEvaluator wraps a loaded BlockedData for querying.
func NewEvaluator(bd *BlockedData) *Evaluator {
	return &Evaluator{bd: bd}
}

// IsSubjectBlocked reports whether subject is in the blocked-subjects list.
// A token with no subject claim fails closed to subjectRequired: policy
// decides whether an anonymous-subject token is treated as blocked.
func (e *Evaluator) IsSubjectBlocked(subject string, subjectRequired bool) bool {
	if subject == "" {
		return subjectRequired
	}
	if !e.bd.AnySubjects {
		return false
	}
	return contains(e.bd.Subjects, subject)
}

// IsCountryBlocked reports whether country (an ISO 3166-1 alpha-2 code) is
// in the blocked-countries list. country is upper-cased before the lookup;
// stored entries are compared as stored, so only upper-case entries match.
func (e *Evaluator) IsCountryBlocked(country string) bool {
	if !e.bd.AnyCountries {
		return false
	}
	return contains(e.bd.Countries, strings.ToUpper(country))
}

// IsUserAgentBlocked reports whether userAgent exactly matches an entry in
// the blocked-user-agents list.
func (e *Evaluator) IsUserAgentBlocked(userAgent string) bool {
	if !e.bd.AnyUserAgents {
		return false
	}
	return contains(e.bd.UserAgents, userAgent)
}

// IsIPBlocked reports whether ip falls within any blocked CIDR.
func (e *Evaluator) IsIPBlocked(ip net.IP) bool {
	if !e.bd.AnyCIDRs {
		return false
	}
	for _, cidr := range e.bd.CIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// IsIPBlockedByASN reports whether ip falls within any CIDR range
// associated with a blocked ASN.
func (e *Evaluator) IsIPBlockedByASN(ip net.IP) bool {
	if !e.bd.AnyASNs {
		return false
	}
	for _, asn := range e.bd.Asns {
		for _, cidr := range asn.CIDRs {
			_, network, err := net.ParseCIDR(cidr)
			if err != nil {
				continue
			}
			if network.Contains(ip) {
				return true
			}
		}
	}
	return false
}

func contains(sorted []string, value string) bool {
	i := sort.SearchStrings(sorted, value)
	return i < len(sorted) && sorted[i] == value
}
