// Package denylist implements the gateway's blocklist: a sorted,
// deduplicated set of blocked subjects, countries, CIDRs, user agents, and
// ASN-to-CIDR mappings, persisted as a single JSON blob via kv.Store.
package denylist

import "sort"

// Asn is one blocked autonomous system, together with the CIDR ranges it
// has been resolved to.
type Asn struct {
	ASN   uint32   `json:"asn"`
	CIDRs []string `json:"cidrs"`
}

// BlockedData is the denylist's full, sorted-ascending, deduplicated
// contents. The Any* flags are derived summaries, recomputed by optimize()
// after every mutation, so evaluators can short-circuit an empty list
// without touching the underlying slice.
type BlockedData struct {
	Subjects   []string `json:"subjects"`
	Countries  []string `json:"countries"`
	CIDRs      []string `json:"cidrs"`
	UserAgents []string `json:"user_agents"`
	Asns       []Asn    `json:"asns"`

	Any           bool `json:"any"`
	AnySubjects   bool `json:"any_subjects"`
	AnyCountries  bool `json:"any_countries"`
	AnyCIDRs      bool `json:"any_cidrs"`
	AnyUserAgents bool `json:"any_user_agents"`
	AnyASNs       bool `json:"any_asns"`
}

// New returns an empty, already-optimized BlockedData.
func New() *BlockedData {
	bd := &BlockedData{}
	bd.optimize()
	return bd
}

// optimize recomputes the Any* summary flags from the current slices. It
// must be called after every mutation to those slices.
func (bd *BlockedData) optimize() {
	bd.AnySubjects = len(bd.Subjects) > 0
	bd.AnyCountries = len(bd.Countries) > 0
	bd.AnyCIDRs = len(bd.CIDRs) > 0
	bd.AnyUserAgents = len(bd.UserAgents) > 0
	bd.AnyASNs = len(bd.Asns) > 0
	bd.Any = bd.AnySubjects || bd.AnyCountries || bd.AnyCIDRs || bd.AnyUserAgents || bd.AnyASNs
}

// insertSorted inserts value into a sorted-ascending, deduplicated slice,
// returning the updated slice and whether an insertion actually happened.
func insertSorted(list []string, value string) ([]string, bool) {
	i := sort.SearchStrings(list, value)
	if i < len(list) && list[i] == value {
		return list, false
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = value
	return list, true
}

// removeSorted removes value from a sorted-ascending slice, returning the
// updated slice and whether a removal actually happened.
func removeSorted(list []string, value string) ([]string, bool) {
	i := sort.SearchStrings(list, value)
	if i >= len(list) || list[i] != value {
		return list, false
	}
	return append(list[:i], list[i+1:]...), true
}

func asnIndex(asns []Asn, asn uint32) (int, bool) {
	i := sort.Search(len(asns), func(i int) bool { return asns[i].ASN >= asn })
	if i < len(asns) && asns[i].ASN == asn {
		return i, true
	}
	return i, false
}

// insertAsn inserts or replaces the CIDR list for asn, keeping Asns sorted
// by ASN number.
func insertAsn(asns []Asn, asn uint32, cidrs []string) []Asn {
	i, found := asnIndex(asns, asn)
	if found {
		asns[i].CIDRs = cidrs
		return asns
	}
	asns = append(asns, Asn{})
	copy(asns[i+1:], asns[i:])
	asns[i] = Asn{ASN: asn, CIDRs: cidrs}
	return asns
}

// removeAsn removes asn's entry, if present.
func removeAsn(asns []Asn, asn uint32) ([]Asn, bool) {
	i, found := asnIndex(asns, asn)
	if !found {
		return asns, false
	}
	return append(asns[:i], asns[i+1:]...), true
}

// ContainsASN reports whether asn already has a blocked entry.
func (bd *BlockedData) ContainsASN(asn uint32) bool {
	_, found := asnIndex(bd.Asns, asn)
	return found
}
