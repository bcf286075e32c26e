package cat

import (
	"github.com/streamcat/authgateway/cborval"
)

// Builder assembles a claims map for minting a test token, mirroring the
// shape the gateway's /api/tests/tokens endpoint produces.
type Builder struct {
	claims map[int64]cborval.Value
}

// NewBuilder starts a Builder with the registered claims set.
func NewBuilder(rc RegisteredClaims) *Builder {
	b := &Builder{claims: make(map[int64]cborval.Value)}
	if rc.Issuer != "" {
		b.claims[ClaimIssuer] = cborval.Text(rc.Issuer)
	}
	if rc.Subject != "" {
		b.claims[ClaimSubject] = cborval.Text(rc.Subject)
	}
	if rc.Audience != "" {
		b.claims[ClaimAudience] = cborval.Text(rc.Audience)
	}
	b.claims[ClaimExpiration] = cborval.Int64(rc.Expiration)
	b.claims[ClaimNotBefore] = cborval.Int64(rc.NotBefore)
	b.claims[ClaimIssuedAt] = cborval.Int64(rc.IssuedAt)
	if rc.CWTID != "" {
		b.claims[ClaimCWTID] = cborval.Text(rc.CWTID)
	}
	return b
}

// WithVersion sets the CATV claim.
func (b *Builder) WithVersion(version int64) *Builder {
	b.claims[ClaimCATV] = cborval.Int64(version)
	return b
}

// matchValue builds the {1: kind, 2: pattern} map the CAT spec uses for
// every match rule (CATU components, CATH pairs).
func matchValue(kind cborval.MatchKind, pattern string) cborval.Value {
	return cborval.Map(map[int64]cborval.Value{1: cborval.Int64(int64(kind)), 2: cborval.Text(pattern)})
}

// WithURIComponent adds a match rule for a single CATU component (scheme,
// host, path, query, extension), building up the CATU map.
func (b *Builder) WithURIComponent(component int64, kind cborval.MatchKind, pattern string) *Builder {
	catu, ok := b.claims[ClaimCATU]
	var m map[int64]cborval.Value
	if ok {
		m, _ = cborval.AsMap(catu)
	} else {
		m = make(map[int64]cborval.Value)
	}
	m[component] = matchValue(kind, pattern)
	b.claims[ClaimCATU] = cborval.Map(m)
	return b
}

// WithMethods sets the CATM claim to the given allowed HTTP methods.
func (b *Builder) WithMethods(methods ...string) *Builder {
	items := make([]cborval.Value, len(methods))
	for i, m := range methods {
		items[i] = cborval.Text(m)
	}
	b.claims[ClaimCATM] = cborval.Array(items)
	return b
}

// WithHeaderMatch adds a header-name/match-rule pair to the CATH claim.
// CATH keys come in consecutive odd/even pairs (1,2), (3,4), ...; pairIndex
// 0 occupies keys (1,2), pairIndex 1 occupies (3,4), and so on.
func (b *Builder) WithHeaderMatch(pairIndex int64, headerName string, kind cborval.MatchKind, pattern string) *Builder {
	cath, ok := b.claims[ClaimCATH]
	var m map[int64]cborval.Value
	if ok {
		m, _ = cborval.AsMap(cath)
	} else {
		m = make(map[int64]cborval.Value)
	}
	nameKey := pairIndex*2 + 1
	valueKey := nameKey + 1
	m[nameKey] = cborval.Text(headerName)
	m[valueKey] = matchValue(kind, pattern)
	b.claims[ClaimCATH] = cborval.Map(m)
	return b
}

// WithHeaderPresence adds a header-presence pair to the CATH claim: the
// header must be present, its value unconstrained.
func (b *Builder) WithHeaderPresence(pairIndex int64, headerName string) *Builder {
	cath, ok := b.claims[ClaimCATH]
	var m map[int64]cborval.Value
	if ok {
		m, _ = cborval.AsMap(cath)
	} else {
		m = make(map[int64]cborval.Value)
	}
	nameKey := pairIndex*2 + 1
	valueKey := nameKey + 1
	m[nameKey] = cborval.Text(headerName)
	m[valueKey] = cborval.Null()
	b.claims[ClaimCATH] = cborval.Map(m)
	return b
}

// WithCountries sets the CATGEOISO3166 claim to the given allowed country
// codes.
func (b *Builder) WithCountries(codes ...string) *Builder {
	items := make([]cborval.Value, len(codes))
	for i, c := range codes {
		items[i] = cborval.Text(c)
	}
	b.claims[ClaimCATGEOISO3166] = cborval.Array(items)
	return b
}

// WithIPPrefixes sets the CATNIP claim to the given allowed client
// addresses, each encoded as a bare byte string, which cborval.NetworkAddress
// reads as an exact address: 4 bytes for IPv4, 16 for IPv6. It does not
// build the [prefix_len, prefix_bytes] prefix form.
func (b *Builder) WithIPPrefixes(prefixes ...[]byte) *Builder {
	items := make([]cborval.Value, len(prefixes))
	for i, p := range prefixes {
		items[i] = cborval.Bytes(p)
	}
	b.claims[ClaimCATNIP] = cborval.Array(items)
	return b
}

// Sign finalizes the builder and produces signed token bytes.
func (b *Builder) Sign(key []byte) ([]byte, error) {
	return Sign(b.claims, key)
}
