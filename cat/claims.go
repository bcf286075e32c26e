// Package cat implements Common Access Token decoding, signing, and
// registered-claim verification. This is the external "signed CBOR token
// library" the gateway otherwise treats as a collaborator: the corpus has
// no ready-made CAT library, so it is implemented here on top of
// github.com/fxamacker/cbor/v2.
package cat

// Registered claim keys, per RFC 8392 (CBOR Web Token).
const (
	ClaimIssuer     = 1
	ClaimSubject    = 2
	ClaimAudience   = 3
	ClaimExpiration = 4
	ClaimNotBefore  = 5
	ClaimIssuedAt   = 6
	ClaimCWTID      = 7 // cti
)

// Custom CAT claim keys. Assigned internally by this implementation; a
// deployment speaking to other CAT issuers would instead align these with
// whatever registry its ecosystem uses.
const (
	ClaimCATV          = 100 // token format version
	ClaimCATU          = 101 // URI match components
	ClaimCATM          = 102 // allowed HTTP methods
	ClaimCATH          = 103 // header match pairs
	ClaimCATGEOISO3166 = 104 // allowed ISO 3166-1 alpha-2 country codes
	ClaimCATNIP        = 105 // allowed client IP prefixes
)

// URI components a CATU claim may constrain. The CATU map is keyed by
// these values, each mapped to a {1: kind, 2: pattern} match rule.
const (
	URIComponentScheme    = 0
	URIComponentHost      = 1
	URIComponentPath      = 2
	URIComponentQuery     = 3
	URIComponentExtension = 4
)

// RegisteredClaims holds the CWT registered claims a CAT carries.
type RegisteredClaims struct {
	Issuer     string
	Subject    string
	Audience   string
	Expiration int64
	NotBefore  int64
	IssuedAt   int64
	CWTID      string
}
