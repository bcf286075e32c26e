package cat

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/streamcat/authgateway/cborval"
)

// wireToken is the on-the-wire shape of a signed CAT: a simplified
// COSE_Mac0-style structure (protected header, CBOR-encoded claims payload,
// MAC tag) rather than a byte-exact COSE encoding, since the gateway's
// validation contract only depends on the claims surviving a round trip
// under a verified MAC.
type wireToken struct {
	_         struct{} `cbor:",toarray"`
	Protected []byte
	Payload   []byte
	Tag       []byte
}

// Token is a decoded CAT: the raw claims map, from which RegisteredClaims
// projects the registered claims and Custom returns custom claims for
// validators to project with the CBOR Value Adapter.
type Token struct {
	Claims cborval.Value // KindMap, keyed by claim number
}

// DecodedWire is the result of parsing a wireToken before its signature has
// been checked: the claims (for inspection) alongside the exact bytes that
// were MACed, so verification never re-serializes and risks a different
// encoding than what was signed.
type DecodedWire struct {
	Token     *Token
	Protected []byte
	Payload   []byte
	Tag       []byte
}

// Decode parses raw bytes as a wireToken and returns the token without
// verifying its signature. Callers must call VerifySignature (or use
// DecodeAndVerify) before trusting the claims.
func Decode(data []byte) (*DecodedWire, error) {
	var wt wireToken
	if err := cbor.Unmarshal(data, &wt); err != nil {
		return nil, fmt.Errorf("cat: decode: %w", err)
	}
	claims, err := cborval.Decode(wt.Payload)
	if err != nil {
		return nil, fmt.Errorf("cat: decode payload: %w", err)
	}
	if claims.Kind() != cborval.KindMap {
		return nil, fmt.Errorf("cat: decode: payload is not a claims map")
	}
	return &DecodedWire{
		Token:     &Token{Claims: claims},
		Protected: wt.Protected,
		Payload:   wt.Payload,
		Tag:       wt.Tag,
	}, nil
}

// RegisteredClaims projects the token's registered CWT claims.
func (t *Token) RegisteredClaims() (RegisteredClaims, error) {
	m, err := cborval.AsMap(t.Claims)
	if err != nil {
		return RegisteredClaims{}, err
	}
	var rc RegisteredClaims
	if v, ok := m[ClaimIssuer]; ok {
		rc.Issuer, err = cborval.AsText(v)
		if err != nil {
			return RegisteredClaims{}, fmt.Errorf("cat: iss claim: %w", err)
		}
	}
	if v, ok := m[ClaimSubject]; ok {
		rc.Subject, err = cborval.AsText(v)
		if err != nil {
			return RegisteredClaims{}, fmt.Errorf("cat: sub claim: %w", err)
		}
	}
	if v, ok := m[ClaimAudience]; ok {
		rc.Audience, err = cborval.AsText(v)
		if err != nil {
			return RegisteredClaims{}, fmt.Errorf("cat: aud claim: %w", err)
		}
	}
	if v, ok := m[ClaimExpiration]; ok {
		rc.Expiration, err = cborval.AsInt64(v)
		if err != nil {
			return RegisteredClaims{}, fmt.Errorf("cat: exp claim: %w", err)
		}
	}
	if v, ok := m[ClaimNotBefore]; ok {
		rc.NotBefore, err = cborval.AsInt64(v)
		if err != nil {
			return RegisteredClaims{}, fmt.Errorf("cat: nbf claim: %w", err)
		}
	}
	if v, ok := m[ClaimIssuedAt]; ok {
		rc.IssuedAt, err = cborval.AsInt64(v)
		if err != nil {
			return RegisteredClaims{}, fmt.Errorf("cat: iat claim: %w", err)
		}
	}
	if v, ok := m[ClaimCWTID]; ok {
		rc.CWTID, err = cborval.AsText(v)
		if err != nil {
			return RegisteredClaims{}, fmt.Errorf("cat: cti claim: %w", err)
		}
	}
	return rc, nil
}

// Custom returns the raw claim value stored at claimKey, if present.
func (t *Token) Custom(claimKey int64) (cborval.Value, bool) {
	m, err := cborval.AsMap(t.Claims)
	if err != nil {
		return cborval.Value{}, false
	}
	v, ok := m[claimKey]
	return v, ok
}
