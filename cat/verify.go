package cat

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jmhodges/clock"

	"github.com/streamcat/authgateway/cborval"
)

// VerificationOptions carries everything the registered-claims verification
// step needs beyond the token itself: the request context to check CATU/
// CATM against, the expected issuer/audience, and the clock to check
// exp/nbf against (injectable so tests can fake time).
type VerificationOptions struct {
	Clock              clock.Clock
	ValidateExpiration bool
	ValidateNotBefore  bool
	ExpectedIssuer     string
	ExpectedAudience   string
	RequireAudience    bool
	RequestURI         *url.URL
	RequestMethod      string
	// ClockSkew is the leeway applied on both sides of exp/nbf.
	ClockSkew time.Duration
}

// VerifyRegisteredClaims runs every registered-claim check spec'd for the
// pipeline's registered-claims step: exp, nbf, iss, aud, then (if present)
// CATU and CATM.
func VerifyRegisteredClaims(t *Token, opts VerificationOptions) error {
	rc, err := t.RegisteredClaims()
	if err != nil {
		return err
	}
	if err := verifyTime(rc, opts); err != nil {
		return err
	}
	if opts.ExpectedIssuer != "" && rc.Issuer != opts.ExpectedIssuer {
		return fmt.Errorf("cat: issuer %q does not match expected %q", rc.Issuer, opts.ExpectedIssuer)
	}
	if opts.RequireAudience && rc.Audience != opts.ExpectedAudience {
		return fmt.Errorf("cat: audience %q does not match expected %q", rc.Audience, opts.ExpectedAudience)
	}
	if _, ok := t.Custom(ClaimCATU); ok {
		if err := VerifyURI(t, opts.RequestURI); err != nil {
			return err
		}
	}
	if _, ok := t.Custom(ClaimCATM); ok {
		if err := VerifyMethod(t, opts.RequestMethod); err != nil {
			return err
		}
	}
	return nil
}

func verifyTime(rc RegisteredClaims, opts VerificationOptions) error {
	if opts.Clock == nil {
		return nil
	}
	now := opts.Clock.Now().Unix()
	skew := int64(opts.ClockSkew.Seconds())
	if opts.ValidateExpiration && rc.Expiration != 0 && now > rc.Expiration+skew {
		return fmt.Errorf("cat: token expired at %d", rc.Expiration)
	}
	if opts.ValidateNotBefore && rc.NotBefore != 0 && now < rc.NotBefore-skew {
		return fmt.Errorf("cat: token not valid before %d", rc.NotBefore)
	}
	return nil
}

// VerifyURI checks each CATU component present in the claim against the
// corresponding component of requestURI.
func VerifyURI(t *Token, requestURI *url.URL) error {
	claim, ok := t.Custom(ClaimCATU)
	if !ok {
		return nil
	}
	if requestURI == nil {
		return fmt.Errorf("cat: CATU claim present but no request URI given")
	}
	components, err := cborval.AsMap(claim)
	if err != nil {
		return fmt.Errorf("cat: CATU claim: %w", err)
	}
	for component, matchVal := range components {
		mv, err := cborval.AsMatchValue(matchVal)
		if err != nil {
			return fmt.Errorf("cat: CATU component %d: %w", component, err)
		}
		observed, err := uriComponentValue(requestURI, component)
		if err != nil {
			return err
		}
		ok, err := mv.Kind.Matches(mv.Pattern, observed)
		if err != nil {
			return fmt.Errorf("cat: CATU component %d: %w", component, err)
		}
		if !ok {
			return fmt.Errorf("cat: CATU component %d: %q does not %s-match %q", component, observed, mv.Kind, mv.Pattern)
		}
	}
	return nil
}

func uriComponentValue(u *url.URL, component int64) (string, error) {
	switch component {
	case URIComponentScheme:
		return u.Scheme, nil
	case URIComponentHost:
		return u.Host, nil
	case URIComponentPath:
		return u.Path, nil
	case URIComponentQuery:
		return u.RawQuery, nil
	case URIComponentExtension:
		return strings.TrimPrefix(path.Ext(u.Path), "."), nil
	default:
		return "", fmt.Errorf("cat: unknown CATU component %d", component)
	}
}

// VerifyMethod checks that method appears in the CATM claim's allowed-
// methods array.
func VerifyMethod(t *Token, method string) error {
	claim, ok := t.Custom(ClaimCATM)
	if !ok {
		return nil
	}
	items, err := cborval.AsArray(claim)
	if err != nil {
		return fmt.Errorf("cat: CATM claim: %w", err)
	}
	for _, item := range items {
		allowed, err := cborval.AsText(item)
		if err != nil {
			return fmt.Errorf("cat: CATM claim entry: %w", err)
		}
		if strings.EqualFold(allowed, method) {
			return nil
		}
	}
	return fmt.Errorf("cat: method %q is not in CATM allowed-methods list", method)
}
