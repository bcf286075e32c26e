package catvalidators

import (
	"sort"

	"github.com/streamcat/authgateway/cat"
	"github.com/streamcat/authgateway/cborval"
	gwerrors "github.com/streamcat/authgateway/errors"
)

// CATHValidator checks the CATH (header match) claim: a map of name/match-
// rule pairs on consecutive keys, (1,2), (3,4), ...; after sorting the keys,
// the lower key of each pair holds the header name and the next key its
// match rule (or null for presence only). An odd-sized map means a name
// without its match rule, or vice versa, and is rejected outright.
type CATHValidator struct{}

func (v *CATHValidator) ClaimKey() int64 { return cat.ClaimCATH }

func (v *CATHValidator) Validate(claim cborval.Value, present bool, ctx Context) error {
	if !present {
		return nil
	}
	m, err := cborval.AsMap(claim)
	if err != nil {
		return gwerrors.ValidatorFailureError("CATH claim: %v", err)
	}
	if len(m)%2 != 0 {
		return gwerrors.ValidatorFailureError("CATH claim has an odd number of entries (%d)", len(m))
	}

	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for i := 0; i+1 < len(keys); i += 2 {
		nameKey, valueKey := keys[i], keys[i+1]
		if valueKey != nameKey+1 {
			return gwerrors.ValidatorFailureError("CATH claim pair at index %d is not contiguous (keys %d, %d)", i/2, nameKey, valueKey)
		}
		headerName, err := cborval.AsText(m[nameKey])
		if err != nil {
			return gwerrors.ValidatorFailureError("CATH claim header name: %v", err)
		}
		observed, ok := ctx.Headers[headerName]
		if !ok {
			return gwerrors.ValidatorFailureError("CATH claim requires header %q, which is absent", headerName)
		}
		valueEntry := m[valueKey]
		if cborval.IsNull(valueEntry) {
			// Presence only: the header name matched, nothing more to check.
			continue
		}
		mv, err := cborval.AsMatchValue(valueEntry)
		if err != nil {
			return gwerrors.ValidatorFailureError("CATH claim match rule for %q: %v", headerName, err)
		}
		matched, err := mv.Kind.Matches(mv.Pattern, observed)
		if err != nil {
			return gwerrors.ValidatorFailureError("CATH claim header %q: %v", headerName, err)
		}
		if !matched {
			return gwerrors.ValidatorFailureError("CATH claim header %q: %q does not %s-match %q", headerName, observed, mv.Kind, mv.Pattern)
		}
	}
	return nil
}
