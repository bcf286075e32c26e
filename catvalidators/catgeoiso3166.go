package catvalidators

import (
	"strings"

	"github.com/streamcat/authgateway/cat"
	"github.com/streamcat/authgateway/cborval"
	gwerrors "github.com/streamcat/authgateway/errors"
)

// CATGEOISO3166Validator checks the CATGEOISO3166 claim: an array of
// ISO 3166-1 alpha-2 country codes the request's client country must be
// one of. Absent claim means no geo restriction. catvalidators.Ordered
// omits this validator entirely when the request supplied no client
// country; Validate mirrors that same "nothing to check against" rule
// when called with an empty ClientCountry regardless.
type CATGEOISO3166Validator struct{}

func (v *CATGEOISO3166Validator) ClaimKey() int64 { return cat.ClaimCATGEOISO3166 }

func (v *CATGEOISO3166Validator) Validate(claim cborval.Value, present bool, ctx Context) error {
	if !present || ctx.ClientCountry == "" {
		return nil
	}
	items, err := cborval.AsArray(claim)
	if err != nil {
		return gwerrors.ValidatorFailureError("CATGEOISO3166 claim: %v", err)
	}
	if len(items) == 0 {
		return nil
	}
	want := strings.ToUpper(strings.TrimSpace(ctx.ClientCountry))
	for _, item := range items {
		code, err := cborval.AsText(item)
		if err != nil {
			return gwerrors.ValidatorFailureError("CATGEOISO3166 claim entry: %v", err)
		}
		if strings.ToUpper(strings.TrimSpace(code)) == want {
			return nil
		}
	}
	return gwerrors.ValidatorFailureError("client country %q is not in the CATGEOISO3166 allow-list", ctx.ClientCountry)
}
