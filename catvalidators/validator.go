// Package catvalidators implements the gateway's custom-claim validators:
// CATV, CATH, CATGEOISO3166, and CATNIP. Each validator inspects one claim
// via the CBOR Value Adapter and returns a *errors.GatewayError of Kind
// ValidatorFailure on rejection.
package catvalidators

import (
	"github.com/streamcat/authgateway/cborval"
)

// Validator checks one custom claim against request context captured in
// Context.
type Validator interface {
	// ClaimKey identifies which claim number this validator inspects.
	ClaimKey() int64
	// Validate inspects claim (absent if present is false) against ctx and
	// returns an error of Kind ValidatorFailure on rejection.
	Validate(claim cborval.Value, present bool, ctx Context) error
}

// Context carries the observed request attributes custom-claim validators
// check claims against.
type Context struct {
	ClientCountry string
	ClientIP      string
	Headers       map[string]string
}

// Ordered returns the validators to run, in the fixed pipeline order: CATV
// first (token format must be understood before anything else is
// trusted), then CATH, CATGEOISO3166 (only when countrySupplied - a
// request carrying no client country has nothing for CATGEOISO3166 to
// check against, mirroring how the "simple" and "full" construction paths
// only wire in the country validator when a country was supplied), then
// CATNIP. The ordering among included validators is part of the contract
// (§9): callers must not reorder entries.
func Ordered(countrySupplied bool) []Validator {
	vs := []Validator{
		&CATVValidator{},
		&CATHValidator{},
	}
	if countrySupplied {
		vs = append(vs, &CATGEOISO3166Validator{})
	}
	return append(vs, &CATNIPValidator{})
}
