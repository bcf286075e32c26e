package catvalidators

import (
	"net"

	"github.com/streamcat/authgateway/cat"
	"github.com/streamcat/authgateway/cborval"
	gwerrors "github.com/streamcat/authgateway/errors"
)

// CATNIPValidator checks the CATNIP claim: an array of IP prefixes the
// request's client IP must fall within. Absent claim means no IP
// restriction.
type CATNIPValidator struct{}

func (v *CATNIPValidator) ClaimKey() int64 { return cat.ClaimCATNIP }

func (v *CATNIPValidator) Validate(claim cborval.Value, present bool, ctx Context) error {
	if !present {
		return nil
	}
	prefixes, err := cborval.AsNetworkAddresses(claim)
	if err != nil {
		return gwerrors.ValidatorFailureError("CATNIP claim: %v", err)
	}
	if len(prefixes) == 0 {
		return nil
	}
	if ctx.ClientIP == "" {
		return gwerrors.ValidatorFailureError("CATNIP claim present but no client IP was supplied")
	}
	ip := net.ParseIP(ctx.ClientIP)
	if ip == nil {
		return gwerrors.ValidatorFailureError("CATNIP claim: client IP %q is not parseable", ctx.ClientIP)
	}
	for _, prefix := range prefixes {
		if prefix.Contains(ip) {
			return nil
		}
	}
	return gwerrors.ValidatorFailureError("client IP %q is not within any CATNIP-allowed prefix", ctx.ClientIP)
}
