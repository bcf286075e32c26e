package catvalidators

import (
	"github.com/streamcat/authgateway/cat"
	"github.com/streamcat/authgateway/cborval"
	gwerrors "github.com/streamcat/authgateway/errors"
)

// CATVValidator checks the CATV (token format version) claim. Like every
// custom-claim validator, an absent claim is policy-neutral; a present one
// must be the integer 1, the only version this gateway speaks.
type CATVValidator struct{}

func (v *CATVValidator) ClaimKey() int64 { return cat.ClaimCATV }

func (v *CATVValidator) Validate(claim cborval.Value, present bool, _ Context) error {
	if !present {
		return nil
	}
	version, err := cborval.AsInt64(claim)
	if err != nil {
		return gwerrors.ValidatorFailureError("CATV claim: %v", err)
	}
	if version != 1 {
		return gwerrors.ValidatorFailureError("CATV version %d is not supported", version)
	}
	return nil
}
