// Package catpipeline orchestrates the gateway's token validation pipeline:
// decode, verify signature, check the denylist (unless skipped), verify
// registered claims, then run the ordered custom-claim validators.
package catpipeline

import (
	"net/url"

	"github.com/jmhodges/clock"

	"github.com/streamcat/authgateway/catvalidators"
)

// Options configures one call to Validate. The /validate/simple and
// /validate routes populate it identically from the request, except that
// /validate/simple sets SkipDenylist=true and /validate sets it false.
type Options struct {
	SigningKey       []byte
	Clock            clock.Clock
	ExpectedIssuer   string
	ExpectedAudience string
	RequestURI       *url.URL
	RequestMethod    string
	ClientIP         string
	ClientCountry    string
	UserAgent        string
	Headers          map[string]string
	// ValidateExpiration and ValidateNotBefore gate the exp/nbf registered
	// claim checks (§4.F step 4); both default true at the HTTP boundary.
	ValidateExpiration bool
	ValidateNotBefore  bool
	// SkipDenylist bypasses the denylist check entirely (§4.F step 3 is
	// skippable by configuration).
	SkipDenylist bool
	// EvaluateASNBlocks additionally checks the client IP against
	// ASN-resolved CIDR ranges during the denylist step.
	EvaluateASNBlocks bool
	// SubjectRequired fails closed when a token carries no subject claim
	// and the denylist step runs (§4.E: "missing subject fails closed when
	// required").
	SubjectRequired bool
}

// validatorContext builds the catvalidators.Context this Options implies.
func (o Options) validatorContext() catvalidators.Context {
	headers := o.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	if o.UserAgent != "" {
		if _, ok := headers["User-Agent"]; !ok {
			headers["User-Agent"] = o.UserAgent
		}
	}
	return catvalidators.Context{
		ClientCountry: o.ClientCountry,
		ClientIP:      o.ClientIP,
		Headers:       headers,
	}
}
