package gatewayfe

import (
	"github.com/letsencrypt/validator/v10"
)

// validate is a single, process-wide struct-tag validator instance, the
// way the rest of the ambient stack shares one *zap.Logger and one
// clock.Clock rather than constructing per-request.
var validate = validator.New()

// ValidateTokenRequest is the body of POST /validate and POST
// /validate/simple: a token plus the request context its custom claims
// (CATU, CATM, CATH, CATGEOISO3166, CATNIP, and the denylist dimensions)
// are checked against. /validate/simple skips the denylist step;
// /validate does not. Both otherwise run the identical pipeline.
type ValidateTokenRequest struct {
	Token              string            `json:"token" validate:"required"`
	URL                string            `json:"url" validate:"omitempty,url"`
	Method             string            `json:"method"`
	Issuer             string            `json:"issuer" validate:"required"`
	Headers            map[string]string `json:"headers"`
	ClientIP           string            `json:"client_ip" validate:"required,ip"`
	Audience           *string           `json:"audience,omitempty"`
	Country            *string           `json:"country,omitempty" validate:"omitempty,len=2"`
	ValidateNotBefore  *bool             `json:"validate_not_before,omitempty"`
	ValidateExpiration *bool             `json:"validate_expiration,omitempty"`
}

func boolOrDefault(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func stringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ValidateResponse reports the outcome of a validation request.
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Subject string `json:"subject,omitempty"`
}

// GenerateTokenRequest mints a test token shaped like original_source's
// generate_test_token: a fixed CATU claim (scheme "https", host
// "my-streaming.api", path prefix "/media", extension "mp4"), a CATM
// claim allowing only GET, a CATGEOISO3166 claim built from Countries, and
// a CATH claim requiring a Mozilla-containing User-Agent and an exact
// "Lorem" X-FWF-Custom-Header.
type GenerateTokenRequest struct {
	Issuer            string   `json:"issuer" validate:"required"`
	Subject           string   `json:"subject" validate:"required"`
	Audience          string   `json:"audience"`
	Countries         []string `json:"countries" validate:"required,min=1,dive,len=2"`
	ExpirationInHours int64    `json:"expiration_in_hours" validate:"required,min=1"`
	TokenIdentifier   string   `json:"token_identifier" validate:"required"`
}

// GenerateTokenResponse carries the minted token, base64url-encoded per
// spec §6.
type GenerateTokenResponse struct {
	Token string `json:"token"`
}

// SimpleBlockRequest adds or removes a batch of entries from a simple
// denylist dimension (subjects, countries, cidrs, user agents).
type SimpleBlockRequest struct {
	Values []string `json:"values" validate:"required,min=1"`
}

// ASNBlockRequest adds or removes a batch of ASNs from the denylist.
type ASNBlockRequest struct {
	Values []uint32 `json:"values" validate:"required,min=1"`
}
