package catpipeline

import (
	"context"
	"net"

	"github.com/streamcat/authgateway/cat"
	"github.com/streamcat/authgateway/catvalidators"
	"github.com/streamcat/authgateway/denylist"
	gwerrors "github.com/streamcat/authgateway/errors"
)

// Pipeline runs the gateway's fixed validation order against a denylist
// backed by store.
type Pipeline struct {
	Store *denylist.Store
}

// NewPipeline builds a Pipeline backed by store.
func NewPipeline(store *denylist.Store) *Pipeline {
	return &Pipeline{Store: store}
}

// Validate runs the full validation contract against raw token bytes:
// decode, verify signature, check the denylist (unless skipped), verify
// registered claims, then run the ordered custom-claim validators. It
// returns the decoded token on success, or the first error encountered
// (tagged with the appropriate errors.Kind) on failure.
func (p *Pipeline) Validate(ctx context.Context, tokenBytes []byte, opts Options) (*cat.Token, error) {
	dw, err := cat.Decode(tokenBytes)
	if err != nil {
		return nil, gwerrors.TokenDecodeError("%v", err)
	}

	if err := cat.VerifySignature(opts.SigningKey, dw.Protected, dw.Payload, dw.Tag); err != nil {
		return nil, gwerrors.SignatureInvalidError("%v", err)
	}
	token := dw.Token

	if !opts.SkipDenylist {
		if err := p.checkDenylist(ctx, token, opts); err != nil {
			return nil, err
		}
	}

	if err := cat.VerifyRegisteredClaims(token, cat.VerificationOptions{
		Clock:              opts.Clock,
		ValidateExpiration: opts.ValidateExpiration,
		ValidateNotBefore:  opts.ValidateNotBefore,
		ExpectedIssuer:     opts.ExpectedIssuer,
		ExpectedAudience:   opts.ExpectedAudience,
		RequireAudience:    opts.ExpectedAudience != "",
		RequestURI:         opts.RequestURI,
		RequestMethod:      opts.RequestMethod,
	}); err != nil {
		return nil, gwerrors.ClaimRejectedError("%v", err)
	}

	vctx := opts.validatorContext()
	for _, v := range catvalidators.Ordered(opts.ClientCountry != "") {
		claim, present := token.Custom(v.ClaimKey())
		if err := v.Validate(claim, present, vctx); err != nil {
			return nil, err
		}
	}

	return token, nil
}

func (p *Pipeline) checkDenylist(ctx context.Context, token *cat.Token, opts Options) error {
	if p.Store == nil {
		return nil
	}
	bd, err := p.Store.Get(ctx)
	if err != nil {
		return gwerrors.PersistenceFailureError("%v", err)
	}
	eval := denylist.NewEvaluator(bd)

	rc, err := token.RegisteredClaims()
	if err != nil {
		return gwerrors.TokenDecodeError("%v", err)
	}
	if eval.IsSubjectBlocked(rc.Subject, opts.SubjectRequired) {
		return gwerrors.BlockedError("subject %q is denylisted", rc.Subject)
	}
	if opts.ClientCountry != "" && eval.IsCountryBlocked(opts.ClientCountry) {
		return gwerrors.BlockedError("country %q is denylisted", opts.ClientCountry)
	}
	if opts.UserAgent != "" && eval.IsUserAgentBlocked(opts.UserAgent) {
		return gwerrors.BlockedError("user agent %q is denylisted", opts.UserAgent)
	}
	if opts.ClientIP != "" {
		ip := net.ParseIP(opts.ClientIP)
		if ip != nil {
			if eval.IsIPBlocked(ip) {
				return gwerrors.BlockedError("client IP %q is denylisted", opts.ClientIP)
			}
			if opts.EvaluateASNBlocks && eval.IsIPBlockedByASN(ip) {
				return gwerrors.BlockedError("client IP %q is denylisted by ASN", opts.ClientIP)
			}
		}
	}
	return nil
}
