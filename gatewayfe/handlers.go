package gatewayfe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/streamcat/authgateway/cat"
	"github.com/streamcat/authgateway/catpipeline"
	"github.com/streamcat/authgateway/cborval"
	"github.com/streamcat/authgateway/denylist"
	gwerrors "github.com/streamcat/authgateway/errors"
	"github.com/streamcat/authgateway/web"
)

const problemNamespace = "streamcat-gateway:"

func (gw *GatewayFrontEnd) sendError(w http.ResponseWriter, logEvent *web.RequestEvent, err error) {
	prob := web.ProblemDetailsForError(err, problemNamespace)
	web.SendError(gw.Log, problemNamespace, w, logEvent, prob, err)
}

func (gw *GatewayFrontEnd) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeRequest(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return gwerrors.BadRequestError("decoding request body: %v", err)
	}
	if err := validate.Struct(v); err != nil {
		return gwerrors.BadRequestError("validating request body: %v", err)
	}
	return nil
}

// decodeToken decodes a base64url token, tolerating both the padded and
// unpadded encodings (spec §6 pins "base64url" but not its padding).
func decodeToken(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

func (gw *GatewayFrontEnd) validateOptionsFrom(req ValidateTokenRequest, skipDenylist bool) (catpipeline.Options, error) {
	var requestURI *url.URL
	if req.URL != "" {
		u, err := url.Parse(req.URL)
		if err != nil {
			return catpipeline.Options{}, gwerrors.BadRequestError("url: %v", err)
		}
		requestURI = u
	}

	headers := req.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	userAgent := ""
	for k, v := range headers {
		if strings.EqualFold(k, "User-Agent") {
			userAgent = v
			break
		}
	}

	return catpipeline.Options{
		SigningKey:         gw.SigningKey,
		Clock:              gw.Clk,
		ExpectedIssuer:     req.Issuer,
		ExpectedAudience:   stringOrEmpty(req.Audience),
		RequestURI:         requestURI,
		RequestMethod:      strings.ToUpper(req.Method),
		ClientIP:           req.ClientIP,
		ClientCountry:      stringOrEmpty(req.Country),
		UserAgent:          userAgent,
		Headers:            headers,
		ValidateExpiration: boolOrDefault(req.ValidateExpiration, true),
		ValidateNotBefore:  boolOrDefault(req.ValidateNotBefore, true),
		SkipDenylist:       skipDenylist,
		EvaluateASNBlocks:  gw.EvaluateASNBlocks,
		SubjectRequired:    gw.SubjectRequired,
	}, nil
}

func (gw *GatewayFrontEnd) handleValidate(ctx context.Context, logEvent *web.RequestEvent, w http.ResponseWriter, r *http.Request, skipDenylist bool) {
	var req ValidateTokenRequest
	if err := decodeRequest(r, &req); err != nil {
		gw.sendError(w, logEvent, err)
		return
	}
	tokenBytes, err := decodeToken(req.Token)
	if err != nil {
		gw.sendError(w, logEvent, gwerrors.BadRequestError("token is not valid base64url: %v", err))
		return
	}

	opts, err := gw.validateOptionsFrom(req, skipDenylist)
	if err != nil {
		gw.sendError(w, logEvent, err)
		return
	}

	tok, err := gw.Pipeline.Validate(ctx, tokenBytes, opts)
	if err != nil {
		gw.Stats.IncResult("validate", resultForError(err))
		gw.sendError(w, logEvent, err)
		return
	}
	gw.Stats.IncResult("validate", "allowed")
	rc, _ := tok.RegisteredClaims()
	gw.writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Subject: rc.Subject})
}

// resultForError reduces a validation failure to the label IncResult
// records it under - the error's Kind if it's a *gwerrors.GatewayError,
// otherwise "internal".
func resultForError(err error) string {
	gErr, ok := err.(*gwerrors.GatewayError)
	if !ok {
		return "internal"
	}
	return gErr.Kind.String()
}

// ValidateSimple handles POST /validate/simple: the denylist step is
// skipped (§4.G's "simple" construction mode sets skip_kv_validations);
// registered-claim and custom-claim checks still run.
func (gw *GatewayFrontEnd) ValidateSimple(ctx context.Context, logEvent *web.RequestEvent, w http.ResponseWriter, r *http.Request) {
	gw.handleValidate(ctx, logEvent, w, r, true)
}

// Validate handles POST /validate: the full pipeline, denylist included.
func (gw *GatewayFrontEnd) Validate(ctx context.Context, logEvent *web.RequestEvent, w http.ResponseWriter, r *http.Request) {
	gw.handleValidate(ctx, logEvent, w, r, false)
}

// testTokenScheme, testTokenHost, testTokenPathPfx, and
// testTokenExtension fix the CATU claim generate_test_token mints, mirroring
// original_source's handlers.rs literally rather than taking them from the
// request body. testTokenExtension omits its leading dot: VerifyURI compares
// it against path.Ext with the dot already stripped.
const (
	testTokenScheme    = "https"
	testTokenHost      = "my-streaming.api"
	testTokenPathPfx   = "/media"
	testTokenExtension = "mp4"
)

// GenerateTestToken handles POST /api/tests/tokens: mints a token shaped
// like original_source's generate_test_token, signed with the gateway's
// own signing key so it can round-trip through /validate.
func (gw *GatewayFrontEnd) GenerateTestToken(ctx context.Context, logEvent *web.RequestEvent, w http.ResponseWriter, r *http.Request) {
	var req GenerateTokenRequest
	if err := decodeRequest(r, &req); err != nil {
		gw.sendError(w, logEvent, err)
		return
	}

	now := gw.Clk.Now()
	rc := cat.RegisteredClaims{
		Issuer:     req.Issuer,
		Subject:    req.Subject,
		Audience:   req.Audience,
		Expiration: now.Unix() + req.ExpirationInHours*3600,
		NotBefore:  now.Unix(),
		IssuedAt:   now.Unix(),
		CWTID:      req.TokenIdentifier,
	}
	data, err := cat.NewBuilder(rc).
		WithVersion(1).
		WithURIComponent(cat.URIComponentScheme, cborval.MatchExact, testTokenScheme).
		WithURIComponent(cat.URIComponentHost, cborval.MatchExact, testTokenHost).
		WithURIComponent(cat.URIComponentPath, cborval.MatchPrefix, testTokenPathPfx).
		WithURIComponent(cat.URIComponentExtension, cborval.MatchExact, testTokenExtension).
		WithMethods(http.MethodGet).
		WithCountries(req.Countries...).
		WithHeaderMatch(0, "User-Agent", cborval.MatchContains, "Mozilla").
		WithHeaderMatch(1, "X-FWF-Custom-Header", cborval.MatchExact, "Lorem").
		Sign(gw.SigningKey)
	if err != nil {
		gw.sendError(w, logEvent, gwerrors.TokenDecodeError("minting test token: %v", err))
		return
	}
	gw.writeJSON(w, http.StatusOK, GenerateTokenResponse{Token: base64.RawURLEncoding.EncodeToString(data)})
}

// GetBlockingData handles GET /api/blocking-data.
func (gw *GatewayFrontEnd) GetBlockingData(ctx context.Context, logEvent *web.RequestEvent, w http.ResponseWriter, r *http.Request) {
	bd, err := gw.Store.Get(ctx)
	if err != nil {
		gw.sendError(w, logEvent, gwerrors.PersistenceFailureError("%v", err))
		return
	}
	gw.writeJSON(w, http.StatusOK, bd)
}

// simpleKindFromPath maps the case-insensitive :kind path segment to its
// canonical denylist.SimpleKind, per spec §6's {SUBJECT, COUNTRY, CIDR,
// USERAGENT} set.
func simpleKindFromPath(raw string) (denylist.SimpleKind, bool) {
	switch strings.ToUpper(raw) {
	case "SUBJECT":
		return denylist.KindSubjects, true
	case "COUNTRY":
		return denylist.KindCountries, true
	case "CIDR":
		return denylist.KindCIDRs, true
	case "USERAGENT":
		return denylist.KindUserAgents, true
	default:
		return "", false
	}
}

// BlockingDataSimple handles POST/DELETE /api/blocking-data/simple/:kind.
func (gw *GatewayFrontEnd) BlockingDataSimple(ctx context.Context, logEvent *web.RequestEvent, w http.ResponseWriter, r *http.Request) {
	kind, ok := simpleKindFromPath(r.URL.Path[len(blockingDataSimplePfx):])
	if !ok {
		gw.sendError(w, logEvent, gwerrors.BadRequestError("unknown blocklist kind %q", r.URL.Path[len(blockingDataSimplePfx):]))
		return
	}

	var req SimpleBlockRequest
	if err := decodeRequest(r, &req); err != nil {
		gw.sendError(w, logEvent, err)
		return
	}

	for _, value := range req.Values {
		var err error
		if r.Method == http.MethodDelete {
			err = gw.Store.RemoveSimple(ctx, kind, value)
		} else {
			err = gw.Store.AddSimple(ctx, kind, value)
		}
		if err != nil {
			gw.sendError(w, logEvent, gwerrors.PersistenceFailureError("%v", err))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// BlockingDataASNs handles POST/DELETE /api/blocking-data/asns. On POST, it
// drops any ASN already blocked before resolving the rest, so re-adding an
// already-blocked ASN costs no resolver call, then resolves every
// remaining ASN to its CIDR ranges before touching the store, so a single
// failed resolution never leaves the denylist partially updated.
func (gw *GatewayFrontEnd) BlockingDataASNs(ctx context.Context, logEvent *web.RequestEvent, w http.ResponseWriter, r *http.Request) {
	var req ASNBlockRequest
	if err := decodeRequest(r, &req); err != nil {
		gw.sendError(w, logEvent, err)
		return
	}

	if r.Method == http.MethodDelete {
		if err := gw.Store.RemoveASNs(ctx, req.Values); err != nil {
			gw.sendError(w, logEvent, gwerrors.PersistenceFailureError("%v", err))
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	fresh, err := gw.Store.NewASNs(ctx, req.Values)
	if err != nil {
		gw.sendError(w, logEvent, gwerrors.PersistenceFailureError("%v", err))
		return
	}
	if len(fresh) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	resolved, err := gw.Resolver.Resolve(ctx, fresh)
	if err != nil {
		gw.sendError(w, logEvent, err)
		return
	}
	if err := gw.Store.AddASNs(ctx, resolved); err != nil {
		gw.sendError(w, logEvent, gwerrors.PersistenceFailureError("%v", err))
		return
	}
	w.WriteHeader(http.StatusOK)
}
