// Package gatewayfe is the gateway's HTTP front end: it registers the
// token-validation and denylist-management routes and wraps each with the
// per-request cross-cutting behavior (timeouts, method enforcement,
// structured logging, metrics).
package gatewayfe

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/streamcat/authgateway/asnresolver"
	"github.com/streamcat/authgateway/catpipeline"
	"github.com/streamcat/authgateway/denylist"
	"github.com/streamcat/authgateway/metrics"
	"github.com/streamcat/authgateway/web"
)

const (
	validateSimplePath    = "/validate/simple"
	validatePath          = "/validate"
	testTokensPath        = "/api/tests/tokens"
	blockingDataPath      = "/api/blocking-data"
	blockingDataSimplePfx = "/api/blocking-data/simple/"
	blockingDataASNsPath  = "/api/blocking-data/asns"
)

// GatewayFrontEnd holds everything the HTTP handlers need: the validation
// pipeline, the denylist store they manage, a resolver for ASN-blocking
// requests, and the ambient logging/metrics/time dependencies.
type GatewayFrontEnd struct {
	Pipeline *catpipeline.Pipeline
	Store    *denylist.Store
	Resolver asnresolver.Resolver

	SigningKey        []byte
	EvaluateASNBlocks bool
	SubjectRequired   bool

	Stats          metrics.Scope
	Log            *zap.Logger
	Clk            clock.Clock
	RequestTimeout time.Duration
}

// gatewayHandlerFunc is the shape every route handler implements, given a
// pre-built request-scoped logging event.
type gatewayHandlerFunc func(ctx context.Context, logEvent *web.RequestEvent, w http.ResponseWriter, r *http.Request)

// HandleFunc registers h at pattern, wrapped with per-request timeout,
// method enforcement, no-cache header, and structured access logging -
// http.HandleFunc with the gateway's cross-cutting behavior applied.
func (gw *GatewayFrontEnd) HandleFunc(mux *http.ServeMux, pattern string, h gatewayHandlerFunc, methods ...string) {
	methodsMap := make(map[string]bool, len(methods))
	for _, m := range methods {
		methodsMap[m] = true
	}
	methodsStr := strings.Join(methods, ", ")

	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		logEvent := &web.RequestEvent{
			RequestID: uuid.NewString(),
			Method:    r.Method,
			Endpoint:  path.Join(pattern, r.URL.Path[len(pattern):]),
		}

		w.Header().Set("Cache-Control", "no-store")

		if !methodsMap[r.Method] {
			w.Header().Set("Allow", methodsStr)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		timeout := gw.RequestTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		begin := gw.Clk.Now()
		h(ctx, logEvent, w, r)
		gw.Stats.TimingDuration(metricNameFor(pattern), gw.Clk.Since(begin))
	})
}

func metricNameFor(pattern string) string {
	name := strings.Trim(pattern, "/")
	name = strings.ReplaceAll(name, "/", ".")
	if name == "" {
		name = "root"
	}
	return name + ".latency"
}

// Handler builds the *http.ServeMux serving every gateway route. Callers
// wrap it in the measured-HTTP and tracing middleware the ambient stack
// specifies.
func (gw *GatewayFrontEnd) Handler() *http.ServeMux {
	mux := http.NewServeMux()

	gw.HandleFunc(mux, validateSimplePath, gw.ValidateSimple, http.MethodPost)
	gw.HandleFunc(mux, validatePath, gw.Validate, http.MethodPost)
	gw.HandleFunc(mux, testTokensPath, gw.GenerateTestToken, http.MethodPost)
	gw.HandleFunc(mux, blockingDataPath, gw.GetBlockingData, http.MethodGet)
	gw.HandleFunc(mux, blockingDataSimplePfx, gw.BlockingDataSimple, http.MethodPost, http.MethodDelete)
	gw.HandleFunc(mux, blockingDataASNsPath, gw.BlockingDataASNs, http.MethodPost, http.MethodDelete)

	return mux
}
