package asnresolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	gwerrors "github.com/streamcat/authgateway/errors"
)

// HTTPResolver resolves ASNs against an external lookup service reachable
// at BaseURL + "/asn/{asn}", expected to respond with a JSON array of CIDR
// strings.
type HTTPResolver struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPResolver builds an HTTPResolver with a default *http.Client.
func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{BaseURL: baseURL, Client: http.DefaultClient}
}

func (r *HTTPResolver) Resolve(ctx context.Context, asns []uint32) (map[uint32][]string, error) {
	results := make(map[uint32][]string, len(asns))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, asn := range asns {
		asn := asn
		g.Go(func() error {
			cidrs, err := r.resolveOne(gctx, asn)
			if err != nil {
				return err
			}
			mu.Lock()
			results[asn] = cidrs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Fail fast: any single resolution failure discards the whole
		// batch rather than handing back a partial map for the caller to
		// half-apply.
		return nil, gwerrors.ResolverFailureError("resolving ASNs: %v", err)
	}
	return results, nil
}

func (r *HTTPResolver) resolveOne(ctx context.Context, asn uint32) ([]string, error) {
	url := fmt.Sprintf("%s/asn/%d", r.BaseURL, asn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("asnresolver: building request for AS%d: %w", asn, err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asnresolver: resolving AS%d: %w", asn, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asnresolver: AS%d: upstream returned %d", asn, resp.StatusCode)
	}
	var cidrs []string
	if err := json.NewDecoder(resp.Body).Decode(&cidrs); err != nil {
		return nil, fmt.Errorf("asnresolver: decoding response for AS%d: %w", asn, err)
	}
	return cidrs, nil
}
