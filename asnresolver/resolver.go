// Package asnresolver resolves autonomous system numbers to their
// announced CIDR ranges via an external HTTP service, fanning requests out
// in parallel and failing the whole batch if any one lookup fails, so the
// denylist store is never updated with a partial resolution.
package asnresolver

import "context"

// Resolver resolves a batch of ASNs to their CIDR ranges.
type Resolver interface {
	// Resolve returns a map from ASN to its CIDR ranges. If any ASN in
	// asns cannot be resolved, Resolve returns a ResolverFailure error and
	// no partial map.
	Resolve(ctx context.Context, asns []uint32) (map[uint32][]string, error)
}
