package denylist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streamcat/authgateway/kv"
)

// SimpleKind is one of the four flat blocklist dimensions addressable by
// the /api/blocking-data/simple/:kind routes.
type SimpleKind string

const (
	KindSubjects   SimpleKind = "subjects"
	KindCountries  SimpleKind = "countries"
	KindCIDRs      SimpleKind = "cidrs"
	KindUserAgents SimpleKind = "user_agents"
)

// Store is the denylist's persistence layer: it loads the whole
// BlockedData blob fresh on every call (per kv.Store's contract), mutates
// it, and writes the whole blob back. There is no long-lived in-memory
// copy shared across requests.
type Store struct {
	kv kv.Store
}

// NewStore wraps a kv.Store as a denylist Store.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Get loads the current BlockedData, returning an empty, optimized
// BlockedData if nothing has been stored yet.
func (s *Store) Get(ctx context.Context) (*BlockedData, error) {
	raw, ok, err := s.kv.Get(ctx, kv.BlockedDataKey)
	if err != nil {
		return nil, fmt.Errorf("denylist: loading blocked data: %w", err)
	}
	if !ok {
		return New(), nil
	}
	bd := &BlockedData{}
	if err := json.Unmarshal(raw, bd); err != nil {
		return nil, fmt.Errorf("denylist: decoding blocked data: %w", err)
	}
	bd.optimize()
	return bd, nil
}

func (s *Store) save(ctx context.Context, bd *BlockedData) error {
	bd.optimize()
	raw, err := json.Marshal(bd)
	if err != nil {
		return fmt.Errorf("denylist: encoding blocked data: %w", err)
	}
	if err := s.kv.Set(ctx, kv.BlockedDataKey, raw); err != nil {
		return fmt.Errorf("denylist: saving blocked data: %w", err)
	}
	return nil
}

func (k SimpleKind) slice(bd *BlockedData) *[]string {
	switch k {
	case KindSubjects:
		return &bd.Subjects
	case KindCountries:
		return &bd.Countries
	case KindCIDRs:
		return &bd.CIDRs
	case KindUserAgents:
		return &bd.UserAgents
	default:
		return nil
	}
}

// AddSimple adds value to the named simple list, if it isn't already
// present.
func (s *Store) AddSimple(ctx context.Context, kind SimpleKind, value string) error {
	bd, err := s.Get(ctx)
	if err != nil {
		return err
	}
	slice := kind.slice(bd)
	if slice == nil {
		return fmt.Errorf("denylist: unknown simple kind %q", kind)
	}
	*slice, _ = insertSorted(*slice, value)
	return s.save(ctx, bd)
}

// RemoveSimple removes value from the named simple list, if present.
func (s *Store) RemoveSimple(ctx context.Context, kind SimpleKind, value string) error {
	bd, err := s.Get(ctx)
	if err != nil {
		return err
	}
	slice := kind.slice(bd)
	if slice == nil {
		return fmt.Errorf("denylist: unknown simple kind %q", kind)
	}
	*slice, _ = removeSorted(*slice, value)
	return s.save(ctx, bd)
}

// NewASNs filters asns down to the ones not already blocked, preserving
// order. Callers resolve only what this returns, so re-adding an
// already-blocked ASN never costs a resolver call.
func (s *Store) NewASNs(ctx context.Context, asns []uint32) ([]uint32, error) {
	bd, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	fresh := make([]uint32, 0, len(asns))
	for _, asn := range asns {
		if !bd.ContainsASN(asn) {
			fresh = append(fresh, asn)
		}
	}
	return fresh, nil
}

// AddASNs adds or replaces blocked ASNs, keyed by ASN number, each already
// resolved to its CIDR ranges. Callers are expected to resolve every ASN
// before calling this (see asnresolver), so a resolution failure never
// leaves the store partially updated: either all of resolved is committed,
// or none of it is.
func (s *Store) AddASNs(ctx context.Context, resolved map[uint32][]string) error {
	bd, err := s.Get(ctx)
	if err != nil {
		return err
	}
	for asn, cidrs := range resolved {
		bd.Asns = insertAsn(bd.Asns, asn, cidrs)
	}
	return s.save(ctx, bd)
}

// RemoveASNs removes the given ASNs from the blocklist, if present.
func (s *Store) RemoveASNs(ctx context.Context, asns []uint32) error {
	bd, err := s.Get(ctx)
	if err != nil {
		return err
	}
	for _, asn := range asns {
		bd.Asns, _ = removeAsn(bd.Asns, asn)
	}
	return s.save(ctx, bd)
}
