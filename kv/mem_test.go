package kv

import (
	"context"
	"testing"
)

func TestMemStoreGetMissing(t *testing.T) {
	s := NewMemStore()
	_, ok, err := s.Get(context.Background(), BlockedDataKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Errorf("ok = true for missing key, want false")
	}
}

func TestMemStoreSetGet(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	if err := s.Set(ctx, BlockedDataKey, []byte(`{"subjects":[]}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, BlockedDataKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("ok = false, want true")
	}
	if string(got) != `{"subjects":[]}` {
		t.Errorf("got %q", got)
	}
}
