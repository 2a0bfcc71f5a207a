package gate

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingResolver struct{ calls int }

func (f *failingResolver) Resolve(context.Context, uint) (Profile, error) {
	f.calls++
	return nil, errors.New("db down")
}

func TestCachedResolverServesStaleUntilTTL(t *testing.T) {
	inner := NewStaticResolver[uint]()
	inner.Set(1, NewStaticProfile(1, "viewer"))

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cached := NewCachedResolver[uint](inner, time.Minute)
	cached.now = func() time.Time { return clock }

	p, err := cached.Resolve(context.Background(), 1)
	if err != nil || p.Name() != "viewer" {
		t.Fatalf("first resolve: %v %v", p, err)
	}

	inner.Set(1, NewStaticProfile(1, "stock_clerk"))
	p, _ = cached.Resolve(context.Background(), 1)
	if p.Name() != "viewer" {
		t.Fatalf("expected cached viewer, got %s", p.Name())
	}

	clock = clock.Add(2 * time.Minute)
	p, _ = cached.Resolve(context.Background(), 1)
	if p.Name() != "stock_clerk" {
		t.Fatalf("expected refreshed stock_clerk after ttl, got %s", p.Name())
	}
}

func TestCachedResolverInvalidate(t *testing.T) {
	inner := NewStaticResolver[uint]()
	inner.Set(1, NewStaticProfile(1, "viewer"))
	inner.Set(2, NewStaticProfile(2, "viewer"))
	cached := NewCachedResolver[uint](inner, time.Hour)

	_, _ = cached.Resolve(context.Background(), 1)
	_, _ = cached.Resolve(context.Background(), 2)
	inner.Set(1, NewStaticProfile(1, "admin"))
	inner.Set(2, NewStaticProfile(2, "admin"))

	cached.Invalidate(1)
	p1, _ := cached.Resolve(context.Background(), 1)
	p2, _ := cached.Resolve(context.Background(), 2)
	if p1.Name() != "admin" {
		t.Errorf("user 1 should be refreshed, got %s", p1.Name())
	}
	if p2.Name() != "viewer" {
		t.Errorf("user 2 should still be cached, got %s", p2.Name())
	}

	cached.InvalidateAll()
	p2, _ = cached.Resolve(context.Background(), 2)
	if p2.Name() != "admin" {
		t.Errorf("user 2 should be refreshed after InvalidateAll, got %s", p2.Name())
	}
}

func TestCachedResolverDoesNotCacheErrors(t *testing.T) {
	inner := &failingResolver{}
	cached := NewCachedResolver[uint](inner, time.Hour)
	for i := 0; i < 2; i++ {
		if _, err := cached.Resolve(context.Background(), 7); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected every call to reach the inner resolver, got %d", inner.calls)
	}
}
