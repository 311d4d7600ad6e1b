package cpe

import (
	"context"
	"testing"
	"time"
)

func TestGateFetchCachesResult(t *testing.T) {
	gate := NewGate(10*time.Millisecond, time.Minute, NewMemoryStore(), nil)

	calls := 0
	fetch := func(ctx context.Context) (CatalogResult, error) {
		calls++
		return CatalogResult{TotalResults: calls}, nil
	}

	first, err := gate.Fetch(context.Background(), "", "nginx", fetch)
	if err != nil {
		t.Fatalf("first Fetch() error: %v", err)
	}
	second, err := gate.Fetch(context.Background(), "", "nginx", fetch)
	if err != nil {
		t.Fatalf("second Fetch() error: %v", err)
	}

	if calls != 1 {
		t.Errorf("fetch called %d times, want 1 (second call should be served from cache)", calls)
	}
	if first.TotalResults != second.TotalResults {
		t.Errorf("cached result mismatch: %+v vs %+v", first, second)
	}
}

func TestGateFetchDistinctKeysBothCallFetch(t *testing.T) {
	gate := NewGate(time.Millisecond, time.Minute, NewMemoryStore(), nil)

	calls := 0
	fetch := func(ctx context.Context) (CatalogResult, error) {
		calls++
		return CatalogResult{}, nil
	}

	if _, err := gate.Fetch(context.Background(), "", "nginx", fetch); err != nil {
		t.Fatal(err)
	}
	if _, err := gate.Fetch(context.Background(), "", "apache", fetch); err != nil {
		t.Fatal(err)
	}

	if calls != 2 {
		t.Errorf("fetch called %d times, want 2", calls)
	}
}

func TestGateFetchCancellation(t *testing.T) {
	gate := NewGate(time.Hour, time.Minute, NewMemoryStore(), nil)

	// Prime the limiter so the next Wait() actually blocks.
	_, _ = gate.Fetch(context.Background(), "", "first", func(ctx context.Context) (CatalogResult, error) {
		return CatalogResult{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gate.Fetch(ctx, "", "second", func(ctx context.Context) (CatalogResult, error) {
		t.Fatal("fetch should not be called when the wait is already cancelled")
		return CatalogResult{}, nil
	})

	if err == nil {
		t.Fatal("expected an error for a cancelled wait")
	}
}
