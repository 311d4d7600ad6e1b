package cpe

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// stubSearcher answers QueryKeyword from a map of query->product-count, and
// fails any query that contains errOn when errOn is set.
type stubSearcher struct {
	byQuery map[string]int
	calls   []string
	errOn   string
}

func (s *stubSearcher) QueryKeyword(ctx context.Context, keyword string) (CatalogResult, error) {
	s.calls = append(s.calls, keyword)
	if s.errOn != "" && strings.Contains(keyword, s.errOn) {
		return CatalogResult{}, errors.New("boom")
	}
	n := s.byQuery[keyword]
	products := make([]CatalogProduct, n)
	return CatalogResult{TotalResults: n, Products: products}, nil
}

func TestBuildBaseQuery(t *testing.T) {
	tests := []struct {
		name  string
		asset ParsedAsset
		want  string
	}{
		{"vendor equals product", ParsedAsset{Vendor: "nginx", Product: "nginx"}, "nginx"},
		{"vendor and product differ", ParsedAsset{Vendor: "apache", Product: "http server"}, "apache http server"},
		{"both absent falls back to raw", ParsedAsset{Raw: "mystery box"}, "mystery box"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildBaseQuery(tt.asset); got != tt.want {
				t.Errorf("buildBaseQuery(%+v) = %q, want %q", tt.asset, got, tt.want)
			}
		})
	}
}

func TestNarrowReturnsBaseQueryWhenSmallEnough(t *testing.T) {
	searcher := &stubSearcher{byQuery: map[string]int{"nginx": 3}}
	asset := ParsedAsset{Vendor: "nginx", Product: "nginx", Raw: "nginx 1.24.0"}

	result, warning, fatal := narrow(context.Background(), asset, searcher, 10, QueryObserver{})

	if fatal != nil {
		t.Fatalf("unexpected fatal error: %v", fatal)
	}
	if warning != nil {
		t.Errorf("unexpected warning: %v", warning)
	}
	if result.TotalResults != 3 {
		t.Errorf("TotalResults = %d, want 3", result.TotalResults)
	}
	if len(searcher.calls) != 1 {
		t.Errorf("expected exactly one outbound call, got %d: %v", len(searcher.calls), searcher.calls)
	}
}

func TestNarrowVersionOvershootsToZeroBacksOff(t *testing.T) {
	searcher := &stubSearcher{byQuery: map[string]int{
		"ewon firmware":          20,
		"ewon firmware 10.0s0":   0,
	}}
	asset := ParsedAsset{Vendor: "ewon", Product: "firmware", Version: "10.0s0", VersionCandidates: []string{"10.0s0"}}

	result, warning, fatal := narrow(context.Background(), asset, searcher, 10, QueryObserver{})

	if fatal != nil {
		t.Fatalf("unexpected fatal error: %v", fatal)
	}
	if warning != nil {
		t.Errorf("unexpected warning: %v", warning)
	}
	if result.TotalResults != 20 {
		t.Errorf("TotalResults = %d, want 20 (base query result)", result.TotalResults)
	}
	if len(searcher.calls) != 2 {
		t.Errorf("expected exactly two outbound calls, got %d: %v", len(searcher.calls), searcher.calls)
	}
}

func TestNarrowIterativeNarrowingSucceeds(t *testing.T) {
	searcher := &stubSearcher{byQuery: map[string]int{
		"acme widget":       50,
		"acme widget 1":     30,
		"acme widget 1 1.2": 5,
	}}
	asset := ParsedAsset{
		Vendor:            "acme",
		Product:           "widget",
		VersionCandidates: []string{"1", "1.2"},
	}

	result, warning, fatal := narrow(context.Background(), asset, searcher, 10, QueryObserver{})

	if fatal != nil {
		t.Fatalf("unexpected fatal error: %v", fatal)
	}
	if warning != nil {
		t.Errorf("unexpected warning: %v", warning)
	}
	if result.TotalResults != 5 {
		t.Errorf("TotalResults = %d, want 5", result.TotalResults)
	}
}

func TestNarrowFatalOnBaseQueryFailure(t *testing.T) {
	searcher := &stubSearcher{errOn: "widget"}
	asset := ParsedAsset{Vendor: "acme", Product: "widget"}

	_, _, fatal := narrow(context.Background(), asset, searcher, 10, QueryObserver{})
	if fatal == nil {
		t.Fatal("expected fatal error when the base query itself fails")
	}
}

func TestNarrowExhaustsCandidatesWithWarning(t *testing.T) {
	searcher := &stubSearcher{byQuery: map[string]int{
		"acme widget":   50,
		"acme widget 1": 40,
	}}
	asset := ParsedAsset{
		Vendor:            "acme",
		Product:           "widget",
		VersionCandidates: []string{"1"},
	}

	result, warning, fatal := narrow(context.Background(), asset, searcher, 10, QueryObserver{})

	if fatal != nil {
		t.Fatalf("unexpected fatal error: %v", fatal)
	}
	if warning == nil {
		t.Fatal("expected a PartialNarrowing warning after exhausting candidates")
	}
	if result.TotalResults != 40 {
		t.Errorf("TotalResults = %d, want 40 (best-so-far)", result.TotalResults)
	}
}
