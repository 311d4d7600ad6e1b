package cpe

import (
	"context"
	"strings"
)

// KeywordSearcher is the narrow interface the orchestrator needs from the
// NVD Catalog Client (§4.F) — a single keyword query. *Client satisfies
// this; tests supply a stub.
type KeywordSearcher interface {
	QueryKeyword(ctx context.Context, keyword string) (CatalogResult, error)
}

// QueryObserver is notified before/after each outbound keyword search, used
// by the Discovery Pipeline (§4.J) to emit "searching" progress events.
// Either field may be nil.
type QueryObserver struct {
	OnQuery func(query string)
	OnResult func(query string, resultCount int)
}

func (o QueryObserver) notifyQuery(query string) {
	if o.OnQuery != nil {
		o.OnQuery(query)
	}
}

func (o QueryObserver) notifyResult(query string, n int) {
	if o.OnResult != nil {
		o.OnResult(query, n)
	}
}

// searchResult pairs the outcome of one narrowing step with the query text
// it was issued for, so the orchestrator can report the best-so-far set.
type searchResult struct {
	query  string
	result CatalogResult
}

// buildBaseQuery implements spec §4.G step 1.
func buildBaseQuery(asset ParsedAsset) string {
	switch {
	case asset.Vendor != "" && asset.Product != "" && asset.Vendor == asset.Product:
		return asset.Vendor
	case asset.Vendor != "" && asset.Product != "":
		return asset.Vendor + " " + asset.Product
	case asset.Vendor == "" && asset.Product == "":
		return asset.Raw
	case asset.Vendor != "":
		return asset.Vendor
	default:
		return asset.Product
	}
}

// narrow implements the Progressive Search Orchestrator of spec §4.G.
// Returns (result, warning, fatal): warning is a non-nil KindPartialNarrowing
// error when the caller should surface a warning phase event alongside a
// usable result; fatal is non-nil only when step 2 (the base query) itself
// failed, in which case result is meaningless.
func narrow(ctx context.Context, asset ParsedAsset, searcher KeywordSearcher, narrowTarget int, obs QueryObserver) (result CatalogResult, warning error, fatal error) {
	baseQuery := strings.TrimSpace(buildBaseQuery(asset))
	if baseQuery == "" {
		baseQuery = asset.Raw
	}

	r0, err := doSearch(ctx, searcher, baseQuery, obs)
	if err != nil {
		return CatalogResult{}, nil, err
	}

	if len(r0.Products) <= narrowTarget {
		if len(r0.Products) == 0 {
			return CatalogResult{}, nil, nil
		}
		return r0, nil, nil
	}

	if asset.HasVersion() {
		vq := baseQuery + " " + asset.Version
		rv, err := doSearch(ctx, searcher, vq, obs)
		if err != nil {
			return r0, newError(KindPartialNarrowing, "version-augmented search failed; returning base result", err), nil
		}
		switch {
		case len(rv.Products) == 0:
			return r0, nil, nil
		case len(rv.Products) <= narrowTarget:
			return rv, nil, nil
		}
		// else fall through to iterative narrowing below, starting from r0
	}

	if len(asset.VersionCandidates) == 0 {
		return r0, nil, nil
	}

	current := searchResult{query: baseQuery, result: r0}
	q := baseQuery

	for _, c := range asset.VersionCandidates {
		q = q + " " + c
		rn, err := doSearch(ctx, searcher, q, obs)
		if err != nil {
			return current.result, newError(KindPartialNarrowing, "narrowing search failed mid-stream; returning best set so far", err), nil
		}

		switch {
		case len(rn.Products) == 0:
			return current.result, nil, nil
		case len(rn.Products) <= narrowTarget:
			return rn, nil, nil
		default:
			current = searchResult{query: q, result: rn}
		}
	}

	return current.result, newError(KindPartialNarrowing, "exhausted version candidates without reaching narrow target", nil), nil
}

// doSearch issues one keyword search and notifies obs before and after.
func doSearch(ctx context.Context, searcher KeywordSearcher, query string, obs QueryObserver) (CatalogResult, error) {
	obs.notifyQuery(query)
	result, err := searcher.QueryKeyword(ctx, query)
	if err != nil {
		return CatalogResult{}, err
	}
	obs.notifyResult(query, len(result.Products))
	return result, nil
}
