package cachestore

import (
	"context"
	"time"

	"github.com/spectra-red/cpe-discovery/internal/cpe"
	"github.com/surrealdb/surrealdb.go"
	"go.uber.org/zap"
)

// surrealQueryTimeout bounds a single cache round trip when the caller's
// context carries no deadline of its own (mirrors the teacher's
// internal/db.GraphQueryExecutor pattern).
const surrealQueryTimeout = 5 * time.Second

// cacheRecord is the SurrealDB row shape for a cached NVD catalog response.
type cacheRecord struct {
	Key        string           `json:"key"`
	Payload    cpe.CatalogResult `json:"payload"`
	InsertedAt time.Time        `json:"inserted_at"`
}

// SurrealStore is an optional cpe.CacheStore backend that persists NVD
// catalog responses in SurrealDB, so a long-lived Batch Discovery Workflow
// deployment (SPEC_FULL.md §9) keeps its cache warm across restarts. The
// default cpe.MemoryStore remains correct for a single process lifetime;
// this exists only for deployments where that lifetime is too short.
type SurrealStore struct {
	db     *surrealdb.DB
	table  string
	logger *zap.Logger
}

// NewSurrealStore wraps an already-connected SurrealDB handle. The caller
// is responsible for connecting and signing in, as newCacheStore in
// cmd/discoveryworkflow/main.go does.
func NewSurrealStore(db *surrealdb.DB, logger *zap.Logger) *SurrealStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SurrealStore{db: db, table: "nvd_cache_entry", logger: logger}
}

// Get implements cpe.CacheStore.
func (s *SurrealStore) Get(key string, ttl time.Duration) (cpe.CatalogResult, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), surrealQueryTimeout)
	defer cancel()

	query := "SELECT key, payload, inserted_at FROM type::table($table) WHERE key = $key LIMIT 1"
	result, err := surrealdb.Query[[]cacheRecord](ctx, s.db, query, map[string]interface{}{
		"table": s.table,
		"key":   key,
	})
	if err != nil {
		s.logger.Warn("surreal cache lookup failed", zap.String("key", key), zap.Error(err))
		return cpe.CatalogResult{}, false
	}

	records := extractRecords(result)
	if len(records) == 0 {
		return cpe.CatalogResult{}, false
	}

	entry := records[0]
	if time.Since(entry.InsertedAt) >= ttl {
		return cpe.CatalogResult{}, false
	}

	return entry.Payload, true
}

// Set implements cpe.CacheStore. It replaces any existing record for key
// with a fresh one stamped with the current time.
func (s *SurrealStore) Set(key string, payload cpe.CatalogResult) {
	ctx, cancel := context.WithTimeout(context.Background(), surrealQueryTimeout)
	defer cancel()

	query := `
		DELETE type::table($table) WHERE key = $key;
		CREATE type::table($table) CONTENT {
			key: $key,
			payload: $payload,
			inserted_at: $inserted_at
		};
	`
	_, err := surrealdb.Query[[]cacheRecord](ctx, s.db, query, map[string]interface{}{
		"table":       s.table,
		"key":         key,
		"payload":     payload,
		"inserted_at": time.Now(),
	})
	if err != nil {
		s.logger.Warn("surreal cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// extractRecords unwraps the []surrealdb.QueryResult[[]cacheRecord]
// envelope, matching internal/db.extractHostResults' handling of the
// teacher's surrealdb.go query API.
func extractRecords(results *[]surrealdb.QueryResult[[]cacheRecord]) []cacheRecord {
	if results == nil || len(*results) == 0 {
		return nil
	}
	first := (*results)[0]
	if first.Error != nil || first.Result == nil {
		return nil
	}
	return first.Result
}
