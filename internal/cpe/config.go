package cpe

import (
	"fmt"
	"time"
)

// Default values for the configuration surface described in spec §6.
const (
	DefaultMinInterval  = 6 * time.Second
	DefaultCacheTTL     = 5 * time.Minute
	DefaultNarrowTarget = 10
	DefaultTopN         = 5
	MaxTopN             = 20

	// apiKeyMinInterval is the recommended gap when an NVD API key is
	// configured (spec §6: "allows the caller to lower MIN_INTERVAL").
	apiKeyMinInterval = 600 * time.Millisecond
)

// ScoringWeights are the four weights applied by the Scoring Engine (§4.H).
// They must sum to 1.0.
type ScoringWeights struct {
	Vendor       float64
	Product      float64
	Version      float64
	TokenOverlap float64
}

// DefaultScoringWeights returns the weights specified in spec §4.H.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Vendor:       0.25,
		Product:      0.35,
		Version:      0.25,
		TokenOverlap: 0.15,
	}
}

// Sum returns the sum of the four weights, used for validation.
func (w ScoringWeights) Sum() float64 {
	return w.Vendor + w.Product + w.Version + w.TokenOverlap
}

// Config holds the full configuration surface of spec §6.
type Config struct {
	// NVDAPIKey is the NVD API key. When it is set and MinInterval is zero,
	// normalize uses the shorter authenticated interval.
	NVDAPIKey string
	// MinInterval is the minimum gap between outbound NVD calls.
	MinInterval time.Duration
	// CacheTTL is how long a cached NVD response remains fresh.
	CacheTTL time.Duration
	// NarrowTarget is the target upper bound on "good" result sets (§4.G).
	NarrowTarget int
	// Weights are the scoring weights (§4.H). Must sum to 1.0.
	Weights ScoringWeights
	// MaxTopN is the hard cap on caller-specified topN (§4.I).
	MaxTopN int
	// RequestTimeout is the per-call upstream timeout value (default 30s).
	// Neither Pipeline nor Client applies it; outbound calls are bounded only
	// by the caller's context and the http.Client passed to NewClient.
	RequestTimeout time.Duration
}

// DefaultConfig returns the configuration spec §6 describes as defaults.
func DefaultConfig() Config {
	return Config{
		MinInterval:    DefaultMinInterval,
		CacheTTL:       DefaultCacheTTL,
		NarrowTarget:   DefaultNarrowTarget,
		Weights:        DefaultScoringWeights(),
		MaxTopN:        MaxTopN,
		RequestTimeout: 30 * time.Second,
	}
}

// normalize fills in zero-valued fields with defaults. A zero MinInterval
// becomes the shorter authenticated interval when an API key is present,
// and the public-rate default otherwise; a non-zero MinInterval is kept.
func (c Config) normalize() Config {
	defaults := DefaultConfig()

	if c.MinInterval == 0 {
		if c.NVDAPIKey != "" {
			c.MinInterval = apiKeyMinInterval
		} else {
			c.MinInterval = defaults.MinInterval
		}
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = defaults.CacheTTL
	}
	if c.NarrowTarget == 0 {
		c.NarrowTarget = defaults.NarrowTarget
	}
	if c.Weights.Sum() == 0 {
		c.Weights = defaults.Weights
	}
	if c.MaxTopN == 0 {
		c.MaxTopN = defaults.MaxTopN
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	return c
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	const epsilon = 1e-9
	sum := c.Weights.Sum()
	if sum != 0 {
		if diff := sum - 1.0; diff < -epsilon || diff > epsilon {
			return fmt.Errorf("scoring weights must sum to 1.0, got %f", sum)
		}
	}
	if c.NarrowTarget < 0 {
		return fmt.Errorf("search.narrowTarget cannot be negative")
	}
	if c.MaxTopN < 0 {
		return fmt.Errorf("ranking.topN.max cannot be negative")
	}
	return nil
}
