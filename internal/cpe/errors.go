package cpe

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the error taxonomy of spec §7. The kind, not the
// Go type, is what callers switch on.
type ErrorKind string

const (
	// KindInvalidInput covers invalid caller input; NewPipeline uses it for
	// a configuration that fails validation. A too-short asset name is
	// reported as an error event without a kind, and an out-of-range topN
	// is clamped rather than rejected.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindInvalidCpeFormat covers CPE 2.2 prefixes, missing vendor, bad part.
	KindInvalidCpeFormat ErrorKind = "invalid_cpe_format"
	// KindUpstreamUnavailable covers network errors, non-2xx, timeouts.
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	// KindUpstreamMalformed covers JSON decode failures and missing fields.
	KindUpstreamMalformed ErrorKind = "upstream_malformed"
	// KindPartialNarrowing marks a non-fatal orchestrator degradation.
	KindPartialNarrowing ErrorKind = "partial_narrowing"
	// KindCancelled marks consumer-initiated cancellation.
	KindCancelled ErrorKind = "cancelled"
)

// PipelineError is the error type returned by the Client, the Gate and
// NewPipeline. Discover returns a plain error built from the terminal event
// message, and Config.Validate returns a plain formatted error. Kind is
// stable and intended for programmatic dispatch;
// Message is human-readable.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error // wrapped cause, if any
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Is supports errors.Is comparisons against a PipelineError with the same
// Kind, ignoring Message/Err — e.g. errors.Is(err, cpe.ErrUpstreamUnavailable).
func (e *PipelineError) Is(target error) bool {
	var pe *PipelineError
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Kind == e.Kind && pe.Message == "" && pe.Err == nil
}

// Sentinel kind markers for errors.Is comparisons (Message/Err left empty
// so PipelineError.Is matches on Kind alone).
var (
	ErrInvalidInput       = &PipelineError{Kind: KindInvalidInput}
	ErrInvalidCpeFormat   = &PipelineError{Kind: KindInvalidCpeFormat}
	ErrUpstreamUnavailable = &PipelineError{Kind: KindUpstreamUnavailable}
	ErrUpstreamMalformed  = &PipelineError{Kind: KindUpstreamMalformed}
	ErrPartialNarrowing   = &PipelineError{Kind: KindPartialNarrowing}
	ErrCancelled          = &PipelineError{Kind: KindCancelled}
)

// newError constructs a PipelineError with a wrapped cause.
func newError(kind ErrorKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: cause}
}
