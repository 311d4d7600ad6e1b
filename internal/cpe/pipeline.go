package cpe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event kinds for ProgressEvent (spec §3).
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventCompleted EventKind = "completed"
	EventError     EventKind = "error"
)

// Phases, in emission order (spec §3/§4.J). "warning" is not part of the
// canonical phase set the spec enumerates in §3, but §4.G/§7 both call for
// a non-fatal warning notification when narrowing falls back to a
// best-effort result; this implementation folds that into a "progress"
// event on the "searching" phase rather than inventing a sixth phase, to
// keep §8's phase-monotonicity invariant simple to state and test.
const (
	PhaseParsing   = "parsing"
	PhaseSearching = "searching"
	PhaseScoring   = "scoring"
	PhaseRanking   = "ranking"
	PhaseCompleted = "completed"
	PhaseError     = "error"
)

// ProgressEvent is a single tagged record emitted on a pipeline's progress
// channel (spec §3). RunID correlates every event from one FindCpe call,
// so a caller fanning out many concurrent discoveries (e.g. the Batch
// Discovery Workflow's progress logging) can demultiplex them.
type ProgressEvent struct {
	RunID   string
	Kind    EventKind
	Phase   string
	Message string
	Payload interface{}
}

// FindCpeResult is the payload of the terminal "completed" event (spec §6).
type FindCpeResult struct {
	Parsed      ParsedAsset
	Candidates  []CpeCandidate
	Count       int
	TotalFound  int
}

// progressChannelBuffer bounds the progress channel (spec §5 backpressure:
// producer blocks rather than drops once the buffer is full).
const progressChannelBuffer = 8

// Pipeline is the Discovery Pipeline of spec §4.J: composes the parser,
// orchestrator, scorer, and ranker, and multiplexes progress notifications.
type Pipeline struct {
	client KeywordSearcher
	config Config
	logger *zap.Logger
}

// NewPipeline constructs a Pipeline. client performs all outbound NVD
// calls (normally a *Client; tests may inject any KeywordSearcher); config
// is normalized and validated eagerly so construction fails fast on a bad
// configuration.
func NewPipeline(client KeywordSearcher, config Config, logger *zap.Logger) (*Pipeline, error) {
	config = config.normalize()
	if err := config.Validate(); err != nil {
		return nil, newError(KindInvalidInput, "invalid pipeline configuration", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{client: client, config: config, logger: logger}, nil
}

// FindCpe is the findCpe entry point of spec §6.1. It returns immediately
// with a channel; the pipeline runs in a background goroutine and closes
// the channel after emitting a terminal "completed" or "error" event.
func (p *Pipeline) FindCpe(ctx context.Context, assetName string, topN int) <-chan ProgressEvent {
	events := make(chan ProgressEvent, progressChannelBuffer)

	trimmed := strings.TrimSpace(assetName)
	if len(trimmed) < 2 {
		go func() {
			defer close(events)
			emit(ctx, events, ProgressEvent{
				RunID:   uuid.NewString(),
				Kind:    EventError,
				Phase:   PhaseError,
				Message: "assetName must be non-empty and at least 2 characters after trimming",
			})
		}()
		return events
	}

	n := clampTopN(topN, p.config.MaxTopN)
	runID := uuid.NewString()

	go p.run(ctx, events, runID, trimmed, n)

	return events
}

// run is the pipeline body, executed on its own goroutine.
func (p *Pipeline) run(ctx context.Context, events chan ProgressEvent, runID, assetName string, topN int) {
	defer close(events)

	if !emit(ctx, events, ProgressEvent{RunID: runID, Kind: EventProgress, Phase: PhaseParsing, Message: "Parsing asset name…"}) {
		return
	}

	asset := ParseAsset(assetName)

	obs := QueryObserver{
		OnQuery: func(query string) {
			emit(ctx, events, ProgressEvent{
				RunID:   runID,
				Kind:    EventProgress,
				Phase:   PhaseSearching,
				Message: fmt.Sprintf("Searching catalog for %q…", query),
			})
		},
		OnResult: func(query string, n int) {
			emit(ctx, events, ProgressEvent{
				RunID:   runID,
				Kind:    EventProgress,
				Phase:   PhaseSearching,
				Message: fmt.Sprintf("Query %q returned %d result(s)", query, n),
			})
		},
	}

	result, warning, fatal := narrow(ctx, asset, p.client, p.config.NarrowTarget, obs)
	if fatal != nil {
		emit(ctx, events, ProgressEvent{RunID: runID, Kind: EventError, Phase: PhaseError, Message: fatal.Error()})
		return
	}
	if warning != nil {
		emit(ctx, events, ProgressEvent{RunID: runID, Kind: EventProgress, Phase: PhaseSearching, Message: warning.Error()})
	}

	if !emit(ctx, events, ProgressEvent{
		RunID:   runID,
		Kind:    EventProgress,
		Phase:   PhaseScoring,
		Message: fmt.Sprintf("Scoring %d candidates…", len(result.Products)),
	}) {
		return
	}

	candidates := make([]CpeCandidate, 0, len(result.Products))
	for _, product := range result.Products {
		deconstructed := Deconstruct(product.CPEName)
		breakdown := score(asset, deconstructed)
		candidates = append(candidates, CpeCandidate{
			CPEName:        product.CPEName,
			CPENameID:      product.CPENameID,
			Title:          product.Title,
			Deprecated:     product.Deprecated,
			Deconstructed:  deconstructed,
			Score:          breakdown,
			CompositeScore: breakdown.Composite(p.config.Weights),
		})
	}

	ranked := rank(candidates, topN)

	emit(ctx, events, ProgressEvent{
		RunID:   runID,
		Kind:    EventCompleted,
		Phase:   PhaseCompleted,
		Message: fmt.Sprintf("Top %d selected from %d candidates", len(ranked), len(candidates)),
		Payload: FindCpeResult{
			Parsed:     asset,
			Candidates: ranked,
			Count:      len(ranked),
			TotalFound: result.TotalResults,
		},
	})
}

// Discover is a non-streaming convenience wrapper around FindCpe for
// callers that cannot consume a channel — notably a durable workflow step,
// which must be a plain idempotent function rather than a subscriber to
// an event stream (SPEC_FULL.md §3). It drains the progress channel and
// returns only the terminal outcome.
func (p *Pipeline) Discover(ctx context.Context, assetName string, topN int) (FindCpeResult, error) {
	var last ProgressEvent
	for event := range p.FindCpe(ctx, assetName, topN) {
		last = event
	}

	switch last.Kind {
	case EventCompleted:
		result, _ := last.Payload.(FindCpeResult)
		return result, nil
	default:
		return FindCpeResult{}, errors.New(last.Message)
	}
}

// emit sends an event, respecting backpressure (spec §5) and cancellation.
// Returns false if ctx was cancelled before the send completed, signalling
// the caller to stop producing further events. On cancellation the
// terminal "pipeline cancelled" event is sent with the same blocking
// backpressure as any other event, so a still-draining consumer (e.g.
// Discover) is guaranteed to observe a terminal event rather than a stale
// progress event followed by channel close.
func emit(ctx context.Context, events chan<- ProgressEvent, event ProgressEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		events <- ProgressEvent{RunID: event.RunID, Kind: EventError, Phase: PhaseError, Message: "pipeline cancelled"}
		return false
	}
}
