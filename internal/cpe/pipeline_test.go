package cpe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func drainEvents(t *testing.T, events <-chan ProgressEvent, timeout time.Duration) []ProgressEvent {
	t.Helper()
	var all []ProgressEvent
	deadline := time.After(timeout)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return all
			}
			all = append(all, e)
		case <-deadline:
			t.Fatal("timed out draining progress events")
		}
	}
}

func TestFindCpeRejectsShortAssetName(t *testing.T) {
	pipeline, err := NewPipeline(&stubSearcher{}, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	events := pipeline.FindCpe(context.Background(), "a", 5)
	all := drainEvents(t, events, time.Second)

	if len(all) != 1 || all[0].Kind != EventError {
		t.Fatalf("expected a single terminal error event, got %+v", all)
	}
}

func TestFindCpeHappyPath(t *testing.T) {
	searcher := &stubSearcher{byQuery: map[string]int{"apache http server": 1}}
	pipeline, err := NewPipeline(searcher, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	events := pipeline.FindCpe(context.Background(), "Apache HTTP Server 2.4.51", 5)
	all := drainEvents(t, events, time.Second)

	if len(all) == 0 {
		t.Fatal("expected at least one event")
	}

	last := all[len(all)-1]
	if last.Kind != EventCompleted {
		t.Fatalf("last event kind = %v, want completed; events: %+v", last.Kind, all)
	}

	payload, ok := last.Payload.(FindCpeResult)
	if !ok {
		t.Fatalf("payload type = %T, want FindCpeResult", last.Payload)
	}
	if payload.Count != 1 {
		t.Errorf("payload.Count = %d, want 1", payload.Count)
	}
	if payload.TotalFound != 1 {
		t.Errorf("payload.TotalFound = %d, want 1", payload.TotalFound)
	}

	phases := make([]string, 0, len(all))
	for _, e := range all {
		phases = append(phases, e.Phase)
	}
	if phases[0] != PhaseParsing {
		t.Errorf("first phase = %q, want %q", phases[0], PhaseParsing)
	}
}

func TestFindCpeFatalUpstreamError(t *testing.T) {
	searcher := &stubSearcher{errOn: "server"}
	pipeline, err := NewPipeline(searcher, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	events := pipeline.FindCpe(context.Background(), "Apache HTTP Server", 5)
	all := drainEvents(t, events, time.Second)

	last := all[len(all)-1]
	if last.Kind != EventError {
		t.Fatalf("last event kind = %v, want error", last.Kind)
	}
}

func TestPipelineDiscoverReturnsTerminalResult(t *testing.T) {
	searcher := &stubSearcher{byQuery: map[string]int{"apache http server": 1}}
	pipeline, err := NewPipeline(searcher, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	result, err := pipeline.Discover(context.Background(), "Apache HTTP Server 2.4.51", 5)
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if result.Count != 1 {
		t.Errorf("Count = %d, want 1", result.Count)
	}
}

func TestPipelineDiscoverPropagatesFatalError(t *testing.T) {
	searcher := &stubSearcher{errOn: "server"}
	pipeline, err := NewPipeline(searcher, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	_, err = pipeline.Discover(context.Background(), "Apache HTTP Server", 5)
	if err == nil {
		t.Fatal("expected an error from Discover() on upstream failure")
	}
}

func TestFindCpeEventsShareRunID(t *testing.T) {
	searcher := &stubSearcher{byQuery: map[string]int{"apache http server": 1}}
	pipeline, err := NewPipeline(searcher, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	events := pipeline.FindCpe(context.Background(), "Apache HTTP Server 2.4.51", 5)
	all := drainEvents(t, events, time.Second)

	if len(all) == 0 {
		t.Fatal("expected at least one event")
	}
	runID := all[0].RunID
	if runID == "" {
		t.Fatal("expected a non-empty RunID")
	}
	for _, e := range all {
		if e.RunID != runID {
			t.Fatalf("event %+v has a different RunID than the first event %q", e, runID)
		}
	}
}

func TestNewPipelineRejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = ScoringWeights{Vendor: 0.9, Product: 0.9, Version: 0.9, TokenOverlap: 0.9}

	_, err := NewPipeline(&stubSearcher{}, cfg, nil)
	if err == nil {
		t.Fatal("expected an error for weights that do not sum to 1.0")
	}
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Kind != KindInvalidInput {
		t.Errorf("error = %v, want KindInvalidInput", err)
	}
}
