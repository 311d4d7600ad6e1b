package workflows

import (
	"context"
	"fmt"

	restate "github.com/restatedev/sdk-go"

	"github.com/spectra-red/cpe-discovery/internal/cpe"
)

// DiscoverBatchWorkflow runs the CPE Discovery Pipeline (internal/cpe) over
// many free-text asset descriptors as a single durable, retryable unit.
// Each asset is its own restate.Run step, so a crash mid-batch resumes
// without re-querying NVD for assets already resolved.
type DiscoverBatchWorkflow struct {
	pipeline *cpe.Pipeline
}

// NewDiscoverBatchWorkflow creates a new DiscoverBatchWorkflow instance.
func NewDiscoverBatchWorkflow(pipeline *cpe.Pipeline) *DiscoverBatchWorkflow {
	return &DiscoverBatchWorkflow{pipeline: pipeline}
}

// ServiceName returns the Restate service name.
func (w *DiscoverBatchWorkflow) ServiceName() string {
	return "DiscoverBatchWorkflow"
}

// DiscoverBatchRequest is the request to the batch discovery workflow.
type DiscoverBatchRequest struct {
	AssetNames []string `json:"asset_names"`
	TopN       int      `json:"top_n"` // optional, cpe.DefaultTopN when 0
	BatchID    string   `json:"batch_id"`
}

// AssetDiscoveryOutcome is the per-asset result within a batch. Exactly
// one of Result/Error is populated.
type AssetDiscoveryOutcome struct {
	AssetName string               `json:"asset_name"`
	Result    *cpe.FindCpeResult   `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// DiscoverBatchResponse is the response from the batch discovery workflow.
type DiscoverBatchResponse struct {
	BatchID         string                   `json:"batch_id"`
	AssetsProcessed int                      `json:"assets_processed"`
	AssetsResolved  int                      `json:"assets_resolved"`
	Outcomes        []AssetDiscoveryOutcome  `json:"outcomes"`
}

// Run executes the batch discovery workflow with durable, per-asset steps.
// This workflow is idempotent and can be safely retried: a restart replays
// completed restate.Run steps from their recorded results instead of
// re-issuing NVD queries.
func (w *DiscoverBatchWorkflow) Run(ctx restate.Context, req DiscoverBatchRequest) (DiscoverBatchResponse, error) {
	topN := req.TopN
	if topN == 0 {
		topN = cpe.DefaultTopN
	}

	outcomes := make([]AssetDiscoveryOutcome, 0, len(req.AssetNames))
	resolved := 0

	for _, assetName := range req.AssetNames {
		name := assetName
		stepResult, err := restate.Run[AssetDiscoveryOutcome](ctx, func(ctx restate.RunContext) (AssetDiscoveryOutcome, error) {
			return w.discoverOne(name, topN), nil
		})
		if err != nil {
			return DiscoverBatchResponse{}, fmt.Errorf("failed to run discovery step for %q: %w", name, err)
		}

		if stepResult.Error == "" {
			resolved++
		}
		outcomes = append(outcomes, stepResult)
	}

	return DiscoverBatchResponse{
		BatchID:         req.BatchID,
		AssetsProcessed: len(req.AssetNames),
		AssetsResolved:  resolved,
		Outcomes:        outcomes,
	}, nil
}

// discoverOne runs the non-streaming pipeline for a single asset, turning
// any pipeline error into the outcome's Error field rather than failing
// the whole restate.Run step — one bad asset name should not abort a
// batch of otherwise-resolvable ones.
func (w *DiscoverBatchWorkflow) discoverOne(assetName string, topN int) AssetDiscoveryOutcome {
	result, err := w.pipeline.Discover(context.Background(), assetName, topN)
	if err != nil {
		return AssetDiscoveryOutcome{AssetName: assetName, Error: err.Error()}
	}
	return AssetDiscoveryOutcome{AssetName: assetName, Result: &result}
}
