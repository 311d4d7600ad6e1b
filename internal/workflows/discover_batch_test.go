package workflows

import (
	"context"
	"testing"

	"github.com/spectra-red/cpe-discovery/internal/cpe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher implements cpe.KeywordSearcher for tests that don't need a
// real NVD endpoint.
type fakeSearcher struct {
	products map[string]int
}

func (f *fakeSearcher) QueryKeyword(ctx context.Context, keyword string) (cpe.CatalogResult, error) {
	n := f.products[keyword]
	return cpe.CatalogResult{TotalResults: n, Products: make([]cpe.CatalogProduct, n)}, nil
}

func TestDiscoverBatchWorkflow_ServiceName(t *testing.T) {
	workflow := &DiscoverBatchWorkflow{}
	assert.Equal(t, "DiscoverBatchWorkflow", workflow.ServiceName())
}

func TestDiscoverBatchWorkflow_DiscoverOneSuccess(t *testing.T) {
	searcher := &fakeSearcher{products: map[string]int{"nginx": 2}}
	pipeline, err := cpe.NewPipeline(searcher, cpe.DefaultConfig(), nil)
	require.NoError(t, err)

	workflow := NewDiscoverBatchWorkflow(pipeline)
	outcome := workflow.discoverOne("nginx 1.24.0", cpe.DefaultTopN)

	assert.Equal(t, "nginx 1.24.0", outcome.AssetName)
	assert.Empty(t, outcome.Error)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, 2, outcome.Result.TotalFound)
}

func TestDiscoverBatchWorkflow_DiscoverOneInvalidAssetName(t *testing.T) {
	searcher := &fakeSearcher{}
	pipeline, err := cpe.NewPipeline(searcher, cpe.DefaultConfig(), nil)
	require.NoError(t, err)

	workflow := NewDiscoverBatchWorkflow(pipeline)
	outcome := workflow.discoverOne("a", cpe.DefaultTopN)

	assert.Nil(t, outcome.Result)
	assert.NotEmpty(t, outcome.Error)
}
