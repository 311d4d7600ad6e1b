package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spectra-red/cpe-discovery/internal/cpe"
)

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	assert.Equal(t, "validate <cpe-uri>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("check-catalog"))
	assert.NotNil(t, cmd.Flags().Lookup("timeout"))
}

func TestValidateCpeSyntaxOnly(t *testing.T) {
	result := cpe.ValidateCpe(context.Background(), "cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*", nil, false)

	assert.True(t, result.IsValid)
	assert.False(t, result.ExistsInCatalog)
}
