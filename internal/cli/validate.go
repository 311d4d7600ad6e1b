package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spectra-red/cpe-discovery/internal/cpe"
)

var (
	validateCheckCatalog bool
	validateTimeout      time.Duration
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate <cpe-uri>",
		Short: "Validate a CPE 2.3 URI's syntax, and optionally its catalog presence",
		Long: `validate deconstructs a CPE 2.3 URI and checks its syntax against the
binding grammar. With --check-catalog it also queries the NVD Products
catalog for an exact match and reports whether the entry is deprecated.

Examples:
  cpefind validate "cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*"
  cpefind validate "cpe:2.3:a:nginx:nginx:1.24.0:*:*:*:*:*:*:*" --check-catalog`,
		Args: cobra.ExactArgs(1),
		Run:  runValidate,
	}

	validateCmd.Flags().BoolVar(&validateCheckCatalog, "check-catalog", false, "also query the NVD catalog for an exact match")
	validateCmd.Flags().DurationVar(&validateTimeout, "timeout", 30*time.Second, "timeout for the catalog lookup")
	validateCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (json, yaml, table; default from output.format)")
	validateCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return validateCmd
}

func runValidate(cmd *cobra.Command, args []string) {
	cpeString := args[0]

	var client *cpe.Client
	if validateCheckCatalog {
		c, err := newCatalogClient()
		if err != nil {
			handleError(err, "failed to initialize NVD client")
		}
		client = c
	}

	ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
	defer cancel()

	result := cpe.ValidateCpe(ctx, cpeString, client, validateCheckCatalog)

	opts := getOutputOptions()
	formatter := NewFormatter()
	if err := formatter.FormatValidationResult(opts, &result); err != nil {
		handleError(err, "failed to format output")
	}
}

// newCatalogClient builds a standalone cpe.Client for catalog lookups,
// independent of the full Pipeline (validate never needs scoring/ranking).
func newCatalogClient() (*cpe.Client, error) {
	cfg, err := InitConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	pipelineConfig, err := cfg.ToCpeConfig()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	gate := cpe.NewGate(pipelineConfig.MinInterval, pipelineConfig.CacheTTL, cpe.NewMemoryStore(), logger)
	return cpe.NewClient(http.DefaultClient, gate, pipelineConfig.NVDAPIKey, logger), nil
}
