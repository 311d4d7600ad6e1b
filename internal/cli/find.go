package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spectra-red/cpe-discovery/internal/cpe"
)

var (
	findTopN     int
	findTimeout  time.Duration
	findCacheTTL string
)

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	findCmd := &cobra.Command{
		Use:   "find <asset description>",
		Short: "Resolve a free-text asset description to ranked CPE candidates",
		Long: `find runs the asset description through the CPE Discovery Pipeline:
normalizing and tokenizing the text, parsing vendor/product/version,
progressively narrowing an NVD keyword search, scoring every candidate
against the parsed asset, and returning the top-ranked CPE 2.3 matches.

Examples:
  cpefind find "Apache HTTP Server 2.4.51"
  cpefind find "eWon Flexy 10.0s0" --top-n 10
  cpefind find "nginx 1.24.0" --output json`,
		Args: cobra.MinimumNArgs(1),
		Run:  runFind,
	}

	findCmd.Flags().IntVarP(&findTopN, "top-n", "n", cpe.DefaultTopN, "number of ranked candidates to return")
	findCmd.Flags().DurationVar(&findTimeout, "timeout", 60*time.Second, "overall timeout for the discovery run")
	findCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (json, yaml, table; default from output.format)")
	findCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return findCmd
}

func runFind(cmd *cobra.Command, args []string) {
	assetName := joinArgs(args)

	pipeline, err := newPipeline()
	if err != nil {
		handleError(err, "failed to initialize pipeline")
	}

	ctx, cancel := context.WithTimeout(context.Background(), findTimeout)
	defer cancel()

	events := pipeline.FindCpe(ctx, assetName, findTopN)

	var result cpe.FindCpeResult
	var terminalErr error
	for event := range events {
		switch event.Kind {
		case cpe.EventProgress:
			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", event.Phase, event.Message)
			}
		case cpe.EventCompleted:
			payload, ok := event.Payload.(cpe.FindCpeResult)
			if !ok {
				terminalErr = fmt.Errorf("unexpected completion payload type %T", event.Payload)
				break
			}
			result = payload
		case cpe.EventError:
			terminalErr = fmt.Errorf("%s", event.Message)
		}
	}

	if terminalErr != nil {
		handleError(terminalErr, "discovery failed")
	}

	opts := getOutputOptions()
	formatter := NewFormatter()
	if err := formatter.FormatFindResult(opts, &result); err != nil {
		handleError(err, "failed to format output")
	}
}

// newPipeline builds a cpe.Pipeline from the resolved CLI configuration.
func newPipeline() (*cpe.Pipeline, error) {
	cfg, err := InitConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	pipelineConfig, err := cfg.ToCpeConfig()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
		}
	}

	gate := cpe.NewGate(pipelineConfig.MinInterval, pipelineConfig.CacheTTL, cpe.NewMemoryStore(), logger)
	client := cpe.NewClient(http.DefaultClient, gate, pipelineConfig.NVDAPIKey, logger)

	return cpe.NewPipeline(client, pipelineConfig, logger)
}

// joinArgs joins positional cobra args into a single free-text asset
// description, mirroring the teacher's multi-word query handling.
func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
