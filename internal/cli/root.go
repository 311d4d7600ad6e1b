package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information (set via ldflags at build time)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// Global flags
	cfgFile string
	nvdKey  string
	verbose bool

	// Shared output flags, set by the find and validate subcommands.
	outputFormat string
	noColor      bool
)

// NewRootCommand creates and returns the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cpefind",
		Short: "CPE Discovery Pipeline CLI",
		Long: `cpefind resolves free-text asset descriptors (vendor/product/version
strings pulled from a scan report, a CMDB, or a changelog) against the NIST
NVD Products catalog and ranks the matching CPE 2.3 identifiers.

Configuration precedence: flags > environment variables > config file > defaults

Environment Variables:
  CPEFIND_NVD_APIKEY         NVD API key (sent as the apiKey header; the request
                             interval still comes from nvd.minInterval)
  CPEFIND_CONFIG             Path to config file
  CPEFIND_OUTPUT_FORMAT      Output format (json, yaml, table)

For more information, see the NVD API documentation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := InitConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if cmd.Flags().Changed("nvd-api-key") {
				viper.Set("nvd.apiKey", nvdKey)
			}

			if err := ValidateConfig(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if verbose {
				fmt.Fprintf(os.Stderr, "Config file: %s\n", viper.ConfigFileUsed())
				fmt.Fprintf(os.Stderr, "NVD min interval: %s\n", viper.GetString("nvd.minInterval"))
			}

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.cpefind.yaml, ~/.cpefind/.cpefind.yaml, or /etc/cpefind/.cpefind.yaml)")
	rootCmd.PersistentFlags().StringVar(&nvdKey, "nvd-api-key", "", "NVD API key (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("nvd.apiKey", rootCmd.PersistentFlags().Lookup("nvd-api-key"))

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewFindCommand())
	rootCmd.AddCommand(NewValidateCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	return rootCmd.Execute()
}

// getOutputOptions returns output options based on the shared find/validate
// output flags.
func getOutputOptions() *OutputOptions {
	format := outputFormat
	if format == "" {
		format = viper.GetString("output.format")
	}
	return NewOutputOptions(format, noColor)
}

// handleError prints an error message and exits, mirroring the teacher's
// query command error handling.
func handleError(err error, message string) {
	if message != "" {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
