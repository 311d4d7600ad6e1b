package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/spectra-red/cpe-discovery/internal/cpe"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatTable OutputFormat = "table"
)

// OutputOptions controls output formatting behavior
type OutputOptions struct {
	Format     OutputFormat
	NoColor    bool
	Writer     io.Writer
	IsTerminal bool
}

// NewOutputOptions creates output options with sensible defaults
func NewOutputOptions(format string, noColor bool) *OutputOptions {
	opts := &OutputOptions{
		Format:  FormatTable,
		NoColor: noColor,
		Writer:  os.Stdout,
	}

	if f, ok := opts.Writer.(*os.File); ok {
		opts.IsTerminal = isatty.IsTerminal(f.Fd())
	} else {
		opts.IsTerminal = false
	}

	switch strings.ToLower(format) {
	case "json":
		opts.Format = FormatJSON
	case "yaml", "yml":
		opts.Format = FormatYAML
	case "table":
		opts.Format = FormatTable
	default:
		opts.Format = FormatTable
	}

	if !opts.IsTerminal || noColor {
		color.NoColor = true
	}

	return opts
}

// OutputFormatter is the interface for formatting pipeline results.
type OutputFormatter interface {
	FormatFindResult(opts *OutputOptions, result *cpe.FindCpeResult) error
	FormatValidationResult(opts *OutputOptions, result *cpe.ValidationResult) error
}

// DefaultFormatter implements OutputFormatter
type DefaultFormatter struct{}

// NewFormatter creates a new output formatter
func NewFormatter() OutputFormatter {
	return &DefaultFormatter{}
}

// FormatFindResult formats a find-cpe result
func (f *DefaultFormatter) FormatFindResult(opts *OutputOptions, result *cpe.FindCpeResult) error {
	switch opts.Format {
	case FormatJSON:
		return formatJSON(opts.Writer, result)
	case FormatYAML:
		return formatYAML(opts.Writer, result)
	case FormatTable:
		return formatFindTable(opts, result)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// FormatValidationResult formats a validate-cpe result
func (f *DefaultFormatter) FormatValidationResult(opts *OutputOptions, result *cpe.ValidationResult) error {
	switch opts.Format {
	case FormatJSON:
		return formatJSON(opts.Writer, result)
	case FormatYAML:
		return formatYAML(opts.Writer, result)
	case FormatTable:
		return formatValidationTable(opts, result)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// formatJSON outputs data as JSON
func formatJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// formatYAML outputs data as YAML
func formatYAML(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

// formatFindTable formats ranked CPE candidates as a table
func formatFindTable(opts *OutputOptions, result *cpe.FindCpeResult) error {
	headerColor := color.New(color.FgCyan, color.Bold)

	asset := result.Parsed.Raw
	if !opts.NoColor && opts.IsTerminal {
		headerColor.Fprintf(opts.Writer, "\nCPE Candidates: %s\n", asset)
	} else {
		fmt.Fprintf(opts.Writer, "\nCPE Candidates: %s\n", asset)
	}

	fmt.Fprintf(opts.Writer, "Vendor: %s | Product: %s | Version: %s\n",
		orDash(result.Parsed.Vendor), orDash(result.Parsed.Product), orDash(result.Parsed.Version))
	fmt.Fprintf(opts.Writer, "Showing %d of %d candidates\n\n", result.Count, result.TotalFound)

	if result.Count == 0 {
		fmt.Fprintln(opts.Writer, "No candidates found.")
		return nil
	}

	table := tablewriter.NewWriter(opts.Writer)
	table.SetHeader([]string{"Score", "CPE", "Title", "Deprecated"})
	table.SetBorder(true)
	table.SetAutoWrapText(true)
	table.SetColWidth(60)

	for _, c := range result.Candidates {
		score := fmt.Sprintf("%.2f", c.CompositeScore)
		if !opts.NoColor && opts.IsTerminal {
			score = colorScore(c.CompositeScore)
		}

		deprecated := "No"
		if c.Deprecated {
			deprecated = "Yes"
		}

		table.Append([]string{
			score,
			c.CPEName,
			truncate(c.Title, 60),
			deprecated,
		})
	}

	table.Render()

	return nil
}

// formatValidationTable formats a CPE validation result as plain text
func formatValidationTable(opts *OutputOptions, result *cpe.ValidationResult) error {
	headerColor := color.New(color.FgCyan, color.Bold)

	if !opts.NoColor && opts.IsTerminal {
		headerColor.Fprintf(opts.Writer, "\nCPE Validation: %s\n", result.Parsed.Raw)
	} else {
		fmt.Fprintf(opts.Writer, "\nCPE Validation: %s\n", result.Parsed.Raw)
	}

	fmt.Fprintf(opts.Writer, "Valid syntax:     %s\n", yesNo(opts, result.IsValid))
	fmt.Fprintf(opts.Writer, "Exists in catalog: %s\n", yesNo(opts, result.ExistsInCatalog))
	fmt.Fprintf(opts.Writer, "Exact match:       %s\n", yesNo(opts, result.ExactMatch))
	fmt.Fprintf(opts.Writer, "Deprecated:        %s\n", yesNo(opts, result.Deprecated))
	fmt.Fprintf(opts.Writer, "Matches found:     %d\n", result.MatchesFound)
	if result.Message != "" {
		fmt.Fprintf(opts.Writer, "\n%s\n", result.Message)
	}

	return nil
}

// yesNo renders a bool as a colored Yes/No when the terminal supports it
func yesNo(opts *OutputOptions, b bool) string {
	if b {
		if !opts.NoColor && opts.IsTerminal {
			return color.GreenString("Yes")
		}
		return "Yes"
	}
	if !opts.NoColor && opts.IsTerminal {
		return color.RedString("No")
	}
	return "No"
}

// colorScore returns colored composite score text
func colorScore(score float64) string {
	scoreStr := fmt.Sprintf("%.2f", score)
	switch {
	case score >= 85:
		return color.GreenString(scoreStr)
	case score >= 70:
		return color.YellowString(scoreStr)
	case score >= 50:
		return color.New(color.FgYellow).Sprint(scoreStr)
	default:
		return scoreStr
	}
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// orDash renders an empty string as a placeholder dash
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
