// Package reporter writes extraction results.
//
// Supported output formats:
//   - CSV: one row per record with the header date,merchant,price,account
//   - JSON: run summary, per-document results and records
//   - Console: human-readable run summary for terminal display
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(&reporter.ReportConfig{Format: reporter.FormatCSV})
//	err = generator.GenerateReport(result, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang-statement-extractor/internal/extractor"
	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/pkg/errors"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// CSVHeader is the fixed header of the record CSV
var CSVHeader = []string{"date", "merchant", "price", "account"}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format" mapstructure:"format"`

	// JSON options
	IncludeDocuments bool `json:"include_documents" mapstructure:"include_documents"`

	// Console options
	IncludeRecords bool `json:"include_records" mapstructure:"include_records"`
	MaxRowIssues   int  `json:"max_row_issues" mapstructure:"max_row_issues"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter" mapstructure:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers" mapstructure:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatCSV,
		IncludeDocuments: true,
		IncludeRecords:   true,
		MaxRowIssues:     3,
		CSVDelimiter:     ',',
		CSVHeaders:       true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.Format == FormatCSV && (c.CSVDelimiter == 0 || c.CSVDelimiter == '"' || c.CSVDelimiter == '\n' || c.CSVDelimiter == '\r') {
		return fmt.Errorf("invalid CSV delimiter: %q", c.CSVDelimiter)
	}
	if c.MaxRowIssues < 0 {
		return fmt.Errorf("max row issues cannot be negative, got %d", c.MaxRowIssues)
	}
	return nil
}

// ReportGenerator renders extraction results in one output format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the result to writer in the configured format
func (rg *ReportGenerator) GenerateReport(result *extractor.ExtractionResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("extraction result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.WriteRecords(result.Records, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// WriteRecords writes records as CSV in the order given
func (rg *ReportGenerator) WriteRecords(records []*models.Transaction, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	if rg.config.CSVDelimiter != 0 {
		csvWriter.Comma = rg.config.CSVDelimiter
	}

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(CSVHeader); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, r := range records {
		record := []string{
			r.Date.Format(models.DateLayout),
			r.Merchant,
			models.FormatAmount(r.Amount),
			r.Account,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (rg *ReportGenerator) generateJSONReport(result *extractor.ExtractionResult, writer io.Writer) error {
	output := map[string]interface{}{
		"summary":      result.Summary,
		"records":      result.Records,
		"processed_at": result.ProcessedAt,
	}
	if rg.config.IncludeDocuments {
		output["documents"] = result.Documents
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (rg *ReportGenerator) generateConsoleReport(result *extractor.ExtractionResult, writer io.Writer) error {
	s := result.Summary

	fmt.Fprintf(writer, "EXTRACTION REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", result.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Processing Duration: %v\n\n", s.ProcessingDuration)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Documents:    %d (%d processed, %d failed)\n", s.TotalDocuments, s.ProcessedDocuments, s.FailedDocuments)
	fmt.Fprintf(writer, "Pages:        %d (%d skipped)\n", s.TotalPages, s.PagesSkipped)
	fmt.Fprintf(writer, "Expenses:     %d\n", s.TotalRecords)
	fmt.Fprintf(writer, "Total Amount: %s\n", models.FormatAmount(s.TotalAmount))
	if s.EarliestDate != nil && s.LatestDate != nil {
		fmt.Fprintf(writer, "Date Range:   %s to %s\n", s.EarliestDate.Format(models.DateLayout), s.LatestDate.Format(models.DateLayout))
	}
	fmt.Fprintf(writer, "Row Issues:   %d\n\n", s.RowIssues)

	fmt.Fprintf(writer, "=== DOCUMENTS ===\n")
	for _, d := range result.Documents {
		rg.printDocument(d, writer)
	}

	if rg.config.IncludeRecords && len(result.Records) > 0 {
		fmt.Fprintf(writer, "\n=== EXPENSES ===\n")
		for i, r := range result.Records {
			fmt.Fprintf(writer, "  %d. %s  %-30s %10s  %s\n",
				i+1, r.Date.Format(models.DateLayout), r.Merchant, models.FormatAmount(r.Amount), r.Account)
		}
	}

	return nil
}

func (rg *ReportGenerator) printDocument(d *extractor.DocumentResult, writer io.Writer) {
	name := filepath.Base(d.File)
	if d.Failed() {
		fmt.Fprintf(writer, "  FAILED %s: %s\n", name, d.Error.Message)
		if d.Error.Suggestion != "" {
			fmt.Fprintf(writer, "         %s\n", d.Error.Suggestion)
		}
		return
	}

	fmt.Fprintf(writer, "  %s [%s] Account %s on %s: %d expenses, $%s\n",
		name, d.Format, d.Account, d.Period, len(d.Records), models.FormatAmount(d.Total))

	for _, pe := range d.PageErrors {
		fmt.Fprintf(writer, "    page error: %v\n", pe)
	}

	if len(d.RowIssues) == 0 {
		return
	}
	formatted := errors.FormatRowIssuesForUser(d.RowIssues, rg.config.MaxRowIssues)
	for _, line := range strings.Split(formatted, "\n") {
		if line == "" {
			fmt.Fprintln(writer)
			continue
		}
		fmt.Fprintf(writer, "    %s\n", line)
	}
	if dropped := d.IssueCount - len(d.RowIssues); dropped > 0 {
		fmt.Fprintf(writer, "    ... and %d more row issues not kept\n", dropped)
	}
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "report_config", config, err)
	}
	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
