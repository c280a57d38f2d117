package config

import (
	"fmt"
	"strings"

	"golang-statement-extractor/internal/extractor"
	"golang-statement-extractor/internal/parsers"
	"golang-statement-extractor/internal/pdfsource"
	"golang-statement-extractor/internal/reporter"
	"golang-statement-extractor/pkg/logger"
)

// FormatOverrides carries the CLI settings that tune the statement formats
type FormatOverrides struct {
	LookaheadThreshold float64
	ExcludedMerchants  []string
}

// CreateFormatConfigs applies overrides to the given formats, or to the
// predefined ones when base is empty. The inputs are not modified.
func CreateFormatConfigs(base []*parsers.FormatConfig, overrides FormatOverrides) ([]*parsers.FormatConfig, error) {
	if len(base) == 0 {
		base = parsers.ListAvailableFormatConfigs()
	}

	formats := make([]*parsers.FormatConfig, 0, len(base))
	for _, fc := range base {
		if fc == nil {
			return nil, fmt.Errorf("format configuration cannot be nil")
		}
		clone := fc.Clone()

		switch clone.Variant {
		case parsers.VariantLookahead:
			if overrides.LookaheadThreshold > 0 {
				clone.LookaheadThreshold = overrides.LookaheadThreshold
			}
		case parsers.VariantInline:
			for _, m := range overrides.ExcludedMerchants {
				if m = strings.TrimSpace(m); m != "" {
					clone.ExcludedMerchants = append(clone.ExcludedMerchants, m)
				}
			}
		}

		formats = append(formats, clone)
	}

	return formats, nil
}

// CreateExtractorConfig creates a driver configuration
func CreateExtractorConfig(strict bool, maxRowIssues int) *extractor.Config {
	config := extractor.DefaultConfig()
	config.Strict = strict
	config.MaxRowIssues = maxRowIssues
	return config
}

// CreatePDFOptions creates the page tree options for the PDF reader
func CreatePDFOptions(textOnly bool) pdfsource.Options {
	opts := pdfsource.DefaultOptions()
	opts.TextOnly = textOnly
	return opts
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludeRecords = true
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeDocuments = true
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		config.Format = reporter.OutputFormat(format)
	}

	return config
}

// CreateLoggerConfig creates a logger configuration. Verbose wins over level.
func CreateLoggerConfig(level, format string, verbose bool) *logger.Config {
	config := logger.DefaultConfig()
	if level != "" {
		config.Level = logger.Level(strings.ToLower(level))
	}
	if format != "" {
		config.Format = logger.Format(strings.ToLower(format))
	}
	if verbose {
		config.Level = logger.DebugLevel
	}
	return config
}

// ValidateConfig validates that all required configurations are valid
func ValidateConfig(formats []*parsers.FormatConfig, extractorConfig *extractor.Config, reportConfig *reporter.ReportConfig) error {
	if len(formats) == 0 {
		return fmt.Errorf("at least one statement format is required")
	}
	for _, fc := range formats {
		if err := fc.Validate(); err != nil {
			return fmt.Errorf("invalid format config: %w", err)
		}
	}

	if err := extractorConfig.Validate(); err != nil {
		return fmt.Errorf("invalid extractor config: %w", err)
	}

	if err := reportConfig.Validate(); err != nil {
		return fmt.Errorf("invalid report config: %w", err)
	}

	return nil
}
