package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-statement-extractor/cmd/extractor/config"
	"golang-statement-extractor/internal/extractor"
	"golang-statement-extractor/internal/parsers"
	"golang-statement-extractor/internal/reporter"
	"golang-statement-extractor/pkg/errors"
	"golang-statement-extractor/pkg/logger"
)

// Flags for the extract command
var (
	statementFiles     []string
	outputPath         string
	outputFormat       string
	strict             bool
	lookaheadThreshold float64
	textOnly           bool
	excludedMerchants  []string
	maxRowIssues       int
)

var validOutputFormats = map[string]bool{"csv": true, "json": true, "console": true}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [statement.pdf...]",
	Short: "Extract transactions from statement PDFs",
	Long: `Extract reads each statement, selects its format from the file name,
and writes every transaction found as date-sorted records.

A statement that cannot be processed (unknown file name, protected
document, unreadable file) is reported and skipped; the others are
still written, and the command exits non-zero.

Examples:
  # CSV to stdout
  extractor extract "Statement_Jan 2024.pdf" 2024-01-31-statements-1234.pdf

  # CSV to a file
  extractor extract statements/*.pdf --output expenses.csv

  # Run summary for a terminal
  extractor extract statements/*.pdf --output-format console

  # Abort a statement on its first unparseable transaction row
  extractor extract statements/*.pdf --strict

  # Allow a wider gap before a merchant line
  extractor extract Statement_*.pdf --lookahead-threshold 3`,

	PreRunE: validateExtractFlags,
	RunE:    runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringSliceVar(&statementFiles, "files", []string{}, "statement PDF paths, in addition to arguments")
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", reporter.StdoutPath, "output file path, '-' for stdout")
	extractCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "csv", "output format: csv, json, console")
	extractCmd.Flags().BoolVar(&strict, "strict", false, "fail a statement on its first unparseable transaction row")
	extractCmd.Flags().Float64Var(&lookaheadThreshold, "lookahead-threshold", parsers.DefaultLookaheadThreshold, "largest gap between a transaction line and its merchant line")
	extractCmd.Flags().BoolVar(&textOnly, "text-only", true, "skip vector and image content when building page layouts")
	extractCmd.Flags().StringSliceVar(&excludedMerchants, "excluded-merchants", []string{}, "additional merchants to drop from bank statements")
	extractCmd.Flags().IntVar(&maxRowIssues, "max-row-issues", 100, "row issues kept per statement, 0 for all")

	for _, name := range []string{
		"files",
		"output",
		"output-format",
		"strict",
		"lookahead-threshold",
		"text-only",
		"excluded-merchants",
		"max-row-issues",
	} {
		viper.BindPFlag(name, extractCmd.Flags().Lookup(name))
	}
}

func validateExtractFlags(cmd *cobra.Command, args []string) error {
	// viper values include config file and environment overrides
	statementFiles = append(append([]string{}, args...), viper.GetStringSlice("files")...)
	outputPath = viper.GetString("output")
	outputFormat = viper.GetString("output-format")
	strict = viper.GetBool("strict")
	lookaheadThreshold = viper.GetFloat64("lookahead-threshold")
	textOnly = viper.GetBool("text-only")
	excludedMerchants = viper.GetStringSlice("excluded-merchants")
	maxRowIssues = viper.GetInt("max-row-issues")

	if len(statementFiles) == 0 {
		return errors.ConfigurationError(errors.CodeMissingConfig, "files", nil, fmt.Errorf("at least one statement file is required")).
			WithSuggestion("pass statement PDF paths as arguments")
	}

	for i, file := range statementFiles {
		if err := validateFileExists(file, fmt.Sprintf("statement file %d", i+1)); err != nil {
			return err
		}
	}

	if !validOutputFormats[outputFormat] {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "output-format", outputFormat,
			fmt.Errorf("invalid output format '%s'. Valid formats: csv, json, console", outputFormat))
	}

	if lookaheadThreshold <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "lookahead-threshold", lookaheadThreshold,
			fmt.Errorf("lookahead threshold must be positive"))
	}

	if maxRowIssues < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "max-row-issues", maxRowIssues,
			fmt.Errorf("max row issues cannot be negative"))
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return errors.ValidationError(errors.CodeMissingField, description, filePath,
			fmt.Errorf("%s path cannot be empty", description))
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, filePath, err)
	}
	if os.IsPermission(err) {
		return errors.FileError(errors.CodeFilePermission, filePath, err)
	}
	if err != nil {
		return errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}

	if info.IsDir() {
		return errors.FileError(errors.CodeFileCorrupted, filePath,
			fmt.Errorf("%s is a directory, expected a file", description)).
			WithSuggestion("pass the PDF files inside the directory, e.g. dir/*.pdf")
	}

	return nil
}

// loadFormats returns formats from the config file's "formats" key, or the
// predefined ones
func loadFormats() ([]*parsers.FormatConfig, error) {
	if !viper.IsSet("formats") {
		return nil, nil
	}

	var formats []*parsers.FormatConfig
	if err := viper.UnmarshalKey("formats", &formats); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "formats", nil, err).
			WithSuggestion("check the formats section of the config file")
	}
	return formats, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logger.WithComponent("cli")
	log.WithFields(logger.Fields{
		"files":         len(statementFiles),
		"output":        outputPath,
		"output_format": outputFormat,
		"strict":        strict,
	}).Debug("Starting extraction")

	base, err := loadFormats()
	if err != nil {
		return err
	}
	formats, err := config.CreateFormatConfigs(base, config.FormatOverrides{
		LookaheadThreshold: lookaheadThreshold,
		ExcludedMerchants:  excludedMerchants,
	})
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "formats", nil, err)
	}

	extractorConfig := config.CreateExtractorConfig(strict, maxRowIssues)
	reportConfig := config.CreateReportConfig(outputFormat)
	if err := config.ValidateConfig(formats, extractorConfig, reportConfig); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "extract", nil, err)
	}

	registry, err := parsers.NewRegistry(formats, log)
	if err != nil {
		return err
	}

	service, err := extractor.NewExtractionService(
		registry,
		extractor.PDFOpener(config.CreatePDFOptions(textOnly), log),
		extractorConfig,
		log,
	)
	if err != nil {
		return err
	}

	if viper.GetBool("verbose") {
		service.AddProgressCallback(func(p *extractor.ExtractionProgress) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s (%.1f%% complete)",
				p.FilesProcessed, p.TotalFiles, p.CurrentFile, p.PercentComplete)
			if p.FilesProcessed == p.TotalFiles {
				fmt.Fprintf(os.Stderr, "\n")
			}
		})
	}

	result, err := service.ProcessStatements(ctx, &extractor.ExtractionRequest{Files: statementFiles})
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(reportConfig, log)
	if err != nil {
		return err
	}

	output, err := reporter.OpenOutput(outputPath)
	if err != nil {
		return err
	}
	defer output.Close()

	if err := generator.GenerateReportSafely(result, output); err != nil {
		return err
	}

	log.Infof("Found %d expenses in %d statements", result.Summary.TotalRecords, result.Summary.ProcessedDocuments)

	if result.HasFailures() {
		return result.ErrorSummary()
	}
	return nil
}
