// Package extractor drives statement extraction end to end.
//
// For each input file the ExtractionService selects a statement format from
// the file name, opens the document, checks that it permits text
// extraction, then walks it page by page:
//
//  1. the page's layout tree is walked with a fresh PageScanner
//  2. the account identifier, if seen, is carried into the statement
//  3. pages without the format's section header are skipped
//  4. the format's RowInterpreter turns the page's rows into records
//
// A failure on one document is recorded in its DocumentResult and the run
// moves on to the next file. Records from all documents are returned sorted
// by date.
//
// Example usage:
//
//	registry, _ := parsers.NewRegistry(parsers.DefaultFormatConfigs(), log)
//	service, _ := extractor.NewExtractionService(registry, extractor.PDFOpener(pdfsource.DefaultOptions(), log), nil, log)
//	result, err := service.ProcessStatements(ctx, &extractor.ExtractionRequest{Files: files})
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang-statement-extractor/internal/layout"
	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/internal/parsers"
	"golang-statement-extractor/internal/pdfsource"
	"golang-statement-extractor/pkg/errors"
	"golang-statement-extractor/pkg/logger"
)

// Document is an open statement whose pages can be enumerated in order
type Document interface {
	Extractable() bool
	NumPages() int
	Page(i int) (layout.Node, error)
	Close() error
}

// OpenFunc opens the statement at path
type OpenFunc func(path string) (Document, error)

// PDFOpener opens statements with the PDF reader
func PDFOpener(opts pdfsource.Options, log logger.Logger) OpenFunc {
	return func(path string) (Document, error) {
		doc, err := pdfsource.Open(path, opts, log)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

// Config holds configuration options for the extraction service
type Config struct {
	// Strict turns the first unparseable qualifying row into a document failure
	Strict bool `json:"strict" mapstructure:"strict"`
	// MaxRowIssues caps the row issues kept per document; zero keeps all
	MaxRowIssues int `json:"max_row_issues" mapstructure:"max_row_issues"`
}

// DefaultConfig returns a default configuration for the extraction service
func DefaultConfig() *Config {
	return &Config{
		Strict:       false,
		MaxRowIssues: 100,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MaxRowIssues < 0 {
		return fmt.Errorf("max row issues cannot be negative, got %d", c.MaxRowIssues)
	}
	return nil
}

// ExtractionRequest lists the statement files to process
type ExtractionRequest struct {
	Files []string
}

// Validate validates the extraction request
func (r *ExtractionRequest) Validate() error {
	if len(r.Files) == 0 {
		return fmt.Errorf("at least one statement file is required")
	}
	for i, f := range r.Files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("statement file %d has an empty path", i+1)
		}
	}
	return nil
}

// ExtractionProgress tracks progress across the input files
type ExtractionProgress struct {
	TotalFiles      int     `json:"total_files"`
	FilesProcessed  int     `json:"files_processed"`
	CurrentFile     string  `json:"current_file"`
	RecordsFound    int     `json:"records_found"`
	PercentComplete float64 `json:"percent_complete"`
}

// ProgressCallback is called before and after each file
type ProgressCallback func(*ExtractionProgress)

// ExtractionService orchestrates extraction over a set of statements
type ExtractionService struct {
	registry *parsers.Registry
	open     OpenFunc
	walker   *layout.Walker
	config   *Config
	logger   logger.Logger

	progressCallbacks []ProgressCallback
}

// NewExtractionService creates a new extraction service
func NewExtractionService(registry *parsers.Registry, open OpenFunc, config *Config, log logger.Logger) (*ExtractionService, error) {
	if registry == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "registry", nil, nil).
			WithSuggestion("provide a format registry")
	}
	if open == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "open", nil, nil).
			WithSuggestion("provide a document opener such as PDFOpener")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "extractor", config, err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &ExtractionService{
		registry: registry,
		open:     open,
		walker:   layout.NewWalker(log),
		config:   config,
		logger:   log.WithComponent("driver"),
	}, nil
}

// AddProgressCallback adds a progress callback function
func (s *ExtractionService) AddProgressCallback(callback ProgressCallback) {
	s.progressCallbacks = append(s.progressCallbacks, callback)
}

// GetConfiguration returns the current configuration
func (s *ExtractionService) GetConfiguration() *Config {
	return s.config
}

// ProcessStatements extracts records from every requested file. Document
// failures are recorded in the result, not returned; the returned error is
// reserved for an invalid request or cancellation.
func (s *ExtractionService) ProcessStatements(ctx context.Context, request *ExtractionRequest) (*ExtractionResult, error) {
	if err := request.Validate(); err != nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "files", request.Files, err).
			WithSuggestion("pass one or more statement PDF paths")
	}

	started := time.Now()
	op := logger.NewOperationLogger("extract_statements", s.logger).
		WithField("files", len(request.Files))

	progress := &ExtractionProgress{TotalFiles: len(request.Files)}
	records := make([]*models.Transaction, 0)
	docs := make([]*DocumentResult, 0, len(request.Files))

	for _, file := range request.Files {
		if err := ctx.Err(); err != nil {
			op.Error(err, "Extraction cancelled")
			return nil, errors.InternalError(errors.CodeUnexpectedError, "extraction", err).
				WithSuggestion("the run was cancelled before all statements were processed")
		}

		progress.CurrentFile = file
		s.notify(progress)

		doc := s.ProcessDocument(ctx, file)
		docs = append(docs, doc)
		records = append(records, doc.Records...)

		progress.FilesProcessed++
		progress.RecordsFound = len(records)
		progress.PercentComplete = float64(progress.FilesProcessed) / float64(progress.TotalFiles) * 100
		op.Progress("Processed statement", int64(progress.FilesProcessed), int64(progress.TotalFiles))
		s.notify(progress)
	}

	models.SortByDate(records)

	result := &ExtractionResult{
		Records:     records,
		Documents:   docs,
		ProcessedAt: started,
	}
	result.Summary = buildSummary(docs, records, started)

	op.WithFields(logger.Fields{
		"records":          result.Summary.TotalRecords,
		"failed_documents": result.Summary.FailedDocuments,
	}).Success(fmt.Sprintf("Found %d expenses", len(records)))

	return result, nil
}

// ProcessDocument extracts records from a single statement file
func (s *ExtractionService) ProcessDocument(ctx context.Context, path string) *DocumentResult {
	started := time.Now()
	name := filepath.Base(path)
	result := newDocumentResult(path)
	log := s.logger.WithFields(logger.Fields{
		"file":        name,
		"document_id": result.ID.String(),
	})
	defer func() {
		result.Duration = time.Since(started)
	}()

	selection, err := s.registry.Select(path)
	if err != nil {
		extractorErr := errors.WrapIfNeeded(err, errors.CategoryDispatch, errors.CodeNoMatchingFormat, "format selection failed")
		log.WithError(extractorErr).Error("No statement format for file")
		return result.fail(extractorErr)
	}
	result.Format = selection.Format.Name
	result.Period = selection.Period
	log = log.WithField("format", selection.Format.Name)

	doc, err := s.open(path)
	if err != nil {
		extractorErr := errors.WrapIfNeeded(err, errors.CategoryFile, errors.CodeFileCorrupted, "failed to open statement")
		log.WithError(extractorErr).Error("Could not open statement")
		return result.fail(extractorErr)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close statement")
		}
	}()

	if !doc.Extractable() {
		extractorErr := errors.DocumentError(errors.CodeNotExtractable, name, nil)
		log.Errorf("Doc not extractable: %s", name)
		return result.fail(extractorErr)
	}

	stmt, issues, err := s.scanDocument(ctx, doc, selection, result, log)
	result.Account = stmt.Account
	result.RowIssues = issues.Issues()
	result.IssueCount = issues.Total()
	if err != nil {
		extractorErr := errors.WrapIfNeeded(err, errors.CategoryInternal, errors.CodeUnexpectedError, "statement extraction failed")
		log.WithError(extractorErr).Error("Abandoning statement")
		return result.fail(extractorErr)
	}

	result.Records = stmt.Records
	result.Total = stmt.Total()

	log.Infof("%s: Account %s on %s: %d expenses, $%s",
		name, stmt.Account, stmt.Period, len(stmt.Records), result.Total.StringFixed(2))
	return result
}

// scanDocument walks every page. Row state is reset per page; the account
// identifier carries across pages.
func (s *ExtractionService) scanDocument(
	ctx context.Context,
	doc Document,
	selection *parsers.Selection,
	result *DocumentResult,
	log logger.Logger,
) (*models.StatementContext, *errors.RowIssueCollector, error) {
	stmt := models.NewStatementContext(filepath.Base(result.File), selection.Format.Name, selection.Period)
	issues := errors.NewRowIssueCollector(s.config.MaxRowIssues, s.config.Strict)

	scanner, err := parsers.NewPageScanner(selection.Format, log)
	if err != nil {
		return stmt, issues, errors.ConfigurationError(errors.CodeInvalidConfig, "format", selection.Format.Name, err)
	}
	interpreter, err := parsers.NewInterpreter(selection.Format, log)
	if err != nil {
		return stmt, issues, err
	}

	result.Pages = doc.NumPages()
	for i := 1; i <= result.Pages; i++ {
		if err := ctx.Err(); err != nil {
			return stmt, issues, err
		}

		scanner.Reset()
		root, err := doc.Page(i)
		if err != nil {
			pageErr := errors.WrapIfNeeded(err, errors.CategoryDocument, errors.CodePageUnreadable, "page could not be read").
				WithContext("page", i)
			log.WithError(pageErr).Warnf("Skipping unreadable page %d", i)
			result.PageErrors = append(result.PageErrors, pageErr)
			result.Skipped++
			continue
		}

		s.walker.Walk(root, scanner)
		stmt.SetAccount(scanner.Account())

		if !scanner.HasSection() {
			log.Debugf("Page %d: no header", i)
			result.Skipped++
			continue
		}

		page := &parsers.PageContext{
			File:      result.File,
			Number:    i,
			Statement: stmt,
			Issues:    issues,
		}
		if err := interpreter.Interpret(page, scanner.Rows()); err != nil {
			return stmt, issues, err
		}
	}

	return stmt, issues, nil
}

func (s *ExtractionService) notify(progress *ExtractionProgress) {
	for _, cb := range s.progressCallbacks {
		snapshot := *progress
		cb(&snapshot)
	}
}
