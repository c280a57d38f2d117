package extractor

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/pkg/errors"
)

// DocumentStatus is the outcome of processing one statement file
type DocumentStatus string

const (
	// StatusProcessed means every page was scanned
	StatusProcessed DocumentStatus = "processed"
	// StatusFailed means the document was reported and skipped
	StatusFailed DocumentStatus = "failed"
)

// DocumentResult describes one statement file
type DocumentResult struct {
	ID         uuid.UUID                `json:"id"`
	File       string                   `json:"file"`
	Format     string                   `json:"format,omitempty"`
	Period     models.StatementPeriod   `json:"period"`
	Account    string                   `json:"account,omitempty"`
	Status     DocumentStatus           `json:"status"`
	Records    []*models.Transaction    `json:"-"`
	Total      decimal.Decimal          `json:"total"`
	Pages      int                      `json:"pages"`
	Skipped    int                      `json:"pages_skipped"`
	RowIssues  []*errors.RowIssue       `json:"row_issues,omitempty"`
	IssueCount int                      `json:"row_issue_count"`
	PageErrors []*errors.ExtractorError `json:"page_errors,omitempty"`
	Error      *errors.ExtractorError   `json:"error,omitempty"`
	Duration   time.Duration            `json:"duration"`
}

func newDocumentResult(file string) *DocumentResult {
	return &DocumentResult{
		ID:      uuid.New(),
		File:    file,
		Status:  StatusProcessed,
		Records: make([]*models.Transaction, 0),
		Total:   decimal.Zero,
	}
}

func (d *DocumentResult) fail(err *errors.ExtractorError) *DocumentResult {
	d.Status = StatusFailed
	d.Error = err
	d.Records = d.Records[:0]
	d.Total = decimal.Zero
	return d
}

// Failed reports whether the document was skipped because of an error
func (d *DocumentResult) Failed() bool {
	return d.Status == StatusFailed
}

// ExtractionResult contains the records of every processed document
type ExtractionResult struct {
	Summary     *ResultSummary        `json:"summary"`
	Records     []*models.Transaction `json:"records"`
	Documents   []*DocumentResult     `json:"documents"`
	ProcessedAt time.Time             `json:"processed_at"`
}

// ResultSummary provides a high-level overview of an extraction run
type ResultSummary struct {
	TotalDocuments     int             `json:"total_documents"`
	ProcessedDocuments int             `json:"processed_documents"`
	FailedDocuments    int             `json:"failed_documents"`
	TotalRecords       int             `json:"total_records"`
	TotalPages         int             `json:"total_pages"`
	PagesSkipped       int             `json:"pages_skipped"`
	RowIssues          int             `json:"row_issues"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	EarliestDate       *time.Time      `json:"earliest_date,omitempty"`
	LatestDate         *time.Time      `json:"latest_date,omitempty"`
	ProcessingDuration time.Duration   `json:"processing_duration"`
}

// DocumentErrors returns the error of every failed document in input order
func (r *ExtractionResult) DocumentErrors() []*errors.ExtractorError {
	var errs []*errors.ExtractorError
	for _, d := range r.Documents {
		if d.Error != nil {
			errs = append(errs, d.Error)
		}
	}
	return errs
}

// ErrorSummary summarizes document failures
func (r *ExtractionResult) ErrorSummary() *errors.ErrorSummary {
	return errors.NewErrorSummary(r.DocumentErrors())
}

// HasFailures reports whether any document was skipped
func (r *ExtractionResult) HasFailures() bool {
	return r.Summary.FailedDocuments > 0
}

func buildSummary(docs []*DocumentResult, records []*models.Transaction, started time.Time) *ResultSummary {
	s := &ResultSummary{
		TotalDocuments: len(docs),
		TotalRecords:   len(records),
		TotalAmount:    decimal.Zero,
	}

	for _, d := range docs {
		if d.Failed() {
			s.FailedDocuments++
		} else {
			s.ProcessedDocuments++
		}
		s.TotalPages += d.Pages
		s.PagesSkipped += d.Skipped
		s.RowIssues += d.IssueCount
	}

	for _, r := range records {
		s.TotalAmount = s.TotalAmount.Add(r.Amount)
	}
	if len(records) > 0 {
		earliest := records[0].Date
		latest := records[len(records)-1].Date
		s.EarliestDate = &earliest
		s.LatestDate = &latest
	}

	s.ProcessingDuration = time.Since(started)
	return s
}
