package parsers

import (
	"golang-statement-extractor/internal/layout"
	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/pkg/errors"
)

// RowInterpreter turns a page's ordered rows into transaction records
type RowInterpreter interface {
	// Interpret scans rows in ascending key order and appends records to
	// the page's statement. A non-nil error aborts the document.
	Interpret(page *PageContext, rows []*layout.Row) error
}

// PageContext carries the document-scoped state into one page's
// interpretation
type PageContext struct {
	File      string
	Number    int
	Statement *models.StatementContext
	Issues    *errors.RowIssueCollector
}

// report records a skipped row. It returns the error when the collector
// says extraction must stop.
func (pc *PageContext) report(err *errors.ExtractorError, row *layout.Row) error {
	issue := errors.NewRowIssue(err, &errors.RowContext{
		File:   pc.File,
		Page:   pc.Number,
		RowKey: row.Key,
	}).WithFragments(rowTexts(row)...)

	if pc.Issues == nil {
		return nil
	}
	if !pc.Issues.Add(issue) {
		return issue.ExtractorError
	}
	return nil
}

func rowTexts(row *layout.Row) []string {
	texts := make([]string, len(row.Entries))
	for i, e := range row.Entries {
		texts[i] = e.Text
	}
	return texts
}
