package errors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RowContext locates a row inside a statement document
type RowContext struct {
	File   string  `json:"file"`
	Page   int     `json:"page"`
	RowKey float64 `json:"row_key"`
	Label  string  `json:"label,omitempty"`
	Value  string  `json:"value,omitempty"`
}

// RowIssue is a recoverable problem with a single qualifying row. The row
// is skipped and extraction continues unless the run is strict.
type RowIssue struct {
	*ExtractorError
	Row       *RowContext `json:"row"`
	Fragments []string    `json:"fragments,omitempty"`
}

// Error implements the error interface with the row location appended
func (e *RowIssue) Error() string {
	parts := []string{e.ExtractorError.Error()}

	if e.Row != nil {
		location := fmt.Sprintf("at %s", filepath.Base(e.Row.File))
		if e.Row.Page > 0 {
			location += fmt.Sprintf(" page %d", e.Row.Page)
		}
		location += fmt.Sprintf(" row %.2f", e.Row.RowKey)
		parts = append(parts, location)
	}

	return strings.Join(parts, " ")
}

// GetDetailedError returns a detailed multi-line error description
func (e *RowIssue) GetDetailedError() string {
	var lines []string

	lines = append(lines, fmt.Sprintf("ERROR: %s", e.Message))

	if e.Row != nil {
		lines = append(lines, fmt.Sprintf("  → File: %s", e.Row.File))
		lines = append(lines, fmt.Sprintf("  → Page: %d", e.Row.Page))
		lines = append(lines, fmt.Sprintf("  → Row: %.2f", e.Row.RowKey))
		if e.Row.Value != "" {
			lines = append(lines, fmt.Sprintf("  → Value: '%s'", e.Row.Value))
		}
	}

	if len(e.Fragments) > 0 {
		lines = append(lines, fmt.Sprintf("  → Fragments: %s", strings.Join(e.Fragments, " | ")))
	}

	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  → Suggestion: %s", e.Suggestion))
	}

	return strings.Join(lines, "\n")
}

// NewRowIssue attaches a row location to an error
func NewRowIssue(err *ExtractorError, row *RowContext) *RowIssue {
	if row != nil {
		err.WithContext("file", row.File).
			WithContext("page", row.Page).
			WithContext("row_key", row.RowKey)
	}
	return &RowIssue{
		ExtractorError: err,
		Row:            row,
	}
}

// WithFragments records the row's fragment texts for diagnostics
func (e *RowIssue) WithFragments(fragments ...string) *RowIssue {
	e.Fragments = fragments
	return e
}

// RowIssueCollector collects row issues for one document. At most
// maxIssues are kept; later ones are only counted.
type RowIssueCollector struct {
	issues    []*RowIssue
	maxIssues int
	strict    bool
	total     int
}

// NewRowIssueCollector creates a new collector. A maxIssues of zero or less
// means no limit.
func NewRowIssueCollector(maxIssues int, strict bool) *RowIssueCollector {
	return &RowIssueCollector{
		issues:    make([]*RowIssue, 0),
		maxIssues: maxIssues,
		strict:    strict,
	}
}

// Add records an issue and reports whether extraction may continue. Only a
// parse or validation issue in strict mode stops extraction; layout
// anomalies never do.
func (c *RowIssueCollector) Add(issue *RowIssue) bool {
	if issue == nil {
		return true
	}

	c.total++
	if c.maxIssues <= 0 || len(c.issues) < c.maxIssues {
		c.issues = append(c.issues, issue)
	}

	if c.strict && (issue.Category == CategoryParse || issue.Category == CategoryValidation) {
		return false
	}
	return true
}

// Total returns the number of issues added, including those not kept
func (c *RowIssueCollector) Total() int {
	return c.total
}

// Dropped returns the number of issues counted but not kept
func (c *RowIssueCollector) Dropped() int {
	return c.total - len(c.issues)
}

// HasIssues returns true if any issues have been collected
func (c *RowIssueCollector) HasIssues() bool {
	return len(c.issues) > 0
}

// Issues returns all collected issues
func (c *RowIssueCollector) Issues() []*RowIssue {
	return c.issues
}

// FormatRowIssuesForUser formats row issues grouped by file, detailing at
// most maxDetailed issues per file. Zero details every issue.
func FormatRowIssuesForUser(issues []*RowIssue, maxDetailed int) string {
	if len(issues) == 0 {
		return "No row issues"
	}

	if len(issues) == 1 {
		return issues[0].GetDetailedError()
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Found %d row issues:", len(issues)))
	lines = append(lines, "")

	var files []string
	issuesByFile := make(map[string][]*RowIssue)
	for _, issue := range issues {
		file := "unknown"
		if issue.Row != nil {
			file = filepath.Base(issue.Row.File)
		}
		if _, seen := issuesByFile[file]; !seen {
			files = append(files, file)
		}
		issuesByFile[file] = append(issuesByFile[file], issue)
	}

	for _, file := range files {
		fileIssues := issuesByFile[file]
		lines = append(lines, fmt.Sprintf("File: %s (%d issues)", file, len(fileIssues)))

		for i, issue := range fileIssues {
			if maxDetailed > 0 && i == maxDetailed {
				lines = append(lines, "")
				lines = append(lines, fmt.Sprintf("... and %d more issues in this file", len(fileIssues)-maxDetailed))
				break
			}
			lines = append(lines, "")
			lines = append(lines, issue.GetDetailedError())
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
