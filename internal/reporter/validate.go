package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"golang-statement-extractor/internal/models"
)

// ValidationIssue is one problem found in an extracted CSV
type ValidationIssue struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (i ValidationIssue) String() string {
	s := fmt.Sprintf("line %d", i.Line)
	if i.Column != "" {
		s += fmt.Sprintf(" [%s]", i.Column)
	}
	s += ": " + i.Message
	if i.Value != "" {
		s += fmt.Sprintf(" ('%s')", i.Value)
	}
	return s
}

// ValidationSummary provides aggregate statistics for a valid file
type ValidationSummary struct {
	TotalRecords int             `json:"total_records"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	EarliestDate time.Time       `json:"earliest_date"`
	LatestDate   time.Time       `json:"latest_date"`
	ByAccount    map[string]int  `json:"by_account"`
}

// ValidationResult is the outcome of checking one extracted CSV
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
	Summary  ValidationSummary `json:"summary"`
}

// ValidateCSV checks that r holds records as WriteRecords produces them:
// the fixed header, calendar dates in ascending order, two-decimal prices
// and non-empty merchants. Accounts that are not all digits are warnings.
func ValidateCSV(r io.Reader) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationIssue{},
		Warnings: []ValidationIssue{},
		Summary: ValidationSummary{
			TotalAmount: decimal.Zero,
			ByAccount:   make(map[string]int),
		},
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(CSVHeader)
	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, ValidationIssue{Message: fmt.Sprintf("Cannot parse CSV: %v", err)})
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, ValidationIssue{Line: 1, Message: "File must have a header"})
		return result
	}
	if !validateHeader(records[0], result) {
		return result
	}

	var previous time.Time
	for i, record := range records[1:] {
		line := i + 2

		date, err := time.Parse(models.DateLayout, record[0])
		if err != nil {
			result.Errors = append(result.Errors, ValidationIssue{Line: line, Column: "date", Message: "Invalid date", Value: record[0]})
		} else {
			if date.Before(previous) {
				result.Errors = append(result.Errors, ValidationIssue{
					Line:    line,
					Column:  "date",
					Message: fmt.Sprintf("Out of order: follows %s", previous.Format(models.DateLayout)),
					Value:   record[0],
				})
			}
			previous = date
			if result.Summary.EarliestDate.IsZero() || date.Before(result.Summary.EarliestDate) {
				result.Summary.EarliestDate = date
			}
			if date.After(result.Summary.LatestDate) {
				result.Summary.LatestDate = date
			}
		}

		if strings.TrimSpace(record[1]) == "" {
			result.Errors = append(result.Errors, ValidationIssue{Line: line, Column: "merchant", Message: "Empty merchant"})
		}

		amount, err := models.ParseAmount(record[2])
		if err != nil || models.FormatAmount(amount) != record[2] {
			result.Errors = append(result.Errors, ValidationIssue{Line: line, Column: "price", Message: "Price must be a plain two-decimal amount", Value: record[2]})
		} else {
			result.Summary.TotalAmount = result.Summary.TotalAmount.Add(amount)
		}

		if strings.IndexFunc(record[3], func(c rune) bool { return !unicode.IsDigit(c) }) >= 0 {
			result.Warnings = append(result.Warnings, ValidationIssue{Line: line, Column: "account", Message: "Account is not numeric", Value: record[3]})
		}
		result.Summary.ByAccount[record[3]]++
		result.Summary.TotalRecords++
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func validateHeader(header []string, result *ValidationResult) bool {
	for i, expected := range CSVHeader {
		if header[i] != expected {
			result.Errors = append(result.Errors, ValidationIssue{
				Line:    1,
				Column:  header[i],
				Message: fmt.Sprintf("Expected column '%s', got '%s'", expected, header[i]),
			})
		}
	}
	return len(result.Errors) == 0
}
