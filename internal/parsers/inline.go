package parsers

import (
	"time"

	"golang-statement-extractor/internal/layout"
	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/pkg/errors"
	"golang-statement-extractor/pkg/logger"
)

// InlineInterpreter handles statements that print merchant, date and price
// on the same visual line. Dates carry no year; it comes from the
// statement period.
type InlineInterpreter struct {
	format   *FormatConfig
	excluded map[string]bool
	logger   logger.Logger
}

// NewInlineInterpreter creates an interpreter for a simple-inline format
func NewInlineInterpreter(fc *FormatConfig, log logger.Logger) (*InlineInterpreter, error) {
	if fc.Variant != VariantInline {
		return nil, errors.ConfigurationError(errors.CodeConfigConflict, "variant", fc.Variant, nil).
			WithSuggestion("use NewLookaheadInterpreter for this format")
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	excluded := make(map[string]bool, len(fc.ExcludedMerchants))
	for _, m := range fc.ExcludedMerchants {
		excluded[models.NormalizeMerchant(m)] = true
	}

	return &InlineInterpreter{
		format:   fc,
		excluded: excluded,
		logger:   log.WithComponent("inline_interpreter"),
	}, nil
}

// Interpret implements RowInterpreter
func (i *InlineInterpreter) Interpret(page *PageContext, rows []*layout.Row) error {
	for _, row := range rows {
		if !row.HasExactly(models.LabelNone, models.LabelDate, models.LabelPrice) {
			continue
		}
		i.logger.Debugf("line %f: %v", row.Key, row.Labels())

		trx, issue := i.build(page.Statement, row)
		if issue != nil {
			i.logger.WithError(issue).Warnf("Skipping row at %.2f on page %d", row.Key, page.Number)
			if err := page.report(issue, row); err != nil {
				return err
			}
			continue
		}

		if i.excluded[trx.Merchant] {
			i.logger.Debugf("Excluded merchant: %s", trx.Merchant)
			continue
		}

		page.Statement.Add(trx)
		i.logger.Debugf("Expense: %s", trx)
	}
	return nil
}

func (i *InlineInterpreter) build(stmt *models.StatementContext, row *layout.Row) (*models.Transaction, *errors.ExtractorError) {
	dateEntry, _ := row.Get(models.LabelDate)
	priceEntry, _ := row.Get(models.LabelPrice)
	merchantEntry, _ := row.Get(models.LabelNone)

	parsed, err := time.Parse(i.format.DateLayout, dateEntry.Text)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidDate, "date", dateEntry.Text, err)
	}
	year := stmt.Period.AdjustYear(parsed.Month(), stmt.Period.Year)
	date := time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if date.Month() != parsed.Month() {
		return nil, errors.ParseError(errors.CodeInvalidDate, "date", dateEntry.Text, nil).
			WithContext("year", year)
	}

	amount, err := models.ParseAmount(priceEntry.Text)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidAmount, "price", priceEntry.Text, err)
	}

	trx := models.NewTransaction(date, models.NormalizeMerchant(merchantEntry.Text), amount, stmt.Account)
	if err := trx.Validate(); err != nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "merchant", merchantEntry.Text, err)
	}
	return trx, nil
}
