package parsers

import (
	"time"

	"golang-statement-extractor/internal/layout"
	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/pkg/errors"
	"golang-statement-extractor/pkg/logger"
)

// LookaheadInterpreter handles statements that print date and price on one
// line and the merchant on the line right after it. Dates carry a two-digit
// year.
type LookaheadInterpreter struct {
	format    *FormatConfig
	threshold float64
	logger    logger.Logger
}

// NewLookaheadInterpreter creates an interpreter for a price-then-merchant format
func NewLookaheadInterpreter(fc *FormatConfig, log logger.Logger) (*LookaheadInterpreter, error) {
	if fc.Variant != VariantLookahead {
		return nil, errors.ConfigurationError(errors.CodeConfigConflict, "variant", fc.Variant, nil).
			WithSuggestion("use NewInlineInterpreter for this format")
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	threshold := fc.LookaheadThreshold
	if threshold <= 0 {
		threshold = DefaultLookaheadThreshold
	}

	return &LookaheadInterpreter{
		format:    fc,
		threshold: threshold,
		logger:    log.WithComponent("lookahead_interpreter"),
	}, nil
}

// Interpret implements RowInterpreter
func (l *LookaheadInterpreter) Interpret(page *PageContext, rows []*layout.Row) error {
	for idx, row := range rows {
		if !row.Has(models.LabelDate) || !row.Has(models.LabelPrice) {
			continue
		}

		if idx+1 >= len(rows) {
			l.logger.Errorf("No merchant row after transaction @ %f: %v", row.Key, rowTexts(row))
			if err := page.report(errors.LayoutError(errors.CodeMissingMerchantRow, row.Key, 0), row); err != nil {
				return err
			}
			continue
		}

		next := rows[idx+1]
		gap := next.Key - row.Key
		if gap > l.threshold {
			l.logger.Errorf("Bailing on transaction @ %f: %v", gap, rowTexts(row))
			if err := page.report(errors.LayoutError(errors.CodeLookaheadAnomaly, row.Key, gap), row); err != nil {
				return err
			}
			continue
		}

		trx, issue := l.build(page.Statement, row, next)
		if issue != nil {
			l.logger.WithError(issue).Warnf("Skipping row at %.2f on page %d", row.Key, page.Number)
			if err := page.report(issue, row); err != nil {
				return err
			}
			continue
		}

		page.Statement.Add(trx)
		l.logger.Debugf("Expense: %s", trx)
	}
	return nil
}

func (l *LookaheadInterpreter) build(stmt *models.StatementContext, row, next *layout.Row) (*models.Transaction, *errors.ExtractorError) {
	dateEntry, _ := row.Get(models.LabelDate)
	priceEntry, _ := row.Get(models.LabelPrice)

	parsed, err := time.Parse(l.format.DateLayout, dateEntry.Text)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidDate, "date", dateEntry.Text, err)
	}
	year := stmt.Period.AdjustYear(parsed.Month(), parsed.Year())
	date := time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if date.Month() != parsed.Month() {
		return nil, errors.ParseError(errors.CodeInvalidDate, "date", dateEntry.Text, nil).
			WithContext("year", year)
	}

	amount, err := models.ParseAmount(priceEntry.Text)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidAmount, "price", priceEntry.Text, err)
	}

	merchant := models.NormalizeMerchant(next.Entries[0].Text)
	trx := models.NewTransaction(date, merchant, amount, stmt.Account)
	if err := trx.Validate(); err != nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "merchant", next.Entries[0].Text, err)
	}
	return trx, nil
}
