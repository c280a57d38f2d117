package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the calendar date format used for output
const DateLayout = "2006-01-02"

// Label is the semantic role assigned to a fragment or fragment group
type Label string

const (
	// LabelNone marks free text, which is the merchant role on inline rows
	LabelNone Label = ""
	// LabelDate marks a transaction date
	LabelDate Label = "date"
	// LabelPrice marks a transaction amount
	LabelPrice Label = "price"
)

// String returns the string representation of Label
func (l Label) String() string {
	return string(l)
}

// LabeledFragment is a piece of text together with its classification
type LabeledFragment struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Transaction is one extracted statement line
type Transaction struct {
	Date     time.Time       `json:"date"`
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"price"`
	Account  string          `json:"account"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(date time.Time, merchant string, amount decimal.Decimal, account string) *Transaction {
	return &Transaction{
		Date:     date,
		Merchant: merchant,
		Amount:   amount,
		Account:  account,
	}
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	if strings.TrimSpace(t.Merchant) == "" {
		return fmt.Errorf("transaction merchant cannot be empty")
	}

	if t.Amount.Exponent() < -2 {
		return fmt.Errorf("transaction amount %s has more than two fractional digits", t.Amount.String())
	}

	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Merchant: %s, Amount: %s, Account: %s}",
		t.Date.Format(DateLayout), t.Merchant, t.Amount.StringFixed(2), t.Account)
}

// MarshalJSON writes the date as a calendar date and the amount with two
// fractional digits.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date   string `json:"date"`
		Amount string `json:"price"`
		*Alias
	}{
		Date:   t.Date.Format(DateLayout),
		Amount: t.Amount.StringFixed(2),
		Alias:  (*Alias)(t),
	})
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.Date.Equal(other.Date) &&
		t.Merchant == other.Merchant &&
		t.Amount.Equal(other.Amount) &&
		t.Account == other.Account
}

// StatementPeriod is the year and month a statement covers. It resolves
// transaction dates printed without a year.
type StatementPeriod struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// ParseStatementPeriod parses value with a Go time layout
func ParseStatementPeriod(layout, value string) (StatementPeriod, error) {
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return StatementPeriod{}, fmt.Errorf("invalid statement period '%s': %w", value, err)
	}
	return StatementPeriod{Year: t.Year(), Month: t.Month()}, nil
}

// String formats the period as "Jan 2006"
func (p StatementPeriod) String() string {
	return fmt.Sprintf("%s %d", p.Month.String()[:3], p.Year)
}

// IsZero reports whether the period is unset
func (p StatementPeriod) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// AdjustYear returns the year a transaction in month belongs to, given the
// year it would otherwise get. A December transaction on a January
// statement belongs to the previous year.
func (p StatementPeriod) AdjustYear(month time.Month, year int) int {
	if month == time.December && p.Month == time.January {
		return year - 1
	}
	return year
}

// StatementContext is the per-document state threaded through page scans.
// Account persists across pages; rows do not.
type StatementContext struct {
	File    string          `json:"file"`
	Format  string          `json:"format"`
	Period  StatementPeriod `json:"period"`
	Account string          `json:"account"`
	Records []*Transaction  `json:"records"`
}

// NewStatementContext creates an empty context for one document
func NewStatementContext(file, format string, period StatementPeriod) *StatementContext {
	return &StatementContext{
		File:    file,
		Format:  format,
		Period:  period,
		Records: make([]*Transaction, 0),
	}
}

// SetAccount records a discovered account identifier. Empty values are ignored
// so a later page without the marker keeps the earlier identifier.
func (c *StatementContext) SetAccount(account string) {
	if account != "" {
		c.Account = account
	}
}

// Add appends a record
func (c *StatementContext) Add(t *Transaction) {
	c.Records = append(c.Records, t)
}

// Total sums the amounts of all records
func (c *StatementContext) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range c.Records {
		total = total.Add(t.Amount)
	}
	return total
}

// ParseAmount parses amount text such as "4.50", "$-12.00" or "1,234.56".
// Exactly two fractional digits are required.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 != 2 {
		return decimal.Zero, fmt.Errorf("amount '%s' must have exactly two fractional digits", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// FormatAmount renders an amount with two fractional digits
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NormalizeMerchant folds compatibility characters that PDF fonts emit
// (ligatures, full-width forms) and trims quotes and line breaks.
func NormalizeMerchant(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	s = strings.Trim(s, "\"")
	return strings.TrimSpace(s)
}

// SortByDate orders records by date, keeping the input order for equal dates
func SortByDate(records []*Transaction) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}
