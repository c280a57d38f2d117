package parsers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang-statement-extractor/internal/layout"
	"golang-statement-extractor/internal/models"
)

// Variant names a row interpretation strategy
type Variant string

const (
	// VariantInline reads merchant, date and price from one visual line
	VariantInline Variant = "simple-inline"
	// VariantLookahead reads date and price from one line and the merchant
	// from the line that follows it
	VariantLookahead Variant = "price-then-merchant"
)

// DefaultLookaheadThreshold is the largest vertical gap, in layout units,
// allowed between a transaction row and its merchant row
const DefaultLookaheadThreshold = 2.0

// AccountRule locates the account identifier on a page
type AccountRule struct {
	Marker    string `json:"marker" mapstructure:"marker"`
	Separator string `json:"separator" mapstructure:"separator"`
	Digits    int    `json:"digits" mapstructure:"digits"`
}

// Extract returns the account identifier from text containing the marker.
// The identifier is the last Digits digits found after the first Separator
// on the marker's line.
func (r AccountRule) Extract(text string) (string, bool) {
	if !r.HasMarker(text) {
		return "", false
	}

	line := text[strings.Index(text, r.Marker):]
	if nl := strings.IndexAny(line, "\r\n"); nl >= 0 {
		line = line[:nl]
	}
	remainder := line[len(r.Marker):]
	if r.Separator != "" {
		if _, after, found := strings.Cut(line, r.Separator); found {
			remainder = after
		}
	}

	return r.Value(remainder)
}

// HasMarker reports whether text contains the account marker
func (r AccountRule) HasMarker(text string) bool {
	return r.Marker != "" && strings.Contains(text, r.Marker)
}

// Value returns the identifier held by text that follows the marker, for
// layouts that print the marker and the number as separate phrases.
func (r AccountRule) Value(text string) (string, bool) {
	digits := strings.Map(func(c rune) rune {
		if unicode.IsDigit(c) {
			return c
		}
		return -1
	}, text)
	if digits == "" {
		return "", false
	}
	if r.Digits > 0 && len(digits) > r.Digits {
		digits = digits[len(digits)-r.Digits:]
	}
	return digits, true
}

// FormatConfig describes one known statement format
type FormatConfig struct {
	Name               string      `json:"name" mapstructure:"name"`
	Variant            Variant     `json:"variant" mapstructure:"variant"`
	Description        string      `json:"description,omitempty" mapstructure:"description"`
	FilePattern        string      `json:"file_pattern" mapstructure:"file_pattern"`
	PeriodLayout       string      `json:"period_layout" mapstructure:"period_layout"`
	DatePattern        string      `json:"date_pattern" mapstructure:"date_pattern"`
	PricePattern       string      `json:"price_pattern" mapstructure:"price_pattern"`
	DateLayout         string      `json:"date_layout" mapstructure:"date_layout"`
	SectionMarker      string      `json:"section_marker,omitempty" mapstructure:"section_marker"`
	Account            AccountRule `json:"account" mapstructure:"account"`
	ExcludedMerchants  []string    `json:"excluded_merchants,omitempty" mapstructure:"excluded_merchants"`
	LookaheadThreshold float64     `json:"lookahead_threshold,omitempty" mapstructure:"lookahead_threshold"`
}

// Validate checks if the format configuration is valid
func (fc *FormatConfig) Validate() error {
	if strings.TrimSpace(fc.Name) == "" {
		return fmt.Errorf("format name cannot be empty")
	}

	switch fc.Variant {
	case VariantInline, VariantLookahead:
	default:
		return fmt.Errorf("format %s: unknown variant '%s'", fc.Name, fc.Variant)
	}

	re, err := regexp.Compile(fc.FilePattern)
	if err != nil {
		return fmt.Errorf("format %s: invalid file pattern: %w", fc.Name, err)
	}
	if re.SubexpIndex("date") < 0 {
		return fmt.Errorf("format %s: file pattern must capture a 'date' group", fc.Name)
	}

	for field, pattern := range map[string]string{"date": fc.DatePattern, "price": fc.PricePattern} {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("format %s: %s pattern cannot be empty", fc.Name, field)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("format %s: invalid %s pattern: %w", fc.Name, field, err)
		}
	}

	if strings.TrimSpace(fc.PeriodLayout) == "" {
		return fmt.Errorf("format %s: period layout cannot be empty", fc.Name)
	}
	if strings.TrimSpace(fc.DateLayout) == "" {
		return fmt.Errorf("format %s: date layout cannot be empty", fc.Name)
	}

	if fc.Account.Digits < 0 {
		return fmt.Errorf("format %s: account digits cannot be negative, got %d", fc.Name, fc.Account.Digits)
	}

	if fc.Variant == VariantLookahead {
		if fc.LookaheadThreshold <= 0 {
			return fmt.Errorf("format %s: lookahead threshold must be positive, got %g", fc.Name, fc.LookaheadThreshold)
		}
		if len(fc.ExcludedMerchants) > 0 {
			return fmt.Errorf("format %s: merchant exclusions apply only to the %s variant", fc.Name, VariantInline)
		}
	}

	return nil
}

// Classifier builds the ordered fragment classifier for the format. Date
// rules come before price rules.
func (fc *FormatConfig) Classifier() (*layout.Classifier, error) {
	date, err := regexp.Compile(fc.DatePattern)
	if err != nil {
		return nil, fmt.Errorf("format %s: invalid date pattern: %w", fc.Name, err)
	}
	price, err := regexp.Compile(fc.PricePattern)
	if err != nil {
		return nil, fmt.Errorf("format %s: invalid price pattern: %w", fc.Name, err)
	}
	return layout.NewClassifier(
		layout.Rule{Pattern: date, Label: models.LabelDate},
		layout.Rule{Pattern: price, Label: models.LabelPrice},
	), nil
}

// Clone returns a deep copy so callers can tune a predefined format
func (fc *FormatConfig) Clone() *FormatConfig {
	clone := *fc
	clone.ExcludedMerchants = append([]string(nil), fc.ExcludedMerchants...)
	return &clone
}

// Predefined statement formats. Dispatch tries them in this order.
var (
	// LookaheadCardConfig is a card statement whose merchant line follows
	// its date and price line
	LookaheadCardConfig = &FormatConfig{
		Name:               string(VariantLookahead),
		Variant:            VariantLookahead,
		Description:        "Card statement, merchant printed on the line below date and amount",
		FilePattern:        `^Statement_(?P<date>[A-Za-z]{3} [0-9]{4})\.pdf$`,
		PeriodLayout:       "Jan 2006",
		DatePattern:        `^[0-9]{2}/[0-9]{2}/[0-9]{2}$`,
		PricePattern:       `^\$?-?[0-9,]*\.[0-9]{2}$`,
		DateLayout:         "01/02/06",
		Account:            AccountRule{Marker: "Account Ending", Separator: "-", Digits: 5},
		LookaheadThreshold: DefaultLookaheadThreshold,
	}

	// InlineBankConfig is a bank statement with merchant, date and amount on
	// one line inside an ACCOUNT ACTIVITY section
	InlineBankConfig = &FormatConfig{
		Name:              string(VariantInline),
		Variant:           VariantInline,
		Description:       "Bank statement, merchant, date and amount on one line",
		FilePattern:       `^(?P<date>\d{4}-\d{2}-\d{2})-statements-\d{4}\.pdf$`,
		PeriodLayout:      "2006-01-02",
		DatePattern:       `^[0-9]{2}/[0-9]{2}$`,
		PricePattern:      `^-?(?:[0-9]{1,3}(?:,[0-9]{3})+|[0-9]*)\.[0-9]{2}$`,
		DateLayout:        "01/02",
		SectionMarker:     "ACCOUNT ACTIVITY",
		Account:           AccountRule{Marker: "Account Number:", Separator: ":", Digits: 4},
		ExcludedMerchants: []string{"AUTOMATIC PAYMENT - THANK YOU"},
	}
)

// GetFormatConfig returns a copy of a predefined format by name
func GetFormatConfig(name string) *FormatConfig {
	for _, fc := range ListAvailableFormatConfigs() {
		if strings.EqualFold(fc.Name, strings.TrimSpace(name)) {
			return fc.Clone()
		}
	}
	return nil
}

// ListAvailableFormatConfigs returns the predefined formats in dispatch order
func ListAvailableFormatConfigs() []*FormatConfig {
	return []*FormatConfig{
		LookaheadCardConfig,
		InlineBankConfig,
	}
}

// DefaultFormatConfigs returns copies of the predefined formats
func DefaultFormatConfigs() []*FormatConfig {
	configs := ListAvailableFormatConfigs()
	clones := make([]*FormatConfig, len(configs))
	for i, fc := range configs {
		clones[i] = fc.Clone()
	}
	return clones
}
