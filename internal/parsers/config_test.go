package parsers

import (
	"testing"

	"golang-statement-extractor/pkg/errors"
)

func TestAccountRule_Extract(t *testing.T) {
	number := InlineBankConfig.Account
	ending := LookaheadCardConfig.Account

	tests := []struct {
		name   string
		rule   AccountRule
		text   string
		want   string
		wantOK bool
	}{
		{"masked account number", number, "Account Number: XXXX-1234", "1234", true},
		{"full account number", number, "Account Number: 000123456789\n", "6789", true},
		{"marker mid line", number, "Primary Account Number: 9876 5432", "5432", true},
		{"marker absent", number, "ACCOUNT ACTIVITY\n", "", false},
		{"no digits", number, "Account Number: XXXX\n", "", false},
		{"line break ends identifier", number, "Account Number: 1111\nPage 2 of 4", "1111", true},
		{"account ending", ending, "Account Ending 7-12345\n", "12345", true},
		{"account ending short", ending, "Account Ending 1-001", "001", true},
		{"no separator uses text after marker", ending, "Account Ending 91004", "91004", true},
		{"empty marker", AccountRule{}, "Account Number: 1234", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rule.Extract(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Extract(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormatConfig_Validate(t *testing.T) {
	for _, fc := range ListAvailableFormatConfigs() {
		if err := fc.Validate(); err != nil {
			t.Errorf("predefined format %s is invalid: %v", fc.Name, err)
		}
	}

	tests := []struct {
		name   string
		mutate func(*FormatConfig)
	}{
		{"empty name", func(fc *FormatConfig) { fc.Name = " " }},
		{"unknown variant", func(fc *FormatConfig) { fc.Variant = "columns" }},
		{"bad file pattern", func(fc *FormatConfig) { fc.FilePattern = "(" }},
		{"file pattern without date group", func(fc *FormatConfig) { fc.FilePattern = `^x\.pdf$` }},
		{"empty date pattern", func(fc *FormatConfig) { fc.DatePattern = "" }},
		{"bad price pattern", func(fc *FormatConfig) { fc.PricePattern = "[" }},
		{"empty period layout", func(fc *FormatConfig) { fc.PeriodLayout = "" }},
		{"empty date layout", func(fc *FormatConfig) { fc.DateLayout = "" }},
		{"negative digits", func(fc *FormatConfig) { fc.Account.Digits = -1 }},
		{"zero threshold", func(fc *FormatConfig) { fc.LookaheadThreshold = 0 }},
		{"exclusions on lookahead", func(fc *FormatConfig) { fc.ExcludedMerchants = []string{"X"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := LookaheadCardConfig.Clone()
			tt.mutate(fc)
			if err := fc.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFormatConfig_Clone(t *testing.T) {
	clone := InlineBankConfig.Clone()
	clone.ExcludedMerchants[0] = "CHANGED"
	clone.Name = "other"

	if InlineBankConfig.ExcludedMerchants[0] != "AUTOMATIC PAYMENT - THANK YOU" {
		t.Error("clone shares exclusion list with the predefined format")
	}
	if InlineBankConfig.Name != string(VariantInline) {
		t.Error("clone shares fields with the predefined format")
	}
}

func TestGetFormatConfig(t *testing.T) {
	if fc := GetFormatConfig(" Simple-Inline "); fc == nil || fc.Variant != VariantInline {
		t.Errorf("expected inline format, got %+v", fc)
	}
	if fc := GetFormatConfig("missing"); fc != nil {
		t.Errorf("expected nil, got %+v", fc)
	}
	if len(DefaultFormatConfigs()) != len(ListAvailableFormatConfigs()) {
		t.Error("DefaultFormatConfigs should copy every predefined format")
	}
}

func TestRegistry_Select(t *testing.T) {
	registry, err := NewRegistry(DefaultFormatConfigs(), nil)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	tests := []struct {
		path       string
		wantFormat string
		wantPeriod string
		wantCode   errors.ErrorCode
	}{
		{"2023-04-10-statements-1234.pdf", "simple-inline", "Apr 2023", ""},
		{"/home/me/downloads/2024-01-08-statements-5678.pdf", "simple-inline", "Jan 2024", ""},
		{"Statement_Mar 2023.pdf", "price-then-merchant", "Mar 2023", ""},
		{"statements/Statement_Dec 2022.pdf", "price-then-merchant", "Dec 2022", ""},
		{"statement.pdf", "", "", errors.CodeNoMatchingFormat},
		{"2023-04-10-statements-1234.pdf.bak", "", "", errors.CodeNoMatchingFormat},
		{"2023-13-40-statements-1234.pdf", "", "", errors.CodeInvalidPeriod},
		{"Statement_Foo 2023.pdf", "", "", errors.CodeInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			sel, err := registry.Select(tt.path)
			if tt.wantCode != "" {
				if !errors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected code %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sel.Format.Name != tt.wantFormat {
				t.Errorf("format = %s, want %s", sel.Format.Name, tt.wantFormat)
			}
			if sel.Period.String() != tt.wantPeriod {
				t.Errorf("period = %s, want %s", sel.Period, tt.wantPeriod)
			}
		})
	}
}

func TestRegistry_SelectAmbiguous(t *testing.T) {
	other := InlineBankConfig.Clone()
	other.Name = "inline-copy"

	registry, err := NewRegistry([]*FormatConfig{InlineBankConfig.Clone(), other}, nil)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	_, err = registry.Select("2023-04-10-statements-1234.pdf")
	extractorErr, ok := errors.AsExtractorError(err)
	if !ok || extractorErr.Code != errors.CodeAmbiguousFormat {
		t.Fatalf("expected ambiguous_format, got %v", err)
	}
	if extractorErr.Category != errors.CategoryDispatch {
		t.Errorf("expected dispatch category, got %s", extractorErr.Category)
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	if _, err := NewRegistry(nil, nil); !errors.HasCode(err, errors.CodeMissingConfig) {
		t.Errorf("expected missing_config, got %v", err)
	}

	bad := InlineBankConfig.Clone()
	bad.FilePattern = "("
	if _, err := NewRegistry([]*FormatConfig{bad}, nil); !errors.HasCode(err, errors.CodeInvalidConfig) {
		t.Errorf("expected invalid_config, got %v", err)
	}

	if _, err := NewRegistry([]*FormatConfig{InlineBankConfig.Clone(), InlineBankConfig.Clone()}, nil); !errors.HasCode(err, errors.CodeConfigConflict) {
		t.Errorf("expected config_conflict, got %v", err)
	}
}

func TestNewInterpreter(t *testing.T) {
	in, err := NewInterpreter(InlineBankConfig, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := in.(*InlineInterpreter); !ok {
		t.Errorf("expected *InlineInterpreter, got %T", in)
	}

	la, err := NewInterpreter(LookaheadCardConfig, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := la.(*LookaheadInterpreter); !ok {
		t.Errorf("expected *LookaheadInterpreter, got %T", la)
	}

	if _, err := NewInlineInterpreter(LookaheadCardConfig, nil); err == nil {
		t.Error("expected variant mismatch error")
	}
}
