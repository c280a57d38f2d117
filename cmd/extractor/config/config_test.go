package config

import (
	"testing"

	"golang-statement-extractor/internal/extractor"
	"golang-statement-extractor/internal/parsers"
	"golang-statement-extractor/internal/reporter"
	"golang-statement-extractor/pkg/logger"
)

func TestCreateFormatConfigs(t *testing.T) {
	formats, err := CreateFormatConfigs(nil, FormatOverrides{
		LookaheadThreshold: 3.5,
		ExcludedMerchants:  []string{" PAYMENT RECEIVED ", ""},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(formats) != 2 {
		t.Fatalf("expected 2 formats, got %d", len(formats))
	}

	for _, fc := range formats {
		switch fc.Variant {
		case parsers.VariantLookahead:
			if fc.LookaheadThreshold != 3.5 {
				t.Errorf("expected threshold override, got %g", fc.LookaheadThreshold)
			}
			if len(fc.ExcludedMerchants) != 0 {
				t.Errorf("lookahead format must not get exclusions: %v", fc.ExcludedMerchants)
			}
		case parsers.VariantInline:
			want := []string{"AUTOMATIC PAYMENT - THANK YOU", "PAYMENT RECEIVED"}
			if len(fc.ExcludedMerchants) != len(want) {
				t.Fatalf("expected exclusions %v, got %v", want, fc.ExcludedMerchants)
			}
			for i := range want {
				if fc.ExcludedMerchants[i] != want[i] {
					t.Errorf("exclusion %d = %q, want %q", i, fc.ExcludedMerchants[i], want[i])
				}
			}
		}
	}

	if parsers.LookaheadCardConfig.LookaheadThreshold != parsers.DefaultLookaheadThreshold {
		t.Error("overrides must not modify the predefined formats")
	}
	if len(parsers.InlineBankConfig.ExcludedMerchants) != 1 {
		t.Error("overrides must not modify the predefined exclusions")
	}
}

func TestCreateFormatConfigs_ZeroThresholdKeepsDefault(t *testing.T) {
	formats, err := CreateFormatConfigs(nil, FormatOverrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if formats[0].LookaheadThreshold != parsers.DefaultLookaheadThreshold {
		t.Errorf("expected default threshold, got %g", formats[0].LookaheadThreshold)
	}

	if _, err := CreateFormatConfigs([]*parsers.FormatConfig{nil}, FormatOverrides{}); err == nil {
		t.Error("expected error for nil format")
	}
}

func TestCreateExtractorConfig(t *testing.T) {
	config := CreateExtractorConfig(true, 5)
	if !config.Strict || config.MaxRowIssues != 5 {
		t.Errorf("unexpected config: %+v", config)
	}
}

func TestCreatePDFOptions(t *testing.T) {
	if opts := CreatePDFOptions(false); opts.TextOnly || opts.LineNudge <= 0 {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts := CreatePDFOptions(true); !opts.TextOnly {
		t.Errorf("expected text-only options: %+v", opts)
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format string
		want   reporter.OutputFormat
		valid  bool
	}{
		{"csv", reporter.FormatCSV, true},
		{"json", reporter.FormatJSON, true},
		{"console", reporter.FormatConsole, true},
		{"xml", "xml", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			config := CreateReportConfig(tt.format)
			if config.Format != tt.want {
				t.Errorf("expected format %s, got %s", tt.want, config.Format)
			}
			if err := config.Validate(); (err == nil) != tt.valid {
				t.Errorf("Validate() error = %v, valid %v", err, tt.valid)
			}
		})
	}
}

func TestCreateLoggerConfig(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		verbose bool
		want    logger.Level
		wantFmt logger.Format
	}{
		{"defaults", "", "", false, logger.InfoLevel, logger.TextFormat},
		{"explicit", "WARN", "json", false, logger.WarnLevel, logger.JSONFormat},
		{"verbose wins", "error", "", true, logger.DebugLevel, logger.TextFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := CreateLoggerConfig(tt.level, tt.format, tt.verbose)
			if config.Level != tt.want || config.Format != tt.wantFmt {
				t.Errorf("got %s/%s, want %s/%s", config.Level, config.Format, tt.want, tt.wantFmt)
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	formats, _ := CreateFormatConfigs(nil, FormatOverrides{})
	good := CreateExtractorConfig(false, 100)
	report := CreateReportConfig("csv")

	if err := ValidateConfig(formats, good, report); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateConfig(nil, good, report); err == nil {
		t.Error("expected error for missing formats")
	}
	if err := ValidateConfig(formats, &extractor.Config{MaxRowIssues: -1}, report); err == nil {
		t.Error("expected error for invalid extractor config")
	}
	if err := ValidateConfig(formats, good, CreateReportConfig("xml")); err == nil {
		t.Error("expected error for invalid report config")
	}

	bad := parsers.GetFormatConfig("price-then-merchant")
	bad.LookaheadThreshold = 0
	if err := ValidateConfig([]*parsers.FormatConfig{bad}, good, report); err == nil {
		t.Error("expected error for invalid format")
	}
}
