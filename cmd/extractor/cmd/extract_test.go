package cmd

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-statement-extractor/internal/parsers"
	"golang-statement-extractor/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := writeFile(t, tmpDir, "Statement_Jan 2024.pdf", "%PDF-1.4")

	tests := []struct {
		name     string
		filePath string
		wantCode errors.ErrorCode
	}{
		{"valid file", validFile, ""},
		{"empty path", "", errors.CodeMissingField},
		{"non-existent file", "/non/existent/file.pdf", errors.CodeFileNotFound},
		{"directory instead of file", tmpDir, errors.CodeFileCorrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, "statement file")
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestValidateExtractFlags(t *testing.T) {
	tmpDir := t.TempDir()
	statement := writeFile(t, tmpDir, "Statement_Jan 2024.pdf", "%PDF-1.4")

	tests := []struct {
		name          string
		args          []string
		setupFlags    func()
		errorContains string
	}{
		{
			name: "valid flags",
			args: []string{statement},
			setupFlags: func() {
				viper.Set("output-format", "csv")
				viper.Set("lookahead-threshold", 2.0)
			},
		},
		{
			name: "files from config",
			setupFlags: func() {
				viper.Set("files", []string{statement})
				viper.Set("output-format", "json")
				viper.Set("lookahead-threshold", 2.0)
			},
		},
		{
			name:          "no files",
			setupFlags:    func() {},
			errorContains: "at least one statement file is required",
		},
		{
			name: "invalid output format",
			args: []string{statement},
			setupFlags: func() {
				viper.Set("output-format", "xml")
				viper.Set("lookahead-threshold", 2.0)
			},
			errorContains: "invalid output format",
		},
		{
			name: "non-positive threshold",
			args: []string{statement},
			setupFlags: func() {
				viper.Set("output-format", "csv")
				viper.Set("lookahead-threshold", 0.0)
			},
			errorContains: "lookahead threshold must be positive",
		},
		{
			name: "negative max row issues",
			args: []string{statement},
			setupFlags: func() {
				viper.Set("output-format", "csv")
				viper.Set("lookahead-threshold", 2.0)
				viper.Set("max-row-issues", -1)
			},
			errorContains: "max row issues cannot be negative",
		},
		{
			name: "missing statement",
			args: []string{filepath.Join(tmpDir, "missing.pdf")},
			setupFlags: func() {
				viper.Set("output-format", "csv")
				viper.Set("lookahead-threshold", 2.0)
			},
			errorContains: "file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			tt.setupFlags()

			err := validateExtractFlags(&cobra.Command{}, tt.args)

			if tt.errorContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q but got none", tt.errorContains)
			}
			extractorErr, ok := errors.AsExtractorError(err)
			msg := err.Error()
			if ok && extractorErr.Cause != nil {
				msg += " " + extractorErr.Cause.Error()
			}
			if !strings.Contains(msg, tt.errorContains) {
				t.Errorf("expected error to contain '%s', got: %v", tt.errorContains, msg)
			}
		})
	}
	viper.Reset()
}

func TestExtractCommandHelp(t *testing.T) {
	cmd := extractCmd

	var helpOutput bytes.Buffer
	cmd.SetOut(&helpOutput)
	cmd.Help()

	helpText := helpOutput.String()
	for _, section := range []string{
		"Usage:",
		"Examples:",
		"Flags:",
		"--output",
		"--output-format",
		"--strict",
		"--lookahead-threshold",
		"--text-only",
		"--excluded-merchants",
		"--max-row-issues",
	} {
		if !strings.Contains(helpText, section) {
			t.Errorf("help text should contain '%s'", section)
		}
	}
}

func TestFlagDefaults(t *testing.T) {
	tests := []struct {
		flagName string
		defValue string
	}{
		{"output", "-"},
		{"output-format", "csv"},
		{"strict", "false"},
		{"lookahead-threshold", "2"},
		{"text-only", "true"},
		{"max-row-issues", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := extractCmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("flag '%s' not found", tt.flagName)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("flag '%s' default = %s, want %s", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestRunExtract_UnrecognizedStatementsAreReported(t *testing.T) {
	tmpDir := t.TempDir()
	statement := writeFile(t, tmpDir, "notes.pdf", "%PDF-1.4")
	output := filepath.Join(tmpDir, "out", "expenses.csv")

	viper.Reset()
	defer viper.Reset()
	viper.Set("output", output)
	viper.Set("output-format", "csv")
	viper.Set("lookahead-threshold", 2.0)
	viper.Set("text-only", true)
	viper.Set("max-row-issues", 100)

	if err := validateExtractFlags(&cobra.Command{}, []string{statement}); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	err := runExtract(&cobra.Command{}, nil)

	var summary *errors.ErrorSummary
	if !stderrors.As(err, &summary) {
		t.Fatalf("expected an error summary, got %v", err)
	}
	if !summary.HasCode(errors.CodeNoMatchingFormat) || summary.GetExitCode() != 5 {
		t.Errorf("unexpected summary: %v (exit %d)", summary, summary.GetExitCode())
	}

	data, readErr := os.ReadFile(output)
	if readErr != nil {
		t.Fatalf("expected output file: %v", readErr)
	}
	if string(data) != "date,merchant,price,account\n" {
		t.Errorf("expected header-only CSV, got %q", data)
	}
}

func TestPrintFormats(t *testing.T) {
	var buf bytes.Buffer
	if err := printFormats(&buf, parsers.ListAvailableFormatConfigs(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"price-then-merchant",
		"simple-inline",
		`^Statement_(?P<date>[A-Za-z]{3} [0-9]{4})\.pdf$`,
		"Section header: ACCOUNT ACTIVITY",
		"AUTOMATIC PAYMENT - THANK YOU",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("formats output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := printFormats(&buf, parsers.ListAvailableFormatConfigs(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"file_pattern"`) {
		t.Errorf("expected JSON output, got %s", buf.String())
	}
}

func TestLoadFormats(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	formats, err := loadFormats()
	if err != nil || formats != nil {
		t.Fatalf("expected no formats without config, got %v (%v)", formats, err)
	}

	viper.Set("formats", []map[string]interface{}{
		{
			"name":                "card",
			"variant":             "price-then-merchant",
			"file_pattern":        `^Card_(?P<date>[A-Za-z]{3} [0-9]{4})\.pdf$`,
			"period_layout":       "Jan 2006",
			"date_pattern":        `^[0-9]{2}/[0-9]{2}/[0-9]{2}$`,
			"price_pattern":       `^\$?-?[0-9,]*\.[0-9]{2}$`,
			"date_layout":         "01/02/06",
			"lookahead_threshold": 1.5,
			"account":             map[string]interface{}{"marker": "Card ending", "separator": "in", "digits": 4},
		},
	})

	formats, err = loadFormats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(formats) != 1 || formats[0].Name != "card" || formats[0].Account.Digits != 4 {
		t.Fatalf("unexpected formats: %+v", formats)
	}
	if err := formats[0].Validate(); err != nil {
		t.Errorf("loaded format should validate: %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	tmpDir := t.TempDir()
	good := writeFile(t, tmpDir, "good.csv", "date,merchant,price,account\n2023-03-14,COFFEE SHOP,4.50,6789\n")
	bad := writeFile(t, tmpDir, "bad.csv", "date,merchant,price,account\n2023-03-14,COFFEE SHOP,4.5,6789\n")

	var out bytes.Buffer
	validateCmd.SetOut(&out)
	defer validateCmd.SetOut(nil)

	if err := validateCmd.RunE(validateCmd, []string{good}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "VALID: 1 records, total 4.50") {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	err := validateCmd.RunE(validateCmd, []string{bad})
	if !errors.HasCode(err, errors.CodeOutOfRange) {
		t.Errorf("expected out_of_range, got %v", err)
	}
	if !strings.Contains(out.String(), "INVALID") || !strings.Contains(out.String(), "[price]") {
		t.Errorf("unexpected output: %s", out.String())
	}
}
