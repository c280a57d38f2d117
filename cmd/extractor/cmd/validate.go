package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/internal/reporter"
	"golang-statement-extractor/pkg/errors"
)

var validateJSON bool

// validateCmd checks a previously extracted CSV file
var validateCmd = &cobra.Command{
	Use:   "validate <expenses.csv>",
	Short: "Check an extracted CSV file",
	Long: `Validate checks that a CSV file has the extract output layout:
the date,merchant,price,account header, calendar dates in ascending
order, two-decimal prices and non-empty merchants. Use '-' to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if args[0] != reporter.StdoutPath {
			if err := validateFileExists(args[0], "CSV file"); err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return errors.FileError(errors.CodeFilePermission, args[0], err)
			}
			defer file.Close()
			in = file
		}

		result := reporter.ValidateCSV(in)
		if err := printValidation(cmd.OutOrStdout(), result, validateJSON); err != nil {
			return err
		}
		if !result.IsValid {
			return errors.ValidationError(errors.CodeOutOfRange, "csv", args[0],
				fmt.Errorf("%d validation errors", len(result.Errors)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the validation result as JSON")
}

func printValidation(w io.Writer, result *reporter.ValidationResult, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	status := "VALID"
	if !result.IsValid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "%s: %d records, total %s\n", status, result.Summary.TotalRecords, models.FormatAmount(result.Summary.TotalAmount))
	if !result.Summary.EarliestDate.IsZero() {
		fmt.Fprintf(w, "Date range: %s to %s\n",
			result.Summary.EarliestDate.Format(models.DateLayout), result.Summary.LatestDate.Format(models.DateLayout))
	}

	for i, issue := range result.Errors {
		fmt.Fprintf(w, "  error: %s\n", issue)
		if i >= 9 && len(result.Errors) > 10 {
			fmt.Fprintf(w, "  ... and %d more errors\n", len(result.Errors)-10)
			break
		}
	}
	for _, issue := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", issue)
	}
	return nil
}
