package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"golang-statement-extractor/internal/parsers"
)

var formatsJSON bool

// formatsCmd lists the known statement formats
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List known statement formats",
	Long: `Formats lists the statement formats extraction can select from, with
the file name template each one is chosen by.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := loadFormats()
		if err != nil {
			return err
		}
		if len(base) == 0 {
			base = parsers.ListAvailableFormatConfigs()
		}
		return printFormats(cmd.OutOrStdout(), base, formatsJSON)
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
	formatsCmd.Flags().BoolVar(&formatsJSON, "json", false, "print formats as JSON")
}

func printFormats(w io.Writer, formats []*parsers.FormatConfig, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(formats)
	}

	for i, fc := range formats {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", fc.Name)
		if fc.Description != "" {
			fmt.Fprintf(w, "  %s\n", fc.Description)
		}
		fmt.Fprintf(w, "  File name:      %s\n", fc.FilePattern)
		fmt.Fprintf(w, "  Period layout:  %s\n", fc.PeriodLayout)
		fmt.Fprintf(w, "  Date layout:    %s\n", fc.DateLayout)
		if fc.SectionMarker != "" {
			fmt.Fprintf(w, "  Section header: %s\n", fc.SectionMarker)
		}
		if fc.Account.Marker != "" {
			fmt.Fprintf(w, "  Account:        last %d digits after %q\n", fc.Account.Digits, fc.Account.Marker)
		}
		if fc.Variant == parsers.VariantLookahead {
			fmt.Fprintf(w, "  Merchant gap:   %g\n", fc.LookaheadThreshold)
		}
		if len(fc.ExcludedMerchants) > 0 {
			fmt.Fprintf(w, "  Excluded:       %s\n", strings.Join(fc.ExcludedMerchants, "; "))
		}
	}
	return nil
}
