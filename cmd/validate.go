// =============================================================================
// Startup Funding Dashboard - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   funding validate [flags]
//
// Checks the configuration and the dataset without computing any view:
//   1. The configuration must pass validation (fatal otherwise).
//   2. The dataset must load (fatal otherwise).
//   3. Canonical fields without a source column are reported.
//   4. Rows excluded during loading are reported with the reason.
//
// Missing columns and excluded rows are warnings. With --strict any warning
// makes the command fail.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/funding-dashboard/internal/schema"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
	"github.com/ginjaninja78/funding-dashboard/internal/validation"
)

var (
	validateStrict  bool
	validateLogFile string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and report unusable dataset rows",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail if any column is missing or any row is excluded")
	validateCmd.Flags().StringVar(&validateLogFile, "log", "", "Also write the findings to this file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	ds := a.dataset

	fmt.Fprintf(out, "Configuration: OK\n")
	fmt.Fprintf(out, "Dataset:       %s\n", ds.Source)
	fmt.Fprintf(out, "Records:       %d usable, %d excluded\n", ds.Len(), len(ds.Excluded))
	fmt.Fprintf(out, "Columns:\n")
	for _, f := range types.AllFields {
		col := ds.Columns.Column(f)
		if col == "" {
			col = "(missing)"
		}
		fmt.Fprintf(out, "  %-16s %s\n", f, col)
	}
	fmt.Fprintln(out)

	findings := validation.MissingColumns(schema.Missing(ds.Columns, types.AllFields...))
	findings = append(findings, validation.RowIssues(ds.Excluded)...)
	fmt.Fprint(out, validation.FormatErrors(findings))

	if validateLogFile != "" {
		if err := validation.WriteErrorLog(findings, validateLogFile); err != nil {
			return err
		}
		a.logger.Info("validation log written", "path", validateLogFile)
	}

	if validateStrict && len(findings) > 0 {
		return fmt.Errorf("validation found %d problem(s)", len(findings))
	}
	return nil
}
