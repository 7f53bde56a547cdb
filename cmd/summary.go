// =============================================================================
// Startup Funding Dashboard - Summary Command
// =============================================================================
//
// COMMAND USAGE:
//   funding summary [flags]
//
// Loads the dataset, applies the selection flags and prints every view.
//
// FLAGS:
//   --city, --industry, --investment-type  categorical filters
//   --years, --min-amount, --max-amount    range filters
//   --top, --preview, --bucket, --fill-gaps view options
//   --format text|json                     output format
//   --raw                                  also print the unfiltered records
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/funding-dashboard/internal/report"
)

var (
	summaryFlags  selectionFlags
	summaryFormat string
	summaryRaw    bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard views for a selection",
	Long: `The summary command loads the dataset, applies the selection given by
the filter flags and prints the filtered data preview followed by each view:
top funded startups, top investors, the funding trend, funding by industry,
and deal share by investment type and city.

Views whose columns are missing from the source are reported as unavailable.
A selection that matches nothing prints a no-data message and succeeds.`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryFlags.register(summaryCmd)
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", report.FormatText, "Output format: text or json")
	summaryCmd.Flags().BoolVar(&summaryRaw, "raw", false, "Also print the unfiltered dataset")
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if summaryRaw {
		fmt.Fprintf(out, "== Raw Data (Unfiltered): %d records ==\n", a.dataset.Len())
		if err := report.WriteRecords(out, a.dataset.Columns, a.dataset.Records); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	dash, err := buildDashboard(cmd, a, &summaryFlags)
	if err != nil {
		return err
	}
	return report.Write(out, dash, summaryFormat)
}
