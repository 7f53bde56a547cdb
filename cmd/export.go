// =============================================================================
// Startup Funding Dashboard - Export Command
// =============================================================================
//
// COMMAND USAGE:
//   funding export [flags]
//
// Builds the dashboard for a selection and writes it to a file: an XLSX
// workbook with one sheet and chart per view, or JSON.
//
// OUTPUT NAMING:
//   --out sets the file path directly. Otherwise the file is written to
//   output.dir with a name built from output.file_name_format.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/funding-dashboard/internal/report"
	"github.com/ginjaninja78/funding-dashboard/pkg/utils"
)

var (
	exportFlags      selectionFlags
	exportOut        string
	exportFormat     string
	exportPruneAfter time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dashboard for a selection to an XLSX or JSON file",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file path (default: output.dir + output.file_name_format)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "Output format: xlsx or json")
	exportCmd.Flags().DurationVar(&exportPruneAfter, "prune-after", 0, "Remove exports in output.dir older than this (e.g. 720h)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ext := "." + strings.ToLower(exportFormat)
	if ext != ".xlsx" && ext != ".json" {
		return fmt.Errorf("unknown export format %q (want xlsx or json)", exportFormat)
	}

	dash, err := buildDashboard(cmd, a, &exportFlags)
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		name := utils.GenerateOutputFileName(a.cfg.Output.FileNameFormat, map[string]string{
			"dataset": utils.DatasetName(a.dataset.Source),
		}, ext)
		if filepath.Ext(name) != ext {
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ext
		}
		path = filepath.Join(a.cfg.Output.Dir, name)
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if utils.FileExists(path) {
		a.logger.Warn("overwriting existing file", "path", path)
	}

	if ext == ".json" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer file.Close()
		if err := report.WriteJSON(file, dash); err != nil {
			return err
		}
	} else if err := report.WriteXLSX(path, dash); err != nil {
		return err
	}

	a.logger.Info("export written", "path", path, "format", exportFormat, "matched", dash.Stats.Matched)
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if exportPruneAfter > 0 {
		removed, err := utils.CleanOldFiles(a.cfg.Output.Dir, "*"+ext, exportPruneAfter)
		if err != nil {
			a.logger.Warn("failed to prune old exports", "error", err)
		} else if removed > 0 {
			a.logger.Info("pruned old exports", "removed", removed, "older_than", exportPruneAfter)
		}
	}
	return nil
}
