// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/roadgraph/internal/results"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect and export recorded evaluation runs",
	Long: `Results reads the runs database under the reports directory. Use list
for an overview, show for the per-region rows of one run, and export to
write everything to YAML or JSON.`,
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded evaluation runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openResults()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		fmt.Printf("%-4s  %-20s  %-12s  %7s  %6s  %8s  %8s  %8s\n",
			"ID", "Started", "Checkpoint", "Regions", "Failed", "AP", "AR", "EdgeF1")
		for _, rec := range records {
			fmt.Printf("%-4d  %-20s  %-12s  %7d  %6d  %8.4f  %8.4f  %8.4f\n",
				rec.ID, rec.Started.Format("2006-01-02 15:04:05"),
				shortSHA(rec.CheckpointSHA256), rec.Regions, rec.Failed,
				rec.MeanAP, rec.MeanAR, rec.MeanEdgeF1)
		}
		return nil
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show per-region metrics for one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("run id %q is not a number", args[0])
		}

		store, err := openResults()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, rows, err := store.Show(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("run %d  started %s  model %s\n", rec.ID,
			rec.Started.Format("2006-01-02 15:04:05"), rec.Model)
		fmt.Printf("checkpoint %s (sha256 %s)\n\n", rec.Checkpoint, shortSHA(rec.CheckpointSHA256))

		fmt.Printf("%-28s  %8s  %8s  %8s  %6s  %6s\n",
			"Region", "AP", "AR", "EdgeF1", "GT", "Pred")
		for _, m := range rows {
			name := fmt.Sprintf("%s_region_%d", m.City, m.RegionID)
			if m.Error != "" {
				fmt.Printf("%-28s  failed: %s\n", name, m.Error)
				continue
			}
			fmt.Printf("%-28s  %8.4f  %8.4f  %8.4f  %6d  %6d\n",
				name, m.AP, m.AR, m.EdgeF1, m.NodesGT, m.NodesPred)
		}
		return nil
	},
}

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all runs to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadExperimentConfig()
		if err != nil {
			return err
		}
		store, err := results.Open(cfg.Eval.ReportsDir)
		if err != nil {
			return err
		}
		defer store.Close()

		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		switch format {
		case "yaml", "":
			if out == "" {
				out = filepath.Join(cfg.Eval.ReportsDir, "export.yaml")
			}
			if err := store.ExportYAML(cmd.Context(), out); err != nil {
				return err
			}
		case "json":
			if out == "" {
				out = filepath.Join(cfg.Eval.ReportsDir, "export.json")
			}
			if err := store.ExportJSON(cmd.Context(), out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}

		fmt.Printf("Exported to %s\n", out)
		return nil
	},
}

func openResults() (*results.Store, error) {
	cfg, err := loadExperimentConfig()
	if err != nil {
		return nil, err
	}
	return results.Open(cfg.Eval.ReportsDir)
}

func shortSHA(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

func init() {
	resultsListCmd.Flags().Int("limit", 10, "maximum number of runs to list")
	resultsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	resultsExportCmd.Flags().String("out", "", "output path (default: [reports dir]/export.[format])")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	rootCmd.AddCommand(resultsCmd)
}
