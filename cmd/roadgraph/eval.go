// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/roadgraph/internal/dataset"
	"github.com/pdiddy/roadgraph/internal/eval"
	"github.com/pdiddy/roadgraph/internal/results"
	"github.com/pdiddy/roadgraph/pkg/types"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run batch inference evaluation over the dataset",
	Long: `Eval scores the external model's predicted graphs against ground truth
for every usable region in the dataset. The checkpoint named by --model
(or --checkpoint) is fingerprinted into the run record but never parsed.

Without --eval the command performs a dry run: it verifies the config,
checkpoint, and dataset, and reports what a full run would cover.`,
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, checkpoint, err := evalSetup(cmd)
	if err != nil {
		return err
	}

	root := cfg.Data.DataPath
	if cfg.Data.TestDataPath != "" {
		root = cfg.Data.TestDataPath
	}
	scan, err := dataset.Scan(root)
	if err != nil {
		return err
	}
	if len(scan.Regions) == 0 {
		return fmt.Errorf("no complete regions found in %s", root)
	}

	doEval, _ := cmd.Flags().GetBool("eval")
	if !doEval {
		sum, size, err := eval.FingerprintCheckpoint(checkpoint)
		if err != nil {
			return err
		}
		fmt.Printf("dry run: %d regions in %s\n", len(scan.Regions), root)
		fmt.Printf("checkpoint %s (%d bytes, sha256 %s)\n", checkpoint, size, sum[:12])
		fmt.Printf("predictions from %s\n", cfg.Eval.PredictionsDir)
		fmt.Println("pass --eval to evaluate")
		return nil
	}

	report, err := runEvaluation(cmd, cfg, checkpoint, scan.Regions)
	if err != nil {
		return err
	}

	path, err := eval.WriteReport(report, cfg.Eval.ReportsDir)
	if err != nil {
		return err
	}

	store, err := results.Open(cfg.Eval.ReportsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.Record(cmd.Context(), report)
	if err != nil {
		return err
	}

	printSummary(report)
	fmt.Printf("\nreport: %s (run %d)\n", path, runID)
	if report.Summary.Failed == report.Summary.Regions {
		return fmt.Errorf("all %d regions failed evaluation", report.Summary.Regions)
	}
	return nil
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Evaluate the validation split only",
	Long: `Test runs the evaluation pipeline over the validation portion of the
configured train/val split, mirroring a model test pass. The run is not
recorded in the results store unless --record is given.`,
	RunE: runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, checkpoint, err := evalSetup(cmd)
	if err != nil {
		return err
	}

	scan, err := dataset.Scan(cfg.Data.DataPath)
	if err != nil {
		return err
	}
	_, val := dataset.Split(scan.Regions, dataset.SplitOptions{
		Seed:       cfg.Data.Seed,
		Split:      cfg.Data.Split,
		MaxSamples: cfg.Data.MaxSamples,
		BatchSize:  cfg.Data.BatchSize,
	})
	if len(val) == 0 {
		return fmt.Errorf("validation split is empty (%d regions, split %v)", len(scan.Regions), cfg.Data.Split)
	}

	report, err := runEvaluation(cmd, cfg, checkpoint, val)
	if err != nil {
		return err
	}
	printSummary(report)

	if record, _ := cmd.Flags().GetBool("record"); record {
		store, err := results.Open(cfg.Eval.ReportsDir)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.Record(cmd.Context(), report)
		if err != nil {
			return err
		}
		fmt.Printf("\nrecorded as run %d\n", runID)
	}
	if report.Summary.Failed == report.Summary.Regions {
		return fmt.Errorf("all %d regions failed evaluation", report.Summary.Regions)
	}
	return nil
}

// --- shared helpers ---

// evalSetup loads and validates the config and resolves the checkpoint
// path, which must name an existing file.
func evalSetup(cmd *cobra.Command) (types.ExperimentConfig, string, error) {
	cfg, err := loadExperimentConfig()
	if err != nil {
		return types.ExperimentConfig{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		return types.ExperimentConfig{}, "", fmt.Errorf("config invalid: %w", err)
	}

	checkpoint, _ := cmd.Flags().GetString("model")
	if checkpoint == "" {
		checkpoint, _ = cmd.Flags().GetString("checkpoint")
	}
	if checkpoint == "" {
		checkpoint = cfg.Model.Checkpoint
	}
	if checkpoint == "" {
		return types.ExperimentConfig{}, "", fmt.Errorf("checkpoint required: pass --model/--checkpoint or set model.checkpoint")
	}
	if _, err := os.Stat(checkpoint); err != nil {
		return types.ExperimentConfig{}, "", fmt.Errorf("checkpoint %s: %w", checkpoint, err)
	}
	return cfg, checkpoint, nil
}

func runEvaluation(cmd *cobra.Command, cfg types.ExperimentConfig, checkpoint string, regions []types.Region) (types.RunReport, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "eval",
	})

	runner := eval.NewRunner(cfg, logger)
	report, err := runner.Run(cmd.Context(), checkpoint, regions)
	if err != nil {
		return types.RunReport{}, err
	}
	report.ConfigPath = viper.ConfigFileUsed()
	return report, nil
}

func printSummary(report types.RunReport) {
	fmt.Printf("%-28s  %8s  %8s  %8s\n", "Region", "AP", "AR", "EdgeF1")
	for _, row := range report.Rows {
		name := fmt.Sprintf("%s_region_%d", row.City, row.RegionID)
		if row.Error != "" {
			fmt.Printf("%-28s  failed: %s\n", name, row.Error)
			continue
		}
		fmt.Printf("%-28s  %8.4f  %8.4f  %8.4f\n", name, row.AP, row.AR, row.EdgeF1)
	}
	s := report.Summary
	fmt.Printf("\n%d regions (%d failed)  mean AP %.4f  median AP %.4f  mean AR %.4f  mean edge F1 %.4f\n",
		s.Regions, s.Failed, s.MeanAP, s.MedianAP, s.MeanAR, s.MeanEdgeF1)
}

func init() {
	evalCmd.Flags().String("model", "", "model checkpoint path")
	evalCmd.Flags().String("checkpoint", "", "alias for --model")
	evalCmd.Flags().Bool("eval", false, "run the evaluation (omit for a dry run)")

	testCmd.Flags().String("checkpoint", "", "model checkpoint path")
	testCmd.Flags().String("model", "", "alias for --checkpoint")
	testCmd.Flags().Bool("record", false, "record the run in the results store")

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(testCmd)
}
