// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadgraph/internal/dataset"
	"github.com/pdiddy/roadgraph/pkg/types"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Index, validate, and split the region dataset",
	Long: `Dataset operates on a directory of region files following the
[Cityname]_region_[id]_[rest] convention, where rest is one of sat.png,
gt.png, or refine_gt_graph.p. A region is usable only when all three
files are present.`,
}

// --- scan subcommand ---

var datasetScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Index the dataset directory and list regions",
	RunE:  runDatasetScan,
}

func runDatasetScan(cmd *cobra.Command, args []string) error {
	root, _, err := datasetRoot(cmd)
	if err != nil {
		return err
	}

	result, err := dataset.Scan(root)
	if err != nil {
		return err
	}

	for _, r := range result.Regions {
		fmt.Printf("%-40s ok\n", r.Name())
	}
	for _, r := range result.Incomplete {
		fmt.Printf("%-40s incomplete (missing %v)\n", r.Name(), r.Missing())
	}
	fmt.Printf("\n%d regions, %d incomplete, %d unrecognized files\n",
		len(result.Regions), len(result.Incomplete), len(result.Skipped))
	return nil
}

// --- validate subcommand ---

var datasetValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check region completeness, image dimensions, and graph files",
	Long: `Validate verifies every region: all three files present, both images
decodable, square, and matching the configured image size, and the
ground-truth graph loadable and non-empty. Any violation makes the
command fail.`,
	RunE: runDatasetValidate,
}

func runDatasetValidate(cmd *cobra.Command, args []string) error {
	root, cfg, err := datasetRoot(cmd)
	if err != nil {
		return err
	}

	result, err := dataset.Scan(root)
	if err != nil {
		return err
	}

	problems := dataset.ValidateAll(result, cfg.Data.ImageSize)
	for _, p := range problems {
		fmt.Fprintln(os.Stderr, p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) in %d region(s)", len(problems),
			len(result.Regions)+len(result.Incomplete))
	}
	fmt.Printf("%d regions OK\n", len(result.Regions))
	return nil
}

// --- split subcommand ---

var datasetSplitCmd = &cobra.Command{
	Use:   "split",
	Short: "Write a deterministic train/val split manifest",
	Long: `Split shuffles the complete regions with the configured seed, divides
them by the train fraction, and writes a manifest YAML so the exact
split can be reproduced later.`,
	RunE: runDatasetSplit,
}

func runDatasetSplit(cmd *cobra.Command, args []string) error {
	root, cfg, err := datasetRoot(cmd)
	if err != nil {
		return err
	}

	opts := dataset.SplitOptions{
		Seed:       cfg.Data.Seed,
		Split:      cfg.Data.Split,
		MaxSamples: cfg.Data.MaxSamples,
		BatchSize:  cfg.Data.BatchSize,
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("split") {
		opts.Split, _ = cmd.Flags().GetFloat64("split")
	}
	if cmd.Flags().Changed("max-samples") {
		opts.MaxSamples, _ = cmd.Flags().GetInt("max-samples")
	}
	opts.Debug, _ = cmd.Flags().GetBool("debug")

	if opts.Split <= 0 || opts.Split > 1 {
		return fmt.Errorf("split must be in (0, 1], got %v", opts.Split)
	}

	result, err := dataset.Scan(root)
	if err != nil {
		return err
	}
	if len(result.Regions) == 0 {
		return fmt.Errorf("no complete regions found in %s", root)
	}

	train, val := dataset.Split(result.Regions, opts)
	manifest := dataset.Manifest(root, opts, train, val)

	out, _ := cmd.Flags().GetString("out")
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", out, err)
	}

	fmt.Printf("%d train, %d val regions -> %s\n", len(train), len(val), out)
	return nil
}

// --- shared helpers ---

// datasetRoot resolves the dataset directory: --data wins, else the
// configured data path.
func datasetRoot(cmd *cobra.Command) (string, types.ExperimentConfig, error) {
	cfg, err := loadExperimentConfig()
	if err != nil {
		return "", types.ExperimentConfig{}, err
	}

	root, _ := cmd.Flags().GetString("data")
	if root == "" {
		root = cfg.Data.DataPath
	}
	if root == "" {
		return "", types.ExperimentConfig{}, fmt.Errorf("dataset directory required: set data.data_path in the config or pass --data")
	}
	return root, cfg, nil
}

func init() {
	datasetCmd.PersistentFlags().String("data", "", "dataset directory (overrides data.data_path)")

	datasetSplitCmd.Flags().Int64("seed", 0, "shuffle seed (overrides data.seed)")
	datasetSplitCmd.Flags().Float64("split", 0.95, "train fraction (overrides data.split)")
	datasetSplitCmd.Flags().Int("max-samples", 0, "truncate the train set (overrides data.max_samples)")
	datasetSplitCmd.Flags().Bool("debug", false, "fixed 128 train / 32 val debug split")
	datasetSplitCmd.Flags().String("out", "split.yaml", "manifest output path")

	datasetCmd.AddCommand(datasetScanCmd)
	datasetCmd.AddCommand(datasetValidateCmd)
	datasetCmd.AddCommand(datasetSplitCmd)
	rootCmd.AddCommand(datasetCmd)
}
