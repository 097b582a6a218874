// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the roadgraph CLI: dataset
// indexing, integrity checks, and evaluation of predicted road graphs
// against ground truth.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/roadgraph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the roadgraph CLI.
var rootCmd = &cobra.Command{
	Use:   "roadgraph",
	Short: "Dataset and evaluation tooling for image-to-graph road extraction",
	Long: `roadgraph manages the datasets and evaluation side of a road-network
extraction experiment. The neural model is external; roadgraph owns the
experiment configuration, the on-disk dataset contract, ground-truth graph
loading, prediction scoring, and the persistent record of evaluation runs.

Each concern is a subcommand: config, dataset, graph, eval, test, and
results.`,
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}
	rootCmd.PersistentFlags().String("config", "", "experiment config file (default: ./roadgraph.yaml or ~/.config/roadgraph/config.yaml)")
}

// initConfig resolves the experiment config file. An explicitly named
// file must exist; the default search locations are optional.
func initConfig() error {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("roadgraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "roadgraph"))
		}
	}

	viper.SetEnvPrefix("ROADGRAPH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return nil
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// loadExperimentConfig decodes the resolved config into the typed
// experiment configuration and applies defaults.
func loadExperimentConfig() (types.ExperimentConfig, error) {
	var cfg types.ExperimentConfig
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return types.ExperimentConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
