// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadgraph/pkg/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect and convert road graph files",
	Long: `Graph works on individual graph files: pickled ground truth (.p) and
JSON prediction graphs. Use info to print statistics and convert to
rewrite a pickle as JSON.`,
}

var graphInfoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Print node, edge, and component statistics for a graph file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraphFile(args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(g.Stats())
		if err != nil {
			return fmt.Errorf("marshaling stats: %w", err)
		}
		os.Stdout.Write(data)
		return nil
	},
}

var graphConvertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a graph file to the JSON graph format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraphFile(args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			ext := filepath.Ext(args[0])
			out = args[0][:len(args[0])-len(ext)] + ".json"
		}
		if err := g.WriteJSON(out); err != nil {
			return err
		}
		fmt.Printf("%s -> %s (%d nodes, %d edges)\n", args[0], out, len(g.Nodes), len(g.Edges))
		return nil
	},
}

// loadGraphFile picks the codec by file extension.
func loadGraphFile(path string) (*graph.Graph, error) {
	switch filepath.Ext(path) {
	case ".p", ".pickle":
		return graph.LoadPickle(path)
	case ".json":
		return graph.LoadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported graph file %s: expected .p or .json", path)
	}
}

func init() {
	graphConvertCmd.Flags().StringP("out", "o", "", "output path (default: input with .json extension)")

	graphCmd.AddCommand(graphInfoCmd)
	graphCmd.AddCommand(graphConvertCmd)
	rootCmd.AddCommand(graphCmd)
}
