package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pathway/fastdeps/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats [target]",
	Short: "Summarize the dependency structure",
	Long: `Stats runs the analysis and prints summary statistics: file and
edge counts, the most imported files, and the heaviest importers.

Examples:
  fastdeps stats
  fastdeps stats src/myproject --format=json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	res, err := runAnalysis(cmd, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	stats := output.BuildReport(res).Stats

	switch format {
	case output.FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
	case output.FormatYAML:
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		enc.Close()
	default:
		fmt.Printf("Files:     %d\n", stats.TotalFiles)
		fmt.Printf("Edges:     %d\n", stats.TotalEdges)
		fmt.Printf("Externals: %d\n", stats.ExternalCount)
		fmt.Printf("Cycles:    %d\n", stats.CycleCount)
		fmt.Printf("Failures:  %d\n", stats.FailureCount)
		fmt.Printf("Cache hits: %d\n", stats.CacheHits)
		if len(stats.MostImported) > 0 {
			fmt.Println("\nMost imported:")
			for _, fc := range stats.MostImported {
				fmt.Printf("  %4d  %s\n", fc.Count, fc.Path)
			}
		}
		if len(stats.HeaviestImporter) > 0 {
			fmt.Println("\nHeaviest importers:")
			for _, fc := range stats.HeaviestImporter {
				fmt.Printf("  %4d  %s\n", fc.Count, fc.Path)
			}
		}
	}
}
