package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathway/fastdeps/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [target]",
	Short: "Analyze the dependency structure of a Python codebase",
	Long: `Analyze scans the target (a directory or a single file), resolves
every import, and prints the full dependency report.

Examples:
  fastdeps analyze
  fastdeps analyze src/myproject
  fastdeps analyze src/myproject/main.py --root=src
  fastdeps analyze --format=dot | dot -Tsvg -o deps.svg`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
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

	if err := output.Render(os.Stdout, output.BuildReport(res), format); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	if res.Partial {
		os.Exit(2)
	}
}
