package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pathway/fastdeps/internal/output"
)

var cyclesFailFlag bool

var cyclesCmd = &cobra.Command{
	Use:   "cycles [target]",
	Short: "Report import cycles",
	Long: `Cycles runs the analysis and reports only the dependency cycles,
each as its member files and a concrete closed import chain.

With --fail the command exits nonzero when any cycle exists, for use
as a CI gate.

Examples:
  fastdeps cycles
  fastdeps cycles src/myproject --fail
  fastdeps cycles --format=json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCycles,
}

func init() {
	cyclesCmd.Flags().BoolVar(&cyclesFailFlag, "fail", false, "Exit nonzero if any cycle is found")
	rootCmd.AddCommand(cyclesCmd)
}

func runCycles(cmd *cobra.Command, args []string) {
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
	rep := output.BuildReport(res)

	switch format {
	case output.FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep.Cycles); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
	case output.FormatYAML:
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(rep.Cycles); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		enc.Close()
	default:
		if len(rep.Cycles) == 0 {
			fmt.Println("No cycles found")
		}
		for i, c := range rep.Cycles {
			fmt.Printf("[%d] %d files\n", i+1, len(c.Members))
			for _, e := range c.Walk {
				fmt.Printf("  %s imports %s (line %s)\n", e.From, e.To, joinInts(e.Lines))
			}
		}
	}

	if cyclesFailFlag && len(rep.Cycles) > 0 {
		os.Exit(1)
	}
}

func joinInts(lines []int) string {
	s := ""
	for i, n := range lines {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", n)
	}
	return s
}
