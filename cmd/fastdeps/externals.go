package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pathway/fastdeps/internal/output"
)

var externalsCmd = &cobra.Command{
	Use:   "externals [target]",
	Short: "List external dependencies",
	Long: `Externals runs the analysis and prints the distinct top-level names
imported but not found inside the project and not part of the standard
library. Declarations in fastdeps.toml adjust the classification.

Examples:
  fastdeps externals
  fastdeps externals src/myproject --format=json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runExternals,
}

func init() {
	rootCmd.AddCommand(externalsCmd)
}

func runExternals(cmd *cobra.Command, args []string) {
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
	externals := res.ExternalDependencies()

	switch format {
	case output.FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(externals); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
	case output.FormatYAML:
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(externals); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		enc.Close()
	default:
		for _, name := range externals {
			fmt.Println(name)
		}
	}
}
