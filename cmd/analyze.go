package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dataloom-cli/internal/pipeline"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaJSON       bool
	anaOutputPath string
	anaFormat     string
	anaSheet      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a table as loaded (no cleaning) and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(pipeline.WithLogger(logger), pipeline.WithSheet(anaSheet))
		if _, err := p.Load(args[0], anaFormat); err != nil {
			return err
		}
		// Analyze the raw table as-is.
		p.Reset()
		r, err := p.Analyze()
		if err != nil {
			return err
		}

		if anaJSON {
			b, err := utils.PrettyJSON(r)
			if err != nil {
				return err
			}
			fmt.Print(string(b))
		} else {
			fmt.Print(r.Markdown())
		}
		if anaOutputPath != "" {
			if err := p.SaveReport(r, anaOutputPath); err != nil {
				return err
			}
			fmt.Printf("✓ Report written: %s\n", anaOutputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the JSON report instead of the text summary")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "also write the JSON report to this path")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "", "input format: csv|excel|json (default: from extension)")
	analyzeCmd.Flags().StringVar(&anaSheet, "sheet", "", "excel worksheet to read (default: first)")
}
