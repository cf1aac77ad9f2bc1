package cmd

import (
	"fmt"

	"github.com/KaramelBytes/dataloom-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	convFrom         string
	convTo           string
	convSheet        string
	convIncludeIndex bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a table between CSV, Excel and JSON without cleaning",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(
			pipeline.WithLogger(logger),
			pipeline.WithSheet(convSheet),
			pipeline.WithIncludeIndex(convIncludeIndex),
		)
		ds, err := p.Load(args[0], convFrom)
		if err != nil {
			return err
		}
		p.Reset()
		if err := p.Save(args[1], convTo); err != nil {
			return err
		}
		fmt.Printf("✓ Converted %s -> %s (%d rows x %d columns)\n", args[0], args[1], ds.Rows(), ds.NumCols())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convFrom, "from", "", "input format: csv|excel|json (default: from extension)")
	convertCmd.Flags().StringVar(&convTo, "to", "", "output format: csv|excel|json (default: from extension)")
	convertCmd.Flags().StringVar(&convSheet, "sheet", "", "excel worksheet to read (default: first)")
	convertCmd.Flags().BoolVar(&convIncludeIndex, "include-index", false, "write a row index column (csv/excel)")
}
