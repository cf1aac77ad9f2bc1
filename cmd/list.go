package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/utils"
	"github.com/KaramelBytes/dataloom-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	listDir   string
	listInput string
	listLast  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipeline runs recorded in a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := listDir
		if dir == "" && cfg != nil {
			dir = cfg.WorkspaceDir
		}
		if dir == "" {
			root, err := utils.FindWorkspaceRoot("")
			if err != nil {
				return err
			}
			dir = root
		}
		w, err := workspace.Load(dir)
		if err != nil {
			return err
		}

		runs := w.Runs
		switch {
		case listInput != "":
			sum, err := utils.FileChecksum(listInput)
			if err != nil {
				return err
			}
			runs = w.FindRunsByInput(sum)
		case listLast:
			runs = nil
			if r := w.LastRun(); r != nil {
				runs = []*workspace.Run{r}
			}
		}
		if len(runs) == 0 {
			fmt.Println("(no runs)")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("- %s  %s  %s -> %s  rows %d -> %d\n",
				r.ID, r.FinishedAt.Format("2006-01-02 15:04:05"), r.Input, r.Output, r.RowsIn, r.RowsOut)
			if len(r.Plan) > 0 {
				fmt.Printf("    plan: %s\n", strings.Join(r.Plan, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listDir, "workspace", "w", "", "workspace directory (default: nearest dataloom.json)")
	listCmd.Flags().StringVar(&listInput, "input", "", "only runs whose input matched this file's checksum")
	listCmd.Flags().BoolVar(&listLast, "last", false, "only the most recent run")
}
