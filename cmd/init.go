package cmd

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/dataloom-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	initName        string
	initDescription string
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a DataLoom workspace (logs, data/input, data/output, docs/images, temp)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		} else if cfg != nil && cfg.WorkspaceDir != "" {
			dir = cfg.WorkspaceDir
		}
		w, err := workspace.Scaffold(dir, initName)
		if err != nil {
			return err
		}
		if initDescription != "" && w.Description != initDescription {
			w.Description = initDescription
			if err := w.Save(); err != nil {
				return err
			}
		}
		logger.Info("workspace ready", slog.String("dir", w.RootDir()), slog.String("name", w.Name))
		fmt.Printf("✓ Workspace initialized: %s (%s)\n", w.RootDir(), w.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initName, "name", "n", "", "workspace name (default is the directory name)")
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "workspace description")
}
