package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/dataloom-cli/internal/cleaner"
	"github.com/KaramelBytes/dataloom-cli/internal/format"
	"github.com/KaramelBytes/dataloom-cli/internal/pipeline"
	"github.com/KaramelBytes/dataloom-cli/internal/transform"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
	"github.com/KaramelBytes/dataloom-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	runPlan         string
	runMissing      string
	runFillValue    string
	runKeepDup      bool
	runOutput       string
	runFormat       string
	runInputFormat  string
	runSheet        string
	runReport       string
	runIncludeIndex bool
	runTimestamp    bool
)

var runCmd = &cobra.Command{
	Use:   "run <input>",
	Short: "Load, clean, transform, analyze and save a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		policy := cfg.MissingPolicy
		if runMissing != "" {
			policy = runMissing
		}
		pol, err := cleaner.ParsePolicy(policy)
		if err != nil {
			return err
		}
		copt := cleaner.Options{
			RemoveDuplicates: cfg.RemoveDuplicates && !runKeepDup,
			Policy:           pol,
			Logger:           logger,
		}
		if cmd.Flags().Changed("fill-value") {
			copt.FillValue = runFillValue
		}

		var plan transform.Plan
		if runPlan != "" {
			if plan, err = transform.LoadPlan(runPlan); err != nil {
				return err
			}
		}

		ws, err := findWorkspace(input)
		if err != nil {
			return err
		}
		outFormat := cfg.OutputFormat
		if runFormat != "" {
			outFormat = runFormat
		}
		output, err := resolveOutput(input, runOutput, outFormat, ws)
		if err != nil {
			return err
		}
		report := runReport
		if report == "" {
			report = filepath.Join(filepath.Dir(output), cfg.ReportName)
		}
		started := time.Now()
		if runTimestamp {
			output = utils.TimestampedName(output, started)
			report = utils.TimestampedName(report, started)
		}

		p := pipeline.New(
			pipeline.WithLogger(logger),
			pipeline.WithIncludeIndex(cfg.IncludeIndex || runIncludeIndex),
			pipeline.WithSheet(runSheet),
		)
		res, err := p.Run(cmd.Context(), pipeline.RunSpec{
			Input:        input,
			InputFormat:  runInputFormat,
			Clean:        copt,
			Plan:         plan,
			Output:       output,
			OutputFormat: outFormat,
			Report:       report,
		})
		if err != nil {
			return err
		}

		st := res.Stats
		fmt.Printf("✓ Loaded %s: %d rows\n", input, st.RowsIn)
		fmt.Printf("✓ Cleaned: %d duplicates removed, %d missing cells, %d rows dropped, %d cells filled\n",
			st.DuplicatesRemoved, st.MissingFound, st.RowsDropped, st.CellsFilled)
		if len(plan) > 0 {
			fmt.Printf("✓ Applied %d transformation(s)\n", len(plan))
		}
		fmt.Printf("✓ Saved %s (%d rows x %d columns)\n", output, res.Shape[0], res.Shape[1])
		fmt.Printf("✓ Report: %s\n", report)

		if ws == nil {
			return nil
		}
		steps := make([]string, 0, len(plan))
		for _, s := range plan {
			steps = append(steps, s.String())
		}
		r, err := ws.RecordRun(workspace.Run{
			Input:     input,
			Output:    output,
			Report:    report,
			Plan:      steps,
			RowsIn:    st.RowsIn,
			RowsOut:   res.Shape[0],
			StartedAt: started,
		})
		if err != nil {
			return err
		}
		if err := ws.Save(); err != nil {
			return err
		}
		logger.Info("run recorded", slog.String("id", r.ID), slog.String("workspace", ws.RootDir()))
		fmt.Printf("✓ Run recorded in %s: %s\n", ws.Name, r.ID)
		return nil
	},
}

// findWorkspace returns the configured workspace, or the one enclosing
// input, or nil when there is none.
func findWorkspace(input string) (*workspace.Workspace, error) {
	if cfg.WorkspaceDir != "" {
		return workspace.Load(cfg.WorkspaceDir)
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	root, err := utils.FindWorkspaceRoot(filepath.Dir(abs))
	if err != nil {
		return nil, nil
	}
	return workspace.Load(root)
}

// resolveOutput picks <stem>_processed.<ext> next to the input, or under
// data/output inside a workspace, unless an explicit path was given.
func resolveOutput(input, explicit, kind string, ws *workspace.Workspace) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	f, err := format.Parse(kind)
	if err != nil {
		return "", err
	}
	if f == format.Auto {
		if f, err = format.FromPath(input); err != nil {
			return "", err
		}
	}
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "_processed" + f.Ext()
	dir := filepath.Dir(input)
	if ws != nil {
		dir = ws.Path("data", "output")
		if err := utils.EnsureDir(dir); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, name), nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runPlan, "plan", "", "transformation plan file (YAML or JSON)")
	runCmd.Flags().StringVar(&runMissing, "missing", "", "missing value policy: drop|fill|interpolate (overrides config)")
	runCmd.Flags().StringVar(&runFillValue, "fill-value", "", "literal used by --missing fill (default: mean/mode)")
	runCmd.Flags().BoolVar(&runKeepDup, "keep-duplicates", false, "do not remove duplicate rows")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output path (default: <input>_processed.<ext>)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format: csv|excel|json|auto (overrides config)")
	runCmd.Flags().StringVar(&runInputFormat, "input-format", "", "input format: csv|excel|json (default: from extension)")
	runCmd.Flags().StringVar(&runSheet, "sheet", "", "excel worksheet to read (default: first)")
	runCmd.Flags().StringVar(&runReport, "report", "", "analysis report path (default: report_name next to the output)")
	runCmd.Flags().BoolVar(&runIncludeIndex, "include-index", false, "write a row index column (csv/excel)")
	runCmd.Flags().BoolVar(&runTimestamp, "timestamp", false, "append a _YYYYMMDD_HHMMSS stamp to output and report names")
}
