package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/dataloom-cli/internal/config"
	"github.com/KaramelBytes/dataloom-cli/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global flags
	cfgFile       string
	flagLogLevel  string
	flagLogFormat string
	flagLogOutput string

	// Loaded configuration; never nil once loadConfig ran.
	cfg *cfgpkg.Global

	logger   = slog.Default()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "dataloom",
	Short: "DataLoom CLI: load, clean, transform and analyze tabular data",
	Long: `DataLoom is a CLI tool that reads CSV, Excel and JSON tables, removes duplicates,
resolves missing values, applies normalize/encode/filter plans and writes the result
together with a JSON analysis report.`,
	SilenceUsage: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownLog()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_ = shutdownLog()
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataloom/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogOutput, "log-output", "", "log output: stderr|stdout|file|both (overrides config)")
}

// shutdownLog closes the current log file, if any, at most once.
func shutdownLog() error {
	fn := closeLog
	closeLog = func() error { return nil }
	return fn()
}

func loadConfig() {
	_ = shutdownLog()

	v := viper.New()
	f := rootCmd.PersistentFlags()
	_ = v.BindPFlag("log_level", f.Lookup("log-level"))
	_ = v.BindPFlag("log_format", f.Lookup("log-format"))
	_ = v.BindPFlag("log_output", f.Lookup("log-output"))

	c, err := cfgpkg.LoadWith(v, cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	log, closeFn, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
		File:   cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; logging to stderr\n", err)
		log = logging.NewWriter(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	}
	logger = log
	closeLog = closeFn
	slog.SetDefault(logger)
}
