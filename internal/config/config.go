package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
	LogOutput string `mapstructure:"log_output" yaml:"log_output" validate:"oneof=stderr stdout file both"`
	LogFile   string `mapstructure:"log_file" yaml:"log_file"`

	WorkspaceDir string `mapstructure:"workspace_dir" yaml:"workspace_dir"`

	// Pipeline defaults
	OutputFormat     string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=auto csv excel json"`
	MissingPolicy    string `mapstructure:"missing_policy" yaml:"missing_policy" validate:"oneof=drop fill interpolate"`
	RemoveDuplicates bool   `mapstructure:"remove_duplicates" yaml:"remove_duplicates"`
	IncludeIndex     bool   `mapstructure:"include_index" yaml:"include_index"`
	ReportName       string `mapstructure:"report_name" yaml:"report_name" validate:"required"`
}

var defaults = map[string]any{
	"log_level":         "info",
	"log_format":        "text",
	"log_output":        "stderr",
	"log_file":          filepath.Join("logs", "app.log"),
	"workspace_dir":     "",
	"output_format":     "auto",
	"missing_policy":    "drop",
	"remove_duplicates": true,
	"include_index":     false,
	"report_name":       "analysis_report.json",
}

// Keys returns the recognised configuration keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

var validate = validator.New()

// Validate checks enumerated settings.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if err == nil || !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Set assigns one key from its string form, coercing booleans.
func (c *Global) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "log_level":
		c.LogLevel = strings.ToLower(value)
	case "log_format":
		c.LogFormat = strings.ToLower(value)
	case "log_output":
		c.LogOutput = strings.ToLower(value)
	case "log_file":
		c.LogFile = value
	case "workspace_dir":
		c.WorkspaceDir = value
	case "output_format":
		c.OutputFormat = strings.ToLower(value)
	case "missing_policy":
		c.MissingPolicy = strings.ToLower(value)
	case "remove_duplicates", "include_index":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if key == "include_index" {
			c.IncludeIndex = b
		} else {
			c.RemoveDuplicates = b
		}
	case "report_name":
		c.ReportName = value
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return c.Validate()
}

// DefaultPath is ~/.dataloom/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataloom", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadFile reads only the config file over the defaults, ignoring env and
// flags, so what it returns is safe to Save back. The result is not
// validated; Set does that once a key is assigned.
func LoadFile(cfgFile string) (*Global, error) {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	c := Defaults()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (bound by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	return LoadWith(viper.New(), cfgFile)
}

// LoadWith reads into v, which may already carry bound flags.
func LoadWith(v *viper.Viper, cfgFile string) (*Global, error) {
	v.SetEnvPrefix("DATALOOM")
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".dataloom"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
