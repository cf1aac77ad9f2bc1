// Package pipeline chains loading, cleaning, transformation, analysis and
// persistence over one working dataset.
//
// A Pipeline keeps two slots: raw, the dataset as loaded, and processed, the
// result of the latest clean/transform. It is meant for a single goroutine.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/cleaner"
	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
	"github.com/KaramelBytes/dataloom-cli/internal/loader"
	"github.com/KaramelBytes/dataloom-cli/internal/persist"
	"github.com/KaramelBytes/dataloom-cli/internal/transform"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger handed to every stage.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock overrides time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIncludeIndex writes a row index column on csv and excel save.
func WithIncludeIndex(on bool) Option {
	return func(p *Pipeline) { p.includeIndex = on }
}

// WithColumnKinds declares column kinds instead of inferring them on load.
func WithColumnKinds(kinds map[string]dataset.Kind) Option {
	return func(p *Pipeline) { p.kinds = kinds }
}

// WithSheet selects the worksheet read from excel inputs.
func WithSheet(name string) Option {
	return func(p *Pipeline) { p.sheet = name }
}

// Pipeline holds the raw and processed datasets.
type Pipeline struct {
	raw       *dataset.Dataset
	processed *dataset.Dataset

	log          *slog.Logger
	now          func() time.Time
	includeIndex bool
	kinds        map[string]dataset.Kind
	sheet        string
}

// New returns an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{log: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(p)
	}
	p.log = p.log.With(slog.String("component", "pipeline"))
	return p
}

// Raw returns the dataset as loaded, or nil.
func (p *Pipeline) Raw() *dataset.Dataset { return p.raw }

// Processed returns the working dataset, or nil before Clean.
func (p *Pipeline) Processed() *dataset.Dataset { return p.processed }

// Load reads path into the raw slot and clears the processed slot. On error
// both slots are left as they were.
func (p *Pipeline) Load(path, kind string) (*dataset.Dataset, error) {
	ds, err := loader.Load(path, kind, loader.Options{Kinds: p.kinds, Sheet: p.sheet, Logger: p.log})
	if err != nil {
		return nil, err
	}
	p.raw = ds
	p.processed = nil
	return ds, nil
}

// Clean cleans the raw dataset into the processed slot.
func (p *Pipeline) Clean(opt cleaner.Options) (cleaner.Stats, error) {
	if p.raw == nil {
		return cleaner.Stats{}, p.stateErr("clean", "no data loaded")
	}
	if opt.Logger == nil {
		opt.Logger = p.log
	}
	out, stats, err := cleaner.Clean(p.raw, opt)
	if err != nil {
		return stats, err
	}
	p.processed = out
	return stats, nil
}

// Transform applies plan to the processed dataset. When a step fails the
// processed slot keeps the result of the steps before it.
func (p *Pipeline) Transform(plan transform.Plan) error {
	if p.processed == nil {
		return p.stateErr("transform", "no processed data; run clean first")
	}
	out, err := transform.Apply(p.processed, plan, transform.WithLogger(p.log))
	if out != nil {
		p.processed = out
	}
	return err
}

// Analyze reports on the processed dataset.
func (p *Pipeline) Analyze() (*analysis.Report, error) {
	if p.processed == nil {
		return nil, p.stateErr("analyze", "no processed data; run clean first")
	}
	r := analysis.AnalyzeAt(p.processed, p.now)
	p.log.Info("analysis complete",
		slog.Int("rows", r.BasicInfo.Rows),
		slog.Int("cols", r.BasicInfo.Columns))
	return r, nil
}

// Save writes the processed dataset to path.
func (p *Pipeline) Save(path, kind string) error {
	if p.processed == nil {
		return p.stateErr("save", "no processed data; run clean first")
	}
	return persist.SaveDataset(p.processed, path, kind, p.persistOptions())
}

// SaveReport writes r as JSON.
func (p *Pipeline) SaveReport(r *analysis.Report, path string) error {
	if r == nil {
		return p.stateErr("save report", "no report to save")
	}
	return persist.SaveReport(r, path, p.persistOptions())
}

// Reset discards cleaning and transformations.
func (p *Pipeline) Reset() {
	p.processed = p.raw
	p.log.Info("pipeline reset")
}

func (p *Pipeline) persistOptions() persist.Options {
	return persist.Options{IncludeIndex: p.includeIndex, Logger: p.log, Now: p.now}
}

func (p *Pipeline) stateErr(op, msg string) error {
	err := dataerr.State(op, msg)
	p.log.Error(op+" failed", slog.Any("error", err))
	return err
}

// RunSpec describes one end-to-end execution.
type RunSpec struct {
	Input       string
	InputFormat string
	Clean       cleaner.Options
	Plan        transform.Plan
	// Output and Report are skipped when empty.
	Output       string
	OutputFormat string
	Report       string
}

// RunResult is what Run produced.
type RunResult struct {
	Stats  cleaner.Stats
	Report *analysis.Report
	Shape  [2]int
}

// Run loads, cleans, transforms, analyzes and saves in order. ctx is checked
// between stages.
func (p *Pipeline) Run(ctx context.Context, spec RunSpec) (*RunResult, error) {
	res := &RunResult{}
	if _, err := p.Load(spec.Input, spec.InputFormat); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	stats, err := p.Clean(spec.Clean)
	res.Stats = stats
	if err != nil {
		return res, err
	}
	if len(spec.Plan) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := p.Transform(spec.Plan); err != nil {
			return res, err
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if res.Report, err = p.Analyze(); err != nil {
		return res, err
	}
	res.Shape = p.processed.Shape()
	if spec.Output != "" {
		if err := p.Save(spec.Output, spec.OutputFormat); err != nil {
			return res, err
		}
	}
	if spec.Report != "" {
		if err := p.SaveReport(res.Report, spec.Report); err != nil {
			return res, err
		}
	}
	p.log.Info("pipeline complete",
		slog.String("input", spec.Input),
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("rows_out", res.Shape[0]))
	return res, nil
}
