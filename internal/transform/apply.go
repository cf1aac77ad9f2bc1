package transform

import (
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// Option configures Apply.
type Option func(*applier)

// WithLogger routes step logs to log.
func WithLogger(log *slog.Logger) Option {
	return func(a *applier) {
		if log != nil {
			a.log = log
		}
	}
}

type applier struct {
	log *slog.Logger
}

// Apply runs plan against ds. If step k fails, the dataset produced by steps
// 0..k-1 is returned together with the error; the failing step has no
// partial effect.
func Apply(ds *dataset.Dataset, plan Plan, opts ...Option) (*dataset.Dataset, error) {
	a := &applier{log: slog.Default()}
	for _, o := range opts {
		o(a)
	}
	a.log = a.log.With(slog.String("component", "transform"))

	cur := ds
	for i, s := range plan {
		next, err := a.step(cur, s)
		if err != nil {
			a.log.Error("transform failed", slog.Int("step", i), slog.Any("error", err))
			return cur, fmt.Errorf("step %d: %w", i, err)
		}
		cur = next
		a.log.Info("transform applied",
			slog.Int("step", i),
			slog.String("spec", s.String()),
			slog.Int("rows", cur.Rows()),
			slog.Int("cols", cur.NumCols()))
	}
	return cur, nil
}

func (a *applier) step(ds *dataset.Dataset, s Spec) (*dataset.Dataset, error) {
	switch s := s.(type) {
	case Normalize:
		if err := check(s, "normalize", s.Column); err != nil {
			return nil, err
		}
		return a.normalize(ds, s)
	case Encode:
		if err := check(s, "encode", s.Column); err != nil {
			return nil, err
		}
		return a.encode(ds, s)
	case Filter:
		if err := check(s, "filter", s.Predicate); err != nil {
			return nil, err
		}
		return a.filter(ds, s)
	default:
		return nil, dataerr.Newf(dataerr.ErrInvalidTransform, "apply", "", "unsupported step %T", s)
	}
}
