// Package cleaner removes duplicate rows and resolves missing cells.
package cleaner

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// Policy selects how missing cells are resolved.
type Policy string

const (
	Drop        Policy = "drop"
	Fill        Policy = "fill"
	Interpolate Policy = "interpolate"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case Drop, Fill, Interpolate:
		return p, nil
	default:
		return "", fmt.Errorf("unknown missing policy %q (want drop|fill|interpolate)", s)
	}
}

// Options controls a cleaning pass.
type Options struct {
	RemoveDuplicates bool
	Policy           Policy
	// FillValue is the literal used by the fill policy; nil means mean for
	// numeric columns and mode for the rest.
	FillValue any
	Logger    *slog.Logger
}

// DefaultOptions removes duplicates and drops incomplete rows.
func DefaultOptions() Options {
	return Options{RemoveDuplicates: true, Policy: Drop}
}

// Stats summarizes what a cleaning pass changed.
type Stats struct {
	RowsIn            int `json:"rows_in"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	MissingFound      int `json:"missing_found"`
	RowsDropped       int `json:"rows_dropped"`
	CellsFilled       int `json:"cells_filled"`
	RowsOut           int `json:"rows_out"`
}

// Clean deduplicates ds and then resolves its missing cells. The input is
// not modified.
func Clean(ds *dataset.Dataset, opt Options) (*dataset.Dataset, Stats, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "cleaner"))
	if ds == nil {
		return nil, Stats{}, fmt.Errorf("clean: nil dataset")
	}
	policy, err := ParsePolicy(string(opt.Policy))
	if err != nil {
		return nil, Stats{}, err
	}

	st := Stats{RowsIn: ds.Rows()}
	out := ds
	if opt.RemoveDuplicates {
		out = dedup(out)
		st.DuplicatesRemoved = ds.Rows() - out.Rows()
		log.Info("duplicates removed", slog.Int("count", st.DuplicatesRemoved))
	}

	st.MissingFound = out.MissingCount()
	if st.MissingFound > 0 {
		log.Info("missing values found", slog.Int("count", st.MissingFound), slog.String("policy", string(policy)))
		switch policy {
		case Drop:
			before := out.Rows()
			out = dropIncomplete(out)
			st.RowsDropped = before - out.Rows()
		case Fill:
			out, st.CellsFilled, err = fill(out, opt.FillValue)
		case Interpolate:
			out, st.CellsFilled, err = interpolate(out)
		}
		if err != nil {
			return nil, st, err
		}
	}
	st.RowsOut = out.Rows()
	log.Info("data cleaned",
		slog.Int("rows_in", st.RowsIn),
		slog.Int("rows_out", st.RowsOut),
		slog.Int("rows_dropped", st.RowsDropped),
		slog.Int("cells_filled", st.CellsFilled))
	return out, st, nil
}

func dedup(ds *dataset.Dataset) *dataset.Dataset {
	mask := ds.DuplicateMask()
	keep := make([]int, 0, ds.Rows())
	for i, dup := range mask {
		if !dup {
			keep = append(keep, i)
		}
	}
	if len(keep) == ds.Rows() {
		return ds
	}
	return ds.Take(keep)
}

func dropIncomplete(ds *dataset.Dataset) *dataset.Dataset {
	keep := make([]int, 0, ds.Rows())
	for i := 0; i < ds.Rows(); i++ {
		if !ds.RowHasMissing(i) {
			keep = append(keep, i)
		}
	}
	return ds.Take(keep)
}
