// Package analysis computes descriptive statistics for a dataset and renders
// them as JSON or a compact markdown summary.
package analysis

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// Report is the analysis of one dataset.
type Report struct {
	BasicInfo     BasicInfo                   `json:"basic_info"`
	Statistics    Columns[ColumnStats]        `json:"statistics"`
	MissingValues Columns[int]                `json:"missing_values"`
	Duplicates    int                         `json:"duplicates"`
	Correlation   *Columns[Columns[*float64]] `json:"correlation,omitempty"`
	ReportInfo    ReportInfo                  `json:"report_info"`
}

// BasicInfo describes the dataset's shape and schema.
type BasicInfo struct {
	Rows        int             `json:"rows"`
	Columns     int             `json:"columns"`
	Shape       [2]int          `json:"shape"`
	ColumnNames []string        `json:"column_names"`
	Dtypes      Columns[string] `json:"dtypes"`
}

// ColumnStats holds describe()-style statistics for a numeric column.
// Undefined values are nil.
type ColumnStats struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	P25   *float64 `json:"25%"`
	P50   *float64 `json:"50%"`
	P75   *float64 `json:"75%"`
	Max   *float64 `json:"max"`
}

// ReportInfo records when the report was produced and for what shape.
type ReportInfo struct {
	GeneratedAt time.Time `json:"generated_at"`
	DataShape   [2]int    `json:"data_shape"`
}

// Analyze builds a report stamped with the current time.
func Analyze(ds *dataset.Dataset) *Report {
	return AnalyzeAt(ds, time.Now)
}

// AnalyzeAt builds a report using clock for report_info.generated_at. The
// dataset is not modified.
func AnalyzeAt(ds *dataset.Dataset, clock func() time.Time) *Report {
	r := &Report{
		BasicInfo: BasicInfo{
			Rows:        ds.Rows(),
			Columns:     ds.NumCols(),
			Shape:       ds.Shape(),
			ColumnNames: ds.Names(),
		},
		Duplicates: ds.DuplicateCount(),
		ReportInfo: ReportInfo{GeneratedAt: clock().UTC(), DataShape: ds.Shape()},
	}
	var numeric []*dataset.Column
	for _, c := range ds.Columns() {
		r.BasicInfo.Dtypes.Set(c.Name(), c.Kind().String())
		r.MissingValues.Set(c.Name(), c.MissingCount())
		if c.IsNumeric() {
			numeric = append(numeric, c)
			r.Statistics.Set(c.Name(), describe(c.Present()))
		}
	}
	if len(numeric) >= 2 {
		r.Correlation = correlation(numeric)
	}
	return r
}

func describe(vals []float64) ColumnStats {
	st := ColumnStats{Count: len(vals)}
	if len(vals) == 0 {
		return st
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	st.Mean = finite(stat.Mean(vals, nil))
	if len(vals) >= 2 {
		st.Std = finite(stat.StdDev(vals, nil))
	}
	st.Min = finite(floats.Min(vals))
	st.P25 = finite(quantile(sorted, 0.25))
	st.P50 = finite(quantile(sorted, 0.5))
	st.P75 = finite(quantile(sorted, 0.75))
	st.Max = finite(floats.Max(vals))
	return st
}

// correlation computes Pearson coefficients over rows where both columns
// are present.
func correlation(cols []*dataset.Column) *Columns[Columns[*float64]] {
	n := len(cols)
	m := make([][]*float64, n)
	for i := range m {
		m[i] = make([]*float64, n)
		one := 1.0
		m[i][i] = &one
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pearson(cols[i], cols[j])
			m[i][j], m[j][i] = r, r
		}
	}
	out := &Columns[Columns[*float64]]{}
	for i, a := range cols {
		var row Columns[*float64]
		for j, b := range cols {
			row.Set(b.Name(), m[i][j])
		}
		out.Set(a.Name(), row)
	}
	return out
}

func pearson(a, b *dataset.Column) *float64 {
	var x, y []float64
	for i := 0; i < a.Len(); i++ {
		av, aok := a.Float(i)
		bv, bok := b.Float(i)
		if aok && bok {
			x = append(x, av)
			y = append(y, bv)
		}
	}
	if len(x) < 2 {
		return nil
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	r = math.Max(-1, math.Min(1, r))
	return &r
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// quantile interpolates linearly at q*(n-1) over sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
