package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

var fixedClock = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func sample() *dataset.Dataset {
	return dataset.MustNew(
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 4}, nil),
		dataset.NewNumeric("y", []float64{2, 4, 6, 8, 8}, nil),
		dataset.NewNumeric("z", []float64{5, 0, 5, 5, 5}, []bool{true, false, true, true, true}),
		dataset.NewStrings("tag", dataset.Categorical, []string{"a", "b", "", "a", "a"}, []bool{true, true, false, true, true}),
	)
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAnalyzeBasicInfo(t *testing.T) {
	r := AnalyzeAt(sample(), fixedClock)
	if r.BasicInfo.Rows != 5 || r.BasicInfo.Columns != 4 || r.BasicInfo.Shape != [2]int{5, 4} {
		t.Fatalf("basic info: %+v", r.BasicInfo)
	}
	if kind, _ := r.BasicInfo.Dtypes.Get("tag"); kind != "categorical" {
		t.Errorf("tag dtype = %q", kind)
	}
	if got := r.Duplicates; got != 1 {
		t.Errorf("duplicates = %d, want 1", got)
	}
	if n, _ := r.MissingValues.Get("z"); n != 1 {
		t.Errorf("missing z = %d", n)
	}
	if r.Statistics.Len() != 3 {
		t.Errorf("statistics cover %v, want numeric columns only", r.Statistics.Names())
	}
	if !r.ReportInfo.GeneratedAt.Equal(fixedClock()) || r.ReportInfo.DataShape != [2]int{5, 4} {
		t.Errorf("report info: %+v", r.ReportInfo)
	}
}

func TestDescribe(t *testing.T) {
	r := AnalyzeAt(sample(), fixedClock)
	st, ok := r.Statistics.Get("x")
	if !ok {
		t.Fatal("no stats for x")
	}
	// x = 1,2,3,4,4
	checks := map[string]struct {
		got  *float64
		want float64
	}{
		"mean": {st.Mean, 2.8},
		"std":  {st.Std, math.Sqrt(1.7)},
		"min":  {st.Min, 1},
		"25%":  {st.P25, 2},
		"50%":  {st.P50, 3},
		"75%":  {st.P75, 4},
		"max":  {st.Max, 4},
	}
	for name, c := range checks {
		if c.got == nil || !approx(*c.got, c.want) {
			t.Errorf("%s = %v, want %v", name, c.got, c.want)
		}
	}
	if st.Count != 5 {
		t.Errorf("count = %d", st.Count)
	}
}

func TestDescribeUndefined(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("one", []float64{7}, nil),
		dataset.NewNumeric("none", []float64{0}, []bool{false}),
	)
	r := AnalyzeAt(ds, fixedClock)
	one, _ := r.Statistics.Get("one")
	if one.Std != nil || one.Mean == nil || *one.Mean != 7 {
		t.Errorf("one: %+v", one)
	}
	none, _ := r.Statistics.Get("none")
	if none.Count != 0 || none.Mean != nil || none.Max != nil {
		t.Errorf("none: %+v", none)
	}
	data, err := json.Marshal(none)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"std":null`) {
		t.Errorf("undefined std should encode as null: %s", data)
	}
}

func TestPerfectCorrelation(t *testing.T) {
	r := AnalyzeAt(sample(), fixedClock)
	if r.Correlation == nil {
		t.Fatal("expected correlation matrix")
	}
	row, _ := r.Correlation.Get("x")
	xy, _ := row.Get("y")
	if xy == nil || !approx(*xy, 1.0) {
		t.Errorf("corr(x,y) = %v, want 1", xy)
	}
	xx, _ := row.Get("x")
	if xx == nil || *xx != 1 {
		t.Errorf("diagonal = %v", xx)
	}
	// z is constant over its present rows.
	xz, _ := row.Get("z")
	if xz != nil {
		t.Errorf("corr(x,z) = %v, want null", *xz)
	}
}

func TestCorrelationNeedsTwoNumericColumns(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{1, 2}, nil),
		dataset.NewStrings("s", dataset.Text, []string{"a", "b"}, nil),
	)
	if r := AnalyzeAt(ds, fixedClock); r.Correlation != nil {
		t.Error("correlation should be omitted")
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	ds := sample()
	a, _ := json.Marshal(AnalyzeAt(ds, fixedClock))
	b, _ := json.Marshal(AnalyzeAt(ds, fixedClock))
	if string(a) != string(b) {
		t.Fatal("reports differ between runs")
	}
	if ds.Rows() != 5 {
		t.Fatal("dataset modified")
	}
}

func TestReportJSON(t *testing.T) {
	data, err := json.Marshal(AnalyzeAt(sample(), fixedClock))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, key := range []string{`"basic_info"`, `"statistics"`, `"missing_values"`, `"duplicates":1`, `"correlation"`, `"report_info"`, `"25%"`, `"generated_at":"2024-03-01T12:00:00Z"`} {
		if !strings.Contains(s, key) {
			t.Errorf("report JSON missing %s", key)
		}
	}
	// Column order follows the dataset, not the alphabet.
	if !strings.Contains(s, `"dtypes":{"x":"numeric","y":"numeric","z":"numeric","tag":"categorical"}`) {
		t.Errorf("dtypes order: %s", s)
	}

	var back Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if got := back.MissingValues.Names(); strings.Join(got, ",") != "x,y,z,tag" {
		t.Errorf("decoded order = %v", got)
	}
}

func TestMarkdown(t *testing.T) {
	md := AnalyzeAt(sample(), fixedClock).Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 5", "[SCHEMA]", "- tag: categorical (missing 1, 20.0%)", "[CORRELATIONS]", "- x ~ y: r=1.000"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestQuantile(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	if q := quantile(vals, 0.25); !approx(q, 1.75) {
		t.Errorf("q25 = %v", q)
	}
	if q := quantile(nil, 0.5); q != 0 {
		t.Errorf("empty = %v", q)
	}
}
