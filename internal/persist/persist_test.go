package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
	"github.com/KaramelBytes/dataloom-cli/internal/loader"
)

func sample() *dataset.Dataset {
	return dataset.MustNew(
		dataset.NewNumeric("id", []float64{1, 2, 3}, nil),
		dataset.NewNumeric("score", []float64{0.1, 2.5, 0}, []bool{true, true, false}),
		dataset.NewStrings("city", dataset.Categorical, []string{"oslo", "a <b> & c", "rome"}, nil),
	)
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"out.csv", "out.xlsx", "out.json"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, SaveDataset(sample(), p, "auto", Options{}))

			back, err := loader.Load(p, "auto", loader.Options{})
			require.NoError(t, err)
			assert.True(t, sample().Equal(back), "round trip changed the dataset")
		})
	}
}

func TestCSVContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, SaveDataset(sample(), p, "csv", Options{IncludeIndex: true}))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, ",id,score,city\n0,1,0.1,oslo\n1,2,2.5,a <b> & c\n2,3,,rome\n", string(data))
}

func TestIndexColumnReloads(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveDataset(sample(), p, "excel", Options{IncludeIndex: true}))
	back, err := loader.Load(p, "excel", loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unnamed: 0", "id", "score", "city"}, back.Names())
	assert.Equal(t, []any{2.0, 3.0, nil, "rome"}, back.Row(2))
}

func TestJSONContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, SaveDataset(sample(), p, "json", Options{IncludeIndex: true}))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.HasPrefix(s, "[\n  {\n    \"id\": 1,\n    \"score\": 0.1,\n    \"city\": \"oslo\"\n  },\n"), s)
	assert.Contains(t, s, `"score": null`)
	assert.Contains(t, s, `"a <b> & c"`)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Len(t, rows, 3)
}

func TestSingleColumnMissingSurvivesCSV(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("v", []float64{1, 0, 3}, []bool{true, false, true}))
	p := filepath.Join(t.TempDir(), "v.csv")
	require.NoError(t, SaveDataset(ds, p, "csv", Options{}))
	back, err := loader.Load(p, "csv", loader.Options{})
	require.NoError(t, err)
	assert.True(t, ds.Equal(back))
}

func TestSaveErrors(t *testing.T) {
	dir := t.TempDir()
	err := SaveDataset(sample(), filepath.Join(dir, "out.parquet"), "auto", Options{})
	assert.ErrorIs(t, err, dataerr.ErrUnsupportedFormat)

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	err = SaveDataset(sample(), filepath.Join(blocker, "out.csv"), "csv", Options{})
	assert.ErrorIs(t, err, dataerr.ErrWriteError)

	err = SaveReport(analysis.Analyze(sample()), filepath.Join(blocker, "r.json"), Options{})
	assert.ErrorIs(t, err, dataerr.ErrWriteError)
}

func TestSaveReportStamps(t *testing.T) {
	when := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	r := analysis.AnalyzeAt(sample(), func() time.Time { return time.Time{} })
	p := filepath.Join(t.TempDir(), "reports", "analysis.json")
	require.NoError(t, SaveReport(r, p, Options{Now: func() time.Time { return when }}))
	assert.True(t, r.ReportInfo.GeneratedAt.IsZero(), "caller's report modified")

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	var back analysis.Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, when.Equal(back.ReportInfo.GeneratedAt))
	assert.Equal(t, [2]int{3, 3}, back.ReportInfo.DataShape)
	assert.Contains(t, string(data), "\n  \"basic_info\": {")
}
