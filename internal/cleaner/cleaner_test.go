package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

func scenario() *dataset.Dataset {
	return dataset.MustNew(
		dataset.NewNumeric("id", []float64{1, 2, 2, 3}, nil),
		dataset.NewNumeric("val", []float64{10, 20, 20, 0}, []bool{true, true, true, false}),
	)
}

func TestCleanDedupThenDrop(t *testing.T) {
	out, st, err := Clean(scenario(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, [2]int{2, 2}, out.Shape())
	assert.Equal(t, []any{1.0, 10.0}, out.Row(0))
	assert.Equal(t, []any{2.0, 20.0}, out.Row(1))
	assert.Equal(t, Stats{RowsIn: 4, DuplicatesRemoved: 1, MissingFound: 1, RowsDropped: 1, RowsOut: 2}, st)
}

func TestCleanIsIdempotent(t *testing.T) {
	once, _, err := Clean(scenario(), DefaultOptions())
	require.NoError(t, err)
	twice, st, err := Clean(once, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
	assert.Zero(t, st.DuplicatesRemoved)
	assert.Zero(t, st.RowsDropped)
}

func TestCleanKeepDuplicates(t *testing.T) {
	out, st, err := Clean(scenario(), Options{Policy: Drop})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Rows())
	assert.Zero(t, st.DuplicatesRemoved)
	assert.Zero(t, out.MissingCount())
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	in := scenario()
	_, _, err := Clean(in, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, in.Rows())
	assert.Equal(t, 1, in.MissingCount())
}

func TestFillMeanAndMode(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{1, 0, 5}, []bool{true, false, true}),
		dataset.NewStrings("c", dataset.Categorical, []string{"b", "a", ""}, []bool{true, true, false}),
		dataset.NewNumeric("empty", []float64{0, 0, 0}, []bool{false, false, false}),
	)
	out, st, err := Clean(ds, Options{Policy: Fill})
	require.NoError(t, err)

	// "a" and "b" tie; "b" was seen first.
	assert.Equal(t, []any{3.0, "a", nil}, out.Row(1))
	assert.Equal(t, []any{5.0, "b", nil}, out.Row(2))
	assert.Equal(t, 2, st.CellsFilled)
	assert.Equal(t, 3, out.MissingCount())
}

func TestFillLiteral(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("x", []float64{1.5, 0}, []bool{true, false}),
		dataset.NewStrings("c", dataset.Categorical, []string{"a", ""}, []bool{true, false}),
	)

	out, st, err := Clean(ds, Options{Policy: Fill, FillValue: "0"})
	require.NoError(t, err)
	assert.Equal(t, dataset.Numeric, out.ColumnAt(0).Kind())
	assert.Equal(t, []any{0.0, "0"}, out.Row(1))
	assert.Equal(t, 2, st.CellsFilled)

	out, _, err = Clean(ds, Options{Policy: Fill, FillValue: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, dataset.Categorical, out.ColumnAt(0).Kind())
	assert.Equal(t, []any{"1.5", "a"}, out.Row(0))
	assert.Equal(t, []any{"unknown", "unknown"}, out.Row(1))
}

func TestInterpolate(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("y", []float64{0, 1, 0, 0, 4, 0}, []bool{false, true, false, false, true, false}),
		dataset.NewStrings("s", dataset.Categorical, []string{"a", "", "c", "d", "e", "f"}, []bool{true, false, true, true, true, true}),
	)
	out, st, err := Clean(ds, Options{Policy: Interpolate})
	require.NoError(t, err)

	y, _ := out.Column("y")
	got := make([]any, y.Len())
	for i := range got {
		got[i] = y.Value(i)
	}
	assert.Equal(t, []any{nil, 1.0, 2.0, 3.0, 4.0, 4.0}, got)
	assert.Equal(t, 3, st.CellsFilled)

	s, _ := out.Column("s")
	assert.True(t, s.Missing(1))
}

func TestNoMissingSkipsResolution(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("a", []float64{1, 2}, nil))
	out, st, err := Clean(ds, Options{Policy: Fill, FillValue: "x"})
	require.NoError(t, err)
	assert.Equal(t, dataset.Numeric, out.ColumnAt(0).Kind())
	assert.Zero(t, st.MissingFound)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" Interpolate ")
	require.NoError(t, err)
	assert.Equal(t, Interpolate, p)

	_, err = ParsePolicy("median")
	assert.Error(t, err)

	_, _, err = Clean(scenario(), Options{Policy: "median"})
	assert.Error(t, err)
}
