package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

func sales() *dataset.Dataset {
	return dataset.MustNew(
		dataset.NewNumeric("price", []float64{10, 20, 30, 40, 0}, []bool{true, true, true, true, false}),
		dataset.NewStrings("city", dataset.Categorical, []string{"rome", "oslo", "rome", "", "lima"}, []bool{true, true, true, false, true}),
		dataset.NewNumeric("qty", []float64{1, 1, 1, 1, 1}, nil),
	)
}

func column(t *testing.T, ds *dataset.Dataset, name string) []any {
	t.Helper()
	c, ok := ds.Column(name)
	require.True(t, ok, "column %q", name)
	out := make([]any, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

func mustApply(t *testing.T, ds *dataset.Dataset, plan ...Spec) *dataset.Dataset {
	t.Helper()
	out, err := Apply(ds, plan)
	require.NoError(t, err)
	return out
}

func TestZScore(t *testing.T) {
	n, err := NewNormalize("price", "")
	require.NoError(t, err)
	out := mustApply(t, sales(), n)

	c, _ := out.Column("price")
	mean, std := stat.MeanStdDev(c.Present(), nil)
	assert.InDelta(t, 0, mean, 1e-9)
	assert.InDelta(t, 1, std, 1e-9)
	assert.True(t, c.Missing(4))
}

func TestMinMax(t *testing.T) {
	n, err := NewNormalize("price", MinMax)
	require.NoError(t, err)
	out := mustApply(t, sales(), n)
	assert.Equal(t, []any{0.0, 1.0 / 3, 2.0 / 3, 1.0, nil}, column(t, out, "price"))
}

func TestNormalizeConstantColumn(t *testing.T) {
	for _, method := range []string{ZScore, MinMax} {
		n, err := NewNormalize("qty", method)
		require.NoError(t, err)
		out := mustApply(t, sales(), n)
		assert.Equal(t, []any{0.0, 0.0, 0.0, 0.0, 0.0}, column(t, out, "qty"), method)
	}
}

func TestNormalizeRejectsNonNumeric(t *testing.T) {
	n, err := NewNormalize("city", ZScore)
	require.NoError(t, err)
	_, err = Apply(sales(), Plan{n})
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
}

func TestOneHot(t *testing.T) {
	e, err := NewEncode("city", "")
	require.NoError(t, err)
	out := mustApply(t, sales(), e)

	assert.Equal(t, []string{"price", "qty", "city_lima", "city_oslo", "city_rome"}, out.Names())
	for i := 0; i < out.Rows(); i++ {
		sum := 0.0
		for _, name := range []string{"city_lima", "city_oslo", "city_rome"} {
			v, ok := out.ColumnAt(out.Index(name)).Float(i)
			require.True(t, ok)
			sum += v
		}
		if i == 3 {
			assert.Equal(t, 0.0, sum, "missing source cell")
		} else {
			assert.Equal(t, 1.0, sum, "row %d", i)
		}
	}
}

func TestOneHotNameCollision(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewStrings("c", dataset.Categorical, []string{"x", "y"}, nil),
		dataset.NewNumeric("c_x", []float64{1, 2}, nil),
	)
	e, err := NewEncode("c", OneHot)
	require.NoError(t, err)
	out, err := Apply(ds, Plan{e})
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
	assert.True(t, ds.Equal(out))
}

func TestLabelEncode(t *testing.T) {
	e, err := NewEncode("city", Label)
	require.NoError(t, err)
	out := mustApply(t, sales(), e)
	assert.Equal(t, []string{"price", "city", "qty"}, out.Names())
	assert.Equal(t, []any{2.0, 1.0, 2.0, nil, 0.0}, column(t, out, "city"))
}

func TestLabelEncodeNumericOrder(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("n", []float64{10, 9, 100}, nil))
	e, err := NewEncode("n", Label)
	require.NoError(t, err)
	out := mustApply(t, ds, e)
	assert.Equal(t, []any{1.0, 0.0, 2.0}, column(t, out, "n"))
}

func TestFilter(t *testing.T) {
	f, err := NewFilter(`price >= 20 and city in ["rome", "lima"]`)
	require.NoError(t, err)
	out := mustApply(t, sales(), f)
	assert.Equal(t, []any{30.0}, column(t, out, "price"))
	assert.Equal(t, []any{"rome"}, column(t, out, "city"))
}

func TestFilterMissingComparesFalse(t *testing.T) {
	f, err := NewFilter(`price > 15`)
	require.NoError(t, err)
	out := mustApply(t, sales(), f)
	assert.Equal(t, []any{20.0, 30.0, 40.0}, column(t, out, "price"))
}

func TestFilterMissingIndependentOfOperandOrder(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("id", []float64{1, 2, 3}, nil),
		dataset.NewNumeric("val", []float64{0, 20, 5}, []bool{false, true, true}),
		dataset.NewStrings("tag", dataset.Text, []string{"", "ab", "cd"}, []bool{false, true, true}),
	)
	for predicate, want := range map[string][]any{
		`val > 10 or id == 1`:           {1.0, 2.0},
		`id == 1 || val > 10`:           {1.0, 2.0},
		`id == 1 || val > 100`:          {1.0},
		`not (val > 10)`:                {1.0, 3.0},
		`!(val <= 10)`:                  {1.0, 2.0},
		`val * 2 > 30 or id == 1`:       {1.0, 2.0},
		`-val < -10`:                    {2.0},
		`tag startsWith "a" or id == 1`: {1.0, 2.0},
		`not (tag contains "c")`:        {1.0, 2.0},
	} {
		f, err := NewFilter(predicate)
		require.NoError(t, err, predicate)
		out, err := Apply(ds, Plan{f})
		require.NoError(t, err, predicate)
		assert.Equal(t, want, column(t, out, "id"), predicate)
	}
}

func TestFilterRuntimeTypeErrorIsInvalidTransform(t *testing.T) {
	f, err := NewFilter(`city > 3`)
	require.NoError(t, err)
	_, err = Apply(sales(), Plan{f})
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
}

func TestFilterUnknownColumn(t *testing.T) {
	f, err := NewFilter(`weight > 3`)
	require.NoError(t, err)
	_, err = Apply(sales(), Plan{f})
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
}

func TestConstructorsValidate(t *testing.T) {
	_, err := NewNormalize("", ZScore)
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
	_, err = NewNormalize("price", "log")
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
	_, err = NewEncode("city", "hash")
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
	_, err = NewFilter("  ")
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
	_, err = NewFilter("price >")
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
}

func TestApplyKeepsPriorStepsOnFailure(t *testing.T) {
	n, err := NewNormalize("price", MinMax)
	require.NoError(t, err)
	bad, err := NewNormalize("missing", ZScore)
	require.NoError(t, err)
	e, err := NewEncode("city", Label)
	require.NoError(t, err)

	in := sales()
	out, err := Apply(in, Plan{n, bad, e})
	require.ErrorIs(t, err, dataerr.ErrInvalidTransform)
	assert.Contains(t, err.Error(), "step 1")
	assert.Equal(t, 1.0, column(t, out, "price")[3])
	assert.Equal(t, dataset.Categorical, out.ColumnAt(out.Index("city")).Kind())
	assert.Equal(t, 10.0, column(t, in, "price")[0])
}

func TestApplyRevalidatesLiteralSpecs(t *testing.T) {
	_, err := Apply(sales(), Plan{Normalize{Column: "price", Method: "log"}})
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
}

func TestParsePlan(t *testing.T) {
	yamlPlan := []byte(`
- type: normalize
  params: {column: price}
- type: encode
  params:
    column: city
    method: label
- type: filter
  params:
    condition: price > 0
`)
	plan, err := ParsePlan(yamlPlan)
	require.NoError(t, err)
	assert.Equal(t, Plan{
		Normalize{Column: "price", Method: ZScore},
		Encode{Column: "city", Method: Label},
		Filter{Predicate: "price > 0"},
	}, plan)

	jsonPlan := []byte("[\n\t{\"type\": \"encode\", \"params\": {\"column\": \"city\"}}\n]")
	plan, err = ParsePlan(jsonPlan)
	require.NoError(t, err)
	assert.Equal(t, Plan{Encode{Column: "city", Method: OneHot}}, plan)

	plan, err = ParsePlan([]byte(`[{"type": "filter", "params": {"predicate": "qty == 1"}}]`))
	require.NoError(t, err)
	assert.Equal(t, Plan{Filter{Predicate: "qty == 1"}}, plan)

	_, err = ParsePlan([]byte(`[{"type": "filter", "params": {}}]`))
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)

	_, err = ParsePlan([]byte(`[{"type": "pivot", "params": {}}]`))
	assert.ErrorIs(t, err, dataerr.ErrInvalidTransform)
}

func TestLoadPlan(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(p, []byte("- type: normalize\n  params: {column: qty, method: min-max}\n"), 0o644))
	plan, err := LoadPlan(p)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "normalize(qty, min-max)", plan[0].String())

	_, err = LoadPlan(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, dataerr.ErrNotFound)
}
