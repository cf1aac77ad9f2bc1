package cleaner

import (
	"math"

	"github.com/spf13/cast"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// fill replaces missing cells column by column and returns how many cells
// it filled.
func fill(ds *dataset.Dataset, literal any) (*dataset.Dataset, int, error) {
	cols := ds.Columns()
	filled := 0
	for j, c := range cols {
		if c.MissingCount() == 0 {
			continue
		}
		var (
			nc *dataset.Column
			n  int
		)
		if literal != nil {
			nc, n = fillLiteral(c, literal)
		} else if c.IsNumeric() {
			nc, n = fillMean(c)
		} else {
			nc, n = fillMode(c)
		}
		cols[j] = nc
		filled += n
	}
	out, err := dataset.NewWithRows(ds.Rows(), cols...)
	return out, filled, err
}

func fillLiteral(c *dataset.Column, literal any) (*dataset.Column, int) {
	n := c.MissingCount()
	if _, isBool := literal.(bool); c.IsNumeric() && !isBool {
		if f, err := cast.ToFloat64E(literal); err == nil && !math.IsNaN(f) {
			vals := make([]float64, c.Len())
			for i := range vals {
				if v, ok := c.Float(i); ok {
					vals[i] = v
				} else {
					vals[i] = f
				}
			}
			return dataset.NewNumeric(c.Name(), vals, nil), n
		}
	}
	s := literalString(literal)
	kind := c.Kind()
	if kind == dataset.Numeric {
		kind = dataset.Categorical
	}
	vals := make([]string, c.Len())
	for i := range vals {
		if v, ok := c.Str(i); ok {
			vals[i] = v
		} else {
			vals[i] = s
		}
	}
	return dataset.NewStrings(c.Name(), kind, vals, nil), n
}

func literalString(v any) string {
	switch x := v.(type) {
	case float64:
		return dataset.FormatNumber(x)
	case float32:
		return dataset.FormatNumber(float64(x))
	default:
		return cast.ToString(v)
	}
}

func fillMean(c *dataset.Column) (*dataset.Column, int) {
	present := c.Present()
	if len(present) == 0 {
		return c, 0
	}
	mean := stat.Mean(present, nil)
	vals := make([]float64, c.Len())
	for i := range vals {
		if v, ok := c.Float(i); ok {
			vals[i] = v
		} else {
			vals[i] = mean
		}
	}
	return dataset.NewNumeric(c.Name(), vals, nil), c.MissingCount()
}

// fillMode uses the most frequent present value; ties go to the value seen
// first.
func fillMode(c *dataset.Column) (*dataset.Column, int) {
	counts := map[string]int{}
	var order []string
	for i := 0; i < c.Len(); i++ {
		s, ok := c.Str(i)
		if !ok {
			continue
		}
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	if len(order) == 0 {
		return c, 0
	}
	mode := order[0]
	for _, s := range order[1:] {
		if counts[s] > counts[mode] {
			mode = s
		}
	}
	vals := make([]string, c.Len())
	for i := range vals {
		if s, ok := c.Str(i); ok {
			vals[i] = s
		} else {
			vals[i] = mode
		}
	}
	return dataset.NewStrings(c.Name(), c.Kind(), vals, nil), c.MissingCount()
}

// interpolate fills interior gaps of numeric columns linearly by row
// position and carries the last present value over trailing gaps. Leading
// gaps stay missing.
func interpolate(ds *dataset.Dataset) (*dataset.Dataset, int, error) {
	cols := ds.Columns()
	filled := 0
	for j, c := range cols {
		if !c.IsNumeric() || c.MissingCount() == 0 {
			continue
		}
		n := c.Len()
		vals := make([]float64, n)
		valid := make([]bool, n)
		prev := -1
		for i := 0; i < n; i++ {
			v, ok := c.Float(i)
			if !ok {
				continue
			}
			vals[i], valid[i] = v, true
			if prev >= 0 && i-prev > 1 {
				lo := vals[prev]
				step := (v - lo) / float64(i-prev)
				for k := prev + 1; k < i; k++ {
					vals[k] = lo + step*float64(k-prev)
					valid[k] = true
					filled++
				}
			}
			prev = i
		}
		if prev >= 0 {
			for k := prev + 1; k < n; k++ {
				vals[k] = vals[prev]
				valid[k] = true
				filled++
			}
		}
		cols[j] = dataset.NewNumeric(c.Name(), vals, valid)
	}
	out, err := dataset.NewWithRows(ds.Rows(), cols...)
	return out, filled, err
}
