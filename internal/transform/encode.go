package transform

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// categories returns the distinct present values of c in sorted order:
// numeric order for numeric columns, byte order otherwise.
func categories(c *dataset.Column) []string {
	seen := map[string]bool{}
	var nums []float64
	var strs []string
	for i := 0; i < c.Len(); i++ {
		s, ok := c.Str(i)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		if v, isNum := c.Float(i); isNum {
			nums = append(nums, v)
		} else {
			strs = append(strs, s)
		}
	}
	if c.IsNumeric() {
		sort.Float64s(nums)
		out := make([]string, len(nums))
		for i, v := range nums {
			out[i] = dataset.FormatNumber(v)
		}
		return out
	}
	sort.Strings(strs)
	return strs
}

func (a *applier) encode(ds *dataset.Dataset, e Encode) (*dataset.Dataset, error) {
	c, ok := ds.Column(e.Column)
	if !ok {
		return nil, dataerr.Transform("encode", e.Column, errors.New("column not found"))
	}
	cats := categories(c)
	switch e.Method {
	case Label:
		return a.labelEncode(ds, c, cats)
	default:
		return a.oneHot(ds, c, cats)
	}
}

func (a *applier) labelEncode(ds *dataset.Dataset, c *dataset.Column, cats []string) (*dataset.Dataset, error) {
	code := make(map[string]float64, len(cats))
	for i, s := range cats {
		code[s] = float64(i)
	}
	vals := make([]float64, c.Len())
	valid := make([]bool, c.Len())
	for i := range vals {
		if s, ok := c.Str(i); ok {
			vals[i], valid[i] = code[s], true
		}
	}
	a.log.Info("label encoded", slog.String("column", c.Name()), slog.Int("classes", len(cats)))
	return ds.ReplaceColumn(c.Name(), dataset.NewNumeric(c.Name(), vals, valid))
}

func (a *applier) oneHot(ds *dataset.Dataset, c *dataset.Column, cats []string) (*dataset.Dataset, error) {
	base, err := ds.DropColumn(c.Name())
	if err != nil {
		return nil, dataerr.Transform("encode", c.Name(), err)
	}
	indicators := make([]*dataset.Column, len(cats))
	for k, cat := range cats {
		name := fmt.Sprintf("%s_%s", c.Name(), cat)
		if base.Index(name) >= 0 {
			return nil, dataerr.Newf(dataerr.ErrInvalidTransform, "encode", c.Name(), "indicator column %q already exists", name)
		}
		vals := make([]float64, c.Len())
		for i := range vals {
			if s, ok := c.Str(i); ok && s == cat {
				vals[i] = 1
			}
		}
		indicators[k] = dataset.NewNumeric(name, vals, nil)
	}
	a.log.Info("one-hot encoded", slog.String("column", c.Name()), slog.Int("indicators", len(cats)))
	return base.AppendColumns(indicators...)
}
