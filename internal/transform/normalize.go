package transform

import (
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

func numericColumn(ds *dataset.Dataset, op, name string) (*dataset.Column, error) {
	c, ok := ds.Column(name)
	if !ok {
		return nil, dataerr.Transform(op, name, errors.New("column not found"))
	}
	if !c.IsNumeric() {
		return nil, dataerr.Transform(op, name, errors.New("column is not numeric"))
	}
	return c, nil
}

func (a *applier) normalize(ds *dataset.Dataset, n Normalize) (*dataset.Dataset, error) {
	c, err := numericColumn(ds, "normalize", n.Column)
	if err != nil {
		return nil, err
	}
	present := c.Present()

	// shift and scale map v to (v-shift)/scale; scale 0 collapses every
	// present value to 0.
	var shift, scale float64
	switch n.Method {
	case ZScore:
		if len(present) >= 2 {
			shift, scale = stat.MeanStdDev(present, nil)
		}
	case MinMax:
		if len(present) > 0 {
			shift = floats.Min(present)
			scale = floats.Max(present) - shift
		}
	}
	if scale == 0 || math.IsNaN(scale) {
		a.log.Warn("column has no spread; normalized values set to 0",
			slog.String("column", n.Column),
			slog.String("method", n.Method),
			slog.Int("present", len(present)))
		scale = 0
	}

	vals := make([]float64, c.Len())
	valid := make([]bool, c.Len())
	for i := range vals {
		v, ok := c.Float(i)
		if !ok {
			continue
		}
		valid[i] = true
		if scale == 0 {
			continue
		}
		vals[i] = (v - shift) / scale
		if math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
			return nil, dataerr.Newf(dataerr.ErrComputationError, "normalize", n.Column, "row %d: value %v does not normalize to a finite number", i, v)
		}
	}
	return ds.ReplaceColumn(n.Column, dataset.NewNumeric(n.Column, vals, valid))
}
