// Package persist writes datasets and analysis reports to disk.
package persist

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
	"github.com/KaramelBytes/dataloom-cli/internal/format"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// SheetName is the worksheet excel output is written to.
const SheetName = "Sheet1"

// Options controls how files are written.
type Options struct {
	// IncludeIndex prepends a blank-headed 0-based row index to csv and
	// excel output. JSON records never carry it.
	IncludeIndex bool
	Logger       *slog.Logger
	// Now stamps saved reports; nil uses time.Now.
	Now func() time.Time
}

func (o Options) logger() *slog.Logger {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	return log.With(slog.String("component", "persist"))
}

// SaveDataset writes ds to path as kind (csv|excel|json|auto).
func SaveDataset(ds *dataset.Dataset, path, kind string, opt Options) error {
	log := opt.logger()
	f, err := format.Resolve(path, kind)
	if err != nil {
		log.Error("save failed", slog.String("path", path), slog.Any("error", err))
		return err
	}
	var data []byte
	switch f {
	case format.CSV:
		data, err = encodeCSV(ds, opt.IncludeIndex)
	case format.Excel:
		data, err = encodeExcel(ds, opt.IncludeIndex)
	case format.JSON:
		data, err = encodeJSON(ds)
	default:
		err = dataerr.UnsupportedFormat("save", string(f))
	}
	if err == nil {
		err = utils.SafeWriteFile(path, data)
	}
	if err != nil {
		if dataerr.KindOf(err) == nil {
			err = dataerr.Write("save", path, err)
		}
		log.Error("save failed", slog.String("path", path), slog.String("format", string(f)), slog.Any("error", err))
		return err
	}
	log.Info("dataset saved",
		slog.String("path", path),
		slog.String("format", string(f)),
		slog.Int("rows", ds.Rows()),
		slog.Int("cols", ds.NumCols()))
	return nil
}

// SaveReport stamps report_info with the save time and the shape recorded
// in basic_info, then writes indented JSON. The caller's report is left
// unchanged.
func SaveReport(r *analysis.Report, path string, opt Options) error {
	log := opt.logger()
	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}
	out := *r
	out.ReportInfo = analysis.ReportInfo{
		GeneratedAt: now().UTC(),
		DataShape:   r.BasicInfo.Shape,
	}
	data, err := utils.PrettyJSON(&out)
	if err == nil {
		err = utils.SafeWriteFile(path, data)
	}
	if err != nil {
		err = dataerr.Write("save report", path, err)
		log.Error("report save failed", slog.String("path", path), slog.Any("error", err))
		return err
	}
	log.Info("report saved", slog.String("path", path))
	return nil
}

func header(ds *dataset.Dataset, withIndex bool) []string {
	names := ds.Names()
	if withIndex {
		names = append([]string{""}, names...)
	}
	return names
}

func encodeCSV(ds *dataset.Dataset, withIndex bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header(ds, withIndex)); err != nil {
		return nil, err
	}
	cols := ds.Columns()
	rec := make([]string, 0, len(cols)+1)
	for i := 0; i < ds.Rows(); i++ {
		rec = rec[:0]
		if withIndex {
			rec = append(rec, strconv.Itoa(i))
		}
		for _, c := range cols {
			s, _ := c.Str(i)
			rec = append(rec, s)
		}
		if len(rec) == 1 && rec[0] == "" {
			// A bare empty line would be skipped on read.
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeExcel(ds *dataset.Dataset, withIndex bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}
	hdr := header(ds, withIndex)
	for j, name := range hdr {
		if name == "" {
			continue
		}
		if err := setCell(f, j+1, 1, name); err != nil {
			return nil, err
		}
	}
	offset := 0
	if withIndex {
		offset = 1
	}
	cols := ds.Columns()
	for i := 0; i < ds.Rows(); i++ {
		row := i + 2
		if withIndex {
			if err := setCell(f, 1, row, i); err != nil {
				return nil, err
			}
		}
		for j, c := range cols {
			v := c.Value(i)
			if v == nil {
				continue
			}
			if err := setCell(f, j+1+offset, row, v); err != nil {
				return nil, err
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, cell, v)
}

// encodeJSON writes an array of row objects with keys in column order.
func encodeJSON(ds *dataset.Dataset) ([]byte, error) {
	if ds.Rows() == 0 {
		return []byte("[]\n"), nil
	}
	cols := ds.Columns()
	keys := make([][]byte, len(cols))
	for j, c := range cols {
		k, err := jsonValue(c.Name())
		if err != nil {
			return nil, err
		}
		keys[j] = k
	}
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i := 0; i < ds.Rows(); i++ {
		buf.WriteString("  {")
		for j, c := range cols {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString("\n    ")
			buf.Write(keys[j])
			buf.WriteString(": ")
			v, err := jsonValue(c.Value(i))
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, c.Name(), err)
			}
			buf.Write(v)
		}
		if len(cols) > 0 {
			buf.WriteString("\n  ")
		}
		buf.WriteByte('}')
		if i < ds.Rows()-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

func jsonValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
