// Package loader parses CSV, Excel and JSON files into datasets.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
	"github.com/KaramelBytes/dataloom-cli/internal/format"
)

// Options tunes how a file is turned into a dataset.
type Options struct {
	// Kinds declares column kinds by name; undeclared columns are inferred.
	Kinds map[string]dataset.Kind
	// Sheet selects an Excel sheet by name; empty means the first sheet.
	Sheet string
	// Logger receives the load event; nil uses slog.Default().
	Logger *slog.Logger
}

// reader parses one file format.
type reader interface {
	read(path string, opt Options) (*dataset.Dataset, error)
}

var readers = map[format.Format]reader{
	format.CSV:   csvReader{},
	format.Excel: excelReader{},
	format.JSON:  jsonReader{},
}

// Load reads path as kind (csv|excel|json|auto). Auto resolves the format
// from the file extension.
func Load(path, kind string, opt Options) (*dataset.Dataset, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, dataerr.NotFound("load", path, err)
	}
	if info.IsDir() {
		return nil, dataerr.NotFound("load", path, errors.New("path is a directory"))
	}
	f, err := format.Resolve(path, kind)
	if err != nil {
		return nil, err
	}
	r, ok := readers[f]
	if !ok {
		return nil, dataerr.UnsupportedFormat("load", string(f))
	}
	ds, err := r.read(path, opt)
	if err != nil {
		log.Error("load failed", slog.String("path", path), slog.String("format", string(f)), slog.Any("error", err))
		return nil, err
	}
	log.Info("dataset loaded",
		slog.String("path", path),
		slog.String("format", string(f)),
		slog.Int("rows", ds.Rows()),
		slog.Int("cols", ds.NumCols()))
	return ds, nil
}

func parseErr(path, msg string, args ...any) error {
	return dataerr.Parse("load", path, fmt.Errorf(msg, args...))
}
