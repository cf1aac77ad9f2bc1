package loader

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

type csvReader struct{}

func (csvReader) read(path string, opt Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dataerr.NotFound("load", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.New()
		}
		return nil, parseErr(path, "read header: %v", err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseErr(path, "read row %d: %v", len(rows)+1, err)
		}
		if len(rec) > len(header) {
			return nil, parseErr(path, "row %d has %d fields, header has %d", len(rows)+1, len(rec), len(header))
		}
		rows = append(rows, rec)
	}
	return buildTable(path, header, rows, opt)
}
