package loader

import (
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

type excelReader struct{}

func (excelReader) read(path string, opt Options) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, parseErr(path, "open workbook: %v", err)
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, parseErr(path, "workbook has no sheets")
		}
		sheet = sheets[0]
	}
	// Raw values keep full float precision instead of the display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, parseErr(path, "read sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return dataset.New()
	}
	header := rows[0]
	body := rows[1:]
	for i, row := range body {
		if len(row) > len(header) {
			// Cells right of the header are only an error when they hold data.
			for _, v := range row[len(header):] {
				if v != "" {
					return nil, parseErr(path, "row %d has data beyond the header's %d columns", i+1, len(header))
				}
			}
		}
	}
	return buildTable(path, header, body, opt)
}
