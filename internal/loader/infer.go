package loader

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

// maxCategoryLen is the longest value still treated as a category token.
const maxCategoryLen = 64

var missingMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {},
}

func isMissing(s string) bool {
	_, ok := missingMarkers[strings.TrimSpace(s)]
	return ok
}

// normalizeHeader names blank headers "Unnamed: <i>" and suffixes repeated
// names with ".1", ".2", ...
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	for i, h := range header {
		name := norm.NFC.String(strings.TrimSpace(h))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for used[name] {
				suffix[base]++
				name = fmt.Sprintf("%s.%d", base, suffix[base])
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// stringKind picks categorical or text for string values.
func stringKind(vals []string, valid []bool) dataset.Kind {
	for i, v := range vals {
		if !valid[i] {
			continue
		}
		if len(v) > maxCategoryLen || strings.ContainsAny(v, "\r\n") {
			return dataset.Text
		}
	}
	return dataset.Categorical
}

// buildColumn turns raw text cells into a typed column. A column whose every
// present cell parses as a float is numeric unless a kind is declared.
func buildColumn(name string, raw []string, declared dataset.Kind, hasDeclared bool) (*dataset.Column, error) {
	valid := make([]bool, len(raw))
	vals := make([]string, len(raw))
	for i, s := range raw {
		if isMissing(s) {
			continue
		}
		valid[i] = true
		vals[i] = norm.NFC.String(s)
	}

	nums := make([]float64, len(raw))
	numeric := true
	for i, s := range vals {
		if !valid[i] {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			if hasDeclared && declared == dataset.Numeric {
				return nil, fmt.Errorf("column %q row %d: %q is not numeric", name, i+1, s)
			}
			numeric = false
			break
		}
		nums[i] = f
	}

	switch {
	case hasDeclared && declared == dataset.Numeric:
		return dataset.NewNumeric(name, nums, valid), nil
	case hasDeclared:
		return dataset.NewStrings(name, declared, vals, valid), nil
	case numeric:
		return dataset.NewNumeric(name, nums, valid), nil
	default:
		return dataset.NewStrings(name, stringKind(vals, valid), vals, valid), nil
	}
}

// buildTable converts a header and row-major text cells into a dataset.
func buildTable(path string, header []string, rows [][]string, opt Options) (*dataset.Dataset, error) {
	names := normalizeHeader(header)
	cols := make([]*dataset.Column, len(names))
	cells := make([]string, len(rows))
	for j, name := range names {
		for i, row := range rows {
			if j < len(row) {
				cells[i] = row[j]
			} else {
				cells[i] = ""
			}
		}
		k, ok := opt.Kinds[name]
		c, err := buildColumn(name, cells, k, ok)
		if err != nil {
			return nil, parseErr(path, "%v", err)
		}
		cols[j] = c
	}
	ds, err := dataset.New(cols...)
	if err != nil {
		return nil, parseErr(path, "%v", err)
	}
	return ds, nil
}
