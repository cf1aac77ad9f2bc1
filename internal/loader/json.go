package loader

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cast"
	"golang.org/x/text/unicode/norm"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
)

type jsonReader struct{}

// record keeps one object's values; keys are resolved against the global
// first-seen order afterwards.
type record map[string]any

func (jsonReader) read(path string, opt Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dataerr.NotFound("load", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, parseErr(path, "top level: %v", err)
	}
	var (
		keys    []string
		seen    = map[string]bool{}
		records []record
	)
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, parseErr(path, "element %d: %v", len(records), err)
		}
		rec := record{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, parseErr(path, "element %d: %v", len(records), err)
			}
			key := norm.NFC.String(tok.(string))
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, parseErr(path, "element %d key %q: %v", len(records), key, err)
			}
			switch v.(type) {
			case map[string]any, []any:
				return nil, parseErr(path, "element %d key %q: nested values are not supported", len(records), key)
			}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
			rec[key] = v
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, parseErr(path, "element %d: %v", len(records), err)
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, parseErr(path, "top level: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, parseErr(path, "unexpected data after the top-level array")
	}

	cols := make([]*dataset.Column, len(keys))
	for j, key := range keys {
		vals := make([]any, len(records))
		for i, rec := range records {
			vals[i] = rec[key]
		}
		k, declared := opt.Kinds[key]
		c, err := jsonColumn(key, vals, k, declared)
		if err != nil {
			return nil, parseErr(path, "%v", err)
		}
		cols[j] = c
	}
	return dataset.NewWithRows(len(records), cols...)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %v, got %v", want, tok)
	}
	return nil
}

// jsonColumn types a column of decoded scalars. All numbers make a numeric
// column, all strings a categorical or text one; anything else is stringified.
func jsonColumn(name string, vals []any, declared dataset.Kind, hasDeclared bool) (*dataset.Column, error) {
	n := len(vals)
	valid := make([]bool, n)
	allNum, allStr := true, true
	for i, v := range vals {
		if v == nil {
			continue
		}
		valid[i] = true
		switch v.(type) {
		case json.Number:
			allStr = false
		case string:
			allNum = false
		default:
			allNum, allStr = false, false
		}
	}

	if (hasDeclared && declared == dataset.Numeric) || (!hasDeclared && allNum) {
		nums := make([]float64, n)
		for i, v := range vals {
			if !valid[i] {
				continue
			}
			f, err := cast.ToFloat64E(v)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", name, i+1, err)
			}
			nums[i] = f
		}
		return dataset.NewNumeric(name, nums, valid), nil
	}

	strs := make([]string, n)
	for i, v := range vals {
		if valid[i] {
			strs[i] = norm.NFC.String(cast.ToString(v))
		}
	}
	switch {
	case hasDeclared:
		return dataset.NewStrings(name, declared, strs, valid), nil
	case allStr:
		return dataset.NewStrings(name, stringKind(strs, valid), strs, valid), nil
	default:
		return dataset.NewStrings(name, dataset.Categorical, strs, valid), nil
	}
}
