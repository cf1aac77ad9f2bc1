// Package format resolves the file kinds understood by the loader and the
// persister.
package format

import (
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
)

// Format is a tabular file kind.
type Format string

const (
	Auto  Format = "auto"
	CSV   Format = "csv"
	Excel Format = "excel"
	JSON  Format = "json"
)

// Parse validates a kind name. An empty string means Auto.
func Parse(kind string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(kind))); f {
	case "":
		return Auto, nil
	case Auto, CSV, Excel, JSON:
		return f, nil
	case "xlsx", "xls":
		return Excel, nil
	default:
		return "", dataerr.UnsupportedFormat("resolve format", kind)
	}
}

// FromPath resolves a format from the file extension.
func FromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return CSV, nil
	case ".xlsx", ".xls":
		return Excel, nil
	case ".json":
		return JSON, nil
	default:
		if ext == "" {
			ext = filepath.Base(path)
		}
		return "", dataerr.UnsupportedFormat("resolve format", ext)
	}
}

// Resolve parses kind and, for Auto, falls back to the path's extension.
func Resolve(path, kind string) (Format, error) {
	f, err := Parse(kind)
	if err != nil {
		return "", err
	}
	if f == Auto {
		return FromPath(path)
	}
	return f, nil
}

// Ext returns the canonical extension for a format.
func (f Format) Ext() string {
	switch f {
	case Excel:
		return ".xlsx"
	case JSON:
		return ".json"
	default:
		return ".csv"
	}
}
