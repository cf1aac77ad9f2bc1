package format

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		path, kind string
		want       Format
	}{
		{"a.csv", "auto", CSV},
		{"a.CSV", "", CSV},
		{"book.xlsx", "auto", Excel},
		{"old.xls", "auto", Excel},
		{"rows.json", "auto", JSON},
		{"rows.txt", "csv", CSV},
		{"rows.csv", "JSON", JSON},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.path, tt.kind)
		if err != nil {
			t.Fatalf("Resolve(%q,%q): %v", tt.path, tt.kind, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q,%q) = %q, want %q", tt.path, tt.kind, got, tt.want)
		}
	}
}

func TestResolveUnsupported(t *testing.T) {
	for _, tt := range [][2]string{{"notes.txt", "auto"}, {"noext", ""}, {"a.csv", "parquet"}} {
		_, err := Resolve(tt[0], tt[1])
		if !errors.Is(err, dataerr.ErrUnsupportedFormat) {
			t.Errorf("Resolve(%q,%q) err = %v, want UnsupportedFormat", tt[0], tt[1], err)
		}
	}
}
