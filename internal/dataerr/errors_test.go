package dataerr

import (
	"errors"
	"io/fs"
	"testing"
)

func TestErrorIsKindAndCause(t *testing.T) {
	err := NotFound("load", "data.csv", fs.ErrNotExist)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if errors.Is(err, ErrParseError) {
		t.Fatalf("unexpected kind match")
	}
	if got := KindOf(err); got != ErrNotFound {
		t.Fatalf("KindOf = %v", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := Transform("normalize", "price", errors.New("column is not numeric"))
	want := "normalize price: invalid transform: column is not numeric"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
	if got := UnsupportedFormat("load", ".txt").Error(); got != "load .txt: unsupported format" {
		t.Fatalf("got %q", got)
	}
	if KindOf(errors.New("plain")) != nil {
		t.Fatalf("plain error should have no kind")
	}
}
