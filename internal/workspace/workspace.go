// Package workspace scaffolds a dataloom project directory and keeps a
// manifest of pipeline runs executed inside it.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// Layout lists the directories created by Scaffold, relative to the root.
var Layout = []string{
	"logs",
	filepath.Join("data", "input"),
	filepath.Join("data", "output"),
	filepath.Join("docs", "images"),
	"temp",
}

// Workspace is a dataloom project persisted as dataloom.json.
type Workspace struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Runs        []*Run    `json:"runs"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Not serialized: directory holding dataloom.json
	rootDir string `json:"-"`
}

// Run records one pipeline execution.
type Run struct {
	ID             string    `json:"id"`
	Input          string    `json:"input"`
	InputChecksum  string    `json:"input_checksum"`
	Output         string    `json:"output,omitempty"`
	OutputChecksum string    `json:"output_checksum,omitempty"`
	Report         string    `json:"report,omitempty"`
	Plan           []string  `json:"plan,omitempty"`
	RowsIn         int       `json:"rows_in"`
	RowsOut        int       `json:"rows_out"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// New constructs an in-memory workspace. Call Save to persist.
func New(name, description, rootDir string) *Workspace {
	now := time.Now()
	return &Workspace{
		Name:        name,
		Description: description,
		Runs:        []*Run{},
		CreatedAt:   now,
		UpdatedAt:   now,
		rootDir:     rootDir,
	}
}

// Scaffold creates the directory layout under dir and writes a manifest if
// none exists yet. An existing manifest is loaded and left untouched.
func Scaffold(dir, name string) (*Workspace, error) {
	for _, sub := range Layout {
		if err := utils.EnsureDir(filepath.Join(dir, sub)); err != nil {
			return nil, fmt.Errorf("create %s: %w", sub, err)
		}
	}
	if w, err := Load(dir); err == nil {
		return w, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		name = filepath.Base(abs)
	}
	w := New(name, "", dir)
	if err := w.Save(); err != nil {
		return nil, err
	}
	return w, nil
}

// Load reads dataloom.json from dir.
func Load(dir string) (*Workspace, error) {
	path := filepath.Join(dir, utils.ManifestFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workspace not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	var w Workspace
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("parse workspace: %w", err)
	}
	w.rootDir = dir
	return &w, nil
}

// RootDir returns the on-disk workspace directory.
func (w *Workspace) RootDir() string { return w.rootDir }

// Path joins rel onto the workspace root.
func (w *Workspace) Path(rel ...string) string {
	return filepath.Join(append([]string{w.rootDir}, rel...)...)
}

// Save writes dataloom.json using an atomic write.
func (w *Workspace) Save() error {
	if w.rootDir == "" {
		return errors.New("workspace root directory not set")
	}
	w.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(w)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(w.rootDir, utils.ManifestFile), data)
}

// RecordRun assigns the run an id, checksums its input and output files and
// appends it to the manifest. The manifest is not saved.
func (w *Workspace) RecordRun(r Run) (*Run, error) {
	r.ID = uuid.NewString()
	sum, err := utils.FileChecksum(r.Input)
	if err != nil {
		return nil, fmt.Errorf("checksum input: %w", err)
	}
	r.InputChecksum = sum
	if r.Output != "" {
		if r.OutputChecksum, err = utils.FileChecksum(r.Output); err != nil {
			return nil, fmt.Errorf("checksum output: %w", err)
		}
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	w.Runs = append(w.Runs, &r)
	return &r, nil
}

// LastRun returns the most recent run, or nil.
func (w *Workspace) LastRun() *Run {
	if len(w.Runs) == 0 {
		return nil
	}
	return w.Runs[len(w.Runs)-1]
}

// FindRunsByInput returns runs whose input had the given checksum, oldest
// first.
func (w *Workspace) FindRunsByInput(checksum string) []*Run {
	var out []*Run
	for _, r := range w.Runs {
		if r.InputChecksum == checksum {
			out = append(out, r)
		}
	}
	return out
}
