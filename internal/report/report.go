// Package report writes a YAML record of one search run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/harrison/stemfind/internal/traversal"
)

// Report describes a finished search.
type Report struct {
	RunID      string             `yaml:"run_id"`
	Root       string             `yaml:"root"`
	Term       string             `yaml:"term"`
	Mode       string             `yaml:"mode"`
	Workers    int                `yaml:"workers,omitempty"`
	StartedAt  time.Time          `yaml:"started_at"`
	DurationMS int64              `yaml:"duration_ms"`
	Stats      traversal.Snapshot `yaml:"stats"`
	// Error is set when the search itself failed
	Error string `yaml:"error,omitempty"`
}

// Run identifies one invocation.
type Run struct {
	ID        string
	Root      string
	Term      string
	Mode      string
	Workers   int
	StartedAt time.Time
}

// Build assembles the report for a finished run. searchErr may be nil.
func Build(run Run, snap traversal.Snapshot, d time.Duration, searchErr error) *Report {
	r := &Report{
		RunID:      run.ID,
		Root:       run.Root,
		Term:       run.Term,
		Mode:       run.Mode,
		Workers:    run.Workers,
		StartedAt:  run.StartedAt.UTC(),
		DurationMS: d.Milliseconds(),
		Stats:      snap,
	}
	if searchErr != nil {
		r.Error = searchErr.Error()
	}
	return r
}

// Write marshals r and replaces path atomically. The write holds an exclusive
// lock on path+".lock" so concurrent runs targeting the same report never
// interleave.
func Write(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	return atomicWrite(path, data)
}

// atomicWrite writes data to a temp file in the target directory and renames
// it over path, so readers never observe a partial report.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	committed = true
	return nil
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}
