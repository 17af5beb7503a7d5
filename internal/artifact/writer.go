// Package artifact emits the five output tables. Emission is the only
// writing the generator does, and it is deterministic: fixed headers,
// fixed row order, fixed numeric formats, LF line endings. Files are
// written to a temp path in the target directory and renamed into place
// so a failed run never leaves a half-written artifact for the
// downstream gate to misread.
package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Table is one output artifact.
type Table struct {
	Name   string // file name, e.g. cq_results.csv
	Header []string
	Rows   [][]string
}

// Write places the table at dir/<name> atomically.
func Write(dir string, t Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+t.Name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s header: %w", t.Name, err)
	}
	for _, row := range t.Rows {
		if len(row) != len(t.Header) {
			tmp.Close()
			return fmt.Errorf("artifact %s: row has %d fields, header has %d", t.Name, len(row), len(t.Header))
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write %s row: %w", t.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", t.Name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.Name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, t.Name)); err != nil {
		return fmt.Errorf("publish %s: %w", t.Name, err)
	}
	return nil
}
