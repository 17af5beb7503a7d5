// Package manifest keeps an optional SQLite catalog of generator runs:
// input digests and output counts per run, so reproducibility claims
// ("same inputs, same artifacts") can be audited after the fact.
package manifest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded generator invocation.
type Run struct {
	ID                 string
	StartedAt          time.Time
	InputDigests       map[string]string // path -> sha256
	CostRows           int
	CostViolations     int
	IncidentRows       int
	IncidentViolations int
	SHACLFailures      int
	ArtifactRows       map[string]int // artifact file -> row count
}

// Store wraps the catalog database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                  TEXT PRIMARY KEY,
	started_at          TEXT NOT NULL,
	input_digests       TEXT NOT NULL,
	cost_rows           INTEGER NOT NULL,
	cost_violations     INTEGER NOT NULL,
	incident_rows       INTEGER NOT NULL,
	incident_violations INTEGER NOT NULL,
	shacl_failures      INTEGER NOT NULL,
	artifact_rows       TEXT NOT NULL
);`

// Open creates or opens the catalog at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate manifest db: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts one run.
func (s *Store) Record(ctx context.Context, run Run) error {
	digests, err := json.Marshal(run.InputDigests)
	if err != nil {
		return fmt.Errorf("encode input digests: %w", err)
	}
	artifacts, err := json.Marshal(run.ArtifactRows)
	if err != nil {
		return fmt.Errorf("encode artifact rows: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, input_digests, cost_rows, cost_violations,
			incident_rows, incident_violations, shacl_failures, artifact_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		string(digests),
		run.CostRows,
		run.CostViolations,
		run.IncidentRows,
		run.IncidentViolations,
		run.SHACLFailures,
		string(artifacts),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DigestInputs hashes every input file so a later run can prove it saw
// identical inputs.
func DigestInputs(paths []string) (map[string]string, error) {
	digests := make(map[string]string, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("digest %s: %w", path, err)
		}
		h := sha256.New()
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("digest %s: %w", path, err)
		}
		digests[path] = hex.EncodeToString(h.Sum(nil))
	}
	return digests, nil
}
