package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"billfeed/internal"
)

// DB is the optional run-audit store. It records per-run summary counts so
// operators can review past exports; the pipeline itself never reads it.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL UNIQUE,
  targetDate TEXT NOT NULL,
  dateMatches INTEGER NOT NULL,
  exported INTEGER NOT NULL,
  totalCents INTEGER NOT NULL,
  accuracy REAL NOT NULL,
  batchesJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_targetDate ON runs(targetDate);
`
	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(runID string, summary internal.BatchSummary) error {
	batchesJSON, _ := json.Marshal(summary.BatchNumbers)
	_, err := d.conn.Exec(`
INSERT INTO runs (runId, targetDate, dateMatches, exported, totalCents, accuracy, batchesJson)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, runID, summary.TargetDate, summary.DateMatchCount, summary.Count, summary.TotalCents, summary.AccuracyRate, string(batchesJSON))
	return err
}

type RunRecord struct {
	RunID       string
	TargetDate  string
	DateMatches int
	Exported    int
	TotalCents  int64
	Accuracy    float64
	Batches     []string
	CreatedAt   string
}

func (d *DB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT runId, targetDate, dateMatches, exported, totalCents, accuracy, batchesJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RunRecord, 0, limit)
	for rows.Next() {
		var rec RunRecord
		var batchesJSON string
		if err := rows.Scan(&rec.RunID, &rec.TargetDate, &rec.DateMatches, &rec.Exported, &rec.TotalCents, &rec.Accuracy, &batchesJSON, &rec.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(batchesJSON), &rec.Batches)
		out = append(out, rec)
	}
	return out, rows.Err()
}
