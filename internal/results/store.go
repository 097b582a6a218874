// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists evaluation runs in a SQLite database so
// experiments can be compared across checkpoints over time.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadgraph/pkg/types"
)

const dbFile = "runs.db"

// Store manages the evaluation runs SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the runs database under reportsDir, creating
// the schema if needed.
func Open(reportsDir string) (*Store, error) {
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}

	dbPath := filepath.Join(reportsDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started TEXT NOT NULL,
			config_path TEXT,
			model TEXT,
			dataset TEXT,
			checkpoint TEXT NOT NULL,
			checkpoint_sha256 TEXT NOT NULL,
			checkpoint_bytes INTEGER,
			regions INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			mean_ap REAL,
			mean_ar REAL,
			mean_edge_f1 REAL
		)`,
		`CREATE TABLE IF NOT EXISTS region_metrics (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			city TEXT NOT NULL,
			region_id INTEGER NOT NULL,
			ap REAL,
			ar REAL,
			edge_f1 REAL,
			component_delta INTEGER,
			length_ratio REAL,
			nodes_gt INTEGER,
			nodes_pred INTEGER,
			edges_gt INTEGER,
			edges_pred INTEGER,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_region_metrics_run_id ON region_metrics(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	ID               int64     `json:"id" yaml:"id"`
	Started          time.Time `json:"started" yaml:"started"`
	ConfigPath       string    `json:"config_path" yaml:"config_path"`
	Model            string    `json:"model" yaml:"model"`
	Dataset          string    `json:"dataset" yaml:"dataset"`
	Checkpoint       string    `json:"checkpoint" yaml:"checkpoint"`
	CheckpointSHA256 string    `json:"checkpoint_sha256" yaml:"checkpoint_sha256"`
	CheckpointBytes  int64     `json:"checkpoint_bytes" yaml:"checkpoint_bytes"`
	Regions          int       `json:"regions" yaml:"regions"`
	Failed           int       `json:"failed" yaml:"failed"`
	MeanAP           float64   `json:"mean_ap" yaml:"mean_ap"`
	MeanAR           float64   `json:"mean_ar" yaml:"mean_ar"`
	MeanEdgeF1       float64   `json:"mean_edge_f1" yaml:"mean_edge_f1"`
}

// Record stores a run and its per-region rows transactionally and
// returns the new run ID.
func (s *Store) Record(ctx context.Context, report types.RunReport) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started, config_path, model, dataset, checkpoint,
			checkpoint_sha256, checkpoint_bytes, regions, failed, mean_ap, mean_ar, mean_edge_f1)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Started.Format(time.RFC3339Nano), report.ConfigPath, report.Model,
		report.Dataset, report.Checkpoint, report.CheckpointSHA256, report.CheckpointBytes,
		report.Summary.Regions, report.Summary.Failed,
		report.Summary.MeanAP, report.Summary.MeanAR, report.Summary.MeanEdgeF1,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO region_metrics (run_id, city, region_id, ap, ar, edge_f1,
			component_delta, length_ratio, nodes_gt, nodes_pred, edges_gt, edges_pred, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range report.Rows {
		_, err := stmt.ExecContext(ctx, runID, row.City, row.RegionID,
			row.AP, row.AR, row.EdgeF1, row.ComponentDelta, row.LengthRatio,
			row.NodesGT, row.NodesPred, row.EdgesGT, row.EdgesPred, row.Error)
		if err != nil {
			return 0, fmt.Errorf("inserting region %s_region_%d: %w", row.City, row.RegionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, started, config_path, model, dataset, checkpoint,
		checkpoint_sha256, checkpoint_bytes, regions, failed, mean_ap, mean_ar, mean_edge_f1
		FROM runs ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Show returns one run and its per-region rows.
func (s *Store) Show(ctx context.Context, id int64) (RunRecord, []types.RegionMetrics, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started, config_path, model, dataset, checkpoint,
			checkpoint_sha256, checkpoint_bytes, regions, failed, mean_ap, mean_ar, mean_edge_f1
		 FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return RunRecord{}, nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return RunRecord{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT city, region_id, ap, ar, edge_f1, component_delta, length_ratio,
			nodes_gt, nodes_pred, edges_gt, edges_pred, error
		 FROM region_metrics WHERE run_id = ? ORDER BY city, region_id`, id)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("querying region metrics: %w", err)
	}
	defer rows.Close()

	var regionRows []types.RegionMetrics
	for rows.Next() {
		var m types.RegionMetrics
		err := rows.Scan(&m.City, &m.RegionID, &m.AP, &m.AR, &m.EdgeF1,
			&m.ComponentDelta, &m.LengthRatio,
			&m.NodesGT, &m.NodesPred, &m.EdgesGT, &m.EdgesPred, &m.Error)
		if err != nil {
			return RunRecord{}, nil, fmt.Errorf("scanning region metrics: %w", err)
		}
		regionRows = append(regionRows, m)
	}
	return rec, regionRows, rows.Err()
}

// export is the serialized form of the full store.
type export struct {
	Runs []exportRun `json:"runs" yaml:"runs"`
}

type exportRun struct {
	RunRecord `yaml:",inline"`
	Rows      []types.RegionMetrics `json:"rows" yaml:"rows"`
}

// ExportYAML writes all runs and their rows to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	e, err := s.exportAll(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes all runs and their rows to path as JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	e, err := s.exportAll(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportAll(ctx context.Context) (*export, error) {
	records, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	e := &export{Runs: make([]exportRun, 0, len(records))}
	for _, rec := range records {
		_, regionRows, err := s.Show(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		e.Runs = append(e.Runs, exportRun{RunRecord: rec, Rows: regionRows})
	}
	return e, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	var started string
	err := row.Scan(&rec.ID, &started, &rec.ConfigPath, &rec.Model, &rec.Dataset,
		&rec.Checkpoint, &rec.CheckpointSHA256, &rec.CheckpointBytes, &rec.Regions,
		&rec.Failed, &rec.MeanAP, &rec.MeanAR, &rec.MeanEdgeF1)
	if err != nil {
		return RunRecord{}, err
	}
	rec.Started, err = time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parsing run timestamp %q: %w", started, err)
	}
	return rec, nil
}
