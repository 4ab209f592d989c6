// Package store persists built graphs to SQLite so later commands can
// sample or inspect a run without re-parsing the input.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
)

// RunInfo summarizes one stored run.
type RunInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	InputPath string    `json:"input_path"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
}

// RunStore is the SQLite-backed run archive.
type RunStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// Open opens or creates the run database at the given path.
func Open(dbPath string) (*RunStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Monotonic entropy keeps run ids sortable even within the same
	// millisecond.
	s := &RunStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *RunStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		input_path  TEXT NOT NULL,
		config      TEXT NOT NULL,
		node_count  INTEGER NOT NULL,
		edge_count  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS nodes (
		run_id  TEXT NOT NULL REFERENCES runs(id),
		id      TEXT NOT NULL,
		kind    TEXT NOT NULL,
		label   TEXT NOT NULL,
		attrs   TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(run_id, kind);

	CREATE TABLE IF NOT EXISTS edges (
		run_id             TEXT NOT NULL REFERENCES runs(id),
		seq                INTEGER NOT NULL,
		source             TEXT NOT NULL,
		target             TEXT NOT NULL,
		rel                TEXT NOT NULL,
		bucket             TEXT,
		mapping_similarity REAL,
		weight             REAL,
		thinking           TEXT,
		PRIMARY KEY (run_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(run_id, source);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a built graph and returns its run id.
func (s *RunStore) SaveRun(ctx context.Context, cfg *config.Config, g *model.Graph) (string, error) {
	id := s.newID()
	now := time.Now().UTC().Format(time.RFC3339)

	cfgJSON, err := json.Marshal(cfg.Summarize())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, input_path, config, node_count, edge_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, now, cfg.InputPath, string(cfgJSON), len(g.Nodes), len(g.Edges))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (run_id, id, kind, label, attrs) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer nodeStmt.Close()

	for _, nodeID := range g.NodeIDs() {
		n := g.Nodes[nodeID]
		attrs, err := json.Marshal(n)
		if err != nil {
			return "", fmt.Errorf("marshal node %s: %w", nodeID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, id, n.ID, n.Kind, n.Label, string(attrs)); err != nil {
			return "", fmt.Errorf("insert node %s: %w", nodeID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (run_id, seq, source, target, rel, bucket, mapping_similarity, weight, thinking)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer edgeStmt.Close()

	for i, e := range g.Edges {
		_, err := edgeStmt.ExecContext(ctx, id, i,
			e.Source, e.Target, e.Rel, e.Bucket, e.MappingSimilarity, e.Weight, e.Thinking)
		if err != nil {
			return "", fmt.Errorf("insert edge %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// LoadGraph reconstructs a stored graph.
func (s *RunStore) LoadGraph(ctx context.Context, runID string) (*model.Graph, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	g := model.NewGraph()

	rows, err := s.db.QueryContext(ctx, `SELECT attrs FROM nodes WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var attrs string
		if err := rows.Scan(&attrs); err != nil {
			return nil, err
		}
		var n model.Node
		if err := json.Unmarshal([]byte(attrs), &n); err != nil {
			return nil, fmt.Errorf("unmarshal node: %w", err)
		}
		g.AddNode(&n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	erows, err := s.db.QueryContext(ctx,
		`SELECT source, target, rel, bucket, mapping_similarity, weight, thinking
		 FROM edges WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer erows.Close()

	for erows.Next() {
		var e model.Edge
		var bucket, thinking sql.NullString
		var sim, weight sql.NullFloat64
		if err := erows.Scan(&e.Source, &e.Target, &e.Rel, &bucket, &sim, &weight, &thinking); err != nil {
			return nil, err
		}
		e.Bucket = bucket.String
		e.MappingSimilarity = sim.Float64
		e.Weight = weight.Float64
		e.Thinking = thinking.String
		g.AddEdge(e)
	}
	if err := erows.Err(); err != nil {
		return nil, err
	}

	return g, nil
}

// LatestRunID returns the most recently created run id.
func (s *RunStore) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no runs stored")
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns stored runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, input_path, node_count, edge_count
		 FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var created string
		if err := rows.Scan(&r.ID, &created, &r.InputPath, &r.NodeCount, &r.EdgeCount); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
