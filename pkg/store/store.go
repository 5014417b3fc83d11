// CLAUDE:SUMMARY SQL sink for cleaning runs: run summaries and admitted rows, on SQLite (modernc) or PostgreSQL (lib/pq).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/datadose/pkg/pipeline"
	"github.com/hazyhaar/datadose/pkg/rules"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Run is a row of the runs table.
type Run struct {
	RunID           string         `json:"run_id"`
	Source          string         `json:"source"`
	LexiconID       string         `json:"lexicon_id"`
	LexiconVersion  string         `json:"lexicon_version"`
	Started         time.Time      `json:"started"`
	Finished        time.Time      `json:"finished"`
	Processed       int            `json:"processed"`
	Admitted        int            `json:"admitted"`
	Dropped         int            `json:"dropped"`
	DroppedByFlag   map[string]int `json:"dropped_by_flag"`
	MeanIngredients float64        `json:"mean_ingredients"`
}

// Store persists cleaning runs.
type Store struct {
	db     *sql.DB
	driver string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id           TEXT PRIMARY KEY,
		source           TEXT NOT NULL DEFAULT '',
		lexicon_id       TEXT NOT NULL,
		lexicon_version  TEXT NOT NULL DEFAULT '',
		started_at       BIGINT NOT NULL,
		finished_at      BIGINT NOT NULL,
		processed        INTEGER NOT NULL,
		admitted         INTEGER NOT NULL,
		dropped          INTEGER NOT NULL,
		dropped_by_flag  TEXT NOT NULL DEFAULT '{}',
		mean_ingredients DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS normalized_rows (
		run_id                TEXT NOT NULL,
		row_index             INTEGER NOT NULL,
		graph_node_ingredient TEXT NOT NULL,
		ingredient_count      INTEGER NOT NULL,
		is_combination        BOOLEAN NOT NULL,
		combo_type            TEXT NOT NULL,
		fields                TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (run_id, row_index)
	)`,
}

// Open connects to driver ("sqlite" or "postgres") and ensures the tables exist.
// A bare SQLite path gets WAL and a busy timeout.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	for _, ddl := range schema {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db, driver: driver}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func rebind(driver, q string) string {
	if driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (s *Store) q(query string) string { return rebind(s.driver, query) }

// SaveRun records a run summary. Saving the same run twice keeps the first copy.
func (s *Store) SaveRun(ctx context.Context, st *pipeline.Stats, source string) error {
	byFlag, err := json.Marshal(st.DroppedByFlag)
	if err != nil {
		return fmt.Errorf("encode dropped_by_flag: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO runs
		(run_id, source, lexicon_id, lexicon_version, started_at, finished_at,
		 processed, admitted, dropped, dropped_by_flag, mean_ingredients)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO NOTHING`),
		st.RunID, source, st.LexiconID, st.LexiconVersion,
		st.Started.UnixMilli(), st.Finished.UnixMilli(),
		st.Processed, st.Admitted, st.Dropped, string(byFlag), st.MeanIngredients,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", st.RunID, err)
	}
	return nil
}

// SaveRows stores the admitted rows of a run in one transaction.
func (s *Store) SaveRows(ctx context.Context, runID string, rows []pipeline.Normalized) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(`INSERT INTO normalized_rows
		(run_id, row_index, graph_node_ingredient, ingredient_count, is_combination, combo_type, fields)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, row_index) DO NOTHING`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		fields := []byte("{}")
		if len(r.Fields) > 0 {
			if fields, err = json.Marshal(r.Fields); err != nil {
				return fmt.Errorf("encode fields of row %d: %w", i, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, runID, i, r.GraphNodeIngredient, r.IngredientCount,
			r.IsCombination, string(r.ComboType), string(fields)); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs first. limit <= 0 returns all of them.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT run_id, source, lexicon_id, lexicon_version, started_at, finished_at,
		processed, admitted, dropped, dropped_by_flag, mean_ingredients
		FROM runs ORDER BY started_at DESC, run_id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
			byFlag            string
		)
		if err := rows.Scan(&r.RunID, &r.Source, &r.LexiconID, &r.LexiconVersion, &started, &finished,
			&r.Processed, &r.Admitted, &r.Dropped, &byFlag, &r.MeanIngredients); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Started = time.UnixMilli(started).UTC()
		r.Finished = time.UnixMilli(finished).UTC()
		if err := json.Unmarshal([]byte(byFlag), &r.DroppedByFlag); err != nil {
			return nil, fmt.Errorf("decode dropped_by_flag of %s: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Rows returns the stored rows of a run in input order.
func (s *Store) Rows(ctx context.Context, runID string) ([]pipeline.Normalized, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT graph_node_ingredient, ingredient_count,
		is_combination, combo_type, fields
		FROM normalized_rows WHERE run_id = ? ORDER BY row_index`), runID)
	if err != nil {
		return nil, fmt.Errorf("rows of %s: %w", runID, err)
	}
	defer rows.Close()

	var out []pipeline.Normalized
	for rows.Next() {
		var (
			n          pipeline.Normalized
			combo      string
			fieldsJSON string
		)
		if err := rows.Scan(&n.GraphNodeIngredient, &n.IngredientCount, &n.IsCombination, &combo, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		n.ComboType = rules.ComboType(combo)
		if err := json.Unmarshal([]byte(fieldsJSON), &n.Fields); err != nil {
			return nil, fmt.Errorf("decode fields: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
