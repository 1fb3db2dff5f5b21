package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS bindings (
	run_id TEXT NOT NULL,
	id INTEGER NOT NULL,
	name TEXT NOT NULL,
	qname TEXT NOT NULL,
	kind TEXT NOT NULL,
	type TEXT NOT NULL,
	file TEXT,
	line INTEGER,
	col INTEGER,
	start_offset INTEGER,
	end_offset INTEGER,
	body_start INTEGER,
	body_end INTEGER,
	url TEXT,
	builtin INTEGER NOT NULL,
	refs INTEGER NOT NULL,
	PRIMARY KEY (run_id, id)
);
CREATE TABLE IF NOT EXISTS refs (
	run_id TEXT NOT NULL,
	id INTEGER NOT NULL,
	name TEXT,
	file TEXT,
	line INTEGER,
	col INTEGER,
	start_offset INTEGER,
	end_offset INTEGER,
	PRIMARY KEY (run_id, id)
);
CREATE TABLE IF NOT EXISTS ref_targets (
	run_id TEXT NOT NULL,
	ref_id INTEGER NOT NULL,
	binding_id INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS diagnostics (
	run_id TEXT NOT NULL,
	code TEXT NOT NULL,
	severity TEXT NOT NULL,
	file TEXT,
	line INTEGER,
	col INTEGER,
	message TEXT NOT NULL
);
`

// WriteSQLite stores snap in the database at path. Each run is keyed by
// its run ID, so one database can hold several runs.
func WriteSQLite(path string, snap *Snapshot) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()
	return writeDB(context.Background(), db, snap)
}

func writeDB(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, created) VALUES (?, ?)`,
		snap.RunID, snap.Created.Format("2006-01-02T15:04:05Z07:00")); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	for _, b := range snap.Bindings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bindings (run_id, id, name, qname, kind, type, file, line, col, start_offset, end_offset, body_start, body_end, url, builtin, refs)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.RunID, b.ID, b.Name, b.QName, b.Kind, b.Type, b.Span.File, b.Span.Line, b.Span.Col,
			b.Span.Start, b.Span.End, b.Body.Start, b.Body.End, b.URL, b.Builtin, b.Refs); err != nil {
			return fmt.Errorf("inserting binding %s: %w", b.QName, err)
		}
	}
	for i, r := range snap.References {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO refs (run_id, id, name, file, line, col, start_offset, end_offset) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.RunID, i, r.Name, r.Span.File, r.Span.Line, r.Span.Col, r.Span.Start, r.Span.End); err != nil {
			return fmt.Errorf("inserting reference: %w", err)
		}
		for _, target := range r.Targets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO ref_targets (run_id, ref_id, binding_id) VALUES (?, ?, ?)`,
				snap.RunID, i, target); err != nil {
				return fmt.Errorf("inserting reference target: %w", err)
			}
		}
	}
	for _, d := range snap.Diagnostics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO diagnostics (run_id, code, severity, file, line, col, message) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			snap.RunID, d.Code, d.Severity, d.Span.File, d.Span.Line, d.Span.Col, d.Message); err != nil {
			return fmt.Errorf("inserting diagnostic: %w", err)
		}
	}
	return tx.Commit()
}
