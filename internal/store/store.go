package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB is the local journal: synced events, performed actions and sync cursors.
type DB struct{ sql *sql.DB }

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection, otherwise every pooled connection to :memory: is a new database
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA busy_timeout=5000;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS events (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  type TEXT NOT NULL,
	  ref TEXT NOT NULL,
	  payload TEXT,
	  UNIQUE(type, ref)
	);
	CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
	CREATE TABLE IF NOT EXISTS actions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  kind TEXT NOT NULL,
	  target TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts);
	CREATE TABLE IF NOT EXISTS cursors (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL,
	  updated_at INTEGER NOT NULL
	);
	`)
	return err
}

// Event is a stored sync event, such as a status seen on the home timeline.
type Event struct {
	TS      time.Time
	Type    string
	Ref     string
	Payload string
}

// PutEvent stores an event once per (typ, ref). It reports whether a new row
// was written.
func (d *DB) PutEvent(ctx context.Context, ts time.Time, typ, ref string, payload any) (bool, error) {
	pb, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	res, err := d.sql.ExecContext(ctx, `INSERT OR IGNORE INTO events(ts, type, ref, payload) VALUES(?,?,?,?)`, ts.Unix(), typ, ref, string(pb))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LoadEventsRange returns events in [start, end); an empty typ matches all.
func (d *DB) LoadEventsRange(ctx context.Context, start, end time.Time, typ string) ([]Event, error) {
	q := `SELECT ts, type, ref, payload FROM events WHERE ts>=? AND ts<?`
	args := []any{start.Unix(), end.Unix()}
	if typ != "" {
		q += ` AND type=?`
		args = append(args, typ)
	}
	rows, err := d.sql.QueryContext(ctx, q+` ORDER BY ts, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var ts int64
		var e Event
		var payload sql.NullString
		if err := rows.Scan(&ts, &e.Type, &e.Ref, &payload); err != nil {
			return nil, err
		}
		e.TS = time.Unix(ts, 0).UTC()
		e.Payload = payload.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Action is one mutating call made on the user's behalf.
type Action struct {
	TS     time.Time
	Kind   string
	Target string
}

func (d *DB) PutAction(ctx context.Context, ts time.Time, kind, target string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO actions(ts, kind, target) VALUES(?,?,?)`, ts.Unix(), kind, target)
	return err
}

// CountActionsWithin counts actions in [start, end); an empty kind matches all.
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, kind string) (int, error) {
	q := `SELECT COUNT(*) FROM actions WHERE ts>=? AND ts<?`
	args := []any{start.Unix(), end.Unix()}
	if kind != "" {
		q += ` AND kind=?`
		args = append(args, kind)
	}
	var n int
	if err := d.sql.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ActionsRange returns actions in [start, end), oldest first.
func (d *DB) ActionsRange(ctx context.Context, start, end time.Time) ([]Action, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT ts, kind, COALESCE(target, '') FROM actions WHERE ts>=? AND ts<? ORDER BY ts, id`, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

// RecentActions returns up to limit actions, newest first.
func (d *DB) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx, `SELECT ts, kind, COALESCE(target, '') FROM actions ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

func scanActions(rows *sql.Rows) ([]Action, error) {
	var out []Action
	for rows.Next() {
		var ts int64
		var a Action
		if err := rows.Scan(&ts, &a.Kind, &a.Target); err != nil {
			return nil, err
		}
		a.TS = time.Unix(ts, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *DB) SaveCursor(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO cursors(key, value, updated_at) VALUES(?,?,?)
	  ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`, key, value, time.Now().Unix())
	return err
}

// LoadCursor returns "" when no cursor was saved under key.
func (d *DB) LoadCursor(ctx context.Context, key string) (string, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM cursors WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}
