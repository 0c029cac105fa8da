package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"triad/internal/core"
	"triad/internal/store/flatfile"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the sqlite-backed decision log. Besides the
// store ports it tracks per-row mirror state so the worker can sweep
// rows whose mirror message was lost.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements store.DecisionWriter.
func (r *SQLiteRepository) Append(ctx context.Context, d core.Decision) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	at := r.now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO decisions (label, category, wealth, health, self, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Label, string(d.Category), int(d.Wealth), int(d.Health), int(d.Self),
		at.Format(flatfile.TimeLayout))
	if err != nil {
		return "", fmt.Errorf("insert decision: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Decision saved to SQLite",
		"id", id,
		"label", d.Label,
		"category", string(d.Category))

	return strconv.FormatInt(id, 10), nil
}

// ListDecisions implements store.DecisionLister.
func (r *SQLiteRepository) ListDecisions(ctx context.Context) ([]core.Decision, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT label, category, wealth, health, self, logged_at
		 FROM decisions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select decisions: %w", err)
	}
	defer rows.Close()

	out := []core.Decision{}
	for rows.Next() {
		var (
			d        core.Decision
			category string
			w, h, s  int
			loggedAt string
		)
		if err := rows.Scan(&d.Label, &category, &w, &h, &s, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Category = core.Uncategorized
		if category != "" {
			d.Category = core.Category(category)
		}
		d.Wealth, d.Health, d.Self = core.Score(w), core.Score(h), core.Score(s)
		d.LoggedAt = flatfile.ParseLogTime(loggedAt)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return out, nil
}

// PendingMirrorDecision is one row awaiting the sheets mirror.
type PendingMirrorDecision struct {
	ID       int64
	Decision core.Decision
}

// GetPendingMirror returns up to limit rows not yet mirrored, oldest first.
func (r *SQLiteRepository) GetPendingMirror(ctx context.Context, limit int) ([]PendingMirrorDecision, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, category, wealth, health, self, logged_at
		 FROM decisions WHERE mirror_state = 'pending' ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending mirror: %w", err)
	}
	defer rows.Close()

	var out []PendingMirrorDecision
	for rows.Next() {
		var (
			p        PendingMirrorDecision
			category string
			w, h, s  int
			loggedAt string
		)
		if err := rows.Scan(&p.ID, &p.Decision.Label, &category, &w, &h, &s, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan pending row: %w", err)
		}
		p.Decision.Category = core.Category(category)
		p.Decision.Wealth, p.Decision.Health, p.Decision.Self = core.Score(w), core.Score(h), core.Score(s)
		p.Decision.LoggedAt = flatfile.ParseLogTime(loggedAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending rows: %w", err)
	}
	return out, nil
}

// MarkMirrored marks a decision as successfully mirrored.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE decisions SET mirror_state = 'done' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark mirrored: %w", err)
	}
	slog.InfoContext(ctx, "Decision marked as mirrored", "id", id)
	return nil
}

// MarkMirrorError records a failed mirror attempt; the row stays
// pending so the sweep retries it.
func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE decisions SET mirror_attempts = mirror_attempts + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark mirror error: %w", err)
	}
	slog.WarnContext(ctx, "Decision mirror attempt failed", "id", id)
	return nil
}
