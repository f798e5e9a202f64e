// Package storage keeps the ledger in SQLite. Entries are stored as their
// canonical lines so a total rebuild parses the same grammar as the flat
// file backend. Every write runs in a single transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; the ledger already serialises its mutations.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Load(ctx context.Context) (ledger.State, error) {
	var st ledger.State

	rows, err := r.db.QueryContext(ctx, `SELECT line FROM entries ORDER BY position`)
	if err != nil {
		return st, fmt.Errorf("query entries: %w", err)
	}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			rows.Close()
			return st, fmt.Errorf("scan entry: %w", err)
		}
		st.Entries = append(st.Entries, core.ParseEntryLine(line))
	}
	if err := rows.Close(); err != nil {
		return st, fmt.Errorf("close entries: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return st, fmt.Errorf("query categories: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return st, fmt.Errorf("scan category: %w", err)
		}
		st.Categories = append(st.Categories, name)
	}
	if err := rows.Close(); err != nil {
		return st, fmt.Errorf("close categories: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT total_cents FROM ledger_total WHERE id = 1`).Scan(&st.Total.Cents); err != nil {
		return st, fmt.Errorf("get total: %w", err)
	}

	return st, nil
}

func (r *SQLiteRepository) AppendEntry(ctx context.Context, e core.Entry, total core.Money) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entries (position, line) VALUES ((SELECT COALESCE(MAX(position), 0) + 1 FROM entries), ?)`,
			e.Line()); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return setTotal(ctx, tx, total)
	})
}

func (r *SQLiteRepository) ReplaceEntries(ctx context.Context, entries []core.Entry, total core.Money) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
			return fmt.Errorf("clear entries: %w", err)
		}
		for i, e := range entries {
			if _, err := tx.ExecContext(ctx, `INSERT INTO entries (position, line) VALUES (?, ?)`, i+1, e.Line()); err != nil {
				return fmt.Errorf("insert entry %d: %w", i+1, err)
			}
		}
		return setTotal(ctx, tx, total)
	})
}

func (r *SQLiteRepository) SaveCategories(ctx context.Context, categories []string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		for i, name := range categories {
			if _, err := tx.ExecContext(ctx, `INSERT INTO categories (position, name) VALUES (?, ?)`, i+1, name); err != nil {
				return fmt.Errorf("insert category %q: %w", name, err)
			}
		}
		return nil
	})
}

func setTotal(ctx context.Context, tx *sql.Tx, total core.Money) error {
	if _, err := tx.ExecContext(ctx, `UPDATE ledger_total SET total_cents = ? WHERE id = 1`, total.Cents); err != nil {
		return fmt.Errorf("update total: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "component", "storage", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
