// Package flatfile stores the ledger in three plain text files:
//
//	total.txt       a single decimal literal, no trailing newline
//	expenses.txt    one "<date> | <category>: $<amount>" line per entry
//	categories.txt  one category name per line
//
// Rewrites go through a temp file and rename. An append that cannot update
// the total is rolled back by truncating the expense log.
package flatfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

const (
	TotalFile      = "total.txt"
	ExpensesFile   = "expenses.txt"
	CategoriesFile = "categories.txt"
)

type Repository struct {
	dir string
}

var _ ledger.Repository = (*Repository)(nil)

// New prepares dir (creating it if needed) as the ledger's home.
func New(dir string) (*Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Repository{dir: dir}, nil
}

func (r *Repository) path(name string) string {
	return filepath.Join(r.dir, name)
}

// Ping checks that the data directory is still there. It never creates or
// writes a file.
func (r *Repository) Ping(_ context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("stat data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", r.dir)
	}
	return nil
}

// Load reads all three files. A missing categories file is created with the
// default seed; missing total or expense files read as empty.
func (r *Repository) Load(ctx context.Context) (ledger.State, error) {
	lines, err := readLines(r.path(ExpensesFile))
	if err != nil {
		return ledger.State{}, fmt.Errorf("read expenses: %w", err)
	}
	entries := make([]core.Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, core.ParseEntryLine(line))
	}

	if _, err := os.Stat(r.path(CategoriesFile)); errors.Is(err, fs.ErrNotExist) {
		slog.InfoContext(ctx, "Seeding categories file", "component", "storage", "path", r.path(CategoriesFile))
		if err := r.SaveCategories(ctx, core.DefaultCategories); err != nil {
			return ledger.State{}, err
		}
	}
	cats, err := readLines(r.path(CategoriesFile))
	if err != nil {
		return ledger.State{}, fmt.Errorf("read categories: %w", err)
	}

	return ledger.State{
		Entries:    entries,
		Categories: cats,
		Total:      r.readTotal(ctx),
	}, nil
}

// readTotal is lenient: a missing or unreadable total reads as zero. The
// ledger rebuilds its total from the expense log anyway.
func (r *Repository) readTotal(ctx context.Context) core.Money {
	raw, err := os.ReadFile(r.path(TotalFile))
	if err != nil {
		return core.Money{}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(string(raw)))
	if err != nil {
		slog.WarnContext(ctx, "Unreadable total file", "component", "storage", "error", err)
		return core.Money{}
	}
	return core.MoneyFromDecimal(d)
}

func (r *Repository) AppendEntry(_ context.Context, e core.Entry, total core.Money) error {
	path := r.path(ExpensesFile)
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat expenses: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open expenses: %w", err)
	}
	if _, err := f.WriteString(e.Line() + "\n"); err != nil {
		f.Close()
		return errors.Join(fmt.Errorf("append expense: %w", err), rollback(path, size))
	}
	if err := f.Close(); err != nil {
		return errors.Join(fmt.Errorf("close expenses: %w", err), rollback(path, size))
	}

	if err := writeFileAtomic(r.path(TotalFile), []byte(total.String())); err != nil {
		return errors.Join(fmt.Errorf("write total: %w", err), rollback(path, size))
	}
	return nil
}

// ReplaceEntries rewrites the expense log and the total. Both temp files are
// written before either is renamed into place. The total goes first: once
// the expense log is renamed the rewrite has happened, and a stale total is
// harmless because Load rebuilds it from the log.
func (r *Repository) ReplaceEntries(_ context.Context, entries []core.Entry, total core.Money) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Line())
		b.WriteByte('\n')
	}

	expTmp, err := writeTemp(r.dir, ExpensesFile, []byte(b.String()))
	if err != nil {
		return fmt.Errorf("write expenses: %w", err)
	}
	totTmp, err := writeTemp(r.dir, TotalFile, []byte(total.String()))
	if err != nil {
		os.Remove(expTmp)
		return fmt.Errorf("write total: %w", err)
	}

	if err := os.Rename(totTmp, r.path(TotalFile)); err != nil {
		os.Remove(expTmp)
		os.Remove(totTmp)
		return fmt.Errorf("replace total: %w", err)
	}
	if err := os.Rename(expTmp, r.path(ExpensesFile)); err != nil {
		os.Remove(expTmp)
		return fmt.Errorf("replace expenses: %w", err)
	}
	return nil
}

func (r *Repository) SaveCategories(_ context.Context, categories []string) error {
	var data string
	if len(categories) > 0 {
		data = strings.Join(categories, "\n") + "\n"
	}
	if err := writeFileAtomic(r.path(CategoriesFile), []byte(data)); err != nil {
		return fmt.Errorf("write categories: %w", err)
	}
	return nil
}

func rollback(path string, size int64) error {
	if err := os.Truncate(path, size); err != nil {
		return fmt.Errorf("rollback expenses: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := writeTemp(filepath.Dir(path), filepath.Base(path), data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
