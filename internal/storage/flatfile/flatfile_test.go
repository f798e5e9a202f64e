package flatfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

func fixedClock() time.Time {
	return time.Date(2025, time.October, 14, 12, 0, 0, 0, time.UTC)
}

func TestLoadSeedsCategoriesFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := New(dir)
	require.NoError(t, err)

	st, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Lunch", "Dinner", "Groceries"}, st.Categories)
	require.Empty(t, st.Entries)
	require.True(t, st.Total.IsZero())
	require.Equal(t, "Lunch\nDinner\nGroceries\n", readFile(t, dir, CategoriesFile))
}

func TestRecordFormatsAreExact(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := New(dir)
	require.NoError(t, err)

	store, err := ledger.Open(ctx, repo, ledger.WithClock(fixedClock))
	require.NoError(t, err)

	_, err = store.AddEntry(ctx, "Lunch", core.Money{Cents: 1000})
	require.NoError(t, err)
	_, err = store.AddEntry(ctx, "Dinner", core.Money{Cents: 1550})
	require.NoError(t, err)

	require.Equal(t, "14-10 (Tue) | Lunch: $10.00\n14-10 (Tue) | Dinner: $15.50\n", readFile(t, dir, ExpensesFile))
	require.Equal(t, "25.50", readFile(t, dir, TotalFile))

	_, err = store.DeleteEntry(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "14-10 (Tue) | Dinner: $15.50\n", readFile(t, dir, ExpensesFile))
	require.Equal(t, "15.50", readFile(t, dir, TotalFile))

	require.NoError(t, store.AddCategory(ctx, "Snacks"))
	require.Equal(t, "Lunch\nDinner\nGroceries\nSnacks\n", readFile(t, dir, CategoriesFile))

	_, err = store.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, "", readFile(t, dir, ExpensesFile))
	require.Equal(t, "0.00", readFile(t, dir, TotalFile))
	require.Equal(t, "Lunch\nDinner\nGroceries\nSnacks\n", readFile(t, dir, CategoriesFile))
}

func TestReopenRebuildsTotalFromLog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ExpensesFile),
		[]byte("13-10 (Mon) | Lunch: $10.00\n\nhand written note\n14-10 (Tue) | Taxi: $7.25\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TotalFile), []byte("99.0"), 0o644))

	repo, err := New(dir)
	require.NoError(t, err)
	store, err := ledger.Open(ctx, repo)
	require.NoError(t, err)

	require.Equal(t, int64(1725), store.Total(ctx).Cents)
	entries := store.ListEntries(ctx)
	require.Len(t, entries, 3)
	require.Equal(t, "hand written note", entries[1].Line())
	require.True(t, entries[1].Amount.IsZero())
}

func TestLegacyLinesSurviveRewrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ExpensesFile),
		[]byte("Lunch: $4.00\n13-10 (Mon) | Dinner: $6.00\n"), 0o644))

	repo, err := New(dir)
	require.NoError(t, err)
	store, err := ledger.Open(ctx, repo, ledger.WithClock(fixedClock))
	require.NoError(t, err)

	res, err := store.EditEntry(ctx, 2, core.Money{Cents: 800})
	require.NoError(t, err)
	require.Equal(t, int64(1200), res.Total.Cents)
	require.Equal(t, "Lunch: $4.00\n13-10 (Mon) | Dinner: $8.00\n", readFile(t, dir, ExpensesFile))
	require.Equal(t, "12.00", readFile(t, dir, TotalFile))
}

func TestAppendRollsBackWhenTotalCannotBeWritten(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ExpensesFile), []byte("13-10 (Mon) | Lunch: $10.00\n"), 0o644))

	// Without write permission on the directory the temp file for the total
	// cannot be created, while the existing expense log stays appendable.
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	err = repo.AppendEntry(ctx, core.NewEntry("14-10 (Tue)", "Dinner", core.Money{Cents: 500}), core.Money{Cents: 1500})
	require.Error(t, err)
	require.Equal(t, "13-10 (Mon) | Lunch: $10.00\n", readFile(t, dir, ExpensesFile))
}

func TestFailedRewriteLeavesLogAndLedgerInStep(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := New(dir)
	require.NoError(t, err)
	store, err := ledger.Open(ctx, repo, ledger.WithClock(fixedClock))
	require.NoError(t, err)
	_, err = store.AddEntry(ctx, "Lunch", core.Money{Cents: 1000})
	require.NoError(t, err)
	_, err = store.AddEntry(ctx, "Dinner", core.Money{Cents: 1550})
	require.NoError(t, err)
	log := readFile(t, dir, ExpensesFile)

	// A non-empty directory in place of total.txt makes its rename fail.
	totalPath := filepath.Join(dir, TotalFile)
	require.NoError(t, os.Remove(totalPath))
	require.NoError(t, os.MkdirAll(filepath.Join(totalPath, "busy"), 0o755))

	_, err = store.DeleteEntry(ctx, 1)
	require.ErrorIs(t, err, core.ErrStorage)
	require.Len(t, store.ListEntries(ctx), 2)
	require.Equal(t, log, readFile(t, dir, ExpensesFile))

	require.NoError(t, os.RemoveAll(totalPath))
	reopened, err := ledger.Open(ctx, repo)
	require.NoError(t, err)
	var want, got []string
	for _, e := range store.ListEntries(ctx) {
		want = append(want, e.Line())
	}
	for _, e := range reopened.ListEntries(ctx) {
		got = append(got, e.Line())
	}
	require.Equal(t, want, got)
	require.Equal(t, int64(2550), reopened.Total(ctx).Cents)
}

func TestRejectedCategoriesNeverReachTheFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := New(dir)
	require.NoError(t, err)
	store, err := ledger.Open(ctx, repo, ledger.WithClock(fixedClock))
	require.NoError(t, err)

	require.ErrorIs(t, store.AddCategory(ctx, "Coffee\nBeans"), core.ErrParse)
	_, err = store.AddEntry(ctx, "Coffee\nBeans", core.Money{Cents: 1000})
	require.ErrorIs(t, err, core.ErrParse)
	_, err = store.AddEntry(ctx, "Taxi $5", core.Money{Cents: 1000})
	require.ErrorIs(t, err, core.ErrParse)
	_, err = store.AddEntry(ctx, "Coffee", core.Money{Cents: 1000})
	require.NoError(t, err)

	reopened, err := ledger.Open(ctx, repo)
	require.NoError(t, err)
	require.Equal(t, []string{"Lunch", "Dinner", "Groceries"}, reopened.Categories(ctx))
	entries := reopened.ListEntries(ctx)
	require.Len(t, entries, 1)
	require.Equal(t, "14-10 (Tue) | Coffee: $10.00", entries[0].Line())
	require.Equal(t, int64(1000), reopened.Total(ctx).Cents)
}

func TestEmptiedCategoriesStayEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := New(dir)
	require.NoError(t, err)
	store, err := ledger.Open(ctx, repo)
	require.NoError(t, err)
	for _, c := range store.Categories(ctx) {
		require.NoError(t, store.DeleteCategory(ctx, c))
	}

	require.Equal(t, "", readFile(t, dir, CategoriesFile))

	reopened, err := ledger.Open(ctx, repo)
	require.NoError(t, err)
	require.Empty(t, reopened.Categories(ctx))
}

func TestPingIsReadOnly(t *testing.T) {
	dir := t.TempDir()
	repo, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, repo.Ping(context.Background()))
	_, err = os.Stat(filepath.Join(dir, CategoriesFile))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.RemoveAll(dir))
	require.Error(t, repo.Ping(context.Background()))
}
