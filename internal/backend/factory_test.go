package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ledgerbot/internal/config"
	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/storage/flatfile"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataDir: "/srv/ledger", SQLiteDBPath: "x.db"})
	require.NoError(t, err)
	require.Equal(t, Config{Type: FileBackend, DataDirectory: "/srv/ledger", SQLiteDBPath: "x.db"}, cfg)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"file", Config{Type: FileBackend, DataDirectory: "."}, false},
		{"file without dir", Config{Type: FileBackend}, true},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "sheets"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := NewFactory(nil)

	for _, cfg := range []Config{
		{Type: FileBackend, DataDirectory: filepath.Join(dir, "files")},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "ledger.db")},
		{Type: MemoryBackend},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.CreateBackend(ctx, cfg)
			require.NoError(t, err)
			t.Cleanup(func() { require.NoError(t, res.Close()) })

			store, err := ledger.Open(ctx, res.Repository)
			require.NoError(t, err)
			_, err = store.AddEntry(ctx, "Lunch", core.Money{Cents: 1250})
			require.NoError(t, err)
			require.Equal(t, "12.50", store.Total(ctx).String())
		})
	}

	data, err := os.ReadFile(filepath.Join(dir, "files", flatfile.TotalFile))
	require.NoError(t, err)
	require.Equal(t, "12.50", string(data))
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "sheets"})
	require.Error(t, err)
}
