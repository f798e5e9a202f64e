package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupLoggerLevel(t *testing.T) {
	logger := SetupLogger("debug")
	require.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = SetupLogger("error")
	require.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	require.Equal(t, "app", logger.Component())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGERBOT_CLI_TEST=from-dotenv\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("LEDGERBOT_CLI_TEST", "")
	require.NoError(t, os.Unsetenv("LEDGERBOT_CLI_TEST"))

	LoadEnvFile()
	require.Equal(t, "from-dotenv", os.Getenv("LEDGERBOT_CLI_TEST"))
}

func TestShutdownContextFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := ShutdownContext(parent, SetupLogger("info"))
	defer stop()

	cancel()
	<-ctx.Done()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}
