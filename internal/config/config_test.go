package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadServer_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultServer(), cfg)
}

func TestLoadServer_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	const yaml = `
max_games: 2
level_dir: /tmp/levels
leaderboard_top_n: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.MaxGames)
	require.Equal(t, "/tmp/levels", cfg.LevelDir)
	require.Equal(t, 3, cfg.LeaderboardTopN)
	// Unset fields keep their defaults.
	require.Equal(t, DefaultServer().BindAddress, cfg.BindAddress)
}

func TestLoadClient_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadClient(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultClient(), cfg)
}
