package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pacd/pacd/internal/engine"
	"github.com/stretchr/testify/require"
)

func sessionWithPoints(t *testing.T, id int32, points int32) *Session {
	t.Helper()
	s := pipeSession(t, id)
	s.RebindScore(&engine.Pacman{Points: points})
	return s
}

func TestWriteLeaderboard_SortedAndTruncated(t *testing.T) {
	reg := NewRegistry(6)
	ids := []struct {
		id, pts int32
	}{
		{7, 40}, {3, 40}, {9, 10}, {11, 5}, {12, 1}, {13, 0},
	}
	for _, e := range ids {
		s := sessionWithPoints(t, e.id, e.pts)
		_, err := reg.Claim(s)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "topPlayers.txt")
	require.NoError(t, WriteLeaderboard(reg, path, 5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "ID: 3, Pontos: 40\nID: 7, Pontos: 40\nID: 9, Pontos: 10\nID: 11, Pontos: 5\nID: 12, Pontos: 1\n", string(data))
}

func TestWriteLeaderboard_FewerThanTopN(t *testing.T) {
	reg := NewRegistry(5)
	s := sessionWithPoints(t, 1, 99)
	_, err := reg.Claim(s)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "topPlayers.txt")
	require.NoError(t, WriteLeaderboard(reg, path, 5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "ID: 1, Pontos: 99\n", string(data))
}

func TestWriteLeaderboard_TruncatesOnEverySignal(t *testing.T) {
	reg := NewRegistry(1)
	path := filepath.Join(t.TempDir(), "topPlayers.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content that should disappear\n"), 0o644))

	require.NoError(t, WriteLeaderboard(reg, path, 5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)
}
