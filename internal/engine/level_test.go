package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLevel(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadLevel_ParsesGridAndTempo(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "one.lvl", "150\n#####\n#P.g#\n#####\n")

	b, err := LoadLevel("one.lvl", dir, 7)
	require.NoError(t, err)
	require.Equal(t, 150, b.Tempo)
	require.Equal(t, 5, b.Width)
	require.Equal(t, 3, b.Height)
	require.Len(t, b.Pacmen, 1)
	require.Equal(t, int32(7), b.Pacmen[0].Points)
	require.Len(t, b.Ghosts, 1)
	require.False(t, b.Ghosts[0].Charged)
}

func TestLoadLevel_MissingPacmanIsError(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "bad.lvl", "100\n###\n# #\n###\n")

	_, err := LoadLevel("bad.lvl", dir, 0)
	require.Error(t, err)
}

func TestListLevels_FiltersAndSkipsDotfiles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "a.lvl", "100\n#P#\n")
	writeLevel(t, dir, "b.lvl", "100\n#P#\n")
	writeLevel(t, dir, "notes.txt", "ignore me")
	writeLevel(t, dir, ".hidden.lvl", "100\n#P#\n")

	levels, err := ListLevels(dir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.lvl", "b.lvl"}, levels)
}

func TestMovePacman_EatsDotAndBlockedByWall(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "one.lvl", "100\n#####\n#P..#\n#####\n")
	b, err := LoadLevel("one.lvl", dir, 0)
	require.NoError(t, err)

	result := MovePacman(b, 'R')
	require.Equal(t, MoveAteDot, result)
	require.Equal(t, int32(1), b.Pacmen[0].Points)

	// Walking into the wall above is blocked.
	result = MovePacman(b, 'U')
	require.Equal(t, MoveBlocked, result)
}

func TestMovePacman_Portal(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "one.lvl", "100\n####\n#P@#\n####\n")
	b, err := LoadLevel("one.lvl", dir, 0)
	require.NoError(t, err)

	require.Equal(t, MovePortal, MovePacman(b, 'R'))
}

func TestMoveGhost_KillsPacman(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "one.lvl", "100\n####\n#Pg#\n####\n")
	b, err := LoadLevel("one.lvl", dir, 0)
	require.NoError(t, err)

	result := MoveGhost(b, b.Ghosts[0])
	require.Equal(t, MoveDied, result)
	require.False(t, b.Pacmen[0].Alive)
}

func TestMoveGhost_PatrolCycles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "one.lvl", "100\n######\n#P..g#\n######\n")
	b, err := LoadLevel("one.lvl", dir, 0)
	require.NoError(t, err)

	g := b.Ghosts[0]
	startX := g.X
	MoveGhost(b, g) // left
	require.Equal(t, startX-1, g.X)
	MoveGhost(b, g) // right
	require.Equal(t, startX, g.X)
}
