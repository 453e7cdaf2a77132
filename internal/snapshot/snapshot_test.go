package snapshot

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/vec"
)

type cell struct {
	P vec.UVec3
	S grid.State
}

func cellsOf(g *grid.Grid) []cell {
	var out []cell
	for p, s := range g.Cells() {
		out = append(out, cell{P: p, S: s})
	}
	return out
}

func sampleGrid(t *testing.T, kind grid.StorageKind) *grid.Grid {
	t.Helper()
	g, err := grid.New(grid.Extent{X: 3, Y: 1, Z: 3}, kind)
	require.NoError(t, err)
	g.Set(vec.UVec3{X: 0, Z: 0}, 1)
	g.Set(vec.UVec3{X: 2, Z: 0}, 2)
	g.Set(vec.UVec3{X: 1, Z: 1}, 3)
	g.Set(vec.UVec3{X: 2, Z: 2}, 255)
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGrid(t, grid.DenseStorage)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	assert.Equal(t, []byte{3, 1, 3, 1, 0, 2, 0, 3, 0, 0, 0, 255}, buf.Bytes())

	for _, kind := range []grid.StorageKind{grid.DenseStorage, grid.SparseStorage} {
		loaded, err := Read(bytes.NewReader(buf.Bytes()), kind)
		require.NoError(t, err)
		assert.Equal(t, g.Extent(), loaded.Extent())
		assert.Equal(t, kind, loaded.Kind())
		assert.Equal(t, cellsOf(g), cellsOf(loaded))
	}
}

func TestReadPadsShortPayload(t *testing.T) {
	g, err := Read(bytes.NewReader([]byte{2, 1, 2, 7, 8}), grid.DenseStorage)
	require.NoError(t, err)
	assert.Equal(t, []cell{
		{P: vec.UVec3{X: 0}, S: 7},
		{P: vec.UVec3{X: 1}, S: 8},
		{P: vec.UVec3{Z: 1}, S: 0},
		{P: vec.UVec3{X: 1, Z: 1}, S: 0},
	}, cellsOf(g))

	g, err = Read(bytes.NewReader([]byte{1, 2, 1}), grid.SparseStorage)
	require.NoError(t, err)
	assert.Zero(t, g.LiveCount())
}

func TestReadTruncatesLongPayload(t *testing.T) {
	g, err := Read(bytes.NewReader([]byte{2, 1, 1, 4, 5, 6, 7, 8}), grid.DenseStorage)
	require.NoError(t, err)
	assert.Equal(t, grid.Extent{X: 2, Y: 1, Z: 1}, g.Extent())
	assert.Equal(t, grid.State(4), g.GetIndex(0))
	assert.Equal(t, grid.State(5), g.GetIndex(1))
}

func TestReadErrors(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{3, 0, 3, 1, 1}), grid.DenseStorage)
	assert.ErrorIs(t, err, grid.ErrInvalidExtent)

	_, err = Read(bytes.NewReader([]byte{3, 1}), grid.DenseStorage)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = Read(bytes.NewReader(nil), grid.DenseStorage)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	boom := errors.New("disk on fire")
	_, err = Read(io.MultiReader(bytes.NewReader([]byte{2, 2, 2, 1}), &failingReader{err: boom}), grid.DenseStorage)
	assert.ErrorIs(t, err, boom)
}

func TestWriteRejectsLargeExtent(t *testing.T) {
	g, err := grid.New(grid.Extent{X: 256, Y: 1, Z: 1}, grid.SparseStorage)
	require.NoError(t, err)
	assert.ErrorIs(t, Write(io.Discard, g), ErrExtentTooLarge)
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	g := sampleGrid(t, grid.SparseStorage)

	for _, name := range []string{"world.bin", "world.bin.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveFile(path, g))

		loaded, err := LoadFile(path, grid.DenseStorage)
		require.NoError(t, err)
		assert.Equal(t, cellsOf(g), cellsOf(loaded), name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "world.bin"))
	require.NoError(t, err)
	assert.Len(t, raw, HeaderSize+9)

	compressed, err := os.ReadFile(filepath.Join(dir, "world.bin.zst"))
	require.NoError(t, err)
	assert.NotEqual(t, raw, compressed)

	_, err = LoadFile(filepath.Join(dir, "missing.bin"), grid.DenseStorage)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingReader struct{ err error }

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }
