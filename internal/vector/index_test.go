package vector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nataliafedorovabi/OBS-book-search/internal/errors"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Model:      "voyage-multilingual-2",
		Dimensions: 3,
		Vectors: map[string][]float32{
			"ch-1": {1, 0, 0},
			"ch-2": {0, 1, 0},
			"ch-3": {0, 0, 1},
		},
	}
}

func TestBuildAndSearch(t *testing.T) {
	ix, err := Build(testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 3, ix.Dimensions())

	results, err := ix.Search([]float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "ch-1", results[0].ID)
	assert.Greater(t, results[0].Score, 0.9)
	assert.LessOrEqual(t, results[0].Score, 1.0)
}

func TestSearch_OpposedVectorsFloorAtZero(t *testing.T) {
	ix, err := Build(&Snapshot{
		Dimensions: 3,
		Vectors:    map[string][]float32{"ch-1": {1, 0, 0}},
	})
	require.NoError(t, err)

	results, err := ix.Search([]float32{-1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
}

func TestBuild_DimensionMismatch(t *testing.T) {
	snap := testSnapshot()
	snap.Vectors["broken"] = []float32{1, 0}

	_, err := Build(snap)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSnapshotCorrupt, apperrors.GetCode(err))
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ix, err := Build(testSnapshot())
	require.NoError(t, err)

	_, err = ix.Search([]float32{1, 0}, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
}

func TestSearch_EmptyIndex(t *testing.T) {
	ix, err := Build(&Snapshot{Dimensions: 3, Vectors: nil})
	require.NoError(t, err)

	results, err := ix.Search([]float32{0, 1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.json")
	data := `{"model": "voyage-multilingual-2", "dimensions": 2, "vectors": {"ch-1": [0.5, 0.5]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Dimensions)
	assert.Len(t, snap.Vectors, 1)
}

func TestLoadSnapshot_Errors(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, apperrors.ErrCodeSnapshotCorrupt, apperrors.GetCode(err))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	_, err = LoadSnapshot(path)
	assert.Equal(t, apperrors.ErrCodeSnapshotCorrupt, apperrors.GetCode(err))
}
