package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndex_UpsertAndSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := NewMemory()
	require.NoError(t, idx.EnsureCollection(ctx, "facilities", []string{"full_document"}, 3))

	require.NoError(t, idx.Upsert(ctx, "facilities", "f1",
		map[string][]float32{"full_document": {1, 0, 0}}, map[string]string{"region": "Ashanti"}))
	require.NoError(t, idx.Upsert(ctx, "facilities", "f2",
		map[string][]float32{"full_document": {0, 1, 0}}, map[string]string{"region": "Volta"}))

	hits, err := idx.Search(ctx, "facilities", "full_document", []float32{1, 0, 0}, nil, 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "f1", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 0.0001)
}

func TestMemoryIndex_FilterRestrictsResults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := NewMemory()
	require.NoError(t, idx.EnsureCollection(ctx, "facilities", []string{"v"}, 2))
	require.NoError(t, idx.Upsert(ctx, "facilities", "f1", map[string][]float32{"v": {1, 0}}, map[string]string{"region": "Ashanti"}))
	require.NoError(t, idx.Upsert(ctx, "facilities", "f2", map[string][]float32{"v": {1, 0}}, map[string]string{"region": "Volta"}))

	hits, err := idx.Search(ctx, "facilities", "v", []float32{1, 0}, map[string]string{"region": "Volta"}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "f2", hits[0].ID)
}

func TestMemoryIndex_MissingNamedVectorExcluded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	idx := NewMemory()
	require.NoError(t, idx.Upsert(ctx, "facilities", "f1", map[string][]float32{"other": {1, 0}}, nil))

	hits, err := idx.Search(ctx, "facilities", "full_document", []float32{1, 0}, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryIndex_Healthy(t *testing.T) {
	t.Parallel()
	idx := NewMemory()
	assert.NoError(t, idx.Healthy(context.Background()))
}
