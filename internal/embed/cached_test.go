package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	err   error
	model string
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (e *countingEmbedder) Dimensions() int { return 3 }

func (e *countingEmbedder) ModelName() string {
	if e.model != "" {
		return e.model
	}
	return "test-model"
}

func TestCachedEmbedder_CacheHitSkipsInnerCall(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCachedEmbedder(inner, 10)

	first, err := c.Embed(context.Background(), "делегирование")
	require.NoError(t, err)

	second, err := c.Embed(context.Background(), "делегирование")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second call is served from the cache")

	_, err = c.Embed(context.Background(), "мотивация")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedder_ErrorsAreNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("provider down")}
	c := NewCachedEmbedder(inner, 10)

	_, err := c.Embed(context.Background(), "вопрос")
	require.Error(t, err)

	inner.err = nil
	vec, err := c.Embed(context.Background(), "вопрос")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedder_Eviction(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCachedEmbedder(inner, 1)

	_, err := c.Embed(context.Background(), "a")
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), "b")
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, 3, inner.calls, "capacity one evicts the earlier entry")
}

func TestCachedEmbedder_DelegatesMetadata(t *testing.T) {
	c := NewCachedEmbedder(&countingEmbedder{model: "voyage-multilingual-2"}, 0)
	assert.Equal(t, 3, c.Dimensions())
	assert.Equal(t, "voyage-multilingual-2", c.ModelName())
}
