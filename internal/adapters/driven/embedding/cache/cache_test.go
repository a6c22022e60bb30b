package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	mu      sync.Mutex
	model   string
	calls   int
	batches [][]string
	err     error
	closed  bool
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches = append(e.batches, append([]string(nil), texts...))
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (e *countingEmbedder) Dimensions() int              { return 2 }
func (e *countingEmbedder) ModelName() string            { return e.model }
func (e *countingEmbedder) Ping(_ context.Context) error { return nil }
func (e *countingEmbedder) Close() error                 { e.closed = true; return nil }

func openMemory(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	return c
}

func TestKey(t *testing.T) {
	a := Key("bge-m3", "매출")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key("bge-m3", "매출"))
	assert.NotEqual(t, a, Key("text-embedding-3-small", "매출"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
}

func TestCache_PutGet(t *testing.T) {
	c := openMemory(t)
	defer c.Close()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "k", []float32{0.5, -1, 3}))
	vec, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, -1, 3}, vec)
}

func TestCache_OnDiskPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := Open(Options{Dir: dir, TTL: time.Hour})
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "k", []float32{1, 2}))
	require.NoError(t, c.Close())

	c, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer c.Close()

	vec, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, vec)
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}

func TestEmbeddingService_Embed(t *testing.T) {
	inner := &countingEmbedder{model: "bge-m3"}
	svc := Wrap(inner, openMemory(t))
	defer svc.Close()
	ctx := context.Background()

	first, err := svc.Embed(ctx, "반도체")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "반도체")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "bge-m3", svc.ModelName())
	assert.Equal(t, 2, svc.Dimensions())
}

func TestEmbeddingService_EmbedErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{model: "m", err: errors.New("down")}
	svc := Wrap(inner, openMemory(t))
	defer svc.Close()

	_, err := svc.Embed(context.Background(), "q")
	require.Error(t, err)

	inner.err = nil
	_, err = svc.Embed(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestEmbeddingService_EmbedBatchOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	svc := Wrap(inner, openMemory(t))
	defer svc.Close()
	ctx := context.Background()

	_, err := svc.Embed(ctx, "bb")
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {2, 1}, {3, 1}}, vecs)
	require.Len(t, inner.batches, 1)
	assert.Equal(t, []string{"a", "ccc"}, inner.batches[0])

	_, err = svc.EmbedBatch(ctx, []string{"a", "ccc"})
	require.NoError(t, err)
	assert.Len(t, inner.batches, 1, "fully cached batch makes no call")
}

func TestEmbeddingService_Close(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	svc := Wrap(inner, openMemory(t))
	require.NoError(t, svc.Close())
	assert.True(t, inner.closed)
}
