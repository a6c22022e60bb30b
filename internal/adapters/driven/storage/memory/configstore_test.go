package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	_, ok := store.Get("search.top_k")
	assert.False(t, ok)

	require.NoError(t, store.Set("search.top_k", 10))
	require.NoError(t, store.Set("search.top_k", 20))

	val, ok := store.Get("search.top_k")
	assert.True(t, ok)
	assert.Equal(t, 20, val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("str", "postgres"))
	require.NoError(t, store.Set("int", 7))
	require.NoError(t, store.Set("int64", int64(8)))
	require.NoError(t, store.Set("float", 0.65))
	require.NoError(t, store.Set("float32", float32(0.5)))
	require.NoError(t, store.Set("bool", true))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("str"), "postgres"},
		{"string wrong type", store.GetString("int"), ""},
		{"int", store.GetInt("int"), 7},
		{"int from int64", store.GetInt("int64"), 8},
		{"int from float", store.GetInt("float"), 0},
		{"int missing", store.GetInt("missing"), 0},
		{"float", store.GetFloat("float"), 0.65},
		{"float from float32", store.GetFloat("float32"), 0.5},
		{"float from int", store.GetFloat("int"), 7.0},
		{"float wrong type", store.GetFloat("str"), 0.0},
		{"bool", store.GetBool("bool"), true},
		{"bool wrong type", store.GetBool("str"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_LoadAndPath(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}

func TestConfigStore_Seed(t *testing.T) {
	seed := map[string]any{"store.driver": "sqlite"}
	store := NewConfigStore(seed)

	require.NoError(t, store.Set("store.driver", "postgres"))

	assert.Equal(t, "postgres", store.GetString("store.driver"))
	assert.Equal(t, "sqlite", seed["store.driver"], "seed map is copied")
}
