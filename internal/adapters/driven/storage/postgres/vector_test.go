package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
)

func TestEncodeVector(t *testing.T) {
	assert.Equal(t, "", encodeVector(nil))
	assert.Equal(t, "[1,0.5,-2]", encodeVector([]float32{1, 0.5, -2}))
	assert.Equal(t, "[0.1]", encodeVector([]float32{0.1}))
}

func TestDecodeVector(t *testing.T) {
	vec, err := decodeVector("[1,0.5,-2]")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0.5, -2}, vec)

	vec, err = decodeVector("")
	require.NoError(t, err)
	assert.Nil(t, vec)

	vec, err = decodeVector("[]")
	require.NoError(t, err)
	assert.Empty(t, vec)

	_, err = decodeVector("[1,abc]")
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0, 1))
	assert.Equal(t, "$1", placeholders(1, 1))
	assert.Equal(t, "$3, $4, $5", placeholders(3, 3))
}

func TestBuildVectorQuery(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		query, args := buildVectorQuery("[1]", driven.VectorQuery{TopK: 5})
		assert.Contains(t, query, "m.embedding <=> $1::vector AS distance")
		assert.Contains(t, query, "m.chunk_type <> $2")
		assert.NotContains(t, query, "company_name IN")
		assert.True(t, strings.HasSuffix(query, "LIMIT $3"))
		assert.Equal(t, []any{"[1]", "noise_merged", 5}, args)
	})

	t.Run("chunk type and companies", func(t *testing.T) {
		query, args := buildVectorQuery("[1]", driven.VectorQuery{
			TopK:      20,
			Companies: []string{"삼성전자", "SK하이닉스"},
			ChunkType: domain.ChunkTypeText,
		})
		assert.Contains(t, query, "m.chunk_type = $3")
		assert.Contains(t, query, "c.company_name IN ($4, $5)")
		assert.True(t, strings.HasSuffix(query, "LIMIT $6"))
		assert.Equal(t, []any{"[1]", "noise_merged", "text", "삼성전자", "SK하이닉스", 20}, args)
	})
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{DSN: "postgres://x", Dimensions: 768}.withDefaults()
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 768, cfg.Dimensions)
	assert.Equal(t, DefaultConfig("").ConnectTimeout, cfg.ConnectTimeout)
}
