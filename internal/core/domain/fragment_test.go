package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkType(t *testing.T) {
	assert.True(t, ChunkTypeText.IsValid())
	assert.True(t, ChunkTypeTable.IsValid())
	assert.True(t, ChunkTypeNoiseMerged.IsValid())
	assert.False(t, ChunkType("image").IsValid())

	assert.True(t, ChunkTypeText.IsRetrievable())
	assert.True(t, ChunkTypeTable.IsRetrievable())
	assert.False(t, ChunkTypeNoiseMerged.IsRetrievable())
}

func TestFragment_HasMergedLegend(t *testing.T) {
	tests := []struct {
		name string
		frag Fragment
		want bool
	}{
		{"no metadata", Fragment{}, false},
		{"flag in metadata", Fragment{Metadata: map[string]any{MergedLegendKey: true}}, true},
		{"flag false", Fragment{Metadata: map[string]any{MergedLegendKey: false}}, false},
		{"flag in table metadata", Fragment{TableMetadata: map[string]any{MergedLegendKey: true}}, true},
		{"non-bool flag ignored", Fragment{Metadata: map[string]any{MergedLegendKey: "yes"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.frag.HasMergedLegend())
		})
	}
}

func TestFragmentURL(t *testing.T) {
	assert.Equal(t, "dart_report_7_chunk_123", FragmentURL(7, 123))
}
