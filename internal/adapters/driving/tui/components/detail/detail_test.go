package detail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

func TestPane_Empty(t *testing.T) {
	p := NewPane(nil)

	assert.Nil(t, p.Current())
	assert.Contains(t, p.View(), "Select a result")
}

func TestPane_Show(t *testing.T) {
	p := NewPane(nil)
	p.SetSize(60, 10)

	res := &domain.RankedFragment{
		Title:   "II. 사업의 내용",
		URL:     "dart_report_3_chunk_12",
		Content: "메모리 반도체 수요가 회복되었다.",
		Score:   0.8123,
		Source:  domain.ProvenanceInternal,
	}
	p.Show(res)

	require.Same(t, res, p.Current())
	view := p.View()
	assert.Contains(t, view, "DART")
	assert.Contains(t, view, "dart_report_3_chunk_12")
	assert.Contains(t, view, "0.8123")
	assert.Contains(t, view, "메모리 반도체")

	p.Show(nil)
	assert.Nil(t, p.Current())
}

func TestPane_Scroll(t *testing.T) {
	p := NewPane(nil)
	p.SetSize(40, 4)
	p.Show(&domain.RankedFragment{URL: "u", Content: strings.Repeat("line\n", 50)})

	require.True(t, p.AtTop())
	p.ScrollDown()
	assert.False(t, p.AtTop())
	p.ScrollUp()
	assert.True(t, p.AtTop())
}
