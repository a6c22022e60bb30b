package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Equal(t, "Search disclosure reports", searchCmd.Short)
}

func TestSearchCmd_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"limit", "n", "10"},
		{"json", "", "false"},
		{"no-rerank", "", "false"},
		{"no-tags", "", "false"},
		{"window", "", "0"},
		{"cross-encoder", "", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := searchCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "search", "삼성전자 반도체 매출")

	require.NoError(t, err)
	assert.Equal(t, "삼성전자 반도체 매출", ts.search.query)
	assert.Equal(t, domain.DefaultTopK, ts.search.opts.TopK)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] II. 사업의 내용 (0.873) [internal]")
	assert.Contains(t, out, "dart_report_1_chunk_4")
	assert.Contains(t, out, "DRAM 매출이 증가했다.")
}

func TestSearchCmd_PassesOptions(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "search", "-n", "5", "--no-rerank", "--no-tags", "--window", "3", "--cross-encoder", "HBM")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchOptions{
		TopK:                 5,
		DisableRerank:        true,
		DisableSourceTagging: true,
		ContextWindow:        3,
		CrossEncoder:         true,
	}, ts.search.opts)
}

func TestSearchCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "search", "--json", "DRAM")

	require.NoError(t, err)
	var got []domain.RankedFragment
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "dart_report_1_chunk_4", got[0].URL)
	assert.InDelta(t, 0.873, got[0].Score, 1e-9)
}

func TestSearchCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.results = nil

	out, err := execute(t, "", "search", "없는 회사")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.err = domain.ErrEmbeddingUnavailable

	_, err := execute(t, "", "search", "DRAM")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(&Services{})
	initErr = errors.New("embedding provider not configured")

	_, err := execute(t, "", "search", "DRAM")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
	assert.Contains(t, err.Error(), "embedding provider not configured")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b c", excerpt("a\n\n b\tc ", 10))
	assert.Equal(t, "가나...", excerpt("가나다라", 2))
	assert.Equal(t, "", excerpt("   ", 5))

	long := strings.Repeat("매", previewRunes+10)
	assert.Equal(t, previewRunes+3, len([]rune(excerpt(long, previewRunes))))
}
