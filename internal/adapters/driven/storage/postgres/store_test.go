package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
)

// setupTestStore connects to the database named by STORM_TEST_POSTGRES_DSN.
// The test is skipped when it is unset.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("STORM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STORM_TEST_POSTGRES_DSN not set")
	}

	cfg := DefaultConfig(dsn)
	cfg.Dimensions = 3
	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Integration(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Unique names keep repeated runs independent.
	suffix := uuid.NewString()[:8]
	company := &domain.Company{Name: "테스트전자-" + suffix}
	require.NoError(t, store.SaveCompany(ctx, company))

	report := &domain.AnalysisReport{CompanyID: &company.ID, ReceiptNo: suffix}
	require.NoError(t, store.SaveReport(ctx, report))

	fragments := []domain.Fragment{
		{ChunkType: domain.ChunkTypeText, SequenceOrder: 10, RawContent: "t10", Embedding: []float32{1, 0, 0}},
		{ChunkType: domain.ChunkTypeTable, SequenceOrder: 13, RawContent: "t13", Embedding: []float32{0, 1, 0}},
		{ChunkType: domain.ChunkTypeNoiseMerged, SequenceOrder: 14, RawContent: "n14", Embedding: []float32{1, 0, 0}},
		{ChunkType: domain.ChunkTypeText, SequenceOrder: 20, RawContent: "t20", Embedding: []float32{0.5, 0.5, 0}},
	}
	require.NoError(t, store.SaveFragments(ctx, report.ID, fragments))
	for _, f := range fragments {
		assert.NotZero(t, f.ID)
		assert.Equal(t, report.ID, f.ReportID)
	}

	t.Run("search", func(t *testing.T) {
		matches, err := store.SearchByVector(ctx, []float32{1, 0, 0}, driven.VectorQuery{
			TopK: 10, Companies: []string{company.Name}, ChunkType: domain.ChunkTypeText,
		})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "t10", matches[0].Fragment.RawContent)
		assert.Equal(t, company.Name, matches[0].CompanyName)
		assert.InDelta(t, 0, matches[0].Distance, 1e-6)
		assert.Equal(t, []float32{1, 0, 0}, matches[0].Fragment.Embedding)
	})

	t.Run("forward lookup skips noise", func(t *testing.T) {
		next, err := store.NearestNextFragment(ctx, report.ID, 13)
		require.NoError(t, err)
		assert.Equal(t, "t20", next.RawContent)

		_, err = store.NearestNextFragment(ctx, report.ID, 20)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("context window", func(t *testing.T) {
		window, err := store.ContextWindow(ctx, report.ID, 13, 7)
		require.NoError(t, err)
		require.Len(t, window, 2)
		assert.Equal(t, "t10", window[0].RawContent)
		assert.Equal(t, "t20", window[1].RawContent)
	})

	t.Run("company names", func(t *testing.T) {
		names, err := store.CompanyNames(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, company.Name)
	})

	t.Run("failed batch rolls back", func(t *testing.T) {
		err := store.SaveFragments(ctx, report.ID, []domain.Fragment{
			{ChunkType: domain.ChunkTypeText, SequenceOrder: 30, RawContent: "t30"},
			{ChunkType: "image", SequenceOrder: 31, RawContent: "bad"},
		})
		var repoErr *domain.RepositoryError
		require.ErrorAs(t, err, &repoErr)

		all, err := store.FragmentsByReport(ctx, report.ID)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("reloading a report replaces its fragments", func(t *testing.T) {
		reload := []domain.Fragment{
			{ChunkType: domain.ChunkTypeText, SequenceOrder: 10, RawContent: "t10", Embedding: []float32{1, 0, 0}},
		}
		require.NoError(t, store.SaveFragments(ctx, report.ID, reload))

		all, err := store.FragmentsByReport(ctx, report.ID)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "t10", all[0].RawContent)
	})
}
