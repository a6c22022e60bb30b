package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

func TestRerankPolicy(t *testing.T) {
	intents := []domain.Intent{
		domain.IntentFactoid, domain.IntentAnalytical, domain.IntentComparison, domain.IntentGeneral,
	}

	for _, intent := range intents {
		for _, competitor := range []bool{false, true} {
			assert.Equal(t, RerankBoost, RerankPolicy(intent, competitor, true),
				"matched %s competitor=%t", intent, competitor)
		}
		assert.Equal(t, RerankKeep, RerankPolicy(intent, true, false), "competitor %s", intent)
	}

	assert.Equal(t, RerankDrop, RerankPolicy(domain.IntentFactoid, false, false))
	assert.Equal(t, RerankPenalize, RerankPolicy(domain.IntentAnalytical, false, false))
	assert.Equal(t, RerankPenalize, RerankPolicy(domain.IntentGeneral, false, false))
	assert.Equal(t, RerankPenalize, RerankPolicy(domain.IntentComparison, false, false))
}

func TestRerankAction_Apply(t *testing.T) {
	tests := []struct {
		action RerankAction
		score  float64
		kept   bool
	}{
		{RerankBoost, 1.3, true},
		{RerankKeep, 1.0, true},
		{RerankPenalize, 0.5, true},
		{RerankDrop, 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			score, kept := tt.action.Apply(1.0)
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, tt.kept, kept)
		})
	}
}

func TestCompanyMatches(t *testing.T) {
	targets := []string{"삼성전자", "sk하이닉스"}

	assert.True(t, companyMatches("", targets))
	assert.True(t, companyMatches("Unknown Company", targets))
	assert.True(t, companyMatches("삼성전자", targets))
	assert.True(t, companyMatches("SK하이닉스", targets))
	assert.True(t, companyMatches("삼성전자우", targets))
	assert.False(t, companyMatches("LG전자", targets))
	assert.False(t, companyMatches("LG전자", nil))
}

func annotated(company string, score float64) domain.RankedFragment {
	r := domain.RankedFragment{Content: company, Score: score}
	r.Annotate(company, 1, domain.IntentGeneral, nil)
	return r
}

func TestHeuristicRerank_FactoidMembership(t *testing.T) {
	hits := []domain.RankedFragment{
		annotated("LG전자", 0.95),
		annotated("현대엔지니어링", 0.7),
		annotated("", 0.6),
		annotated("삼성물산", 0.9),
	}

	got := heuristicRerank(hits, []string{"현대엔지니어링"}, domain.IntentFactoid, false)

	require.Len(t, got, 2)
	for _, r := range got {
		assert.True(t, companyMatches(r.CompanyName(), []string{"현대엔지니어링"}))
	}
	assert.Equal(t, "현대엔지니어링", got[0].CompanyName())
	assert.Equal(t, "", got[1].CompanyName())
}

func TestHeuristicRerank_CompetitorNeverDrops(t *testing.T) {
	hits := []domain.RankedFragment{
		annotated("LG전자", 0.95),
		annotated("삼성전자", 0.5),
	}

	got := heuristicRerank(hits, []string{"삼성전자"}, domain.IntentFactoid, true)

	require.Len(t, got, 2)
	assert.Equal(t, "LG전자", got[0].CompanyName())
	assert.InDelta(t, 0.95, got[0].Score, 1e-9)
	assert.InDelta(t, 0.65, got[1].Score, 1e-9)
}

func TestHeuristicRerank_NoTargetsIsNoop(t *testing.T) {
	hits := []domain.RankedFragment{
		annotated("LG전자", 0.2),
		annotated("삼성전자", 0.9),
	}

	got := heuristicRerank(hits, []string{"  "}, domain.IntentFactoid, false)

	assert.Equal(t, hits, got)
}

func TestHeuristicRerank_StableOnTies(t *testing.T) {
	hits := []domain.RankedFragment{
		annotated("삼성전자", 0.5),
		annotated("", 0.5),
		annotated("삼성전자우", 0.5),
	}

	got := heuristicRerank(hits, []string{"삼성전자"}, domain.IntentAnalytical, false)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"삼성전자", "", "삼성전자우"}, contents(got))
}
