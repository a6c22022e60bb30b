package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompaniesCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(companiesCmd.Commands()))
	for _, c := range companiesCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "resolve", "refresh"}, names)
}

func TestCompaniesList(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.companies.names = []string{"SK하이닉스", "삼성전자"}

	out, err := execute(t, "", "companies", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "  SK하이닉스\n")
	assert.Contains(t, out, "  삼성전자\n")
	assert.Contains(t, out, "2 companies")
}

func TestCompaniesList_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "companies", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No companies found.")
}

func TestCompaniesList_JSONEmptyArray(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "companies", "list", "--json")

	require.NoError(t, err)
	var got []string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompaniesList_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.companies.listErr = errors.New("connection refused")

	_, err := execute(t, "", "companies", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list companies")
}

func TestCompaniesResolve(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.companies.synonyms = map[string]string{"삼전": "삼성전자"}

	out, err := execute(t, "", "companies", "resolve", "--threshold", "80", "삼전")

	require.NoError(t, err)
	assert.Contains(t, out, "삼전 -> 삼성전자")
	assert.InDelta(t, 80.0, ts.companies.threshold, 1e-9)
}

func TestCompaniesResolve_NoMatch(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "companies", "resolve", "애플")

	require.NoError(t, err)
	assert.Contains(t, out, "애플: no confident match")
}

func TestCompaniesResolve_ThresholdOutOfRange(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "companies", "resolve", "--threshold", "150", "삼전")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold must be between 0 and 100")
}

func TestCompaniesRefresh(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.companies.names = []string{"삼성전자", "LG전자", "현대자동차"}

	out, err := execute(t, "", "companies", "refresh")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 3 companies")
}

func TestCompanies_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(&Services{})

	for _, args := range [][]string{
		{"companies", "list"},
		{"companies", "resolve", "삼전"},
		{"companies", "refresh"},
	} {
		_, err := execute(t, "", args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "company service not configured")
	}
}
