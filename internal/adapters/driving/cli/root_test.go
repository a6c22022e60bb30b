package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_PersistentFlags(t *testing.T) {
	v := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{"search", "retrieve", "companies", "context", "ingest", "settings", "mcp", "tui", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestInitializer_RunsOnce(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	search := &mockSearchService{}
	var calls int
	var got InitConfig
	SetInitializer(func(_ context.Context, cfg InitConfig) (*Services, error) {
		calls++
		got = cfg
		return &Services{Search: search}, nil
	})

	_, err := execute(t, "", "--config", "/tmp/storm.toml", "search", "삼성전자")
	require.NoError(t, err)
	_, err = execute(t, "", "search", "SK하이닉스")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "/tmp/storm.toml", got.ConfigPath)
	assert.Equal(t, "SK하이닉스", search.query)
}

func TestInitializer_PartialServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	companies := &mockCompanyService{names: []string{"삼성전자"}}
	SetInitializer(func(context.Context, InitConfig) (*Services, error) {
		return &Services{Companies: companies}, errors.New("embedding provider not configured")
	})

	out, err := execute(t, "", "companies", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "삼성전자")

	_, err = execute(t, "", "search", "DRAM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured: embedding provider not configured")
}

func TestInitializer_SkippedForVersion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	called := false
	SetInitializer(func(context.Context, InitConfig) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	_, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.False(t, called)
}

func TestExecute_ClosesServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	closed := 0
	SetServices(&Services{Close: func() { closed++ }})
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute(context.Background()))
	assert.Equal(t, 1, closed)

	shutdown()
	assert.Equal(t, 1, closed, "close runs once")
}

func TestNotConfigured(t *testing.T) {
	defer func() { initErr = nil }()

	initErr = nil
	assert.EqualError(t, notConfigured("report"), "report service not configured")

	cause := errors.New("open store: connection refused")
	initErr = cause
	err := notConfigured("report")
	assert.ErrorIs(t, err, cause)
}

func TestRunWatchers(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	runWatchers(context.Background())()

	started, stopped := false, false
	SetServices(&Services{StartWatchers: func(context.Context) func() {
		started = true
		return func() { stopped = true }
	}})

	stop := runWatchers(context.Background())
	assert.True(t, started)
	stop()
	assert.True(t, stopped)
}
