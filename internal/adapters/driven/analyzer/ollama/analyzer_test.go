package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

func TestNewQueryAnalyzer_Defaults(t *testing.T) {
	a := NewQueryAnalyzer(Config{})

	assert.Equal(t, DefaultModel, a.ModelName())
	assert.Equal(t, DefaultBaseURL, a.baseURL)
	assert.NoError(t, a.Close())
}

func TestAnalyze(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{
				Role:    "assistant",
				Content: `{"intent":"analytical","target_companies":["현대엔지니어링"],"is_competitor_query":false,"time_period":"최근 3년","keywords":["수주잔고"]}`,
			},
			Done: true,
		})
	}))
	defer srv.Close()

	a := NewQueryAnalyzer(Config{BaseURL: srv.URL, Model: "llama3.1"})
	qa, err := a.Analyze(context.Background(), "현엔 최근 3년 수주잔고 추이")

	require.NoError(t, err)
	assert.Equal(t, domain.IntentAnalytical, qa.Intent)
	assert.Equal(t, []string{"현대엔지니어링"}, qa.TargetCompanies)
	assert.Equal(t, "최근 3년", qa.TimePeriod)

	assert.Equal(t, "llama3.1", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	assert.Equal(t, 300, got.Options.NumPredict)
	assert.Zero(t, got.Options.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "target_companies")
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http status", http.StatusNotFound, `{"error":"model not found"}`, "status 404"},
		{"error field", http.StatusOK, `{"error":"out of memory"}`, "out of memory"},
		{"bad body", http.StatusOK, `not json`, "decode response"},
		{"no object", http.StatusOK, `{"message":{"role":"assistant","content":"hello"}}`, "no JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewQueryAnalyzer(Config{BaseURL: srv.URL}).Analyze(context.Background(), "q")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, NewQueryAnalyzer(Config{BaseURL: srv.URL}).Ping(context.Background()))

	srv.Close()
	assert.Error(t, NewQueryAnalyzer(Config{BaseURL: srv.URL}).Ping(context.Background()))
}
