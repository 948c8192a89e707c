package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func narrativeRecord() *domain.RawRecord {
	score := 9.8
	return &domain.RawRecord{
		CVEID: "CVE-2024-0001",
		Data: &domain.RecordEnvelope{
			CVE: &domain.CVEItem{
				ID: "CVE-2024-0001",
				Descriptions: domain.DescriptionSet{
					Kind:    domain.DescriptionList,
					Entries: []domain.LocalizedText{{Lang: "en", Value: "Remote code execution in the frobnicator"}},
				},
				Metrics: domain.Metrics{
					CVSSMetricV31: []domain.MetricV31{{
						CVSSData: domain.CVSSData{
							BaseScore:    &score,
							BaseSeverity: "CRITICAL",
							AttackVector: "NETWORK",
						},
					}},
				},
				Weaknesses: []domain.WeaknessEntry{{Type: "Primary: CWE-79"}},
				References: []domain.Reference{
					{URL: "https://github.com/x/poc", Tags: []string{"Exploit"}},
					{URL: "https://vendor.example/advisory", Tags: []string{"Vendor Advisory"}},
				},
			},
		},
	}
}

func TestOpenAIClientNoCredential(t *testing.T) {
	client := NewOpenAIClient("http://127.0.0.1:1", "", time.Second)

	analysis, err := client.Analyze(context.Background(), narrativeRecord())
	require.NoError(t, err)
	assert.Nil(t, analysis)
}

func TestOpenAIClientAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, openAIModel, req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Remote code execution in the frobnicator")
		assert.Contains(t, req.Messages[1].Content, "CRITICAL")
		assert.Contains(t, req.Messages[1].Content, "CWE-79")

		w.Write([]byte(`{"choices":[{"message":{"content":"This vulnerability is severe."}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", 5*time.Second)
	analysis, err := client.Analyze(context.Background(), narrativeRecord())
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, "This vulnerability is severe.", analysis.OpenAI)
}

func TestOpenAIClientRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", 5*time.Second)
	analysis, err := client.Analyze(context.Background(), narrativeRecord())

	// A rate-limit rejection degrades to absence, not to an error.
	require.NoError(t, err)
	assert.Nil(t, analysis)
}

func TestOpenAIClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", 5*time.Second)
	analysis, err := client.Analyze(context.Background(), narrativeRecord())
	assert.Error(t, err)
	assert.Nil(t, analysis)
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", 5*time.Second)
	analysis, err := client.Analyze(context.Background(), narrativeRecord())
	require.NoError(t, err)
	assert.Nil(t, analysis)
}

func TestOpenAIClientNilRecord(t *testing.T) {
	client := NewOpenAIClient("http://127.0.0.1:1", "test-key", time.Second)

	analysis, err := client.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, analysis)
}
