package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEPSSClientParsesScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CVE-2024-0001", r.URL.Query().Get("cve"))
		w.Write([]byte(`{"data":[{"cve":"CVE-2024-0001","epss":"0.944670000","percentile":"0.999460000"}]}`))
	}))
	defer server.Close()

	client := NewEPSSClient(server.URL, 5*time.Second)
	result, err := client.GetScore(context.Background(), "CVE-2024-0001")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.InDelta(t, 0.94467, result.Score, 1e-9)
	assert.InDelta(t, 0.99946, result.Percentile, 1e-9)
}

func TestEPSSClientNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewEPSSClient(server.URL, 5*time.Second)
	result, err := client.GetScore(context.Background(), "CVE-1999-0001")

	// An empty result set is an absence, not an error.
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestEPSSClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewEPSSClient(server.URL, 5*time.Second)
	result, err := client.GetScore(context.Background(), "CVE-2024-0001")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestEPSSClientUnparsableScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"cve":"CVE-2024-0001","epss":"not-a-number","percentile":"0.5"}]}`))
	}))
	defer server.Close()

	client := NewEPSSClient(server.URL, 5*time.Second)
	_, err := client.GetScore(context.Background(), "CVE-2024-0001")
	assert.Error(t, err)
}
