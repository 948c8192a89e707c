package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
	"github.com/sony/gobreaker"
)

// DefaultEPSSBaseURL is the FIRST.org EPSS API endpoint.
const DefaultEPSSBaseURL = "https://api.first.org/data/v1/epss"

// Ensure compliance
var _ ports.ScoringClient = (*EPSSClient)(nil)

// EPSSClient fetches exploit-prediction scores from the FIRST EPSS
// API. The upstream serves scores as string-encoded decimals.
type EPSSClient struct {
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	baseURL string
}

type epssResponse struct {
	Data []struct {
		CVE        string `json:"cve"`
		EPSS       string `json:"epss"`
		Percentile string `json:"percentile"`
	} `json:"data"`
}

// NewEPSSClient creates a scoring client. An empty baseURL selects the
// public FIRST endpoint.
func NewEPSSClient(baseURL string, timeout time.Duration) *EPSSClient {
	if baseURL == "" {
		baseURL = DefaultEPSSBaseURL
	}

	return &EPSSClient{
		client:  &http.Client{Timeout: timeout},
		cb:      newBreaker("epss-client"),
		baseURL: baseURL,
	}
}

// GetScore returns the EPSS score and percentile for a CVE, or
// (nil, nil) when the provider has no data for it. Transport and
// payload errors are returned so the caller's error boundary can
// convert them into absence.
func (c *EPSSClient) GetScore(ctx context.Context, cveID string) (*domain.EPSSResult, error) {
	endpoint := c.baseURL + "?cve=" + url.QueryEscape(cveID)

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}

		response, err := c.client.Do(request)
		if err != nil {
			return nil, fmt.Errorf("epss request failed: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("epss responded with status %d", response.StatusCode)
		}

		var payload epssResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("failed to decode epss payload: %w", err)
		}
		return &payload, nil
	})
	if err != nil {
		return nil, err
	}

	payload, ok := cbResult.(*epssResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}

	// An empty result set is an ordinary absence, not a failure.
	if len(payload.Data) == 0 {
		slog.Debug("no EPSS data for identifier", "cve", cveID)
		return nil, nil
	}

	entry := payload.Data[0]
	score, err := strconv.ParseFloat(entry.EPSS, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse epss score %q: %w", entry.EPSS, err)
	}
	percentile, err := strconv.ParseFloat(entry.Percentile, 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse epss percentile %q: %w", entry.Percentile, err)
	}

	return &domain.EPSSResult{Score: score, Percentile: percentile}, nil
}
