package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
	"github.com/sony/gobreaker"
)

// Default Shodan endpoints.
const (
	DefaultShodanCVEDBURL = "https://cvedb.shodan.io"
	DefaultShodanAPIURL   = "https://api.shodan.io"
)

// Ensure compliance
var _ ports.ExposureClient = (*ShodanClient)(nil)

// ShodanClient resolves network-exposure intelligence: the public CVE
// summary from Shodan's CVE database plus observed exposed hosts from
// the search API. The search API needs a credential; without one the
// client short-circuits to absence and never touches the network.
type ShodanClient struct {
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
	cvedbURL string
	apiURL   string
	apiKey   string
}

type shodanCVESummary struct {
	Summary string `json:"summary"`
}

type shodanSearchResponse struct {
	Matches []struct {
		IPStr     string `json:"ip_str"`
		Timestamp string `json:"timestamp"`
		Location  struct {
			City        string `json:"city"`
			CountryName string `json:"country_name"`
		} `json:"location"`
	} `json:"matches"`
	Total int `json:"total"`
}

// NewShodanClient creates an exposure client. Empty URLs select the
// public Shodan endpoints.
func NewShodanClient(cvedbURL, apiURL, apiKey string, timeout time.Duration) *ShodanClient {
	if cvedbURL == "" {
		cvedbURL = DefaultShodanCVEDBURL
	}
	if apiURL == "" {
		apiURL = DefaultShodanAPIURL
	}

	return &ShodanClient{
		client:   &http.Client{Timeout: timeout},
		cb:       newBreaker("shodan-client"),
		cvedbURL: cvedbURL,
		apiURL:   apiURL,
		apiKey:   apiKey,
	}
}

// GetExposure returns the exposure intelligence for a CVE, or
// (nil, nil) when no credential is configured.
func (c *ShodanClient) GetExposure(ctx context.Context, cveID string) (*domain.ExposureResult, error) {
	if c.apiKey == "" {
		slog.Debug("shodan credential not configured, skipping exposure lookup", "cve", cveID)
		return nil, nil
	}

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		result := &domain.ExposureResult{Matches: []domain.ExposureMatch{}}

		// The summary endpoint is best-effort; exposure matches are
		// still useful without it.
		if summary, err := c.fetchSummary(ctx, cveID); err != nil {
			slog.Debug("shodan summary unavailable", "cve", cveID, "error", err)
		} else {
			result.Summary = summary
		}

		search, err := c.fetchMatches(ctx, cveID)
		if err != nil {
			return nil, err
		}

		result.Total = search.Total
		for _, m := range search.Matches {
			location := m.Location.City
			if m.Location.CountryName != "" {
				if location != "" {
					location += ", "
				}
				location += m.Location.CountryName
			}
			result.Matches = append(result.Matches, domain.ExposureMatch{
				Location:  location,
				Host:      m.IPStr,
				Timestamp: m.Timestamp,
			})
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	result, ok := cbResult.(*domain.ExposureResult)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}
	return result, nil
}

func (c *ShodanClient) fetchSummary(ctx context.Context, cveID string) (string, error) {
	endpoint := strings.TrimSuffix(c.cvedbURL, "/") + "/cve/" + url.PathEscape(cveID)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create http request: %w", err)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("cvedb request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cvedb responded with status %d", response.StatusCode)
	}

	var payload shodanCVESummary
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode cvedb payload: %w", err)
	}
	return payload.Summary, nil
}

func (c *ShodanClient) fetchMatches(ctx context.Context, cveID string) (*shodanSearchResponse, error) {
	endpoint := strings.TrimSuffix(c.apiURL, "/") + "/shodan/host/search?key=" +
		url.QueryEscape(c.apiKey) + "&query=" + url.QueryEscape("vuln:"+cveID)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("shodan search failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shodan responded with status %d", response.StatusCode)
	}

	var payload shodanSearchResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode shodan payload: %w", err)
	}
	return &payload, nil
}
