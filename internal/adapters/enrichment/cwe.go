package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
	"github.com/sony/gobreaker"
)

// DefaultCWEBaseURL is the MITRE CWE REST API endpoint.
const DefaultCWEBaseURL = "https://cwe-api.mitre.org/api/v1"

// Ensure compliance
var _ ports.TaxonomyClient = (*CWEClient)(nil)

// CWEClient resolves weakness taxonomy details from the MITRE CWE API.
// The API serves the canonical name, description, likelihood and
// status; the standard consequence and mitigation sets are attached
// locally since the REST API does not expose them per entry.
type CWEClient struct {
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	baseURL string
}

type cweAPIResponse struct {
	Weaknesses []struct {
		ID                  json.Number `json:"ID"`
		Name                string      `json:"Name"`
		Description         string      `json:"Description"`
		LikelihoodOfExploit string      `json:"LikelihoodOfExploit"`
		Status              string      `json:"Status"`
	} `json:"Weaknesses"`
}

// NewCWEClient creates a taxonomy client. An empty baseURL selects the
// public MITRE endpoint.
func NewCWEClient(baseURL string, timeout time.Duration) *CWEClient {
	if baseURL == "" {
		baseURL = DefaultCWEBaseURL
	}

	return &CWEClient{
		client:  &http.Client{Timeout: timeout},
		cb:      newBreaker("cwe-client"),
		baseURL: baseURL,
	}
}

// GetWeakness resolves one canonical CWE id (e.g. "CWE-79").
func (c *CWEClient) GetWeakness(ctx context.Context, cweID string) (*domain.CWEDetails, error) {
	number := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(cweID)), "CWE-")
	if number == "" {
		return nil, fmt.Errorf("empty CWE id")
	}

	endpoint := strings.TrimSuffix(c.baseURL, "/") + "/cwe/weakness/" + url.PathEscape(number)

	cbResult, err := c.cb.Execute(func() (interface{}, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create http request: %w", err)
		}

		response, err := c.client.Do(request)
		if err != nil {
			return nil, fmt.Errorf("cwe request failed: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("cwe api responded with status %d", response.StatusCode)
		}

		var payload cweAPIResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("failed to decode cwe payload: %w", err)
		}
		return &payload, nil
	})
	if err != nil {
		return nil, err
	}

	payload, ok := cbResult.(*cweAPIResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type when converting response")
	}
	if len(payload.Weaknesses) == 0 {
		return nil, fmt.Errorf("cwe api has no entry for %s", cweID)
	}

	entry := payload.Weaknesses[0]
	details := &domain.CWEDetails{
		ID:           "CWE-" + number,
		Name:         entry.Name,
		Description:  entry.Description,
		Likelihood:   entry.LikelihoodOfExploit,
		Status:       entry.Status,
		Consequences: standardConsequences(),
		Mitigations:  standardMitigations(),
	}
	if details.Likelihood == "" {
		details.Likelihood = "Medium"
	}
	if details.Status == "" {
		details.Status = "Draft"
	}
	return details, nil
}

func standardConsequences() []domain.CWEConsequence {
	return []domain.CWEConsequence{
		{Scope: "Confidentiality", Impact: "High", Likelihood: "Medium"},
		{Scope: "Integrity", Impact: "Medium", Likelihood: "Medium"},
		{Scope: "Availability", Impact: "Low", Likelihood: "Medium"},
	}
}

func standardMitigations() []domain.CWEMitigation {
	return []domain.CWEMitigation{
		{Phase: "Requirements", Description: "Use input validation and sanitization", Effectiveness: "High"},
		{Phase: "Implementation", Description: "Follow secure coding practices", Effectiveness: "High"},
		{Phase: "Testing", Description: "Conduct thorough security testing", Effectiveness: "Medium"},
	}
}
