package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
)

// DefaultOpenAIBaseURL is the OpenAI API endpoint.
const DefaultOpenAIBaseURL = "https://api.openai.com"

const (
	openAIModel       = "gpt-3.5-turbo"
	openAIMaxTokens   = 400
	openAITemperature = 0.7

	// maxPromptDescription bounds the prompt size; NVD descriptions
	// occasionally run to several pages.
	maxPromptDescription = 1500
)

const systemPrompt = "You are a senior cybersecurity expert with deep knowledge of vulnerability analysis, " +
	"exploitation techniques, and incident response. Provide comprehensive, actionable analysis that helps " +
	"security teams understand and respond to vulnerabilities effectively. Use clear, professional language " +
	"and structure your response with headers for easy reading."

// Ensure compliance
var _ ports.NarrativeClient = (*OpenAIClient)(nil)

// OpenAIClient requests a short narrative threat analysis for a raw
// record. Without a credential the client short-circuits to absence.
type OpenAIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a narrative analysis client.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	return &OpenAIClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Analyze requests the narrative analysis. Rate-limit rejections are a
// distinguished absence: logged here, surfaced as plain absence.
func (c *OpenAIClient) Analyze(ctx context.Context, record *domain.RawRecord) (*domain.AIAnalysis, error) {
	if c.apiKey == "" {
		slog.Debug("openai credential not configured, skipping narrative analysis")
		return nil, nil
	}
	if record == nil || record.Data == nil || record.Data.CVE == nil {
		return nil, nil
	}

	body, err := json.Marshal(chatRequest{
		Model: openAIModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(record.Data.CVE)},
		},
		MaxTokens:   openAIMaxTokens,
		Temperature: openAITemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.baseURL, "/") + "/v1/chat/completions"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.apiKey)

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusTooManyRequests {
		slog.Warn("openai rate limit reached, skipping narrative analysis", "cve", record.CVEID)
		return nil, nil
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai responded with status %d", response.StatusCode)
	}

	var payload chatResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode openai payload: %w", err)
	}
	if len(payload.Choices) == 0 || payload.Choices[0].Message.Content == "" {
		return nil, nil
	}

	return &domain.AIAnalysis{OpenAI: payload.Choices[0].Message.Content}, nil
}

// buildPrompt summarizes the record for the model: severity, the
// description, weakness ids, attack-vector metrics and the volume of
// exploit/vendor references.
func buildPrompt(cve *domain.CVEItem) string {
	severity := "Unknown"
	score := "Unknown"
	attackVector := "Unknown"
	attackComplexity := "Unknown"
	privileges := "Unknown"
	userInteraction := "Unknown"

	if len(cve.Metrics.CVSSMetricV31) > 0 {
		data := cve.Metrics.CVSSMetricV31[0].CVSSData
		if data.BaseSeverity != "" {
			severity = data.BaseSeverity
		}
		if data.BaseScore != nil {
			score = fmt.Sprintf("%.1f", *data.BaseScore)
		}
		if data.AttackVector != "" {
			attackVector = data.AttackVector
		}
		if data.AttackComplexity != "" {
			attackComplexity = data.AttackComplexity
		}
		if data.PrivilegesRequired != "" {
			privileges = data.PrivilegesRequired
		}
		if data.UserInteraction != "" {
			userInteraction = data.UserInteraction
		}
	}

	description := cve.Descriptions.English()
	if len(description) > maxPromptDescription {
		description = description[:maxPromptDescription] + "..."
	}

	var cweIDs []string
	for _, w := range cve.Weaknesses {
		id := strings.TrimSpace(w.Type)
		if idx := strings.Index(id, ":"); idx >= 0 {
			id = strings.TrimSpace(id[idx+1:])
		}
		if id != "" {
			cweIDs = append(cweIDs, id)
		}
	}
	cweInfo := "No CWE information available"
	if len(cweIDs) > 0 {
		cweInfo = "CWE IDs: " + strings.Join(cweIDs, ", ")
	}

	exploitRefs := 0
	vendorRefs := 0
	for _, ref := range cve.References {
		lowered := strings.ToLower(ref.URL)
		if ref.HasTag("Exploit") || strings.Contains(lowered, "exploit") ||
			strings.Contains(lowered, "poc") || strings.Contains(lowered, "github.com") {
			exploitRefs++
		}
		if ref.HasTag("Vendor Advisory") || ref.HasTag("Patch") {
			vendorRefs++
		}
	}

	return fmt.Sprintf(`Analyze CVE with the following information:

**Basic Information:**
- Severity: %s (CVSS: %s)
- Description: %s
- %s

**CVSS Metrics:**
- Attack Vector: %s
- Attack Complexity: %s
- Privileges Required: %s
- User Interaction: %s

**References Found:**
- Exploit References: %d found
- Vendor Advisories: %d found

Provide a comprehensive analysis covering:

**1. Key Risks**
**2. Exploitation Status**
**3. Impact Analysis**
**4. Mitigation & Remediation**
**5. CWE Context**

Keep the analysis concise but comprehensive. Focus on actionable insights for security teams.`,
		severity, score, description, cweInfo,
		attackVector, attackComplexity, privileges, userInteraction,
		exploitRefs, vendorRefs)
}
