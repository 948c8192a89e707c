package normalize

import (
	"encoding/json"
	"testing"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildThreatIntelligencePriorities(t *testing.T) {
	tests := []struct {
		severity     string
		wantPriority string
	}{
		{domain.SeverityCritical, domain.PriorityHigh},
		{domain.SeverityHigh, domain.PriorityMedium},
		{domain.SeverityMedium, domain.PriorityLow},
		{domain.SeverityLow, domain.PriorityLow},
		{"Unknown", domain.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			intel := BuildThreatIntelligence(tt.severity, "NETWORK", nil)

			assert.Equal(t, tt.severity, intel.ThreatLevel)
			require.Len(t, intel.Recommendations, 3)

			assert.Equal(t, "Update to the latest version", intel.Recommendations[0].Action)
			assert.Equal(t, tt.wantPriority, intel.Recommendations[0].Priority)

			// Monitoring keeps a fixed priority regardless of severity.
			assert.Equal(t, "Monitor for exploitation attempts", intel.Recommendations[1].Action)
			assert.Equal(t, domain.PriorityMedium, intel.Recommendations[1].Priority)

			assert.Equal(t, "Apply available security patches", intel.Recommendations[2].Action)
			assert.Equal(t, tt.wantPriority, intel.Recommendations[2].Priority)
		})
	}
}

func TestBuildThreatIntelligenceDefaults(t *testing.T) {
	intel := BuildThreatIntelligence("", "", nil)

	assert.Equal(t, "Unknown", intel.ThreatLevel)
	require.Len(t, intel.AttackVectors, 1)
	assert.Equal(t, "Unknown", intel.AttackVectors[0].Type)
	assert.NotNil(t, intel.Mitigations)
	assert.Empty(t, intel.Mitigations)
	assert.Nil(t, intel.AIAnalysis)
}

func TestBuildThreatContextDefaults(t *testing.T) {
	context := BuildThreatContext("", nil, nil, nil, nil)

	assert.Equal(t, "Unknown", context.IndustryImpact.Severity)
	assert.NotNil(t, context.News)
	assert.NotNil(t, context.ActiveThreats)
	assert.NotNil(t, context.IndustryImpact.Sectors)
	assert.NotNil(t, context.EmergingTrends)
}

func TestMergeAIAnalysis(t *testing.T) {
	intel := BuildThreatIntelligence(domain.SeverityHigh, "NETWORK", nil)
	serialized, err := json.Marshal(intel)
	require.NoError(t, err)

	merged, err := MergeAIAnalysis(string(serialized), &domain.AIAnalysis{OpenAI: "the analysis"})
	require.NoError(t, err)

	var out domain.ThreatIntelligence
	require.NoError(t, json.Unmarshal([]byte(merged), &out))

	// The narrative is attached without disturbing the base document.
	require.NotNil(t, out.AIAnalysis)
	assert.Equal(t, "the analysis", out.AIAnalysis.OpenAI)
	assert.Equal(t, domain.SeverityHigh, out.ThreatLevel)
	assert.Len(t, out.Recommendations, 3)
}

func TestMergeAIAnalysisNilAnalysis(t *testing.T) {
	merged, err := MergeAIAnalysis(`{"threatLevel":"HIGH"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"threatLevel":"HIGH"}`, merged)
}

func TestMergeAIAnalysisBadDocument(t *testing.T) {
	_, err := MergeAIAnalysis("not json", &domain.AIAnalysis{OpenAI: "x"})
	assert.Error(t, err)
}
