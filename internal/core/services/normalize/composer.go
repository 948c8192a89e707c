package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
)

// BuildThreatIntelligence derives the flat summary view from the
// normalized severity, attack vector and mitigation bucket. The
// recommendation list is fixed; only priorities vary with severity.
// Monitoring stays Medium regardless: detection value is independent
// of the score.
func BuildThreatIntelligence(severity, attackVector string, mitigations []domain.MitigationRef) domain.ThreatIntelligence {
	if severity == "" {
		severity = "Unknown"
	}
	if attackVector == "" {
		attackVector = "Unknown"
	}
	if mitigations == nil {
		mitigations = []domain.MitigationRef{}
	}

	patchPriority := domain.PriorityForSeverity(severity)

	return domain.ThreatIntelligence{
		ThreatLevel: severity,
		AttackVectors: []domain.AttackVectorInfo{
			{
				Type:        attackVector,
				Description: "Attack vector from CVSS metrics",
				Risk:        severity,
			},
		},
		Mitigations: mitigations,
		Recommendations: []domain.Recommendation{
			{
				Action:    "Update to the latest version",
				Priority:  patchPriority,
				Rationale: "Keeping software up to date is crucial for security",
			},
			{
				Action:    "Monitor for exploitation attempts",
				Priority:  domain.PriorityMedium,
				Rationale: "Early detection can prevent successful attacks",
			},
			{
				Action:    "Apply available security patches",
				Priority:  patchPriority,
				Rationale: "Patches address known vulnerabilities",
			},
		},
	}
}

// BuildThreatContext derives the narrative view from the classified
// buckets and the resolved weakness list.
func BuildThreatContext(severity string, news []domain.NewsItem, threats []domain.ActiveThreat, sectors []string, weaknesses []domain.EnrichedWeakness) domain.ThreatContext {
	if severity == "" {
		severity = "Unknown"
	}
	if news == nil {
		news = []domain.NewsItem{}
	}
	if threats == nil {
		threats = []domain.ActiveThreat{}
	}
	if sectors == nil {
		sectors = []string{}
	}
	if weaknesses == nil {
		weaknesses = []domain.EnrichedWeakness{}
	}

	return domain.ThreatContext{
		News:          news,
		ActiveThreats: threats,
		IndustryImpact: domain.IndustryImpact{
			Severity:    severity,
			Description: "Based on CVSS severity and affected products",
			Sectors:     sectors,
		},
		EmergingTrends: weaknesses,
	}
}

// MergeAIAnalysis attaches the narrative analysis to an
// already-serialized threat intelligence document. The document is
// re-parsed and re-serialized so the narrative is never silently
// dropped by appending to a stale in-memory copy.
func MergeAIAnalysis(serialized string, analysis *domain.AIAnalysis) (string, error) {
	if analysis == nil {
		return serialized, nil
	}

	var intel domain.ThreatIntelligence
	if err := json.Unmarshal([]byte(serialized), &intel); err != nil {
		return "", fmt.Errorf("cannot re-parse threat intelligence: %w", err)
	}

	intel.AIAnalysis = analysis

	merged, err := json.Marshal(intel)
	if err != nil {
		return "", fmt.Errorf("cannot re-serialize threat intelligence: %w", err)
	}
	return string(merged), nil
}
