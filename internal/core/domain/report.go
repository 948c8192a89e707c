package domain

import "time"

// Severity tiers as published by NVD.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// Recommendation priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// PriorityForSeverity maps a severity tier to a remediation priority:
// the top tier demands High, the next Medium, everything else Low.
func PriorityForSeverity(severity string) string {
	switch severity {
	case SeverityCritical:
		return PriorityHigh
	case SeverityHigh:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// CVEReport is the flat client-facing document produced for one lookup.
// Sub-documents are serialized JSON strings so the contract stays
// stable for the UI regardless of how the nested shapes evolve.
// Every structurally-absent raw field degrades to null or an empty
// collection; the report is always produced when the raw record exists.
type CVEReport struct {
	ID          string `json:"id"`
	CVEID       string `json:"cveId"`
	Description string `json:"description"`

	CVSSScore *float64 `json:"cvssScore"`
	Severity  *string  `json:"severity"`
	Published *string  `json:"published"`
	Modified  *string  `json:"modified"`

	EPSSScore      *float64 `json:"epssScore"`
	EPSSPercentile *float64 `json:"epssPercentile"`

	CVSSVector       *string `json:"cvssVector"`
	AttackVector     *string `json:"attackVector"`
	AttackComplexity *string `json:"attackComplexity"`
	Privileges       *string `json:"privileges"`
	UserInteraction  *string `json:"userInteraction"`

	AffectedProducts   string  `json:"affectedProducts"`
	KnownExploits      string  `json:"knownExploits"`
	RelatedNews        string  `json:"relatedNews"`
	References         string  `json:"references"`
	Weaknesses         string  `json:"weaknesses"`
	ExposureData       *string `json:"exposureData"`
	ThreatIntelligence string  `json:"threatIntelligence"`
	ThreatContext      string  `json:"threatContext"`

	CreatedAt time.Time `json:"createdAt"`
}

// KnownExploit is one reference classified as exploit evidence.
type KnownExploit struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// NewsItem is one reference classified as news or advisory material.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Time        string `json:"time"`
}

// MitigationRef is one reference classified as patch or vendor
// advisory material. Independent of the exploit/news buckets.
type MitigationRef struct {
	Strategy       string `json:"strategy"`
	Implementation string `json:"implementation"`
	Effectiveness  string `json:"effectiveness"`
}

// ActiveThreat is a de-duplicated, human-readable classification of
// one piece of exploit evidence.
type ActiveThreat struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Confidence  string `json:"confidence"`
}

// EnrichedWeakness is a de-duplicated CWE classification, optionally
// carrying taxonomy details resolved from the CWE provider.
type EnrichedWeakness struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Severity    string      `json:"severity"`
	Implication string      `json:"implication"`
	Details     *CWEDetails `json:"details,omitempty"`
}

// AttackVectorInfo summarizes the attack vector for the threat
// intelligence view.
type AttackVectorInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Risk        string `json:"risk"`
}

// Recommendation is one prioritized remediation action.
type Recommendation struct {
	Action    string `json:"action"`
	Priority  string `json:"priority"`
	Rationale string `json:"rationale"`
}

// AIAnalysis holds the narrative analysis attached to the threat
// intelligence view after composition.
type AIAnalysis struct {
	OpenAI string `json:"openai"`
}

// ThreatIntelligence is the flat synthesized summary view.
type ThreatIntelligence struct {
	ThreatLevel     string             `json:"threatLevel"`
	AttackVectors   []AttackVectorInfo `json:"attackVectors"`
	Mitigations     []MitigationRef    `json:"mitigations"`
	Recommendations []Recommendation   `json:"recommendations"`
	AIAnalysis      *AIAnalysis        `json:"aiAnalysis,omitempty"`
}

// IndustryImpact summarizes exposure across affected product sectors.
type IndustryImpact struct {
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Sectors     []string `json:"sectors"`
}

// ThreatContext is the narrative synthesized view.
type ThreatContext struct {
	News           []NewsItem         `json:"news"`
	ActiveThreats  []ActiveThreat     `json:"activeThreats"`
	IndustryImpact IndustryImpact     `json:"industryImpact"`
	EmergingTrends []EnrichedWeakness `json:"emergingTrends"`
}
