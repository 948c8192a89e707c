package domain

// EPSSResult is the exploit-prediction score for one CVE. Both values
// are probabilities in [0,1].
type EPSSResult struct {
	Score      float64 `json:"score"`
	Percentile float64 `json:"percentile"`
}

// ExposureMatch is one observed network exposure for a CVE.
type ExposureMatch struct {
	Location  string `json:"location"`
	Host      string `json:"host"`
	Timestamp string `json:"timestamp"`
}

// ExposureResult is the network-exposure intelligence for one CVE.
type ExposureResult struct {
	Summary string          `json:"summary"`
	Matches []ExposureMatch `json:"matches"`
	Total   int             `json:"total"`
}

// CWEConsequence is one technical impact of a weakness class.
type CWEConsequence struct {
	Scope      string `json:"scope"`
	Impact     string `json:"impact"`
	Likelihood string `json:"likelihood"`
}

// CWEMitigation is one recommended countermeasure for a weakness class.
type CWEMitigation struct {
	Phase         string `json:"phase"`
	Description   string `json:"description"`
	Effectiveness string `json:"effectiveness"`
}

// CWEDetails is the resolved taxonomy entry for one weakness id.
type CWEDetails struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Likelihood   string           `json:"likelihood"`
	Status       string           `json:"status"`
	Consequences []CWEConsequence `json:"consequences,omitempty"`
	Mitigations  []CWEMitigation  `json:"mitigations,omitempty"`
}

// EnrichmentBundle collects whatever the external providers returned
// for one lookup. Every field is optional; an absent provider result
// degrades the corresponding report fields to null.
type EnrichmentBundle struct {
	EPSS      *EPSSResult
	Exposure  *ExposureResult
	Narrative *AIAnalysis
}
