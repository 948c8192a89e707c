package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// RawRecord is the stored canonical CVE record as mirrored from an NVD
// snapshot. The nested Data payload is immutable for the duration of a
// lookup request.
type RawRecord struct {
	CVEID     string          `json:"cveId"`
	Data      *RecordEnvelope `json:"fullJson"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RecordEnvelope mirrors the top-level NVD 2.0 vulnerability wrapper.
type RecordEnvelope struct {
	CVE *CVEItem `json:"cve"`
}

// CVEItem is the NVD-shaped vulnerability body.
type CVEItem struct {
	ID             string          `json:"id"`
	Descriptions   DescriptionSet  `json:"descriptions"`
	Metrics        Metrics         `json:"metrics"`
	Configurations []Configuration `json:"configurations,omitempty"`
	References     []Reference     `json:"references,omitempty"`
	Weaknesses     []WeaknessEntry `json:"weaknesses,omitempty"`
	Published      string          `json:"published,omitempty"`
	LastModified   string          `json:"lastModified,omitempty"`
}

// LocalizedText is a language-tagged description value.
type LocalizedText struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// DescriptionKind discriminates the shapes the descriptions field has
// taken across NVD snapshot generations.
type DescriptionKind int

const (
	DescriptionAbsent DescriptionKind = iota
	DescriptionList
	DescriptionString
	DescriptionObject
)

// DescriptionSet is a tagged variant over the historical shapes of the
// NVD descriptions field: a list of localized entries, a bare string, a
// single localized object, or absent. Upstream snapshots have drifted
// between all four.
type DescriptionSet struct {
	Kind    DescriptionKind
	Entries []LocalizedText
	Text    string
}

// NoDescription is the fallback used whenever no usable English text
// can be extracted from a record.
const NoDescription = "No description available"

// UnmarshalJSON classifies the raw shape once so that callers never
// have to type-probe the field themselves.
func (d *DescriptionSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		d.Kind = DescriptionAbsent
		return nil
	}

	switch trimmed[0] {
	case '[':
		var entries []LocalizedText
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		d.Kind = DescriptionList
		d.Entries = entries
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		d.Kind = DescriptionString
		d.Text = text
	case '{':
		var single LocalizedText
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		d.Kind = DescriptionObject
		d.Entries = []LocalizedText{single}
	default:
		d.Kind = DescriptionAbsent
	}
	return nil
}

// MarshalJSON renders the set back in its original shape.
func (d DescriptionSet) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DescriptionList:
		return json.Marshal(d.Entries)
	case DescriptionString:
		return json.Marshal(d.Text)
	case DescriptionObject:
		if len(d.Entries) > 0 {
			return json.Marshal(d.Entries[0])
		}
		return []byte("null"), nil
	default:
		return []byte("null"), nil
	}
}

// English resolves the set to a plain string: the English-tagged list
// entry wins, then the bare string, then the single object's value,
// then the fixed fallback.
func (d DescriptionSet) English() string {
	switch d.Kind {
	case DescriptionList:
		for _, e := range d.Entries {
			if e.Lang == "en" && e.Value != "" {
				return e.Value
			}
		}
	case DescriptionString:
		if d.Text != "" {
			return d.Text
		}
	case DescriptionObject:
		if len(d.Entries) > 0 && d.Entries[0].Value != "" {
			return d.Entries[0].Value
		}
	}
	return NoDescription
}

// Metrics holds the CVSS metric blocks of a record. Only v3.1 is
// consumed by the normalizer.
type Metrics struct {
	CVSSMetricV31 []MetricV31 `json:"cvssMetricV31,omitempty"`
}

// MetricV31 is one CVSS v3.1 scoring block.
type MetricV31 struct {
	Source   string   `json:"source,omitempty"`
	Type     string   `json:"type,omitempty"`
	CVSSData CVSSData `json:"cvssData"`
}

// CVSSData carries the v3.1 base metrics. BaseScore is a pointer so a
// present block with a missing score still nulls only that field.
type CVSSData struct {
	Version            string   `json:"version,omitempty"`
	VectorString       string   `json:"vectorString,omitempty"`
	BaseScore          *float64 `json:"baseScore,omitempty"`
	BaseSeverity       string   `json:"baseSeverity,omitempty"`
	AttackVector       string   `json:"attackVector,omitempty"`
	AttackComplexity   string   `json:"attackComplexity,omitempty"`
	PrivilegesRequired string   `json:"privilegesRequired,omitempty"`
	UserInteraction    string   `json:"userInteraction,omitempty"`
}

// Configuration describes affected product ranges. Passed through to
// the report unmodified.
type Configuration struct {
	Operator string              `json:"operator,omitempty"`
	Negate   bool                `json:"negate,omitempty"`
	Nodes    []ConfigurationNode `json:"nodes,omitempty"`
}

// ConfigurationNode groups CPE match expressions.
type ConfigurationNode struct {
	Operator string     `json:"operator,omitempty"`
	Negate   bool       `json:"negate,omitempty"`
	CPEMatch []CPEMatch `json:"cpeMatch,omitempty"`
}

// CPEMatch is one affected-product criteria expression.
type CPEMatch struct {
	Vulnerable            bool   `json:"vulnerable"`
	Criteria              string `json:"criteria,omitempty"`
	VersionStartIncluding string `json:"versionStartIncluding,omitempty"`
	VersionEndIncluding   string `json:"versionEndIncluding,omitempty"`
	VersionEndExcluding   string `json:"versionEndExcluding,omitempty"`
	MatchCriteriaID       string `json:"matchCriteriaId,omitempty"`
}

// Reference is an external link attached to a record.
type Reference struct {
	URL    string   `json:"url"`
	Source string   `json:"source,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// HasTag reports whether the reference carries the given tag.
func (r Reference) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// WeaknessEntry is a raw CWE classification on a record. Type may carry
// a "Primary:"/"Secondary:" qualifier prefix.
type WeaknessEntry struct {
	Source      string          `json:"source,omitempty"`
	Type        string          `json:"type,omitempty"`
	Description []LocalizedText `json:"description,omitempty"`
}
