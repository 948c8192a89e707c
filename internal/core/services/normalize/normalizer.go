package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
)

// Classified holds the reference buckets derived from a raw record.
// Exploit evidence wins ties: a reference matching both buckets is
// never duplicated into news.
type Classified struct {
	Exploits    []domain.KnownExploit
	News        []domain.NewsItem
	Mitigations []domain.MitigationRef
}

// ClassifyReferences sorts every reference into at most one of the
// exploit-evidence and news/advisory buckets, and independently into
// the mitigation bucket. published is used as the news timestamp,
// falling back to now when the record carries no publication date.
func ClassifyReferences(refs []domain.Reference, published string, now time.Time) Classified {
	var out Classified

	newsTime := published
	if newsTime == "" {
		newsTime = now.UTC().Format(time.RFC3339)
	}

	for _, ref := range refs {
		lowered := strings.ToLower(ref.URL)

		switch {
		case isExploitEvidence(ref, lowered):
			out.Exploits = append(out.Exploits, domain.KnownExploit{
				Type:        "Exploit",
				Description: joinTags(ref.Tags, "Exploit available"),
				Source:      ref.URL,
			})
		case isNewsReference(ref, lowered):
			out.News = append(out.News, domain.NewsItem{
				Title:       joinTags(ref.Tags, "Related news"),
				Description: ref.URL,
				Source:      ref.URL,
				Time:        newsTime,
			})
		}

		// Patch material is an independent bucket; a vendor advisory
		// that also links exploit code still counts as a mitigation.
		if ref.HasTag("Patch") || ref.HasTag("Vendor Advisory") {
			out.Mitigations = append(out.Mitigations, domain.MitigationRef{
				Strategy:       joinTags(ref.Tags, "Security patch available"),
				Implementation: ref.URL,
				Effectiveness:  "High",
			})
		}
	}

	return out
}

func isExploitEvidence(ref domain.Reference, loweredURL string) bool {
	return ref.HasTag("Exploit") ||
		strings.Contains(loweredURL, "exploit") ||
		strings.Contains(loweredURL, "poc") ||
		strings.Contains(loweredURL, "github.com")
}

func isNewsReference(ref domain.Reference, loweredURL string) bool {
	return ref.HasTag("News") ||
		ref.HasTag("Mailing List") ||
		strings.Contains(loweredURL, "news") ||
		strings.Contains(loweredURL, "blog")
}

func joinTags(tags []string, fallback string) string {
	if len(tags) == 0 {
		return fallback
	}
	return strings.Join(tags, ", ")
}

// ActiveThreats derives the de-duplicated active-threat view from the
// exploit-evidence bucket. Classification is by URL substring with a
// canned description per class; duplicates of the same (type,
// description) pair collapse last-wins while keeping the order of
// first occurrence.
func ActiveThreats(exploits []domain.KnownExploit) []domain.ActiveThreat {
	type key struct{ threatType, description string }

	var order []key
	byKey := make(map[key]domain.ActiveThreat)

	for _, exp := range exploits {
		threatType, description := classifyThreat(strings.ToLower(exp.Source))
		k := key{threatType, description}
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = domain.ActiveThreat{
			Type:        threatType,
			Description: description,
			Source:      exp.Source,
			Confidence:  "High",
		}
	}

	threats := make([]domain.ActiveThreat, 0, len(order))
	for _, k := range order {
		threats = append(threats, byKey[k])
	}
	return threats
}

func classifyThreat(loweredURL string) (string, string) {
	switch {
	case strings.Contains(loweredURL, "github.com"):
		return "GitHub PoC", "Public proof-of-concept code is available on GitHub"
	case strings.Contains(loweredURL, "exploit-db"):
		return "Exploit-DB", "A weaponized exploit is catalogued in Exploit-DB"
	case strings.Contains(loweredURL, "nvd.nist"):
		return "NVD Reference", "Exploitation evidence is referenced by the NVD entry"
	case strings.Contains(loweredURL, "cve.org"), strings.Contains(loweredURL, "cve.mitre"):
		return "CVE Reference", "Exploitation evidence is referenced by the CVE entry"
	case strings.Contains(loweredURL, "poc"):
		return "Proof of Concept", "A public proof of concept demonstrates exploitation"
	default:
		return "Exploit Reference", "An external source documents exploitation activity"
	}
}

// ImpactSectors flattens every configuration node's CPE match criteria
// into one list. Duplicates are kept; the UI renders frequency as-is.
func ImpactSectors(configs []domain.Configuration) []string {
	sectors := []string{}
	for _, cfg := range configs {
		for _, node := range cfg.Nodes {
			for _, match := range node.CPEMatch {
				if match.Criteria != "" {
					sectors = append(sectors, match.Criteria)
				}
			}
		}
	}
	return sectors
}

// BuildReport is the centerpiece transformation: a pure function of
// (raw record, enrichment results, resolved weaknesses) producing the
// flat report document. Enrichment absences degrade to null fields;
// a structurally-broken record fails the whole transformation.
func BuildReport(record *domain.RawRecord, enrich domain.EnrichmentBundle, weaknesses []domain.EnrichedWeakness, now time.Time) (*domain.CVEReport, error) {
	if record == nil || record.Data == nil || record.Data.CVE == nil {
		id := ""
		if record != nil {
			id = record.CVEID
		}
		return nil, domain.NewTransformationError(id, "record payload is missing its cve substructure")
	}

	cve := record.Data.CVE
	report := &domain.CVEReport{
		ID:          cve.ID,
		CVEID:       cve.ID,
		Description: cve.Descriptions.English(),
		Published:   optional(cve.Published),
		Modified:    optional(cve.LastModified),
		CreatedAt:   record.CreatedAt,
	}
	if report.ID == "" {
		report.ID = record.CVEID
		report.CVEID = record.CVEID
	}

	// Scoring fields come from the first CVSS v3.1 block. Each field
	// nulls independently: a present block with partial data only
	// nulls what is missing.
	if len(cve.Metrics.CVSSMetricV31) > 0 {
		data := cve.Metrics.CVSSMetricV31[0].CVSSData
		report.CVSSScore = data.BaseScore
		report.Severity = optional(data.BaseSeverity)
		report.CVSSVector = optional(data.VectorString)
		report.AttackVector = optional(data.AttackVector)
		report.AttackComplexity = optional(data.AttackComplexity)
		report.Privileges = optional(data.PrivilegesRequired)
		report.UserInteraction = optional(data.UserInteraction)
	}

	classified := ClassifyReferences(cve.References, cve.Published, now)
	threats := ActiveThreats(classified.Exploits)
	sectors := ImpactSectors(cve.Configurations)

	var err error
	if report.AffectedProducts, err = marshalDoc(cve.Configurations, "affected products"); err != nil {
		return nil, domain.NewTransformationError(report.CVEID, err.Error())
	}
	if report.KnownExploits, err = marshalDoc(classified.Exploits, "known exploits"); err != nil {
		return nil, domain.NewTransformationError(report.CVEID, err.Error())
	}
	if report.RelatedNews, err = marshalDoc(classified.News, "related news"); err != nil {
		return nil, domain.NewTransformationError(report.CVEID, err.Error())
	}
	if report.References, err = marshalDoc(cve.References, "references"); err != nil {
		return nil, domain.NewTransformationError(report.CVEID, err.Error())
	}
	if report.Weaknesses, err = marshalDoc(weaknesses, "weaknesses"); err != nil {
		return nil, domain.NewTransformationError(report.CVEID, err.Error())
	}

	if enrich.EPSS != nil {
		report.EPSSScore = &enrich.EPSS.Score
		report.EPSSPercentile = &enrich.EPSS.Percentile
	}

	if enrich.Exposure != nil {
		doc, err := marshalDoc(enrich.Exposure, "exposure data")
		if err != nil {
			return nil, domain.NewTransformationError(report.CVEID, err.Error())
		}
		report.ExposureData = &doc
	}

	severity := "Unknown"
	if report.Severity != nil {
		severity = *report.Severity
	}
	attackVector := "Unknown"
	if report.AttackVector != nil {
		attackVector = *report.AttackVector
	}

	intel := BuildThreatIntelligence(severity, attackVector, classified.Mitigations)
	if report.ThreatIntelligence, err = marshalDoc(intel, "threat intelligence"); err != nil {
		return nil, domain.NewTransformationError(report.CVEID, err.Error())
	}

	// The narrative result may arrive on any schedule relative to the
	// base composition, so it is merged into the already-serialized
	// intelligence document: re-parse, attach, re-serialize.
	if enrich.Narrative != nil {
		merged, err := MergeAIAnalysis(report.ThreatIntelligence, enrich.Narrative)
		if err != nil {
			return nil, domain.NewTransformationError(report.CVEID, err.Error())
		}
		report.ThreatIntelligence = merged
	}

	context := BuildThreatContext(severity, classified.News, threats, sectors, weaknesses)
	if report.ThreatContext, err = marshalDoc(context, "threat context"); err != nil {
		return nil, domain.NewTransformationError(report.CVEID, err.Error())
	}

	return report, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// marshalDoc serializes a sub-document, normalizing nil collections to
// empty ones so the client always sees a well-formed JSON value.
func marshalDoc(v interface{}, what string) (string, error) {
	data, err := json.Marshal(normalizeNil(v))
	if err != nil {
		return "", &marshalError{what: what, err: err}
	}
	return string(data), nil
}

func normalizeNil(v interface{}) interface{} {
	switch t := v.(type) {
	case []domain.Configuration:
		if t == nil {
			return []domain.Configuration{}
		}
	case []domain.KnownExploit:
		if t == nil {
			return []domain.KnownExploit{}
		}
	case []domain.NewsItem:
		if t == nil {
			return []domain.NewsItem{}
		}
	case []domain.Reference:
		if t == nil {
			return []domain.Reference{}
		}
	case []domain.EnrichedWeakness:
		if t == nil {
			return []domain.EnrichedWeakness{}
		}
	}
	return v
}

type marshalError struct {
	what string
	err  error
}

func (e *marshalError) Error() string {
	return "cannot serialize " + e.what + ": " + e.err.Error()
}

func (e *marshalError) Unwrap() error { return e.err }
