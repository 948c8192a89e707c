package normalize

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(url string, tags ...string) domain.Reference {
	return domain.Reference{URL: url, Tags: tags}
}

func TestClassifyReferences(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		refs            []domain.Reference
		wantExploits    int
		wantNews        int
		wantMitigations int
	}{
		{
			name:         "exploit tag",
			refs:         []domain.Reference{ref("https://example.com/a", "Exploit")},
			wantExploits: 1,
		},
		{
			name:         "exploit url substring",
			refs:         []domain.Reference{ref("https://www.exploit-db.com/exploits/12345")},
			wantExploits: 1,
		},
		{
			name:         "github counts as exploit evidence",
			refs:         []domain.Reference{ref("https://github.com/x/poc")},
			wantExploits: 1,
		},
		{
			name:     "news tag",
			refs:     []domain.Reference{ref("https://example.com/a", "News")},
			wantNews: 1,
		},
		{
			name:     "mailing list tag",
			refs:     []domain.Reference{ref("https://example.com/a", "Mailing List")},
			wantNews: 1,
		},
		{
			name:     "blog url",
			refs:     []domain.Reference{ref("https://security.example.com/blog/post")},
			wantNews: 1,
		},
		{
			// A reference matching both buckets lands only in exploits.
			name:         "exploit wins over news",
			refs:         []domain.Reference{ref("https://news.example.com/exploit-release", "News")},
			wantExploits: 1,
			wantNews:     0,
		},
		{
			name:            "patch tag is an independent bucket",
			refs:            []domain.Reference{ref("https://github.com/vendor/fix", "Patch")},
			wantExploits:    1,
			wantMitigations: 1,
		},
		{
			name:            "vendor advisory",
			refs:            []domain.Reference{ref("https://vendor.example.com/advisory", "Vendor Advisory")},
			wantMitigations: 1,
		},
		{
			name: "unclassified reference lands nowhere",
			refs: []domain.Reference{ref("https://example.com/page")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyReferences(tt.refs, "", now)
			assert.Len(t, got.Exploits, tt.wantExploits)
			assert.Len(t, got.News, tt.wantNews)
			assert.Len(t, got.Mitigations, tt.wantMitigations)
		})
	}
}

func TestClassifyReferencesNewsTimestamp(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	refs := []domain.Reference{ref("https://example.com/a", "News")}

	withPublished := ClassifyReferences(refs, "2023-02-03T04:05:06.000", now)
	require.Len(t, withPublished.News, 1)
	assert.Equal(t, "2023-02-03T04:05:06.000", withPublished.News[0].Time)

	withoutPublished := ClassifyReferences(refs, "", now)
	require.Len(t, withoutPublished.News, 1)
	assert.Equal(t, now.Format(time.RFC3339), withoutPublished.News[0].Time)
}

func TestActiveThreats(t *testing.T) {
	exploits := []domain.KnownExploit{
		{Source: "https://github.com/a/poc-one"},
		{Source: "https://www.exploit-db.com/exploits/1"},
		{Source: "https://github.com/b/poc-two"},
		{Source: "https://nvd.nist.gov/vuln/detail/CVE-2024-0001"},
		{Source: "https://somewhere.example.com/writeup"},
	}

	threats := ActiveThreats(exploits)
	require.Len(t, threats, 4)

	// First occurrence order is kept, last duplicate's source wins.
	assert.Equal(t, "GitHub PoC", threats[0].Type)
	assert.Equal(t, "https://github.com/b/poc-two", threats[0].Source)
	assert.Equal(t, "Exploit-DB", threats[1].Type)
	assert.Equal(t, "NVD Reference", threats[2].Type)
	assert.Equal(t, "Exploit Reference", threats[3].Type)

	for _, threat := range threats {
		assert.Equal(t, "High", threat.Confidence)
		assert.NotEmpty(t, threat.Description)
	}
}

func TestImpactSectors(t *testing.T) {
	configs := []domain.Configuration{
		{
			Nodes: []domain.ConfigurationNode{
				{CPEMatch: []domain.CPEMatch{
					{Criteria: "cpe:2.3:a:vendor:app:1.0"},
					{Criteria: ""},
				}},
				{CPEMatch: []domain.CPEMatch{
					{Criteria: "cpe:2.3:a:vendor:app:2.0"},
				}},
			},
		},
	}

	sectors := ImpactSectors(configs)
	assert.Equal(t, []string{"cpe:2.3:a:vendor:app:1.0", "cpe:2.3:a:vendor:app:2.0"}, sectors)

	assert.Empty(t, ImpactSectors(nil))
}

func baseScore(v float64) *float64 { return &v }

func sampleRecord() *domain.RawRecord {
	return &domain.RawRecord{
		CVEID:     "CVE-2024-0001",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Data: &domain.RecordEnvelope{
			CVE: &domain.CVEItem{
				ID: "CVE-2024-0001",
				Descriptions: domain.DescriptionSet{
					Kind: domain.DescriptionList,
					Entries: []domain.LocalizedText{
						{Lang: "es", Value: "descripción"},
						{Lang: "en", Value: "A test vulnerability"},
					},
				},
				Metrics: domain.Metrics{
					CVSSMetricV31: []domain.MetricV31{{
						CVSSData: domain.CVSSData{
							VectorString:       "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
							BaseScore:          baseScore(9.8),
							BaseSeverity:       domain.SeverityCritical,
							AttackVector:       "NETWORK",
							AttackComplexity:   "LOW",
							PrivilegesRequired: "NONE",
							UserInteraction:    "NONE",
						},
					}},
				},
				References: []domain.Reference{
					ref("https://github.com/x/poc", "Exploit"),
					ref("https://vendor.example.com/advisory", "Vendor Advisory"),
					ref("https://security.example.com/blog/post"),
				},
				Published:    "2024-01-15T10:00:00.000",
				LastModified: "2024-02-01T10:00:00.000",
			},
		},
	}
}

func TestBuildReportFullRecord(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	record := sampleRecord()

	enrich := domain.EnrichmentBundle{
		EPSS: &domain.EPSSResult{Score: 0.944, Percentile: 0.999},
		Exposure: &domain.ExposureResult{
			Summary: "Example summary",
			Matches: []domain.ExposureMatch{{Location: "Berlin, Germany", Host: "10.0.0.1", Timestamp: "2024-05-01"}},
			Total:   1,
		},
		Narrative: &domain.AIAnalysis{OpenAI: "narrative analysis"},
	}
	weaknesses := []domain.EnrichedWeakness{
		{ID: "CWE-79", Type: "Weakness", Description: "XSS", Severity: domain.SeverityCritical, Implication: "x"},
	}

	report, err := BuildReport(record, enrich, weaknesses, now)
	require.NoError(t, err)

	assert.Equal(t, "CVE-2024-0001", report.ID)
	assert.Equal(t, "CVE-2024-0001", report.CVEID)
	assert.Equal(t, "A test vulnerability", report.Description)

	require.NotNil(t, report.CVSSScore)
	assert.Equal(t, 9.8, *report.CVSSScore)
	require.NotNil(t, report.Severity)
	assert.Equal(t, domain.SeverityCritical, *report.Severity)
	require.NotNil(t, report.AttackVector)
	assert.Equal(t, "NETWORK", *report.AttackVector)

	require.NotNil(t, report.EPSSScore)
	assert.Equal(t, 0.944, *report.EPSSScore)

	require.NotNil(t, report.ExposureData)
	var exposure domain.ExposureResult
	require.NoError(t, json.Unmarshal([]byte(*report.ExposureData), &exposure))
	assert.Equal(t, 1, exposure.Total)

	var exploits []domain.KnownExploit
	require.NoError(t, json.Unmarshal([]byte(report.KnownExploits), &exploits))
	require.Len(t, exploits, 1)
	assert.Equal(t, "https://github.com/x/poc", exploits[0].Source)

	var news []domain.NewsItem
	require.NoError(t, json.Unmarshal([]byte(report.RelatedNews), &news))
	assert.Len(t, news, 1)

	// The narrative lands inside the serialized intelligence document.
	var intel domain.ThreatIntelligence
	require.NoError(t, json.Unmarshal([]byte(report.ThreatIntelligence), &intel))
	assert.Equal(t, domain.SeverityCritical, intel.ThreatLevel)
	require.NotNil(t, intel.AIAnalysis)
	assert.Equal(t, "narrative analysis", intel.AIAnalysis.OpenAI)
	require.Len(t, intel.Mitigations, 1)

	var context domain.ThreatContext
	require.NoError(t, json.Unmarshal([]byte(report.ThreatContext), &context))
	require.Len(t, context.ActiveThreats, 1)
	assert.Equal(t, "GitHub PoC", context.ActiveThreats[0].Type)
	assert.Equal(t, domain.SeverityCritical, context.IndustryImpact.Severity)
	assert.Len(t, context.EmergingTrends, 1)
}

func TestBuildReportDegradesWithoutMetrics(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &domain.RawRecord{
		CVEID:     "CVE-2024-0002",
		CreatedAt: now,
		Data: &domain.RecordEnvelope{
			CVE: &domain.CVEItem{ID: "CVE-2024-0002"},
		},
	}

	report, err := BuildReport(record, domain.EnrichmentBundle{}, nil, now)
	require.NoError(t, err)

	assert.Nil(t, report.CVSSScore)
	assert.Nil(t, report.Severity)
	assert.Nil(t, report.CVSSVector)
	assert.Nil(t, report.EPSSScore)
	assert.Nil(t, report.ExposureData)
	assert.Equal(t, domain.NoDescription, report.Description)

	// Absent collections serialize as empty, never null.
	assert.Equal(t, "[]", report.AffectedProducts)
	assert.Equal(t, "[]", report.KnownExploits)
	assert.Equal(t, "[]", report.RelatedNews)
	assert.Equal(t, "[]", report.References)
	assert.Equal(t, "[]", report.Weaknesses)

	var intel domain.ThreatIntelligence
	require.NoError(t, json.Unmarshal([]byte(report.ThreatIntelligence), &intel))
	assert.Equal(t, "Unknown", intel.ThreatLevel)
	assert.Nil(t, intel.AIAnalysis)
}

func TestBuildReportPartialMetricBlock(t *testing.T) {
	now := time.Now()
	record := sampleRecord()
	record.Data.CVE.Metrics.CVSSMetricV31[0].CVSSData = domain.CVSSData{
		BaseSeverity: domain.SeverityHigh,
	}

	report, err := BuildReport(record, domain.EnrichmentBundle{}, nil, now)
	require.NoError(t, err)

	// Each scoring field nulls independently.
	require.NotNil(t, report.Severity)
	assert.Equal(t, domain.SeverityHigh, *report.Severity)
	assert.Nil(t, report.CVSSScore)
	assert.Nil(t, report.AttackVector)
	assert.Nil(t, report.CVSSVector)
}

func TestBuildReportMalformedRecord(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		record *domain.RawRecord
	}{
		{"nil record", nil},
		{"nil payload", &domain.RawRecord{CVEID: "CVE-2024-0003"}},
		{"nil cve", &domain.RawRecord{CVEID: "CVE-2024-0003", Data: &domain.RecordEnvelope{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildReport(tt.record, domain.EnrichmentBundle{}, nil, now)
			var transformErr *domain.TransformationError
			assert.True(t, errors.As(err, &transformErr))
		})
	}
}

func TestBuildReportFallsBackToStoredID(t *testing.T) {
	now := time.Now()
	record := sampleRecord()
	record.Data.CVE.ID = ""

	report, err := BuildReport(record, domain.EnrichmentBundle{}, nil, now)
	require.NoError(t, err)
	assert.Equal(t, "CVE-2024-0001", report.ID)
	assert.Equal(t, "CVE-2024-0001", report.CVEID)
}
