package normalize

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalWeaknessID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"CWE-79", "CWE-79"},
		{"cwe-79", "CWE-79"},
		{"79", "CWE-79"},
		{"Primary: CWE-89", "CWE-89"},
		{"Secondary: 120", "CWE-120"},
		{"  CWE-22  ", "CWE-22"},
		{"", "Unknown"},
		{"Primary:", "Unknown"},
		{"NVD-CWE-noinfo", "CWE-NVD-CWE-NOINFO"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalWeaknessID(tt.raw))
		})
	}
}

type stubTaxonomy struct {
	mu      sync.Mutex
	details map[string]*domain.CWEDetails
	calls   []string
}

func (s *stubTaxonomy) GetWeakness(_ context.Context, id string) (*domain.CWEDetails, error) {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	s.mu.Unlock()
	if d, ok := s.details[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("no entry for %s", id)
}

func englishDescription(value string) []domain.LocalizedText {
	return []domain.LocalizedText{{Lang: "en", Value: value}}
}

func TestResolveDeduplicatesLastWins(t *testing.T) {
	resolver := NewWeaknessResolver(nil)

	entries := []domain.WeaknessEntry{
		{Type: "CWE-79", Description: englishDescription("first")},
		{Type: "CWE-89", Description: englishDescription("injection")},
		{Type: "Primary: CWE-79", Description: englishDescription("second")},
	}

	resolved := resolver.Resolve(context.Background(), entries, domain.SeverityHigh)
	require.Len(t, resolved, 2)

	// First-occurrence order, last-entry content.
	assert.Equal(t, "CWE-79", resolved[0].ID)
	assert.Equal(t, "second", resolved[0].Description)
	assert.Equal(t, "CWE-89", resolved[1].ID)

	for _, w := range resolved {
		assert.Equal(t, domain.SeverityHigh, w.Severity)
		assert.Equal(t, "Weakness", w.Type)
		assert.Nil(t, w.Details)
	}
}

func TestResolveMissingDescription(t *testing.T) {
	resolver := NewWeaknessResolver(nil)

	entries := []domain.WeaknessEntry{
		{Type: "CWE-79"},
		{Type: "CWE-89", Description: []domain.LocalizedText{{Lang: "es", Value: "inyección"}}},
	}

	resolved := resolver.Resolve(context.Background(), entries, "")
	require.Len(t, resolved, 2)
	assert.Equal(t, "no description", resolved[0].Description)
	assert.Equal(t, "no description", resolved[1].Description)
	assert.Equal(t, "Unknown", resolved[0].Severity)
}

func TestResolveAttachesTaxonomyDetails(t *testing.T) {
	taxonomy := &stubTaxonomy{details: map[string]*domain.CWEDetails{
		"CWE-79": {ID: "CWE-79", Name: "Cross-site Scripting"},
	}}
	resolver := NewWeaknessResolver(taxonomy)

	entries := []domain.WeaknessEntry{
		{Type: "CWE-79", Description: englishDescription("xss")},
		{Type: "CWE-89", Description: englishDescription("sqli")},
		{Type: ""},
	}

	resolved := resolver.Resolve(context.Background(), entries, domain.SeverityMedium)
	require.Len(t, resolved, 3)

	// Provider hit attaches details, provider miss degrades silently.
	require.NotNil(t, resolved[0].Details)
	assert.Equal(t, "Cross-site Scripting", resolved[0].Details.Name)
	assert.Nil(t, resolved[1].Details)

	// Unknown ids never reach the provider.
	assert.Equal(t, "Unknown", resolved[2].ID)
	assert.NotContains(t, taxonomy.calls, "Unknown")
}

func TestResolveEmptyEntries(t *testing.T) {
	resolver := NewWeaknessResolver(&stubTaxonomy{})
	assert.Empty(t, resolver.Resolve(context.Background(), nil, domain.SeverityLow))
}
