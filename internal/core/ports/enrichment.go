package ports

import (
	"context"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
)

// ScoringClient resolves the exploit-prediction score for a CVE.
// Implementations return (nil, err) on any transport or payload
// failure; the caller converts errors into absence.
type ScoringClient interface {
	GetScore(ctx context.Context, cveID string) (*domain.EPSSResult, error)
}

// ExposureClient resolves network-exposure intelligence for a CVE.
// A missing credential short-circuits to (nil, nil) without a call.
type ExposureClient interface {
	GetExposure(ctx context.Context, cveID string) (*domain.ExposureResult, error)
}

// NarrativeClient requests a natural-language threat analysis for a
// raw record. Rate-limit rejections surface as (nil, nil) so they are
// indistinguishable from other absences to the caller; the client
// logs the distinguished reason itself.
type NarrativeClient interface {
	Analyze(ctx context.Context, record *domain.RawRecord) (*domain.AIAnalysis, error)
}

// TaxonomyClient resolves CWE taxonomy details.
type TaxonomyClient interface {
	// GetWeakness returns details for one canonical CWE id, or
	// (nil, err) when the provider cannot serve it.
	GetWeakness(ctx context.Context, cweID string) (*domain.CWEDetails, error)
}

// LookupNotifier pushes lookup events to connected UI clients.
type LookupNotifier interface {
	NotifyLookup(cveID string, severity string)
}
