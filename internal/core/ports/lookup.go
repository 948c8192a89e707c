package ports

import (
	"context"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
)

// LookupService is the request-facing aggregation pipeline.
type LookupService interface {
	// Lookup validates the identifier, loads the raw record, enriches
	// it and returns the normalized report. Enrichment failures
	// degrade to null fields; validation, missing-record and
	// transformation failures surface as errors.
	Lookup(ctx context.Context, cveID string) (*domain.CVEReport, error)

	// History returns the retained search history, most recent first.
	History(ctx context.Context) ([]domain.SearchEntry, error)

	// ClearHistory removes all search history entries.
	ClearHistory(ctx context.Context) error

	// Count returns the number of stored raw records.
	Count(ctx context.Context) (int, error)
}
