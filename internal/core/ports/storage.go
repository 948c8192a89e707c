package ports

import (
	"context"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
)

// HistoryRepository defines the persistence layer for the bounded
// search history log.
type HistoryRepository interface {
	// Upsert records a lookup keyed by CVE id, overwriting the
	// description and timestamp of an existing entry, then trims the
	// table so at most domain.HistoryLimit entries survive.
	Upsert(ctx context.Context, entry domain.SearchEntry) error

	// List returns the retained entries, most recent first.
	List(ctx context.Context) ([]domain.SearchEntry, error)

	// Clear removes all entries. Idempotent.
	Clear(ctx context.Context) error
}
