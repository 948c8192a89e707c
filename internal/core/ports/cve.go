package ports

import (
	"context"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
)

// CVERepository defines the interface for raw CVE record persistence.
type CVERepository interface {
	// GetByID retrieves a raw record by its CVE id. Returns
	// (nil, nil) when the record does not exist.
	GetByID(ctx context.Context, cveID string) (*domain.RawRecord, error)

	// Upsert inserts or replaces a raw record.
	Upsert(ctx context.Context, record domain.RawRecord) error

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)

	// Close closes the underlying database.
	Close() error
}
