package normalize

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// UnknownWeaknessID marks entries whose type field carries no usable
// taxonomy id. They stay in the output but skip the provider lookup.
const UnknownWeaknessID = "Unknown"

const noWeaknessDescription = "no description"

// WeaknessResolver de-duplicates the raw record's weakness entries and
// enriches them with taxonomy details fetched in one concurrent batch.
type WeaknessResolver struct {
	taxonomy ports.TaxonomyClient
}

// NewWeaknessResolver creates a resolver backed by the given taxonomy
// provider. A nil client disables enrichment; resolution still runs.
func NewWeaknessResolver(taxonomy ports.TaxonomyClient) *WeaknessResolver {
	return &WeaknessResolver{taxonomy: taxonomy}
}

// CanonicalWeaknessID derives the canonical taxonomy id from a raw
// type field: any "Qualifier:" prefix is stripped and the remainder is
// forced into the CWE- form. An empty type maps to Unknown.
func CanonicalWeaknessID(rawType string) string {
	id := strings.TrimSpace(rawType)
	if idx := strings.Index(id, ":"); idx >= 0 {
		id = strings.TrimSpace(id[idx+1:])
	}
	if id == "" {
		return UnknownWeaknessID
	}
	if !strings.HasPrefix(strings.ToUpper(id), "CWE-") {
		id = "CWE-" + id
	}
	return strings.ToUpper(id)
}

// Resolve produces the ordered, de-duplicated, enriched weakness list
// for a record. De-duplication is by canonical id, last-wins, keeping
// the insertion order of first occurrence. Severity is denormalized
// onto every entry for the UI. Per-id provider failures degrade to an
// entry without details; they never abort the batch.
func (r *WeaknessResolver) Resolve(ctx context.Context, entries []domain.WeaknessEntry, severity string) []domain.EnrichedWeakness {
	if severity == "" {
		severity = "Unknown"
	}

	var order []string
	byID := make(map[string]domain.EnrichedWeakness)

	for _, entry := range entries {
		id := CanonicalWeaknessID(entry.Type)

		description := noWeaknessDescription
		for _, d := range entry.Description {
			if d.Lang == "en" && d.Value != "" {
				description = d.Value
				break
			}
		}

		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = domain.EnrichedWeakness{
			ID:          id,
			Type:        "Weakness",
			Description: description,
			Severity:    severity,
			Implication: "This weakness could lead to security vulnerabilities if not properly addressed",
		}
	}

	details := r.fetchDetails(ctx, order)

	resolved := make([]domain.EnrichedWeakness, 0, len(order))
	for _, id := range order {
		weakness := byID[id]
		weakness.Details = details[id]
		resolved = append(resolved, weakness)
	}
	return resolved
}

// fetchDetails batches taxonomy lookups for the non-Unknown id set.
func (r *WeaknessResolver) fetchDetails(ctx context.Context, ids []string) map[string]*domain.CWEDetails {
	details := make(map[string]*domain.CWEDetails)
	if r.taxonomy == nil {
		return details
	}

	group, gCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, id := range ids {
		if id == UnknownWeaknessID {
			continue
		}
		group.Go(func() error {
			d, err := r.taxonomy.GetWeakness(gCtx, id)
			if err != nil {
				slog.Debug("taxonomy lookup failed", "cwe", id, "error", err)
				return nil // degrade to no enrichment for this id
			}
			mu.Lock()
			details[id] = d
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes the batch.
	_ = group.Wait()
	return details
}
