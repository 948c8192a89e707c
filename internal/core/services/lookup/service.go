package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
	"github.com/lcalzada-xor/vulnscope/internal/core/services/normalize"
	"github.com/lcalzada-xor/vulnscope/internal/telemetry"
)

// Service implements ports.LookupService: it gates input through the
// identifier grammar, loads the raw record, fans out to the enrichment
// providers, and assembles the normalized report.
type Service struct {
	records   ports.CVERepository
	history   ports.HistoryRepository
	scoring   ports.ScoringClient
	exposure  ports.ExposureClient
	narrative ports.NarrativeClient
	resolver  *normalize.WeaknessResolver
	notifier  ports.LookupNotifier

	now func() time.Time
}

// Option configures optional collaborators on the service.
type Option func(*Service)

// WithNotifier wires a lookup event notifier (websocket broadcast).
func WithNotifier(n ports.LookupNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the lookup pipeline. Enrichment clients may be nil;
// a nil client behaves as a permanently-absent provider.
func NewService(records ports.CVERepository, history ports.HistoryRepository, scoring ports.ScoringClient, exposure ports.ExposureClient, narrative ports.NarrativeClient, taxonomy ports.TaxonomyClient, opts ...Option) *Service {
	s := &Service{
		records:   records,
		history:   history,
		scoring:   scoring,
		exposure:  exposure,
		narrative: narrative,
		resolver:  normalize.NewWeaknessResolver(taxonomy),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup runs the full aggregation pipeline for one identifier. The
// identifier must already be normalized to upper case by the caller.
func (s *Service) Lookup(ctx context.Context, cveID string) (*domain.CVEReport, error) {
	started := s.now()

	if err := domain.ValidateCVEID(cveID); err != nil {
		telemetry.LookupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	record, err := s.records.GetByID(ctx, cveID)
	if err != nil {
		telemetry.LookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load record %s: %w", cveID, err)
	}
	if record == nil {
		telemetry.LookupsTotal.WithLabelValues("not_found").Inc()
		return nil, domain.ErrRecordNotFound
	}

	enrich := s.enrich(ctx, record)

	severity := "Unknown"
	var weaknessEntries []domain.WeaknessEntry
	if record.Data != nil && record.Data.CVE != nil {
		weaknessEntries = record.Data.CVE.Weaknesses
		if blocks := record.Data.CVE.Metrics.CVSSMetricV31; len(blocks) > 0 && blocks[0].CVSSData.BaseSeverity != "" {
			severity = blocks[0].CVSSData.BaseSeverity
		}
	}
	weaknesses := s.resolver.Resolve(ctx, weaknessEntries, severity)

	report, err := normalize.BuildReport(record, enrich, weaknesses, s.now())
	if err != nil {
		telemetry.LookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.recordHistory(ctx, report)

	if s.notifier != nil {
		s.notifier.NotifyLookup(report.CVEID, severity)
	}

	telemetry.LookupsTotal.WithLabelValues("ok").Inc()
	telemetry.LookupDuration.Observe(s.now().Sub(started).Seconds())
	return report, nil
}

// enrich fans out to the independent providers. Scoring and exposure
// are pure functions of the identifier; the narrative call needs the
// raw record. All three run concurrently and every failure is
// converted into absence at its own boundary, so one slow or broken
// provider never fails or delays composition beyond the slowest call.
func (s *Service) enrich(ctx context.Context, record *domain.RawRecord) domain.EnrichmentBundle {
	var bundle domain.EnrichmentBundle
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		bundle.EPSS = callProvider(ctx, "epss", record.CVEID, func(ctx context.Context) (*domain.EPSSResult, error) {
			if s.scoring == nil {
				return nil, nil
			}
			return s.scoring.GetScore(ctx, record.CVEID)
		})
	}()
	go func() {
		defer wg.Done()
		bundle.Exposure = callProvider(ctx, "shodan", record.CVEID, func(ctx context.Context) (*domain.ExposureResult, error) {
			if s.exposure == nil {
				return nil, nil
			}
			return s.exposure.GetExposure(ctx, record.CVEID)
		})
	}()
	go func() {
		defer wg.Done()
		bundle.Narrative = callProvider(ctx, "openai", record.CVEID, func(ctx context.Context) (*domain.AIAnalysis, error) {
			if s.narrative == nil {
				return nil, nil
			}
			return s.narrative.Analyze(ctx, record)
		})
	}()
	wg.Wait()

	return bundle
}

// callProvider is the per-call error boundary: any provider error is
// logged, counted and swallowed into an absent value.
func callProvider[T any](ctx context.Context, provider, cveID string, call func(context.Context) (*T, error)) *T {
	started := time.Now()
	result, err := call(ctx)
	telemetry.EnrichmentDuration.WithLabelValues(provider).Observe(time.Since(started).Seconds())

	if err != nil {
		telemetry.EnrichmentFailures.WithLabelValues(provider).Inc()
		slog.Warn("enrichment provider unavailable", "provider", provider, "cve", cveID, "error", err)
		return nil
	}
	return result
}

// recordHistory logs the lookup. The report is the product; a history
// write failure must not fail the request.
func (s *Service) recordHistory(ctx context.Context, report *domain.CVEReport) {
	if s.history == nil {
		return
	}

	err := s.history.Upsert(ctx, domain.SearchEntry{
		CVEID:       report.CVEID,
		Description: report.Description,
		SearchTime:  s.now().UTC(),
	})
	if err != nil {
		telemetry.HistoryWrites.WithLabelValues("error").Inc()
		slog.Error("failed to record search history", "cve", report.CVEID, "error", err)
		return
	}
	telemetry.HistoryWrites.WithLabelValues("ok").Inc()
}

// History returns the retained search history, most recent first.
func (s *Service) History(ctx context.Context) ([]domain.SearchEntry, error) {
	return s.history.List(ctx)
}

// ClearHistory removes all search history entries.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.history.Clear(ctx)
}

// Count returns the number of stored raw records.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.records.Count(ctx)
}
