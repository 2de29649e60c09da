package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vault-analytics/internal/logging"
	"github.com/vault-analytics/internal/metrics"
	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/precision"
	"github.com/vault-analytics/internal/venue"
)

// VenueSource is the slice of the venue client the worker needs.
type VenueSource interface {
	VaultAddresses(ctx context.Context) ([]string, error)
	FetchAll(ctx context.Context, kind venue.RequestKind, addresses []string) []venue.Outcome
}

// VaultStore persists computed metric rows.
type VaultStore interface {
	Upsert(ctx context.Context, row *models.VaultMetrics) error
}

// DocumentCache is an optional read-through cache for raw venue bodies.
type DocumentCache interface {
	Get(ctx context.Context, kind venue.RequestKind, address string) (venue.Outcome, bool)
	Put(ctx context.Context, kind venue.RequestKind, outcome venue.Outcome)
}

// ETLWorker drives one full pipeline run: discover vault addresses, fetch
// details and leader fills in batches, compute metrics, and upsert rows.
type ETLWorker struct {
	venue      VenueSource
	store      VaultStore
	cache      DocumentCache // nil disables caching
	batchSize  int
	batchPause time.Duration
	now        func() time.Time
}

// ETLWorkerConfig holds configuration for the ETL worker
type ETLWorkerConfig struct {
	Venue      VenueSource
	Store      VaultStore
	Cache      DocumentCache // optional
	BatchSize  int
	BatchPause time.Duration
	Now        func() time.Time // optional, defaults to time.Now
}

// NewETLWorker creates a new ETL worker
func NewETLWorker(cfg *ETLWorkerConfig) (*ETLWorker, error) {
	if cfg.Venue == nil {
		return nil, fmt.Errorf("venue source cannot be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("vault store cannot be nil")
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", cfg.BatchSize)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &ETLWorker{
		venue:      cfg.Venue,
		store:      cfg.Store,
		cache:      cfg.Cache,
		batchSize:  cfg.BatchSize,
		batchPause: cfg.BatchPause,
		now:        now,
	}, nil
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	Discovered int
	Upserted   int
	Skipped    int // detail fetch failed, no row written
	Degraded   int // fills fetch failed, row written with zero trading fields
}

// Run executes one full ETL pass. It returns an error only when discovery or
// the context fails; per-vault failures are logged and counted instead.
func (w *ETLWorker) Run(ctx context.Context) (RunStats, error) {
	runID := uuid.New().String()
	logger := logging.FromContext(ctx).WithField("run_id", runID)
	ctx = logging.WithLogger(ctx, logger)

	addresses, err := w.venue.VaultAddresses(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("vault discovery failed: %w", err)
	}

	stats := RunStats{Discovered: len(addresses)}
	logger.WithField("vault_count", len(addresses)).Info("starting ETL run")

	for start := 0; start < len(addresses); start += w.batchSize {
		if start > 0 && w.batchPause > 0 {
			select {
			case <-time.After(w.batchPause):
			case <-ctx.Done():
				return stats, ctx.Err()
			}
		}

		end := start + w.batchSize
		if end > len(addresses) {
			end = len(addresses)
		}
		if err := w.processBatch(ctx, addresses[start:end], &stats); err != nil {
			return stats, err
		}
	}

	logger.WithFields(map[string]interface{}{
		"discovered": stats.Discovered,
		"upserted":   stats.Upserted,
		"skipped":    stats.Skipped,
		"degraded":   stats.Degraded,
	}).Info("ETL run complete")
	return stats, nil
}

func (w *ETLWorker) processBatch(ctx context.Context, batch []string, stats *RunStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := logging.FromContext(ctx)

	details := w.fetchThroughCache(ctx, venue.KindVaultDetails, batch)
	fills := w.fetchFills(ctx, details)

	for i, address := range batch {
		detail := details[i]
		if !detail.OK() || detail.Doc == nil {
			stats.Skipped++
			logger.WithField("vault", address).
				WithError(detail.Err).
				Warn("vault detail fetch failed, skipping upsert")
			continue
		}

		var vaultFills []venue.Fill
		switch {
		case fills[i] == nil:
			// vault has no leader address, nothing to fetch
		case fills[i].OK():
			vaultFills = fills[i].Fills()
		default:
			stats.Degraded++
			logger.WithField("vault", address).
				WithError(fills[i].Err).
				Warn("leader fills fetch failed, writing row without trading metrics")
		}

		row := metrics.Compute(detail.Doc, vaultFills, w.now())
		if row.VaultAddress == "" {
			row.VaultAddress = address
		}
		precision.Apply(&row)

		if err := w.store.Upsert(ctx, &row); err != nil {
			stats.Skipped++
			logger.WithField("vault", address).WithError(err).Error("vault upsert failed")
			continue
		}
		stats.Upserted++
	}
	return nil
}

// fetchFills fetches the leader fills for each detail outcome, positionally.
// Entries are nil where the vault has no resolvable leader. Duplicate leaders
// within a batch are fetched once.
func (w *ETLWorker) fetchFills(ctx context.Context, details []venue.Outcome) []*venue.Outcome {
	leaders := venue.Leaders(details)

	unique := make([]string, 0, len(leaders))
	seen := make(map[string]int, len(leaders))
	for _, leader := range leaders {
		if leader == "" {
			continue
		}
		if _, ok := seen[leader]; !ok {
			seen[leader] = len(unique)
			unique = append(unique, leader)
		}
	}

	fills := make([]*venue.Outcome, len(details))
	if len(unique) == 0 {
		return fills
	}

	outcomes := w.fetchThroughCache(ctx, venue.KindUserFills, unique)
	for i, leader := range leaders {
		if leader == "" {
			continue
		}
		outcome := outcomes[seen[leader]]
		fills[i] = &outcome
	}
	return fills
}

// fetchThroughCache fetches outcomes for addresses, consulting the document
// cache first when one is configured. Results stay aligned with addresses.
func (w *ETLWorker) fetchThroughCache(ctx context.Context, kind venue.RequestKind, addresses []string) []venue.Outcome {
	if w.cache == nil {
		return w.venue.FetchAll(ctx, kind, addresses)
	}

	outcomes := make([]venue.Outcome, len(addresses))
	var misses []string
	var missIdx []int
	for i, address := range addresses {
		if cached, ok := w.cache.Get(ctx, kind, address); ok {
			outcomes[i] = cached
			continue
		}
		misses = append(misses, address)
		missIdx = append(missIdx, i)
	}

	if len(misses) == 0 {
		return outcomes
	}

	fetched := w.venue.FetchAll(ctx, kind, misses)
	for j, outcome := range fetched {
		outcomes[missIdx[j]] = outcome
		w.cache.Put(ctx, kind, outcome)
	}
	return outcomes
}
