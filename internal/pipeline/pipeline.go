// Package pipeline is the import pipeline: POIs flow in from a source
// reader, a pool of workers enriches each with its administrative
// areas (retrying transient failures), and a single indexer goroutine
// commits enriched POIs to
// the full-text index, exactly mirroring the original importer's
// worker-pool-plus-single-writer architecture.
package pipeline

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/geocoder/internal/admin"
	"github.com/standardbeagle/geocoder/internal/debug"
	geoerrors "github.com/standardbeagle/geocoder/internal/errors"
	"github.com/standardbeagle/geocoder/internal/poi"
)

// Config controls worker count, batching, and retry behavior.
type Config struct {
	// WorkerMultiplier workers are spawned per CPU, since admin
	// enrichment is I/O-bound rather than CPU-bound, matching the
	// original's num_cpus::get() * 4 worker count.
	WorkerMultiplier int
	// ReadRefreshEvery is how many POIs a worker processes between
	// debug log lines about its admin-cache reads. Workers hold no
	// long-lived read view: every cache lookup opens its own bbolt read
	// transaction.
	ReadRefreshEvery int
	// AdminRetryAttempts is how many times a worker retries admin
	// enrichment for a single POI before giving up on it.
	AdminRetryAttempts int
	AdminRetryDelay    time.Duration
	// ProgressEvery controls how often the indexer logs throughput.
	ProgressEvery int
}

func DefaultConfig() Config {
	return Config{
		WorkerMultiplier:   4,
		ReadRefreshEvery:   1000,
		AdminRetryAttempts: 5,
		AdminRetryDelay:    10 * time.Millisecond,
		ProgressEvery:      10000,
	}
}

// Indexer is the minimal surface the pipeline needs from the full-text
// index: add one enriched POI at a time, then commit once when Run has
// drained every enriched POI.
type Indexer interface {
	Add(poi poi.POI) error
	Commit() error
}

// Run drains source, enriching each POI with its administrative areas
// via resolver and writing enriched POIs to index. It returns once
// source is closed and every enriched POI has been committed.
func Run(ctx context.Context, cfg Config, source <-chan poi.POI, resolver *admin.Resolver, index Indexer) error {
	workerCount := cfg.WorkerMultiplier
	if n := runtime.NumCPU() * cfg.WorkerMultiplier; n > workerCount {
		workerCount = n
	}

	enriched := make(chan poi.POI, 1024*16)

	group, groupCtx := errgroup.WithContext(ctx)
	for w := 0; w < workerCount; w++ {
		workerID := w
		group.Go(func() error {
			runWorker(groupCtx, workerID, cfg, source, resolver, enriched)
			return nil
		})
	}

	go func() {
		_ = group.Wait()
		close(enriched)
	}()

	count := 0
	start := time.Now()
	for p := range enriched {
		count++
		if cfg.ProgressEvery > 0 && count%cfg.ProgressEvery == 0 {
			elapsed := time.Since(start).Seconds()
			rate := float64(count)
			if elapsed > 0 {
				rate = float64(count) / elapsed
			}
			debug.Infof("%d POIs indexed, %.1f per second", count, rate)
		}
		if err := index.Add(p); err != nil {
			debug.Warnf("failed to add POI %q to index: %v", p.Name(), err)
		}
	}

	return index.Commit()
}

func runWorker(ctx context.Context, workerID int, cfg Config, source <-chan poi.POI, resolver *admin.Resolver, enriched chan<- poi.POI) {
	processed := 0
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-source:
			if !ok {
				return
			}

			processed++
			if cfg.ReadRefreshEvery > 0 && processed%cfg.ReadRefreshEvery == 0 {
				debug.Logf("worker %d refreshing admin-cache read view after %d POIs", workerID, processed)
			}

			if enrichWithRetry(ctx, cfg, resolver, &p) {
				select {
				case enriched <- p:
				case <-ctx.Done():
					return
				}
			} else {
				debug.Warnf("worker %d: failed to populate admin areas for %q after %d attempts, skipping", workerID, p.Name(), cfg.AdminRetryAttempts)
			}
		}
	}
}

func enrichWithRetry(ctx context.Context, cfg Config, resolver *admin.Resolver, p *poi.POI) bool {
	if resolver == nil {
		return true
	}
	attempts := cfg.AdminRetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(cfg.AdminRetryDelay):
			case <-ctx.Done():
				return false
			}
		}
		if err := resolver.Resolve(ctx, p); err != nil {
			debug.Logf("admin enrichment attempt %d failed: %v", attempt, geoerrors.NewAdminError(p.S2Cell, "enrichment attempt failed").WithCause(err))
			continue
		}
		return true
	}
	return false
}
