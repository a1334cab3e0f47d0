// Package reconciler runs the background sweeps that keep the durable store
// and the cache coherent: one sweep removes expired url records, the other
// flushes buffered click counts from the cache into the store.
package reconciler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Store defines the durable store operations the sweeps rely on.
type Store interface {
	// DeleteExpiredBefore removes every record expiring before t and
	// returns the number of deleted records.
	DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error)

	// IncrementClickCount atomically adds delta to a record's click count.
	IncrementClickCount(ctx context.Context, shortCode string, delta int64) error
}

// ClickBuffer defines the cache operations used to drain pending clicks.
type ClickBuffer interface {
	// PendingClicks returns all buffered click counts by short code.
	PendingClicks(ctx context.Context) (map[string]int64, error)

	// DropPendingClicks removes the buffered counter for a short code.
	DropPendingClicks(ctx context.Context, shortCode string) error
}

// Reconciler drives the two sweeps on independent fixed-interval timers.
// The sweeps share no lock and are not coordinated with in-flight requests.
type Reconciler struct {
	store              Store
	buffer             ClickBuffer
	logger             *slog.Logger
	expirationInterval time.Duration
	flushInterval      time.Duration
}

func New(store Store, buffer ClickBuffer, logger *slog.Logger, expirationInterval, flushInterval time.Duration) *Reconciler {
	return &Reconciler{
		store:              store,
		buffer:             buffer,
		logger:             logger,
		expirationInterval: expirationInterval,
		flushInterval:      flushInterval,
	}
}

// Run blocks until ctx is canceled, ticking both sweeps on their own timers.
// Sweep failures are logged and retried on the next tick; they never stop
// the reconciler.
func (r *Reconciler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(r.expirationInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := r.SweepExpired(ctx); err != nil {
					r.logger.Error("expiration sweep failed", slog.Any("err", err))
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(r.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := r.FlushClicks(ctx); err != nil {
					r.logger.Error("click flush sweep failed", slog.Any("err", err))
				}
			}
		}
	})

	return g.Wait()
}

// SweepExpired deletes every store record past its expiration timestamp in
// a single bulk operation. Cache entries are not invalidated: reverse
// entries never outlive their record's validity, so they expire on their
// own.
func (r *Reconciler) SweepExpired(ctx context.Context) error {
	deleted, err := r.store.DeleteExpiredBefore(ctx, time.Now())
	if err != nil {
		return err
	}

	if deleted > 0 {
		r.logger.Info("removed expired urls", slog.Int64("deleted", deleted))
	}

	return nil
}

// FlushClicks applies every pending click counter to the store and drops it.
// Each counter is flushed independently: a failed increment leaves its
// counter in place for the next sweep, so clicks are applied at least once.
// The counter is dropped only after its increment succeeds; the race between
// a concurrent click and the drop is the only window where a click can be
// double-counted.
func (r *Reconciler) FlushClicks(ctx context.Context) error {
	pending, err := r.buffer.PendingClicks(ctx)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		return nil
	}

	r.logger.Info("flushing click counts", slog.Int("urls", len(pending)))

	for shortCode, count := range pending {
		if count <= 0 {
			// Nothing to apply; drop the counter so it is not
			// re-scanned on every sweep.
			if err := r.buffer.DropPendingClicks(ctx, shortCode); err != nil {
				r.logger.Error("failed to drop click counter",
					slog.String("short_code", shortCode),
					slog.Any("err", err))
			}
			continue
		}

		if err := r.store.IncrementClickCount(ctx, shortCode, count); err != nil {
			r.logger.Error("failed to flush click count",
				slog.String("short_code", shortCode),
				slog.Int64("count", count),
				slog.Any("err", err))
			continue
		}

		if err := r.buffer.DropPendingClicks(ctx, shortCode); err != nil {
			r.logger.Error("failed to drop click counter",
				slog.String("short_code", shortCode),
				slog.Any("err", err))
		}
	}

	return nil
}
