package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"talenttrack/internal/domain"
)

// SyncPoller periodically reconciles local interviews against the scheduling
// provider. A run that would overlap a still-running one is skipped, not
// queued; the manual trigger shares the same guard.
type SyncPoller struct {
	sync     domain.CalendarSyncService
	logger   *slog.Logger
	interval time.Duration

	mu sync.Mutex // held for the duration of a run
}

func NewSyncPoller(syncService domain.CalendarSyncService, logger *slog.Logger, interval time.Duration) *SyncPoller {
	return &SyncPoller{
		sync:     syncService,
		logger:   logger,
		interval: interval,
	}
}

// Start runs the poll loop until ctx is cancelled. Call it from its own
// goroutine.
func (p *SyncPoller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("calendar sync poller started", "interval", p.interval.String())
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("calendar sync poller stopped")
			return
		case <-ticker.C:
			report, skipped, err := p.SyncNow(ctx)
			if skipped {
				p.logger.Info("calendar sync skipped, previous run still in progress")
				continue
			}
			if err != nil {
				// Poller failures never surface to users; the next cycle
				// retries from scratch.
				p.logger.Warn("calendar sync failed", "err", err)
				continue
			}
			p.logger.Info("calendar sync completed",
				"run_id", report.RunID,
				"events_seen", report.EventsSeen,
				"created", report.Created,
				"status_updated", report.StatusUpdated,
				"skipped", report.Skipped,
			)
		}
	}
}

// SyncNow runs one reconciliation immediately. skipped is true when another
// run already holds the guard.
func (p *SyncPoller) SyncNow(ctx context.Context) (report *domain.ReconcileReport, skipped bool, err error) {
	if !p.mu.TryLock() {
		return nil, true, nil
	}
	defer p.mu.Unlock()

	report, err = p.sync.Reconcile(ctx)
	return report, false, err
}
