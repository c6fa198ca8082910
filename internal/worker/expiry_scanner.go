// Package worker hosts background loops that run alongside request handling.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/observability"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/repository"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/service"
)

// ExpiryScanner periodically deactivates boost entitlements whose validity
// window has passed. Queries already exclude expired rows by valid_until,
// so the sweep exists to keep the active set small, not for correctness.
// The deactivation predicate only matches rows still active, which makes
// overlapping runs idempotent.
type ExpiryScanner struct {
	entitlements repository.EntitlementRepository
	clock        service.Clock
	interval     time.Duration
	logger       *slog.Logger
}

// NewExpiryScanner returns a scanner sweeping at the given interval.
func NewExpiryScanner(entitlements repository.EntitlementRepository, clock service.Clock, interval time.Duration) *ExpiryScanner {
	return &ExpiryScanner{
		entitlements: entitlements,
		clock:        clock,
		interval:     interval,
		logger:       observability.Logger,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *ExpiryScanner) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sweep runs one deactivation pass. Errors are logged; the next tick
// retries naturally.
func (s *ExpiryScanner) Sweep(ctx context.Context) {
	expired, err := s.entitlements.DeactivateExpired(ctx, s.clock.Now())
	if err != nil {
		s.logger.ErrorContext(ctx, "boost expiry sweep failed", slog.String("error", err.Error()))
		return
	}
	if expired > 0 {
		observability.BoostsExpired.Add(float64(expired))
		s.logger.InfoContext(ctx, "boost expiry sweep completed", slog.Int64("deactivated", expired))
	}
}
