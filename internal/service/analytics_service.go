package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/flags"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/models"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/observability"
	"github.com/usmanazhar3105/sublimes-drive-sub005/internal/repository"
)

// StatsRefreshFlag is the feature flag controlling what fraction of
// analytics writes also refresh the pre-aggregated summary.
const StatsRefreshFlag = "stats-refresh"

// AnalyticsService records engagement events for offers. It is strictly
// fire-and-forget: a failed write is logged and swallowed, never surfaced
// to the user-facing flow that triggered it.
type AnalyticsService struct {
	events   repository.AnalyticsRepository
	debounce DebounceStore
	clock    Clock
	window   time.Duration
	sampler  *flags.Manager
	logger   *slog.Logger
}

// NewAnalyticsService returns a new AnalyticsService. window is the
// per-(entity, session) impression debounce window; sampler evaluates
// StatsRefreshFlag to decide which writes also refresh the pre-aggregated
// summary.
func NewAnalyticsService(events repository.AnalyticsRepository, debounce DebounceStore, clock Clock, window time.Duration, sampler *flags.Manager) *AnalyticsService {
	return &AnalyticsService{
		events:   events,
		debounce: debounce,
		clock:    clock,
		window:   window,
		sampler:  sampler,
		logger:   observability.Logger,
	}
}

// Track records an engagement event. Impressions repeated by the same
// session inside the debounce window are dropped silently; re-renders must
// not inflate counts. Track never returns an error.
func (s *AnalyticsService) Track(ctx context.Context, entityID uint, rawEventType, sessionID, source string) {
	eventType, ok := models.ParseAnalyticsEventType(rawEventType)
	if !ok {
		s.logger.WarnContext(ctx, "dropping analytics event with unknown type",
			slog.String("event_type", rawEventType),
			slog.Any("entity_id", entityID),
		)
		return
	}
	if sessionID == "" {
		s.logger.WarnContext(ctx, "dropping analytics event without session",
			slog.Any("entity_id", entityID),
		)
		return
	}

	if eventType == models.EventImpression && s.window > 0 {
		key := fmt.Sprintf("%d:%s", entityID, sessionID)
		if !s.debounce.Observe(ctx, key, s.window) {
			observability.ImpressionsDebounced.Inc()
			return
		}
	}

	event := &models.AnalyticsEvent{
		EntityID:  entityID,
		EventType: eventType,
		SessionID: sessionID,
		Source:    source,
		CreatedAt: s.clock.Now(),
	}
	if err := s.events.CreateEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "analytics write failed",
			slog.Any("entity_id", entityID),
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()),
		)
		return
	}

	observability.AnalyticsEvents.WithLabelValues(string(eventType)).Inc()

	// A sampled fraction of writes refreshes the dashboard summary, keyed
	// by session so the same share of traffic samples on every instance.
	// The refresh recomputes from the events table, so skipping it or
	// running it twice loses nothing.
	if s.sampler.EnabledForKey(StatsRefreshFlag, sessionID) {
		if err := s.events.RefreshStats(ctx, entityID, s.clock.Now()); err != nil {
			s.logger.WarnContext(ctx, "stats refresh failed",
				slog.Any("entity_id", entityID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Stats returns the pre-aggregated summary for an entity.
func (s *AnalyticsService) Stats(ctx context.Context, entityID uint) (*models.OfferStats, error) {
	return s.events.GetStats(ctx, entityID)
}
