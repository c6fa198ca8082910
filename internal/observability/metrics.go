package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerificationReviews counts reviewed verification requests by decision.
	VerificationReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sublimes_verification_reviews_total",
		Help: "Total number of verification request reviews by decision",
	}, []string{"decision"})

	// ReportsFiled counts reports entering the moderation queue.
	ReportsFiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sublimes_reports_filed_total",
		Help: "Total number of reports filed",
	})

	// ReportsResolved counts resolved reports by action.
	ReportsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sublimes_reports_resolved_total",
		Help: "Total number of resolved reports by action",
	}, []string{"action"})

	// BoostsGranted counts boost entitlements granted by entity type.
	BoostsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sublimes_boosts_granted_total",
		Help: "Total number of boost entitlements granted by entity type",
	}, []string{"entity_type"})

	// BoostsExpired counts boosts deactivated by the expiry scanner.
	BoostsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sublimes_boosts_expired_total",
		Help: "Total number of boost entitlements deactivated by the expiry scanner",
	})

	// OffersClaimed counts successful offer claims.
	OffersClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sublimes_offers_claimed_total",
		Help: "Total number of successful offer claims",
	})

	// CodesRedeemed counts successful redemption-code redemptions.
	CodesRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sublimes_codes_redeemed_total",
		Help: "Total number of redemption codes redeemed",
	})

	// AnalyticsEvents counts recorded engagement events by type.
	AnalyticsEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sublimes_analytics_events_total",
		Help: "Total number of recorded analytics events by type",
	}, []string{"event_type"})

	// ImpressionsDebounced counts impressions dropped by the debounce window.
	ImpressionsDebounced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sublimes_impressions_debounced_total",
		Help: "Total number of impressions suppressed by the debounce window",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sublimes_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
