// BotServer - General Bots Conversational Platform
// Copyright 2026 General Bots
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GeneralBots/botserver-sub005

package rbac

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision metrics use the matched rule pattern, never the raw request
// path, to keep label cardinality bounded.
var (
	rbacDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbac_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"kind", "decision"},
	)

	rbacDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rbac_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"kind", "cache_hit"},
	)

	rbacDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbac_denied_total",
			Help: "Total number of authorization denials (for alerting)",
		},
		[]string{"kind", "reason"},
	)

	rbacCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbac_cache_hits_total",
			Help: "Total number of decision cache hits",
		},
	)

	rbacCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbac_cache_misses_total",
			Help: "Total number of decision cache misses",
		},
	)

	rbacCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rbac_cache_entries",
			Help: "Current number of entries in the decision cache",
		},
	)

	rbacCacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbac_cache_invalidations_total",
			Help: "Total number of cache entries removed by invalidation",
		},
		[]string{"reason"},
	)

	rbacAuditEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbac_audit_events_total",
			Help: "Total number of audit events recorded",
		},
	)

	rbacAuditDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbac_audit_dropped_total",
			Help: "Total number of audit events dropped due to a full buffer",
		},
	)
)

func recordDecision(kind string, result AccessDecisionResult, elapsed time.Duration) {
	rbacDecisionsTotal.WithLabelValues(kind, string(result.Decision)).Inc()
	rbacDecisionDuration.WithLabelValues(kind, strconv.FormatBool(result.CacheHit)).
		Observe(elapsed.Seconds())
	if !result.Allowed() {
		rbacDeniedTotal.WithLabelValues(kind, result.Reason).Inc()
	}
	if result.CacheHit {
		rbacCacheHitsTotal.Inc()
	} else {
		rbacCacheMissesTotal.Inc()
	}
}

func recordInvalidation(reason string, removed int) {
	rbacCacheInvalidationsTotal.WithLabelValues(reason).Add(float64(removed))
}
