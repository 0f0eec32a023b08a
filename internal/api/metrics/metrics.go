// Package metrics defines and registers all custom Prometheus metrics for the
// waste pickup service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "idealservice_waste"

// ── Refresh metrics ───────────────────────────────────────────────────────────

// RefreshTotal counts physical refreshes (one per vendor API fetch).
// Label:
//   - result: "success" or "failure"
var RefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_total",
		Help:      "Total number of calendar refreshes, by result.",
	},
	[]string{"result"},
)

// RefreshErrorsTotal counts failed refreshes.
// Label:
//   - kind: "request" (transport/HTTP), "data" (payload) or "unknown"
var RefreshErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_errors_total",
		Help:      "Total number of failed calendar refreshes, by error kind.",
	},
	[]string{"kind"},
)

// RefreshCoalescedTotal counts refresh requests that joined an in-flight
// refresh instead of starting a new fetch.
var RefreshCoalescedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_coalesced_total",
		Help:      "Total number of refresh requests served by an already in-flight refresh.",
	},
)

// RefreshDuration measures one vendor API fetch, parse included.
// Label:
//   - result: "success" or "failure"
var RefreshDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "refresh_duration_seconds",
		Help:      "Duration of calendar refreshes against the IdealService API.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"result"},
)

// ManualRefreshThrottledTotal counts on-demand refreshes rejected by the cooldown.
var ManualRefreshThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "manual_refresh_throttled_total",
		Help:      "Total number of manual refresh requests rejected by the cooldown.",
	},
)

// ── Calendar metrics ──────────────────────────────────────────────────────────

// PickupEvents tracks the number of cached pickup events per calendar.
// Labels:
//   - place_id, calendar_id: the identifier pair
var PickupEvents = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pickup_events",
		Help:      "Number of pickup events currently cached for a calendar.",
	},
	[]string{"place_id", "calendar_id"},
)

// LastSuccessTimestamp records when a calendar last refreshed successfully.
// Labels:
//   - place_id, calendar_id: the identifier pair
var LastSuccessTimestamp = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful refresh of a calendar.",
	},
	[]string{"place_id", "calendar_id"},
)

// CalendarsConfigured tracks configured calendars by lifecycle phase.
// Label:
//   - phase: "loaded" or "setup_retry"
var CalendarsConfigured = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "calendars_configured",
		Help:      "Number of configured calendars, by lifecycle phase.",
	},
	[]string{"phase"},
)

// ── Dispatcher metrics ────────────────────────────────────────────────────────

// JobsQueueDepth tracks the number of scheduled jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var JobsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "jobs_queue_depth",
		Help:      "Current number of jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// JobsFailedTotal counts scheduled jobs that returned an error or panicked.
// Label:
//   - job: the job name (e.g. "refresh", "setup_retry")
var JobsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_failed_total",
		Help:      "Total number of scheduled jobs that failed, by job name.",
	},
	[]string{"job"},
)
