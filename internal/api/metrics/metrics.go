// Package metrics defines all custom Prometheus metrics for the task-manager
// API. It is the single source of truth for metric names, labels, and help
// strings; promauto registers everything with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskman"

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts successfully created accounts.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// AccountsDeletedTotal counts self-service account deletions.
var AccountsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_deleted_total",
		Help:      "Total number of accounts deleted by their owners.",
	},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks.
var TasksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

// ── Upload metrics ────────────────────────────────────────────────────────────

// UploadsTotal counts image uploads (avatars and task images).
// Labels:
//   - target: "avatar" or "task_image"
//   - result: "ok", "rejected", or "error"
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of image uploads, labelled by target and result.",
	},
	[]string{"target", "result"},
)

// ImageResizeDuration measures how long decoding and resizing an upload takes.
var ImageResizeDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_resize_duration_seconds",
		Help:      "Duration of decode-resize-encode for uploaded images.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Email metrics ─────────────────────────────────────────────────────────────

// EmailsTotal counts transactional email outcomes.
// Labels:
//   - kind: "welcome" or "cancellation"
//   - result: "sent" or "error"
var EmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Total number of transactional emails, labelled by kind and result.",
	},
	[]string{"kind", "result"},
)
