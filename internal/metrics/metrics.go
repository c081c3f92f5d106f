// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StorageWriteFailures counts local persistence writes that failed.
	StorageWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantrykeeper",
		Name:      "storage_write_failures_total",
		Help:      "Local storage writes that failed, by store.",
	}, []string{"store"})

	// ImportRows counts import rows by kind (products, recipes, ...) and
	// outcome (imported, updated, skipped).
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantrykeeper",
		Name:      "import_rows_total",
		Help:      "Rows processed by the CSV and workbook importers.",
	}, []string{"kind", "outcome"})

	// RemoteDocs counts documents seen from the remote store, by collection
	// and outcome (applied, stale, echo).
	RemoteDocs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantrykeeper",
		Name:      "remote_documents_total",
		Help:      "Documents received from the remote store.",
	}, []string{"collection", "outcome"})

	// RemotePushFailures counts pushes to the remote store that failed.
	RemotePushFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantrykeeper",
		Name:      "remote_push_failures_total",
		Help:      "Writes to the remote store that failed.",
	}, []string{"collection"})

	// HTTPRequests counts served API requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pantrykeeper",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status code.",
	}, []string{"method", "status"})

	// RateLimited counts requests rejected by the import rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pantrykeeper",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-client rate limiter.",
	})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
