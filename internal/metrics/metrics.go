// Package metrics provides Prometheus metrics for the filetracker host.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetracker_panel_messages_total",
			Help: "Total number of panel requests dispatched by type",
		},
		[]string{"type"},
	)

	messageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetracker_panel_message_failures_total",
			Help: "Total number of panel requests that ended in an error notification",
		},
		[]string{"type"},
	)

	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetracker_store_operations_total",
			Help: "Total number of project store operations",
		},
		[]string{"op", "status"},
	)

	authFlowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetracker_auth_flows_total",
			Help: "Total number of completed authentication flows by outcome",
		},
		[]string{"outcome"},
	)

	panelConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filetracker_panel_connections_active",
			Help: "Number of connected panels",
		},
	)

	workspaceScanEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filetracker_workspace_scan_entries",
			Help:    "Number of entries recorded per workspace scan",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)
)

// RecordMessage counts a dispatched panel request.
func RecordMessage(msgType string) {
	messagesTotal.WithLabelValues(msgType).Inc()
}

// RecordMessageFailure counts a panel request that failed.
func RecordMessageFailure(msgType string) {
	messageFailuresTotal.WithLabelValues(msgType).Inc()
}

// RecordStoreOperation counts a store call and whether it failed.
func RecordStoreOperation(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	storeOperationsTotal.WithLabelValues(op, status).Inc()
}

// RecordAuthFlow counts a finished authentication flow.
func RecordAuthFlow(outcome string) {
	authFlowsTotal.WithLabelValues(outcome).Inc()
}

// SetPanelConnections sets the number of connected panels.
func SetPanelConnections(n int) {
	panelConnectionsActive.Set(float64(n))
}

// ObserveWorkspaceScan records the size of a workspace snapshot.
func ObserveWorkspaceScan(entries int) {
	workspaceScanEntries.Observe(float64(entries))
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
