package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProcessesSpawned counts external tool processes started by the supervisor
	ProcessesSpawned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronedeauth",
			Name:      "processes_spawned_total",
			Help:      "Total number of external tool processes spawned",
		},
		[]string{"tool"},
	)

	// ProcessesKilled counts processes that ignored SIGTERM and were killed
	ProcessesKilled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronedeauth",
			Name:      "processes_killed_total",
			Help:      "Total number of processes force-killed after the grace window",
		},
		[]string{"tool"},
	)

	// NetworksDiscovered counts network records produced per scan strategy
	NetworksDiscovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronedeauth",
			Name:      "networks_discovered_total",
			Help:      "Total number of network records parsed from scans",
		},
		[]string{"strategy"},
	)

	// ScanFallbacks counts strategy failures that moved the scan to the next strategy
	ScanFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronedeauth",
			Name:      "scan_fallbacks_total",
			Help:      "Total number of scan strategy fallbacks",
		},
		[]string{"strategy"},
	)

	// RowsSkipped counts malformed artifact rows
	RowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dronedeauth",
			Name:      "scan_rows_skipped_total",
			Help:      "Total number of scan rows skipped as malformed",
		},
	)

	// NetworkAttacks counts per-network attack outcomes
	NetworkAttacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronedeauth",
			Name:      "network_attacks_total",
			Help:      "Total number of network attacks by final state",
		},
		[]string{"state"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(ProcessesSpawned)
		prometheus.DefaultRegisterer.Register(ProcessesKilled)
		prometheus.DefaultRegisterer.Register(NetworksDiscovered)
		prometheus.DefaultRegisterer.Register(ScanFallbacks)
		prometheus.DefaultRegisterer.Register(RowsSkipped)
		prometheus.DefaultRegisterer.Register(NetworkAttacks)
	})
}
