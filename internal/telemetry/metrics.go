package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wreveal"

var (
	// FramesCaptured counts frames handed over by the capture source
	FramesCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_captured_total",
			Help:      "Total number of frames received from the capture source",
		},
		[]string{"interface"},
	)

	// FramesProcessed counts frames routed by the scan controller, by kind
	FramesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_processed_total",
			Help:      "Total number of frames decoded and routed",
		},
		[]string{"kind"},
	)

	// FramesDropped counts frames discarded before or during routing
	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Total number of frames dropped",
		},
		[]string{"reason"},
	)

	// HiddenRevealed counts hidden SSIDs recovered, by method
	HiddenRevealed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hidden_ssids_revealed_total",
			Help:      "Total number of hidden SSIDs revealed",
		},
		[]string{"source"},
	)

	// Evictions counts records removed to make room, by registry
	Evictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_evictions_total",
			Help:      "Total number of records evicted from a full registry",
		},
		[]string{"registry"},
	)

	// RegistrySize reports the current number of records per registry
	RegistrySize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_size",
			Help:      "Current number of records held",
		},
		[]string{"registry"},
	)

	// CurrentChannel is the channel the radio is tuned to
	CurrentChannel = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_channel",
			Help:      "Channel the capture interface is tuned to",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// Drop reasons used with FramesDropped.
const (
	DropQueueFull = "queue_full"
	DropMalformed = "malformed"
	DropFiltered  = "filtered"
	DropPanic     = "panic"
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		// Already-registered collectors are not an error here
		prometheus.DefaultRegisterer.Register(FramesCaptured)
		prometheus.DefaultRegisterer.Register(FramesProcessed)
		prometheus.DefaultRegisterer.Register(FramesDropped)
		prometheus.DefaultRegisterer.Register(HiddenRevealed)
		prometheus.DefaultRegisterer.Register(Evictions)
		prometheus.DefaultRegisterer.Register(RegistrySize)
		prometheus.DefaultRegisterer.Register(CurrentChannel)
	})
}
