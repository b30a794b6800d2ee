package tensor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storageAllocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strand_storage_allocations_total",
		Help: "Total number of storage buffers allocated",
	}, []string{"dtype", "device"})

	storageFrees = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strand_storage_frees_total",
		Help: "Total number of storage buffers freed by their last release",
	})

	storageLiveBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "strand_storage_live_bytes",
		Help: "Bytes held by storage buffers that still have references",
	})
)
