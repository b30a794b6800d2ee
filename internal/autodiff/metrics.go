package autodiff

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backwardPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strand_backward_passes_total",
		Help: "Backward passes by result (ok, error, reused)",
	}, []string{"result"})

	backwardNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "strand_backward_nodes",
		Help:    "Nodes traversed per successful backward pass",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)
