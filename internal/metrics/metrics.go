// Package metrics exposes the indexer's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry collects every gauge and counter the indexer exports, namespaced
// "stardust_indexer". All metrics are registered eagerly at construction
// time against the supplied registerer, the way a single registry is
// threaded through a service's components rather than relying on the
// package-global default.
type Registry struct {
	LastCheckpointChecked prometheus.Gauge
	LastCheckpointIndexed prometheus.Gauge

	IndexedBasicOutputs *prometheus.CounterVec
	IndexedNftOutputs   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers the indexer's metrics against a fresh registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,

		LastCheckpointChecked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "stardust_indexer",
			Name:      "last_checkpoint_checked",
			Help:      "Sequence number of the last checkpoint whose progress was acknowledged",
		}),
		LastCheckpointIndexed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "stardust_indexer",
			Name:      "last_checkpoint_indexed",
			Help:      "Sequence number of the last checkpoint whose writes completed",
		}),
		IndexedBasicOutputs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stardust_indexer",
			Name:      "indexed_basic_outputs_count",
			Help:      "Count of basic outputs upserted into the objects store",
		}, []string{}),
		IndexedNftOutputs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stardust_indexer",
			Name:      "indexed_nft_outputs_count",
			Help:      "Count of NFT outputs upserted into the objects store",
		}, []string{}),
	}
}

// Gatherer exposes the underlying registry for the /metrics HTTP handler.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Registerer exposes the underlying registry for tests that want to
// register additional collectors against the same registry.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// IncBasicOutputs increments the basic-output counter by one.
func (r *Registry) IncBasicOutputs() {
	r.IndexedBasicOutputs.WithLabelValues().Inc()
}

// IncNftOutputs increments the NFT-output counter by one.
func (r *Registry) IncNftOutputs() {
	r.IndexedNftOutputs.WithLabelValues().Inc()
}

// SetLastCheckpointChecked records the sequence number of the last
// acknowledged checkpoint.
func (r *Registry) SetLastCheckpointChecked(seq int64) {
	r.LastCheckpointChecked.Set(float64(seq))
}

// SetLastCheckpointIndexed records the sequence number of the last
// checkpoint whose writes completed.
func (r *Registry) SetLastCheckpointIndexed(seq int64) {
	r.LastCheckpointIndexed.Set(float64(seq))
}
