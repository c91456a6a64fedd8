package cache

import "github.com/prometheus/client_golang/prometheus"

// metricsSet mirrors Stats() (spec.md §4.8) as Prometheus gauges, the
// way an embedded-cache library typically exposes its internals to its
// host process's own /metrics endpoint. A nil registerer disables
// metrics entirely; tests construct segments without one to avoid
// touching the default registry.
type metricsSet struct {
	itemCount    prometheus.Gauge
	blobUsed     prometheus.Gauge
	blobPoolSize prometheus.Gauge
	tableLoad    prometheus.Gauge
	tombstones   prometheus.Gauge
}

func newMetricsSet(registerer prometheus.Registerer, segmentName string) *metricsSet {
	if registerer == nil {
		return nil
	}
	labels := prometheus.Labels{"segment": segmentName}
	m := &metricsSet{
		itemCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtgsearch_cache_item_count", Help: "Occupied KeyTable entries.", ConstLabels: labels,
		}),
		blobUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtgsearch_cache_blob_used_bytes", Help: "Bytes currently used in the blob pool.", ConstLabels: labels,
		}),
		blobPoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtgsearch_cache_blob_pool_size_bytes", Help: "Total blob pool capacity.", ConstLabels: labels,
		}),
		tableLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtgsearch_cache_key_table_load", Help: "KeyTable occupancy as a fraction of slots.", ConstLabels: labels,
		}),
		tombstones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtgsearch_cache_tombstones", Help: "Tombstoned KeyTable slots.", ConstLabels: labels,
		}),
	}
	registerer.MustRegister(m.itemCount, m.blobUsed, m.blobPoolSize, m.tableLoad, m.tombstones)
	return m
}

func (m *metricsSet) update(s Stats) {
	if m == nil {
		return
	}
	m.itemCount.Set(float64(s.ItemCount))
	m.blobUsed.Set(float64(s.BlobUsed))
	m.blobPoolSize.Set(float64(s.BlobPoolSize))
	m.tableLoad.Set(s.TableLoad)
	m.tombstones.Set(float64(s.Tombstones))
}
