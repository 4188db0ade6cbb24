package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace      = "recstore"
	storeSubsystem = "store"

	operationLabelKey = "operation"
	resultLabelKey    = "result"
)

// StoreMetrics collects record store statistics.
type StoreMetrics struct {
	opDuration prometheus.HistogramVec

	records      prometheus.CounterVec
	writtenBytes prometheus.Counter
	fileSize     prometheus.Gauge
	spanCache    prometheus.CounterVec
}

// NewStoreMetrics creates and registers StoreMetrics. Nil reg means default
// Prometheus registerer. Registration panics on conflicts, so every store
// sharing a registerer must use a distinct version label or registry.
func NewStoreMetrics(reg prometheus.Registerer, version string) *StoreMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := newStoreMetrics()
	m.register(reg)
	registerVersionMetric(reg, version)

	return m
}

func newStoreMetrics() *StoreMetrics {
	var (
		opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: storeSubsystem,
			Name:      "operation_time",
			Help:      "Store operations handling time",
		}, []string{operationLabelKey})

		records = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: storeSubsystem,
			Name:      "records_total",
			Help:      "Number of records processed by operation",
		}, []string{operationLabelKey})

		writtenBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: storeSubsystem,
			Name:      "written_bytes_total",
			Help:      "Number of bytes written to store files",
		})

		fileSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: storeSubsystem,
			Name:      "file_size",
			Help:      "Last known size of the store file",
		})

		spanCache = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: storeSubsystem,
			Name:      "span_cache_total",
			Help:      "Span cache lookups by result",
		}, []string{resultLabelKey})
	)

	return &StoreMetrics{
		opDuration:   *opDuration,
		records:      *records,
		writtenBytes: writtenBytes,
		fileSize:     fileSize,
		spanCache:    *spanCache,
	}
}

func (m *StoreMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.opDuration)
	reg.MustRegister(m.records)
	reg.MustRegister(m.writtenBytes)
	reg.MustRegister(m.fileSize)
	reg.MustRegister(m.spanCache)
}

// AddOperationDuration observes handling time of the named operation.
func (m *StoreMetrics) AddOperationDuration(op string, d time.Duration) {
	m.opDuration.With(prometheus.Labels{operationLabelKey: op}).Observe(d.Seconds())
}

// AddRecords increases number of records processed by the named operation.
func (m *StoreMetrics) AddRecords(op string, n int) {
	m.records.With(prometheus.Labels{operationLabelKey: op}).Add(float64(n))
}

// AddWrittenBytes increases written bytes counter.
func (m *StoreMetrics) AddWrittenBytes(n int64) {
	m.writtenBytes.Add(float64(n))
}

// SetFileSize sets store file size.
func (m *StoreMetrics) SetFileSize(size int64) {
	m.fileSize.Set(float64(size))
}

// IncSpanCacheHit counts span cache hit.
func (m *StoreMetrics) IncSpanCacheHit() {
	m.spanCache.With(prometheus.Labels{resultLabelKey: "hit"}).Inc()
}

// IncSpanCacheMiss counts span cache miss or stale entry.
func (m *StoreMetrics) IncSpanCacheMiss() {
	m.spanCache.With(prometheus.Labels{resultLabelKey: "miss"}).Inc()
}
