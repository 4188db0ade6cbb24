package metrics_test

import (
	"testing"
	"time"

	"github.com/nspcc-dev/recstore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewStoreMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	var m *metrics.StoreMetrics
	require.NotPanics(t, func() {
		m = metrics.NewStoreMetrics(reg, "any_version")
	})

	m.AddOperationDuration("export", time.Millisecond)
	m.AddRecords("export", 3)
	m.AddWrittenBytes(100)
	m.SetFileSize(100)
	m.IncSpanCacheHit()
	m.IncSpanCacheMiss()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]struct{}, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = struct{}{}
	}
	for _, name := range []string{
		"recstore_version",
		"recstore_store_operation_time",
		"recstore_store_records_total",
		"recstore_store_written_bytes_total",
		"recstore_store_file_size",
		"recstore_store_span_cache_total",
	} {
		require.Contains(t, names, name)
	}

	require.Panics(t, func() {
		metrics.NewStoreMetrics(reg, "any_version")
	})
}
