package container

import (
	"time"

	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/locator"
	"github.com/nspcc-dev/recstore/pkg/recstore/storage"
	"github.com/nspcc-dev/recstore/pkg/recstore/storage/fsbackend"
	"go.uber.org/zap"
)

// Option represents DB's constructor option.
type Option func(*cfg)

type cfg struct {
	log     *zap.Logger
	backend storage.Backend
	metrics Metrics

	authoring *entity.Index
	parse     *entity.Index

	blobCodec entity.BlobCodec

	workers       int
	spanCacheSize int
	scanChunkSize int
}

const (
	defaultSpanCacheSize = 1024
)

func initConfig(c *cfg) {
	*c = cfg{
		log:           zap.L(),
		backend:       fsbackend.New(),
		metrics:       noopMetrics{},
		blobCodec:     entity.RawCodec{},
		spanCacheSize: defaultSpanCacheSize,
		scanChunkSize: locator.DefaultChunkSize,
	}
}

// WithLogger returns option to set DB's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
	}
}

// WithBackend returns option to set storage backend the store file is
// accessed through. Local file system is used by default.
func WithBackend(b storage.Backend) Option {
	return func(c *cfg) {
		c.backend = b
	}
}

// WithMetrics returns option to set metrics collector.
func WithMetrics(m Metrics) Option {
	return func(c *cfg) {
		c.metrics = m
	}
}

// WithAuthoringIndex returns option to share the registry values are
// authored in. Every DB gets a fresh one by default.
func WithAuthoringIndex(idx *entity.Index) Option {
	return func(c *cfg) {
		c.authoring = idx
	}
}

// WithParseIndex returns option to share the parse-scoped registry between
// stores, e.g. to resolve references across files. It is the caller's duty
// to reset it between unrelated loads.
func WithParseIndex(idx *entity.Index) Option {
	return func(c *cfg) {
		c.parse = idx
	}
}

// WithBlobCodec returns option to set the serializer of blob records.
func WithBlobCodec(bc entity.BlobCodec) Option {
	return func(c *cfg) {
		c.blobCodec = bc
	}
}

// WithWorkers returns option to set number of routines records are encoded
// by. Zero encodes in the caller's routine.
func WithWorkers(n int) Option {
	return func(c *cfg) {
		c.workers = n
	}
}

// WithSpanCacheSize returns option to set the number of on-disk record
// positions remembered between updates. Zero disables the cache.
func WithSpanCacheSize(n int) Option {
	return func(c *cfg) {
		c.spanCacheSize = n
	}
}

// WithScanChunkSize returns option to set the initial window size of the
// streaming record locator.
func WithScanChunkSize(n int) Option {
	return func(c *cfg) {
		if n > 0 {
			c.scanChunkSize = n
		}
	}
}

// Metrics collects DB statistics.
type Metrics interface {
	AddOperationDuration(op string, d time.Duration)
	AddRecords(op string, n int)
	AddWrittenBytes(n int64)
	SetFileSize(size int64)
	IncSpanCacheHit()
	IncSpanCacheMiss()
}

type noopMetrics struct{}

func (noopMetrics) AddOperationDuration(string, time.Duration) {}
func (noopMetrics) AddRecords(string, int)                     {}
func (noopMetrics) AddWrittenBytes(int64)                      {}
func (noopMetrics) SetFileSize(int64)                          {}
func (noopMetrics) IncSpanCacheHit()                           {}
func (noopMetrics) IncSpanCacheMiss()                          {}
