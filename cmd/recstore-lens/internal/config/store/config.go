package storeconfig

import (
	"github.com/nspcc-dev/recstore/cmd/recstore-lens/internal/config"
)

const (
	subsection = "store"

	// LevelDefault is a default export level.
	LevelDefault = "none"
	// BlobCodecDefault is a default blob serializer.
	BlobCodecDefault = "raw"
	// SpanCacheSizeDefault is a default number of remembered record spans.
	SpanCacheSizeDefault = 1024
)

// Path returns the value of "path" config parameter
// from "store" section.
func Path(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "path")
}

// Name returns the value of "name" config parameter
// from "store" section. Empty name means the one from the file header.
func Name(c *config.Config) string {
	return config.StringSafe(c.Sub(subsection), "name")
}

// Level returns the value of "level" config parameter
// from "store" section.
//
// Returns LevelDefault if the value is not a non-empty string.
func Level(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "level")
	if v != "" {
		return v
	}

	return LevelDefault
}

// Workers returns the value of "workers" config parameter
// from "store" section.
//
// Returns 0 (synchronous encoding) if the value is missing.
func Workers(c *config.Config) int {
	return int(config.UintSafe(c.Sub(subsection), "workers"))
}

// SpanCacheSize returns the value of "span_cache_size" config parameter
// from "store" section.
//
// Returns SpanCacheSizeDefault if the value is not a positive number.
func SpanCacheSize(c *config.Config) int {
	v := config.UintSafe(c.Sub(subsection), "span_cache_size")
	if v > 0 {
		return int(v)
	}

	return SpanCacheSizeDefault
}

// ScanChunkSize returns the value of "scan_chunk_size" config parameter
// from "store" section. Zero means library default.
func ScanChunkSize(c *config.Config) int {
	return int(config.UintSafe(c.Sub(subsection), "scan_chunk_size"))
}

// MaintainBorrows returns the value of "maintain_borrows" config parameter
// from "store" section.
//
// Returns false if the value is missing or is not a boolean.
func MaintainBorrows(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "maintain_borrows")
}

// BlobCodec returns the value of "blob_codec" config parameter
// from "store" section.
//
// Returns BlobCodecDefault if the value is not a non-empty string.
func BlobCodec(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "blob_codec")
	if v != "" {
		return v
	}

	return BlobCodecDefault
}
