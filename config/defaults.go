// Package config provides configuration defaults and utilities
// for the uplake application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or environment variables.
package config

import "time"

// =============================================================================
// Run Defaults
// =============================================================================

const (
	// DefaultBatches is the number of batches processed per run.
	// Override via config: run.batches
	DefaultBatches = 3

	// DefaultRowsPerBatch is the number of readings encoded into each file.
	// Sized after a typical field deployment's 15-minute window.
	// Override via config: run.rows_per_batch
	DefaultRowsPerBatch = 178

	// DefaultRunMode selects sequential or pipelined batch processing.
	// Override via config: run.mode
	DefaultRunMode = "sequential"

	// DefaultDeviceClass is the device class segment of the object key.
	// Override via config: run.device_class
	DefaultDeviceClass = "esp32s3"

	// DefaultArtifactName is the artifact segment of the object key.
	// Override via config: run.artifact_name
	DefaultArtifactName = "sensor-readings"
)

// =============================================================================
// Generator Defaults
// =============================================================================

const (
	// DefaultBaseTimestampMs is the first row's timestamp when no start
	// time is configured (2024-12-04 00:00:00 UTC in epoch milliseconds).
	// Override via config: generator.base_timestamp_ms
	DefaultBaseTimestampMs = 1733270400000

	// DefaultRowSpacingMs is the simulated sampling interval between rows.
	// Override via config: generator.row_spacing_ms
	DefaultRowSpacingMs = 5000

	// DefaultBatchSpacingMs is the simulated gap between batch windows.
	// Override via config: generator.batch_spacing_ms
	DefaultBatchSpacingMs = 900000
)

// =============================================================================
// Store Defaults
// =============================================================================

const (
	// DefaultRegion is the object store region.
	// Override via config: store.region
	DefaultRegion = "us-west-2"

	// DefaultKeyPrefix is the leading segment of every object key.
	// Override via config: store.prefix
	DefaultKeyPrefix = "opensensor-test"

	// DefaultKeyExtension is the file extension of uploaded objects.
	// Override via config: store.extension
	DefaultKeyExtension = "parquet"
)

// =============================================================================
// Encoder Defaults
// =============================================================================

const (
	// DefaultCompression is the columnar compression codec.
	// Snappy favors a small working set over ratio, which matters more
	// than file size on a constrained uplink.
	// Override via config: encoder.compression
	DefaultCompression = "snappy"

	// DefaultCompressionLevel applies to level-based codecs (zstd, gzip).
	// Override via config: encoder.compression_level
	DefaultCompressionLevel = 3
)

// =============================================================================
// Upload Defaults
// =============================================================================

const (
	// DefaultChunkSize is the client-side transfer window in bytes.
	// The uploader hands the payload to the transport in chunks of at
	// most this size and checks for cancellation between chunks.
	// Override via config: upload.chunk_size
	DefaultChunkSize = 32 * 1024

	// DefaultURLExpiry is the presigned URL validity window. Size this
	// generously relative to worst-case transfer time; the store rejects
	// uploads that outlive it.
	// Override via config: upload.url_expiry
	DefaultURLExpiry = 15 * time.Minute

	// MaxURLExpiry is the longest validity window the signing scheme
	// accepts (7 days).
	MaxURLExpiry = 7 * 24 * time.Hour

	// DefaultRequestTimeout bounds one upload attempt end to end.
	// Override via config: upload.request_timeout
	DefaultRequestTimeout = 5 * time.Minute

	// DefaultRejectBodyLimit is the maximum number of response body bytes
	// kept for diagnostics when the store rejects an upload.
	// Override via config: upload.reject_body_limit
	DefaultRejectBodyLimit = 512
)

// =============================================================================
// Pipelined Mode Defaults
// =============================================================================

const (
	// DefaultEncodedBudgetBytes caps the encoded batches buffered between
	// the encode and upload stages in pipelined mode. When the budget is
	// spent, encoding blocks until an upload completes.
	// Override via config: run.encoded_budget_bytes
	DefaultEncodedBudgetBytes = 8 * 1024 * 1024
)

// =============================================================================
// Readiness Defaults
// =============================================================================

const (
	// DefaultProbeTimeout bounds the connectivity probe.
	// Override via config: readiness.probe_timeout
	DefaultProbeTimeout = 10 * time.Second

	// ClockFloorUnix is the build-era floor for clock sanity. A wall
	// clock before this instant cannot be synchronized, and signatures
	// minted with it would be rejected for skew.
	ClockFloorUnix = 1704067200 // 2024-01-01 00:00:00 UTC
)
