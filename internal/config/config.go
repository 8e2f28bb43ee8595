// Package config handles runtime configuration for the uplake pipeline.
//
// LOCATION: internal/config/config.go
//
// This package is responsible for:
//   - Loading YAML configuration files
//   - Expanding environment variables
//   - Applying documented defaults
//   - Sourcing credentials from the environment
//   - Object key construction

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"gopkg.in/yaml.v3"

	defaults "github.com/xtxerr/uplake/config"
	"github.com/xtxerr/uplake/internal/constants"
)

// Config represents the complete pipeline configuration.
type Config struct {
	// Run controls batch count, sizing, and pipeline mode.
	Run RunConfig `yaml:"run"`

	// Generator configures the synthetic reading source.
	Generator GeneratorConfig `yaml:"generator"`

	// Store describes the target object store.
	Store StoreConfig `yaml:"store"`

	// Encoder configures columnar encoding.
	Encoder EncoderConfig `yaml:"encoder"`

	// Upload configures the chunked uploader.
	Upload UploadConfig `yaml:"upload"`

	// Readiness configures the preflight checks.
	Readiness ReadinessConfig `yaml:"readiness"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// RunConfig controls batch count, sizing, and pipeline mode.
type RunConfig struct {
	// Batches is the number of batches processed per run.
	Batches int `yaml:"batches"`

	// RowsPerBatch is the number of readings encoded into each file.
	RowsPerBatch int `yaml:"rows_per_batch"`

	// Mode is the pipeline mode: sequential, pipelined.
	Mode string `yaml:"mode"`

	// DeviceClass is the device class segment of the object key.
	DeviceClass string `yaml:"device_class"`

	// ArtifactName is the artifact segment of the object key.
	ArtifactName string `yaml:"artifact_name"`

	// EncodedBudgetBytes caps encoded batches buffered between stages
	// in pipelined mode.
	EncodedBudgetBytes int64 `yaml:"encoded_budget_bytes"`

	// DryRun encodes and signs but skips the upload.
	DryRun bool `yaml:"dry_run"`

	// Verify decodes each encoded batch locally after upload and logs
	// the row count read back.
	Verify bool `yaml:"verify"`
}

// GeneratorConfig configures the synthetic reading source.
type GeneratorConfig struct {
	// BaseTimestampMs is the first row's timestamp in epoch milliseconds.
	BaseTimestampMs int64 `yaml:"base_timestamp_ms"`

	// RowSpacingMs is the simulated sampling interval between rows.
	RowSpacingMs int64 `yaml:"row_spacing_ms"`

	// BatchSpacingMs is the simulated gap between batch windows.
	BatchSpacingMs int64 `yaml:"batch_spacing_ms"`
}

// StoreConfig describes the target object store.
type StoreConfig struct {
	// Bucket is the target bucket name.
	Bucket string `yaml:"bucket"`

	// Region is the signing region.
	Region string `yaml:"region"`

	// Endpoint overrides the store endpoint (host or host:port).
	// Leave empty for AWS S3.
	Endpoint string `yaml:"endpoint"`

	// PathStyle forces path-style addressing. Implied by Endpoint.
	PathStyle bool `yaml:"path_style"`

	// Prefix is the leading segment of every object key.
	Prefix string `yaml:"prefix"`

	// Extension is the file extension of uploaded objects.
	Extension string `yaml:"extension"`

	// Insecure switches the store URL scheme to plain HTTP. Intended
	// for local development stores only.
	Insecure bool `yaml:"insecure"`

	// Credentials hold the long-term signing credentials. Use ${VAR}
	// references in the config file or the UPLAKE_/AWS_ environment
	// variables; never commit literal keys.
	Credentials CredentialsConfig `yaml:"credentials"`
}

// CredentialsConfig holds the long-term signing credentials.
type CredentialsConfig struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// StaticProvider returns the configured credentials as a provider for
// the signer.
func (c *CredentialsConfig) StaticProvider() aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(
		c.AccessKeyID, c.SecretAccessKey, c.SessionToken)
}

// EncoderConfig configures columnar encoding.
type EncoderConfig struct {
	// Compression is the codec: snappy, zstd, lz4, gzip, none.
	Compression string `yaml:"compression"`

	// CompressionLevel applies to level-based codecs.
	CompressionLevel int `yaml:"compression_level"`
}

// UploadConfig configures the chunked uploader.
type UploadConfig struct {
	// ChunkSize is the client-side transfer window in bytes.
	ChunkSize int `yaml:"chunk_size"`

	// URLExpiry is the presigned URL validity window.
	URLExpiry time.Duration `yaml:"url_expiry"`

	// RequestTimeout bounds one upload attempt end to end.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RejectBodyLimit is the maximum response body bytes kept when the
	// store rejects an upload.
	RejectBodyLimit int `yaml:"reject_body_limit"`
}

// ReadinessConfig configures the preflight checks.
type ReadinessConfig struct {
	// ProbeURL overrides the connectivity probe target. Defaults to the
	// store endpoint.
	ProbeURL string `yaml:"probe_url"`

	// ProbeTimeout bounds the connectivity probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the log level: debug, info, warn, error.
	Level string `yaml:"level"`

	// JSON switches output to JSON format.
	JSON bool `yaml:"json"`
}

// Load loads configuration from a YAML file.
//
// Environment variables referenced as ${VAR} in the file are expanded
// before parsing. Values not present in the file keep their defaults.
// Credentials from the environment are applied after parsing. The result
// is not validated; call Validate after any command-line overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyEnv()

	return cfg, nil
}

// Default returns a configuration with documented defaults applied.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Batches:            defaults.DefaultBatches,
			RowsPerBatch:       defaults.DefaultRowsPerBatch,
			Mode:               defaults.DefaultRunMode,
			DeviceClass:        defaults.DefaultDeviceClass,
			ArtifactName:       defaults.DefaultArtifactName,
			EncodedBudgetBytes: defaults.DefaultEncodedBudgetBytes,
		},
		Generator: GeneratorConfig{
			BaseTimestampMs: defaults.DefaultBaseTimestampMs,
			RowSpacingMs:    defaults.DefaultRowSpacingMs,
			BatchSpacingMs:  defaults.DefaultBatchSpacingMs,
		},
		Store: StoreConfig{
			Region:    defaults.DefaultRegion,
			Prefix:    defaults.DefaultKeyPrefix,
			Extension: defaults.DefaultKeyExtension,
		},
		Encoder: EncoderConfig{
			Compression:      defaults.DefaultCompression,
			CompressionLevel: defaults.DefaultCompressionLevel,
		},
		Upload: UploadConfig{
			ChunkSize:       defaults.DefaultChunkSize,
			URLExpiry:       defaults.DefaultURLExpiry,
			RequestTimeout:  defaults.DefaultRequestTimeout,
			RejectBodyLimit: defaults.DefaultRejectBodyLimit,
		},
		Readiness: ReadinessConfig{
			ProbeTimeout: defaults.DefaultProbeTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ApplyEnv overlays environment-sourced values onto the configuration.
// UPLAKE_ variables win over their AWS_ counterparts; both win over
// file values. Credentials never live in the binary.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(constants.EnvAccessKeyID); v != "" {
		c.Store.Credentials.AccessKeyID = v
	} else if v := os.Getenv(constants.EnvAWSAccessKeyID); v != "" && c.Store.Credentials.AccessKeyID == "" {
		c.Store.Credentials.AccessKeyID = v
	}

	if v := os.Getenv(constants.EnvSecretAccessKey); v != "" {
		c.Store.Credentials.SecretAccessKey = v
	} else if v := os.Getenv(constants.EnvAWSSecretAccessKey); v != "" && c.Store.Credentials.SecretAccessKey == "" {
		c.Store.Credentials.SecretAccessKey = v
	}

	if v := os.Getenv(constants.EnvSessionToken); v != "" {
		c.Store.Credentials.SessionToken = v
	} else if v := os.Getenv(constants.EnvAWSSessionToken); v != "" && c.Store.Credentials.SessionToken == "" {
		c.Store.Credentials.SessionToken = v
	}

	if v := os.Getenv(constants.EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// =============================================================================
// Object Key Construction
// =============================================================================

// ObjectKey returns the object key for a batch index:
// {prefix}/{device-class}/{artifact-name}_{batch:03d}.{ext}
//
// Keys are stable, sortable, and collision-free within a run.
func (c *Config) ObjectKey(batch int) string {
	return fmt.Sprintf("%s/%s/%s_%03d.%s",
		c.Store.Prefix, c.Run.DeviceClass, c.Run.ArtifactName, batch, c.Store.Extension)
}

// KeyDir returns the common key directory for this run's objects.
func (c *Config) KeyDir() string {
	return c.Store.Prefix + "/" + c.Run.DeviceClass
}

// StoreURL returns the s3:// location objects are written under.
func (c *Config) StoreURL() string {
	return "s3://" + c.Store.Bucket + "/" + c.KeyDir()
}

// =============================================================================
// Formatting Helpers
// =============================================================================

// FormatBytes renders a byte count in human-readable units.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}
