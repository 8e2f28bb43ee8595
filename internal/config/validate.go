package config

import (
	"fmt"

	defaults "github.com/xtxerr/uplake/config"
	"github.com/xtxerr/uplake/internal/constants"
	"github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/validation"
)

// Validate checks the configuration for errors.
//
// All problems are collected so a broken config surfaces every issue in
// one pass instead of one per run.
func (c *Config) Validate() error {
	errs := errors.NewValidationErrors()

	c.validateRun(errs)
	c.validateGenerator(errs)
	c.validateStore(errs)
	c.validateEncoder(errs)
	c.validateUpload(errs)
	c.validateReadiness(errs)
	c.validateLogging(errs)

	return errs.Err()
}

func (c *Config) validateRun(errs *errors.ValidationErrors) {
	if c.Run.Batches <= 0 {
		errs.AddField("run.batches", "must be positive")
	}
	if c.Run.RowsPerBatch <= 0 {
		errs.AddField("run.rows_per_batch", "must be positive")
	}

	if !constants.IsValidRunMode(c.Run.Mode) {
		errs.AddField("run.mode", fmt.Sprintf("must be one of: %v", constants.ValidRunModes))
	}

	if err := validation.ValidateEntityName(c.Run.DeviceClass); err != nil {
		errs.AddField("run.device_class", err.Error())
	}
	if err := validation.ValidateEntityName(c.Run.ArtifactName); err != nil {
		errs.AddField("run.artifact_name", err.Error())
	}

	if c.Run.Mode == constants.RunModePipelined && c.Run.EncodedBudgetBytes <= 0 {
		errs.AddField("run.encoded_budget_bytes", "must be positive in pipelined mode")
	}
}

func (c *Config) validateGenerator(errs *errors.ValidationErrors) {
	if c.Generator.BaseTimestampMs <= 0 {
		errs.AddField("generator.base_timestamp_ms", "must be positive")
	}
	if c.Generator.RowSpacingMs <= 0 {
		errs.AddField("generator.row_spacing_ms", "must be positive")
	}
	if c.Generator.BatchSpacingMs < 0 {
		errs.AddField("generator.batch_spacing_ms", "must be non-negative")
	}
}

func (c *Config) validateStore(errs *errors.ValidationErrors) {
	if c.Store.Bucket == "" {
		errs.AddMissing("store.bucket")
	} else if err := validation.ValidateBucketName(c.Store.Bucket); err != nil {
		errs.AddField("store.bucket", err.Error())
	}

	if c.Store.Region == "" {
		errs.AddMissing("store.region")
	}

	if err := validation.ValidateKeyPrefix(c.Store.Prefix); err != nil {
		errs.AddField("store.prefix", err.Error())
	}

	if err := validation.ValidateName(c.Store.Extension, validation.KeySegmentRules()); err != nil {
		errs.AddField("store.extension", err.Error())
	}

	if c.Store.Credentials.AccessKeyID == "" {
		errs.AddField("store.credentials.access_key_id",
			"cannot be empty (set "+constants.EnvAccessKeyID+" or "+constants.EnvAWSAccessKeyID+")")
	}
	if c.Store.Credentials.SecretAccessKey == "" {
		errs.AddField("store.credentials.secret_access_key",
			"cannot be empty (set "+constants.EnvSecretAccessKey+" or "+constants.EnvAWSSecretAccessKey+")")
	}
}

func (c *Config) validateEncoder(errs *errors.ValidationErrors) {
	validCodecs := map[string]bool{
		"snappy": true,
		"zstd":   true,
		"lz4":    true,
		"gzip":   true,
		"none":   true,
		"":       true, // Empty defaults to snappy
	}
	if !validCodecs[c.Encoder.Compression] {
		errs.AddField("encoder.compression", "must be one of: snappy, zstd, lz4, gzip, none")
	}

	if c.Encoder.Compression == "zstd" && (c.Encoder.CompressionLevel < 0 || c.Encoder.CompressionLevel > 22) {
		errs.AddField("encoder.compression_level", "for zstd must be between 0 and 22")
	}
	if c.Encoder.Compression == "gzip" && (c.Encoder.CompressionLevel < 0 || c.Encoder.CompressionLevel > 9) {
		errs.AddField("encoder.compression_level", "for gzip must be between 0 and 9")
	}
}

func (c *Config) validateUpload(errs *errors.ValidationErrors) {
	if c.Upload.ChunkSize < 1 {
		errs.AddField("upload.chunk_size", "must be at least 1 byte")
	}

	if c.Upload.URLExpiry <= 0 {
		errs.AddField("upload.url_expiry", "must be positive")
	} else if c.Upload.URLExpiry > defaults.MaxURLExpiry {
		errs.AddField("upload.url_expiry",
			fmt.Sprintf("cannot exceed %v (signing scheme limit)", defaults.MaxURLExpiry))
	}

	if c.Upload.RequestTimeout <= 0 {
		errs.AddField("upload.request_timeout", "must be positive")
	}

	if c.Upload.RejectBodyLimit < 0 {
		errs.AddField("upload.reject_body_limit", "must be non-negative")
	}
}

func (c *Config) validateReadiness(errs *errors.ValidationErrors) {
	if c.Readiness.ProbeTimeout <= 0 {
		errs.AddField("readiness.probe_timeout", "must be positive")
	}
}

func (c *Config) validateLogging(errs *errors.ValidationErrors) {
	validLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warn":    true,
		"warning": true,
		"error":   true,
		"":        true, // Empty defaults to info
	}
	if !validLevels[c.Logging.Level] {
		errs.AddField("logging.level", "must be one of: debug, info, warn, error")
	}
}
