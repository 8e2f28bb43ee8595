// Package constants provides centralized domain-specific constants
// for the entire uplake application.
//
// This file consolidates all magic strings and values that were
// previously scattered across multiple packages.
package constants

// =============================================================================
// Run Mode - How batches move through the pipeline
// =============================================================================

const (
	// RunModeSequential processes one batch at a time, blocking on each
	// upload before the next batch's encode begins
	RunModeSequential = "sequential"

	// RunModePipelined overlaps batch N's upload with batch N+1's encode
	RunModePipelined = "pipelined"
)

// ValidRunModes contains all valid run mode values
var ValidRunModes = []string{RunModeSequential, RunModePipelined}

// IsValidRunMode checks if a run mode is valid
func IsValidRunMode(mode string) bool {
	for _, m := range ValidRunModes {
		if m == mode {
			return true
		}
	}
	return false
}

// =============================================================================
// Object Store Wire Contract
// =============================================================================

const (
	// ServiceS3 is the signing service name for S3-compatible stores
	ServiceS3 = "s3"

	// ContentTypeParquet is the MIME type sent with uploaded files
	ContentTypeParquet = "application/vnd.apache.parquet"

	// UnsignedPayload is the content hash used when the body is not
	// known at signing time
	UnsignedPayload = "UNSIGNED-PAYLOAD"
)

// =============================================================================
// Presigned URL Query Parameters
// =============================================================================

const (
	// QueryExpires carries the validity window in seconds from the
	// X-Amz-Date signing instant. The signer sets it before signing so
	// the signature covers it; the rest of the X-Amz family is emitted
	// by the signing library itself.
	QueryExpires = "X-Amz-Expires"
)

// =============================================================================
// Environment Variables
// =============================================================================

const (
	// EnvAccessKeyID overrides the configured access key
	EnvAccessKeyID = "UPLAKE_ACCESS_KEY_ID"

	// EnvSecretAccessKey overrides the configured secret key
	EnvSecretAccessKey = "UPLAKE_SECRET_ACCESS_KEY"

	// EnvSessionToken overrides the configured session token
	EnvSessionToken = "UPLAKE_SESSION_TOKEN"

	// EnvAWSAccessKeyID is the standard SDK access key variable,
	// honored when the UPLAKE_ variant is unset
	EnvAWSAccessKeyID = "AWS_ACCESS_KEY_ID"

	// EnvAWSSecretAccessKey is the standard SDK secret key variable
	EnvAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"

	// EnvAWSSessionToken is the standard SDK session token variable
	EnvAWSSessionToken = "AWS_SESSION_TOKEN"

	// EnvLogLevel overrides the configured log level
	EnvLogLevel = "UPLAKE_LOG_LEVEL"
)
