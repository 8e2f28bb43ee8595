// Package model defines the core data types used throughout the pipeline.
//
// Key types:
//   - Reading: A single sensor measurement row
//   - Schema: The fixed column layout shared by writer and readers
//   - EncodedBatch: A compressed columnar buffer ready for upload
//   - SignedRequest: A time-limited upload authorization
//   - UploadOutcome: The per-batch result record
package model
