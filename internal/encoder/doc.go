// Package encoder builds compressed columnar file images in memory.
//
// The package provides:
//   - Encoder for turning reading slices into single row group Parquet buffers
//   - Reader for decoding buffers back into readings (verification path)
//   - Support for multiple compression algorithms (snappy, zstd, lz4, gzip)
//
// Nothing here touches the filesystem; encoded batches live in memory
// until they are uploaded and are dropped afterwards.
package encoder
