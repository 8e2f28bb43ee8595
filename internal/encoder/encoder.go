package encoder

import (
	"bytes"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	defaults "github.com/xtxerr/uplake/config"
	apperrors "github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/model"
)

// =============================================================================
// Options
// =============================================================================

// Options configures the columnar encoder.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// CompressionLevel for algorithms that support it (zstd: 1-22).
	// The bundled codecs run at their tuned defaults; the level is
	// validated at config load and kept for forward compatibility.
	CompressionLevel int

	// RowGroupSize is the maximum number of rows per row group. Every
	// batch this pipeline produces fits inside one row group, so the
	// encoded file always carries exactly one.
	RowGroupSize int
}

// CompressionType represents a columnar compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// String returns the canonical name of the compression type.
func (ct CompressionType) String() string {
	switch ct {
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionGzip:
		return "gzip"
	default:
		return "none"
	}
}

// DefaultOptions returns default encoder options.
func DefaultOptions() Options {
	return Options{
		Compression:      ParseCompressionType(defaults.DefaultCompression),
		CompressionLevel: defaults.DefaultCompressionLevel,
		RowGroupSize:     100000,
	}
}

// ParseCompressionType parses a compression type string. An empty or
// unknown name maps to the snappy default; "none" is the only way to
// request an uncompressed file.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none":
		return CompressionNone
	default:
		return CompressionSnappy
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// =============================================================================
// Encoder
// =============================================================================

// Encoder turns reading slices into complete columnar file images.
//
// Each Encode call produces an independent buffer with the full file
// structure (schema, row group, footer), ready for upload as-is. The
// column layout comes from the model.Reading field order and never
// varies between batches.
//
// Encoder is stateless and safe for concurrent use.
type Encoder struct {
	opts Options
}

// New creates a new Encoder.
func New(opts Options) *Encoder {
	if opts.RowGroupSize <= 0 {
		opts.RowGroupSize = DefaultOptions().RowGroupSize
	}
	return &Encoder{opts: opts}
}

// Options returns the encoder options.
func (e *Encoder) Options() Options {
	return e.opts
}

// Encode builds the columnar file image for one batch.
//
// Every reading is validated before any bytes are produced; a reading
// that cannot be represented in the fixed column layout fails the whole
// batch. Zero readings is legal and yields a valid empty file.
func (e *Encoder) Encode(index int, key string, readings []model.Reading) (*model.EncodedBatch, error) {
	for i := range readings {
		if err := readings[i].Validate(); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrSchemaMismatch, "row %d: %v", i, err)
		}
	}

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[model.Reading](&buf,
		parquet.Compression(getCompression(e.opts.Compression)),
		parquet.MaxRowsPerRowGroup(int64(e.opts.RowGroupSize)),
	)

	if len(readings) > 0 {
		n, err := writer.Write(readings)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrEncoding, "write rows: %v", err)
		}
		if n != len(readings) {
			return nil, apperrors.Wrapf(apperrors.ErrEncoding,
				"short write: %d of %d rows", n, len(readings))
		}
	}

	if err := writer.Close(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrEncoding, "close writer: %v", err)
	}

	return &model.EncodedBatch{
		Index: index,
		Key:   key,
		Data:  buf.Bytes(),
		Rows:  len(readings),
	}, nil
}
