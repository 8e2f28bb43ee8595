package encoder

import (
	"bytes"
	"io"

	"github.com/parquet-go/parquet-go"

	apperrors "github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/model"
)

// Reader decodes a columnar file image back into readings.
//
// The upload pipeline itself never reads; this exists for the optional
// post-encode verification pass and for tests.
type Reader struct {
	file   *parquet.File
	reader *parquet.GenericReader[model.Reading]
}

// NewReader creates a Reader over an encoded buffer.
func NewReader(data []byte) (*Reader, error) {
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)),
		parquet.ReadBufferSize(1024*1024))
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrEncoding, "parse columnar file: %v", err)
	}

	reader := parquet.NewGenericReader[model.Reading](file)

	return &Reader{
		file:   file,
		reader: reader,
	}, nil
}

// NumRows returns the total number of rows in the buffer.
func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// ColumnNames returns the column names in file order.
func (r *Reader) ColumnNames() []string {
	fields := r.file.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// ReadAll decodes every row in the buffer.
//
// A buffer whose column layout disagrees with the reading schema fails
// here; that is the mismatch detection path for foreign files.
func (r *Reader) ReadAll() ([]model.Reading, error) {
	numRows := r.reader.NumRows()
	if numRows == 0 {
		return []model.Reading{}, nil
	}

	rows := make([]model.Reading, numRows)
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, apperrors.Wrapf(apperrors.ErrSchemaMismatch, "decode rows: %v", err)
	}
	if int64(n) != numRows {
		return nil, apperrors.Wrapf(apperrors.ErrSchemaMismatch,
			"decoded %d of %d rows", n, numRows)
	}

	return rows, nil
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.reader.Close()
}

// Decode is a convenience wrapper that decodes a whole buffer at once.
func Decode(data []byte) ([]model.Reading, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return r.ReadAll()
}
