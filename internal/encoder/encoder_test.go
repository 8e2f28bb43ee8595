package encoder

import (
	"bytes"
	"math"
	"testing"

	apperrors "github.com/xtxerr/uplake/internal/errors"
	"github.com/xtxerr/uplake/internal/model"
)

const epsilon = 1e-6

func makeReadings(n int) []model.Reading {
	readings := make([]model.Reading, n)
	for i := range readings {
		readings[i] = model.Reading{
			TimestampMs:   1733270400000 + int64(i)*5000,
			Temperature:   20.0 + float32(i)*0.02,
			Humidity:      45.0 + float32(i)*0.05,
			Pressure:      1013.25,
			PM1:           5.0,
			PM25:          8.0,
			PM10:          12.0,
			GasResistance: 50000.0 + float32(i)*100.0,
			Light:         100.0 + float32(i)*2.0,
			Noise:         35.0,
		}
	}
	return readings
}

func floatClose(a, b float32) bool {
	return math.Abs(float64(a)-float64(b)) <= epsilon
}

func TestEncodeBasic(t *testing.T) {
	e := New(DefaultOptions())

	batch, err := e.Encode(0, "opensensor-test/esp32s3/sensor-readings_000.parquet", makeReadings(10))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if batch.Index != 0 {
		t.Errorf("expected index 0, got %d", batch.Index)
	}
	if batch.Key != "opensensor-test/esp32s3/sensor-readings_000.parquet" {
		t.Errorf("unexpected key: %s", batch.Key)
	}
	if batch.Rows != 10 {
		t.Errorf("expected 10 rows, got %d", batch.Rows)
	}
	if batch.Len() == 0 {
		t.Error("expected non-empty buffer")
	}

	// A complete file image carries the magic marker at both ends.
	magic := []byte("PAR1")
	if !bytes.HasPrefix(batch.Data, magic) || !bytes.HasSuffix(batch.Data, magic) {
		t.Error("expected complete file image")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := New(DefaultOptions())
	readings := makeReadings(178)

	batch, err := e.Encode(0, "k", readings)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(batch.Data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded) != len(readings) {
		t.Fatalf("expected %d rows, got %d", len(readings), len(decoded))
	}

	for i := range readings {
		if decoded[i].TimestampMs != readings[i].TimestampMs {
			t.Errorf("row %d: expected ts %d, got %d",
				i, readings[i].TimestampMs, decoded[i].TimestampMs)
		}
		if !floatClose(decoded[i].Temperature, readings[i].Temperature) {
			t.Errorf("row %d: expected temperature %v, got %v",
				i, readings[i].Temperature, decoded[i].Temperature)
		}
		if !floatClose(decoded[i].GasResistance, readings[i].GasResistance) {
			t.Errorf("row %d: expected gas resistance %v, got %v",
				i, readings[i].GasResistance, decoded[i].GasResistance)
		}
		if !floatClose(decoded[i].Noise, readings[i].Noise) {
			t.Errorf("row %d: expected noise %v, got %v",
				i, readings[i].Noise, decoded[i].Noise)
		}
	}
}

func TestEncodeSingleRow(t *testing.T) {
	e := New(DefaultOptions())

	batch, err := e.Encode(0, "k", makeReadings(1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(batch.Data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 row, got %d", len(decoded))
	}
}

func TestEncodeEmpty(t *testing.T) {
	e := New(DefaultOptions())

	batch, err := e.Encode(0, "k", nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if batch.Rows != 0 {
		t.Errorf("expected 0 rows, got %d", batch.Rows)
	}
	if batch.Len() == 0 {
		t.Error("expected valid empty file image, got empty buffer")
	}

	decoded, err := Decode(batch.Data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected 0 rows, got %d", len(decoded))
	}
}

func TestEncodeRejectsNonFinite(t *testing.T) {
	e := New(DefaultOptions())

	readings := makeReadings(5)
	readings[3].Humidity = float32(math.NaN())

	_, err := e.Encode(0, "k", readings)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.Is(err, apperrors.ErrSchemaMismatch) {
		t.Errorf("expected schema mismatch, got %v", err)
	}
	if !apperrors.IsEncodeError(err) {
		t.Errorf("expected encode error category, got %v", err)
	}
}

func TestSchemaStability(t *testing.T) {
	e := New(DefaultOptions())
	expected := model.DefaultSchema().Columns()

	// The column layout must not depend on row count or codec.
	for _, n := range []int{0, 1, 178} {
		batch, err := e.Encode(0, "k", makeReadings(n))
		if err != nil {
			t.Fatalf("Encode(%d rows): %v", n, err)
		}

		r, err := NewReader(batch.Data)
		if err != nil {
			t.Fatalf("NewReader: %v", err)
		}

		cols := r.ColumnNames()
		r.Close()

		if len(cols) != len(expected) {
			t.Fatalf("%d rows: expected %d columns, got %d", n, len(expected), len(cols))
		}
		for i := range expected {
			if cols[i] != expected[i] {
				t.Errorf("%d rows: column %d: expected %s, got %s", n, i, expected[i], cols[i])
			}
		}
	}
}

func TestCompressionTypes(t *testing.T) {
	compressions := []struct {
		name string
		ct   CompressionType
	}{
		{"none", CompressionNone},
		{"snappy", CompressionSnappy},
		{"zstd", CompressionZstd},
		{"lz4", CompressionLZ4},
		{"gzip", CompressionGzip},
	}

	readings := makeReadings(50)

	for _, tc := range compressions {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Compression = tc.ct

			batch, err := New(opts).Encode(0, "k", readings)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			decoded, err := Decode(batch.Data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(decoded) != 50 {
				t.Errorf("expected 50 rows, got %d", len(decoded))
			}
			if decoded[49].TimestampMs != readings[49].TimestampMs {
				t.Errorf("expected ts %d, got %d",
					readings[49].TimestampMs, decoded[49].TimestampMs)
			}
		})
	}
}

func TestParseCompressionType(t *testing.T) {
	tests := []struct {
		input    string
		expected CompressionType
	}{
		{"snappy", CompressionSnappy},
		{"zstd", CompressionZstd},
		{"lz4", CompressionLZ4},
		{"gzip", CompressionGzip},
		{"none", CompressionNone},
		{"", CompressionSnappy},
		{"invalid", CompressionSnappy},
	}

	for _, tt := range tests {
		result := ParseCompressionType(tt.input)
		if result != tt.expected {
			t.Errorf("ParseCompressionType(%s): expected %s, got %s", tt.input, tt.expected, result)
		}
	}
}

func TestCompressionTypeString(t *testing.T) {
	tests := []struct {
		ct       CompressionType
		expected string
	}{
		{CompressionNone, "none"},
		{CompressionSnappy, "snappy"},
		{CompressionZstd, "zstd"},
		{CompressionLZ4, "lz4"},
		{CompressionGzip, "gzip"},
	}

	for _, tt := range tests {
		if tt.ct.String() != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, tt.ct.String())
		}
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not a columnar file"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsEncodeError(err) {
		t.Errorf("expected encode error category, got %v", err)
	}

	_, err = Decode(nil)
	if err == nil {
		t.Fatal("expected error for empty buffer")
	}
}

func TestEncodedSizeVariesWithCompression(t *testing.T) {
	readings := makeReadings(178)

	noneOpts := DefaultOptions()
	noneOpts.Compression = CompressionNone
	uncompressed, err := New(noneOpts).Encode(0, "k", readings)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	zstdOpts := DefaultOptions()
	zstdOpts.Compression = CompressionZstd
	compressed, err := New(zstdOpts).Encode(0, "k", readings)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Linear ramps compress well; zstd should beat the raw encoding.
	if compressed.Len() >= uncompressed.Len() {
		t.Errorf("expected zstd (%d bytes) smaller than uncompressed (%d bytes)",
			compressed.Len(), uncompressed.Len())
	}
}

func BenchmarkEncode(b *testing.B) {
	e := New(DefaultOptions())
	readings := makeReadings(178)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Encode(0, "k", readings); err != nil {
			b.Fatalf("Encode: %v", err)
		}
	}
}
