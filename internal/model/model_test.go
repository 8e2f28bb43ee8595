package model

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestReadingTimestampTime(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	r := Reading{
		TimestampMs: now.UnixMilli(),
	}

	if !r.TimestampTime().Equal(now) {
		t.Errorf("expected %v, got %v", now, r.TimestampTime())
	}
}

func TestReadingValidate(t *testing.T) {
	valid := Reading{
		TimestampMs:   1733270400000,
		Temperature:   20.0,
		Humidity:      45.0,
		Pressure:      1013.25,
		PM1:           5.0,
		PM25:          8.0,
		PM10:          12.0,
		GasResistance: 50000.0,
		Light:         100.0,
		Noise:         35.0,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error for valid reading: %v", err)
	}

	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name    string
		mutate  func(r *Reading)
		errPart string
	}{
		{"zero timestamp", func(r *Reading) { r.TimestampMs = 0 }, "timestamp"},
		{"negative timestamp", func(r *Reading) { r.TimestampMs = -1 }, "timestamp"},
		{"nan temperature", func(r *Reading) { r.Temperature = nan }, "temperature"},
		{"inf humidity", func(r *Reading) { r.Humidity = inf }, "humidity"},
		{"nan pressure", func(r *Reading) { r.Pressure = nan }, "pressure"},
		{"nan pm2_5", func(r *Reading) { r.PM25 = nan }, "pm2_5"},
		{"inf gas resistance", func(r *Reading) { r.GasResistance = inf }, "gas_resistance"},
		{"nan noise", func(r *Reading) { r.Noise = nan }, "noise"},
	}

	for _, tt := range tests {
		r := valid
		tt.mutate(&r)
		err := r.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.errPart) {
			t.Errorf("%s: expected error mentioning %q, got %v", tt.name, tt.errPart, err)
		}
	}
}

func TestReadingZeroValuesAreValid(t *testing.T) {
	// Zero measurements are legitimate readings (a dark, silent room).
	r := Reading{TimestampMs: 1}

	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()

	if s.Arity() != 10 {
		t.Fatalf("expected 10 columns, got %d", s.Arity())
	}

	expected := []string{
		"timestamp",
		"temperature",
		"humidity",
		"pressure",
		"pm1_0",
		"pm2_5",
		"pm10",
		"gas_resistance",
		"light",
		"noise",
	}

	cols := s.Columns()
	for i, name := range expected {
		if cols[i] != name {
			t.Errorf("column %d: expected %s, got %s", i, name, cols[i])
		}
	}

	if s.Fields[0].Type != FieldTypeInt64 {
		t.Errorf("timestamp column: expected int64, got %s", s.Fields[0].Type)
	}
	for _, f := range s.Fields[1:] {
		if f.Type != FieldTypeFloat32 {
			t.Errorf("column %s: expected float32, got %s", f.Name, f.Type)
		}
		if f.Nullable {
			t.Errorf("column %s: expected non-nullable", f.Name)
		}
	}
}

func TestFieldTypeString(t *testing.T) {
	tests := []struct {
		ft       FieldType
		expected string
	}{
		{FieldTypeInt64, "int64"},
		{FieldTypeFloat32, "float32"},
		{FieldType(99), "unknown"},
	}

	for _, tt := range tests {
		if tt.ft.String() != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, tt.ft.String())
		}
	}
}

func TestEncodedBatchLen(t *testing.T) {
	b := EncodedBatch{
		Index: 0,
		Key:   "opensensor-test/esp32s3/sensor-readings_000.parquet",
		Data:  []byte{0x50, 0x41, 0x52, 0x31},
		Rows:  0,
	}

	if b.Len() != 4 {
		t.Errorf("expected 4 bytes, got %d", b.Len())
	}
}

func TestSignedRequestExpired(t *testing.T) {
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	r := SignedRequest{
		Method:    "PUT",
		ExpiresAt: base.Add(15 * time.Minute),
	}

	if r.Expired(base) {
		t.Error("expected valid at issue time")
	}
	if r.Expired(base.Add(15 * time.Minute)) {
		t.Error("expected valid exactly at expiry")
	}
	if !r.Expired(base.Add(15*time.Minute + time.Second)) {
		t.Error("expected expired after expiry")
	}
}

func TestSignedRequestRedacted(t *testing.T) {
	r := SignedRequest{
		URL: "https://bucket.s3.us-west-2.amazonaws.com/a/b_000.parquet?X-Amz-Signature=deadbeef&X-Amz-Expires=900",
	}

	redacted := r.Redacted()
	if strings.Contains(redacted, "deadbeef") {
		t.Errorf("redacted URL still carries signature: %s", redacted)
	}
	if redacted != "https://bucket.s3.us-west-2.amazonaws.com/a/b_000.parquet" {
		t.Errorf("unexpected redacted URL: %s", redacted)
	}
}

func TestUploadOutcomeSucceeded(t *testing.T) {
	tests := []struct {
		name     string
		outcome  UploadOutcome
		expected bool
	}{
		{"ok 200", UploadOutcome{StatusCode: 200}, true},
		{"created 201", UploadOutcome{StatusCode: 201}, true},
		{"forbidden", UploadOutcome{StatusCode: 403, Err: errors.New("rejected")}, false},
		{"transport failure", UploadOutcome{StatusCode: 0, Err: errors.New("refused")}, false},
		// A 2xx paired with an error must never count as success.
		{"error despite 200", UploadOutcome{StatusCode: 200, Err: errors.New("short write")}, false},
	}

	for _, tt := range tests {
		if tt.outcome.Succeeded() != tt.expected {
			t.Errorf("%s: expected %v", tt.name, tt.expected)
		}
	}
}
