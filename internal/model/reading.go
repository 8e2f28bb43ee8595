package model

import (
	"fmt"
	"math"
	"time"
)

// Reading represents a single sensor measurement row.
// This is the primary data unit flowing through the pipeline.
//
// Field order is the column order of the encoded file and is a wire
// contract with every downstream reader; changing it is a breaking
// format change. The parquet tags carry the column names.
type Reading struct {
	// Timestamp
	TimestampMs int64 `parquet:"timestamp"` // Unix timestamp in milliseconds

	// Climate
	Temperature float32 `parquet:"temperature"` // degrees Celsius
	Humidity    float32 `parquet:"humidity"`    // percent relative
	Pressure    float32 `parquet:"pressure"`    // hPa

	// Particulate matter channels
	PM1  float32 `parquet:"pm1_0"` // ug/m3, particles <= 1.0 um
	PM25 float32 `parquet:"pm2_5"` // ug/m3, particles <= 2.5 um
	PM10 float32 `parquet:"pm10"`  // ug/m3, particles <= 10 um

	// Environment
	GasResistance float32 `parquet:"gas_resistance"` // ohms
	Light         float32 `parquet:"light"`          // lux
	Noise         float32 `parquet:"noise"`          // dB
}

// TimestampTime returns the timestamp as a time.Time.
func (r *Reading) TimestampTime() time.Time {
	return time.UnixMilli(r.TimestampMs)
}

// Validate checks that every mandatory field carries a usable value.
// All fields are mandatory; a NaN or infinite measurement cannot be
// encoded into the fixed schema.
func (r *Reading) Validate() error {
	if r.TimestampMs <= 0 {
		return fmt.Errorf("timestamp must be positive, got %d", r.TimestampMs)
	}

	for _, f := range []struct {
		name  string
		value float32
	}{
		{"temperature", r.Temperature},
		{"humidity", r.Humidity},
		{"pressure", r.Pressure},
		{"pm1_0", r.PM1},
		{"pm2_5", r.PM25},
		{"pm10", r.PM10},
		{"gas_resistance", r.GasResistance},
		{"light", r.Light},
		{"noise", r.Noise},
	} {
		v := float64(f.value)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("field %s: non-finite value", f.name)
		}
	}

	return nil
}
