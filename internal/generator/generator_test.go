package generator

import (
	"math"
	"testing"
)

const epsilon = 1e-6

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func TestReadingTimestamps(t *testing.T) {
	g := New(nil)

	tests := []struct {
		batch    int
		row      int
		expected int64
	}{
		{0, 0, 1733270400000},
		{0, 1, 1733270405000},
		{0, 177, 1733271285000},
		{1, 0, 1733271300000},
		{2, 0, 1733272200000},
		{2, 177, 1733273085000},
	}

	for _, tt := range tests {
		r := g.Reading(tt.batch, tt.row)
		if r.TimestampMs != tt.expected {
			t.Errorf("batch %d row %d: expected ts %d, got %d",
				tt.batch, tt.row, tt.expected, r.TimestampMs)
		}
	}
}

func TestReadingWaveforms(t *testing.T) {
	g := New(nil)

	first := g.Reading(0, 0)
	if !floatEqual(float64(first.Temperature), 20.0) {
		t.Errorf("row 0: expected temperature 20.0, got %v", first.Temperature)
	}
	if !floatEqual(float64(first.Humidity), 45.0) {
		t.Errorf("row 0: expected humidity 45.0, got %v", first.Humidity)
	}
	if !floatEqual(float64(first.Pressure), 1013.25) {
		t.Errorf("row 0: expected pressure 1013.25, got %v", first.Pressure)
	}
	if !floatEqual(float64(first.GasResistance), 50000.0) {
		t.Errorf("row 0: expected gas resistance 50000.0, got %v", first.GasResistance)
	}

	last := g.Reading(0, 177)
	if !floatEqual(float64(last.Temperature), 23.54) {
		t.Errorf("row 177: expected temperature 23.54, got %v", last.Temperature)
	}
	if !floatEqual(float64(last.Light), 454.0) {
		t.Errorf("row 177: expected light 454.0, got %v", last.Light)
	}
	if !floatEqual(float64(last.GasResistance), 67700.0) {
		t.Errorf("row 177: expected gas resistance 67700.0, got %v", last.GasResistance)
	}
}

func TestReadingBatchOffsets(t *testing.T) {
	g := New(nil)

	// Each batch shifts temperature by +0.5 and humidity by +2.0.
	for batch := 0; batch < 3; batch++ {
		r := g.Reading(batch, 0)

		wantTemp := 20.0 + float64(batch)*0.5
		if !floatEqual(float64(r.Temperature), wantTemp) {
			t.Errorf("batch %d: expected temperature %v, got %v", batch, wantTemp, r.Temperature)
		}

		wantHum := 45.0 + float64(batch)*2.0
		if !floatEqual(float64(r.Humidity), wantHum) {
			t.Errorf("batch %d: expected humidity %v, got %v", batch, wantHum, r.Humidity)
		}
	}
}

func TestReadingCyclicFields(t *testing.T) {
	g := New(nil)

	// PM channels cycle with periods 10, 15 and 20 rows.
	a := g.Reading(0, 3)
	b := g.Reading(0, 13)
	if a.PM1 != b.PM1 {
		t.Errorf("expected pm1_0 period 10: %v vs %v", a.PM1, b.PM1)
	}
	if a.Noise != b.Noise {
		t.Errorf("expected noise period 10: %v vs %v", a.Noise, b.Noise)
	}

	c := g.Reading(0, 2)
	d := g.Reading(0, 17)
	if c.PM25 != d.PM25 {
		t.Errorf("expected pm2_5 period 15: %v vs %v", c.PM25, d.PM25)
	}

	e := g.Reading(0, 5)
	f := g.Reading(0, 25)
	if e.PM10 != f.PM10 {
		t.Errorf("expected pm10 period 20: %v vs %v", e.PM10, f.PM10)
	}
}

func TestRowsDeterministic(t *testing.T) {
	g := New(nil)

	first, err := g.Rows(1, 178)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := g.Rows(1, 178)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 178 || len(second) != 178 {
		t.Fatalf("expected 178 rows, got %d and %d", len(first), len(second))
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs between runs", i)
		}
	}
}

func TestRowsAllValid(t *testing.T) {
	g := New(nil)

	rows, err := g.Rows(0, 178)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			t.Errorf("row %d: %v", i, err)
		}
	}
}

func TestRowsEmpty(t *testing.T) {
	g := New(nil)

	rows, err := g.Rows(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestCustomTimeBase(t *testing.T) {
	g := New(&Config{
		BaseTimestampMs: 1000,
		RowSpacingMs:    10,
		BatchSpacingMs:  500,
	})

	r := g.Reading(2, 3)
	if r.TimestampMs != 1000+2*500+3*10 {
		t.Errorf("expected ts 2030, got %d", r.TimestampMs)
	}
}
