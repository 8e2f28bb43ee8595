// Package generator produces synthetic sensor readings.
//
// The generator is fully deterministic: the reading at (batch, row) is
// a pure function of the indices and the configured time base. Two runs
// with the same configuration produce bit-identical rows, which makes
// encoded output reproducible end to end.
//
// The waveforms are simple linear ramps plus small cyclic components,
// shaped to resemble a slowly warming room with periodic particulate
// noise. They exist to exercise the pipeline, not to model physics.
package generator

import (
	defaults "github.com/xtxerr/uplake/config"
	"github.com/xtxerr/uplake/internal/model"
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds generator configuration.
type Config struct {
	// BaseTimestampMs is the timestamp of batch 0, row 0, in Unix ms.
	BaseTimestampMs int64

	// RowSpacingMs is the interval between consecutive rows.
	RowSpacingMs int64

	// BatchSpacingMs is the interval between batch time windows.
	BatchSpacingMs int64
}

// DefaultConfig returns default generator configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseTimestampMs: defaults.DefaultBaseTimestampMs,
		RowSpacingMs:    defaults.DefaultRowSpacingMs,
		BatchSpacingMs:  defaults.DefaultBatchSpacingMs,
	}
}

// =============================================================================
// Generator
// =============================================================================

// Generator produces deterministic readings for a run.
//
// Generator is stateless after construction and safe for concurrent use.
type Generator struct {
	baseTimestampMs int64
	rowSpacingMs    int64
	batchSpacingMs  int64
}

// New creates a new Generator.
func New(cfg *Config) *Generator {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Generator{
		baseTimestampMs: cfg.BaseTimestampMs,
		rowSpacingMs:    cfg.RowSpacingMs,
		batchSpacingMs:  cfg.BatchSpacingMs,
	}
}

// Reading returns the reading at the given batch and row index.
func (g *Generator) Reading(batch, row int) model.Reading {
	i := float64(row)
	b := float64(batch)

	return model.Reading{
		TimestampMs: g.baseTimestampMs +
			int64(batch)*g.batchSpacingMs +
			int64(row)*g.rowSpacingMs,
		Temperature:   float32(20.0 + i*0.02 + b*0.5),
		Humidity:      float32(45.0 + i*0.05 + b*2.0),
		Pressure:      float32(1013.25 + i*0.01),
		PM1:           float32(5.0 + float64(row%10)*0.1),
		PM25:          float32(8.0 + float64(row%15)*0.2),
		PM10:          float32(12.0 + float64(row%20)*0.3),
		GasResistance: float32(50000.0 + i*100.0),
		Light:         float32(100.0 + i*2.0),
		Noise:         float32(35.0 + float64(row%10)*0.5),
	}
}

// Rows returns count readings for the given batch index.
//
// Rows implements the orchestrator's row source contract; generation
// cannot fail, so the error is always nil.
func (g *Generator) Rows(batch, count int) ([]model.Reading, error) {
	readings := make([]model.Reading, count)
	for i := range readings {
		readings[i] = g.Reading(batch, i)
	}
	return readings, nil
}
