package pgen

import (
	"fmt"
	"math"
)

// Config controls the fractal sum. It never affects the permutation table.
type Config struct {
	Octaves     int     // Number of layers summed, 0 yields a flat field
	Persistence float64 // Amplitude multiplier between successive octaves
	Zoom        float64 // Divides every input coordinate, must be nonzero
}

func DefaultConfig() Config {
	return Config{
		Octaves:     1,
		Persistence: 1.0,
		Zoom:        1.0,
	}
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Octaves < 0 {
		return fmt.Errorf("%w: %w (%d)", ErrInvalidConfig, ErrNegativeOctaves, c.Octaves)
	}
	if !finite(c.Persistence) {
		return fmt.Errorf("%w: persistence %w (%v)", ErrInvalidConfig, ErrNonFinite, c.Persistence)
	}
	if !finite(c.Zoom) {
		return fmt.Errorf("%w: zoom %w (%v)", ErrInvalidConfig, ErrNonFinite, c.Zoom)
	}
	if c.Zoom == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrZeroZoom)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
