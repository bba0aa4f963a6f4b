package pgen

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Sampler is anything that produces a 2D scalar field. *Field implements it.
type Sampler interface {
	Eval2(x, y float64) (float64, error)
}

// Simplex adapts opensimplex noise, which is already normalized to [0, 1].
type Simplex struct {
	noise opensimplex.Noise
}

func NewSimplex(seed int64) *Simplex {
	return &Simplex{opensimplex.NewNormalized(seed)}
}

func (s *Simplex) Eval2(x, y float64) (float64, error) {
	return s.noise.Eval2(x, y), nil
}

// Classic adapts the gegl style Perlin implementation from go-perlin. Alpha is
// the amplitude divisor and beta the frequency multiplier between octaves.
type Classic struct {
	noise *perlin.Perlin
}

func NewClassic(alpha, beta float64, octaves int32, seed int64) *Classic {
	return &Classic{perlin.NewPerlin(alpha, beta, octaves, seed)}
}

func (c *Classic) Eval2(x, y float64) (float64, error) {
	return c.noise.Noise2D(x, y), nil
}

// Source names accepted by NewSampler
const (
	SourceField   = "field"
	SourceShuffle = "shuffled"
	SourceSimplex = "simplex"
	SourceClassic = "classic"
)

// NewSampler builds a seeded sampler by name. Field based sources start from cfg.
func NewSampler(source string, seed int64, cfg Config) (Sampler, error) {
	var field *Field
	switch source {
	case SourceField, "":
		perm, err := NewPermutationTable(SeededSource(seed))
		if err != nil {
			return nil, err
		}
		field = NewFieldFromTable(perm)
	case SourceShuffle:
		field = NewFieldFromTable(ShuffledPermutation(randFromSeed(seed)))
	case SourceSimplex:
		return NewSimplex(seed), nil
	case SourceClassic:
		return NewClassic(2, 2, int32(cfg.Octaves), seed), nil
	default:
		return nil, fmt.Errorf("unknown noise source %q", source)
	}

	err := field.Configure(cfg)
	if err != nil {
		return nil, err
	}
	return field, nil
}

// Slice is the plane z, t of a 4D field viewed as a 2D sampler.
type Slice struct {
	Field *Field
	Z, T  float64
}

func (s Slice) Eval2(x, y float64) (float64, error) {
	return s.Field.Eval4(x, y, s.Z, s.T)
}
