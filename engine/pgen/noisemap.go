package pgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Octave is one explicitly placed layer of a NoiseMap.
type Octave struct {
	Freq, Scale float64
}

// NoiseMap layers a sampler at hand picked frequencies and scales, then shapes
// the sum with an exponent. The sign of the sum is kept so that samplers with
// negative output still work.
type NoiseMap struct {
	sampler  Sampler
	octaves  []Octave
	exponent float64
}

func NewNoiseMap(sampler Sampler, octaves []Octave, exponent float64) *NoiseMap {
	return &NoiseMap{
		sampler:  sampler,
		octaves:  octaves,
		exponent: exponent,
	}
}

func (n *NoiseMap) Eval2(x, y float64) (float64, error) {
	ret := 0.0
	for i := range n.octaves {
		xNoise := n.octaves[i].Freq * x
		yNoise := n.octaves[i].Freq * y
		v, err := n.sampler.Eval2(xNoise, yNoise)
		if err != nil {
			return 0, err
		}
		ret += n.octaves[i].Scale * v
	}

	if n.exponent != 1 {
		ret = math.Copysign(math.Pow(math.Abs(ret), n.exponent), ret)
	}
	return ret, nil
}

// TotalScale is the sum of all octave scales. A map whose scales sum to 1 keeps
// the range of its sampler.
func (n *NoiseMap) TotalScale() float64 {
	total := 0.0
	for _, o := range n.octaves {
		total += o.Scale
	}
	return total
}

// ParseOctaves reads a list like "0.01:0.6,0.05:0.3" into freq:scale pairs.
func ParseOctaves(s string) ([]Octave, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	octaves := make([]Octave, 0, len(parts))
	for _, part := range parts {
		pair := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("invalid octave %q (expected freq:scale)", part)
		}
		freq, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid octave frequency %q: %w", pair[0], err)
		}
		scale, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid octave scale %q: %w", pair[1], err)
		}
		octaves = append(octaves, Octave{freq, scale})
	}
	return octaves, nil
}
