package pgen

import (
	"github.com/ungerik/go3d/float64/vec2"
)

// Transect returns n evenly spaced points from start to end, both included.
func Transect(start, end vec2.T, n int) []vec2.T {
	if n <= 0 {
		return nil
	}
	path := make([]vec2.T, n)
	path[0] = start
	if n == 1 {
		return path
	}
	path[len(path)-1] = end

	for i := 1; i < n-1; i++ {
		path[i] = vec2.Interpolate(&start, &end, float64(i)/float64(n-1))
	}
	return path
}

// SampleTransect evaluates s along the transect from start to end.
func SampleTransect(s Sampler, start, end vec2.T, n int) ([]float64, error) {
	path := Transect(start, end, n)
	values := make([]float64, len(path))
	for i, p := range path {
		v, err := s.Eval2(p[0], p[1])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
