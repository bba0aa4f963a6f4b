package pgen

import (
	"math"
	"testing"

	"github.com/ungerik/go3d/float64/vec2"
)

func TestTransect(t *testing.T) {
	start := vec2.T{0, 0}
	end := vec2.T{4, -8}
	path := Transect(start, end, 5)
	if len(path) != 5 {
		t.Fatalf("expected 5 points, got %d", len(path))
	}
	for i, p := range path {
		want := vec2.T{float64(i), -2 * float64(i)}
		if math.Abs(p[0]-want[0]) > 1e-12 || math.Abs(p[1]-want[1]) > 1e-12 {
			t.Errorf("point %d: expected %v, got %v", i, want, p)
		}
	}

	if Transect(start, end, 0) != nil {
		t.Errorf("expected nil path for n = 0")
	}
	if single := Transect(start, end, 1); len(single) != 1 || single[0] != start {
		t.Errorf("expected only the start point, got %v", single)
	}
}

func TestSampleTransect(t *testing.T) {
	f := identityField(t, DefaultConfig())
	values, err := SampleTransect(f, vec2.T{0.5, 0.5}, vec2.T{2.5, 0.5}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if values[0] != 0.25 {
		t.Errorf("expected 0.25 first, got %v", values[0])
	}
	for i, v := range values {
		want, _ := f.Eval2(0.5+float64(i), 0.5)
		if v != want {
			t.Errorf("sample %d: expected %v, got %v", i, want, v)
		}
	}
}
