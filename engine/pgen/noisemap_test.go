package pgen

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type constSampler float64

func (c constSampler) Eval2(x, y float64) (float64, error) {
	return float64(c), nil
}

type planeSampler struct{}

func (planeSampler) Eval2(x, y float64) (float64, error) {
	return x + y, nil
}

func TestNoiseMapLayers(t *testing.T) {
	nm := NewNoiseMap(planeSampler{}, []Octave{{1, 0.5}, {2, 0.25}}, 1)
	got, err := nm.Eval2(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	// 0.5*(1+2) + 0.25*(2+4)
	if got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
	if nm.TotalScale() != 0.75 {
		t.Errorf("expected total scale 0.75, got %v", nm.TotalScale())
	}
}

func TestNoiseMapExponentKeepsSign(t *testing.T) {
	tests := []struct {
		value, exponent, want float64
	}{
		{0.25, 0.5, 0.5},
		{-0.25, 0.5, -0.5},
		{0.5, 2, 0.25},
		{-0.5, 1, -0.5},
	}
	for _, tt := range tests {
		nm := NewNoiseMap(constSampler(tt.value), []Octave{{1, 1}}, tt.exponent)
		got, err := nm.Eval2(0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("value %v exponent %v: expected %v, got %v", tt.value, tt.exponent, tt.want, got)
		}
	}
}

func TestNoiseMapPropagatesErrors(t *testing.T) {
	var broken Field
	nm := NewNoiseMap(&broken, []Octave{{0.1, 1}}, 1)
	_, err := nm.Eval2(1, 1)
	if err == nil {
		t.Errorf("expected error from a field with zero zoom")
	}
}

func TestParseOctaves(t *testing.T) {
	got, err := ParseOctaves("0.01:0.6, 0.05:0.3,0.1:0.1")
	if err != nil {
		t.Fatal(err)
	}
	want := []Octave{{0.01, 0.6}, {0.05, 0.3}, {0.1, 0.1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("octaves mismatch (-want +got):\n%s", diff)
	}

	empty, err := ParseOctaves("  ")
	if err != nil || empty != nil {
		t.Errorf("expected no octaves and no error, got %v %v", empty, err)
	}

	for _, bad := range []string{"0.1", "a:1", "1:b", "1:2,"} {
		if _, err := ParseOctaves(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
