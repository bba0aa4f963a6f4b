package pgen

import (
	"fmt"
	"io"
	"math"
)

// Field is a lattice gradient noise generator over 2D and 4D space.
//
// Evaluation only reads the field, so any number of goroutines may evaluate the
// same Field at once. The setters are plain writes: a caller that reconfigures a
// field must not do so while it is being evaluated. Use Clone to give each
// goroutine its own copy instead.
type Field struct {
	perm   PermutationTable
	config Config
}

// NewField seeds a field with 256 bytes from src, using the default config.
func NewField(src io.Reader) (*Field, error) {
	perm, err := NewPermutationTable(src)
	if err != nil {
		return nil, err
	}
	return NewFieldFromTable(perm), nil
}

func NewFieldFromTable(perm PermutationTable) *Field {
	return &Field{
		perm:   perm,
		config: DefaultConfig(),
	}
}

// Reseed replaces the permutation table. On error the old table is kept.
func (f *Field) Reseed(src io.Reader) error {
	perm, err := NewPermutationTable(src)
	if err != nil {
		return err
	}
	f.perm = perm
	return nil
}

func (f *Field) Table() PermutationTable {
	return f.perm
}

func (f *Field) Config() Config {
	return f.config
}

// Configure replaces all three knobs at once. Nothing changes if c is invalid.
func (f *Field) Configure(c Config) error {
	err := c.Validate()
	if err != nil {
		return err
	}
	f.config = c
	return nil
}

func (f *Field) SetOctaves(octaves int) error {
	c := f.config
	c.Octaves = octaves
	return f.Configure(c)
}

func (f *Field) SetPersistence(persistence float64) error {
	c := f.config
	c.Persistence = persistence
	return f.Configure(c)
}

func (f *Field) SetZoom(zoom float64) error {
	c := f.config
	c.Zoom = zoom
	return f.Configure(c)
}

func (f *Field) Clone() *Field {
	clone := *f
	return &clone
}

func (f *Field) Eval2(x, y float64) (float64, error) {
	c := [4]float64{x, y}
	return f.eval(2, &c)
}

func (f *Field) Eval4(x, y, z, t float64) (float64, error) {
	c := [4]float64{x, y, z, t}
	return f.eval(4, &c)
}

// Eval dispatches on the number of coordinates, which must be 2 or 4.
func (f *Field) Eval(coords ...float64) (float64, error) {
	n := len(coords)
	if n != 2 && n != 4 {
		return 0, fmt.Errorf("%w: %d coordinates", ErrDimension, n)
	}
	var c [4]float64
	copy(c[:], coords)
	return f.eval(n, &c)
}

func (f *Field) eval(n int, c *[4]float64) (float64, error) {
	err := f.config.Validate()
	if err != nil {
		return 0, err
	}
	for a := 0; a < n; a++ {
		if !finite(c[a]) {
			return 0, fmt.Errorf("%w: coordinate %d is %v", ErrNonFinite, a, c[a])
		}
	}
	return f.fractal(n, c)
}

// MaxLattice bounds the magnitude of a coordinate after octave scaling.
const MaxLattice = 1 << 62

// fractal sums octaves of smooth noise, doubling frequency each octave and
// scaling amplitude by persistence. A scaled coordinate at or beyond MaxLattice
// fails with ErrRange.
func (f *Field) fractal(n int, c *[4]float64) (float64, error) {
	noise := 0.0
	var p [4]float64
	for octave := 0; octave < f.config.Octaves; octave++ {
		frequency := math.Pow(2, float64(octave))
		amplitude := math.Pow(f.config.Persistence, float64(octave))
		for a := 0; a < n; a++ {
			p[a] = c[a] * frequency / f.config.Zoom
			if !(math.Abs(p[a]) < MaxLattice) {
				return 0, fmt.Errorf("%w: coordinate %d is %v at octave %d", ErrRange, a, p[a], octave)
			}
		}
		noise += f.smooth(n, &p) * amplitude
	}
	return noise, nil
}

// smooth evaluates a single octave at c over the first n axes.
//
// Corner k of the cell takes the upper lattice coordinate on axis a when bit
// (n-1-a) of k is set, so the last axis is the least significant bit. The
// corner values are then blended pairwise, last axis first.
func (f *Field) smooth(n int, c *[4]float64) float64 {
	var lo, hi [4]int
	var d0, d1 [4]float64
	for a := 0; a < n; a++ {
		floor := math.Floor(c[a])
		lo[a] = int(floor)
		hi[a] = lo[a] + 1
		d0[a] = c[a] - float64(lo[a])
		d1[a] = c[a] - float64(hi[a])
	}

	corners := 1 << n
	var values [16]float64
	var corner [4]int
	var offsets [4]float64
	for k := 0; k < corners; k++ {
		for a := 0; a < n; a++ {
			if (k>>(n-1-a))&1 == 0 {
				corner[a], offsets[a] = lo[a], d0[a]
			} else {
				corner[a], offsets[a] = hi[a], d1[a]
			}
		}
		values[k] = dotProduct(n, f.perm.hash(n, &corner), &offsets)
	}

	for a := n - 1; a >= 0; a-- {
		weight := Fade(d0[a])
		corners >>= 1
		for i := 0; i < corners; i++ {
			values[i] = Lerp(values[2*i], values[2*i+1], weight)
		}
	}
	return values[0]
}

// Fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func Fade(t float64) float64 {
	square := t * t
	cubic := square * t
	return cubic * (6*square - 15*t + 10)
}

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
