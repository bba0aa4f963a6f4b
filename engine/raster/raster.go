package raster

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/rs/zerolog/log"
	"github.com/ungerik/go3d/float64/vec2"

	"github.com/lachlanhurst/perlin/engine/pgen"
)

const MaxSize = 4096

// Window places a raster in sample space. Pixel (col, row) samples
// Origin + Step*(col, row).
type Window struct {
	Width, Height int
	Origin        vec2.T
	Step          float64
}

func NewWindow(width, height int) Window {
	return Window{
		Width:  width,
		Height: height,
		Step:   1,
	}
}

func (w Window) Validate() error {
	if w.Width < 1 || w.Height < 1 || w.Width > MaxSize || w.Height > MaxSize {
		return fmt.Errorf("invalid raster size %dx%d (1 to %d per side)", w.Width, w.Height, MaxSize)
	}
	if w.Step <= 0 {
		return fmt.Errorf("invalid raster step %v", w.Step)
	}
	return nil
}

// Point returns the sample coordinate of a pixel
func (w Window) Point(col, row int) vec2.T {
	offset := vec2.T{float64(col) * w.Step, float64(row) * w.Step}
	return vec2.Add(&w.Origin, &offset)
}

// Grid holds raw samples in row major order.
type Grid struct {
	Width, Height int
	Values        []float64
}

func (g *Grid) At(col, row int) float64 {
	return g.Values[row*g.Width+col]
}

func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// Render samples s once per pixel. Rows are evaluated in parallel, so s must be
// safe for concurrent reads.
func Render(s pgen.Sampler, w Window) (*Grid, error) {
	err := w.Validate()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	grid := &Grid{
		Width:  w.Width,
		Height: w.Height,
		Values: make([]float64, w.Width*w.Height),
	}

	var mu sync.Mutex
	var firstErr error
	parallel.For(w.Height, func(row, _ int) {
		for col := 0; col < w.Width; col++ {
			p := w.Point(col, row)
			v, err := s.Eval2(p[0], p[1])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("sample (%d, %d): %w", col, row, err)
				}
				mu.Unlock()
				return
			}
			grid.Values[row*w.Width+col] = v
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}

	log.Debug().
		Int("width", w.Width).
		Int("height", w.Height).
		Dur("elapsed", time.Since(start)).
		Msg("Rendered raster")
	return grid, nil
}
