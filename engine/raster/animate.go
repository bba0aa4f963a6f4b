package raster

import (
	"errors"
	"image"
	"image/gif"
	"io"

	"github.com/lachlanhurst/perlin/engine/pgen"
)

// Animate renders frames of f sliced at z = 0 and t = k*step for frame k.
func Animate(f *pgen.Field, w Window, frames int, step float64) ([]*Grid, error) {
	if frames < 1 {
		return nil, errors.New("animation needs at least one frame")
	}
	grids := make([]*Grid, frames)
	for k := range grids {
		grid, err := Render(pgen.Slice{Field: f, T: float64(k) * step}, w)
		if err != nil {
			return nil, err
		}
		grids[k] = grid
	}
	return grids, nil
}

// EncodeGIF writes looping frames. Delay is in 100ths of a second.
func EncodeGIF(out io.Writer, grids []*Grid, cm Colormap, delay int) error {
	anim := gif.GIF{
		Image: make([]*image.Paletted, len(grids)),
		Delay: make([]int, len(grids)),
	}
	for i, g := range grids {
		anim.Image[i] = g.Paletted(cm)
		anim.Delay[i] = delay
	}
	return gif.EncodeAll(out, &anim)
}
