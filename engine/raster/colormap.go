package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/colorgrad"
)

// Level maps a sample to a display level: the magnitude, clamped to 1, scaled
// to 0..255.
func Level(v float64) uint8 {
	v = math.Abs(v)
	if v > 1 || math.IsNaN(v) {
		v = 1
	}
	return uint8(v * 255)
}

// Colormap colors a display level.
type Colormap interface {
	Color(level uint8) color.RGBA
}

// Yellow is a red plus green ramp with no blue.
type Yellow struct{}

func (Yellow) Color(level uint8) color.RGBA {
	return color.RGBA{level, level, 0, 255}
}

type Gray struct{}

func (Gray) Color(level uint8) color.RGBA {
	return color.RGBA{level, level, level, 255}
}

// Gradient looks levels up in a colorgrad gradient.
type Gradient struct {
	grad colorgrad.Gradient
}

func NewGradient(grad colorgrad.Gradient) Gradient {
	return Gradient{grad}
}

func (g Gradient) Color(level uint8) color.RGBA {
	r, gr, b := g.grad.At(float64(level) / 255).RGB255()
	return color.RGBA{r, gr, b, 255}
}

// Blend interpolates two colors in Lab space.
type Blend struct {
	Low, High colorful.Color
}

func (b Blend) Color(level uint8) color.RGBA {
	c := b.Low.BlendLab(b.High, float64(level)/255).Clamped()
	r, g, bl := c.RGB255()
	return color.RGBA{r, g, bl, 255}
}

// ColormapName returns the canonical spelling of a colormap name, so aliases
// compare equal.
func ColormapName(name string) string {
	switch name {
	case "":
		return "yellow"
	case "grey":
		return "gray"
	}
	return name
}

// ParseColormap accepts yellow, gray, viridis, rainbow, terrain or
// blend:#rrggbb:#rrggbb.
func ParseColormap(name string) (Colormap, error) {
	switch ColormapName(name) {
	case "yellow":
		return Yellow{}, nil
	case "gray":
		return Gray{}, nil
	case "viridis":
		return NewGradient(colorgrad.Viridis()), nil
	case "rainbow":
		return NewGradient(colorgrad.Rainbow()), nil
	case "terrain":
		grad, err := colorgrad.NewGradient().
			HtmlColors("#0b3d91", "#1e90ff", "#f4e19c", "#3c8d2f", "#7a5c3a", "#ffffff").
			Build()
		if err != nil {
			return nil, err
		}
		return NewGradient(grad), nil
	}

	if strings.HasPrefix(name, "blend:") {
		parts := strings.Split(name, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid blend colormap %q (expected blend:#low:#high)", name)
		}
		low, err := colorful.Hex(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid blend color %q: %w", parts[1], err)
		}
		high, err := colorful.Hex(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid blend color %q: %w", parts[2], err)
		}
		return Blend{low, high}, nil
	}
	return nil, fmt.Errorf("unknown colormap %q", name)
}

// Palette samples every level of cm, so palette index i is level i.
func Palette(cm Colormap) color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = cm.Color(uint8(i))
	}
	return p
}

func (g *Grid) Image(cm Colormap) *image.RGBA {
	img := image.NewRGBA(g.Bounds())
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			img.SetRGBA(col, row, cm.Color(Level(g.At(col, row))))
		}
	}
	return img
}

func (g *Grid) Paletted(cm Colormap) *image.Paletted {
	img := image.NewPaletted(g.Bounds(), Palette(cm))
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			img.SetColorIndex(col, row, Level(g.At(col, row)))
		}
	}
	return img
}
