package perlin

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/ungerik/go3d/float64/vec2"

	"github.com/lachlanhurst/perlin/engine/pgen"
	"github.com/lachlanhurst/perlin/engine/raster"
	"github.com/lachlanhurst/perlin/serdes"
)

// MaxOctaves caps the octave count accepted from users.
const MaxOctaves = 64

var ErrTooManyOctaves = errors.New("too many octaves")

// CheckConfig validates c and bounds its octave count.
func CheckConfig(c pgen.Config) error {
	err := c.Validate()
	if err != nil {
		return err
	}
	if c.Octaves > MaxOctaves {
		return fmt.Errorf("%w: %d (at most %d)", ErrTooManyOctaves, c.Octaves, MaxOctaves)
	}
	return nil
}

// LoadOrSeed loads the preset at presetFile, or seeds a new default field when
// presetFile is empty. A zero seed is replaced with the current time.
func LoadOrSeed(presetFile string, seed int64) (*pgen.Field, error) {
	if presetFile != "" {
		return LoadPreset(presetFile)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Debug().Int64("seed", seed).Msg("Seeding field")
	return pgen.NewField(pgen.SeededSource(seed))
}

// presetSerdes picks json for .json files and binary for everything else
func presetSerdes(path string) *serdes.Serdes {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return &serdes.Serdes{Method: "json"}
	}
	return serdes.New()
}

func LoadPreset(path string) (*pgen.Field, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	msg, err := presetSerdes(path).Unmarshal(dat)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	preset, ok := msg.(serdes.Preset)
	if !ok {
		return nil, fmt.Errorf("preset %s: contains %T", path, msg)
	}
	err = CheckConfig(preset.Config())
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	field, err := preset.Field()
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("Loaded preset")
	return field, nil
}

func SavePreset(path string, f *pgen.Field) error {
	dat, err := presetSerdes(path).Marshal(serdes.NewPreset(f))
	if err != nil {
		return err
	}
	return os.WriteFile(path, dat, 0644)
}

// RequestWindow maps the raster part of a request onto a window. A zero step
// means one unit per pixel.
func RequestWindow(req serdes.RenderRequest) raster.Window {
	w := raster.NewWindow(int(req.Width), int(req.Height))
	w.Origin = vec2.T{req.OriginX, req.OriginY}
	if req.Step != 0 {
		w.Step = req.Step
	}
	return w
}

// RenderImage builds the sampler a request names and renders it.
func RenderImage(req serdes.RenderRequest) (image.Image, error) {
	cm, err := raster.ParseColormap(req.Colormap)
	if err != nil {
		return nil, err
	}
	err = CheckConfig(req.Config())
	if err != nil {
		return nil, err
	}
	sampler, err := pgen.NewSampler(req.Source, req.Seed, req.Config())
	if err != nil {
		return nil, err
	}
	grid, err := raster.Render(sampler, RequestWindow(req))
	if err != nil {
		return nil, err
	}
	return grid.Image(cm), nil
}
