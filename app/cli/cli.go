package cli

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ungerik/go3d/float64/vec2"

	"github.com/lachlanhurst/perlin"
	"github.com/lachlanhurst/perlin/engine/pgen"
	"github.com/lachlanhurst/perlin/engine/raster"
	"github.com/lachlanhurst/perlin/engine/tilemap"
)

type Config struct {
	Out  string // "-" writes to stdout
	Size string // WxH

	Seed        int64 // 0 picks a time based seed
	Source      string
	Octaves     int
	Persistence float64
	Zoom        float64
	Dims        int // 2 or 4. 4 samples the z = 0, t = 0 plane.

	OriginX, OriginY float64
	Step             float64
	Colormap         string

	Layers   string // freq:scale list layered over the source
	Exponent float64

	Frames int     // More than one writes a gif sweeping t. Needs Dims 4 and no Layers.
	TStep  float64 // t advance per frame
	Delay  int     // Frame delay in 100ths of a second

	Terrain  bool   // Classify into terrain tiles instead of colormapping
	Transect string // x0,y0:x1,y1:n prints samples instead of an image

	Load string // Preset to start from. Replaces seed, source and config.
	Save string // Write the preset of the field that was used

	Debug bool
}

func DefaultConfig() Config {
	return Config{
		Out:         "noise.png",
		Size:        "256x256",
		Source:      pgen.SourceField,
		Octaves:     1,
		Persistence: 1,
		Zoom:        1,
		Dims:        4,
		Step:        1,
		Colormap:    "yellow",
		Exponent:    1,
		Frames:      1,
		TStep:       0.05,
		Delay:       5,
	}
}

func Main(config Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	err := Run(config, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed")
	}
}

// Run executes one invocation. Text output and "-" outputs go to stdout.
func Run(config Config, stdout io.Writer) error {
	width, height, err := parseSize(config.Size)
	if err != nil {
		return err
	}

	field, sampler, err := buildSampler(config)
	if err != nil {
		return err
	}

	if config.Save != "" {
		if field == nil {
			return fmt.Errorf("source %q has no preset to save", config.Source)
		}
		err = perlin.SavePreset(config.Save, field)
		if err != nil {
			return err
		}
		log.Info().Str("path", config.Save).Msg("Saved preset")
	}

	if config.Transect != "" {
		return writeTransect(stdout, sampler, config.Transect)
	}

	window := raster.NewWindow(width, height)
	window.Origin = vec2.T{config.OriginX, config.OriginY}
	window.Step = config.Step

	cm, err := raster.ParseColormap(config.Colormap)
	if err != nil {
		return err
	}

	start := time.Now()
	if config.Frames > 1 {
		if field == nil {
			return fmt.Errorf("source %q cannot be animated", config.Source)
		}
		if config.Dims != 4 {
			return fmt.Errorf("animation sweeps t of a 4 dimensional field, got %d dimensions", config.Dims)
		}
		if config.Layers != "" {
			return errors.New("animation cannot be combined with layers")
		}
		grids, err := raster.Animate(field, window, config.Frames, config.TStep)
		if err != nil {
			return err
		}
		log.Info().Int("frames", len(grids)).Dur("elapsed", time.Since(start)).Msg("Rendered animation")
		return writeOutput(config.Out, stdout, func(w io.Writer) error {
			return raster.EncodeGIF(w, grids, cm, config.Delay)
		})
	}

	grid, err := raster.Render(sampler, window)
	if err != nil {
		return err
	}
	log.Info().Int("width", width).Int("height", height).Dur("elapsed", time.Since(start)).Msg("Rendered")

	var img image.Image
	if config.Terrain {
		tmap := tilemap.Classify(grid, tilemap.DefaultLevels())
		log.Debug().Interface("counts", tmap.Counts()).Msg("Classified terrain")
		img = tmap.Image(1)
	} else {
		img = grid.Image(cm)
	}
	return writeOutput(config.Out, stdout, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}

// buildSampler returns the sampler to render and, for lattice sources, the
// field behind it.
func buildSampler(config Config) (*pgen.Field, pgen.Sampler, error) {
	var field *pgen.Field
	var sampler pgen.Sampler
	if config.Load != "" {
		f, err := perlin.LoadPreset(config.Load)
		if err != nil {
			return nil, nil, err
		}
		field, sampler = f, f
	} else {
		seed := config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		cfg := pgen.Config{
			Octaves:     config.Octaves,
			Persistence: config.Persistence,
			Zoom:        config.Zoom,
		}
		err := perlin.CheckConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		s, err := pgen.NewSampler(config.Source, seed, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("source", config.Source).Int64("seed", seed).Msg("Built sampler")
		sampler = s
		field, _ = s.(*pgen.Field)
	}

	if field != nil {
		switch config.Dims {
		case 2:
		case 4:
			sampler = pgen.Slice{Field: field}
		default:
			return nil, nil, fmt.Errorf("%w: %d dimensions", pgen.ErrDimension, config.Dims)
		}
	}

	octaves, err := pgen.ParseOctaves(config.Layers)
	if err != nil {
		return nil, nil, err
	}
	if len(octaves) > 0 {
		sampler = pgen.NewNoiseMap(sampler, octaves, config.Exponent)
	}
	return field, sampler, nil
}

func writeTransect(out io.Writer, s pgen.Sampler, arg string) error {
	start, end, n, err := parseTransect(arg)
	if err != nil {
		return err
	}
	values, err := pgen.SampleTransect(s, start, end, n)
	if err != nil {
		return err
	}
	for i, p := range pgen.Transect(start, end, n) {
		_, err := fmt.Fprintf(out, "%g %g %g\n", p[0], p[1], values[i])
		if err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(file)
	if err != nil {
		file.Close()
		return err
	}
	log.Info().Str("path", path).Msg("Wrote output")
	return file.Close()
}

func parseSize(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q (expected WxH)", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w < 1 || w > raster.MaxSize {
		return 0, 0, fmt.Errorf("invalid width %q (1 to %d)", parts[0], raster.MaxSize)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h < 1 || h > raster.MaxSize {
		return 0, 0, fmt.Errorf("invalid height %q (1 to %d)", parts[1], raster.MaxSize)
	}
	return w, h, nil
}

var errTransect = errors.New("invalid transect (expected x0,y0:x1,y1:n)")

func parseTransect(s string) (vec2.T, vec2.T, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return vec2.T{}, vec2.T{}, 0, fmt.Errorf("%w: %q", errTransect, s)
	}
	start, err := parsePoint(parts[0])
	if err != nil {
		return vec2.T{}, vec2.T{}, 0, err
	}
	end, err := parsePoint(parts[1])
	if err != nil {
		return vec2.T{}, vec2.T{}, 0, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return vec2.T{}, vec2.T{}, 0, fmt.Errorf("%w: bad count %q", errTransect, parts[2])
	}
	return start, end, n, nil
}

func parsePoint(s string) (vec2.T, error) {
	xy := strings.SplitN(s, ",", 2)
	if len(xy) != 2 {
		return vec2.T{}, fmt.Errorf("%w: bad point %q", errTransect, s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
	if err != nil {
		return vec2.T{}, fmt.Errorf("%w: bad point %q", errTransect, s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
	if err != nil {
		return vec2.T{}, fmt.Errorf("%w: bad point %q", errTransect, s)
	}
	return vec2.T{x, y}, nil
}
