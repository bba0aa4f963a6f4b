package main

import (
	"flag"

	"github.com/lachlanhurst/perlin/app/cli"
)

func main() {
	config := cli.DefaultConfig()
	flag.StringVar(&config.Out, "out", config.Out, "output file, - for stdout")
	flag.StringVar(&config.Size, "size", config.Size, "image size as WxH")
	flag.Int64Var(&config.Seed, "seed", 0, "random seed (0 = random)")
	flag.StringVar(&config.Source, "source", config.Source, "noise source (field, shuffled, simplex, classic)")
	flag.IntVar(&config.Octaves, "octaves", config.Octaves, "number of octaves")
	flag.Float64Var(&config.Persistence, "persistence", config.Persistence, "amplitude falloff per octave")
	flag.Float64Var(&config.Zoom, "zoom", config.Zoom, "coordinate divisor")
	flag.IntVar(&config.Dims, "dims", config.Dims, "field dimensions (2 or 4)")
	flag.Float64Var(&config.OriginX, "x", 0, "sample x of the top left pixel")
	flag.Float64Var(&config.OriginY, "y", 0, "sample y of the top left pixel")
	flag.Float64Var(&config.Step, "step", config.Step, "sample distance between pixels")
	flag.StringVar(&config.Colormap, "colormap", config.Colormap, "yellow, gray, viridis, rainbow, terrain or blend:#rrggbb:#rrggbb")
	flag.StringVar(&config.Layers, "layers", "", "extra freq:scale layers, comma separated")
	flag.Float64Var(&config.Exponent, "exponent", config.Exponent, "exponent applied to layered output")
	flag.IntVar(&config.Frames, "frames", config.Frames, "frames to render, more than one writes a gif sweeping the 4D field")
	flag.Float64Var(&config.TStep, "tstep", config.TStep, "fourth coordinate advance per frame")
	flag.IntVar(&config.Delay, "delay", config.Delay, "frame delay in 100ths of a second")
	flag.BoolVar(&config.Terrain, "terrain", false, "draw terrain tiles instead of a colormap")
	flag.StringVar(&config.Transect, "transect", "", "print samples along x0,y0:x1,y1:n instead of drawing")
	flag.StringVar(&config.Load, "load", "", "preset file to load")
	flag.StringVar(&config.Save, "save", "", "preset file to write")
	flag.BoolVar(&config.Debug, "debug", false, "debug logging")
	flag.Parse()

	cli.Main(config)
}
