package main

import (
	"flag"

	"github.com/lachlanhurst/perlin/app/server"
)

func main() {
	config := server.Config{}
	flag.StringVar(&config.Addr, "addr", ":8080", "listen address")
	flag.Int64Var(&config.Seed, "seed", 0, "random seed (0 = random)")
	flag.StringVar(&config.PresetFile, "preset", "", "preset file to serve")
	flag.IntVar(&config.CacheSize, "cache", 256, "number of tiles to cache")
	flag.BoolVar(&config.Debug, "debug", false, "debug logging")
	flag.Parse()

	server.Main(config)
}
