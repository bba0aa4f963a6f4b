package tilemap

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lachlanhurst/perlin/engine/raster"
)

type TileType uint8

const (
	WaterTile TileType = iota
	DirtTile
	GrassTile
	RockTile
)

func (t TileType) String() string {
	switch t {
	case WaterTile:
		return "water"
	case DirtTile:
		return "dirt"
	case GrassTile:
		return "grass"
	case RockTile:
		return "rock"
	}
	return "unknown"
}

var tileColors = map[TileType]colorful.Color{
	WaterTile: mustHex("#2f5d8a"),
	DirtTile:  mustHex("#c2a36b"),
	GrassTile: mustHex("#4f8f3a"),
	RockTile:  mustHex("#8a8a8a"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

type Tile struct {
	Type TileType
}

// Levels are the upper height bounds of each band. Heights at or above Rock
// are rock. Island > 0 pulls heights down with distance from the map center.
type Levels struct {
	Water, Beach, Rock float64
	Island             float64
}

func DefaultLevels() Levels {
	return Levels{
		Water:  0.5,
		Beach:  0.6,
		Rock:   0.85,
		Island: 2.0,
	}
}

func (l Levels) classify(height float64) TileType {
	if height < l.Water {
		return WaterTile
	} else if height < l.Beach {
		return DirtTile
	} else if height < l.Rock {
		return GrassTile
	}
	return RockTile
}

type Tilemap struct {
	tiles [][]Tile // [x][y]
}

func New(tiles [][]Tile) *Tilemap {
	return &Tilemap{
		tiles: tiles,
	}
}

// Classify turns every sample of grid into a tile. Samples are mapped from
// [-1, 1] to [0, 1] first.
func Classify(grid *raster.Grid, levels Levels) *Tilemap {
	tiles := make([][]Tile, grid.Width)
	for x := range tiles {
		tiles[x] = make([]Tile, grid.Height)
		for y := range tiles[x] {
			height := (grid.At(x, y) + 1) / 2

			if levels.Island > 0 {
				dx := float64(x)/float64(grid.Width) - 0.5
				dy := float64(y)/float64(grid.Height) - 0.5
				d := math.Sqrt(dx*dx+dy*dy) * 2
				d = math.Pow(d, levels.Island)
				height = (1 - d + height) / 2
			}

			tiles[x][y] = Tile{levels.classify(height)}
		}
	}
	return New(tiles)
}

func (t *Tilemap) Width() int {
	return len(t.tiles)
}

func (t *Tilemap) Height() int {
	if len(t.tiles) == 0 {
		return 0
	}
	return len(t.tiles[0])
}

func (t *Tilemap) Get(x, y int) (Tile, bool) {
	if x < 0 || x >= len(t.tiles) || y < 0 || y >= len(t.tiles[x]) {
		return Tile{}, false
	}

	return t.tiles[x][y], true
}

// Counts returns how many tiles of each type the map holds
func (t *Tilemap) Counts() map[TileType]int {
	counts := make(map[TileType]int)
	for x := range t.tiles {
		for y := range t.tiles[x] {
			counts[t.tiles[x][y].Type]++
		}
	}
	return counts
}

// Image draws each tile as a square of tileSize pixels.
func (t *Tilemap) Image(tileSize int) *image.RGBA {
	if tileSize < 1 {
		tileSize = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, t.Width()*tileSize, t.Height()*tileSize))
	for x := range t.tiles {
		for y := range t.tiles[x] {
			r, g, b := tileColors[t.tiles[x][y].Type].RGB255()
			for px := 0; px < tileSize; px++ {
				for py := 0; py < tileSize; py++ {
					i := img.PixOffset(x*tileSize+px, y*tileSize+py)
					img.Pix[i+0] = r
					img.Pix[i+1] = g
					img.Pix[i+2] = b
					img.Pix[i+3] = 255
				}
			}
		}
	}
	return img
}
