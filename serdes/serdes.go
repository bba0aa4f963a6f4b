package serdes

import (
	"errors"
	"fmt"

	"github.com/lachlanhurst/perlin/engine/pgen"
)

var ErrUnknownType = errors.New("unknown message type")

type MessageType uint8

const (
	PresetType MessageType = iota
	RenderRequestType
)

// Preset is everything needed to rebuild a field exactly.
type Preset struct {
	Table       []uint8
	Octaves     int64
	Persistence float64
	Zoom        float64
}

func NewPreset(f *pgen.Field) Preset {
	table := f.Table()
	cfg := f.Config()
	return Preset{
		Table:       table[:],
		Octaves:     int64(cfg.Octaves),
		Persistence: cfg.Persistence,
		Zoom:        cfg.Zoom,
	}
}

func (p Preset) Config() pgen.Config {
	return pgen.Config{
		Octaves:     int(p.Octaves),
		Persistence: p.Persistence,
		Zoom:        p.Zoom,
	}
}

// Field rebuilds the field the preset was taken from.
func (p Preset) Field() (*pgen.Field, error) {
	if len(p.Table) != pgen.PermutationSize {
		return nil, fmt.Errorf("preset table has %d entries, expected %d", len(p.Table), pgen.PermutationSize)
	}
	var table pgen.PermutationTable
	copy(table[:], p.Table)

	f := pgen.NewFieldFromTable(table)
	err := f.Configure(p.Config())
	if err != nil {
		return nil, err
	}
	return f, nil
}

// RenderRequest describes one raster of a seeded sampler.
type RenderRequest struct {
	Source      string
	Seed        int64
	Octaves     int64
	Persistence float64
	Zoom        float64
	Width       int64
	Height      int64
	OriginX     float64
	OriginY     float64
	Step        float64
	Colormap    string
}

func (r RenderRequest) Config() pgen.Config {
	return pgen.Config{
		Octaves:     int(r.Octaves),
		Persistence: r.Persistence,
		Zoom:        r.Zoom,
	}
}

type Serdes struct {
	Method string // binary or json
}

func New() *Serdes {
	return &Serdes{
		Method: "binary",
	}
}

func (s *Serdes) Marshal(v any) ([]byte, error) {
	switch s.Method {
	case "binary":
		return MarshalBinary(v)
	case "json":
		return MarshalJson(v)
	}
	return nil, fmt.Errorf("unknown serdes method: %s", s.Method)
}

func (s *Serdes) Unmarshal(dat []byte) (any, error) {
	switch s.Method {
	case "binary":
		return UnmarshalBinary(dat)
	case "json":
		return UnmarshalJson(dat)
	}
	return nil, fmt.Errorf("unknown serdes method: %s", s.Method)
}

func messageType(v any) (MessageType, error) {
	switch v.(type) {
	case Preset:
		return PresetType, nil
	case RenderRequest:
		return RenderRequestType, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnknownType, v)
}
