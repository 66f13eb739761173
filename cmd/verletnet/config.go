package main

import (
	"log"

	"github.com/BurntSushi/toml"
	"github.com/PrincetonUniversity/verletnet"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Output is either a filename (path) for the HDF5 output file,
	// or the empty string for an interactive OpenGL simulation.
	Output string

	Steps int // number of time steps (hdf5 and settle only)

	// Window parameters
	Width  int // unit: simulation units
	Height int // unit: simulation units

	// Net parameters
	Accuracy   int     // relaxation passes per step
	Gravity    float64 // unit: length/time²
	Friction   float64 // unit: 1
	Cols       int     // horizontal intervals
	Rows       int     // vertical intervals
	Spacing    float64 // rest length of every constraint
	OriginX    float64 // position of the top-left point
	OriginY    float64
	StrandRows int // top rows without horizontal links

	// Pointer parameters
	InfluenceRadius float64 // drag radius
	CutRadius       float64 // cut radius

	// Optional behavior
	TearDistance float64 // 0 disables tearing
	LineWidth    float64

	// Terminal cell size in simulation units
	CellWidth  float64
	CellHeight float64

	// Settle threshold on the largest displacement per frame
	Epsilon float64
}

// DefaultConf are the default parameters.
var DefaultConf = &Config{
	Output:          "",
	Steps:           3000,
	Width:           800,
	Height:          800,
	Accuracy:        verletnet.DefaultParams.Accuracy,
	Gravity:         verletnet.DefaultParams.Gravity,
	Friction:        verletnet.DefaultParams.Friction,
	Cols:            verletnet.DefaultParams.Cols,
	Rows:            verletnet.DefaultParams.Rows,
	Spacing:         verletnet.DefaultParams.Spacing,
	OriginX:         verletnet.DefaultParams.Origin.X,
	OriginY:         verletnet.DefaultParams.Origin.Y,
	StrandRows:      verletnet.DefaultParams.StrandRows,
	InfluenceRadius: verletnet.DefaultParams.InfluenceRadius,
	CutRadius:       verletnet.DefaultParams.CutRadius,
	TearDistance:    verletnet.DefaultParams.TearDistance,
	LineWidth:       verletnet.DefaultParams.LineWidth,
	CellWidth:       8,
	CellHeight:      16,
	Epsilon:         1e-3,
}

// ParseConfig parses the TOML config file whose path is provided.
// Keys missing from the file keep their default value.
func ParseConfig(path string) (*Config, error) {
	conf := *DefaultConf
	md, err := toml.DecodeFile(path, &conf)
	if err != nil {
		return nil, err
	}
	for _, k := range md.Undecoded() {
		log.Printf("warning: unknown key %q in %s", k.String(), path)
	}
	if err := conf.Params().Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Params returns the net parameters of the config.
func (c *Config) Params() verletnet.Params {
	return verletnet.Params{
		Accuracy:        c.Accuracy,
		Gravity:         c.Gravity,
		Friction:        c.Friction,
		Cols:            c.Cols,
		Rows:            c.Rows,
		Spacing:         c.Spacing,
		Origin:          r2.Vec{X: c.OriginX, Y: c.OriginY},
		StrandRows:      c.StrandRows,
		InfluenceRadius: c.InfluenceRadius,
		CutRadius:       c.CutRadius,
		TearDistance:    c.TearDistance,
		LineWidth:       c.LineWidth,
	}
}
