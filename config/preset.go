package config

import (
	"github.com/aukilabs/go-tooling/pkg/errors"

	"diesel.com/drape/cloth"
	"diesel.com/drape/geometry"
	"diesel.com/drape/spatial"
	V "diesel.com/drape/vector"
)

const (
	//ErrTypeConfig is reported for presets that cannot be read or would not simulate
	ErrTypeConfig = "config_invalid"

	maxOctreeDepth = 16
)

//Octree describes the root voxel of the spatial index.
type Octree struct {
	Depth  int     `mapstructure:"depth" toml:"depth"`
	Center V.Vec32 `mapstructure:"center" toml:"center"`
	Extent V.Vec32 `mapstructure:"extent" toml:"extent"`
}

//Sphere is a collider placement. Center is also the easing target.
type Sphere struct {
	Center V.Vec32 `mapstructure:"center" toml:"center"`
	Radius float32 `mapstructure:"radius" toml:"radius"`
}

//Preset is everything a run needs: topology, tunables, index and colliders.
type Preset struct {
	LogLevel string               `mapstructure:"log_level" toml:"log_level"`
	Dt       float32              `mapstructure:"dt" toml:"dt"`
	Seed     int64                `mapstructure:"seed" toml:"seed"`
	Easing   float32              `mapstructure:"easing" toml:"easing"`
	Grid     cloth.GridDescriptor `mapstructure:"grid" toml:"grid"`
	Params   cloth.Params         `mapstructure:"params" toml:"params"`
	Octree   Octree               `mapstructure:"octree" toml:"octree"`
	Spheres  []Sphere             `mapstructure:"spheres" toml:"spheres"`
}

//Default returns the flag demo preset.
func Default() Preset {
	opts := cloth.DefaultOptions()

	spheres := make([]Sphere, len(opts.Colliders.Spheres))
	for i, s := range opts.Colliders.Spheres {
		spheres[i] = Sphere{Center: s.Center, Radius: s.Radius}
	}

	return Preset{
		LogLevel: "info",
		Dt:       1.0 / 60,
		Seed:     opts.Seed,
		Easing:   0.08,
		Grid:     opts.Grid,
		Params:   cloth.DefaultParams(),
		Octree: Octree{
			Depth:  opts.IndexDepth,
			Center: opts.IndexCenter,
			Extent: opts.IndexExtent,
		},
		Spheres: spheres,
	}
}

//Colliders builds the collider set at rest on the configured centers.
func (p Preset) Colliders() geometry.ColliderSet {
	set := geometry.ColliderSet{
		Spheres:     make([]geometry.Sphere, len(p.Spheres)),
		RadiusDelta: p.Params.RadiusDelta,
		Multiplier:  p.Params.SphereMultiplier,
	}
	for i, s := range p.Spheres {
		set.Spheres[i] = geometry.NewSphere(s.Center, s.Radius)
	}
	return set
}

//Options converts the preset into simulation options.
func (p Preset) Options() cloth.Options {
	return cloth.Options{
		Grid:        p.Grid,
		Colliders:   p.Colliders(),
		IndexDepth:  p.Octree.Depth,
		IndexCenter: p.Octree.Center,
		IndexExtent: p.Octree.Extent,
		Seed:        p.Seed,
		Wind:        p.Params.WindTarget,
	}
}

//Validate rejects presets that cannot be simulated, including a cloth that
//would start outside the octree.
func (p Preset) Validate() error {
	if err := p.Grid.Validate(); err != nil {
		return errors.New("invalid grid").
			WithType(ErrTypeConfig).
			Wrap(err)
	}

	if p.Dt <= 0 {
		return errors.New("dt must be positive").
			WithType(ErrTypeConfig).
			WithTag("dt", p.Dt)
	}

	if p.Easing < 0 || p.Easing > 1 {
		return errors.New("easing must be within [0, 1]").
			WithType(ErrTypeConfig).
			WithTag("easing", p.Easing)
	}

	if p.Octree.Depth < 0 || p.Octree.Depth > maxOctreeDepth {
		return errors.New("octree depth out of range").
			WithType(ErrTypeConfig).
			WithTag("depth", p.Octree.Depth).
			WithTag("max", maxOctreeDepth)
	}

	for i := 0; i < 3; i++ {
		if p.Octree.Extent[i] <= 0 {
			return errors.New("octree extent must be positive").
				WithType(ErrTypeConfig).
				WithTag("extent", p.Octree.Extent)
		}
	}

	bounds := spatial.Box{Center: p.Octree.Center, Extent: p.Octree.Extent}
	low := V.Vec32{-p.Grid.Width / 2, 0, 0}
	high := V.Vec32{p.Grid.Width / 2, p.Grid.Height, 0}
	if !bounds.Contains(low) || !bounds.Contains(high) {
		return errors.New("cloth starts outside the octree").
			WithType(ErrTypeConfig).
			WithTag("center", p.Octree.Center).
			WithTag("extent", p.Octree.Extent)
	}

	for i, s := range p.Spheres {
		if s.Radius <= 0 {
			return errors.New("sphere radius must be positive").
				WithType(ErrTypeConfig).
				WithTag("sphere", i).
				WithTag("radius", s.Radius)
		}
	}

	return nil
}
