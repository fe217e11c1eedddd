package cloth

import (
	"diesel.com/drape/geometry"
	V "diesel.com/drape/vector"
)

//Springs - stiffness K and damping V per neighbour tier.
//Tier 0 structural (axis neighbours), 1 shear (diagonals), 2 bend (2-hop)
type Springs struct {
	K0 float32 `mapstructure:"k0" toml:"k0"`
	K1 float32 `mapstructure:"k1" toml:"k1"`
	K2 float32 `mapstructure:"k2" toml:"k2"`
	V0 float32 `mapstructure:"v0" toml:"v0"`
	V1 float32 `mapstructure:"v1" toml:"v1"`
	V2 float32 `mapstructure:"v2" toml:"v2"`
}

//Tier returns stiffness and damping of spring tier 0, 1 or 2
func (s Springs) Tier(tier int) (k float32, v float32) {
	switch tier {
	case 0:
		return s.K0, s.V0
	case 1:
		return s.K1, s.V1
	default:
		return s.K2, s.V2
	}
}

//Params - tunables read by value once per tick. Springs stays the last field:
//TOML encoders write it as the [params.springs] table, and every key after a
//table header belongs to that table
type Params struct {
	Gravity           V.Vec32 `mapstructure:"gravity" toml:"gravity"`
	WindTarget        float32 `mapstructure:"wind" toml:"wind"`
	RepulseMaxDst     float32 `mapstructure:"repulse_max_dst" toml:"repulse_max_dst"`
	RepulseMultiplier float32 `mapstructure:"repulse_multiplier" toml:"repulse_multiplier"`
	SphereMultiplier  float32 `mapstructure:"sphere_multiplier" toml:"sphere_multiplier"`
	RadiusDelta       float32 `mapstructure:"radius_delta" toml:"radius_delta"`
	AutoCollisions    bool    `mapstructure:"auto_collisions" toml:"auto_collisions"`
	SphereCollisions  bool    `mapstructure:"sphere_collisions" toml:"sphere_collisions"`
	Wireframe         bool    `mapstructure:"wireframe" toml:"wireframe"` //viewer only
	Springs           Springs `mapstructure:"springs" toml:"springs"`
}

//DefaultParams are the flag demo tunables
func DefaultParams() Params {
	return Params{
		Springs: Springs{
			K0: 1, K1: 1, K2: 1,
			V0: 0.08, V1: 0.02, V2: 0.06,
		},
		Gravity:           V.Vec32{0, -0.05, 0},
		WindTarget:        0.025,
		RepulseMaxDst:     0.17,
		RepulseMultiplier: 0.1,
		SphereMultiplier:  1.5,
		RadiusDelta:       0.15,
		AutoCollisions:    true,
		SphereCollisions:  true,
	}
}

//DefaultGrid - a 70 x 30 particle flag, 8 by 3 units
func DefaultGrid() GridDescriptor {
	return GridDescriptor{
		ParticleMass: 1,
		Width:        8,
		Height:       3,
		GridWidth:    70,
		GridHeight:   30,
	}
}

//DefaultColliders - three spheres under the flag
func DefaultColliders() geometry.ColliderSet {
	p := DefaultParams()
	return geometry.ColliderSet{
		Spheres: []geometry.Sphere{
			geometry.NewSphere(V.Vec32{0, -3, 2}, 2),
			geometry.NewSphere(V.Vec32{1.5, -3.5, 0.7}, 1.5),
			geometry.NewSphere(V.Vec32{3, -2, -1.5}, 0.8),
		},
		RadiusDelta: p.RadiusDelta,
		Multiplier:  p.SphereMultiplier,
	}
}

//DefaultOptions - the flag, its colliders and an octree with room to fall
func DefaultOptions() Options {
	return Options{
		Grid:        DefaultGrid(),
		Colliders:   DefaultColliders(),
		IndexDepth:  7,
		IndexCenter: V.Vec32{0, -10, 0},
		IndexExtent: V.Vec32{50, 50, 50},
		Seed:        1,
		Wind:        DefaultParams().WindTarget,
	}
}
