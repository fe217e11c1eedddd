package cloth

import (
	"math/rand"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"

	"diesel.com/drape/geometry"
	"diesel.com/drape/spatial"
	V "diesel.com/drape/vector"
)

const (
	//ErrTypeStep wraps any error that aborted a tick
	ErrTypeStep = "cloth_step_failed"

	//WindSmoothing - fraction of the distance to WindTarget covered each tick
	WindSmoothing = 0.08
)

//Timer - simulated time T, the last step size TS and the tick count
type Timer struct {
	T     float64
	TS    float64
	Ticks int
}

func (t *Timer) StepTime() {
	t.T = t.T + t.TS
	t.Ticks++
}

//Options - everything needed to build a simulation. Tunables are passed per Step
type Options struct {
	Grid        GridDescriptor
	Colliders   geometry.ColliderSet
	IndexDepth  int
	IndexCenter V.Vec32
	IndexExtent V.Vec32
	Seed        int64
	Wind        float32 //initial wind speed
}

//Stats of the last completed tick
type Stats struct {
	Tick            int
	RepulseContacts int
	SphereContacts  int
	Nodes           int //materialized octree nodes while populated
	Duration        time.Duration
}

//Simulation owns the cloth, the colliders and the octree used for self repulsion.
//Single threaded: one Step call is one tick
type Simulation struct {
	Cloth     *Cloth
	Colliders geometry.ColliderSet
	Timer     Timer
	Stats     Stats

	opts  Options
	index *spatial.Octree[V.Vec32]
	rnd   *rand.Rand
	wind  float32
}

func NewSimulation(opts Options) (*Simulation, error) {
	c, err := New(opts.Grid)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		Cloth:     c,
		Colliders: opts.Colliders.Clone(),
		opts:      opts,
		index:     spatial.New[V.Vec32](opts.IndexDepth, opts.IndexCenter, opts.IndexExtent),
		rnd:       rand.New(rand.NewSource(opts.Seed)),
		wind:      opts.Wind,
	}

	logs.WithTag("particles", c.Count).
		WithTag("grid_width", opts.Grid.GridWidth).
		WithTag("grid_height", opts.Grid.GridHeight).
		WithTag("spheres", len(s.Colliders.Spheres)).
		Info("cloth built")
	return s, nil
}

//Step advances the cloth by dt. Order is fixed: external and spring forces,
//populate the octree, self repulsion, drain the octree, sphere response,
//integration, wind smoothing. A failed tick leaves positions untouched, the
//octree empty and the forces cleared.
func (s *Simulation) Step(dt float32, p Params) error {
	if dt <= 0 {
		return nil
	}

	start := time.Now()
	c := s.Cloth
	stats := Stats{Tick: s.Timer.Ticks}

	c.applyExternal(p.Gravity, s.wind, s.rnd)
	c.applySprings(p.Springs, dt)

	for _, pos := range c.Positions {
		if err := s.index.Add(pos, pos); err != nil {
			return s.fail(err, start)
		}
	}
	stats.Nodes = s.index.Nodes()

	if p.AutoCollisions {
		contacts, err := c.applyRepulsion(s.index, p.RepulseMaxDst, p.RepulseMultiplier)
		if err != nil {
			return s.fail(err, start)
		}
		stats.RepulseContacts = contacts
	}

	for _, pos := range c.Positions {
		if err := s.index.Remove(pos, pos); err != nil {
			return s.fail(err, start)
		}
	}

	if p.SphereCollisions {
		s.Colliders.RadiusDelta = p.RadiusDelta
		s.Colliders.Multiplier = p.SphereMultiplier
		stats.SphereContacts = c.applySpheres(&s.Colliders)
	}

	c.integrate(dt)
	s.wind = V.MixScalar(s.wind, p.WindTarget, WindSmoothing)

	s.Timer.TS = float64(dt)
	s.Timer.StepTime()

	stats.Duration = time.Since(start)
	s.Stats = stats
	observeTick(stats)
	return nil
}

func (s *Simulation) fail(err error, start time.Time) error {
	s.index.Reset()
	s.Cloth.ClearForces()
	observeStepError(err, start)

	return errors.New("simulation tick failed").
		WithType(ErrTypeStep).
		WithTag("tick", s.Timer.Ticks).
		Wrap(err)
}

//Reset lays the cloth out again and restarts time, wind and the random source.
//Colliders keep their current placement
func (s *Simulation) Reset() {
	s.Cloth.layout()
	s.index.Reset()
	s.rnd = rand.New(rand.NewSource(s.opts.Seed))
	s.wind = s.opts.Wind
	s.Timer = Timer{}
	s.Stats = Stats{}

	logs.WithTag("particles", s.Cloth.Count).Info("cloth reset")
}

//Positions is the per frame snapshot for renderers. Only valid until the next Step
func (s *Simulation) Positions() []V.Vec32 {
	return s.Cloth.Positions
}

//Wind is the current smoothed wind speed
func (s *Simulation) Wind() float32 {
	return s.wind
}

//MaxSpeed of any particle
func (s *Simulation) MaxSpeed() float32 {
	var top float32
	for i := range s.Cloth.Velocities {
		if l := s.Cloth.Velocities[i].Length(); l > top {
			top = l
		}
	}
	return top
}

//OccupiedVoxels populates the octree with the current positions, collects the
//non empty leaves and drains it again. Used by the viewer overlay
func (s *Simulation) OccupiedVoxels() ([]spatial.Box, error) {
	defer s.index.Reset()

	for _, pos := range s.Cloth.Positions {
		if err := s.index.Add(pos, pos); err != nil {
			return nil, err
		}
	}

	var boxes []spatial.Box
	s.index.Walk(func(box spatial.Box, depth int, bucket []V.Vec32) bool {
		if depth == 0 && len(bucket) > 0 {
			boxes = append(boxes, box)
		}
		return true
	})
	return boxes, nil
}
