package app

import (
	"github.com/aukilabs/go-tooling/pkg/logs"

	"diesel.com/drape/cloth"
	"diesel.com/drape/config"
	V "diesel.com/drape/vector"
)

//Viewer actions, decoupled from the window toolkit so key bindings stay in one place
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionWireframe
	ActionSelfCollisions
	ActionSphereCollisions
	ActionVoxels
	ActionPause
	ActionReset
	ActionWindUp
	ActionWindDown
	ActionSphereUp
	ActionSphereDown
	ActionSphereLeft
	ActionSphereRight
	ActionNextSphere
)

const (
	windStep   = 0.01
	sphereStep = 1
)

var actionNames = map[Action]string{
	ActionQuit:             "quit",
	ActionWireframe:        "wireframe",
	ActionSelfCollisions:   "self_collisions",
	ActionSphereCollisions: "sphere_collisions",
	ActionVoxels:           "voxels",
	ActionPause:            "pause",
	ActionReset:            "reset",
	ActionWindUp:           "wind_up",
	ActionWindDown:         "wind_down",
	ActionSphereUp:         "sphere_up",
	ActionSphereDown:       "sphere_down",
	ActionSphereLeft:       "sphere_left",
	ActionSphereRight:      "sphere_right",
	ActionNextSphere:       "next_sphere",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

//Controls applies viewer actions to the tunables and the simulation and drives
//one simulation tick per frame
type Controls struct {
	Selected   int //sphere moved by the arrow keys
	ShowVoxels bool
	Paused     bool
	Quit       bool

	tuner *config.Tuner
	sim   *cloth.Simulation
}

func NewControls(tuner *config.Tuner, sim *cloth.Simulation) *Controls {
	return &Controls{
		tuner: tuner,
		sim:   sim,
	}
}

func (c *Controls) Apply(a Action) {
	switch a {
	case ActionNone:
		return

	case ActionQuit:
		c.Quit = true

	case ActionWireframe:
		c.tuner.Update(func(p *cloth.Params) { p.Wireframe = !p.Wireframe })

	case ActionSelfCollisions:
		c.tuner.Update(func(p *cloth.Params) { p.AutoCollisions = !p.AutoCollisions })

	case ActionSphereCollisions:
		c.tuner.Update(func(p *cloth.Params) { p.SphereCollisions = !p.SphereCollisions })

	case ActionVoxels:
		c.ShowVoxels = !c.ShowVoxels

	case ActionPause:
		c.Paused = !c.Paused

	case ActionReset:
		c.sim.Reset()

	case ActionWindUp:
		c.tuner.Update(func(p *cloth.Params) { p.WindTarget += windStep })

	case ActionWindDown:
		c.tuner.Update(func(p *cloth.Params) { p.WindTarget -= windStep })

	case ActionSphereUp:
		c.tuner.MoveSphere(c.Selected, V.Vec32{0, sphereStep, 0})

	case ActionSphereDown:
		c.tuner.MoveSphere(c.Selected, V.Vec32{0, -sphereStep, 0})

	case ActionSphereLeft:
		c.tuner.MoveSphere(c.Selected, V.Vec32{0, 0, sphereStep})

	case ActionSphereRight:
		c.tuner.MoveSphere(c.Selected, V.Vec32{0, 0, -sphereStep})

	case ActionNextSphere:
		if n := len(c.sim.Colliders.Spheres); n > 0 {
			c.Selected = (c.Selected + 1) % n
		}
	}

	logs.WithTag("action", a.String()).
		WithTag("selected", c.Selected).
		Debug("viewer action")
}

//Tick eases the colliders toward their targets and steps the cloth once
func (c *Controls) Tick() error {
	if c.Paused {
		return nil
	}

	preset := c.tuner.Preset()
	c.tuner.ApplyColliders(&c.sim.Colliders)
	c.sim.Colliders.Ease(preset.Easing)
	return c.sim.Step(preset.Dt, preset.Params)
}
