//go:build !nogl
// +build !nogl

package app

//Manages the viewer routine - window events, one simulation tick and one draw per frame
import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/glfw/v3.2/glfw"

	"diesel.com/drape/cloth"
	"diesel.com/drape/config"
	"diesel.com/drape/spatial"
	V "diesel.com/drape/vector"
)

const titleInterval = time.Second

var keymap = map[glfw.Key]Action{
	glfw.KeyEscape:     ActionQuit,
	glfw.KeySpace:      ActionWireframe,
	glfw.KeyC:          ActionSelfCollisions,
	glfw.KeyS:          ActionSphereCollisions,
	glfw.KeyO:          ActionVoxels,
	glfw.KeyP:          ActionPause,
	glfw.KeyR:          ActionReset,
	glfw.KeyKPAdd:      ActionWindUp,
	glfw.KeyEqual:      ActionWindUp,
	glfw.KeyKPSubtract: ActionWindDown,
	glfw.KeyMinus:      ActionWindDown,
	glfw.KeyUp:         ActionSphereUp,
	glfw.KeyDown:       ActionSphereDown,
	glfw.KeyLeft:       ActionSphereLeft,
	glfw.KeyRight:      ActionSphereRight,
	glfw.KeyTab:        ActionNextSphere,
}

//input routes glfw callbacks to the controls and the camera
type input struct {
	controls *Controls
	camera   *Camera
	holding  bool
	xT       float64
	yT       float64
}

func (in *input) processKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	a, ok := keymap[key]
	if !ok {
		return
	}
	//Toggles only fire on press, moves repeat
	if action == glfw.Repeat && !repeatable(a) {
		return
	}
	in.controls.Apply(a)
}

func repeatable(a Action) bool {
	switch a {
	case ActionWindUp, ActionWindDown, ActionSphereUp, ActionSphereDown, ActionSphereLeft, ActionSphereRight:
		return true
	}
	return false
}

func (in *input) processMouse(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	in.holding = action == glfw.Press
	in.xT, in.yT = w.GetCursorPos()
}

func (in *input) processCursor(w *glfw.Window, xPos float64, yPos float64) {
	if !in.holding {
		return
	}
	in.camera.Rotate(xPos-in.xT, yPos-in.yT)
	in.xT = xPos
	in.yT = yPos
}

func (in *input) processScroll(w *glfw.Window, xoff float64, yoff float64) {
	in.camera.Zoom(yoff)
}

//Run opens the viewer and blocks until the window is closed, Escape is pressed,
//ctx is done or a tick fails. Must be called from the main goroutine.
func Run(ctx context.Context, tuner *config.Tuner, sim *cloth.Simulation, opts ViewerOptions) error {
	//All OpenGL context calls have to stay on this thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	window, err := InitGLFW(AppWindow{Width: opts.Width, Height: opts.Height, Name: opts.Title})
	if err != nil {
		return err
	}
	defer glfw.Terminate()

	renderer, err := InitOpenGL(sim.Cloth.Grid)
	if err != nil {
		return err
	}
	defer renderer.Delete()

	preset := tuner.Preset()
	bounds := spatial.Box{Center: preset.Octree.Center, Extent: preset.Octree.Extent}
	center := V.Vec32{0, preset.Grid.Height / 2, 0}

	in := &input{
		controls: NewControls(tuner, sim),
		camera:   NewCamera(center, 12),
	}
	window.SetKeyCallback(in.processKey)
	window.SetMouseButtonCallback(in.processMouse)
	window.SetCursorPosCallback(in.processCursor)
	window.SetScrollCallback(in.processScroll)

	logs.WithTag("particles", sim.Cloth.Count).
		WithTag("width", opts.Width).
		WithTag("height", opts.Height).
		Info("viewer started")

	lastTitle := time.Now()
	for !window.ShouldClose() && !in.controls.Quit {
		if ctx.Err() != nil {
			break
		}

		if err := in.controls.Tick(); err != nil {
			return err
		}

		params := tuner.Params()
		width, height := window.GetFramebufferSize()
		frame := Frame{
			Positions:  sim.Positions(),
			Colliders:  &sim.Colliders,
			Wireframe:  params.Wireframe,
			ShowSphere: params.SphereCollisions,
			Selected:   in.controls.Selected,
			View:       in.camera.View(),
			Projection: in.camera.Projection(width, height),
		}
		if in.controls.ShowVoxels {
			voxels, err := sim.OccupiedVoxels()
			if err != nil {
				logs.Warn(err)
			}
			frame.Voxels = voxels
			frame.Bounds = &bounds
		}

		if err := renderer.Draw(frame, width, height); err != nil {
			return err
		}

		if time.Since(lastTitle) >= titleInterval {
			window.SetTitle(fmt.Sprintf("%s - tick %d - wind %.3f - max speed %.3f - %s",
				opts.Title, sim.Timer.Ticks, sim.Wind(), sim.MaxSpeed(), sim.Stats.Duration))
			lastTitle = time.Now()
		}

		window.SwapBuffers()
		glfw.PollEvents()
	}

	logs.WithTag("ticks", sim.Timer.Ticks).Info("viewer closed")
	return nil
}
