//go:build !nogl
// +build !nogl

package app

//OpenGL windowing calls and the cloth renderer
import (
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"diesel.com/drape/cloth"
	"diesel.com/drape/geometry"
	"diesel.com/drape/spatial"
	"diesel.com/drape/utils"
	V "diesel.com/drape/vector"
)

type AppWindow struct {
	Width  int
	Height int
	Name   string
}

//Attribute locations shared by both programs
const (
	DSL_VERTEX = 0
	DSL_NORMAL = 1

	sphereSegments = 32
	voxelShrink    = 0.96
)

const clothVertexSRC = `#version 410 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
uniform mat4 mvp;
out vec3 vNormal;
void main() {
	vNormal = normal;
	gl_Position = mvp * vec4(position, 1.0);
}
` + "\x00"

const clothFragSRC = `#version 410 core
in vec3 vNormal;
uniform vec4 color;
uniform vec3 light;
out vec4 fragColor;
void main() {
	float d = abs(dot(normalize(vNormal), normalize(light)));
	fragColor = vec4(color.rgb * (0.25 + 0.75 * d), color.a);
}
` + "\x00"

const lineVertexSRC = `#version 410 core
layout(location = 0) in vec3 position;
uniform mat4 mvp;
void main() {
	gl_Position = mvp * vec4(position, 1.0);
}
` + "\x00"

const lineFragSRC = `#version 410 core
uniform vec4 color;
out vec4 fragColor;
void main() {
	fragColor = color;
}
` + "\x00"

type program struct {
	id    uint32
	mvp   int32
	color int32
	light int32
}

//Frame - what a single draw call needs from the simulation side
type Frame struct {
	Positions  []V.Vec32
	Colliders  *geometry.ColliderSet
	Voxels     []spatial.Box
	Bounds     *spatial.Box
	Wireframe  bool
	ShowSphere bool
	Selected   int
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

//Renderer owns the GL programs and buffers. Must be used from the thread
//holding the GL context
type Renderer struct {
	PrgID [2]uint32
	VAO   [3]uint32 //cloth, spheres, voxels
	VBO   [3]uint32
	EBO   uint32

	cloth program
	lines program

	indices  []uint32
	vertices []float32
	lineBuf  []float32
	lineVecs []V.Vec32
}

//InitGLFW initializes glfw and returns a Window to use.
func InitGLFW(a AppWindow) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.New("glfw init failed").
			WithType(ErrTypeViewer).
			Wrap(err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(a.Width, a.Height, a.Name, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.New("creating window failed").
			WithType(ErrTypeViewer).
			WithTag("width", a.Width).
			WithTag("height", a.Height).
			Wrap(err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	return window, nil
}

//InitOpenGL initializes OpenGL and builds a renderer for the given grid.
func InitOpenGL(grid cloth.GridDescriptor) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.New("opengl init failed").
			WithType(ErrTypeViewer).
			Wrap(err)
	}
	logs.WithTag("version", gl.GoStr(gl.GetString(gl.VERSION))).Info("opengl ready")

	r := &Renderer{
		indices: geometry.GridIndices(grid.GridWidth, grid.GridHeight),
	}

	var err error
	if r.cloth, err = linkProgram(clothVertexSRC, clothFragSRC); err != nil {
		return nil, err
	}
	if r.lines, err = linkProgram(lineVertexSRC, lineFragSRC); err != nil {
		return nil, err
	}
	r.PrgID = [2]uint32{r.cloth.id, r.lines.id}

	r.MakeVAO(grid.Count())
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return r, nil
}

//MakeVAO allocates the cloth buffers for count particles plus the two line
//buffers, which are resized on upload
func (r *Renderer) MakeVAO(count int) {
	gl.GenVertexArrays(3, &r.VAO[0])
	gl.GenBuffers(3, &r.VBO[0])
	gl.GenBuffers(1, &r.EBO)

	//Interleaved position / normal, 6 floats (24 bytes) per particle
	gl.BindVertexArray(r.VAO[0])
	gl.BindBuffer(gl.ARRAY_BUFFER, r.VBO[0])
	gl.BufferData(gl.ARRAY_BUFFER, count*6*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(DSL_VERTEX)
	gl.VertexAttribPointer(DSL_VERTEX, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(DSL_NORMAL)
	gl.VertexAttribPointer(DSL_NORMAL, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(3*4))

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.EBO)
	if len(r.indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(r.indices)*4, gl.Ptr(r.indices), gl.STATIC_DRAW)
	}

	for i := 1; i < 3; i++ {
		gl.BindVertexArray(r.VAO[i])
		gl.BindBuffer(gl.ARRAY_BUFFER, r.VBO[i])
		gl.EnableVertexAttribArray(DSL_VERTEX)
		gl.VertexAttribPointer(DSL_VERTEX, 3, gl.FLOAT, false, 0, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) Draw(f Frame, width int, height int) error {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0.9, 0.9, 0.9, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	mvp := f.Projection.Mul4(f.View)

	//-------------CLOTH--------------------------------//
	normals := geometry.GridNormals(f.Positions, r.indices)
	var err error
	if r.vertices, err = utils.Interleave(r.vertices, f.Positions, normals); err != nil {
		return err
	}

	gl.UseProgram(r.cloth.id)
	gl.UniformMatrix4fv(r.cloth.mvp, 1, false, &mvp[0])
	gl.Uniform4f(r.cloth.color, 0.75, 0.2, 0.2, 1)
	gl.Uniform3f(r.cloth.light, 0.3, 1, 0.6)

	gl.BindVertexArray(r.VAO[0])
	gl.BindBuffer(gl.ARRAY_BUFFER, r.VBO[0])
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(r.vertices)*4, gl.Ptr(r.vertices))
	if f.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	gl.DrawElements(gl.TRIANGLES, int32(len(r.indices)), gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	//-------------COLLIDERS------------------------------//
	gl.UseProgram(r.lines.id)
	gl.UniformMatrix4fv(r.lines.mvp, 1, false, &mvp[0])

	if f.ShowSphere && f.Colliders != nil {
		for i := range f.Colliders.Spheres {
			s := &f.Colliders.Spheres[i]
			if i == f.Selected {
				gl.Uniform4f(r.lines.color, 0.1, 0.3, 0.9, 1)
			} else {
				gl.Uniform4f(r.lines.color, 0.2, 0.2, 0.2, 1)
			}
			r.drawLines(1, s.SphereLines(sphereSegments))
		}
	}

	//-------------OCTREE---------------------------------//
	if f.Bounds != nil {
		lines := r.lineVecs[:0]
		for _, box := range f.Voxels {
			edges := geometry.BoxLines(box.Center, box.Extent)
			utils.ScalePositions(edges, box.Center, voxelShrink)
			lines = append(lines, edges...)
		}
		lines = append(lines, geometry.BoxLines(f.Bounds.Center, f.Bounds.Extent)...)
		r.lineVecs = lines

		gl.Uniform4f(r.lines.color, 0.1, 0.6, 0.2, 0.5)
		r.drawLines(2, lines)
	}

	gl.BindVertexArray(0)
	return nil
}

func (r *Renderer) drawLines(vao int, lines []V.Vec32) {
	if len(lines) == 0 {
		return
	}
	r.lineBuf = utils.FlattenPositions(r.lineBuf, lines)

	gl.BindVertexArray(r.VAO[vao])
	gl.BindBuffer(gl.ARRAY_BUFFER, r.VBO[vao])
	gl.BufferData(gl.ARRAY_BUFFER, len(r.lineBuf)*4, gl.Ptr(r.lineBuf), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(lines)))
}

//Delete releases the GL objects
func (r *Renderer) Delete() {
	gl.DeleteBuffers(3, &r.VBO[0])
	gl.DeleteBuffers(1, &r.EBO)
	gl.DeleteVertexArrays(3, &r.VAO[0])
	gl.DeleteProgram(r.cloth.id)
	gl.DeleteProgram(r.lines.id)
}

func linkProgram(vertexSRC string, fragSRC string) (program, error) {
	vtxSHO, err := compileShader(vertexSRC, gl.VERTEX_SHADER)
	if err != nil {
		return program{}, err
	}
	defer gl.DeleteShader(vtxSHO)

	frgSHO, err := compileShader(fragSRC, gl.FRAGMENT_SHADER)
	if err != nil {
		return program{}, err
	}
	defer gl.DeleteShader(frgSHO)

	id := gl.CreateProgram()
	gl.AttachShader(id, vtxSHO)
	gl.AttachShader(id, frgSHO)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return program{}, errors.New("GLSL program failed to link").
			WithType(ErrTypeViewer).
			WithTag("log", strings.TrimRight(log, "\x00"))
	}

	return program{
		id:    id,
		mvp:   gl.GetUniformLocation(id, gl.Str("mvp\x00")),
		color: gl.GetUniformLocation(id, gl.Str("color\x00")),
		light: gl.GetUniformLocation(id, gl.Str("light\x00")),
	}, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, errors.New("GLSL shader failed to compile").
			WithType(ErrTypeViewer).
			WithTag("shader_type", shaderType).
			WithTag("log", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
