package cloth

import (
	"github.com/aukilabs/go-tooling/pkg/errors"

	V "diesel.com/drape/vector"
)

//Cloth state: parallel slices indexed row*GridWidth + col. Positions are
//the only data renderers read.

const (
	//ErrTypeGrid is reported for a grid that cannot be built
	ErrTypeGrid = "cloth_invalid_grid"
)

//GridDescriptor - immutable cloth topology and size. Used for particle layout
//and rest length generation
type GridDescriptor struct {
	ParticleMass float32 `mapstructure:"particle_mass" toml:"particle_mass"`
	Width        float32 `mapstructure:"width" toml:"width"`   //world width
	Height       float32 `mapstructure:"height" toml:"height"` //world height
	GridWidth    int     `mapstructure:"grid_width" toml:"grid_width"`
	GridHeight   int     `mapstructure:"grid_height" toml:"grid_height"`
}

func (g GridDescriptor) Validate() error {
	if g.GridWidth < 2 || g.GridHeight < 2 {
		return errors.New("grid needs at least 2x2 particles").
			WithType(ErrTypeGrid).
			WithTag("grid_width", g.GridWidth).
			WithTag("grid_height", g.GridHeight)
	}
	if g.ParticleMass <= 0 || g.Width <= 0 || g.Height <= 0 {
		return errors.New("grid mass and size must be positive").
			WithType(ErrTypeGrid).
			WithTag("particle_mass", g.ParticleMass).
			WithTag("width", g.Width).
			WithTag("height", g.Height)
	}
	return nil
}

//Count of particles
func (g GridDescriptor) Count() int {
	return g.GridWidth * g.GridHeight
}

//Spacing between neighbouring particles along x (columns) and y (rows)
func (g GridDescriptor) Spacing() V.Vec2 {
	return V.Vec2{g.Width / float32(g.GridWidth-1), g.Height / float32(g.GridHeight-1)}
}

type Cloth struct {
	Grid       GridDescriptor
	Count      int
	Positions  []V.Vec32
	Velocities []V.Vec32
	Forces     []V.Vec32
	Masses     []float32

	L0 V.Vec2  //structural rest length, x horizontal / y vertical
	L1 float32 //shear rest length
	L2 V.Vec2  //bend rest length

	links []link
}

//link - neighbour offset sharing a spring tier and rest length
type link struct {
	di, dj int
	tier   int
	rest   float32
}

//New lays the grid out in the z = 0 plane starting at (-Width/2, 0, 0)
func New(grid GridDescriptor) (*Cloth, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	n := grid.Count()
	c := &Cloth{
		Grid:       grid,
		Count:      n,
		Positions:  make([]V.Vec32, n),
		Velocities: make([]V.Vec32, n),
		Forces:     make([]V.Vec32, n),
		Masses:     make([]float32, n),
	}

	scale := grid.Spacing()
	c.L0 = scale
	c.L1 = scale.Length()
	c.L2 = scale.Scale(4)
	c.links = []link{
		{1, 0, 0, c.L0[0]}, {-1, 0, 0, c.L0[0]},
		{0, 1, 0, c.L0[1]}, {0, -1, 0, c.L0[1]},
		{1, 1, 1, c.L1}, {-1, 1, 1, c.L1}, {1, -1, 1, c.L1}, {-1, -1, 1, c.L1},
		{2, 0, 2, c.L2[0]}, {-2, 0, 2, c.L2[0]},
		{0, 2, 2, c.L2[1]}, {0, -2, 2, c.L2[1]},
	}
	c.layout()
	return c, nil
}

func (c *Cloth) layout() {
	origin := V.Vec32{-c.Grid.Width / 2, 0, 0}
	scale := c.Grid.Spacing()

	for j := 0; j < c.Grid.GridHeight; j++ {
		for i := 0; i < c.Grid.GridWidth; i++ {
			k := c.Index(i, j)
			c.Positions[k] = V.Add(origin, V.Vec32{float32(i) * scale[0], float32(j) * scale[1], 0})
			c.Velocities[k] = V.Vec32{}
			c.Forces[k] = V.Vec32{}
			c.Masses[k] = c.Grid.ParticleMass
		}
	}
}

//Index of particle (col, row)
func (c *Cloth) Index(col int, row int) int {
	return row*c.Grid.GridWidth + col
}

//Fixed reports whether particle k is in the pinned top row. Pinned particles
//receive no forces but are still integrated.
func (c *Cloth) Fixed(k int) bool {
	return k >= c.Count-c.Grid.GridWidth
}

//ClearForces zeroes the force accumulators
func (c *Cloth) ClearForces() {
	for i := range c.Forces {
		c.Forces[i].Clear()
	}
}
