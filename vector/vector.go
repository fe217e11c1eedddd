package vector

import (
	"fmt"
	"math"
	"math/rand"
)

//Vec32 Default Vector Implementation - three float32 components, comparable with ==
type Vec32 [3]float32

//Vec2 planar vector, used for per-axis grid spacing
type Vec2 [2]float32

//NewVec32 Returns pointer to a vector with all components set to a
func NewVec32(a float32) *Vec32 {
	return &Vec32{a, a, a}
}

func Abs(a Vec32) Vec32 {
	a[0] = float32(math.Abs(float64(a[0])))
	a[1] = float32(math.Abs(float64(a[1])))
	a[2] = float32(math.Abs(float64(a[2])))

	return a
}

func Dot(a Vec32, b Vec32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (v *Vec32) Dot(b Vec32) float32 {
	return v[0]*b[0] + v[1]*b[1] + v[2]*b[2]
}

//Scale - Scales vector by scalar a
func Scale(v Vec32, a float32) Vec32 {
	return Vec32{v[0] * a, v[1] * a, v[2] * a}
}

//Scale - Mutate
func (v *Vec32) Scale(a float32) *Vec32 {
	v[0] *= a
	v[1] *= a
	v[2] *= a
	return v
}

func (v *Vec32) Clear() *Vec32 {
	v[0] = 0
	v[1] = 0
	v[2] = 0
	return v
}

func Add(v Vec32, b Vec32) Vec32 {
	return Vec32{v[0] + b[0], v[1] + b[1], v[2] + b[2]}
}

func Sub(v Vec32, b Vec32) Vec32 {
	return Vec32{v[0] - b[0], v[1] - b[1], v[2] - b[2]}
}

//Mul componentwise product
func Mul(v Vec32, b Vec32) Vec32 {
	return Vec32{v[0] * b[0], v[1] * b[1], v[2] * b[2]}
}

//Add - Mutate
func (v *Vec32) Add(b Vec32) *Vec32 {
	v[0] += b[0]
	v[1] += b[1]
	v[2] += b[2]
	return v
}

//Sub - Mutate
func (v *Vec32) Sub(b Vec32) *Vec32 {
	v[0] = v[0] - b[0]
	v[1] = v[1] - b[1]
	v[2] = v[2] - b[2]
	return v
}

//AddScaled accumulates b*a into v. Used by force and integration loops
func (v *Vec32) AddScaled(b Vec32, a float32) *Vec32 {
	v[0] += b[0] * a
	v[1] += b[1] * a
	v[2] += b[2] * a
	return v
}

//Cross Product
func Cross(a Vec32, b Vec32) Vec32 {
	g := Vec32{a[1]*b[2] - b[1]*a[2],
		a[2]*b[0] - b[2]*a[0],
		a[0]*b[1] - b[0]*a[1]}

	return g
}

func Length(a Vec32) float32 {
	l := float32(math.Sqrt(float64(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])))
	return l
}

func (v *Vec32) Length() float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

//Normalize returns the unit vector of a. The zero vector normalizes to itself
func Normalize(a Vec32) Vec32 {
	v := Vec32{}
	l := a.Length()
	if l != 0 {
		v[0] = a[0] / l
		v[1] = a[1] / l
		v[2] = a[2] / l
	}
	return v
}

func Distance(a Vec32, b Vec32) float32 {
	return Length(Sub(a, b))
}

func (v *Vec32) Distance(a Vec32) float32 {
	return Length(Sub(*v, a))
}

//Mix linear blend from a toward b by t (t=0 -> a, t=1 -> b)
func Mix(a Vec32, b Vec32, t float32) Vec32 {
	return Vec32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

//MixScalar linear blend of two scalars
func MixScalar(a float32, b float32, t float32) float32 {
	return a + (b-a)*t
}

//RandomUnit samples a point uniformly on the unit sphere.
//z is uniform in [-1, 1] and the azimuth uniform in [0, 2pi)
func RandomUnit(rnd *rand.Rand) Vec32 {
	z := rnd.Float64()*2 - 1
	theta := rnd.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return Vec32{float32(r * math.Cos(theta)), float32(r * math.Sin(theta)), float32(z)}
}

func IsFinite(a Vec32) bool {
	for i := 0; i < 3; i++ {
		f := float64(a[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (a Vec2) Length() float32 {
	return float32(math.Sqrt(float64(a[0]*a[0] + a[1]*a[1])))
}

func (a Vec2) Scale(s float32) Vec2 {
	return Vec2{a[0] * s, a[1] * s}
}

//Other Math Helper Functions
func isEpsilon(a float32, b float32) bool {
	return math.Abs(float64(b-a)) <= 0.00000019
}

func (a Vec32) String() string {
	return fmt.Sprintf("[%f, %f, %f]", a[0], a[1], a[2])
}

func (a Vec2) String() string {
	return fmt.Sprintf("[%f, %f]", a[0], a[1])
}
