package broadphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector is the coordinate type the tree is generic over. The tree itself
// never looks at individual components; everything it needs reduces to
// component-wise min/max, arithmetic, and a cheap scalar size measure.
type Vector[V any] interface {
	Add(V) V
	Sub(V) V
	Scale(float64) V

	// Min and Max are component-wise.
	Min(V) V
	Max(V) V

	// Offset adds a scalar to every component. Used for margin expansion.
	Offset(float64) V

	// Sum of all components. (max-min).Sum() is the perimeter proxy.
	Sum() float64

	// Less and LessEq are component-wise comparisons; both must hold on
	// every axis. Boxes are lower-inclusive and upper-exclusive, which is
	// why both forms are needed.
	Less(V) bool
	LessEq(V) bool
}

// Vec2 is a 2D coordinate backed by mathgl.
type Vec2 mgl64.Vec2

func V2(x, y float64) Vec2 { return Vec2{x, y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2(mgl64.Vec2(v).Add(mgl64.Vec2(o))) }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2(mgl64.Vec2(v).Sub(mgl64.Vec2(o))) }
func (v Vec2) Scale(c float64) Vec2 { return Vec2(mgl64.Vec2(v).Mul(c)) }
func (v Vec2) Min(o Vec2) Vec2      { return Vec2{math.Min(v[0], o[0]), math.Min(v[1], o[1])} }
func (v Vec2) Max(o Vec2) Vec2      { return Vec2{math.Max(v[0], o[0]), math.Max(v[1], o[1])} }
func (v Vec2) Offset(c float64) Vec2 {
	return Vec2{v[0] + c, v[1] + c}
}
func (v Vec2) Sum() float64        { return v[0] + v[1] }
func (v Vec2) Less(o Vec2) bool    { return v[0] < o[0] && v[1] < o[1] }
func (v Vec2) LessEq(o Vec2) bool  { return v[0] <= o[0] && v[1] <= o[1] }
func (v Vec2) X() float64          { return v[0] }
func (v Vec2) Y() float64          { return v[1] }

// Vec3 is a 3D coordinate backed by mathgl.
type Vec3 mgl64.Vec3

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3(mgl64.Vec3(v).Add(mgl64.Vec3(o))) }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3(mgl64.Vec3(v).Sub(mgl64.Vec3(o))) }
func (v Vec3) Scale(c float64) Vec3 { return Vec3(mgl64.Vec3(v).Mul(c)) }
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{math.Min(v[0], o[0]), math.Min(v[1], o[1]), math.Min(v[2], o[2])}
}
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{math.Max(v[0], o[0]), math.Max(v[1], o[1]), math.Max(v[2], o[2])}
}
func (v Vec3) Offset(c float64) Vec3 {
	return Vec3{v[0] + c, v[1] + c, v[2] + c}
}
func (v Vec3) Sum() float64       { return v[0] + v[1] + v[2] }
func (v Vec3) Less(o Vec3) bool   { return v[0] < o[0] && v[1] < o[1] && v[2] < o[2] }
func (v Vec3) LessEq(o Vec3) bool { return v[0] <= o[0] && v[1] <= o[1] && v[2] <= o[2] }
