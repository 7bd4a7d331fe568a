// Package geom holds the planar vector helpers shared by the toolpath
// packages and the SVG elliptical arc endpoint-to-centre conversion.
package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the distance under which two points are considered equal.
const Epsilon = 1e-9

// ErrGeometry matches every *GeometryError.
var ErrGeometry = errors.New("geom: degenerate geometry")

// GeometryError reports input the geometric routines cannot work with,
// such as a zero arc radius or a zero-length tangent.
type GeometryError struct {
	Op  string
	Msg string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geom: %s: %s", e.Op, e.Msg)
}

func (e *GeometryError) Is(target error) bool {
	return target == ErrGeometry
}

// Point is a position or direction in the drawing plane.
type Point = mgl64.Vec2

func Pt(x, y float64) Point {
	return Point{x, y}
}

// Cross returns the z component of the cross product a x b.
func Cross(a, b Point) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

func Distance(a, b Point) float64 {
	return b.Sub(a).Len()
}

func Lerp(a, b Point, t float64) Point {
	return a.Add(b.Sub(a).Mul(t))
}

func AlmostEqual(a, b Point) bool {
	return math.Abs(a[0]-b[0]) < Epsilon && math.Abs(a[1]-b[1]) < Epsilon
}

// Unit returns v scaled to length one, or false when v has no direction.
func Unit(v Point) (Point, bool) {
	l := v.Len()
	if l < Epsilon {
		return Point{}, false
	}
	return v.Mul(1 / l), true
}

// Round6 rounds to six decimals and folds negative zero into zero.
func Round6(v float64) float64 {
	r := mgl64.Round(v, 6)
	if r == 0 {
		return 0
	}
	return r
}

func RoundPoint(p Point) Point {
	return Point{Round6(p[0]), Round6(p[1])}
}

// NormalizeAngle maps a into [0, 2π).
func NormalizeAngle(a float64) float64 {
	for a < 0 {
		a += 2 * math.Pi
	}
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Radian returns the signed angle from u to v in (-π, π].
func Radian(u, v Point) float64 {
	lu, lv := u.Len(), v.Len()
	if lu == 0 || lv == 0 {
		return 0
	}
	a := math.Acos(mgl64.Clamp(u.Dot(v)/(lu*lv), -1, 1))
	if Cross(u, v) < 0 {
		a = -a
	}
	return a
}

// GuessAngle recovers a signed angle from separately computed sine and
// cosine values: the magnitude comes from the cosine, the sign from the sine.
func GuessAngle(sin, cos float64) float64 {
	a := math.Acos(mgl64.Clamp(cos, -1, 1))
	if math.Asin(mgl64.Clamp(sin, -1, 1)) < 0 {
		a = -a
	}
	return a
}
