package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Circle is the centre parameterization of an SVG elliptical arc.
//
// StartAngle, DeltaAngle and EndAngle are ellipse parameter angles in
// [0, 2π). DeltaAngle is measured in the positive direction from the start
// parameter to the end parameter; use Sweep for the angle actually
// travelled.
type Circle struct {
	Center     Point
	RX, RY     float64 // radii after out-of-range scaling
	Rotation   float64 // x-axis rotation in radians
	StartAngle float64
	DeltaAngle float64
	EndAngle   float64
	Clockwise  bool // set from the sweep flag
}

// ArcToCircle converts an SVG endpoint arc (rotation in degrees) into its
// centre form, following the SVG implementation notes F.6.5 and F.6.6.
func ArcToCircle(start Point, rx, ry, rotation float64, largeArc, sweep bool, end Point) (Circle, error) {
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return Circle{}, &GeometryError{Op: "arc", Msg: "zero radius"}
	}
	if AlmostEqual(start, end) {
		return Circle{}, &GeometryError{Op: "arc", Msg: "coincident endpoints"}
	}

	phi := mgl64.DegToRad(rotation)
	p := mgl64.Rotate2D(-phi).Mul2x1(start.Sub(end).Mul(0.5))

	// enlarge the radii just enough to reach both endpoints
	lambda := p[0]*p[0]/(rx*rx) + p[1]*p[1]/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	rx2, ry2 := rx*rx, ry*ry
	num := rx2*ry2 - rx2*p[1]*p[1] - ry2*p[0]*p[0]
	den := rx2*p[1]*p[1] + ry2*p[0]*p[0]
	coef := 0.0
	if num > 0 {
		coef = math.Sqrt(num / den)
	}
	if largeArc == sweep {
		coef = -coef
	}
	c := Point{coef * rx * p[1] / ry, -coef * ry * p[0] / rx}
	center := mgl64.Rotate2D(phi).Mul2x1(c).Add(start.Add(end).Mul(0.5))

	u := Point{(p[0] - c[0]) / rx, (p[1] - c[1]) / ry}
	v := Point{(-p[0] - c[0]) / rx, (-p[1] - c[1]) / ry}
	startAngle := Radian(Point{1, 0}, u)
	delta := Radian(u, v)
	if !sweep {
		delta -= 2 * math.Pi
	}

	return Circle{
		Center:     center,
		RX:         rx,
		RY:         ry,
		Rotation:   phi,
		StartAngle: NormalizeAngle(startAngle),
		DeltaAngle: NormalizeAngle(delta),
		EndAngle:   NormalizeAngle(startAngle + delta),
		Clockwise:  sweep,
	}, nil
}

// Sweep returns the signed parameter angle travelled from start to end:
// positive for a set sweep flag, negative otherwise.
func (c Circle) Sweep() float64 {
	if c.Clockwise {
		return c.DeltaAngle
	}
	return c.DeltaAngle - 2*math.Pi
}

// PointAt evaluates the ellipse at parameter angle t.
func (c Circle) PointAt(t float64) Point {
	local := Point{c.RX * math.Cos(t), c.RY * math.Sin(t)}
	return mgl64.Rotate2D(c.Rotation).Mul2x1(local).Add(c.Center)
}

// Tangent returns the unit tangent at parameter angle t, pointing in the
// direction of travel.
func (c Circle) Tangent(t float64) Point {
	d := Point{-c.RX * math.Sin(t), c.RY * math.Cos(t)}
	if !c.Clockwise {
		d = d.Mul(-1)
	}
	d = mgl64.Rotate2D(c.Rotation).Mul2x1(d)
	u, _ := Unit(d)
	return u
}

// AngleOf returns the parameter angle of a point on (or near) the ellipse.
func (c Circle) AngleOf(p Point) float64 {
	local := mgl64.Rotate2D(-c.Rotation).Mul2x1(p.Sub(c.Center))
	x, y := local[0]/c.RX, local[1]/c.RY
	l := math.Hypot(x, y)
	if l == 0 {
		return 0
	}
	return GuessAngle(y/l, x/l)
}
