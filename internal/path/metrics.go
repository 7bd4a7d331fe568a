package path

import (
	"math"

	"svgcam/internal/geom"
)

// CurveLength estimates the length of seg starting at prev. Arcs use the
// circular approximation rx·|DeltaAngle| on the normalized delta angle. For
// arcs with the sweep flag unset this is the complement of the angle
// travelled, so the estimate is exact only for sweep-set circular arcs.
func CurveLength(seg Segment, prev geom.Point) (float64, error) {
	switch seg.Kind {
	case Move, Line, TabUp, TabDown:
		return geom.Distance(prev, seg.End), nil
	case Arc:
		c, err := seg.Circle(prev)
		if err != nil {
			return 0, err
		}
		return c.RX * math.Abs(c.DeltaAngle), nil
	default:
		return 0, &geom.GeometryError{Op: "length", Msg: "unknown segment " + seg.Kind.String()}
	}
}

// Length sums CurveLength over every segment after the first.
func Length(c Contour) (float64, error) {
	total := 0.0
	for i := 1; i < len(c); i++ {
		l, err := CurveLength(c[i], c[i-1].End)
		if err != nil {
			return 0, err
		}
		total += l
	}
	return total, nil
}

// ClosestSegmentIndex returns the index of the segment whose end point is
// nearest p, the earliest one on ties, or -1 for an empty contour.
func ClosestSegmentIndex(c Contour, p geom.Point) int {
	best, bestDist := -1, math.Inf(1)
	for i, s := range c {
		if d := geom.Distance(s.End, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// MinDistance returns the distance from p to the nearest end point of c.
func MinDistance(c Contour, p geom.Point) float64 {
	best := math.Inf(1)
	for _, s := range c {
		best = math.Min(best, geom.Distance(s.End, p))
	}
	return best
}

// Orientation returns the shoelace sum Σ(x2-x1)(y2+y1) over the loop's
// vertices, closing pair included. Unlike a plain end point sum, arc
// midpoints are sampled as extra vertices so loops made only of arcs still
// get a sign. The loop is
// clockwise, in a y-up frame, when the sum is positive.
func Orientation(c Contour) float64 {
	pts := make([]geom.Point, 0, len(c))
	for i, s := range c {
		if s.Kind == Arc && i > 0 {
			if circle, err := s.Circle(c[i-1].End); err == nil {
				pts = append(pts, circle.PointAt(circle.StartAngle+circle.Sweep()/2))
			}
		}
		pts = append(pts, s.End)
	}

	sum := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += (q.X() - p.X()) * (q.Y() + p.Y())
	}
	return sum
}

func IsClockwise(c Contour) bool {
	return Orientation(c) > 0
}
