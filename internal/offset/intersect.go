package offset

import (
	"math"

	"svgcam/internal/geom"
	"svgcam/internal/path"
)

const (
	// MaxSplits bounds the number of loop splits for one offset.
	MaxSplits = 10000

	parallelEps = 1e-9
)

// splitSelfIntersections cuts loop at proper crossings between its line
// segments until every resulting loop is simple. Arcs never take part in
// the crossing test.
func splitSelfIntersections(loop path.Contour) ([]path.Contour, error) {
	pending := []path.Contour{loop}
	var done []path.Contour
	splits := 0

	for len(pending) > 0 {
		cur := pending[0]
		pending = pending[1:]

		i, j, x, ok := findCrossing(cur)
		if !ok {
			done = append(done, cur)
			continue
		}
		if splits++; splits > MaxSplits {
			return nil, &geom.GeometryError{Op: "offset", Msg: "too many self-intersections"}
		}
		a, b := splitAt(cur, i, j, x)
		pending = append(pending, a, b)
	}
	return done, nil
}

// findCrossing returns the first pair of non-adjacent line segments i < j
// that cross properly, with the crossing point.
func findCrossing(c path.Contour) (int, int, geom.Point, bool) {
	last := len(c) - 1
	for i := 1; i <= last; i++ {
		if c[i].Kind != path.Line {
			continue
		}
		for j := i + 2; j <= last; j++ {
			if c[j].Kind != path.Line || (i == 1 && j == last) {
				continue
			}
			if x, ok := intersect(c[i-1].End, c[i].End, c[j-1].End, c[j].End); ok {
				return i, j, x, true
			}
		}
	}
	return 0, 0, geom.Point{}, false
}

// splitAt divides c at the crossing x of segments i and j into the loop that
// skips the stretch between them and the loop made of that stretch.
func splitAt(c path.Contour, i, j int, x geom.Point) (path.Contour, path.Contour) {
	cross := path.LineTo(x.X(), x.Y())

	a := make(path.Contour, 0, len(c)-(j-i)+1)
	a = append(a, c[:i]...)
	a = append(a, cross)
	a = append(a, c[j:]...)

	b := make(path.Contour, 0, j-i+2)
	b = append(b, path.MoveTo(x.X(), x.Y()))
	b = append(b, c[i:j]...)
	b = append(b, cross)
	return a, b
}

// intersect reports whether segments p1p2 and p3p4 cross at a single
// interior point. Touching, collinear and near-parallel pairs do not count.
func intersect(p1, p2, p3, p4 geom.Point) (geom.Point, bool) {
	d1 := orient(p3, p4, p1)
	d2 := orient(p3, p4, p2)
	d3 := orient(p1, p2, p3)
	d4 := orient(p1, p2, p4)
	if !opposite(d1, d2) || !opposite(d3, d4) {
		return geom.Point{}, false
	}

	r, s := p2.Sub(p1), p4.Sub(p3)
	denom := geom.Cross(r, s)
	if math.Abs(denom) < parallelEps {
		return geom.Point{}, false
	}
	t := geom.Cross(p3.Sub(p1), s) / denom
	return p1.Add(r.Mul(t)), true
}

func orient(a, b, c geom.Point) float64 {
	return geom.Cross(b.Sub(a), c.Sub(a))
}

func opposite(a, b float64) bool {
	return (a > geom.Epsilon && b < -geom.Epsilon) || (a < -geom.Epsilon && b > geom.Epsilon)
}
