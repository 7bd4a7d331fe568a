// Package offset builds parallel contours at a fixed distance from a closed
// outline. Convex corners get a mitred point and reflex corners a circular
// fillet. Self-intersecting results are split into simple loops, and loops
// that turned inside out are dropped.
package offset

import (
	"fmt"
	"math"
	"strings"

	"svgcam/internal/geom"
	"svgcam/internal/path"
)

// Direction selects the side of the contour the offset lies on.
type Direction int

const (
	Inside Direction = iota
	Outside
)

func (d Direction) String() string {
	if d == Inside {
		return "inside"
	}
	return "outside"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inside", "in":
		return Inside, nil
	case "outside", "out":
		return Outside, nil
	default:
		return 0, fmt.Errorf("offset: unknown direction %q (want inside or outside)", s)
	}
}

const (
	// tangentProbe is how far along an arc's tangent the synthetic
	// neighbour of a vertex is placed.
	tangentProbe = 10
	collinearEps = 1e-6
	radiusEps    = 1e-9
)

type edge struct {
	seg    path.Segment
	from   geom.Point
	circle geom.Circle // arcs only
}

// neighbours returns the points the tangents at the edge's start and end
// are measured towards.
func (e edge) neighbours() (start, end geom.Point) {
	if e.seg.Kind != path.Arc {
		return e.seg.End, e.from
	}
	ts := e.circle.Tangent(e.circle.AngleOf(e.from))
	te := e.circle.Tangent(e.circle.AngleOf(e.seg.End))
	return e.from.Add(ts.Mul(tangentProbe)), e.seg.End.Sub(te.Mul(tangentProbe))
}

func (e edge) startTangent() geom.Point {
	n, _ := e.neighbours()
	return n.Sub(e.from)
}

func (e edge) endTangent() geom.Point {
	_, n := e.neighbours()
	return e.seg.End.Sub(n)
}

type join struct {
	entry, exit geom.Point
	fillet      bool
	sweep       bool
}

// Offset returns the loops lying at distance r from c on the given side.
// Every loop opens with a Move and has its coordinates rounded to six
// decimals. The result may be empty when the offset collapses.
func Offset(c path.Contour, r float64, dir Direction) ([]path.Contour, error) {
	if r < 0 {
		r = -r
		dir = 1 - dir
	}

	edges, err := collectEdges(c)
	if err != nil {
		return nil, err
	}
	source := make(path.Contour, 0, len(edges)+1)
	source = append(source, path.MoveTo(edges[0].from.X(), edges[0].from.Y()))
	for _, e := range edges {
		source = append(source, e.seg)
	}

	orient := path.Orientation(source)
	if math.Abs(orient) < geom.Epsilon {
		return nil, &geom.GeometryError{Op: "offset", Msg: "contour encloses no area"}
	}
	clockwise := orient > 0
	if r == 0 {
		return []path.Contour{round(source)}, nil
	}

	od := 1.0
	if clockwise {
		od = -od
	}
	if dir == Inside {
		od = -od
	}

	joins := make([]join, len(edges))
	for i, e := range edges {
		next := edges[(i+1)%len(edges)]
		joins[i], err = makeJoin(e.seg.End, e.endTangent(), next.startTangent(), od, r)
		if err != nil {
			return nil, err
		}
	}

	cur := joins[len(joins)-1].exit
	var segs []path.Segment
	for i, e := range edges {
		entry := joins[i].entry
		if e.seg.Kind == path.Arc {
			adj := od * r
			if !e.seg.Sweep {
				adj = -adj
			}
			rx, ry := e.circle.RX+adj, e.circle.RY+adj
			if rx > radiusEps && ry > radiusEps {
				segs = append(segs, path.ArcTo(rx, ry, e.seg.Rotation, e.seg.LargeArc, e.seg.Sweep, entry.X(), entry.Y()))
			} else if !geom.AlmostEqual(cur, entry) {
				segs = append(segs, path.LineTo(entry.X(), entry.Y()))
			}
		} else if !geom.AlmostEqual(cur, entry) {
			segs = append(segs, path.LineTo(entry.X(), entry.Y()))
		}
		cur = entry

		if j := joins[i]; j.fillet {
			segs = append(segs, path.ArcTo(r, r, 0, false, j.sweep, j.exit.X(), j.exit.Y()))
			cur = j.exit
		}
	}

	loop := append(path.Contour{path.MoveTo(cur.X(), cur.Y())}, segs...)
	loops, err := splitSelfIntersections(loop)
	if err != nil {
		return nil, err
	}

	out := make([]path.Contour, 0, len(loops))
	for _, l := range loops {
		o := path.Orientation(l)
		if math.Abs(o) < geom.Epsilon || (o > 0) != clockwise {
			continue
		}
		out = append(out, round(l))
	}
	return out, nil
}

// collectEdges strips the leading Move, drops zero-length segments and
// closes the loop with a line when it does not return to its start.
func collectEdges(c path.Contour) ([]edge, error) {
	if len(c) == 0 {
		return nil, &geom.GeometryError{Op: "offset", Msg: "empty contour"}
	}
	start := c.Start()
	body := c
	if c[0].Kind == path.Move {
		body = c[1:]
	}

	var edges []edge
	prev := start
	for _, s := range body {
		if geom.AlmostEqual(prev, s.End) {
			continue
		}
		switch s.Kind {
		case path.Line, path.TabUp, path.TabDown:
			edges = append(edges, edge{seg: path.LineTo(s.End.X(), s.End.Y()), from: prev})
		case path.Arc:
			circle, err := s.Circle(prev)
			if err != nil {
				return nil, err
			}
			edges = append(edges, edge{seg: s, from: prev, circle: circle})
		case path.Move:
			return nil, &geom.GeometryError{Op: "offset", Msg: "contour has more than one subpath"}
		default:
			return nil, &geom.GeometryError{Op: "offset", Msg: "unknown segment " + s.Kind.String()}
		}
		prev = s.End
	}
	if !geom.AlmostEqual(prev, start) {
		edges = append(edges, edge{seg: path.LineTo(start.X(), start.Y()), from: prev})
	}
	if len(edges) < 2 {
		return nil, &geom.GeometryError{Op: "offset", Msg: "contour needs at least two segments"}
	}
	return edges, nil
}

// makeJoin offsets the vertex v where tangent tin turns into tout. The
// offset side is od·(t.y, -t.x).
func makeJoin(v, tin, tout geom.Point, od, r float64) (join, error) {
	tin, ok1 := geom.Unit(tin)
	tout, ok2 := geom.Unit(tout)
	if !ok1 || !ok2 {
		return join{}, &geom.GeometryError{Op: "offset", Msg: "zero-length tangent"}
	}

	nIn := geom.Pt(tin.Y(), -tin.X()).Mul(od)
	nOut := geom.Pt(tout.Y(), -tout.X()).Mul(od)
	cross := geom.Cross(tin, tout)

	switch {
	case math.Abs(cross) < collinearEps && tin.Dot(tout) > 0:
		p := v.Add(nIn.Mul(r))
		return join{entry: p, exit: p}, nil

	case math.Abs(cross) < collinearEps:
		return join{}, &geom.GeometryError{Op: "offset", Msg: fmt.Sprintf("contour doubles back at (%g, %g)", v.X(), v.Y())}

	case cross*od < 0:
		// offset side inside the turn: single mitre point on the bisector
		b, _ := geom.Unit(tout.Sub(tin))
		theta := math.Abs(geom.Radian(tin.Mul(-1), tout))
		p := v.Add(b.Mul(r / math.Sin(theta/2)))
		return join{entry: p, exit: p}, nil

	default:
		return join{
			entry:  v.Add(nIn.Mul(r)),
			exit:   v.Add(nOut.Mul(r)),
			fillet: true,
			sweep:  cross > 0,
		}, nil
	}
}

func round(c path.Contour) path.Contour {
	out := c.Clone()
	for i := range out {
		out[i].End = geom.RoundPoint(out[i].End)
		if out[i].Kind == path.Arc {
			out[i].RX = geom.Round6(out[i].RX)
			out[i].RY = geom.Round6(out[i].RY)
		}
	}
	return out
}
