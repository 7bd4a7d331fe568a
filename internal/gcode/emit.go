package gcode

import (
	"errors"
	"fmt"
	"math"

	"svgcam/internal/geom"
	"svgcam/internal/path"
)

var (
	// ErrUnsupportedCurve matches every *UnsupportedCurveError.
	ErrUnsupportedCurve = errors.New("gcode: unsupported curve")
	ErrEmptyContour     = errors.New("gcode: empty contour")
)

// UnsupportedCurveError reports a segment the cutting moves cannot follow.
type UnsupportedCurveError struct {
	Index int
	Kind  path.Kind
}

func (e *UnsupportedCurveError) Error() string {
	return fmt.Sprintf("gcode: cannot cut %s segment at index %d", e.Kind, e.Index)
}

func (e *UnsupportedCurveError) Is(target error) bool {
	return target == ErrUnsupportedCurve
}

// Params are the machining settings for one contour. Depths are relative to
// StockSurface and negative into the stock; ClearancePlane is absolute.
type Params struct {
	TargetDepth    float64
	DepthIncrement float64
	StockSurface   float64
	ClearancePlane float64
	CutFeedrate    float64
	PlungeFeedrate float64
	// TabHeight is how far above the target depth TabUp segments stay.
	TabHeight float64
}

// Stats summarizes what an emission produced.
type Stats struct {
	Layers int
	Moves  int
}

// DepthSteps returns the layer depths from the first increment down to
// target. The last layer is clamped to target exactly. Both arguments are
// taken as depths below the surface whatever their sign.
func DepthSteps(target, increment float64) []float64 {
	target = -math.Abs(target)
	increment = -math.Abs(increment)
	if increment == 0 {
		return []float64{target}
	}

	var steps []float64
	for k := 1; ; k++ {
		z := geom.Round6(float64(k) * increment)
		if z < target {
			z = target
		}
		steps = append(steps, z)
		if z <= target {
			return steps
		}
	}
}

type move struct {
	kind      path.Kind
	end       geom.Point
	center    geom.Point // arc centre relative to the move's start
	clockwise bool
}

// Emit cuts the closed contour c layer by layer, starting from the vertex
// nearest pos, and returns the parked head position: above the start
// vertex. Nothing is written when an error is returned.
func Emit(w *Writer, c path.Contour, pos geom.Point, p Params) (geom.Point, Stats, error) {
	if len(c) == 0 {
		return pos, Stats{}, ErrEmptyContour
	}
	if c[0].Kind != path.Move {
		s := c.Start()
		c = append(path.Contour{path.MoveTo(s.X(), s.Y())}, c...)
	}
	c = c.Close()
	if len(c) < 2 {
		return pos, Stats{}, ErrEmptyContour
	}

	start, err := startIndex(c, pos)
	if err != nil {
		return pos, Stats{}, err
	}
	moves, err := plan(c, start)
	if err != nil {
		return pos, Stats{}, err
	}

	origin := c[start].End
	clear := p.ClearancePlane
	target := -math.Abs(p.TargetDepth)
	tabTop := target + p.TabHeight

	w.Rapid(pos, clear)
	w.Rapid(origin, clear)

	var stats Stats
	for _, depth := range DepthSteps(target, p.DepthIncrement) {
		z := p.StockSurface + depth
		w.Feed(origin, z, p.PlungeFeedrate)
		for _, m := range moves {
			switch m.kind {
			case path.Line, path.TabDown:
				w.Feed(m.end, z, p.CutFeedrate)
			case path.TabUp:
				w.Feed(m.end, p.StockSurface+math.Max(depth, tabTop), p.CutFeedrate)
			case path.Arc:
				w.Arc(m.clockwise, m.end, m.center, p.CutFeedrate)
			}
		}
		stats.Layers++
		stats.Moves += len(moves)
	}

	w.Rapid(origin, clear)
	return origin, stats, nil
}

// startIndex picks the segment whose end point is nearest pos. Tab markers
// are synthetic and never chosen. Index 0 stands for the closing vertex.
func startIndex(c path.Contour, pos geom.Point) (int, error) {
	best, bestDist := -1, math.Inf(1)
	for i, s := range c {
		if s.Kind == path.TabUp || s.Kind == path.TabDown {
			continue
		}
		if d := geom.Distance(s.End, pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return 0, ErrEmptyContour
	}
	k := c[best].Kind
	if k == path.Line || k == path.Arc || (k == path.Move && best == 0) {
		return best, nil
	}
	return 0, &UnsupportedCurveError{Index: best, Kind: k}
}

// plan lists the moves of one loop around c beginning after segment start.
func plan(c path.Contour, start int) ([]move, error) {
	n := len(c) - 1 // segments after the leading Move
	moves := make([]move, 0, n)
	for step := 1; step <= n; step++ {
		i := (start+step-1)%n + 1
		s := c[i]
		from := c[i-1].End
		switch s.Kind {
		case path.Line, path.TabUp, path.TabDown:
			moves = append(moves, move{kind: s.Kind, end: s.End})
		case path.Arc:
			circle, err := s.Circle(from)
			if err != nil {
				return nil, err
			}
			moves = append(moves, move{
				kind:      path.Arc,
				end:       s.End,
				center:    circle.Center.Sub(from),
				clockwise: circle.Clockwise,
			})
		default:
			return nil, &UnsupportedCurveError{Index: i, Kind: s.Kind}
		}
	}
	return moves, nil
}
