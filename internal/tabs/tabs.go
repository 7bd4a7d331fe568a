// Package tabs inserts holding tabs into closed profile contours: short
// stretches where the cutter lifts so the part stays attached to the stock.
package tabs

import (
	"math"

	"svgcam/internal/geom"
	"svgcam/internal/path"
)

// MinSegmentLength is the shortest segment that can carry a tab.
const MinSegmentLength = 30

// Options configures tab insertion.
type Options struct {
	Count  int
	Width  float64
	Height float64
}

// Insert returns a copy of c with up to opts.Count tabs spliced in, and the
// number of tabs actually inserted. Targets are spaced L/(N+1)/2 apart
// along the contour; a target that lands on a segment too short for a tab
// moves on to the next segment.
//
// Each tab rewrites one segment into four: the segment shortened to the
// first tab edge, a TabUp at the tab centre, a TabDown at the second edge,
// and a segment of the original kind on to the original end point. The
// result therefore has len(c)+3·n segments, three more per tab inserted
// (not four: the shortened segment replaces the original one).
func Insert(c path.Contour, opts Options) (path.Contour, int, error) {
	if opts.Count <= 0 || len(c) < 2 {
		return c.Clone(), 0, nil
	}

	total, err := path.Length(c)
	if err != nil {
		return nil, 0, err
	}
	spacing := total / float64(opts.Count+1) / 2

	out := make(path.Contour, 0, len(c)+3*opts.Count)
	out = append(out, c[0])

	k, inserted := 1, 0
	traversed := 0.0
	prev := c[0].End
	for _, seg := range c[1:] {
		l, err := path.CurveLength(seg, prev)
		if err != nil {
			return nil, 0, err
		}

		target := float64(k) * spacing
		tabbable := seg.Kind == path.Line || seg.Kind == path.Arc
		if tabbable && k <= opts.Count && traversed+l > target && l > opts.Width && l > MinSegmentLength {
			parts, err := split(seg, prev, (target-traversed)/l, opts.Width)
			if err != nil {
				return nil, 0, err
			}
			out = append(out, parts...)
			inserted++
			k++
		} else {
			out = append(out, seg)
		}

		traversed += l
		prev = seg.End
	}
	return out, inserted, nil
}

func split(seg path.Segment, from geom.Point, ratio, width float64) ([]path.Segment, error) {
	if seg.Kind == path.Arc {
		return splitArc(seg, from, ratio, width)
	}
	return splitLine(seg, from, ratio, width), nil
}

func splitLine(seg path.Segment, from geom.Point, ratio, width float64) []path.Segment {
	ratio = math.Max(0.2, math.Min(0.8, ratio))

	dir, _ := geom.Unit(seg.End.Sub(from))
	center := geom.Lerp(from, seg.End, ratio)
	first := center.Sub(dir.Mul(width / 2))
	second := center.Add(dir.Mul(width / 2))

	head := seg
	head.End = first
	return []path.Segment{
		head,
		{Kind: path.TabUp, End: center},
		{Kind: path.TabDown, End: second},
		seg,
	}
}

func splitArc(seg path.Segment, from geom.Point, ratio, width float64) ([]path.Segment, error) {
	// arcs replace out-of-range ratios with the line bounds but test
	// against wider thresholds
	if ratio > 0.9 {
		ratio = 0.8
	}
	if ratio < 0.1 {
		ratio = 0.2
	}

	c, err := seg.Circle(from)
	if err != nil {
		return nil, err
	}
	sweep := c.Sweep()
	half := width / 2 / c.RX
	if sweep < 0 {
		half = -half
	}

	mid := ratio * sweep
	tCenter := c.StartAngle + mid
	t1, t2 := tCenter-half, tCenter+half

	head := seg
	head.RX, head.RY = c.RX, c.RY
	head.End = c.PointAt(t1)
	head.LargeArc = math.Abs(mid-half) > math.Pi

	tail := seg
	tail.RX, tail.RY = c.RX, c.RY
	tail.LargeArc = math.Abs(sweep-(mid+half)) > math.Pi

	return []path.Segment{
		head,
		{Kind: path.TabUp, End: c.PointAt(tCenter)},
		{Kind: path.TabDown, End: c.PointAt(t2)},
		tail,
	}, nil
}
