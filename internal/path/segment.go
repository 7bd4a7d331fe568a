// Package path models outlines as typed curve segments: parsing SVG path
// data, serializing it back, and the length and nearest-point queries the
// planners rely on.
package path

import (
	"fmt"
	"strconv"
	"strings"

	"svgcam/internal/geom"
)

// Kind discriminates the segment variants.
type Kind int

const (
	Move Kind = iota
	Line
	Arc
	TabUp
	TabDown
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Line:
		return "line"
	case Arc:
		return "arc"
	case TabUp:
		return "tab-up"
	case TabDown:
		return "tab-down"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Segment is one curve element. It starts at the end point of the previous
// segment in its contour. Arc fields are only meaningful for Arc segments.
type Segment struct {
	Kind     Kind
	End      geom.Point
	RX, RY   float64
	Rotation float64 // degrees
	LargeArc bool
	Sweep    bool
}

func MoveTo(x, y float64) Segment {
	return Segment{Kind: Move, End: geom.Pt(x, y)}
}

func LineTo(x, y float64) Segment {
	return Segment{Kind: Line, End: geom.Pt(x, y)}
}

func ArcTo(rx, ry, rotation float64, largeArc, sweep bool, x, y float64) Segment {
	return Segment{
		Kind:     Arc,
		End:      geom.Pt(x, y),
		RX:       rx,
		RY:       ry,
		Rotation: rotation,
		LargeArc: largeArc,
		Sweep:    sweep,
	}
}

// Circle returns the centre form of an arc segment starting at from.
func (s Segment) Circle(from geom.Point) (geom.Circle, error) {
	return geom.ArcToCircle(from, s.RX, s.RY, s.Rotation, s.LargeArc, s.Sweep, s.End)
}

// String formats the segment as SVG path data. Tab markers are written as
// lines so the output stays valid path data.
func (s Segment) String() string {
	x, y := formatFloat(s.End.X()), formatFloat(s.End.Y())
	switch s.Kind {
	case Move:
		return "M " + x + " " + y
	case Line, TabUp, TabDown:
		return "L " + x + " " + y
	case Arc:
		return strings.Join([]string{
			"A", formatFloat(s.RX), formatFloat(s.RY), formatFloat(s.Rotation),
			formatFlag(s.LargeArc), formatFlag(s.Sweep), x, y,
		}, " ")
	default:
		return fmt.Sprintf("? %s %s", x, y)
	}
}

// Contour is an ordered segment sequence, normally opened by a Move.
type Contour []Segment

func (c Contour) String() string {
	parts := make([]string, len(c))
	for i, s := range c {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

func (c Contour) Clone() Contour {
	if c == nil {
		return nil
	}
	out := make(Contour, len(c))
	copy(out, c)
	return out
}

// Translate returns a copy shifted by d.
func (c Contour) Translate(d geom.Point) Contour {
	out := c.Clone()
	for i := range out {
		out[i].End = out[i].End.Add(d)
	}
	return out
}

// Start returns the position the contour starts from: the leading Move,
// or the last end point for a closed loop without one.
func (c Contour) Start() geom.Point {
	if len(c) == 0 {
		return geom.Point{}
	}
	if c[0].Kind == Move {
		return c[0].End
	}
	return c[len(c)-1].End
}

// Closed reports whether the last end point returns to the start.
func (c Contour) Closed() bool {
	return len(c) > 1 && geom.AlmostEqual(c[len(c)-1].End, c.Start())
}

// Close returns a copy with a closing line appended when the contour does
// not already return to its leading Move.
func (c Contour) Close() Contour {
	out := c.Clone()
	if len(out) > 1 && !out.Closed() {
		start := out.Start()
		out = append(out, LineTo(start.X(), start.Y()))
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
