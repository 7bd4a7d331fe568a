// Package svgfile extracts cuttable outlines from SVG documents.
//
// Only the structure the geometry engine needs is read: path data, the
// stroke colour (own or inherited from enclosing groups) and translate()
// offsets accumulated through groups. Polylines and polygons are turned
// into equivalent path data.
package svgfile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"svgcam/internal/geom"
)

func logger() *slog.Logger {
	return slog.Default().With("component", "svgfile")
}

// Path is one outline found in the document.
type Path struct {
	ID string
	D  string
	// Stroke is the normalized stroke colour, "" when none is set.
	Stroke string
	// Translate is the sum of the translate() transforms applying to the
	// element. D is left untranslated.
	Translate geom.Point
}

type svgShape struct {
	ID        string `xml:"id,attr"`
	D         string `xml:"d,attr"`
	Points    string `xml:"points,attr"`
	Stroke    string `xml:"stroke,attr"`
	Style     string `xml:"style,attr"`
	Transform string `xml:"transform,attr"`
}

type group struct {
	stroke    string
	translate geom.Point
}

// Read walks the document and returns its outlines in document order.
func Read(r io.Reader) ([]Path, error) {
	dec := xml.NewDecoder(r)
	stack := []group{{}}
	var out []Path

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("svgfile: decode token: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := stack[len(stack)-1]
			switch t.Name.Local {
			case "g":
				var stroke, style, transform string
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "stroke":
						stroke = a.Value
					case "style":
						style = a.Value
					case "transform":
						transform = a.Value
					}
				}
				g := group{
					stroke:    extractStrokeColor(stroke, style),
					translate: parent.translate.Add(parseTranslate(transform)),
				}
				if g.stroke == "" {
					g.stroke = parent.stroke
				}
				stack = append(stack, g)

			case "path", "polyline", "polygon":
				var raw svgShape
				if err := dec.DecodeElement(&raw, &t); err != nil {
					return nil, fmt.Errorf("svgfile: decode <%s>: %w", t.Name.Local, err)
				}
				d, err := shapeData(t.Name.Local, raw)
				if err != nil {
					return nil, fmt.Errorf("svgfile: %s %q: %w", t.Name.Local, raw.ID, err)
				}
				if d == "" {
					continue
				}
				stroke := extractStrokeColor(raw.Stroke, raw.Style)
				if stroke == "" {
					stroke = parent.stroke
				}
				out = append(out, Path{
					ID:        raw.ID,
					D:         d,
					Stroke:    stroke,
					Translate: parent.translate.Add(parseTranslate(raw.Transform)),
				})
			}

		case xml.EndElement:
			if t.Name.Local == "g" && len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return out, nil
}

// shapeData returns the path data of a shape element.
func shapeData(kind string, raw svgShape) (string, error) {
	if kind == "path" {
		return strings.TrimSpace(raw.D), nil
	}
	pts, err := parsePointsList(raw.Points)
	if err != nil || len(pts) == 0 {
		return "", err
	}

	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatFloat(p.X()))
		b.WriteByte(' ')
		b.WriteString(formatFloat(p.Y()))
	}
	if kind == "polygon" && len(pts) > 1 {
		b.WriteString(" Z")
	}
	return b.String(), nil
}

func parsePointsList(s string) ([]geom.Point, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields)%2 != 0 {
		return nil, errors.New("odd number of coordinates in points list")
	}

	pts := make([]geom.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err1 := strconv.ParseFloat(fields[i], 64)
		y, err2 := strconv.ParseFloat(fields[i+1], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid coordinate pair %q,%q", fields[i], fields[i+1])
		}
		pts = append(pts, geom.Pt(x, y))
	}
	return pts, nil
}

// parseTranslate sums the translate() calls of a transform attribute. Any
// other transform function makes the whole attribute ignored.
func parseTranslate(s string) geom.Point {
	s = strings.TrimSpace(s)
	var sum geom.Point
	for s != "" {
		open := strings.IndexByte(s, '(')
		end := strings.IndexByte(s, ')')
		if open < 0 || end < open {
			logger().Warn("Ignoring malformed transform", "transform", s)
			return geom.Point{}
		}
		name := strings.TrimSpace(s[:open])
		if name != "translate" {
			logger().Warn("Ignoring unsupported transform", "function", name)
			return geom.Point{}
		}

		args := strings.Fields(strings.ReplaceAll(s[open+1:end], ",", " "))
		var tx, ty float64
		var err error
		if len(args) >= 1 {
			tx, err = strconv.ParseFloat(args[0], 64)
		}
		if err == nil && len(args) >= 2 {
			ty, err = strconv.ParseFloat(args[1], 64)
		}
		if err != nil || len(args) == 0 || len(args) > 2 {
			logger().Warn("Ignoring malformed translate", "args", s[open+1:end])
			return geom.Point{}
		}
		sum = sum.Add(geom.Pt(tx, ty))
		s = strings.TrimLeft(s[end+1:], " ,\t\n")
	}
	return sum
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
