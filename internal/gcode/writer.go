// Package gcode emits layered cutting programs for closed contours.
package gcode

import (
	"strconv"
	"strings"

	"svgcam/internal/geom"
)

// Writer accumulates program text, one command per line.
type Writer struct {
	b strings.Builder
}

func NewWriter() *Writer {
	return &Writer{}
}

// Absolute selects absolute positioning (G90).
func (w *Writer) Absolute() {
	w.line("G90")
}

// Rapid writes a non-cutting G0 move.
func (w *Writer) Rapid(p geom.Point, z float64) {
	w.line("G0 X" + num(p.X()) + " Y" + num(p.Y()) + " Z" + num(z))
}

// Feed writes a G1 cutting move. A positive feed rate is appended as F.
func (w *Writer) Feed(p geom.Point, z, feed float64) {
	w.line("G1 X" + num(p.X()) + " Y" + num(p.Y()) + " Z" + num(z) + feedWord(feed))
}

// Arc writes a G2 (clockwise) or G3 move to p; offset is the centre
// relative to the arc's start.
func (w *Writer) Arc(clockwise bool, p, offset geom.Point, feed float64) {
	cmd := "G3"
	if clockwise {
		cmd = "G2"
	}
	w.line(cmd + " X" + num(p.X()) + " Y" + num(p.Y()) + " I" + num(offset.X()) + " J" + num(offset.Y()) + feedWord(feed))
}

// Append copies the program text of o to the end of w.
func (w *Writer) Append(o *Writer) {
	w.b.WriteString(o.b.String())
}

func (w *Writer) String() string {
	return w.b.String()
}

func (w *Writer) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func num(v float64) string {
	return strconv.FormatFloat(geom.Round6(v), 'f', -1, 64)
}

func feedWord(f float64) string {
	if f <= 0 {
		return ""
	}
	return " F" + num(f)
}
