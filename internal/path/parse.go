package path

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"svgcam/internal/geom"
)

// ErrParse matches every *ParseError.
var ErrParse = errors.New("path: parse error")

// ParseError reports malformed or unsupported path data. Index is the
// zero-based position of the offending command in the path.
type ParseError struct {
	Command string
	Index   int
	Msg     string
}

func (e *ParseError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("path: %s", e.Msg)
	}
	return fmt.Sprintf("path: command %d (%s): %s", e.Index, e.Command, e.Msg)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

type command struct {
	letter byte
	fields []string
}

// arity of the numeric groups per command letter
var arity = map[byte]int{'M': 2, 'L': 2, 'A': 7, 'Z': 0, 'z': 0}

// Parse converts absolute M, L, A and Z path data into a contour. Extra
// coordinate groups repeat the previous command, except that pairs after
// an M become lines. Z closes back to the last Move with a line when the
// contour is not already there.
func Parse(d string) (Contour, error) {
	cmds, err := tokenize(d)
	if err != nil {
		return nil, err
	}
	if len(cmds) == 0 {
		return nil, &ParseError{Msg: "empty path"}
	}
	if cmds[0].letter != 'M' {
		return nil, &ParseError{Command: string(cmds[0].letter), Index: 0, Msg: "path must start with M"}
	}

	var (
		out   Contour
		start geom.Point
	)
	for i, cmd := range cmds {
		n := arity[cmd.letter]
		perr := func(msg string) error {
			return &ParseError{Command: string(cmd.letter), Index: i, Msg: msg}
		}

		if n == 0 {
			if len(cmd.fields) > 0 {
				return nil, perr("close takes no arguments")
			}
			if !geom.AlmostEqual(out[len(out)-1].End, start) {
				out = append(out, LineTo(start.X(), start.Y()))
			}
			continue
		}
		if len(cmd.fields) == 0 || len(cmd.fields)%n != 0 {
			return nil, perr(fmt.Sprintf("want a multiple of %d numbers, got %d", n, len(cmd.fields)))
		}

		for g := 0; g < len(cmd.fields); g += n {
			group := cmd.fields[g : g+n]
			switch cmd.letter {
			case 'M', 'L':
				v, err := parseNumbers(group)
				if err != nil {
					return nil, perr(err.Error())
				}
				if cmd.letter == 'M' && g == 0 {
					out = append(out, MoveTo(v[0], v[1]))
					start = geom.Pt(v[0], v[1])
				} else {
					out = append(out, LineTo(v[0], v[1]))
				}
			case 'A':
				large, err1 := parseFlag(group[3])
				sweep, err2 := parseFlag(group[4])
				if err := errors.Join(err1, err2); err != nil {
					return nil, perr(err.Error())
				}
				v, err := parseNumbers([]string{group[0], group[1], group[2], group[5], group[6]})
				if err != nil {
					return nil, perr(err.Error())
				}
				out = append(out, ArcTo(v[0], v[1], v[2], large, sweep, v[3], v[4]))
			}
		}
	}
	return out, nil
}

// tokenize splits path data into commands with their raw numeric fields.
// Commas and whitespace separate fields, and a minus sign directly after a
// digit starts a new field.
func tokenize(d string) ([]command, error) {
	var (
		cmds []command
		b    strings.Builder
		prev rune
	)
	flush := func() error {
		fields := strings.Fields(b.String())
		b.Reset()
		if len(fields) == 0 {
			return nil
		}
		if len(cmds) == 0 {
			return &ParseError{Msg: fmt.Sprintf("path must start with M, found %q", fields[0])}
		}
		cmds[len(cmds)-1].fields = append(cmds[len(cmds)-1].fields, fields...)
		return nil
	}

	for _, r := range d {
		switch {
		case r == 'M' || r == 'L' || r == 'A' || r == 'Z' || r == 'z':
			if err := flush(); err != nil {
				return nil, err
			}
			cmds = append(cmds, command{letter: byte(r)})
		case r == 'e' || r == 'E':
			b.WriteRune(r)
		case unicode.IsLetter(r):
			return nil, &ParseError{Command: string(r), Index: len(cmds), Msg: "unsupported command"}
		case r == ',':
			b.WriteRune(' ')
		case r == '-' && (unicode.IsDigit(prev) || prev == '.'):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cmds, nil
}

func parseNumbers(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func parseFlag(f string) (bool, error) {
	switch f {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid arc flag %q", f)
	}
}
