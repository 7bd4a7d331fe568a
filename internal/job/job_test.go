package job

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svgcam/internal/gcode"
	"svgcam/internal/geom"
	"svgcam/internal/metrics"
	"svgcam/internal/path"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

const square = "M 0 0 L 100 0 L 100 100 L 0 100 L 0 0"

func squareAt(x, y float64) string {
	return path.Contour{
		path.MoveTo(x, y),
		path.LineTo(x+10, y),
		path.LineTo(x+10, y+10),
		path.LineTo(x, y+10),
		path.LineTo(x, y),
	}.String()
}

func testProps() Properties {
	p := DefaultProperties()
	p.TargetDepth = -2
	p.DepthIncrement = -1
	p.ClearancePlane = 20
	p.HoldingTabsNumber = 0
	return p
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// ----

func TestCalculateSquare(t *testing.T) {
	j := New()
	require.NoError(t, j.AddOperation(ProfileInside, square, WithProperties(testProps())))

	program, err := j.Calculate()
	require.NoError(t, err)

	diff(t, []string{
		"G90",
		"G0 X0 Y0 Z20",
		"G0 X0 Y0 Z20",
		"G1 X0 Y0 Z-1",
		"G1 X100 Y0 Z-1",
		"G1 X100 Y100 Z-1",
		"G1 X0 Y100 Z-1",
		"G1 X0 Y0 Z-1",
		"G1 X0 Y0 Z-2",
		"G1 X100 Y0 Z-2",
		"G1 X100 Y100 Z-2",
		"G1 X0 Y100 Z-2",
		"G1 X0 Y0 Z-2",
		"G0 X0 Y0 Z20",
	}, lines(program))
	assert.Equal(t, program, j.Program())
	assert.Equal(t, []int{0}, j.Order())
	assert.Equal(t, geom.Pt(0, 0), j.Position())
}

func TestCalculateOrdersNearestFirst(t *testing.T) {
	j := New(WithWorkers(2))
	require.NoError(t, j.AddOperation(PocketInside, squareAt(200, 200), WithProperties(testProps())))
	require.NoError(t, j.AddOperation(PocketInside, squareAt(0, 0), WithProperties(testProps())))
	require.NoError(t, j.AddOperation(PocketInside, squareAt(100, 100), WithProperties(testProps())))

	_, err := j.Calculate()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, j.Order())
	assert.Equal(t, geom.Pt(200, 200), j.Position())
}

func TestCalculateFromStartPosition(t *testing.T) {
	j := New(WithStart(geom.Pt(205, 205)))
	require.NoError(t, j.AddOperation(PocketInside, squareAt(0, 0), WithProperties(testProps())))
	require.NoError(t, j.AddOperation(PocketInside, squareAt(200, 200), WithProperties(testProps())))

	program, err := j.Calculate()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, j.Order())
	assert.True(t, strings.HasPrefix(program, "G90\nG0 X205 Y205 Z20\n"))
}

func TestCalculateIsDeterministicAcrossWorkerCounts(t *testing.T) {
	run := func(workers int) string {
		j := New(WithWorkers(workers))
		for i := 0; i < 6; i++ {
			props := testProps()
			props.HoldingTabsNumber = 2
			props.HoldingTabsWidth = 2
			kind := ProfileOutside
			if i%2 == 1 {
				kind = PocketOutside
			}
			require.NoError(t, j.AddOperation(kind, squareAt(float64(i*37%100), float64(i*53%100)), WithProperties(props)))
		}
		program, err := j.Calculate()
		require.NoError(t, err)
		return program
	}
	assert.Equal(t, run(1), run(8))
}

// ----

func TestCalculateSkipsMalformedOperation(t *testing.T) {
	j := New()
	require.NoError(t, j.AddOperation(ProfileInside, square, WithProperties(testProps())))
	require.NoError(t, j.AddOperation(PocketInside, "M 0 0 C 1 1 2 2 3 3", WithProperties(testProps())))

	program, err := j.Calculate()
	require.Error(t, err)
	assert.ErrorIs(t, err, path.ErrParse)

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, 1, opErr.Index)
	assert.Equal(t, PocketInside, opErr.Kind)

	assert.Contains(t, program, "G1 X100 Y100 Z-2")
	assert.Equal(t, []int{0}, j.Order())
	assert.Len(t, j.Operations(), 1)
}

func TestCalculateEmissionFailureLeavesNoOutput(t *testing.T) {
	j := New()
	twoParts := "M 0 0 L 10 0 L 10 10 L 0 0 M 50 50 L 60 50 L 60 60 L 50 50"
	require.NoError(t, j.AddOperation(PocketInside, twoParts, WithProperties(testProps())))

	program, err := j.Calculate()
	assert.ErrorIs(t, err, gcode.ErrUnsupportedCurve)
	assert.Equal(t, "G90\n", program)
	assert.Equal(t, geom.Pt(0, 0), j.Position())
}

func TestCalculateErrorsSortedByIndex(t *testing.T) {
	j := New()
	require.NoError(t, j.AddOperation(PocketInside, "M 0 0 L 10 0 L 10 10 L 0 0 M 5 5 L 6 6 L 5 5", WithProperties(testProps())))
	require.NoError(t, j.AddOperation(PocketInside, "L 1 1", WithProperties(testProps())))

	_, err := j.Calculate()
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	errs := joined.Unwrap()
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], gcode.ErrUnsupportedCurve)
	assert.ErrorIs(t, errs[1], path.ErrParse)
}

// ----

func TestProfileGetsTabs(t *testing.T) {
	props := testProps()
	props.DepthIncrement = -2
	props.HoldingTabsNumber = 3
	props.HoldingTabsWidth = 10
	props.HoldingTabsHeight = 1

	j := New()
	require.NoError(t, j.AddOperation(ProfileInside, square, WithProperties(props)))
	program, err := j.Calculate()
	require.NoError(t, err)

	ls := lines(program)
	assert.Contains(t, ls, "G1 X50 Y0 Z-1")
	assert.Contains(t, ls, "G1 X55 Y0 Z-2")
	assert.Contains(t, ls, "G1 X100 Y20 Z-1")
	assert.Contains(t, ls, "G1 X80 Y100 Z-1")
}

func TestPocketHasNoTabs(t *testing.T) {
	props := testProps()
	props.HoldingTabsNumber = 3

	j := New()
	require.NoError(t, j.AddOperation(PocketInside, square, WithProperties(props)))
	program, err := j.Calculate()
	require.NoError(t, err)
	assert.NotContains(t, program, "X50 ")
	assert.Len(t, lines(program), 14)
}

func TestToolCompensation(t *testing.T) {
	props := testProps()
	props.DepthIncrement = -2
	props.ToolCompensation = true
	props.DrillRadius = 5

	j := New()
	require.NoError(t, j.AddOperation(ProfileOutside, square, WithProperties(props)))
	program, err := j.Calculate()
	require.NoError(t, err)

	ls := lines(program)
	assert.Contains(t, ls, "G0 X0 Y-5 Z20")
	assert.Contains(t, ls, "G1 X100 Y-5 Z-2")
	assert.Contains(t, ls, "G2 X105 Y0 I0 J5")
	assert.Equal(t, geom.Pt(0, -5), j.Position())
}

func TestToolCompensationFailure(t *testing.T) {
	props := testProps()
	props.ToolCompensation = true

	j := New()
	require.NoError(t, j.AddOperation(ProfileOutside, "M 0 0 L 10 0 L 0 0", WithProperties(props)))
	_, err := j.Calculate()
	assert.ErrorIs(t, err, geom.ErrGeometry)
	assert.Empty(t, j.Order())
}

func TestEngravingPlaceholder(t *testing.T) {
	j := New()
	require.NoError(t, j.AddOperation(Engraving, square, WithProperties(testProps())))

	program, err := j.Calculate()
	require.NoError(t, err)
	assert.Equal(t, "G90\n", program)
	assert.Equal(t, geom.Pt(1, 1), j.Position())
	assert.Equal(t, []int{0}, j.Order())
}

func TestPriorityIsIgnored(t *testing.T) {
	build := func() *Job {
		j := New()
		require.NoError(t, j.AddOperation(PocketInside, squareAt(100, 100), WithProperties(testProps())))
		require.NoError(t, j.AddOperation(ProfileInside, squareAt(0, 0), WithProperties(testProps())))
		return j
	}
	a, b := build(), build()
	pa, err := a.Calculate()
	require.NoError(t, err)
	pb, err := b.Calculate(PocketInside, ProfileInside)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
	assert.Equal(t, []int{1, 0}, b.Order())
}

// ----

func TestLifecycle(t *testing.T) {
	j := New()
	require.NoError(t, j.AddOperation(ProfileInside, square, WithProperties(testProps())))
	assert.Equal(t, 1, j.Len())

	_, err := j.Calculate()
	require.NoError(t, err)

	assert.ErrorIs(t, j.AddOperation(ProfileInside, square, WithProperties(testProps())), ErrCalculated)
	_, err = j.Calculate()
	assert.ErrorIs(t, err, ErrCalculated)
	assert.Equal(t, 1, j.Len())
}

func TestAddOperationDefaults(t *testing.T) {
	j := New()
	require.NoError(t, j.AddOperation(ProfileOutside, square, WithTargetDepth(-2), WithDepthIncrement(-1)))
	program, err := j.Calculate()
	require.NoError(t, err)

	ls := lines(program)
	assert.Equal(t, "G0 X0 Y0 Z20", ls[1], "clearance plane defaults to 20")
	assert.Equal(t, "G0 X0 Y0 Z20", ls[2])
	assert.Equal(t, "G0 X0 Y0 Z20", ls[len(ls)-1])

	props := j.Operations()[0].Properties
	assert.Equal(t, 8.0, props.DrillRadius)
	assert.Equal(t, 10.0, props.HoldingTabsWidth)
	assert.Equal(t, 3, props.HoldingTabsNumber)
	assert.Equal(t, -2.0, props.TargetDepth)
}

func TestAddOperationExplicitZeros(t *testing.T) {
	j := New()
	require.NoError(t, j.AddOperation(ProfileInside, square,
		WithTargetDepth(-2), WithDepthIncrement(-1), WithClearancePlane(0), WithHoldingTabs(0, 10, 10)))
	program, err := j.Calculate()
	require.NoError(t, err)

	ls := lines(program)
	assert.Len(t, ls, 14, "no tabs")
	assert.Equal(t, "G0 X0 Y0 Z0", ls[1])
	assert.Equal(t, "G0 X0 Y0 Z0", ls[len(ls)-1])
}

func TestAddZeroPropertiesUsesDefaults(t *testing.T) {
	j := New()
	require.NoError(t, j.Add(RawOperation{Kind: PocketInside, PathText: square}))
	_, err := j.Calculate()
	require.NoError(t, err)
	assert.Equal(t, DefaultProperties().Normalize(), j.Operations()[0].Properties)
}

func TestAddUnknownKind(t *testing.T) {
	j := New()
	err := j.AddOperation(Kind(42), square)
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, 0, j.Len())
}

func TestCalculateEmptyJob(t *testing.T) {
	program, err := New().Calculate()
	require.NoError(t, err)
	assert.Equal(t, "G90\n", program)
}

func TestMetricsRecorded(t *testing.T) {
	m := metrics.NewCollector()
	j := New(WithMetrics(m))
	props := testProps()
	props.HoldingTabsNumber = 3
	require.NoError(t, j.AddOperation(ProfileInside, square, WithProperties(props)))
	require.NoError(t, j.AddOperation(ProfileInside, "M 0 0 Q 1 1", WithProperties(props)))
	_, err := j.Calculate()
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "svgcam.prom")
	require.NoError(t, m.WriteTextfile(file))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `svgcam_operations_total{kind="profile_inside",status="ok"} 1`)
	assert.Contains(t, text, `svgcam_operations_total{kind="profile_inside",status="failed"} 1`)
	assert.Contains(t, text, "svgcam_layers_total 2\n")
	assert.Contains(t, text, "svgcam_holding_tabs_total 3\n")
	// four edges plus three tab markers and their continuations, per layer
	assert.Contains(t, text, "svgcam_cut_moves_total 26\n")
}
