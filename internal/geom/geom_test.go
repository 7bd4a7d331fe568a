package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func TestArcToCircleHalfTurn(t *testing.T) {
	c, err := ArcToCircle(Pt(0, 0), 50, 50, 0, false, true, Pt(100, 0))
	require.NoError(t, err)

	assert.InDelta(t, 50, c.Center.X(), tol)
	assert.InDelta(t, 0, c.Center.Y(), tol)
	assert.InDelta(t, math.Pi, c.DeltaAngle, tol)
	assert.InDelta(t, math.Pi, c.StartAngle, tol)
	assert.True(t, c.Clockwise)
	assert.InDelta(t, math.Pi, c.Sweep(), tol)
}

func TestArcToCircleQuarter(t *testing.T) {
	tests := []struct {
		name     string
		large    bool
		sweep    bool
		center   Point
		travel   float64
		clock    bool
		midpoint Point
	}{
		{"small positive", false, true, Pt(0, 10), math.Pi / 2, true, Pt(10*math.Sqrt2/2, 10-10*math.Sqrt2/2)},
		{"small negative", false, false, Pt(10, 0), -math.Pi / 2, false, Pt(10-10*math.Sqrt2/2, 10*math.Sqrt2/2)},
		{"large positive", true, true, Pt(10, 0), 3 * math.Pi / 2, true, Pt(10+10*math.Sqrt2/2, -10*math.Sqrt2/2)},
		{"large negative", true, false, Pt(0, 10), -3 * math.Pi / 2, false, Pt(-10*math.Sqrt2/2, 10+10*math.Sqrt2/2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ArcToCircle(Pt(0, 0), 10, 10, 0, tt.large, tt.sweep, Pt(10, 10))
			require.NoError(t, err)
			assert.InDelta(t, tt.center.X(), c.Center.X(), 1e-6)
			assert.InDelta(t, tt.center.Y(), c.Center.Y(), 1e-6)
			assert.InDelta(t, tt.travel, c.Sweep(), 1e-6)
			assert.Equal(t, tt.clock, c.Clockwise)

			mid := c.PointAt(c.StartAngle + c.Sweep()/2)
			assert.InDelta(t, tt.midpoint.X(), mid.X(), 1e-6)
			assert.InDelta(t, tt.midpoint.Y(), mid.Y(), 1e-6)

			end := c.PointAt(c.StartAngle + c.Sweep())
			assert.InDelta(t, 10, end.X(), 1e-6)
			assert.InDelta(t, 10, end.Y(), 1e-6)
		})
	}
}

func TestArcToCircleScalesRadii(t *testing.T) {
	c, err := ArcToCircle(Pt(0, 0), 10, 10, 0, false, true, Pt(100, 0))
	require.NoError(t, err)
	assert.InDelta(t, 50, c.RX, 1e-9)
	assert.InDelta(t, 50, c.RY, 1e-9)
	assert.InDelta(t, 50, c.Center.X(), 1e-9)
}

func TestArcToCircleRotated(t *testing.T) {
	c, err := ArcToCircle(Pt(0, 0), 20, 10, 90, false, true, Pt(0, 40))
	require.NoError(t, err)
	assert.InDelta(t, 0, c.Center.X(), 1e-9)
	assert.InDelta(t, 20, c.Center.Y(), 1e-9)
	assert.InDelta(t, math.Pi/2, c.Rotation, 1e-12)

	end := c.PointAt(c.StartAngle + c.Sweep())
	assert.InDelta(t, 0, end.X(), 1e-9)
	assert.InDelta(t, 40, end.Y(), 1e-9)
}

func TestArcToCircleErrors(t *testing.T) {
	_, err := ArcToCircle(Pt(0, 0), 0, 10, 0, false, true, Pt(10, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGeometry))

	_, err = ArcToCircle(Pt(5, 5), 10, 10, 0, false, true, Pt(5, 5))
	var gerr *GeometryError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "arc", gerr.Op)
}

func TestArcToCircleNegativeRadii(t *testing.T) {
	a, err := ArcToCircle(Pt(0, 0), -50, -50, 0, false, true, Pt(100, 0))
	require.NoError(t, err)
	b, err := ArcToCircle(Pt(0, 0), 50, 50, 0, false, true, Pt(100, 0))
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestCircleTangentAndAngle(t *testing.T) {
	c, err := ArcToCircle(Pt(0, 0), 50, 50, 0, false, true, Pt(100, 0))
	require.NoError(t, err)

	// starting at angle π and increasing: heading towards -y
	tan := c.Tangent(c.StartAngle)
	assert.InDelta(t, 0, tan.X(), 1e-9)
	assert.InDelta(t, -1, tan.Y(), 1e-9)

	assert.InDelta(t, math.Pi, math.Abs(c.AngleOf(Pt(0, 0))), 1e-9)
	assert.InDelta(t, -math.Pi/2, c.AngleOf(Pt(50, -50)), 1e-9)
}

func TestRadian(t *testing.T) {
	assert.InDelta(t, math.Pi/2, Radian(Pt(1, 0), Pt(0, 1)), tol)
	assert.InDelta(t, -math.Pi/2, Radian(Pt(1, 0), Pt(0, -1)), tol)
	assert.InDelta(t, math.Pi, Radian(Pt(1, 0), Pt(-3, 0)), tol)
	assert.InDelta(t, 0, Radian(Pt(2, 2), Pt(5, 5)), 1e-7)
	assert.Equal(t, 0.0, Radian(Pt(0, 0), Pt(1, 0)))
}

func TestGuessAngle(t *testing.T) {
	for _, a := range []float64{-3, -1.5, -0.2, 0, 0.7, 2.5} {
		assert.InDelta(t, a, GuessAngle(math.Sin(a), math.Cos(a)), 1e-9, "angle %v", a)
	}
	// out of range inputs are clamped
	assert.InDelta(t, 0, GuessAngle(0, 1.0000001), tol)
}

func TestRound6(t *testing.T) {
	assert.Equal(t, 1.234568, Round6(1.2345678))
	assert.Equal(t, -2.5, Round6(-2.5000001))
	assert.False(t, math.Signbit(Round6(-1e-9)))
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, math.Pi, NormalizeAngle(-math.Pi), tol)
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), tol)
	assert.InDelta(t, math.Pi/2, NormalizeAngle(4.5*math.Pi), 1e-9)
}
