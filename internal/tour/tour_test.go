package tour

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svgcam/internal/geom"
	"svgcam/internal/path"
)

func square(x, y, size float64) path.Contour {
	c, err := path.Parse(fmt.Sprintf("M %g %g L %g %g L %g %g L %g %g L %g %g",
		x, y, x+size, y, x+size, y+size, x, y+size, x, y))
	if err != nil {
		panic(err)
	}
	return c
}

func TestPlanNearestFirst(t *testing.T) {
	contours := []path.Contour{
		square(200, 0, 10),
		square(100, 0, 10),
		square(0, 0, 10),
	}
	order := Plan(contours, geom.Pt(0, 0))
	assert.Equal(t, []int{2, 1, 0}, order)
}

func TestPlanUsesVertexNearestPreviousPosition(t *testing.T) {
	// after the long bar the head sits at its left end, so the square on
	// the left beats the one beyond the bar's right end
	bar, err := path.Parse("M 0 0 L 500 0 L 500 1 L 0 1 L 0 0")
	require.NoError(t, err)
	contours := []path.Contour{
		square(520, 0, 10),
		bar,
		square(-40, 0, 10),
	}
	order := Plan(contours, geom.Pt(-1, 0))
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestPlanTiesPreferEarliest(t *testing.T) {
	contours := []path.Contour{
		square(10, 0, 5),
		square(-15, 0, 5),
	}
	// both squares have a vertex exactly 10 away from the origin
	assert.Equal(t, []int{0, 1}, Plan(contours, geom.Pt(0, 0)))
}

func TestPlanIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 30; n++ {
		contours := make([]path.Contour, n)
		for i := range contours {
			contours[i] = square(rng.Float64()*1000, rng.Float64()*1000, 1+rng.Float64()*50)
		}
		if n > 3 {
			contours[2] = path.Contour{}
		}

		order := Plan(contours, geom.Pt(rng.Float64()*100, rng.Float64()*100))
		require.Len(t, order, n)
		sorted := append([]int(nil), order...)
		sort.Ints(sorted)
		for i, v := range sorted {
			assert.Equal(t, i, v)
		}
	}
}

func TestTravelDistance(t *testing.T) {
	contours := []path.Contour{
		square(100, 0, 10),
		square(0, 0, 10),
	}
	order := Plan(contours, geom.Pt(0, -10))
	assert.Equal(t, []int{1, 0}, order)
	// 10 to reach (0,0), then from (0,0) to (100,0)
	assert.InDelta(t, 110, TravelDistance(contours, order, geom.Pt(0, -10)), 1e-9)
}
