// Package tour orders contours so the head travels as little as possible
// between cuts.
package tour

import (
	"math"

	"svgcam/internal/geom"
	"svgcam/internal/path"
)

// Plan returns a visiting order over contours using the greedy nearest
// neighbour rule, starting from the head position start. Every index
// appears exactly once. Ties resolve to the earliest contour.
func Plan(contours []path.Contour, start geom.Point) []int {
	order := make([]int, 0, len(contours))
	visited := make([]bool, len(contours))
	pos := start

	for len(order) < len(contours) {
		next, best := -1, math.Inf(1)
		for i, c := range contours {
			if visited[i] {
				continue
			}
			// empty contours are +Inf away; still pick one so the order stays complete
			if d := path.MinDistance(c, pos); next < 0 || d < best {
				next, best = i, d
			}
		}

		visited[next] = true
		order = append(order, next)

		// the cut starts at the vertex nearest where the head was
		if idx := path.ClosestSegmentIndex(contours[next], pos); idx >= 0 {
			pos = contours[next][idx].End
		}
	}
	return order
}

// TravelDistance sums the rapid moves an order implies: from each working
// position to the nearest vertex of the next contour.
func TravelDistance(contours []path.Contour, order []int, start geom.Point) float64 {
	pos := start
	total := 0.0
	for _, i := range order {
		idx := path.ClosestSegmentIndex(contours[i], pos)
		if idx < 0 {
			continue
		}
		total += path.MinDistance(contours[i], pos)
		pos = contours[i][idx].End
	}
	return total
}
