package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// Resample places n points along the polyline formed by a flat x,y list, evenly spaced by arc length.
// The first output point is the first input point; the last sits one step short of the line's end.
// A single point is treated as a zero-length line.
func Resample(points []float64, n int) []float64 {
	if len(points) < 2 || n <= 0 {
		return nil
	}
	if len(points) < 4 {
		points = []float64{points[0], points[1], points[0], points[1]}
	}

	// cumulative length at each vertex
	vertices := len(points) / 2
	lengths := make([]float64, vertices)
	for i := 1; i < vertices; i++ {
		dx := points[2*i] - points[2*i-2]
		dy := points[2*i+1] - points[2*i-1]
		lengths[i] = lengths[i-1] + math.Hypot(dx, dy)
	}
	total := lengths[vertices-1]

	out := make([]float64, 0, 2*n)
	seg := 1
	for k := 0; k < n; k++ {
		target := total * float64(k) / float64(n)
		for seg < vertices-1 && lengths[seg] < target {
			seg++
		}
		segLen := lengths[seg] - lengths[seg-1]
		t := 0.0
		if segLen > 0 {
			t = (target - lengths[seg-1]) / segLen
		}
		x0, y0 := points[2*seg-2], points[2*seg-1]
		x1, y1 := points[2*seg], points[2*seg+1]
		out = append(out, x0+(x1-x0)*t, y0+(y1-y0)*t)
	}
	return out
}

// Simplify drops vertices of a polyline that lie within tolerance of the line through their neighbours
// (Douglas-Peucker). Lines of one or two points come back unchanged.
func Simplify(points []float64, tolerance float64) []float64 {
	if len(points) <= 4 {
		return points
	}
	ls := make(orb.LineString, 0, len(points)/2)
	for i := 0; i+1 < len(points); i += 2 {
		ls = append(ls, orb.Point{points[i], points[i+1]})
	}
	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(ls).(orb.LineString)
	if !ok {
		return points
	}
	out := make([]float64, 0, 2*len(simplified))
	for _, p := range simplified {
		out = append(out, p[0], p[1])
	}
	return out
}
