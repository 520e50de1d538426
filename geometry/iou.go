// Package geometry holds the overlap measures and point-sequence helpers used to compare and interpolate shapes.
package geometry

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// EllipseSegments is the number of polygon vertices used to approximate an ellipse.
const EllipseSegments = 64

// Box is an axis-aligned box [xtl, ytl, xbr, ybr].
type Box [4]float64

// BoxFromPoints builds a box from a flat x,y list, taking the extent of every point.
func BoxFromPoints(points []float64) Box {
	if len(points) < 2 {
		return Box{}
	}
	b := Box{points[0], points[1], points[0], points[1]}
	for i := 2; i+1 < len(points); i += 2 {
		b[0] = math.Min(b[0], points[i])
		b[1] = math.Min(b[1], points[i+1])
		b[2] = math.Max(b[2], points[i])
		b[3] = math.Max(b[3], points[i+1])
	}
	return b
}

// Area is zero for inverted or empty boxes.
func (b Box) Area() float64 {
	w, h := b[2]-b[0], b[3]-b[1]
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Intersect returns the overlapping region, which may be empty.
func (b Box) Intersect(o Box) Box {
	return Box{
		math.Max(b[0], o[0]),
		math.Max(b[1], o[1]),
		math.Min(b[2], o[2]),
		math.Min(b[3], o[3]),
	}
}

// Touches reports whether the two boxes share at least a border.
func (b Box) Touches(o Box) bool {
	return b[0] <= o[2] && o[0] <= b[2] && b[1] <= o[3] && o[1] <= b[3]
}

// BoxIoU returns the IoU of two boxes. Zero-area inputs give 0.
func BoxIoU(a, b Box) float64 {
	areaA, areaB := a.Area(), b.Area()
	if areaA == 0 || areaB == 0 {
		return 0
	}
	areaInt := a.Intersect(b).Area()
	union := areaA + areaB - areaInt
	if union <= 0 {
		return 0
	}
	return areaInt / union
}

// PolygonArea returns the unsigned area enclosed by a flat x,y ring. Fewer than three vertices give 0.
func PolygonArea(points []float64) float64 {
	if len(points) < 6 {
		return 0
	}
	return math.Abs(planar.Area(toRing(points)))
}

// PolygonIoU returns intersection area over union area of two simple polygons given as flat x,y lists.
func PolygonIoU(a, b []float64) float64 {
	areaA, areaB := PolygonArea(a), PolygonArea(b)
	if areaA == 0 || areaB == 0 {
		return 0
	}
	if !BoxFromPoints(a).Touches(BoxFromPoints(b)) {
		return 0
	}

	intersection := toPolyclip(a).Construct(polyclip.INTERSECTION, toPolyclip(b))
	areaInt := 0.0
	for _, contour := range intersection {
		ring := make(orb.Ring, 0, len(contour)+1)
		for _, p := range contour {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		areaInt += math.Abs(planar.Area(closeRing(ring)))
	}

	union := areaA + areaB - areaInt
	if union <= 0 {
		return 0
	}
	return math.Min(1, areaInt/union)
}

// EllipseToPolygon approximates an ellipse given as [cx, cy, x, y], its center followed by a corner of its
// bounding box, with n vertices.
func EllipseToPolygon(points []float64, n int) []float64 {
	if len(points) < 4 || n < 3 {
		return nil
	}
	cx, cy := points[0], points[1]
	rx, ry := math.Abs(points[2]-cx), math.Abs(points[3]-cy)
	out := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out = append(out, cx+rx*math.Cos(theta), cy+ry*math.Sin(theta))
	}
	return out
}

func toPolyclip(points []float64) polyclip.Polygon {
	contour := make(polyclip.Contour, 0, len(points)/2)
	for i := 0; i+1 < len(points); i += 2 {
		contour = append(contour, polyclip.Point{X: points[i], Y: points[i+1]})
	}
	return polyclip.Polygon{contour}
}

func toRing(points []float64) orb.Ring {
	ring := make(orb.Ring, 0, len(points)/2+1)
	for i := 0; i+1 < len(points); i += 2 {
		ring = append(ring, orb.Point{points[i], points[i+1]})
	}
	return closeRing(ring)
}

func closeRing(ring orb.Ring) orb.Ring {
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}
