package annotation

import (
	flatbush "github.com/bmharper/flatbush-go"

	"github.com/viam-modules/annotation-merge/geometry"
)

// shapeManager reconciles shapes frame by frame using geometric overlap.
type shapeManager struct{}

const shapeCostThreshold = 0.25

func (shapeManager) frameOf(s Shape) int { return s.Frame }

func (shapeManager) groupByFrame(shapes []Shape, startFrame int) []frameGroup {
	return groupObjectsByFrame(shapes, startFrame, func(s Shape) int { return s.Frame })
}

// costMatrix only evaluates pairs whose outlines touch. Every other pair has similarity 0 anyway.
func (shapeManager) costMatrix(incoming, existing []Shape, _, _ int) ([][]float64, error) {
	cost := make([][]float64, len(incoming))
	for i := range cost {
		row := make([]float64, len(existing))
		for j := range row {
			row[j] = 1
		}
		cost[i] = row
	}

	fb := flatbush.NewFlatbush[float64]()
	fb.Reserve(len(existing))
	for _, s := range existing {
		b := geometry.BoxFromPoints(outline(s.Type, s.Points))
		fb.Add(b[0], b[1], b[2], b[3])
	}
	fb.Finish()

	var candidates []int
	for i, a := range incoming {
		b := geometry.BoxFromPoints(outline(a.Type, a.Points))
		candidates = fb.SearchFast(b[0], b[1], b[2], b[3], candidates[:0])
		for _, j := range candidates {
			cost[i][j] = 1 - ShapeSimilarity(a, existing[j])
		}
	}
	return cost, nil
}

func (shapeManager) costThreshold() float64 { return shapeCostThreshold }

// unite keeps the earlier shape whole, the existing one on a tie. Geometry is not averaged.
func (shapeManager) unite(incoming, existing Shape) Shape {
	if incoming.Frame < existing.Frame {
		return incoming
	}
	return existing
}

func (shapeManager) modifyUnmatched(s Shape, _ int) Shape { return s }

// ShapeSimilarity is the IoU of two shapes of the same kind and label, and 0 for any other pair.
// Polylines and points have no similarity measure and always give 0.
func ShapeSimilarity(a, b Shape) float64 {
	if a.LabelID != b.LabelID {
		return 0
	}
	return geometrySimilarity(a.Type, a.Points, b.Type, b.Points)
}

func geometrySimilarity(typeA ShapeType, a []float64, typeB ShapeType, b []float64) float64 {
	if typeA != typeB {
		return 0
	}
	switch typeA {
	case Rectangle:
		if len(a) < 4 || len(b) < 4 {
			return 0
		}
		return geometry.BoxIoU(geometry.BoxFromPoints(a[:4]), geometry.BoxFromPoints(b[:4]))
	case Polygon, Ellipse:
		return geometry.PolygonIoU(outline(typeA, a), outline(typeB, b))
	default:
		// TODO: polylines and points need a distance-based measure before they can be merged.
		return 0
	}
}

// outline returns the points describing the area covered by a shape.
func outline(st ShapeType, points []float64) []float64 {
	if st == Ellipse {
		return geometry.EllipseToPolygon(points, geometry.EllipseSegments)
	}
	return points
}
