package annotation

import (
	"github.com/viam-modules/annotation-merge/geometry"
)

const (
	// normalizedPointCount is the vertex count both ends of a pair are resampled to when their
	// point lists cannot be interpolated coordinate by coordinate.
	normalizedPointCount = 100
	simplifyTolerance    = 0.05
)

// InterpolateTrack expands the keyframes of track into one shape per frame, from the first keyframe up to
// endFrame (exclusive). Keyframes come back with Keyframe set and derived shapes with it cleared, all in
// ascending frame order. Nothing is derived after an outside keyframe. An open rectangle, points or ellipse
// track is continued with its last keyframe's geometry up to endFrame; polygons and polylines are not.
// The track itself is not modified.
func InterpolateTrack(track Track, endFrame int) ([]TrackedShape, error) {
	if err := track.Validate(); err != nil {
		return nil, err
	}

	shapes := make([]TrackedShape, 0, len(track.Shapes))
	var prev TrackedShape
	for i, keyframe := range track.Shapes {
		shape := keyframe.Clone()
		if i > 0 {
			// mutable attributes hold their value until a keyframe sets a new one
			shape.Attributes = appendMissingAttributes(shape.Attributes, prev.Attributes)
			if !prev.Outside {
				shapes = append(shapes, interpolatePair(prev, shape)...)
			}
		}
		shape.Keyframe = true
		shapes = append(shapes, shape)
		prev = shape
	}

	if !prev.Outside && prev.Type.extendsToScopeEnd() {
		last := prev.Clone()
		last.Frame = endFrame
		shapes = append(shapes, interpolatePair(prev, last)...)
	}
	return shapes, nil
}

// interpolatePair returns the derived shapes strictly between s0 and s1.
func interpolatePair(s0, s1 TrackedShape) []TrackedShape {
	if s1.Frame-s0.Frame < 2 {
		return nil
	}

	normalize := s0.Type != s1.Type || s0.Type.isPolyshape() || len(s0.Points) != len(s1.Points)
	p0, p1 := s0.Points, s1.Points
	if normalize {
		p0 = geometry.Resample(p0, normalizedPointCount)
		p1 = geometry.Resample(p1, normalizedPointCount)
	}

	// the object stays where it was last seen until it disappears
	freeze := s1.Outside || len(p0) != len(p1)
	distance := float64(s1.Frame - s0.Frame)
	shapes := make([]TrackedShape, 0, s1.Frame-s0.Frame-1)
	for frame := s0.Frame + 1; frame < s1.Frame; frame++ {
		points := make([]float64, len(p0))
		if freeze {
			copy(points, p0)
		} else {
			offset := float64(frame-s0.Frame) / distance
			for k := range p0 {
				points[k] = p0[k] + (p1[k]-p0[k])*offset
			}
		}
		if normalize {
			points = geometry.Simplify(points, simplifyTolerance)
		}

		shape := s0.Clone()
		shape.Frame = frame
		shape.Points = points
		shape.Keyframe = false
		shapes = append(shapes, shape)
	}
	return shapes
}

type cacheKey struct {
	track    *Track
	endFrame int
}

// InterpolationCache memoizes InterpolateTrack for the duration of one computation, keyed by track identity
// and window end. Tracks produced by a merge are new values and never hit stale entries; a caller that edits a
// cached track in place must Invalidate it.
type InterpolationCache struct {
	shapes map[cacheKey][]TrackedShape
}

// NewInterpolationCache returns an empty cache.
func NewInterpolationCache() *InterpolationCache {
	return &InterpolationCache{shapes: make(map[cacheKey][]TrackedShape)}
}

// Shapes returns the interpolated shapes of track up to endFrame. The result is shared and must not be modified.
func (c *InterpolationCache) Shapes(track *Track, endFrame int) ([]TrackedShape, error) {
	key := cacheKey{track: track, endFrame: endFrame}
	if shapes, ok := c.shapes[key]; ok {
		return shapes, nil
	}
	shapes, err := InterpolateTrack(*track, endFrame)
	if err != nil {
		return nil, err
	}
	c.shapes[key] = shapes
	return shapes, nil
}

// Invalidate forgets every window computed for track.
func (c *InterpolationCache) Invalidate(track *Track) {
	for key := range c.shapes {
		if key.track == track {
			delete(c.shapes, key)
		}
	}
}

// Len is the number of cached windows.
func (c *InterpolationCache) Len() int {
	return len(c.shapes)
}
