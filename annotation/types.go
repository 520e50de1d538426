// Package annotation implements the annotation data model for segmented tasks, the interpolation of tracks
// from keyframes and the merge of annotations produced on overlapping segments.
package annotation

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ShapeType is the geometric kind of a shape.
type ShapeType int

// Shape kinds.
const (
	Rectangle ShapeType = iota + 1
	Polygon
	Polyline
	Points
	Ellipse
)

var shapeTypeNames = map[ShapeType]string{
	Rectangle: "rectangle",
	Polygon:   "polygon",
	Polyline:  "polyline",
	Points:    "points",
	Ellipse:   "ellipse",
}

func (st ShapeType) String() string {
	if name, ok := shapeTypeNames[st]; ok {
		return name
	}
	return fmt.Sprintf("ShapeType(%d)", int(st))
}

// MarshalText encodes the kind by name.
func (st ShapeType) MarshalText() ([]byte, error) {
	name, ok := shapeTypeNames[st]
	if !ok {
		return nil, errors.Errorf("unknown shape type %d", int(st))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a kind name.
func (st *ShapeType) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for k, v := range shapeTypeNames {
		if v == name {
			*st = k
			return nil
		}
	}
	return errors.Errorf("unknown shape type %q", string(text))
}

// isPolyshape is true for kinds whose vertex count is free-form.
func (st ShapeType) isPolyshape() bool {
	return st == Polygon || st == Polyline
}

// extendsToScopeEnd is true for kinds whose open track is continued up to the end of the scope.
// Polygons and polylines are not extended.
func (st ShapeType) extendsToScopeEnd() bool {
	return st == Rectangle || st == Points || st == Ellipse
}

// Attribute is one attribute value, keyed by its spec id.
type Attribute struct {
	SpecID int    `json:"spec_id"`
	Value  string `json:"value"`
}

func cloneAttributes(attrs []Attribute) []Attribute {
	if attrs == nil {
		return nil
	}
	return append(make([]Attribute, 0, len(attrs)), attrs...)
}

func clonePoints(points []float64) []float64 {
	if points == nil {
		return nil
	}
	return append(make([]float64, 0, len(points)), points...)
}

// appendMissingAttributes returns dst extended with the entries of src whose spec id dst lacks.
func appendMissingAttributes(dst, src []Attribute) []Attribute {
	for _, attr := range src {
		found := false
		for _, have := range dst {
			if have.SpecID == attr.SpecID {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, attr)
		}
	}
	return dst
}

// Tag is a frame-level classification.
type Tag struct {
	Frame      int         `json:"frame"`
	LabelID    int         `json:"label_id"`
	Group      int         `json:"group"`
	Attributes []Attribute `json:"attributes"`
}

// Clone returns a deep copy.
func (t Tag) Clone() Tag {
	t.Attributes = cloneAttributes(t.Attributes)
	return t
}

// Shape is one object instance fully specified on a single frame.
type Shape struct {
	Type       ShapeType   `json:"type"`
	Frame      int         `json:"frame"`
	LabelID    int         `json:"label_id"`
	Points     []float64   `json:"points"`
	Occluded   bool        `json:"occluded"`
	ZOrder     int         `json:"z_order"`
	Group      int         `json:"group"`
	Attributes []Attribute `json:"attributes"`
	// TrackID is set on shapes flattened out of a track.
	TrackID *int `json:"track_id,omitempty"`
}

// Clone returns a deep copy.
func (s Shape) Clone() Shape {
	s.Points = clonePoints(s.Points)
	s.Attributes = cloneAttributes(s.Attributes)
	if s.TrackID != nil {
		id := *s.TrackID
		s.TrackID = &id
	}
	return s
}

// TrackedShape is the state of a track on one frame.
type TrackedShape struct {
	Type       ShapeType   `json:"type"`
	Frame      int         `json:"frame"`
	Points     []float64   `json:"points"`
	Occluded   bool        `json:"occluded"`
	Outside    bool        `json:"outside"`
	Keyframe   bool        `json:"keyframe"`
	ZOrder     int         `json:"z_order"`
	Attributes []Attribute `json:"attributes"`
}

// Clone returns a deep copy.
func (s TrackedShape) Clone() TrackedShape {
	s.Points = clonePoints(s.Points)
	s.Attributes = cloneAttributes(s.Attributes)
	return s
}

// Track is an object followed over frames, stored as keyframes ordered by frame.
// Attributes holds the immutable, track-level values.
type Track struct {
	LabelID    int            `json:"label_id"`
	Group      int            `json:"group"`
	Frame      int            `json:"frame"`
	Attributes []Attribute    `json:"attributes"`
	Shapes     []TrackedShape `json:"shapes"`
}

// Clone returns a deep copy.
func (t Track) Clone() Track {
	t.Attributes = cloneAttributes(t.Attributes)
	if t.Shapes == nil {
		return t
	}
	shapes := make([]TrackedShape, len(t.Shapes))
	for i, s := range t.Shapes {
		shapes[i] = s.Clone()
	}
	t.Shapes = shapes
	return t
}

// Validate checks the keyframe ordering of the track.
func (t Track) Validate() error {
	if len(t.Shapes) == 0 {
		return errors.Wrap(ErrInvalidTrack, "track has no keyframes")
	}
	if t.Shapes[0].Frame != t.Frame {
		return errors.Wrapf(ErrInvalidTrack, "track starts at frame %d but its first keyframe is at frame %d",
			t.Frame, t.Shapes[0].Frame)
	}
	for i := 1; i < len(t.Shapes); i++ {
		if t.Shapes[i].Frame <= t.Shapes[i-1].Frame {
			return errors.Wrapf(ErrInvalidTrack, "keyframe %d at frame %d does not follow frame %d",
				i, t.Shapes[i].Frame, t.Shapes[i-1].Frame)
		}
	}
	return nil
}

// hasShapeIn reports whether any keyframe lies in [start, stop].
func (t Track) hasShapeIn(start, stop int) bool {
	for _, s := range t.Shapes {
		if start <= s.Frame && s.Frame <= stop {
			return true
		}
	}
	return false
}
