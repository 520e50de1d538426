package annotation

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
)

// DataManager owns the annotations of one scope and folds other scopes into them.
type DataManager struct {
	data   *IR
	schema LabelSchema
	logger logging.Logger
}

// NewDataManager wraps data. The schema is optional and only used to tell mutable from immutable attributes.
func NewDataManager(data *IR, schema LabelSchema, logger logging.Logger) *DataManager {
	if data == nil {
		data = NewIR()
	}
	return &DataManager{data: data, schema: schema, logger: logger}
}

// Data returns the managed container.
func (dm *DataManager) Data() *IR {
	return dm.data
}

// Merge folds the annotations of other, a segment starting at startFrame that shares overlap frames with the
// data already held, into the receiver. Objects found on both sides of the overlap are united; the rest are
// kept. other is not modified. On error the receiver is left untouched.
func (dm *DataManager) Merge(other *IR, startFrame, overlap int) error {
	for i := range dm.data.Tracks {
		if err := dm.data.Tracks[i].Validate(); err != nil {
			return errors.Wrapf(err, "existing track %d", i)
		}
	}
	for i := range other.Tracks {
		if err := other.Tracks[i].Validate(); err != nil {
			return errors.Wrapf(err, "incoming track %d", i)
		}
	}
	incoming := other.Clone()

	tags, tagStats, err := mergeObjects[Tag](tagManager{}, dm.data.Tags, incoming.Tags, startFrame, overlap)
	if err != nil {
		return errors.Wrap(err, "cannot merge tags")
	}
	shapes, shapeStats, err := mergeObjects[Shape](shapeManager{}, dm.data.Shapes, incoming.Shapes, startFrame, overlap)
	if err != nil {
		return errors.Wrap(err, "cannot merge shapes")
	}
	tracks := trackManager{cache: NewInterpolationCache()}
	merged, trackStats, err := mergeObjects[*Track](tracks, trackRefs(dm.data.Tracks), trackRefs(incoming.Tracks),
		startFrame, overlap)
	if err != nil {
		return errors.Wrap(err, "cannot merge tracks")
	}

	dm.data.Tags = tags
	dm.data.Shapes = shapes
	dm.data.Tracks = make([]Track, len(merged))
	for i, t := range merged {
		dm.data.Tracks[i] = *t
	}

	var total mergeStats
	total.add(tagStats)
	total.add(shapeStats)
	total.add(trackStats)
	dm.logger.Debugw("merged segment",
		"start_frame", startFrame,
		"overlap", overlap,
		"added", total.added,
		"matched", total.matched,
		"rejected", total.rejected,
		"appended", total.appended,
		"closed", total.closed,
		"tracks_matched", trackStats.matched,
	)
	return nil
}

func trackRefs(tracks []Track) []*Track {
	refs := make([]*Track, len(tracks))
	for i := range tracks {
		refs[i] = &tracks[i]
	}
	return refs
}

// ToShapes returns every shape of the scope plus one shape per visible frame of every track, interpolated up
// to endFrame (exclusive). Shapes coming from a track carry its label, group and index, and the union of the
// track-level and frame-level attributes.
func (dm *DataManager) ToShapes(endFrame int) ([]Shape, error) {
	shapes := make([]Shape, 0, len(dm.data.Shapes))
	for _, s := range dm.data.Shapes {
		shapes = append(shapes, s.Clone())
	}
	for idx, track := range dm.data.Tracks {
		interpolated, err := InterpolateTrack(track, endFrame)
		if err != nil {
			return nil, errors.Wrapf(err, "track %d", idx)
		}
		for _, ts := range interpolated {
			if ts.Outside {
				continue
			}
			trackID := idx
			attrs := make([]Attribute, 0, len(ts.Attributes)+len(track.Attributes))
			attrs = append(attrs, ts.Attributes...)
			attrs = append(attrs, track.Attributes...)
			shapes = append(shapes, Shape{
				Type:       ts.Type,
				Frame:      ts.Frame,
				LabelID:    track.LabelID,
				Points:     append([]float64(nil), ts.Points...),
				Occluded:   ts.Occluded,
				ZOrder:     ts.ZOrder,
				Group:      track.Group,
				Attributes: attrs,
				TrackID:    &trackID,
			})
		}
	}
	return shapes, nil
}

// ToTracks returns every track of the scope plus a two-keyframe track per shape: visible on the shape's frame
// and outside on the next one.
func (dm *DataManager) ToTracks() []Track {
	tracks := make([]Track, 0, len(dm.data.Tracks)+len(dm.data.Shapes))
	for _, t := range dm.data.Tracks {
		tracks = append(tracks, t.Clone())
	}
	for _, s := range dm.data.Shapes {
		tracks = append(tracks, dm.shapeToTrack(s))
	}
	return tracks
}

func (dm *DataManager) shapeToTrack(s Shape) Track {
	trackAttrs, shapeAttrs := dm.splitAttributes(s.LabelID, s.Attributes)
	visible := TrackedShape{
		Type:       s.Type,
		Frame:      s.Frame,
		Points:     append([]float64(nil), s.Points...),
		Occluded:   s.Occluded,
		Keyframe:   true,
		ZOrder:     s.ZOrder,
		Attributes: shapeAttrs,
	}
	hidden := visible.Clone()
	hidden.Frame++
	hidden.Outside = true
	return Track{
		LabelID:    s.LabelID,
		Group:      s.Group,
		Frame:      s.Frame,
		Attributes: trackAttrs,
		Shapes:     []TrackedShape{visible, hidden},
	}
}

// splitAttributes separates immutable (track-level) from mutable (frame-level) values. Without a schema, or
// for ids the schema does not know, everything stays on the track.
func (dm *DataManager) splitAttributes(labelID int, attrs []Attribute) (immutable, mutable []Attribute) {
	immutable = make([]Attribute, 0, len(attrs))
	mutable = []Attribute{}
	for _, attr := range attrs {
		if dm.schema != nil {
			owner, spec, ok := dm.schema.AttributeSpec(attr.SpecID)
			if ok && owner == labelID && spec.Mutable {
				mutable = append(mutable, attr)
				continue
			}
		}
		immutable = append(immutable, attr)
	}
	return immutable, mutable
}

// ClearFrames removes the tags, shapes and track keyframes that sit on any of frames. Tracks left without
// keyframes are dropped; the others start at their first remaining keyframe.
func (dm *DataManager) ClearFrames(frames []int) {
	drop := make(map[int]struct{}, len(frames))
	for _, f := range frames {
		drop[f] = struct{}{}
	}
	cleared := func(frame int) bool {
		_, ok := drop[frame]
		return ok
	}

	tags := dm.data.Tags[:0]
	for _, t := range dm.data.Tags {
		if !cleared(t.Frame) {
			tags = append(tags, t)
		}
	}
	dm.data.Tags = tags

	shapes := dm.data.Shapes[:0]
	for _, s := range dm.data.Shapes {
		if !cleared(s.Frame) {
			shapes = append(shapes, s)
		}
	}
	dm.data.Shapes = shapes

	tracks := dm.data.Tracks[:0]
	for _, t := range dm.data.Tracks {
		kept := make([]TrackedShape, 0, len(t.Shapes))
		for _, s := range t.Shapes {
			if !cleared(s.Frame) {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			continue
		}
		t.Shapes = kept
		t.Frame = kept[0].Frame
		tracks = append(tracks, t)
	}
	dm.data.Tracks = tracks
}
