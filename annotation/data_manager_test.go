package annotation

import (
	"encoding/json"
	"testing"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"
)

func TestShapesTracksRoundTrip(t *testing.T) {
	shapes := []Shape{
		box(0, 1, 0, 0, 10, 10),
		box(3, 2, 5, 5, 8, 9),
		{Type: Polygon, Frame: 3, LabelID: 1, Points: []float64{0, 0, 4, 0, 4, 4}},
		{Type: Points, Frame: 7, LabelID: 3, Points: []float64{1, 1}},
		{Type: Polyline, Frame: 9, LabelID: 3, Points: []float64{1, 1, 2, 2, 3, 1}},
	}
	logger := logging.NewTestLogger(t)

	tracks := NewDataManager(&IR{Shapes: shapes}, nil, logger).ToTracks()
	test.That(t, tracks, test.ShouldHaveLength, len(shapes))
	for i, track := range tracks {
		test.That(t, track.Validate(), test.ShouldBeNil)
		test.That(t, track.Shapes, test.ShouldHaveLength, 2)
		test.That(t, track.Shapes[1].Frame, test.ShouldEqual, shapes[i].Frame+1)
		test.That(t, track.Shapes[1].Outside, test.ShouldBeTrue)
	}

	back, err := NewDataManager(&IR{Tracks: tracks}, nil, logger).ToShapes(20)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldHaveLength, len(shapes))
	for i, s := range back {
		test.That(t, s.Type, test.ShouldEqual, shapes[i].Type)
		test.That(t, s.Frame, test.ShouldEqual, shapes[i].Frame)
		test.That(t, s.LabelID, test.ShouldEqual, shapes[i].LabelID)
		test.That(t, s.Points, test.ShouldResemble, shapes[i].Points)
		test.That(t, *s.TrackID, test.ShouldEqual, i)
	}
}

func TestToShapes(t *testing.T) {
	track := rectTrack(4,
		keyframe(0, 0, 0, 10, 10),
		keyframe(2, 0, 0, 20, 20),
		outsideKeyframe(3, 0, 0, 20, 20),
	)
	track.Group = 2
	track.Attributes = []Attribute{{SpecID: 9, Value: "car"}}
	track.Shapes[0].Attributes = []Attribute{{SpecID: 10, Value: "parked"}}

	plain := box(1, 1, 0, 0, 1, 1)
	dm := NewDataManager(&IR{Shapes: []Shape{plain}, Tracks: []Track{track}}, nil, logging.NewTestLogger(t))
	shapes, err := dm.ToShapes(10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, shapes, test.ShouldHaveLength, 4)

	test.That(t, shapes[0].TrackID, test.ShouldBeNil)
	for i, s := range shapes[1:] {
		test.That(t, s.Frame, test.ShouldEqual, i)
		test.That(t, s.LabelID, test.ShouldEqual, 4)
		test.That(t, s.Group, test.ShouldEqual, 2)
		test.That(t, *s.TrackID, test.ShouldEqual, 0)
		test.That(t, s.Attributes, test.ShouldResemble,
			[]Attribute{{SpecID: 10, Value: "parked"}, {SpecID: 9, Value: "car"}})
	}
	test.That(t, shapes[2].Points, test.ShouldResemble, []float64{0, 0, 15, 15})

	// the track itself keeps only its own attributes
	test.That(t, dm.Data().Tracks[0].Attributes, test.ShouldHaveLength, 1)
}

func TestToTracksSplitsAttributes(t *testing.T) {
	labels, err := NewLabels([]Label{{
		ID:   1,
		Name: "car",
		Attributes: []AttributeSpec{
			{ID: 10, Name: "model"},
			{ID: 11, Name: "moving", Mutable: true},
		},
	}})
	test.That(t, err, test.ShouldBeNil)

	shape := box(5, 1, 0, 0, 1, 1)
	shape.Attributes = []Attribute{{SpecID: 10, Value: "sedan"}, {SpecID: 11, Value: "yes"}, {SpecID: 99, Value: "?"}}

	tracks := NewDataManager(&IR{Shapes: []Shape{shape}}, labels, logging.NewTestLogger(t)).ToTracks()
	test.That(t, tracks, test.ShouldHaveLength, 1)
	test.That(t, tracks[0].Attributes, test.ShouldResemble,
		[]Attribute{{SpecID: 10, Value: "sedan"}, {SpecID: 99, Value: "?"}})
	test.That(t, tracks[0].Shapes[0].Attributes, test.ShouldResemble, []Attribute{{SpecID: 11, Value: "yes"}})

	// without a schema every attribute belongs to the track
	tracks = NewDataManager(&IR{Shapes: []Shape{shape}}, nil, logging.NewTestLogger(t)).ToTracks()
	test.That(t, tracks[0].Attributes, test.ShouldHaveLength, 3)
	test.That(t, tracks[0].Shapes[0].Attributes, test.ShouldBeEmpty)
}

func TestClearFrames(t *testing.T) {
	dm := NewDataManager(&IR{
		Tags:   []Tag{{Frame: 1, LabelID: 1}, {Frame: 2, LabelID: 1}},
		Shapes: []Shape{box(1, 1, 0, 0, 1, 1), box(3, 1, 0, 0, 1, 1)},
		Tracks: []Track{
			rectTrack(1, keyframe(1, 0, 0, 1, 1), keyframe(4, 0, 0, 2, 2)),
			rectTrack(1, keyframe(2, 0, 0, 1, 1)),
		},
	}, nil, logging.NewTestLogger(t))

	dm.ClearFrames([]int{1, 2})
	data := dm.Data()
	test.That(t, data.Tags, test.ShouldBeEmpty)
	test.That(t, data.Shapes, test.ShouldHaveLength, 1)
	test.That(t, data.Shapes[0].Frame, test.ShouldEqual, 3)
	test.That(t, data.Tracks, test.ShouldHaveLength, 1)
	test.That(t, data.Tracks[0].Frame, test.ShouldEqual, 4)
	test.That(t, data.Tracks[0].Validate(), test.ShouldBeNil)
}

func TestIRSlice(t *testing.T) {
	ir := &IR{
		Version: 3,
		Tags:    []Tag{{Frame: 1, LabelID: 1}, {Frame: 5, LabelID: 1, Attributes: []Attribute{{SpecID: 1, Value: "a"}}}},
		Shapes:  []Shape{box(4, 1, 0, 0, 1, 1), box(6, 1, 0, 0, 1, 1), box(10, 1, 0, 0, 1, 1)},
		Tracks: []Track{
			rectTrack(1, keyframe(0, 0, 0, 1, 1), keyframe(8, 0, 0, 1, 1)),
			rectTrack(1, keyframe(0, 0, 0, 1, 1), outsideKeyframe(3, 0, 0, 1, 1)),
			rectTrack(1, keyframe(12, 0, 0, 1, 1)),
		},
	}

	sliced := ir.Slice(4, 8)
	test.That(t, sliced.Version, test.ShouldEqual, 3)
	test.That(t, sliced.Tags, test.ShouldHaveLength, 1)
	test.That(t, sliced.Tags[0].Frame, test.ShouldEqual, 5)
	test.That(t, sliced.Shapes, test.ShouldHaveLength, 2)
	test.That(t, sliced.Tracks, test.ShouldHaveLength, 1)
	// tracks are filtered, not cut
	test.That(t, sliced.Tracks[0].Shapes, test.ShouldHaveLength, 2)

	sliced.Tags[0].Attributes[0].Value = "changed"
	sliced.Shapes[0].Points[0] = 42
	sliced.Tracks[0].Shapes[0].Points[0] = 42
	test.That(t, ir.Tags[1].Attributes[0].Value, test.ShouldEqual, "a")
	test.That(t, ir.Shapes[0].Points[0], test.ShouldEqual, 0.0)
	test.That(t, ir.Tracks[0].Shapes[0].Points[0], test.ShouldEqual, 0.0)

	clone := ir.Clone()
	test.That(t, clone, test.ShouldResemble, ir)
}

func TestIRClone(t *testing.T) {
	ir := &IR{
		Version: 4,
		Shapes:  []Shape{{Type: Points, Frame: 2, LabelID: 1, Points: []float64{}}},
		Tracks: []Track{
			{LabelID: 1, Frame: 3},
			rectTrack(1, keyframe(0, 0, 0, 1, 1)),
		},
	}

	clone := ir.Clone()
	test.That(t, clone, test.ShouldResemble, ir)
	test.That(t, clone.Tags, test.ShouldBeNil)
	test.That(t, clone.Shapes[0].Points, test.ShouldNotBeNil)
	test.That(t, clone.Tracks, test.ShouldHaveLength, 2)
	test.That(t, clone.Tracks[0].Shapes, test.ShouldBeNil)

	clone.Tracks[1].Shapes[0].Points[0] = 42
	test.That(t, ir.Tracks[1].Shapes[0].Points[0], test.ShouldEqual, 0.0)
}

func TestIRContainer(t *testing.T) {
	ir := NewIR()
	test.That(t, ir.IsEmpty(), test.ShouldBeTrue)

	tag := Tag{Frame: 1, LabelID: 2, Attributes: []Attribute{{SpecID: 1, Value: "x"}}}
	ir.AddTag(tag)
	ir.AddShape(box(1, 1, 0, 0, 1, 1))
	ir.AddTrack(rectTrack(1, keyframe(0, 0, 0, 1, 1)))
	tag.Attributes[0].Value = "y"
	test.That(t, ir.Tags[0].Attributes[0].Value, test.ShouldEqual, "x")
	test.That(t, ir.IsEmpty(), test.ShouldBeFalse)

	ir.Version = 2
	ir.Reset()
	test.That(t, ir.IsEmpty(), test.ShouldBeTrue)
	test.That(t, ir.Version, test.ShouldEqual, 2)
}

func TestShapeTypeJSON(t *testing.T) {
	raw := `{"type":"polygon","frame":2,"label_id":1,"points":[0,0,1,0,1,1],"occluded":false,"z_order":0,"group":0,"attributes":[]}`
	var s Shape
	test.That(t, json.Unmarshal([]byte(raw), &s), test.ShouldBeNil)
	test.That(t, s.Type, test.ShouldEqual, Polygon)

	out, err := json.Marshal(s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, raw)

	test.That(t, json.Unmarshal([]byte(`{"type":"cuboid"}`), &s), test.ShouldNotBeNil)
	_, err = json.Marshal(Shape{})
	test.That(t, err, test.ShouldNotBeNil)
}
