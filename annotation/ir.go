package annotation

// IR holds the tags, shapes and tracks of one scope (a job, a segment or a whole task).
// Copies made through Clone and Slice share nothing with the receiver.
type IR struct {
	Version int     `json:"version"`
	Tags    []Tag   `json:"tags"`
	Shapes  []Shape `json:"shapes"`
	Tracks  []Track `json:"tracks"`
}

// NewIR returns an empty container.
func NewIR() *IR {
	return &IR{Tags: []Tag{}, Shapes: []Shape{}, Tracks: []Track{}}
}

// AddTag appends a copy of tag.
func (ir *IR) AddTag(tag Tag) {
	ir.Tags = append(ir.Tags, tag.Clone())
}

// AddShape appends a copy of shape.
func (ir *IR) AddShape(shape Shape) {
	ir.Shapes = append(ir.Shapes, shape.Clone())
}

// AddTrack appends a copy of track.
func (ir *IR) AddTrack(track Track) {
	ir.Tracks = append(ir.Tracks, track.Clone())
}

// IsEmpty is true when the container holds no objects.
func (ir *IR) IsEmpty() bool {
	return len(ir.Tags) == 0 && len(ir.Shapes) == 0 && len(ir.Tracks) == 0
}

// Reset drops every object and keeps the version.
func (ir *IR) Reset() {
	ir.Tags = []Tag{}
	ir.Shapes = []Shape{}
	ir.Tracks = []Track{}
}

// Clone returns a deep copy of every object, nil collections included.
func (ir *IR) Clone() *IR {
	out := &IR{Version: ir.Version}
	if ir.Tags != nil {
		out.Tags = make([]Tag, len(ir.Tags))
		for i, t := range ir.Tags {
			out.Tags[i] = t.Clone()
		}
	}
	if ir.Shapes != nil {
		out.Shapes = make([]Shape, len(ir.Shapes))
		for i, s := range ir.Shapes {
			out.Shapes[i] = s.Clone()
		}
	}
	if ir.Tracks != nil {
		out.Tracks = make([]Track, len(ir.Tracks))
		for i, t := range ir.Tracks {
			out.Tracks[i] = t.Clone()
		}
	}
	return out
}

// Slice returns a deep copy holding the tags and shapes whose frame lies in [start, stop] and the tracks
// with at least one keyframe in that range. Tracks are kept whole.
func (ir *IR) Slice(start, stop int) *IR {
	out := &IR{
		Version: ir.Version,
		Tags:    make([]Tag, 0, len(ir.Tags)),
		Shapes:  make([]Shape, 0, len(ir.Shapes)),
		Tracks:  make([]Track, 0, len(ir.Tracks)),
	}
	for _, t := range ir.Tags {
		if start <= t.Frame && t.Frame <= stop {
			out.Tags = append(out.Tags, t.Clone())
		}
	}
	for _, s := range ir.Shapes {
		if start <= s.Frame && s.Frame <= stop {
			out.Shapes = append(out.Shapes, s.Clone())
		}
	}
	for _, t := range ir.Tracks {
		if t.hasShapeIn(start, stop) {
			out.Tracks = append(out.Tracks, t.Clone())
		}
	}
	return out
}
