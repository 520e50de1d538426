package annotation

import (
	"strings"

	"github.com/pkg/errors"
)

// AttributeSpec describes one attribute of a label. Mutable attributes may change from keyframe to keyframe;
// immutable ones are fixed for the lifetime of an object.
type AttributeSpec struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Mutable bool   `json:"mutable"`
}

// Label is one label of the task schema with its attributes.
type Label struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Attributes []AttributeSpec `json:"attributes"`
}

// LabelSchema resolves attribute references against the labels of a task.
type LabelSchema interface {
	// AttributeSpecID maps a label and an attribute name to the attribute spec id.
	AttributeSpecID(labelID int, name string) (int, bool)
	// AttributeSpec maps a spec id back to its label and spec.
	AttributeSpec(specID int) (labelID int, spec AttributeSpec, ok bool)
}

type specEntry struct {
	labelID int
	spec    AttributeSpec
}

// Labels is an in-memory LabelSchema.
type Labels struct {
	specs  map[int]specEntry
	byName map[int]map[string]int
}

// NewLabels indexes labels. Label ids and attribute spec ids must be unique.
func NewLabels(labels []Label) (*Labels, error) {
	l := &Labels{
		specs:  make(map[int]specEntry),
		byName: make(map[int]map[string]int, len(labels)),
	}
	for _, label := range labels {
		if _, ok := l.byName[label.ID]; ok {
			return nil, errors.Errorf("duplicate label id %d (%q)", label.ID, label.Name)
		}
		names := make(map[string]int, len(label.Attributes))
		for _, spec := range label.Attributes {
			if prev, ok := l.specs[spec.ID]; ok {
				return nil, errors.Errorf("attribute spec id %d used by labels %d and %d", spec.ID, prev.labelID, label.ID)
			}
			l.specs[spec.ID] = specEntry{labelID: label.ID, spec: spec}
			names[strings.ToLower(spec.Name)] = spec.ID
		}
		l.byName[label.ID] = names
	}
	return l, nil
}

// AttributeSpecID looks an attribute up by name, ignoring case.
func (l *Labels) AttributeSpecID(labelID int, name string) (int, bool) {
	names, ok := l.byName[labelID]
	if !ok {
		return 0, false
	}
	id, ok := names[strings.ToLower(name)]
	return id, ok
}

// AttributeSpec returns the label and spec that own specID.
func (l *Labels) AttributeSpec(specID int) (int, AttributeSpec, bool) {
	entry, ok := l.specs[specID]
	if !ok {
		return 0, AttributeSpec{}, false
	}
	return entry.labelID, entry.spec, true
}

// IRFilter turns one annotation container into another.
type IRFilter func(ir *IR) (*IR, int)

// NewSchemaFilter returns an IRFilter that drops every attribute whose spec id does not belong to the label of
// the object carrying it, and reports how many were dropped. The rest of each object is kept.
// A nil schema returns the input unchanged.
func NewSchemaFilter(schema LabelSchema) IRFilter {
	return func(ir *IR) (*IR, int) {
		if schema == nil {
			return ir, 0
		}

		dropped := 0
		keep := func(labelID int, attrs []Attribute) []Attribute {
			out := make([]Attribute, 0, len(attrs))
			for _, attr := range attrs {
				owner, _, ok := schema.AttributeSpec(attr.SpecID)
				if ok && owner == labelID {
					out = append(out, attr)
				} else {
					dropped++
				}
			}
			return out
		}

		out := ir.Clone()
		for i := range out.Tags {
			out.Tags[i].Attributes = keep(out.Tags[i].LabelID, out.Tags[i].Attributes)
		}
		for i := range out.Shapes {
			out.Shapes[i].Attributes = keep(out.Shapes[i].LabelID, out.Shapes[i].Attributes)
		}
		for i := range out.Tracks {
			track := &out.Tracks[i]
			track.Attributes = keep(track.LabelID, track.Attributes)
			for j := range track.Shapes {
				track.Shapes[j].Attributes = keep(track.LabelID, track.Shapes[j].Attributes)
			}
		}
		return out, dropped
	}
}
