package annotation

import (
	"testing"

	"go.viam.com/test"
)

func testLabels(t *testing.T) *Labels {
	t.Helper()
	labels, err := NewLabels([]Label{
		{ID: 1, Name: "car", Attributes: []AttributeSpec{{ID: 10, Name: "Model"}, {ID: 11, Name: "moving", Mutable: true}}},
		{ID: 2, Name: "person", Attributes: []AttributeSpec{{ID: 20, Name: "pose", Mutable: true}}},
		{ID: 3, Name: "sign"},
	})
	test.That(t, err, test.ShouldBeNil)
	return labels
}

func TestNewLabels(t *testing.T) {
	labels := testLabels(t)

	id, ok := labels.AttributeSpecID(1, "model")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, id, test.ShouldEqual, 10)
	id, ok = labels.AttributeSpecID(2, "POSE")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, id, test.ShouldEqual, 20)

	_, ok = labels.AttributeSpecID(2, "model")
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = labels.AttributeSpecID(7, "model")
	test.That(t, ok, test.ShouldBeFalse)

	owner, spec, ok := labels.AttributeSpec(11)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, owner, test.ShouldEqual, 1)
	test.That(t, spec.Mutable, test.ShouldBeTrue)
	_, _, ok = labels.AttributeSpec(99)
	test.That(t, ok, test.ShouldBeFalse)

	t.Run("duplicate label", func(t *testing.T) {
		_, err := NewLabels([]Label{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate label id 1")
	})
	t.Run("duplicate attribute", func(t *testing.T) {
		_, err := NewLabels([]Label{
			{ID: 1, Name: "a", Attributes: []AttributeSpec{{ID: 5, Name: "x"}}},
			{ID: 2, Name: "b", Attributes: []AttributeSpec{{ID: 5, Name: "y"}}},
		})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "attribute spec id 5")
	})
}

func TestSchemaFilter(t *testing.T) {
	ir := &IR{
		Tags: []Tag{{Frame: 0, LabelID: 3, Attributes: []Attribute{{SpecID: 10, Value: "x"}}}},
		Shapes: []Shape{{
			Type:       Rectangle,
			LabelID:    1,
			Points:     []float64{0, 0, 1, 1},
			Attributes: []Attribute{{SpecID: 10, Value: "sedan"}, {SpecID: 20, Value: "standing"}},
		}},
		Tracks: []Track{{
			LabelID:    2,
			Attributes: []Attribute{{SpecID: 42, Value: "?"}},
			Shapes: []TrackedShape{{
				Type:       Rectangle,
				Points:     []float64{0, 0, 1, 1},
				Keyframe:   true,
				Attributes: []Attribute{{SpecID: 20, Value: "sitting"}},
			}},
		}},
	}

	filtered, dropped := NewSchemaFilter(testLabels(t))(ir)
	test.That(t, dropped, test.ShouldEqual, 3)
	test.That(t, filtered.Tags[0].Attributes, test.ShouldBeEmpty)
	test.That(t, filtered.Shapes[0].Attributes, test.ShouldResemble, []Attribute{{SpecID: 10, Value: "sedan"}})
	test.That(t, filtered.Tracks[0].Attributes, test.ShouldBeEmpty)
	test.That(t, filtered.Tracks[0].Shapes[0].Attributes, test.ShouldResemble, []Attribute{{SpecID: 20, Value: "sitting"}})

	// the input is left alone
	test.That(t, ir.Shapes[0].Attributes, test.ShouldHaveLength, 2)

	same, dropped := NewSchemaFilter(nil)(ir)
	test.That(t, dropped, test.ShouldEqual, 0)
	test.That(t, same == ir, test.ShouldBeTrue)
}
