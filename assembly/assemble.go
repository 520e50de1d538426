// Package assembly builds the annotations of a whole task out of the annotations of its overlapping segments.
package assembly

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"

	"github.com/viam-modules/annotation-merge/annotation"
)

// Segment is a frame range of the task with the annotations made on it.
type Segment struct {
	StartFrame  int
	StopFrame   int
	Annotations *annotation.IR
}

// MergeSegments folds segments into one task-level container, in start frame order. Each segment is merged
// with the frames it actually shares with the previous one, capped at overlap. The schema may be nil.
// ctx is checked between segments.
func MergeSegments(
	ctx context.Context,
	segments []Segment,
	overlap int,
	schema annotation.LabelSchema,
	logger logging.Logger,
) (*annotation.IR, error) {
	ordered := append([]Segment(nil), segments...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartFrame < ordered[j].StartFrame
	})

	dm := annotation.NewDataManager(nil, schema, logger)
	for i, seg := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "stopped before segment %d", i)
		}
		if seg.Annotations == nil {
			continue
		}

		shared := 0
		if i > 0 {
			shared = sharedFrames(ordered[i-1], seg, overlap)
		}
		if err := dm.Merge(seg.Annotations, seg.StartFrame, shared); err != nil {
			return nil, errors.Wrapf(err, "cannot merge segment [%d, %d]", seg.StartFrame, seg.StopFrame)
		}
		logger.Debugw("segment merged",
			"segment", i,
			"start_frame", seg.StartFrame,
			"stop_frame", seg.StopFrame,
			"overlap", shared,
		)
	}
	return dm.Data(), nil
}

// sharedFrames is the overlap to merge next with: the frames both segments cover, capped at overlap.
func sharedFrames(prev, next Segment, overlap int) int {
	shared := prev.StopFrame - next.StartFrame + 1
	if overlap < shared {
		shared = overlap
	}
	if shared < 0 {
		return 0
	}
	return shared
}
