package annotation

import (
	"sort"
)

// trackManager reconciles tracks over the whole overlap window at once. Interpolated shapes are looked up
// through the cache, which lives as long as one merge.
type trackManager struct {
	cache *InterpolationCache
}

const trackCostThreshold = 0.5

func (trackManager) frameOf(t *Track) int { return t.Frame }

// groupByFrame puts every track that is still open at startFrame, or has keyframes from there on, in one group.
func (trackManager) groupByFrame(tracks []*Track, startFrame int) []frameGroup {
	group := frameGroup{}
	for i, t := range tracks {
		if len(t.Shapes) == 0 {
			continue
		}
		last := t.Shapes[len(t.Shapes)-1]
		if last.Frame >= startFrame || !last.Outside {
			group.indices = append(group.indices, i)
		}
	}
	if len(group.indices) == 0 {
		return nil
	}
	return []frameGroup{group}
}

func (m trackManager) costMatrix(incoming, existing []*Track, startFrame, overlap int) ([][]float64, error) {
	return pairwiseCost(incoming, existing, func(a, b *Track) (float64, error) {
		return m.similarity(a, b, startFrame, overlap)
	})
}

// similarity compares the two tracks frame by frame over [startFrame, startFrame+overlap). A frame where only
// one track exists, or where the tracks disagree on being outside, counts as a full miss. Tracks of the same
// label with no shape in the window have nothing to disagree on and score 1.
func (m trackManager) similarity(a, b *Track, startFrame, overlap int) (float64, error) {
	if a.LabelID != b.LabelID {
		return 0, nil
	}
	endFrame := startFrame + overlap
	shapesA, err := m.cache.Shapes(a, endFrame)
	if err != nil {
		return 0, err
	}
	shapesB, err := m.cache.Shapes(b, endFrame)
	if err != nil {
		return 0, err
	}
	byFrameA := shapesInWindow(shapesA, startFrame, endFrame)
	byFrameB := shapesInWindow(shapesB, startFrame, endFrame)

	count, miss := 0, 0.0
	for frame := startFrame; frame < endFrame; frame++ {
		sa, okA := byFrameA[frame]
		sb, okB := byFrameB[frame]
		switch {
		case okA && okB:
			if sa.Outside != sb.Outside {
				miss++
			} else {
				miss += 1 - geometrySimilarity(sa.Type, sa.Points, sb.Type, sb.Points)
			}
			count++
		case okA || okB:
			miss++
			count++
		}
	}
	if count == 0 {
		return 1, nil
	}
	return 1 - miss/float64(count), nil
}

func shapesInWindow(shapes []TrackedShape, startFrame, endFrame int) map[int]TrackedShape {
	byFrame := make(map[int]TrackedShape)
	for _, s := range shapes {
		if startFrame <= s.Frame && s.Frame < endFrame {
			byFrame[s.Frame] = s
		}
	}
	return byFrame
}

func (trackManager) costThreshold() float64 { return trackCostThreshold }

// unite keeps the identity of the track that starts first and the keyframes of both. On a frame where both
// have a keyframe the existing one wins. The result is a new track.
func (m trackManager) unite(incoming, existing *Track) *Track {
	base := existing
	if incoming.Frame < existing.Frame {
		base = incoming
	}

	byFrame := make(map[int]TrackedShape, len(incoming.Shapes)+len(existing.Shapes))
	for _, s := range incoming.Shapes {
		byFrame[s.Frame] = s.Clone()
	}
	for _, s := range existing.Shapes {
		byFrame[s.Frame] = s.Clone()
	}
	shapes := make([]TrackedShape, 0, len(byFrame))
	for _, s := range byFrame {
		shapes = append(shapes, s)
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i].Frame < shapes[j].Frame })

	united := Track{
		LabelID:    base.LabelID,
		Group:      base.Group,
		Frame:      min(incoming.Frame, existing.Frame),
		Attributes: cloneAttributes(base.Attributes),
		Shapes:     shapes,
	}
	m.cache.Invalidate(incoming)
	m.cache.Invalidate(existing)
	return &united
}

// modifyUnmatched closes an open track with an outside copy of its last keyframe at endFrame, so that it does
// not run on through frames it was never annotated in.
func (m trackManager) modifyUnmatched(t *Track, endFrame int) *Track {
	if len(t.Shapes) == 0 {
		return t
	}
	last := t.Shapes[len(t.Shapes)-1]
	if last.Outside || last.Frame >= endFrame {
		return t
	}
	closing := last.Clone()
	closing.Frame = endFrame
	closing.Outside = true
	closing.Keyframe = true

	closed := t.Clone()
	closed.Shapes = append(closed.Shapes, closing)
	m.cache.Invalidate(t)
	return &closed
}
