package annotation

import (
	"sort"

	"github.com/pkg/errors"
)

// frameGroup lists the indices of the objects that compete for matches together.
type frameGroup struct {
	frame   int
	indices []int
}

// objectManager is the per-kind policy used by mergeObjects.
type objectManager[T any] interface {
	// frameOf is the frame that decides whether an object lies beyond the overlap window.
	frameOf(obj T) int
	// groupByFrame returns, in ascending frame order, the objects that may be reconciled against
	// a segment starting at startFrame.
	groupByFrame(objs []T, startFrame int) []frameGroup
	// costMatrix returns 1 - similarity for every (incoming, existing) pair.
	costMatrix(incoming, existing []T, startFrame, overlap int) ([][]float64, error)
	// costThreshold is the highest cost at which a pair is still accepted.
	costThreshold() float64
	// unite fuses an accepted pair into one object.
	unite(incoming, existing T) T
	// modifyUnmatched adjusts an existing object that found no partner in the window ending at endFrame.
	modifyUnmatched(obj T, endFrame int) T
}

// mergeStats counts what happened to the objects of one merge.
type mergeStats struct {
	added    int // incoming objects beyond the overlap window
	matched  int // pairs accepted and united
	rejected int // pairs proposed by the solver above the cost threshold
	appended int // incoming objects in the window kept as new objects
	closed   int // existing objects passed through modifyUnmatched
}

func (s *mergeStats) add(o mergeStats) {
	s.added += o.added
	s.matched += o.matched
	s.rejected += o.rejected
	s.appended += o.appended
	s.closed += o.closed
}

// mergeObjects folds incoming into existing. Objects of incoming at or beyond startFrame+overlap are appended
// as they are; the others are matched against existing objects of the same group by minimum-cost assignment.
// Accepted pairs replace the existing object with their union, unmatched incoming objects are appended and
// unmatched existing objects are passed through modifyUnmatched. The result is a new slice; existing and
// incoming are not modified. An overlap of zero or less concatenates the two lists.
func mergeObjects[T any](m objectManager[T], existing, incoming []T, startFrame, overlap int) ([]T, mergeStats, error) {
	var stats mergeStats
	result := make([]T, 0, len(existing)+len(incoming))
	result = append(result, existing...)
	if overlap <= 0 {
		stats.added = len(incoming)
		return append(result, incoming...), stats, nil
	}

	boundary := startFrame + overlap
	var newObjs, intObjs []T
	for _, obj := range incoming {
		if m.frameOf(obj) >= boundary {
			newObjs = append(newObjs, obj)
		} else {
			intObjs = append(intObjs, obj)
		}
	}
	if len(newObjs)+len(intObjs) != len(incoming) {
		return nil, stats, errors.Wrapf(ErrPartition, "%d new + %d overlapping != %d incoming",
			len(newObjs), len(intObjs), len(incoming))
	}

	// the existing groups are taken before the new objects join the result
	intGroups := m.groupByFrame(intObjs, startFrame)
	oldGroups := m.groupByFrame(existing, startFrame)

	result = append(result, newObjs...)
	stats.added = len(newObjs)

	if len(oldGroups) == 0 || len(intGroups) == 0 {
		for _, g := range oldGroups {
			for _, j := range g.indices {
				result[j] = m.modifyUnmatched(result[j], boundary)
				stats.closed++
			}
		}
		stats.appended = len(intObjs)
		return append(result, intObjs...), stats, nil
	}

	oldByFrame := make(map[int][]int, len(oldGroups))
	for _, g := range oldGroups {
		oldByFrame[g.frame] = g.indices
	}

	intHandled := make([]bool, len(intObjs))
	for _, g := range intGroups {
		oldIdx, ok := oldByFrame[g.frame]
		if !ok {
			continue
		}

		ints := make([]T, len(g.indices))
		for i, idx := range g.indices {
			ints[i] = intObjs[idx]
		}
		olds := make([]T, len(oldIdx))
		for j, idx := range oldIdx {
			olds[j] = result[idx]
		}

		cost, err := m.costMatrix(ints, olds, startFrame, overlap)
		if err != nil {
			return nil, stats, err
		}
		pairs, err := solveAssignment(cost)
		if err != nil {
			return nil, stats, err
		}

		oldMatched := make([]bool, len(olds))
		for _, p := range pairs {
			if cost[p.row][p.col] > m.costThreshold() {
				stats.rejected++
				continue
			}
			j := oldIdx[p.col]
			result[j] = m.unite(ints[p.row], result[j])
			intHandled[g.indices[p.row]] = true
			oldMatched[p.col] = true
			stats.matched++
		}
		for c, j := range oldIdx {
			if !oldMatched[c] {
				result[j] = m.modifyUnmatched(result[j], boundary)
				stats.closed++
			}
		}
	}

	for i, obj := range intObjs {
		if !intHandled[i] {
			result = append(result, obj)
			stats.appended++
		}
	}
	return result, stats, nil
}

// groupObjectsByFrame groups the objects at or after startFrame by their frame.
func groupObjectsByFrame[T any](objs []T, startFrame int, frameOf func(T) int) []frameGroup {
	byFrame := make(map[int]int)
	var groups []frameGroup
	for i, obj := range objs {
		frame := frameOf(obj)
		if frame < startFrame {
			continue
		}
		gi, ok := byFrame[frame]
		if !ok {
			gi = len(groups)
			byFrame[frame] = gi
			groups = append(groups, frameGroup{frame: frame})
		}
		groups[gi].indices = append(groups[gi].indices, i)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].frame < groups[j].frame })
	return groups
}

// pairwiseCost fills a cost matrix from a similarity function.
func pairwiseCost[T any](incoming, existing []T, similarity func(a, b T) (float64, error)) ([][]float64, error) {
	cost := make([][]float64, len(incoming))
	for i, a := range incoming {
		cost[i] = make([]float64, len(existing))
		for j, b := range existing {
			sim, err := similarity(a, b)
			if err != nil {
				return nil, err
			}
			cost[i][j] = 1 - sim
		}
	}
	return cost, nil
}
