package annotation

// tagManager reconciles tags frame by frame. Two tags are the same when they carry the same label.
type tagManager struct{}

const tagCostThreshold = 0.25

func (tagManager) frameOf(t Tag) int { return t.Frame }

func (tagManager) groupByFrame(tags []Tag, startFrame int) []frameGroup {
	return groupObjectsByFrame(tags, startFrame, func(t Tag) int { return t.Frame })
}

func (tagManager) costMatrix(incoming, existing []Tag, _, _ int) ([][]float64, error) {
	return pairwiseCost(incoming, existing, func(a, b Tag) (float64, error) {
		return TagSimilarity(a, b), nil
	})
}

func (tagManager) costThreshold() float64 { return tagCostThreshold }

// unite keeps the earlier tag, the existing one on a tie.
func (tagManager) unite(incoming, existing Tag) Tag {
	if incoming.Frame < existing.Frame {
		return incoming
	}
	return existing
}

func (tagManager) modifyUnmatched(t Tag, _ int) Tag { return t }

// TagSimilarity is 1 for tags of the same label and 0 otherwise.
func TagSimilarity(a, b Tag) float64 {
	if a.LabelID == b.LabelID {
		return 1
	}
	return 0
}
