package annotation

import (
	hg "github.com/charles-haynes/munkres"
	"github.com/pkg/errors"
)

// assignment pairs row i of a cost matrix with column j.
type assignment struct {
	row, col int
}

// solveAssignment runs the Hungarian method over a rectangular cost matrix and returns the minimum-cost
// pairing in row order. Rows left without a column (more rows than columns) are omitted.
func solveAssignment(cost [][]float64) ([]assignment, error) {
	if len(cost) == 0 || len(cost[0]) == 0 {
		return nil, nil
	}
	HA, err := hg.NewHungarianAlgorithm(cost)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot solve %dx%d assignment", len(cost), len(cost[0]))
	}
	// matches come out as a []int where the idx is the row and the value is the column, -1 for none
	matches := HA.Execute()

	pairs := make([]assignment, 0, len(matches))
	for row, col := range matches {
		if row < len(cost) && col >= 0 && col < len(cost[row]) {
			pairs = append(pairs, assignment{row: row, col: col})
		}
	}
	return pairs, nil
}
