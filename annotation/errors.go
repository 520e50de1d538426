package annotation

import "github.com/pkg/errors"

var (
	// ErrInvalidTrack is returned for tracks whose keyframes are missing or out of order.
	// It points at a defect in whatever produced the track, and the caller should stop.
	ErrInvalidTrack = errors.New("invalid track")
	// ErrPartition is returned when a merge loses or duplicates incoming objects while splitting them.
	ErrPartition = errors.New("incoming objects were not partitioned exactly")
)
