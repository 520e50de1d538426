package assembly

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/viam-modules/annotation-merge/annotation"
)

// SegmentConfig points at the annotations of one segment.
type SegmentConfig struct {
	StartFrame  int    `json:"start_frame"`
	StopFrame   int    `json:"stop_frame"`
	Annotations string `json:"annotations"`
}

// Config describes a task: its segments, the overlap they were cut with and where the result goes.
type Config struct {
	Overlap   int                `json:"overlap"`
	StopFrame int                `json:"stop_frame"`
	Labels    []annotation.Label `json:"labels,omitempty"`
	Segments  []SegmentConfig    `json:"segments"`
	Output    string             `json:"output"`
	// Flatten writes every track as per-frame shapes instead of keyframes.
	Flatten bool `json:"flatten,omitempty"`
}

// Validate checks the config. path names the config in error messages.
func (cfg *Config) Validate(path string) error {
	if len(cfg.Segments) == 0 {
		return errors.Errorf(`expected at least one entry in "segments" for task %q`, path)
	}
	if cfg.Overlap < 0 {
		return errors.Errorf(`"overlap" must not be negative for task %q, got %d`, path, cfg.Overlap)
	}
	if cfg.Output == "" {
		return errors.Errorf(`expected "output" attribute for task %q`, path)
	}
	for i, seg := range cfg.Segments {
		if seg.Annotations == "" {
			return errors.Errorf(`expected "annotations" attribute for segment %d of task %q`, i, path)
		}
		if seg.StopFrame < seg.StartFrame {
			return errors.Errorf("segment %d of task %q stops at frame %d before it starts at frame %d",
				i, path, seg.StopFrame, seg.StartFrame)
		}
		if cfg.StopFrame < seg.StopFrame {
			return errors.Errorf("segment %d of task %q stops at frame %d, after the task stop frame %d",
				i, path, seg.StopFrame, cfg.StopFrame)
		}
	}
	if _, err := annotation.NewLabels(cfg.Labels); err != nil {
		return errors.Wrapf(err, "invalid labels for task %q", path)
	}
	return nil
}

// LoadConfig reads and validates the JSON config at path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", path)
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}
