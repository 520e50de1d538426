package assembly

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/utils"

	"github.com/viam-modules/annotation-merge/annotation"
)

// ReadIR decodes an annotation container from the JSON file at path.
func ReadIR(path string) (*annotation.IR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open annotations")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	ir := annotation.NewIR()
	if err := json.NewDecoder(f).Decode(ir); err != nil {
		return nil, errors.Wrapf(err, "cannot decode annotations %q", path)
	}
	return ir, nil
}

// WriteIR encodes ir as JSON into path, replacing any existing file.
func WriteIR(path string, ir *annotation.IR) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create output")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "cannot close %q", path)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrapf(enc.Encode(ir), "cannot encode annotations into %q", path)
}

// Schema returns the label schema of the task, or nil when the config declares no labels.
func (cfg *Config) Schema() (annotation.LabelSchema, error) {
	if len(cfg.Labels) == 0 {
		return nil, nil
	}
	labels, err := annotation.NewLabels(cfg.Labels)
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// LoadSegments reads the annotations of every segment of cfg. Attributes that do not belong to the label of
// their object are dropped.
func LoadSegments(cfg *Config, schema annotation.LabelSchema, logger logging.Logger) ([]Segment, error) {
	filter := annotation.NewSchemaFilter(schema)
	segments := make([]Segment, 0, len(cfg.Segments))
	for _, sc := range cfg.Segments {
		ir, err := ReadIR(sc.Annotations)
		if err != nil {
			return nil, err
		}
		ir, dropped := filter(ir)
		if dropped > 0 {
			logger.Warnw("dropped attributes not matching their label",
				"annotations", sc.Annotations, "dropped", dropped)
		}
		segments = append(segments, Segment{StartFrame: sc.StartFrame, StopFrame: sc.StopFrame, Annotations: ir})
	}
	return segments, nil
}

// Run loads the segments of cfg, merges them and writes the task annotations to cfg.Output.
func Run(ctx context.Context, cfg *Config, logger logging.Logger) error {
	schema, err := cfg.Schema()
	if err != nil {
		return err
	}
	segments, err := LoadSegments(cfg, schema, logger)
	if err != nil {
		return err
	}
	merged, err := MergeSegments(ctx, segments, cfg.Overlap, schema, logger.Sublogger("merge"))
	if err != nil {
		return err
	}

	if cfg.Flatten {
		dm := annotation.NewDataManager(merged, schema, logger)
		shapes, err := dm.ToShapes(cfg.StopFrame + 1)
		if err != nil {
			return errors.Wrap(err, "cannot flatten tracks")
		}
		merged = &annotation.IR{
			Version: merged.Version,
			Tags:    merged.Tags,
			Shapes:  shapes,
			Tracks:  []annotation.Track{},
		}
	}

	logger.Infow("task assembled",
		"segments", len(segments),
		"tags", len(merged.Tags),
		"shapes", len(merged.Shapes),
		"tracks", len(merged.Tracks),
		"output", cfg.Output,
	)
	return WriteIR(cfg.Output, merged)
}
