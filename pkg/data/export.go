package data

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/croswell/sctl/pkg/scorecard"
)

const exportFileMode = 0600

// WriteModelYAML serializes a fitted model to a YAML file, so a
// scorecard can travel without the database.
func WriteModelYAML(path string, m *scorecard.Model) error {
	if path == "" {
		return errors.New("path not set")
	}
	if m == nil || len(m.Segments) == 0 {
		return errors.New("model not fitted")
	}

	b, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to marshal model")
	}

	if err := os.WriteFile(path, b, exportFileMode); err != nil {
		return errors.Wrapf(err, "failed to write model file: %s", path)
	}
	return nil
}

// ReadModelYAML loads a model previously written by WriteModelYAML.
func ReadModelYAML(path string) (*scorecard.Model, error) {
	if path == "" {
		return nil, errors.New("path not set")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model file: %s", path)
	}

	var m scorecard.Model
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse model file: %s", path)
	}

	if err := m.Config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid model config in: %s", path)
	}
	if len(m.Bins) != m.Config.NBins || len(m.Segments) != m.Config.NBins+1 {
		return nil, errors.Errorf("model file %s is incomplete: %d bins, %d segments", path, len(m.Bins), len(m.Segments))
	}

	return &m, nil
}
