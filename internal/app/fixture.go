package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"scenarioplan.dev/engine/internal/domain"
)

// LoadBaselineFixture reads a baseline feature list from a YAML or JSON file,
// selected by its extension (.yaml/.yml or .json), and validates it.
func LoadBaselineFixture(path string) ([]domain.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	var features []domain.Feature
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &features); err != nil {
			return nil, fmt.Errorf("parse JSON fixture %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &features); err != nil {
			return nil, fmt.Errorf("parse YAML fixture %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unrecognized fixture extension %q (want .yaml, .yml, or .json)", ext)
	}

	if err := ValidateBaselineFixture(features); err != nil {
		return nil, fmt.Errorf("validate fixture %s: %w", path, err)
	}
	return features, nil
}

// ValidateBaselineFixture checks structural invariants a hand-authored
// fixture can easily violate: duplicate ids and a parentEpic that does not
// resolve to an epic feature in the same set.
func ValidateBaselineFixture(features []domain.Feature) error {
	byID := make(map[string]domain.Feature, len(features))
	for _, f := range features {
		if f.ID == "" {
			return fmt.Errorf("feature with empty id")
		}
		if _, dup := byID[f.ID]; dup {
			return fmt.Errorf("duplicate feature id %q", f.ID)
		}
		byID[f.ID] = f
	}

	for _, f := range features {
		if f.ParentEpic == "" {
			continue
		}
		parent, ok := byID[f.ParentEpic]
		if !ok {
			return fmt.Errorf("feature %q references unknown parentEpic %q", f.ID, f.ParentEpic)
		}
		if parent.Type != domain.FeatureTypeEpic {
			return fmt.Errorf("feature %q references parentEpic %q which is not an epic", f.ID, f.ParentEpic)
		}
	}
	return nil
}
