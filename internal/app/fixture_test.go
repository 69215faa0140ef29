package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenarioplan.dev/engine/internal/domain"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadBaselineFixture_YAML(t *testing.T) {
	path := writeFixture(t, "baseline.yaml", `
- id: e1
  type: epic
  start: "2025-01-01"
  end: "2025-01-31"
  title: Epic One
- id: f1
  type: feature
  parentEpic: e1
  start: "2025-01-02"
  end: "2025-01-10"
  title: Feature One
`)

	features, err := LoadBaselineFixture(path)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "e1", features[0].ID)
	assert.Equal(t, domain.FeatureTypeEpic, features[0].Type)
	assert.Equal(t, "e1", features[1].ParentEpic)
}

func TestLoadBaselineFixture_JSON(t *testing.T) {
	path := writeFixture(t, "baseline.json", `[
		{"id":"e1","type":"epic","start":"2025-01-01","end":"2025-01-31","title":"Epic One"}
	]`)

	features, err := LoadBaselineFixture(path)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "e1", features[0].ID)
}

func TestLoadBaselineFixture_UnrecognizedExtension(t *testing.T) {
	path := writeFixture(t, "baseline.txt", "id,type\n")
	_, err := LoadBaselineFixture(path)
	assert.Error(t, err)
}

func TestValidateBaselineFixture_DuplicateID(t *testing.T) {
	features := []domain.Feature{
		{ID: "f1", Type: domain.FeatureTypeFeature, Start: "2025-01-01", End: "2025-01-02"},
		{ID: "f1", Type: domain.FeatureTypeFeature, Start: "2025-02-01", End: "2025-02-02"},
	}
	err := ValidateBaselineFixture(features)
	assert.ErrorContains(t, err, "duplicate feature id")
}

func TestValidateBaselineFixture_UnknownParentEpic(t *testing.T) {
	features := []domain.Feature{
		{ID: "f1", Type: domain.FeatureTypeFeature, ParentEpic: "missing", Start: "2025-01-01", End: "2025-01-02"},
	}
	err := ValidateBaselineFixture(features)
	assert.ErrorContains(t, err, "unknown parentEpic")
}

func TestValidateBaselineFixture_ParentNotAnEpic(t *testing.T) {
	features := []domain.Feature{
		{ID: "f1", Type: domain.FeatureTypeFeature, Start: "2025-01-01", End: "2025-01-02"},
		{ID: "f2", Type: domain.FeatureTypeFeature, ParentEpic: "f1", Start: "2025-01-01", End: "2025-01-02"},
	}
	err := ValidateBaselineFixture(features)
	assert.ErrorContains(t, err, "not an epic")
}
