package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closePassthrough(t *testing.T) *Artifact {
	t.Helper()
	artifact, err := NewArtifact(DefaultSchema(), &LinearRegression{Coefficients: []float64{0, 0, 0, 1, 0}})
	require.NoError(t, err)
	return artifact
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadArtifactNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	for i := 0; i < 2; i++ {
		_, err := LoadArtifact(path)
		require.ErrorIs(t, err, ErrArtifactNotFound)
		assert.Contains(t, err.Error(), path)
	}
}

func TestLoadArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()
	models := map[string]Regressor{
		"linear.json": &LinearRegression{Intercept: 2, Coefficients: []float64{0, 0, 0, 1, 0}},
		"tree.json":   closeSplitTree(),
		"forest.json": &RandomForest{Trees: []DecisionTree{*closeSplitTree(), *closeSplitTree()}},
	}
	for name, model := range models {
		t.Run(name, func(t *testing.T) {
			artifact, err := NewArtifact(DefaultSchema(), model)
			require.NoError(t, err)
			path := filepath.Join(dir, "nested", name)
			require.NoError(t, SaveArtifact(path, artifact))

			loaded, err := LoadArtifact(path)
			require.NoError(t, err)
			assert.Equal(t, artifact.Kind(), loaded.Kind())
			assert.Equal(t, DefaultSchema(), loaded.Schema())
		})
	}
}

func TestLoadArtifactCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "\x80\x04\x95joblib pickle"},
		{name: "empty", content: ""},
		{name: "truncated", content: `{"format_version":1,"kind":"linear_regression","schema":{"features":["Open"`},
		{name: "trailing garbage", content: `{"format_version":1} {}`},
		{name: "unknown version", content: `{"format_version":2,"kind":"linear_regression","schema":{"features":["Close"]},"linear":{"coefficients":[1]}}`},
		{name: "unknown kind", content: `{"format_version":1,"kind":"svm","schema":{"features":["Close"]}}`},
		{name: "no parameters", content: `{"format_version":1,"kind":"decision_tree","schema":{"features":["Close"]}}`},
		{name: "empty schema", content: `{"format_version":1,"kind":"linear_regression","schema":{"features":[]},"linear":{"coefficients":[]}}`},
		{name: "duplicate feature", content: `{"format_version":1,"kind":"linear_regression","schema":{"features":["Close","Close"]},"linear":{"coefficients":[1,1]}}`},
		{name: "width mismatch", content: `{"format_version":1,"kind":"linear_regression","schema":{"features":["Open","Close"]},"linear":{"coefficients":[1]}}`},
		{name: "wrong field type", content: `{"format_version":1,"kind":"linear_regression","schema":{"features":["Close"]},"linear":{"coefficients":["one"]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArtifact(writeFile(t, tt.content))
			require.ErrorIs(t, err, ErrArtifactCorrupt)
			assert.NotErrorIs(t, err, ErrArtifactNotFound)
		})
	}
}

func TestLoadArtifactDirectory(t *testing.T) {
	_, err := LoadArtifact(t.TempDir())
	require.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestArtifactSchemaIsCopied(t *testing.T) {
	artifact := closePassthrough(t)
	schema := artifact.Schema()
	schema.Features[0] = "Mutated"
	assert.Equal(t, FeatureOpen, artifact.Schema().Features[0])
}

func TestNewArtifactRejectsUnknownModel(t *testing.T) {
	_, err := NewArtifact(DefaultSchema(), nil)
	require.Error(t, err)

	for _, model := range []Regressor{(*LinearRegression)(nil), (*DecisionTree)(nil), (*RandomForest)(nil)} {
		_, err := NewArtifact(DefaultSchema(), model)
		assert.ErrorContains(t, err, "nil")
	}
}

func TestShippedModelLoads(t *testing.T) {
	predictor, err := Open(filepath.Join("..", "models", "random_forest_model.json"))
	require.NoError(t, err)
	assert.Equal(t, KindRandomForest, predictor.Kind())
	assert.Equal(t, DefaultSchema(), predictor.Schema())
}
