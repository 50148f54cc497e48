package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FormatVersion is the artifact envelope version this package reads and writes.
const FormatVersion = 1

// Artifact is a loaded model together with the schema it was trained on.
// It is never mutated after construction.
type Artifact struct {
	schema Schema
	kind   string
	model  Regressor
}

type artifactFile struct {
	FormatVersion int               `json:"format_version"`
	Kind          string            `json:"kind"`
	Schema        Schema            `json:"schema"`
	Linear        *LinearRegression `json:"linear,omitempty"`
	Tree          *DecisionTree     `json:"tree,omitempty"`
	Forest        *RandomForest     `json:"forest,omitempty"`
}

// NewArtifact checks model against schema and bundles them.
func NewArtifact(schema Schema, model Regressor) (*Artifact, error) {
	var kind string
	var missing bool
	switch m := model.(type) {
	case *LinearRegression:
		kind, missing = KindLinearRegression, m == nil
	case *DecisionTree:
		kind, missing = KindDecisionTree, m == nil
	case *RandomForest:
		kind, missing = KindRandomForest, m == nil
	default:
		return nil, errors.New("unsupported model type")
	}
	if missing {
		return nil, fmt.Errorf("nil %s model", kind)
	}
	if err := schema.validate(); err != nil {
		return nil, err
	}
	if err := model.validate(schema.Width()); err != nil {
		return nil, err
	}
	schema.Features = append([]string(nil), schema.Features...)
	return &Artifact{schema: schema, kind: kind, model: model}, nil
}

// LoadArtifact reads and decodes the artifact at path.
func LoadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrArtifactCorrupt, path)
		}
		return nil, fmt.Errorf("read model artifact %s: %w", path, err)
	}
	artifact, err := decodeArtifact(payload)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return artifact, nil
}

func decodeArtifact(payload []byte) (*Artifact, error) {
	var file artifactFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if file.FormatVersion != FormatVersion {
		return nil, corruptf("unsupported format version %d", file.FormatVersion)
	}

	var model Regressor
	switch file.Kind {
	case KindLinearRegression:
		if file.Linear != nil {
			model = file.Linear
		}
	case KindDecisionTree:
		if file.Tree != nil {
			model = file.Tree
		}
	case KindRandomForest:
		if file.Forest != nil {
			model = file.Forest
		}
	default:
		return nil, corruptf("unsupported model kind %q", file.Kind)
	}
	if model == nil {
		return nil, corruptf("%s artifact has no model parameters", file.Kind)
	}
	return NewArtifact(file.Schema, model)
}

// SaveArtifact writes a to path, creating parent directories.
func SaveArtifact(path string, a *Artifact) error {
	file := artifactFile{
		FormatVersion: FormatVersion,
		Kind:          a.kind,
		Schema:        a.schema,
	}
	switch m := a.model.(type) {
	case *LinearRegression:
		file.Linear = m
	case *DecisionTree:
		file.Tree = m
	case *RandomForest:
		file.Forest = m
	}
	payload, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// Schema returns a copy of the artifact's input contract.
func (a *Artifact) Schema() Schema {
	s := a.schema
	s.Features = append([]string(nil), a.schema.Features...)
	return s
}

// Kind is one of the Kind* constants.
func (a *Artifact) Kind() string {
	return a.kind
}
