package ml

import (
	"sort"
)

// Feature names of the stock schema, in training order.
const (
	FeatureOpen   = "Open"
	FeatureHigh   = "High"
	FeatureLow    = "Low"
	FeatureClose  = "Close"
	FeatureVolume = "Volume"

	// DefaultTarget is the column the stock models are trained to estimate.
	DefaultTarget = "Adj Close"
)

// Schema is the input contract of a model: the feature names in the order the
// model consumes them, plus the name of the predicted quantity.
type Schema struct {
	Features []string `json:"features"`
	Target   string   `json:"target,omitempty"`
}

// DefaultSchema returns the five-field stock schema.
func DefaultSchema() Schema {
	return Schema{
		Features: []string{FeatureOpen, FeatureHigh, FeatureLow, FeatureClose, FeatureVolume},
		Target:   DefaultTarget,
	}
}

// Width is the length of the vector the model expects.
func (s Schema) Width() int {
	return len(s.Features)
}

func (s Schema) validate() error {
	if len(s.Features) == 0 {
		return corruptf("schema has no features")
	}
	seen := make(map[string]bool, len(s.Features))
	for _, name := range s.Features {
		if name == "" {
			return corruptf("schema has an empty feature name")
		}
		if seen[name] {
			return corruptf("schema lists feature %q twice", name)
		}
		seen[name] = true
	}
	return nil
}

// Vector orders the record by the schema. It fails with *SchemaMismatchError
// when the record's field set differs from the schema's.
func (s Schema) Vector(record Record) ([]float64, error) {
	vector := make([]float64, len(s.Features))
	var missing []string
	for i, name := range s.Features {
		value, ok := record[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		vector[i] = value
	}

	var unexpected []string
	if len(record) != len(s.Features)-len(missing) {
		known := make(map[string]bool, len(s.Features))
		for _, name := range s.Features {
			known[name] = true
		}
		for name := range record {
			if !known[name] {
				unexpected = append(unexpected, name)
			}
		}
	}

	if len(missing) > 0 || len(unexpected) > 0 {
		sort.Strings(missing)
		sort.Strings(unexpected)
		return nil, &SchemaMismatchError{Missing: missing, Unexpected: unexpected}
	}
	return vector, nil
}

// Record is a feature row keyed by feature name.
type Record map[string]float64

// FeatureRecord is one row of the stock schema. The zero value is the all-zero row.
type FeatureRecord struct {
	Open   float64 `json:"Open"`
	High   float64 `json:"High"`
	Low    float64 `json:"Low"`
	Close  float64 `json:"Close"`
	Volume float64 `json:"Volume"`
}

// Record returns the named form of the row.
func (f FeatureRecord) Record() Record {
	return Record{
		FeatureOpen:   f.Open,
		FeatureHigh:   f.High,
		FeatureLow:    f.Low,
		FeatureClose:  f.Close,
		FeatureVolume: f.Volume,
	}
}
