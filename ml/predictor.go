package ml

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Predictor serves single-row predictions from one loaded artifact.
// It is safe for concurrent use: the artifact is read-only and the cache locks internally.
type Predictor struct {
	artifact *Artifact
	cache    *lru.Cache[string, float64]
}

// Option configures a Predictor.
type Option func(*predictorOptions)

type predictorOptions struct {
	cacheSize int
}

// WithCacheSize keeps up to size recent predictions in memory. Zero disables caching.
func WithCacheSize(size int) Option {
	return func(o *predictorOptions) {
		o.cacheSize = size
	}
}

func NewPredictor(artifact *Artifact, opts ...Option) (*Predictor, error) {
	if artifact == nil {
		return nil, fmt.Errorf("nil artifact")
	}
	var o predictorOptions
	for _, opt := range opts {
		opt(&o)
	}
	p := &Predictor{artifact: artifact}
	if o.cacheSize > 0 {
		cache, err := lru.New[string, float64](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		p.cache = cache
	}
	return p, nil
}

// Open loads the artifact at path and wraps it in a Predictor.
func Open(path string, opts ...Option) (*Predictor, error) {
	artifact, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return NewPredictor(artifact, opts...)
}

// Schema is the input contract of the loaded model.
func (p *Predictor) Schema() Schema {
	return p.artifact.Schema()
}

// Kind is the model kind of the loaded artifact.
func (p *Predictor) Kind() string {
	return p.artifact.Kind()
}

// Predict returns the model's estimate for record. Values are not range
// checked; NaN and infinities reach the model unchanged.
func (p *Predictor) Predict(ctx context.Context, record Record) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	vector, err := p.artifact.schema.Vector(record)
	if err != nil {
		return 0, err
	}

	var key string
	if p.cache != nil {
		key = cacheKey(vector)
		if value, ok := p.cache.Get(key); ok {
			return value, nil
		}
	}

	value, err := p.artifact.model.Predict(vector)
	if err != nil {
		return 0, fmt.Errorf("%s predict: %w", p.artifact.kind, err)
	}
	if p.cache != nil {
		p.cache.Add(key, value)
	}
	return value, nil
}

// PredictFeatures is Predict for the five-field stock row.
func (p *Predictor) PredictFeatures(ctx context.Context, features FeatureRecord) (float64, error) {
	return p.Predict(ctx, features.Record())
}

// cacheKey encodes the exact bit pattern so -0, 0 and NaN payloads stay distinct.
func cacheKey(vector []float64) string {
	var b strings.Builder
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return b.String()
}
