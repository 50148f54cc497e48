package ml

// Model kinds understood by the artifact loader.
const (
	KindLinearRegression = "linear_regression"
	KindDecisionTree     = "decision_tree"
	KindRandomForest     = "random_forest"
)

// Regressor maps an input vector, ordered by the artifact schema, to a scalar.
// Implementations are immutable once loaded and safe for concurrent use.
type Regressor interface {
	Predict(features []float64) (float64, error)
	// validate checks the decoded parameters against the schema width.
	validate(width int) error
}
