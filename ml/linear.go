package ml

import "errors"

// LinearRegression predicts Intercept + sum(Coefficients[i] * x[i]).
type LinearRegression struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

func (lr *LinearRegression) Predict(features []float64) (float64, error) {
	if len(features) != len(lr.Coefficients) {
		return 0, errors.New("feature vector length does not match coefficients")
	}
	sum := lr.Intercept
	for i, coef := range lr.Coefficients {
		sum += coef * features[i]
	}
	return sum, nil
}

func (lr *LinearRegression) validate(width int) error {
	if len(lr.Coefficients) != width {
		return corruptf("linear model has %d coefficients, schema has %d features", len(lr.Coefficients), width)
	}
	return nil
}
