package ml

import "fmt"

// RandomForest averages the predictions of its trees.
type RandomForest struct {
	Trees []DecisionTree `json:"trees"`
}

func (rf *RandomForest) Predict(features []float64) (float64, error) {
	if len(rf.Trees) == 0 {
		return 0, fmt.Errorf("empty forest")
	}
	sum := 0.0
	for i := range rf.Trees {
		value, err := rf.Trees[i].Predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += value
	}
	return sum / float64(len(rf.Trees)), nil
}

func (rf *RandomForest) validate(width int) error {
	if len(rf.Trees) == 0 {
		return corruptf("forest has no trees")
	}
	for i := range rf.Trees {
		if err := rf.Trees[i].validate(width); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
