package ml

import (
    "errors"
)

// DecisionTree is a regression tree stored as a flat node list in pre-order:
// node 0 is the root and every child sits after its parent.
type DecisionTree struct {
    Nodes []TreeNode `json:"nodes"`
}

type TreeNode struct {
    FeatureIdx int     `json:"feature_idx"`
    Threshold  float64 `json:"threshold"`
    LeftChild  int     `json:"left_child"`
    RightChild int     `json:"right_child"`
    Value      float64 `json:"value"`
    IsLeaf     bool    `json:"is_leaf"`
}

// Predict walks from the root, going left when the feature is <= the threshold.
// A NaN feature compares false and therefore goes right.
func (dt *DecisionTree) Predict(features []float64) (float64, error) {
    if len(dt.Nodes) == 0 {
        return 0, errors.New("empty tree")
    }
    idx := 0
    for {
        node := dt.Nodes[idx]
        if node.IsLeaf {
            return node.Value, nil
        }
        if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
            return 0, errors.New("feature index out of range")
        }
        if features[node.FeatureIdx] <= node.Threshold {
            idx = node.LeftChild
        } else {
            idx = node.RightChild
        }
        if idx < 0 || idx >= len(dt.Nodes) {
            return 0, errors.New("invalid tree state")
        }
    }
}

func (dt *DecisionTree) validate(width int) error {
    if len(dt.Nodes) == 0 {
        return corruptf("tree has no nodes")
    }
    for i, node := range dt.Nodes {
        if node.IsLeaf {
            continue
        }
        if node.FeatureIdx < 0 || node.FeatureIdx >= width {
            return corruptf("node %d splits on feature %d, schema has %d features", i, node.FeatureIdx, width)
        }
        // Children strictly after the parent rules out cycles.
        for _, child := range []int{node.LeftChild, node.RightChild} {
            if child <= i || child >= len(dt.Nodes) {
                return corruptf("node %d has invalid child %d", i, child)
            }
        }
    }
    return nil
}
