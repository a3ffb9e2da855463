package classifier

import (
	"fmt"
	"math"
)

// Node is one node of a binary decision tree.
// Internal nodes send x[Feature] <= Threshold to Left, everything else to Right.
// Leaves carry per-class weights in Value and no children.
type Node struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      int       `json:"left,omitempty"`
	Right     int       `json:"right,omitempty"`
	Value     []float64 `json:"value,omitempty"`
}

// IsLeaf reports whether the node carries a class distribution
func (n Node) IsLeaf() bool {
	return len(n.Value) > 0
}

// Tree is a decision tree stored as a flat node list rooted at index 0
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is an averaging ensemble of decision trees over binary classes
type Forest struct {
	NFeatures int    `json:"n_features"`
	Classes   []int  `json:"classes"`
	Trees     []Tree `json:"trees"`
}

func (f *Forest) validate() error {
	if len(f.Classes) != 2 || f.Classes[0] != 0 || f.Classes[1] != 1 {
		return fmt.Errorf("classes must be [0 1], got %v", f.Classes)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i, t := range f.Trees {
		if err := t.validate(f.NFeatures, len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t Tree) validate(nFeatures, nClasses int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			if len(n.Value) != nClasses {
				return fmt.Errorf("node %d: leaf has %d class weights, want %d", i, len(n.Value), nClasses)
			}
			var sum float64
			for _, w := range n.Value {
				if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
					return fmt.Errorf("node %d: invalid class weight %v", i, w)
				}
				sum += w
			}
			if sum == 0 {
				return fmt.Errorf("node %d: leaf has zero total weight", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if math.IsNaN(n.Threshold) || math.IsInf(n.Threshold, 0) {
			return fmt.Errorf("node %d: threshold is not finite", i)
		}
		// Children always follow their parent, which rules out cycles.
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}

// distribution returns the normalised class weights of the leaf reached by x
func (t Tree) distribution(x []float64) []float64 {
	n := t.Nodes[0]
	for !n.IsLeaf() {
		if x[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	var sum float64
	for _, w := range n.Value {
		sum += w
	}
	out := make([]float64, len(n.Value))
	for i, w := range n.Value {
		out[i] = w / sum
	}
	return out
}

// proba averages the per-tree class distributions
func (f *Forest) proba(x []float64) []float64 {
	out := make([]float64, len(f.Classes))
	for _, t := range f.Trees {
		for i, p := range t.distribution(x) {
			out[i] += p
		}
	}
	for i := range out {
		out[i] /= float64(len(f.Trees))
	}
	return out
}
