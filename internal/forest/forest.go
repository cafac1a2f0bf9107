// Package forest implements a random forest of CART classification trees
// with probability estimates averaged over trees.
package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// ErrDimension is returned when a sample does not have the fitted feature count
var ErrDimension = errors.New("feature dimension mismatch")

// Params controls forest training
type Params struct {
	Trees           int `json:"trees"`
	MaxDepth        int `json:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split"`
	// MaxFeatures is the number of features tried per split; 0 means sqrt(n)
	MaxFeatures int   `json:"max_features"`
	Bootstrap   bool  `json:"bootstrap"`
	Seed        int64 `json:"seed"`
}

// DefaultParams returns 100 bootstrapped trees of depth 10 that need at
// least 5 samples to split
func DefaultParams() Params {
	return Params{
		Trees:           100,
		MaxDepth:        10,
		MinSamplesSplit: 5,
		Bootstrap:       true,
		Seed:            42,
	}
}

// Forest is a fitted ensemble. It is immutable after Fit and safe for
// concurrent PredictProba calls.
type Forest struct {
	Classes  int    `json:"classes"`
	Features int    `json:"features"`
	Trees    []Tree `json:"trees"`
}

// Fit trains a forest on rows x with class labels y in [0, classes).
// Trees are built in parallel, each from its own seeded source, so the
// result depends only on the inputs and p.Seed.
func Fit(x [][]float64, y []int, classes int, p Params) (*Forest, error) {
	if len(x) == 0 {
		return nil, errors.New("no training samples")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%d samples but %d labels", len(x), len(y))
	}
	if classes < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", classes)
	}
	nFeatures := len(x[0])
	if nFeatures == 0 {
		return nil, errors.New("samples have no features")
	}
	for i, row := range x {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("sample %d: %w: %d != %d", i, ErrDimension, len(row), nFeatures)
		}
		if y[i] < 0 || y[i] >= classes {
			return nil, fmt.Errorf("sample %d: label %d out of range", i, y[i])
		}
	}
	if p.Trees <= 0 {
		return nil, fmt.Errorf("tree count must be positive, got %d", p.Trees)
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = math.MaxInt32
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	maxFeatures := p.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(nFeatures)))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	if maxFeatures > nFeatures {
		maxFeatures = nFeatures
	}

	f := &Forest{
		Classes:  classes,
		Features: nFeatures,
		Trees:    make([]Tree, p.Trees),
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for t := 0; t < p.Trees; t++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(t int) {
			defer wg.Done()
			defer func() { <-sem }()

			rng := rand.New(rand.NewSource(p.Seed + int64(t)))
			samples := make([]int, len(x))
			for i := range samples {
				if p.Bootstrap {
					samples[i] = rng.Intn(len(x))
				} else {
					samples[i] = i
				}
			}
			b := &treeBuilder{
				x:           x,
				y:           y,
				classes:     classes,
				maxDepth:    p.MaxDepth,
				minSplit:    p.MinSamplesSplit,
				maxFeatures: maxFeatures,
				rng:         rng,
			}
			b.build(samples, 0)
			f.Trees[t] = Tree{Nodes: b.nodes}
		}(t)
	}
	wg.Wait()

	return f, nil
}

// PredictProba returns the mean class distribution over all trees
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != f.Features {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimension, len(x), f.Features)
	}
	proba := make([]float64, f.Classes)
	for i := range f.Trees {
		for c, p := range f.Trees[i].predict(x) {
			proba[c] += p
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.Trees))
	}
	return proba, nil
}

// Predict returns the most probable class, preferring the lower index on ties
func (f *Forest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return best, nil
}

// Validate checks the structure of a deserialized forest so that
// PredictProba can never index out of range
func (f *Forest) Validate() error {
	if f.Classes < 2 {
		return fmt.Errorf("forest has %d classes", f.Classes)
	}
	if f.Features <= 0 {
		return fmt.Errorf("forest has %d features", f.Features)
	}
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for t := range f.Trees {
		nodes := f.Trees[t].Nodes
		if len(nodes) == 0 {
			return fmt.Errorf("tree %d is empty", t)
		}
		for i := range nodes {
			n := &nodes[i]
			if n.IsLeaf() {
				if len(n.Proba) != f.Classes {
					return fmt.Errorf("tree %d node %d: leaf has %d probabilities", t, i, len(n.Proba))
				}
				var sum float64
				for _, p := range n.Proba {
					if p < 0 || p > 1 || math.IsNaN(p) {
						return fmt.Errorf("tree %d node %d: invalid probability %v", t, i, p)
					}
					sum += p
				}
				if math.Abs(sum-1) > 1e-6 {
					return fmt.Errorf("tree %d node %d: probabilities sum to %v", t, i, sum)
				}
				continue
			}
			if n.Feature >= f.Features {
				return fmt.Errorf("tree %d node %d: feature %d out of range", t, i, n.Feature)
			}
			// children are always stored after their parent, which rules out cycles
			if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
				return fmt.Errorf("tree %d node %d: invalid children %d/%d", t, i, n.Left, n.Right)
			}
		}
	}
	return nil
}
