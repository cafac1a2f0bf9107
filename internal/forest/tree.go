package forest

import (
	"math/rand"
	"sort"
)

// Node is one node of a flattened decision tree. Leaves have Feature == -1
// and carry the class distribution of the training samples that reached them.
type Node struct {
	Feature   int       `json:"f"`
	Threshold float64   `json:"t,omitempty"`
	Left      int       `json:"l,omitempty"`
	Right     int       `json:"r,omitempty"`
	Proba     []float64 `json:"p,omitempty"`
}

// IsLeaf reports whether the node is a leaf
func (n *Node) IsLeaf() bool {
	return n.Feature < 0
}

// Tree is a binary CART tree stored as a node slice rooted at index 0
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// predict walks x down to a leaf and returns its class distribution.
// Samples go left when x[feature] <= threshold.
func (t *Tree) predict(x []float64) []float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return n.Proba
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeBuilder struct {
	x           [][]float64
	y           []int
	classes     int
	maxDepth    int
	minSplit    int
	maxFeatures int
	rng         *rand.Rand
	nodes       []Node
}

func (b *treeBuilder) build(samples []int, depth int) int {
	counts := b.classCounts(samples)
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1})

	if depth >= b.maxDepth || len(samples) < b.minSplit || isPure(counts) {
		b.nodes[idx].Proba = distribution(counts, len(samples))
		return idx
	}

	feature, threshold, ok := b.bestSplit(samples, counts)
	if !ok {
		b.nodes[idx].Proba = distribution(counts, len(samples))
		return idx
	}

	var left, right []int
	for _, s := range samples {
		if b.x[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return idx
}

// bestSplit searches a random subset of features for the threshold with the
// lowest weighted Gini impurity. ok is false when no split reduces impurity.
func (b *treeBuilder) bestSplit(samples []int, parent []int) (feature int, threshold float64, ok bool) {
	n := len(samples)
	best := gini(parent, n)
	nFeatures := len(b.x[0])

	order := make([]int, n)
	left := make([]int, b.classes)
	right := make([]int, b.classes)

	for _, f := range b.rng.Perm(nFeatures)[:b.maxFeatures] {
		copy(order, samples)
		sort.Slice(order, func(i, j int) bool { return b.x[order[i]][f] < b.x[order[j]][f] })

		for c := range left {
			left[c] = 0
			right[c] = parent[c]
		}
		for i := 0; i < n-1; i++ {
			cls := b.y[order[i]]
			left[cls]++
			right[cls]--

			lo, hi := b.x[order[i]][f], b.x[order[i+1]][f]
			if lo == hi {
				continue
			}
			nl := i + 1
			score := (float64(nl)*gini(left, nl) + float64(n-nl)*gini(right, n-nl)) / float64(n)
			if score < best-1e-12 {
				best = score
				feature = f
				threshold = lo + (hi-lo)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (b *treeBuilder) classCounts(samples []int) []int {
	counts := make([]int, b.classes)
	for _, s := range samples {
		counts[b.y[s]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func distribution(counts []int, n int) []float64 {
	proba := make([]float64, len(counts))
	if n == 0 {
		for i := range proba {
			proba[i] = 1 / float64(len(proba))
		}
		return proba
	}
	for i, c := range counts {
		proba[i] = float64(c) / float64(n)
	}
	return proba
}
