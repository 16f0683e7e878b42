package engine

import (
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const eulerGamma = 0.5772156649015329

// forestParams are the isolation forest settings taken from the plan.
type forestParams struct {
	trees      int
	sampleSize int
	seed       uint64
}

// iNode is an isolation tree node. Leaves have no children and record how
// many sample rows reached them.
type iNode struct {
	feature     int
	split       float64
	left, right *iNode
	size        int
}

// avgPathLength is c(n), the average path length of an unsuccessful
// binary search tree lookup among n points.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

// isolationForest scores each row of data, a rows x features matrix of
// standardized values. Scores are 2^(-E[h(x)] / c(psi)) and lie in (0, 1];
// higher means easier to isolate. Tree t draws from a PCG stream seeded
// with (seed, t), so trees can be grown in any order and the scores match a
// sequential run exactly. It returns the scores and the sample size psi.
func isolationForest(data [][]float64, p forestParams) ([]float64, int, error) {
	n := len(data)
	psi := min(p.sampleSize, n)
	limit := int(math.Ceil(math.Log2(float64(max(psi, 2)))))

	trees := make([]*iNode, p.trees)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(p.seed, uint64(t)))
			sample := rng.Perm(n)[:psi]
			trees[t] = growTree(data, sample, 0, limit, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, psi, err
	}

	cn := avgPathLength(psi)
	if cn == 0 {
		cn = 1
	}
	scores := make([]float64, n)
	for i, x := range data {
		sum := 0.0
		for _, tree := range trees {
			sum += pathLength(tree, x)
		}
		scores[i] = math.Pow(2, -(sum/float64(len(trees)))/cn)
	}
	return scores, psi, nil
}

func growTree(data [][]float64, rows []int, depth, limit int, rng *rand.Rand) *iNode {
	if depth >= limit || len(rows) <= 1 {
		return &iNode{size: len(rows)}
	}

	// Only features that still vary within this node can split it.
	var candidates []int
	var lows, highs []float64
	for f := range data[rows[0]] {
		lo, hi := data[rows[0]][f], data[rows[0]][f]
		for _, r := range rows[1:] {
			lo = math.Min(lo, data[r][f])
			hi = math.Max(hi, data[r][f])
		}
		if lo < hi {
			candidates = append(candidates, f)
			lows = append(lows, lo)
			highs = append(highs, hi)
		}
	}
	if len(candidates) == 0 {
		return &iNode{size: len(rows)}
	}

	c := rng.IntN(len(candidates))
	feature := candidates[c]
	split := lows[c] + rng.Float64()*(highs[c]-lows[c])

	var left, right []int
	for _, r := range rows {
		if data[r][feature] < split {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &iNode{
		feature: feature,
		split:   split,
		left:    growTree(data, left, depth+1, limit, rng),
		right:   growTree(data, right, depth+1, limit, rng),
	}
}

// pathLength is h(x): the depth at which x lands in a leaf, plus c(size)
// for the points the leaf left unseparated.
func pathLength(node *iNode, x []float64) float64 {
	depth := 0
	for node.left != nil {
		if x[node.feature] < node.split {
			node = node.left
		} else {
			node = node.right
		}
		depth++
	}
	return float64(depth) + avgPathLength(node.size)
}
