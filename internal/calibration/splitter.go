package calibration

import (
	"math"
	"math/rand"
)

// Splitter partitions sample indices into two disjoint folds. Identical
// seed and input size yield an identical partition. When grouping is
// supplied, the partition operates on unique group ids so that no group
// straddles the fold boundary.
type Splitter struct {
	TrainFraction float64
	Seed          int64
}

// NewSplitter creates a splitter with the default 50/50 train fraction
func NewSplitter(seed int64) *Splitter {
	return &Splitter{TrainFraction: 0.5, Seed: seed}
}

// Split partitions [0,n) into two disjoint index sets. Fold sizes match
// the train fraction up to rounding; a degenerate (empty) fold is
// permitted and left to the caller.
func (s *Splitter) Split(n int) (foldA, foldB []int) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewSource(s.Seed))
	rng.Shuffle(n, func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})

	cut := int(math.Round(float64(n) * s.TrainFraction))
	if cut > n {
		cut = n
	}
	return perm[:cut], perm[cut:]
}

// SplitGrouped partitions rows by group membership: unique group ids
// (in order of first appearance) are shuffled and split, then expanded
// back to member row indices.
func (s *Splitter) SplitGrouped(groups []float64) (foldA, foldB []int) {
	order := make([]float64, 0)
	members := make(map[float64][]int, len(groups))
	for row, g := range groups {
		if _, ok := members[g]; !ok {
			order = append(order, g)
		}
		members[g] = append(members[g], row)
	}

	rng := rand.New(rand.NewSource(s.Seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	cut := int(math.Round(float64(len(order)) * s.TrainFraction))
	if cut > len(order) {
		cut = len(order)
	}
	for _, g := range order[:cut] {
		foldA = append(foldA, members[g]...)
	}
	for _, g := range order[cut:] {
		foldB = append(foldB, members[g]...)
	}
	return foldA, foldB
}

// SplitData partitions either by row or by group depending on whether
// group ids are present.
func (s *Splitter) SplitData(n int, groups []float64) (foldA, foldB []int) {
	if len(groups) > 0 {
		return s.SplitGrouped(groups)
	}
	return s.Split(n)
}
