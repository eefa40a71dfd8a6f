// Package validation estimates how well a classifier generalizes:
// stratified k-fold splitting, cross validated scoring, log loss and the
// binary confusion matrix.
package validation

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/thalesfsp/hotune/dataset"
)

var (
	// ErrInvalidParameter is returned (wrapped) when an argument is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrTooFewMembers is returned (wrapped) when a class can't be spread
	// over every fold.
	ErrTooFewMembers = errors.New("class has fewer members than folds")
)

// Fold is one train/test partition of sample indices.
type Fold struct {
	Train []int
	Test  []int
}

// Splitter partitions labeled samples into folds.
type Splitter interface {
	Split(y []int) ([]Fold, error)
}

// StratifiedKFold splits samples into Splits folds that each preserve the
// proportion of every class.
//
// Samples are ordered by class (shuffled within each class when Shuffle is
// set, using Seed) and dealt to the folds in turn, so fold sizes differ by
// at most one and every sample is tested exactly once.
type StratifiedKFold struct {
	Splits  int
	Shuffle bool
	Seed    int64
}

// NewStratifiedKFold returns a shuffling splitter seeded with seed.
func NewStratifiedKFold(splits int, seed int64) StratifiedKFold {
	return StratifiedKFold{Splits: splits, Shuffle: true, Seed: seed}
}

// Split returns the folds, each with ascending train and test indices.
func (k StratifiedKFold) Split(y []int) ([]Fold, error) {
	if k.Splits < 2 {
		return nil, fmt.Errorf("%w: need at least 2 splits, got %d", ErrInvalidParameter, k.Splits)
	}

	groups := dataset.IndicesByClass(y)
	classes := dataset.Classes(y)

	for _, class := range classes {
		if len(groups[class]) < k.Splits {
			return nil, fmt.Errorf("%w: class %d has %d members for %d splits",
				ErrTooFewMembers, class, len(groups[class]), k.Splits)
		}
	}

	var rng *rand.Rand
	if k.Shuffle {
		rng = rand.New(rand.NewSource(k.Seed))
	}

	fold := make([]int, len(y))
	position := 0

	for _, class := range classes {
		idx := append([]int(nil), groups[class]...)

		if rng != nil {
			rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		}

		for _, i := range idx {
			fold[i] = position % k.Splits
			position++
		}
	}

	folds := make([]Fold, k.Splits)

	for i, f := range fold {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}

	return folds, nil
}
