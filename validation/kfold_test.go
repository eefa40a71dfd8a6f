package validation

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(zeros, ones int) []int {
	y := make([]int, 0, zeros+ones)
	for i := 0; i < zeros; i++ {
		y = append(y, 0)
	}

	for i := 0; i < ones; i++ {
		y = append(y, 1)
	}

	return y
}

func TestStratifiedKFoldPartitions(t *testing.T) {
	y := labels(60, 40)

	folds, err := NewStratifiedKFold(5, 1).Split(y)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	tested := make([]int, len(y))

	for _, fold := range folds {
		assert.Len(t, fold.Test, 20)
		assert.Len(t, fold.Train, 80)
		assert.True(t, sort.IntsAreSorted(fold.Test))
		assert.True(t, sort.IntsAreSorted(fold.Train))

		ones := 0
		for _, i := range fold.Test {
			tested[i]++
			ones += y[i]
		}

		// Every fold keeps the 60/40 ratio.
		assert.Equal(t, 8, ones)

		inTest := make(map[int]bool, len(fold.Test))
		for _, i := range fold.Test {
			inTest[i] = true
		}

		for _, i := range fold.Train {
			assert.False(t, inTest[i], "index %d in both train and test", i)
		}
	}

	for i, count := range tested {
		assert.Equal(t, 1, count, "index %d", i)
	}
}

func TestStratifiedKFoldSeed(t *testing.T) {
	y := labels(30, 30)

	a, err := NewStratifiedKFold(3, 7).Split(y)
	require.NoError(t, err)

	b, err := NewStratifiedKFold(3, 7).Split(y)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed, different folds (-a +b):\n%s", diff)
	}

	c, err := NewStratifiedKFold(3, 8).Split(y)
	require.NoError(t, err)

	assert.NotEqual(t, a, c)
}

func TestStratifiedKFoldNoShuffle(t *testing.T) {
	folds, err := StratifiedKFold{Splits: 2}.Split([]int{0, 1, 0, 1})
	require.NoError(t, err)

	// Class 0 holds {0, 2}, class 1 holds {1, 3}; they are dealt in turn.
	want := []Fold{
		{Train: []int{2, 3}, Test: []int{0, 1}},
		{Train: []int{0, 1}, Test: []int{2, 3}},
	}

	if diff := cmp.Diff(want, folds); diff != "" {
		t.Errorf("folds (-want +got):\n%s", diff)
	}
}

func TestStratifiedKFoldErrors(t *testing.T) {
	_, err := NewStratifiedKFold(1, 0).Split(labels(5, 5))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewStratifiedKFold(5, 0).Split(labels(10, 4))
	assert.ErrorIs(t, err, ErrTooFewMembers)
}
