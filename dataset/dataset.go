// Package dataset provides the labeled data used to tune the classifier:
// a synthetic two moons generator, a stratified train/test split and a
// standard scaler.
package dataset

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidParameter is returned (wrapped) when an argument is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFitted is returned when a scaler is used before Fit.
	ErrNotFitted = errors.New("scaler is not fitted")
)

// Dataset is a set of labeled samples, one row of X per label in Y.
type Dataset struct {
	X *mat.Dense
	Y []int
}

// New checks that x and y agree and returns them as a Dataset.
func New(x *mat.Dense, y []int) (Dataset, error) {
	if x == nil {
		return Dataset{}, fmt.Errorf("%w: nil feature matrix", ErrInvalidParameter)
	}

	if rows, _ := x.Dims(); rows != len(y) {
		return Dataset{}, fmt.Errorf("%w: %d rows but %d labels", ErrInvalidParameter, rows, len(y))
	}

	return Dataset{X: x, Y: y}, nil
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return len(d.Y)
}

// Subset returns the samples at idx, in that order. The returned dataset
// does not share memory with d.
func (d Dataset) Subset(idx []int) Dataset {
	y := make([]int, len(idx))
	for i, j := range idx {
		y[i] = d.Y[j]
	}

	return Dataset{X: Rows(d.X, idx), Y: y}
}

// Rows copies the rows of x at idx into a new matrix. An empty idx yields
// a nil matrix, as gonum has no zero-row Dense.
func Rows(x *mat.Dense, idx []int) *mat.Dense {
	if len(idx) == 0 {
		return nil
	}

	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)

	for i, j := range idx {
		out.SetRow(i, x.RawRowView(j))
	}

	return out
}

// Classes returns the distinct labels of y in ascending order.
func Classes(y []int) []int {
	seen := make(map[int]struct{})
	for _, label := range y {
		seen[label] = struct{}{}
	}

	classes := make([]int, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}

	sort.Ints(classes)

	return classes
}

// IndicesByClass groups sample indices by label, preserving their order.
func IndicesByClass(y []int) map[int][]int {
	groups := make(map[int][]int)
	for i, label := range y {
		groups[label] = append(groups[label], i)
	}

	return groups
}
