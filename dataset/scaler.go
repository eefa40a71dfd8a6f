package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes features by removing the mean and scaling
// to unit variance, with statistics learned by Fit.
//
// The fitted statistics only change through Fit: Transform never alters
// them, whatever matrix it is given.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes the per-column mean and population standard deviation of
// x. Columns with zero deviation get a scale of 1.
func (s *StandardScaler) Fit(x *mat.Dense) error {
	if x == nil {
		return fmt.Errorf("%w: nil matrix", ErrInvalidParameter)
	}

	_, cols := x.Dims()

	mean := make([]float64, cols)
	scale := make([]float64, cols)

	for j := 0; j < cols; j++ {
		mean[j], scale[j] = stat.PopMeanStdDev(mat.Col(nil, j, x), nil)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	s.mean, s.scale = mean, scale

	return nil
}

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	if s.mean == nil {
		return nil, ErrNotFitted
	}

	if x == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidParameter)
	}

	rows, cols := x.Dims()
	if cols != len(s.mean) {
		return nil, fmt.Errorf("%w: fitted on %d columns, got %d", ErrInvalidParameter, len(s.mean), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.mean[j]) / s.scale[j]
	}, x)

	return out, nil
}

// FitTransform fits the scaler on x and returns x standardized.
func (s *StandardScaler) FitTransform(x *mat.Dense) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}

	return s.Transform(x)
}

// Mean returns a copy of the fitted per-column means, nil before Fit.
func (s *StandardScaler) Mean() []float64 {
	return append([]float64(nil), s.mean...)
}

// Scale returns a copy of the fitted per-column scales, nil before Fit.
func (s *StandardScaler) Scale() []float64 {
	return append([]float64(nil), s.scale...)
}
