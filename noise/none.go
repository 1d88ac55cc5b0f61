package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// None is noiseless measurement noise: its mean and samples are zero vectors
// and its covariance matrix is zero.
type None struct {
	// dim is the noise dimension
	dim int
}

// NewNone creates new None noise of the given dimension and returns it.
// It returns error if dim is not a positive integer.
func NewNone(dim int) (*None, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", dim)
	}

	return &None{dim: dim}, nil
}

// Sample returns a zero vector.
func (e *None) Sample() mat.Vector {
	return mat.NewVecDense(e.dim, nil)
}

// Cov returns a zero covariance matrix.
func (e *None) Cov() mat.Symmetric {
	return mat.NewSymDense(e.dim, nil)
}

// Mean returns None mean.
func (e *None) Mean() []float64 {
	return make([]float64, e.dim)
}

// Reset does nothing: it's here to implement fit.Noise interface
func (e *None) Reset() error {
	return nil
}

// String implements the Stringer interface.
func (e *None) String() string {
	return fmt.Sprintf("None{\nMean=%v\nCov=%v\n}", e.Mean(), mat.Formatted(e.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
