package fit

import "gonum.org/v1/gonum/mat"

// Objective is a scalar function of one variable.
// Minimizers may call it any number of times; it must be deterministic.
type Objective func(x float64) float64

// Estimate is a solved parameter estimate.
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Estimator accumulates measurement information and solves for parameters.
type Estimator interface {
	// Dim returns the parameter dimension
	Dim() int
	// Update adds a single weighted scalar measurement
	Update(m float64, jac mat.Vector, weight float64) error
	// Solve solves the accumulated system for the parameter estimate
	Solve() (Estimate, error)
}

// Noise is measurement noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset() error
}
