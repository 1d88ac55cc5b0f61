package estimate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Base is base estimate
type Base struct {
	// val is estimated value
	val *mat.VecDense
	// cov is estimated covariance
	cov *mat.SymDense
}

// New returns base estimate of val with covariance cov.
// If cov is nil the estimate covariance is zero.
// It returns error if val is nil or if the dimensions of val and cov do not match.
func New(val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil {
		return nil, fmt.Errorf("invalid estimate value: %v", val)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	c := mat.NewSymDense(v.Len(), nil)
	if cov != nil {
		if cov.SymmetricDim() != v.Len() {
			return nil, fmt.Errorf("invalid dimensions. Val: %d, Cov: %d x %d", v.Len(), cov.SymmetricDim(), cov.SymmetricDim())
		}
		c.CopySym(cov)
	}

	return &Base{
		val: v,
		cov: c,
	}, nil
}

// Val returns estimated value
func (b *Base) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(b.val)

	return v
}

// Cov returns covariance estimate
func (b *Base) Cov() mat.Symmetric {
	cov := mat.NewSymDense(b.cov.SymmetricDim(), nil)
	cov.CopySym(b.cov)

	return cov
}
