// Package wls implements an incremental weighted least squares estimator.
// Measurements and priors are accumulated in information form: an inverse
// covariance (information) matrix and an information vector. The accumulated
// system is solved via SVD, which keeps the solve well defined even when the
// system is rank deficient.
package wls

import (
	"errors"
	"fmt"

	fit "github.com/milosgajdos/go-fit"
	"github.com/milosgajdos/go-fit/estimate"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimensionMismatch is returned when supplied vector or matrix
	// dimensions do not match the estimator dimension.
	ErrDimensionMismatch = errors.New("wls: dimension mismatch")
	// ErrInvalidPrior is returned when a negative prior strength is supplied.
	ErrInvalidPrior = errors.New("wls: invalid prior")
	// ErrStaleEstimate is returned when reading the estimate before Solve has
	// been called, or after the system has been modified since the last Solve.
	ErrStaleEstimate = errors.New("wls: stale estimate")
)

// WLS is an incremental weighted least squares estimator.
// The zero value is not usable; use New or NewWithPrior.
// WLS must not be copied by assignment: its accumulators are shared between
// copies. Use Clone for a deliberate deep copy.
type WLS struct {
	// dim is the parameter dimension
	dim int
	// cInv is the accumulated inverse covariance (information) matrix
	cInv *mat.SymDense
	// vec is the accumulated information vector
	vec *mat.VecDense
	// mu is the solved parameter estimate
	mu *mat.VecDense
	// svd is the decomposition of cInv; recomputed by every Solve
	svd mat.SVD
	// rcond is the relative singular value truncation threshold used by Solve
	rcond float64
	// solved marks mu and svd valid for the current accumulator state
	solved bool
}

// New creates a new WLS estimator of the given parameter dimension with no
// regularisation prior and returns it.
// It returns error if dim is not a positive integer.
func New(dim int) (*WLS, error) {
	return NewWithPrior(dim, 0)
}

// NewWithPrior creates a new WLS estimator of the given parameter dimension
// and applies a constant regularisation prior: a Gaussian belief that all
// parameters are zero with variance 1/prior.
// It returns error if dim is not a positive integer or if prior is negative.
func NewWithPrior(dim int, prior float64) (*WLS, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dimension %d", ErrDimensionMismatch, dim)
	}

	w := &WLS{
		dim:  dim,
		cInv: mat.NewSymDense(dim, nil),
		vec:  mat.NewVecDense(dim, nil),
		mu:   mat.NewVecDense(dim, nil),
	}

	if err := w.Clear(prior); err != nil {
		return nil, err
	}

	return w, nil
}

// Clear resets all accumulated measurements and applies a constant
// regularisation prior: the inverse covariance becomes prior times identity
// and the information vector becomes zero. The current estimate is
// invalidated.
// It returns error if prior is negative.
func (w *WLS) Clear(prior float64) error {
	if prior < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrior, prior)
	}

	for i := 0; i < w.dim; i++ {
		w.cInv.SetSym(i, i, prior)
		for j := i + 1; j < w.dim; j++ {
			w.cInv.SetSym(i, j, 0)
		}
		w.vec.SetVec(i, 0)
	}
	w.solved = false

	return nil
}

// Dim returns the parameter dimension of the estimator.
func (w *WLS) Dim() int {
	return w.dim
}

// AddPrior applies a constant regularisation term: v is added to every
// diagonal entry of the inverse covariance. It equates to a prior that says
// all the parameters are zero with variance 1/v.
func (w *WLS) AddPrior(v float64) {
	for i := 0; i < w.dim; i++ {
		w.cInv.SetSym(i, i, w.cInv.At(i, i)+v)
	}
	w.solved = false
}

// AddPriorDiag applies a regularisation term with a different strength for
// each parameter: v[i] is added to diagonal entry i of the inverse
// covariance.
// It returns error if the length of v does not match the estimator dimension.
func (w *WLS) AddPriorDiag(v mat.Vector) error {
	if v == nil || v.Len() != w.dim {
		return fmt.Errorf("%w: prior vector length %d, estimator dimension %d", ErrDimensionMismatch, vecLen(v), w.dim)
	}

	for i := 0; i < w.dim; i++ {
		w.cInv.SetSym(i, i, w.cInv.At(i, i)+v.AtVec(i))
	}
	w.solved = false

	return nil
}

// AddPriorSym applies a whole-matrix regularisation term: m is added to the
// inverse covariance directly, allowing correlated priors.
// It returns error if the dimensions of m do not match the estimator
// dimension.
func (w *WLS) AddPriorSym(m mat.Symmetric) error {
	if m == nil || m.SymmetricDim() != w.dim {
		return fmt.Errorf("%w: prior matrix dimension %d, estimator dimension %d", ErrDimensionMismatch, symDim(m), w.dim)
	}

	w.cInv.AddSym(w.cInv, m)
	w.solved = false

	return nil
}

// Update adds a single scalar measurement m with Jacobian jac and inverse
// variance weight: the inverse covariance gains the weighted outer product
// of jac with itself and the information vector gains weight*m*jac.
// It returns error if the length of jac does not match the estimator
// dimension.
func (w *WLS) Update(m float64, jac mat.Vector, weight float64) error {
	if jac == nil || jac.Len() != w.dim {
		return fmt.Errorf("%w: jacobian length %d, estimator dimension %d", ErrDimensionMismatch, vecLen(jac), w.dim)
	}

	for i := 0; i < w.dim; i++ {
		jwi := jac.AtVec(i) * weight
		w.vec.SetVec(i, w.vec.AtVec(i)+jwi*m)
		for j := i; j < w.dim; j++ {
			w.cInv.SetSym(i, j, w.cInv.At(i, j)+jwi*jac.AtVec(j))
		}
	}
	w.solved = false

	return nil
}

// UpdateBatch adds a block of correlated measurements m with Jacobian jac
// (dim x len(m)) and measurement inverse covariance invCov: the inverse
// covariance gains jac*invCov*jacT and the information vector gains
// jac*invCov*m. With a diagonal invCov this is equivalent to the
// corresponding sequence of single measurement Updates, but it handles
// correlated measurement noise directly and is much more efficient.
// It returns error if the dimensions of m, jac and invCov are inconsistent
// with each other or with the estimator dimension.
func (w *WLS) UpdateBatch(m mat.Vector, jac mat.Matrix, invCov mat.Symmetric) error {
	if m == nil || jac == nil || invCov == nil {
		return fmt.Errorf("%w: nil measurement block", ErrDimensionMismatch)
	}

	rows, cols := jac.Dims()
	if rows != w.dim {
		return fmt.Errorf("%w: jacobian rows %d, estimator dimension %d", ErrDimensionMismatch, rows, w.dim)
	}
	if m.Len() != cols || invCov.SymmetricDim() != cols {
		return fmt.Errorf("%w: measurements %d, jacobian cols %d, invCov dimension %d", ErrDimensionMismatch, m.Len(), cols, invCov.SymmetricDim())
	}

	jw := &mat.Dense{}
	jw.Mul(jac, invCov)

	jwj := &mat.Dense{}
	jwj.Mul(jw, jac.T())

	// fold the product into the symmetric accumulator; the off-diagonal
	// pair is averaged so floating point noise cannot break symmetry
	for i := 0; i < w.dim; i++ {
		for j := i; j < w.dim; j++ {
			w.cInv.SetSym(i, j, w.cInv.At(i, j)+(jwj.At(i, j)+jwj.At(j, i))/2)
		}
	}

	jwm := &mat.VecDense{}
	jwm.MulVec(jw, m)
	w.vec.AddVec(w.vec, jwm)
	w.solved = false

	return nil
}

// Combine merges the measurements accumulated by other into w by adding its
// inverse covariance and information vector. Information contributions from
// independent measurement sets are additive, so disjoint subsets may be
// accumulated in separate estimators without synchronisation and merged
// afterwards; Combine is commutative and associative over the accumulator
// pair.
// It returns error if the estimator dimensions differ.
func (w *WLS) Combine(other *WLS) error {
	if other == nil || other.dim != w.dim {
		return fmt.Errorf("%w: estimator dimensions %d and %d", ErrDimensionMismatch, w.dim, otherDim(other))
	}

	w.cInv.AddSym(w.cInv, other.cInv)
	w.vec.AddVec(w.vec, other.vec)
	w.solved = false

	return nil
}

// Solve factorizes the accumulated inverse covariance via SVD and
// back-substitutes the information vector through its pseudo-inverse to
// obtain the parameter estimate. Singular values not exceeding
// rcond times the largest singular value are truncated; the default rcond
// of zero drops only exactly zero singular values, so a near-singular
// system yields a large, ill-conditioned estimate rather than an error.
// Callers guarding against rank deficiency should set a positive rcond via
// SetRCond or inspect SingularValues.
// It returns the estimate together with its covariance, the pseudo-inverse
// of the accumulated inverse covariance.
// It returns error if the SVD factorization fails to converge.
func (w *WLS) Solve() (fit.Estimate, error) {
	if ok := w.svd.Factorize(w.cInv, mat.SVDFull); !ok {
		return nil, fmt.Errorf("wls: SVD factorization failed")
	}

	vals := w.svd.Values(nil)

	rank := 0
	threshold := w.rcond * vals[0]
	for _, sv := range vals {
		if sv > threshold {
			rank++
		}
	}

	cov := mat.NewSymDense(w.dim, nil)

	// rank 0 means the system carries no information at all: the
	// pseudo-inverse is zero and so is the estimate
	if rank == 0 {
		w.mu.Zero()
		w.solved = true
		return estimate.New(w.mu, cov)
	}

	u, v := &mat.Dense{}, &mat.Dense{}
	w.svd.UTo(u)
	w.svd.VTo(v)

	d := make([]float64, rank)
	for i := 0; i < rank; i++ {
		d[i] = 1 / vals[i]
	}

	// pinv(cInv) = V_r * diag(1/s_r) * U_rT
	vd := &mat.Dense{}
	vd.Mul(v.Slice(0, w.dim, 0, rank), mat.NewDiagDense(rank, d))
	pinv := &mat.Dense{}
	pinv.Mul(vd, u.Slice(0, w.dim, 0, rank).T())

	w.mu.MulVec(pinv, w.vec)

	for i := 0; i < w.dim; i++ {
		for j := i; j < w.dim; j++ {
			cov.SetSym(i, j, (pinv.At(i, j)+pinv.At(j, i))/2)
		}
	}

	w.solved = true

	return estimate.New(w.mu, cov)
}

// Mu returns the solved parameter estimate.
// It returns error if the system has not been solved yet or has been
// modified since the last Solve.
func (w *WLS) Mu() (mat.Vector, error) {
	if !w.solved {
		return nil, ErrStaleEstimate
	}

	mu := &mat.VecDense{}
	mu.CloneFromVec(w.mu)

	return mu, nil
}

// SingularValues returns the singular values of the inverse covariance in
// descending order, as computed by the last Solve. Near-zero values signal a
// rank deficient system.
// It returns error if the system has not been solved yet or has been
// modified since the last Solve.
func (w *WLS) SingularValues() ([]float64, error) {
	if !w.solved {
		return nil, ErrStaleEstimate
	}

	return w.svd.Values(nil), nil
}

// Rank returns the number of singular values exceeding rcond times the
// largest singular value, as computed by the last Solve.
// It returns error if the system has not been solved yet or has been
// modified since the last Solve.
func (w *WLS) Rank() (int, error) {
	if !w.solved {
		return 0, ErrStaleEstimate
	}

	vals := w.svd.Values(nil)
	threshold := w.rcond * vals[0]

	rank := 0
	for _, sv := range vals {
		if sv > threshold {
			rank++
		}
	}

	return rank, nil
}

// Decomposition returns the SVD of the inverse covariance as computed by
// the last Solve. The decomposition is owned by the estimator and must be
// treated as read only; it is recomputed by every Solve.
// It returns error if the system has not been solved yet or has been
// modified since the last Solve.
func (w *WLS) Decomposition() (*mat.SVD, error) {
	if !w.solved {
		return nil, ErrStaleEstimate
	}

	return &w.svd, nil
}

// RCond returns the relative singular value truncation threshold.
func (w *WLS) RCond() float64 {
	return w.rcond
}

// SetRCond sets the relative singular value truncation threshold used by
// Solve: singular values not exceeding rcond times the largest singular
// value are treated as zero.
// It returns error if rcond is negative.
func (w *WLS) SetRCond(rcond float64) error {
	if rcond < 0 {
		return fmt.Errorf("wls: invalid rcond: %v", rcond)
	}
	w.rcond = rcond

	return nil
}

// InvCov returns a copy of the accumulated inverse covariance matrix.
func (w *WLS) InvCov() mat.Symmetric {
	cInv := mat.NewSymDense(w.dim, nil)
	cInv.CopySym(w.cInv)

	return cInv
}

// SetInvCov sets the accumulated inverse covariance matrix to cInv and
// invalidates the current estimate.
// It returns error if cInv is nil or its dimensions do not match the
// estimator dimension.
func (w *WLS) SetInvCov(cInv mat.Symmetric) error {
	if cInv == nil || cInv.SymmetricDim() != w.dim {
		return fmt.Errorf("%w: matrix dimension %d, estimator dimension %d", ErrDimensionMismatch, symDim(cInv), w.dim)
	}

	w.cInv.CopySym(cInv)
	w.solved = false

	return nil
}

// InfoVector returns a copy of the accumulated information vector.
func (w *WLS) InfoVector() mat.Vector {
	vec := &mat.VecDense{}
	vec.CloneFromVec(w.vec)

	return vec
}

// SetInfoVector sets the accumulated information vector to v and invalidates
// the current estimate.
// It returns error if v is nil or its length does not match the estimator
// dimension.
func (w *WLS) SetInfoVector(v mat.Vector) error {
	if v == nil || v.Len() != w.dim {
		return fmt.Errorf("%w: vector length %d, estimator dimension %d", ErrDimensionMismatch, vecLen(v), w.dim)
	}

	w.vec.CloneFromVec(v)
	w.solved = false

	return nil
}

// Clone returns a deep copy of the estimator accumulators and configuration.
// The clone is returned unsolved; call Solve on it before reading its
// estimate. Clone is the only supported way of duplicating an estimator.
func (w *WLS) Clone() *WLS {
	c := &WLS{
		dim:    w.dim,
		cInv:   mat.NewSymDense(w.dim, nil),
		vec:    mat.NewVecDense(w.dim, nil),
		mu:     mat.NewVecDense(w.dim, nil),
		rcond:  w.rcond,
		solved: false,
	}
	c.cInv.CopySym(w.cInv)
	c.vec.CloneFromVec(w.vec)
	c.mu.CloneFromVec(w.mu)

	return c
}

func vecLen(v mat.Vector) int {
	if v == nil {
		return 0
	}
	return v.Len()
}

func symDim(m mat.Symmetric) int {
	if m == nil {
		return 0
	}
	return m.SymmetricDim()
}

func otherDim(w *WLS) int {
	if w == nil {
		return 0
	}
	return w.dim
}
