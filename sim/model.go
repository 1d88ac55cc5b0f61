package sim

import (
	"fmt"

	fit "github.com/milosgajdos/go-fit"
	"github.com/milosgajdos/go-fit/noise"
	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Linear is a linear measurement model: it observes parameters x as
// y = J*x + e for a fixed measurement Jacobian J and noise e.
type Linear struct {
	// j is the measurement Jacobian
	j *mat.Dense
	// n is the measurement noise
	n fit.Noise
}

// NewLinear creates a new linear measurement model with Jacobian j and
// measurement noise n. If n is nil the model is noiseless.
// It returns error if j is nil or if the noise dimension does not match the
// number of rows of j.
func NewLinear(j *mat.Dense, n fit.Noise) (*Linear, error) {
	if j == nil {
		return nil, fmt.Errorf("invalid measurement Jacobian: %v", j)
	}

	ny, _ := j.Dims()

	if n == nil {
		none, err := noise.NewNone(ny)
		if err != nil {
			return nil, err
		}
		n = none
	}

	if n.Cov().SymmetricDim() != ny {
		return nil, fmt.Errorf("invalid noise dimension: %d != %d", n.Cov().SymmetricDim(), ny)
	}

	return &Linear{
		j: j,
		n: n,
	}, nil
}

// NewDirect creates a linear measurement model which observes every
// parameter directly: its Jacobian is the identity matrix of the given
// dimension. If n is nil the model is noiseless.
// It returns error if dim is not a positive integer.
func NewDirect(dim int, n fit.Noise) (*Linear, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid model dimension: %d", dim)
	}

	eye, err := matrix.NewDenseValIdentity(dim, 1.0)
	if err != nil {
		return nil, err
	}

	return NewLinear(eye, n)
}

// Dims returns the parameter and measurement dimensions of the model.
func (l *Linear) Dims() (nx, ny int) {
	ny, nx = l.j.Dims()
	return nx, ny
}

// Jacobian returns the model measurement Jacobian.
func (l *Linear) Jacobian() mat.Matrix {
	j := &mat.Dense{}
	j.CloneFrom(l.j)

	return j
}

// Noise returns the model measurement noise.
func (l *Linear) Noise() fit.Noise {
	return l.n
}

// Observe produces one noisy measurement vector of the parameters x.
// It returns error if the length of x does not match the model parameter
// dimension.
func (l *Linear) Observe(x mat.Vector) (mat.Vector, error) {
	ny, nx := l.j.Dims()

	if x == nil || x.Len() != nx {
		return nil, fmt.Errorf("invalid parameter vector: %v", x)
	}

	y := mat.NewVecDense(ny, nil)
	y.MulVec(l.j, x)
	y.AddVec(y, l.n.Sample())

	return y, nil
}

// ObserveN produces n noisy measurement vectors of the parameters x and
// returns them stored in the columns of the output matrix.
// It returns error if n is not a positive integer or if the length of x
// does not match the model parameter dimension.
func (l *Linear) ObserveN(x mat.Vector, n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of measurements: %d", n)
	}

	ny, _ := l.j.Dims()
	out := mat.NewDense(ny, n, nil)

	for i := 0; i < n; i++ {
		y, err := l.Observe(x)
		if err != nil {
			return nil, err
		}
		out.SetCol(i, mat.Col(nil, 0, y))
	}

	return out, nil
}
