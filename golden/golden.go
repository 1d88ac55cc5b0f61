// Package golden implements golden section line minimization of a scalar
// function inside a bracketing interval.
package golden

import (
	"errors"
	"fmt"
	"math"

	fit "github.com/milosgajdos/go-fit"
)

// ErrInvalidBracket is returned when the bracket points are not strictly
// ordered a < b < c.
var ErrInvalidBracket = errors.New("golden: invalid bracket")

// machine epsilon for float64
const eps = 0x1p-52

// golden ratio interval fraction (3 - sqrt(5))/2
var g = (3.0 - math.Sqrt(5.0)) / 2.0

// Min is a located minimum of a scalar function.
type Min struct {
	// X is the position of the minimum
	X float64
	// F is the function value at X
	F float64
}

// Search performs a golden section search minimization of f.
// The points a, b, c must bracket the minimum and be in order, so that
// a < b < c and f(a) >= f(b) <= f(c). The ordering is validated; the
// unimodality of f over the bracket is the caller's responsibility and a
// non-unimodal f yields the position of one of its local minima.
// Search evaluates f(b) once and delegates to SearchWithValue.
func Search(a, b, c float64, f fit.Objective, maxIter int, tol float64) (Min, error) {
	if a >= b || b >= c {
		return Min{}, fmt.Errorf("%w: (%v, %v, %v)", ErrInvalidBracket, a, b, c)
	}

	return SearchWithValue(a, b, c, f(b), f, maxIter, tol)
}

// SearchWithValue performs a golden section search minimization of f given
// fb, the value of f at the central bracket point b. The bracket interval
// contracts by the factor (1 - g) ~ 0.618 per iteration at the cost of
// exactly one function evaluation, until its width drops below
// tol*(|x1|+|x2|) for the current interior points x1, x2 or maxIter
// iterations have been performed. Exhausting maxIter is not an error: the
// best point found so far is returned. A non-positive tol selects the
// default sqrt of machine epsilon.
// It returns error if the bracket points are not strictly ordered a < b < c.
func SearchWithValue(a, b, c, fb float64, f fit.Objective, maxIter int, tol float64) (Min, error) {
	if a >= b || b >= c {
		return Min{}, fmt.Errorf("%w: (%v, %v, %v)", ErrInvalidBracket, a, b, c)
	}

	if tol <= 0 {
		tol = math.Sqrt(eps)
	}

	var x1, x2, fx1, fx2 float64

	// bootstrap the 3 point bracket to a 4 point layout a x1 x2 c by
	// splitting the larger half, evaluating f at the one new point only
	if math.Abs(b-a) > math.Abs(c-b) {
		x1 = b - g*(b-a)
		x2 = b

		fx1 = f(x1)
		fx2 = fb
	} else {
		x2 = b + g*(c-b)
		x1 = b

		fx1 = fb
		fx2 = f(x2)
	}

	// the bootstrap counts as the first iteration
	itnum := 1
	for math.Abs(c-a) > tol*(math.Abs(x1)+math.Abs(x2)) && itnum < maxIter {
		if fx1 > fx2 {
			// the minimum lies right of x1:
			// a  x1  x2  c  ->  x1  x2  *  c
			a = x1
			x1 = x2
			x2 = x1 + g*(c-x1)

			fx1 = fx2
			fx2 = f(x2)
		} else {
			// the minimum lies left of x2:
			// a  x1  x2  c  ->  a  *  x1  x2
			c = x2
			x2 = x1
			x1 = x2 - g*(x2-a)

			fx2 = fx1
			fx1 = f(x1)
		}
		itnum++
	}

	if fx1 < fx2 {
		return Min{X: x1, F: fx1}, nil
	}

	return Min{X: x2, F: fx2}, nil
}
