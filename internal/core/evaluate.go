// Package core holds the calculator and classifier rules together with the
// curriculum types shared by every backend and front end.
//
// Nothing in this package performs I/O or keeps state; every function may be
// called concurrently.
package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrInvalidOperator = errors.New("invalid operator")
	ErrUndefinedPower  = errors.New("power has no real result")
)

// Evaluate applies op to a and b.
//
// Division, modulo and integer division by zero fail with ErrDivisionByZero.
// Modulo follows the floored convention, so the remainder takes the sign of
// the divisor. Power fails with ErrUndefinedPower when the result is not a
// finite real number, e.g. a negative base with a fractional exponent.
func Evaluate(a, b float64, op Operator) (float64, error) {
	switch op {
	case Add:
		return a + b, nil
	case Subtract:
		return a - b, nil
	case Multiply:
		return a * b, nil
	case Divide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case Power:
		return pow(a, b)
	case Modulo:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return floorMod(a, b), nil
	case IntegerDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return floorDiv(a, b), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, string(op))
	}
}

func pow(a, b float64) (float64, error) {
	if a == 0 && b < 0 {
		return 0, ErrDivisionByZero
	}
	r := math.Pow(a, b)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: %g ^ %g", ErrUndefinedPower, a, b)
	}
	return r, nil
}

// floorMod returns a - b*floor(a/b) computed without the rounding loss of the
// direct formula.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// floorDiv returns floor(a/b) for the exact quotient of the stored operands.
// It is derived from the floored remainder so that floorDiv(a, b)*b +
// floorMod(a, b) stays close to a. Rounding a/b first would give 10 for
// 1 // 0.1 instead of 9.
func floorDiv(a, b float64) float64 {
	mod := math.Mod(a, b)
	div := (a - mod) / b
	if mod != 0 && (mod < 0) != (b < 0) {
		div--
	}
	if div == 0 {
		return math.Copysign(0, a/b)
	}
	q := math.Floor(div)
	if div-q > 0.5 {
		q++
	}
	return q
}

// Calculation is a single calculator request together with its outcome.
// Exactly one of Result and Err is meaningful.
type Calculation struct {
	A, B     float64
	Operator Operator
	Result   float64
	Err      error
}

// Calculate evaluates a and b and packages the outcome.
func Calculate(a, b float64, op Operator) Calculation {
	res, err := Evaluate(a, b, op)
	return Calculation{A: a, B: b, Operator: op, Result: res, Err: err}
}

// OK reports whether the calculation produced a number.
func (c Calculation) OK() bool {
	return c.Err == nil
}

// Overflowed reports whether finite operands produced an infinite result,
// e.g. 1e308 * 10.
func (c Calculation) Overflowed() bool {
	return c.Err == nil && math.IsInf(c.Result, 0)
}

// Summary renders the result line shown to the user, e.g.
// "Result of Division: 5.00". Failed calculations render an empty string so
// no misleading number can reach the page. An overflowed result is reported
// as too large instead of as +Inf.
func (c Calculation) Summary() string {
	switch {
	case c.Err != nil:
		return ""
	case c.Overflowed():
		return fmt.Sprintf("Result of %s: too large to display", c.Operator.Name())
	}
	return fmt.Sprintf("Result of %s: %s", c.Operator.Name(), FormatResult(c.Result))
}
