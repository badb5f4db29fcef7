package core

import "errors"

// Stable failure codes shared by the JSON API and calculation events.
const (
	CodeDivisionByZero  = "division_by_zero"
	CodeInvalidOperator = "invalid_operator"
	CodeUndefinedPower  = "undefined_power"
	CodeInvalidInput    = "invalid_input"
)

// ErrorCode maps an error returned by this package to its stable code.
// Unrecognized errors map to CodeInvalidInput; nil maps to "".
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDivisionByZero):
		return CodeDivisionByZero
	case errors.Is(err, ErrInvalidOperator):
		return CodeInvalidOperator
	case errors.Is(err, ErrUndefinedPower):
		return CodeUndefinedPower
	default:
		return CodeInvalidInput
	}
}
