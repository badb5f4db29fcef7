package core

import (
	"fmt"
	"strings"
)

// Operator is one of the arithmetic operators the calculator understands.
// The zero value is not a valid operator.
type Operator string

const (
	Add           Operator = "+"
	Subtract      Operator = "-"
	Multiply      Operator = "*"
	Divide        Operator = "/"
	Power         Operator = "^"
	Modulo        Operator = "%"
	IntegerDivide Operator = "//"
)

var operatorNames = map[Operator]string{
	Add:           "Addition",
	Subtract:      "Subtraction",
	Multiply:      "Multiplication",
	Divide:        "Division",
	Power:         "Exponentiation",
	Modulo:        "Remainder",
	IntegerDivide: "Integer Division",
}

// Operators returns the supported operators in menu order.
func Operators() []Operator {
	return []Operator{Add, Subtract, Multiply, Divide, Power, Modulo, IntegerDivide}
}

// ParseOperator maps a literal token such as "//" to its Operator.
func ParseOperator(token string) (Operator, error) {
	op := Operator(strings.TrimSpace(token))
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, token)
	}
	return op, nil
}

// Valid reports whether op belongs to the supported set.
func (op Operator) Valid() bool {
	_, ok := operatorNames[op]
	return ok
}

// Symbol returns the literal token for op.
func (op Operator) Symbol() string {
	return string(op)
}

// Name returns the label shown next to a result, e.g. "Integer Division".
func (op Operator) Name() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return "Unknown"
}

// String implements fmt.Stringer
func (op Operator) String() string {
	return string(op)
}
