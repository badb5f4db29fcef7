package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrDivisionByZero, CodeDivisionByZero},
		{fmt.Errorf("evaluate: %w", ErrInvalidOperator), CodeInvalidOperator},
		{fmt.Errorf("%w: 10 ^ 400 overflows", ErrUndefinedPower), CodeUndefinedPower},
		{ErrInvalidOperand, CodeInvalidInput},
		{errors.New("anything else"), CodeInvalidInput},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Fatalf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
