// Package core provides operand parsing and number formatting.
//
// This file contains the conversions between user-typed strings and the
// float64 operands used by the calculator and the classifier.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidOperand = errors.New("invalid operand")

// ParseOperand converts user input to a finite number.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional sign. Empty input, more than one separator, NaN and infinities are
// rejected with ErrInvalidOperand.
//
// Examples:
//
//	ParseOperand("100")    -> 100, nil
//	ParseOperand("-2,5")   -> -2.5, nil
//	ParseOperand("1.2.3")  -> 0, ErrInvalidOperand
//	ParseOperand("Inf")    -> 0, ErrInvalidOperand
func ParseOperand(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidOperand
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidOperand
	}
	for _, r := range s {
		// Rejects the spellings ParseFloat would otherwise accept: inf, nan, hex, exponents.
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return 0, ErrInvalidOperand
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidOperand
	}
	return v, nil
}

// FormatResult renders v with two decimals for display. The stored result is
// never rounded.
func FormatResult(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// FormatNumber renders the shortest decimal that represents v exactly,
// e.g. 2000 -> "2000" and 2500.5 -> "2500.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(normalizeZero(v), 'f', -1, 64)
}

func normalizeZero(v float64) float64 {
	if v == 0 {
		return 0 // drop the sign of -0
	}
	return v
}
