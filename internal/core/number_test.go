package core

import (
	"math"
	"testing"
)

func TestParseOperand(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"100", 100, true},
		{"100.0", 100, true},
		{" 20 ", 20, true},
		{"-2.5", -2.5, true},
		{"+3", 3, true},
		{"1,25", 1.25, true},
		{".5", 0.5, true},
		{"0", 0, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1,2.3", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
		{"1e3", 0, false},
		{"0x10", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseOperand(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %v", tc.in, got)
		}
	}
}

func TestFormatResult(t *testing.T) {
	cases := map[float64]string{
		120:          "120.00",
		5:            "5.00",
		3.14159:      "3.14",
		2.005:        "2.00", // binary representation is just below 2.005
		-0.004:       "0.00",
		0.3333333333: "0.33",
	}
	for in, want := range cases {
		if got := FormatResult(in); got != want {
			t.Fatalf("FormatResult(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		2000:   "2000",
		2500.5: "2500.5",
		-500:   "-500",
		0.1:    "0.1",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
	negZero := math.Copysign(0, -1)
	if got := FormatNumber(negZero); got != "0" {
		t.Fatalf("negative zero rendered as %q", got)
	}
}
