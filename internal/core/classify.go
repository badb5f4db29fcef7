package core

import "strings"

// Severity selects how a classification is presented.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Band labels
const (
	BandSurplus      = "Surplus"
	BandSmallSurplus = "Small Surplus"
	BandDeficit      = "Deficit"
)

// Band is one labelled range of net values. A net value belongs to the band
// when it is strictly greater than Above; the last band has no lower bound.
type Band struct {
	Label    string
	Above    float64
	Bounded  bool
	Template string // {net} is replaced with the formatted net value
	Advice   string
	Severity Severity
}

// Matches reports whether net falls in b, ignoring the bands before it.
func (b Band) Matches(net float64) bool {
	return !b.Bounded || net > b.Above
}

// bands are evaluated top-down and the first match wins. Bounds are
// contiguous, so exactly one band matches every real net value.
var bands = []Band{
	{
		Label:    BandSurplus,
		Above:    2000,
		Bounded:  true,
		Template: "Excellent — surplus of {net}; recommend saving/investing.",
		Advice:   "You can save and invest.",
		Severity: SeveritySuccess,
	},
	{
		Label:    BandSmallSurplus,
		Above:    0,
		Bounded:  true,
		Template: "Good — small surplus of {net}; increase savings.",
		Advice:   "Try to increase your savings.",
		Severity: SeverityWarning,
	},
	{
		Label:    BandDeficit,
		Template: "Warning — deficit of {net}; review expenses.",
		Advice:   "Review your expenses.",
		Severity: SeverityError,
	},
}

// Bands returns a copy of the classification table in evaluation order.
func Bands() []Band {
	return append([]Band(nil), bands...)
}

// Classification is the outcome of Classify.
type Classification struct {
	Income   float64
	Expenses float64
	Net      float64
	Band     string
	Message  string
	Advice   string
	Severity Severity
}

// Classify computes income minus expenses and places the net value in its band.
// Negative inputs are accepted and simply propagate into the net value.
func Classify(income, expenses float64) Classification {
	net := income - expenses
	b := bandFor(net)
	return Classification{
		Income:   income,
		Expenses: expenses,
		Net:      net,
		Band:     b.Label,
		Message:  strings.ReplaceAll(b.Template, "{net}", FormatNumber(net)),
		Advice:   b.Advice,
		Severity: b.Severity,
	}
}

func bandFor(net float64) Band {
	for _, b := range bands {
		if b.Matches(net) {
			return b
		}
	}
	// unreachable: the last band is unbounded
	return bands[len(bands)-1]
}
