package http

import (
	"net/http"

	"econguide/internal/core"
	"econguide/internal/log"
)

type calculationPartial struct {
	OK       bool
	Summary  string
	Operator string
	Name     string
	A, B     string
	Message  string
	Code     string
}

type classificationPartial struct {
	Income   string
	Expenses string
	Net      string
	Band     string
	Message  string
	Advice   string
	Severity string
}

// handleCalculate evaluates the calculator form and returns the result
// partial. Failures are 422 with the message and no number.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	in, err := ParseCalculationInput(NewRequestBodyParser(r))
	if err != nil {
		s.partialError(w, r, err)
		return
	}

	calc := s.calc.Evaluate(r.Context(), in.A, in.B, in.Operator)
	if !calc.OK() {
		s.partialError(w, r, calc.Err)
		return
	}

	body, err := s.render("calc_result.html", calculationPartial{
		OK:       true,
		Summary:  calc.Summary(),
		Operator: calc.Operator.Symbol(),
		Name:     calc.Operator.Name(),
		A:        core.FormatNumber(calc.A),
		B:        core.FormatNumber(calc.B),
	})
	if err != nil {
		s.partialError(w, r, err)
		return
	}
	resp := NewHTMXResponse().TriggerCalculated(calc.Operator.Symbol(), true)
	if calc.Overflowed() {
		resp.TriggerNotification(NotificationWarning, "The result is too large to display.", 5000)
	}
	resp.BodyHTML(body).Write(w)
}

// handleClassify classifies the income form and returns the band partial.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	in, err := ParseClassificationInput(NewRequestBodyParser(r))
	if err != nil {
		s.partialError(w, r, err)
		return
	}

	cl := s.calc.Classify(r.Context(), in.Income, in.Expenses)
	body, err := s.render("classify_result.html", classificationPartial{
		Income:   core.FormatNumber(cl.Income),
		Expenses: core.FormatNumber(cl.Expenses),
		Net:      core.FormatNumber(cl.Net),
		Band:     cl.Band,
		Message:  cl.Message,
		Advice:   cl.Advice,
		Severity: string(cl.Severity),
	})
	if err != nil {
		s.partialError(w, r, err)
		return
	}
	NewHTMXResponse().
		TriggerClassified(cl.Band).
		BodyHTML(body).
		Write(w)
}

// partialError renders the error block for the widgets. The number is never
// part of it.
func (s *Server) partialError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorCode(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Widget rendering failed",
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
	}

	msg := userMessage(err)
	resp := NewHTMXResponse().Status(status)
	if body, rerr := s.render("calc_result.html", calculationPartial{Message: msg, Code: code}); rerr == nil {
		resp.BodyHTML(body)
	} else {
		resp = ErrorResponse(status, msg)
	}
	resp.TriggerErrorNotification(msg).Write(w)
}
