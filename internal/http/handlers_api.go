package http

import (
	"math"
	"net/http"

	"econguide/internal/core"
	"econguide/internal/log"
)

// evaluateResponse.Result is null when an operation on finite operands
// overflows. Display then carries "+Inf" or "-Inf".
type evaluateResponse struct {
	A        float64  `json:"a"`
	B        float64  `json:"b"`
	Operator string   `json:"operator"`
	Name     string   `json:"name"`
	Result   *float64 `json:"result"`
	Display  string   `json:"display"`
}

// classifyResponse.Net is null when income minus expenses overflows, with
// NetDisplay carrying "+Inf" or "-Inf". The band is still reported.
type classifyResponse struct {
	Income     float64  `json:"income"`
	Expenses   float64  `json:"expenses"`
	Net        *float64 `json:"net"`
	NetDisplay string   `json:"net_display"`
	Band       string   `json:"band"`
	Message    string   `json:"message"`
	Advice     string   `json:"advice"`
	Severity   string   `json:"severity"`
}

type topicSummary struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Icon     string `json:"icon,omitempty"`
	Position int    `json:"position"`
	Status   string `json:"status"`
	Widget   string `json:"widget,omitempty"`
}

func (s *Server) handleAPITopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.catalog.ListTopics(r.Context())
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	out := make([]topicSummary, 0, len(topics))
	for _, t := range topics {
		out = append(out, topicSummary{
			Slug:     t.Slug,
			Title:    t.Title,
			Icon:     t.Icon,
			Position: t.Position,
			Status:   string(t.Status),
			Widget:   string(t.Widget),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": out})
}

func (s *Server) handleAPITopic(w http.ResponseWriter, r *http.Request) {
	topic, err := s.catalog.GetTopic(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (s *Server) handleAPIEvaluate(w http.ResponseWriter, r *http.Request) {
	in, err := ParseCalculationInput(NewRequestBodyParser(r))
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	calc := s.calc.Evaluate(r.Context(), in.A, in.B, in.Operator)
	if !calc.OK() {
		s.apiFailure(w, r, calc.Err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{
		A:        calc.A,
		B:        calc.B,
		Operator: calc.Operator.Symbol(),
		Name:     calc.Operator.Name(),
		Result:   finite(calc.Result),
		Display:  core.FormatResult(calc.Result),
	})
}

func (s *Server) handleAPIClassify(w http.ResponseWriter, r *http.Request) {
	in, err := ParseClassificationInput(NewRequestBodyParser(r))
	if err != nil {
		s.apiFailure(w, r, err)
		return
	}
	cl := s.calc.Classify(r.Context(), in.Income, in.Expenses)
	writeJSON(w, http.StatusOK, classifyResponse{
		Income:     cl.Income,
		Expenses:   cl.Expenses,
		Net:        finite(cl.Net),
		NetDisplay: core.FormatNumber(cl.Net),
		Band:       cl.Band,
		Message:    cl.Message,
		Advice:     cl.Advice,
		Severity:   string(cl.Severity),
	})
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func (s *Server) apiFailure(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := errorCode(err); status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "API request failed", log.FieldPath, r.URL.Path, log.FieldError, err)
	}
	writeAPIError(w, err)
}
