// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request data.
// Calculator and classifier inputs arrive either as HTMX form posts or as
// JSON bodies on the API, and both go through the same parser.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"econguide/internal/core"
)

// maxBodyBytes bounds every request body the parser reads.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: body exceeds %d bytes", errMalformedBody, maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data. Errors wrap
// errMalformedBody.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(body, "{") || strings.Contains(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(body), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
			return p.err
		}
		return nil
	}

	form, err := url.ParseQuery(body)
	if err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// CalculationInput is a parsed calculator request.
type CalculationInput struct {
	A, B     float64
	Operator core.Operator
}

// ClassificationInput is a parsed classifier request.
type ClassificationInput struct {
	Income, Expenses float64
}

// ParseCalculationInput reads a, b and op. Operand problems come back as
// core.ErrInvalidOperand, operator problems as core.ErrInvalidOperator.
func ParseCalculationInput(p *RequestBodyParser) (CalculationInput, error) {
	if err := p.Parse(); err != nil {
		return CalculationInput{}, err
	}
	a, err := parseField(p, "a")
	if err != nil {
		return CalculationInput{}, err
	}
	b, err := parseField(p, "b")
	if err != nil {
		return CalculationInput{}, err
	}
	op, err := core.ParseOperator(p.Get("op"))
	if err != nil {
		return CalculationInput{}, err
	}
	return CalculationInput{A: a, B: b, Operator: op}, nil
}

// ParseClassificationInput reads income and expenses.
func ParseClassificationInput(p *RequestBodyParser) (ClassificationInput, error) {
	if err := p.Parse(); err != nil {
		return ClassificationInput{}, err
	}
	income, err := parseField(p, "income")
	if err != nil {
		return ClassificationInput{}, err
	}
	expenses, err := parseField(p, "expenses")
	if err != nil {
		return ClassificationInput{}, err
	}
	return ClassificationInput{Income: income, Expenses: expenses}, nil
}

func parseField(p *RequestBodyParser, key string) (float64, error) {
	v, err := core.ParseOperand(p.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
