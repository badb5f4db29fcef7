package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"econguide/internal/core"
)

// EventKind distinguishes calculator events from classifier events.
type EventKind string

const (
	KindEvaluate EventKind = "evaluate"
	KindClassify EventKind = "classify"
)

var ErrInvalidEvent = errors.New("invalid calculation event")

// CalculationEvent records one calculator or classifier call.
// For classify events A is the income, B the expenses and Result the net.
// A result that overflowed to an infinity is sent as zero with Overflow set,
// since JSON has no infinities.
type CalculationEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Operator  string    `json:"operator,omitempty"`
	A         float64   `json:"a"`
	B         float64   `json:"b"`
	Result    float64   `json:"result"`
	Overflow  bool      `json:"overflow,omitempty"`
	Error     string    `json:"error,omitempty"`
	Band      string    `json:"band,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvaluationEvent builds an event from a finished calculation. A failed
// calculation carries its error code and a zero result.
func NewEvaluationEvent(c core.Calculation) *CalculationEvent {
	ev := &CalculationEvent{
		ID:        uuid.NewString(),
		Kind:      KindEvaluate,
		Operator:  c.Operator.Symbol(),
		A:         c.A,
		B:         c.B,
		Error:     core.ErrorCode(c.Err),
		Timestamp: time.Now().UTC(),
	}
	if c.OK() {
		ev.setResult(c.Result)
	}
	return ev
}

func NewClassificationEvent(cl core.Classification) *CalculationEvent {
	ev := &CalculationEvent{
		ID:        uuid.NewString(),
		Kind:      KindClassify,
		A:         cl.Income,
		B:         cl.Expenses,
		Band:      cl.Band,
		Timestamp: time.Now().UTC(),
	}
	ev.setResult(cl.Net)
	return ev
}

func (e *CalculationEvent) setResult(v float64) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		e.Result, e.Overflow = 0, true
		return
	}
	e.Result = v
}

// Failed reports whether the event records a rejected calculation.
func (e *CalculationEvent) Failed() bool {
	return e.Error != ""
}

// ToJSON converts the event to JSON bytes
func (e *CalculationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// CalculationEventFromJSON decodes and validates an event.
func CalculationEventFromJSON(data []byte) (*CalculationEvent, error) {
	var ev CalculationEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (e *CalculationEvent) validate() error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("%w: id %q", ErrInvalidEvent, e.ID)
	}
	switch e.Kind {
	case KindEvaluate:
		if _, err := core.ParseOperator(e.Operator); err != nil && e.Error != core.CodeInvalidOperator {
			return fmt.Errorf("%w: operator %q", ErrInvalidEvent, e.Operator)
		}
	case KindClassify:
		if e.Band == "" {
			return fmt.Errorf("%w: missing band", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}
