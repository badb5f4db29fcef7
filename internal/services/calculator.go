package services

import (
	"context"
	"sync/atomic"

	"econguide/internal/amqp"
	"econguide/internal/core"
	"econguide/internal/log"
)

// EventPublisher is the outbound port for calculation events.
type EventPublisher interface {
	PublishCalculation(ctx context.Context, ev *amqp.CalculationEvent) error
}

// Calculator runs calculator and classifier requests for every front end.
// Results never depend on the publisher: a failed publish is logged and
// counted, nothing more.
type Calculator struct {
	publisher EventPublisher
	logger    *log.StructuredLogger

	evaluations   atomic.Int64
	failures      atomic.Int64
	classifies    atomic.Int64
	publishErrors atomic.Int64
}

// NewCalculator creates a calculator. publisher and logger may be nil.
func NewCalculator(publisher EventPublisher, logger *log.Logger) *Calculator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Calculator{
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentCalculator)),
	}
}

// Evaluate applies op to a and b. The returned Calculation carries either a
// result or the error; it is never both.
func (s *Calculator) Evaluate(ctx context.Context, a, b float64, op core.Operator) core.Calculation {
	calc := core.Calculate(a, b, op)
	s.evaluations.Add(1)
	if !calc.OK() {
		s.failures.Add(1)
	}

	fields := log.NewFields().WithCalculation(op.Symbol(), a, b)
	switch {
	case calc.Overflowed():
		fields[log.FieldResult] = core.FormatNumber(calc.Result)
	case calc.OK():
		fields[log.FieldResult] = calc.Result
	default:
		fields[log.FieldErrorCode] = core.ErrorCode(calc.Err)
	}
	s.logger.LogCalculation(ctx, log.OpEvaluate, fields, calc.Err)

	s.publish(ctx, amqp.NewEvaluationEvent(calc))
	return calc
}

// Classify computes the net balance of income and expenses and its band.
func (s *Calculator) Classify(ctx context.Context, income, expenses float64) core.Classification {
	cl := core.Classify(income, expenses)
	s.classifies.Add(1)

	s.logger.LogCalculation(ctx, log.OpClassify,
		log.NewFields().WithClassification(cl.Income, cl.Expenses, cl.Net, cl.Band), nil)

	s.publish(ctx, amqp.NewClassificationEvent(cl))
	return cl
}

func (s *Calculator) publish(ctx context.Context, ev *amqp.CalculationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCalculation(ctx, ev); err != nil {
		s.publishErrors.Add(1)
		s.logger.LogError(ctx, "Failed to publish calculation event", err, log.OpPublish,
			log.NewFields().WithEventID(ev.ID))
	}
}

// Stats is a point-in-time view of the calculator counters.
type Stats struct {
	Evaluations   int64
	Failures      int64
	Classifies    int64
	PublishErrors int64
}

func (s *Calculator) Stats() Stats {
	return Stats{
		Evaluations:   s.evaluations.Load(),
		Failures:      s.failures.Load(),
		Classifies:    s.classifies.Load(),
		PublishErrors: s.publishErrors.Load(),
	}
}
