package worker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"econguide/internal/amqp"
	"econguide/internal/log"
)

// Tally aggregates calculation events in memory.
type Tally struct {
	mu         sync.Mutex
	total      int64
	byOperator map[string]int64
	byBand     map[string]int64
	byFailure  map[string]int64
	lastEvent  time.Time
}

func NewTally() *Tally {
	return &Tally{
		byOperator: map[string]int64{},
		byBand:     map[string]int64{},
		byFailure:  map[string]int64{},
	}
}

// Snapshot is a copy of the tally counters.
type Snapshot struct {
	Total      int64
	ByOperator map[string]int64
	ByBand     map[string]int64
	ByFailure  map[string]int64
	LastEvent  time.Time
}

// Add records one event.
func (t *Tally) Add(ev *amqp.CalculationEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	switch ev.Kind {
	case amqp.KindEvaluate:
		t.byOperator[ev.Operator]++
	case amqp.KindClassify:
		t.byBand[ev.Band]++
	}
	if ev.Failed() {
		t.byFailure[ev.Error]++
	}
	if ev.Timestamp.After(t.lastEvent) {
		t.lastEvent = ev.Timestamp
	}
}

func (t *Tally) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Total:      t.total,
		ByOperator: copyCounts(t.byOperator),
		ByBand:     copyCounts(t.byBand),
		ByFailure:  copyCounts(t.byFailure),
		LastEvent:  t.lastEvent,
	}
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FormatCounts renders counts as "k=v" pairs sorted by key, e.g. "+=3 /=1".
func FormatCounts(m map[string]int64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

// Reporter consumes events into a Tally and logs it periodically.
type Reporter struct {
	tally    *Tally
	interval time.Duration
	logger   *log.Logger
}

func NewReporter(tally *Tally, interval time.Duration, logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Reporter{
		tally:    tally,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent is the AMQP consumer callback.
func (r *Reporter) HandleEvent(ctx context.Context, ev *amqp.CalculationEvent) error {
	r.tally.Add(ev)
	r.logger.DebugContext(ctx, "Calculation event tallied",
		log.FieldEventID, ev.ID,
		"kind", ev.Kind)
	return nil
}

// Run logs a summary every interval until ctx is cancelled, then logs a
// final summary.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Report(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			r.Report(ctx)
		}
	}
}

func (r *Reporter) Report(ctx context.Context) {
	s := r.tally.Snapshot()
	r.logger.InfoContext(ctx, "Calculation tally",
		"total", s.Total,
		"operators", FormatCounts(s.ByOperator),
		"bands", FormatCounts(s.ByBand),
		"failures", FormatCounts(s.ByFailure))
}
