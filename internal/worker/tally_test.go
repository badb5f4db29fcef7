package worker

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"econguide/internal/amqp"
	"econguide/internal/core"
	"econguide/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTallyCounts(t *testing.T) {
	tally := NewTally()
	tally.Add(amqp.NewEvaluationEvent(core.Calculate(1, 2, core.Add)))
	tally.Add(amqp.NewEvaluationEvent(core.Calculate(1, 2, core.Add)))
	tally.Add(amqp.NewEvaluationEvent(core.Calculate(1, 0, core.Divide)))
	tally.Add(amqp.NewClassificationEvent(core.Classify(5000, 1000)))
	tally.Add(amqp.NewClassificationEvent(core.Classify(100, 1000)))

	s := tally.Snapshot()
	if s.Total != 5 {
		t.Fatalf("total = %d, want 5", s.Total)
	}
	if diff := cmp.Diff(map[string]int64{"+": 2, "/": 1}, s.ByOperator); diff != "" {
		t.Fatalf("operators (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int64{core.BandSurplus: 1, core.BandDeficit: 1}, s.ByBand); diff != "" {
		t.Fatalf("bands (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int64{core.CodeDivisionByZero: 1}, s.ByFailure); diff != "" {
		t.Fatalf("failures (-want +got):\n%s", diff)
	}
	if s.LastEvent.IsZero() {
		t.Fatal("last event time not recorded")
	}

	s.ByOperator["+"] = 100
	if tally.Snapshot().ByOperator["+"] != 2 {
		t.Fatal("snapshot must not alias tally state")
	}
}

func TestTallyConcurrentAdds(t *testing.T) {
	tally := NewTally()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tally.Add(amqp.NewEvaluationEvent(core.Calculate(3, 4, core.Multiply)))
		}()
	}
	wg.Wait()
	if got := tally.Snapshot().ByOperator["*"]; got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestFormatCounts(t *testing.T) {
	got := FormatCounts(map[string]int64{"/": 1, "+": 3, "%": 2})
	if got != "%=2 +=3 /=1" {
		t.Fatalf("unexpected format %q", got)
	}
	if FormatCounts(nil) != "" {
		t.Fatal("empty counts must render empty")
	}
}

func TestReporterRunStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelInfo, Output: &syncWriter{w: &buf}})
	r := NewReporter(NewTally(), 10*time.Millisecond, logger)
	if err := r.HandleEvent(context.Background(), amqp.NewEvaluationEvent(core.Calculate(1, 1, core.Add))); err != nil {
		t.Fatalf("handle: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}

	out := buf.String()
	if strings.Count(out, "Calculation tally") < 2 {
		t.Fatalf("expected periodic and final reports, got %q", out)
	}
	if !strings.Contains(out, "total=1") || !strings.Contains(out, "component=worker") {
		t.Fatalf("unexpected report %q", out)
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
