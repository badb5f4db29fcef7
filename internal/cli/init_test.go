package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"econguide/internal/config"
	"econguide/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func bufferLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = &buf
	return log.New(cfg), &buf
}

func TestOpenCatalogMemory(t *testing.T) {
	logger, _ := bufferLogger()
	cfg := config.Load()
	cfg.ContentBackend = "memory"

	catalog, cleanup, err := OpenCatalog(context.Background(), logger, cfg)
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer cleanup()

	topics, err := catalog.ListTopics(context.Background())
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(topics) == 0 {
		t.Fatal("expected embedded topics")
	}
}

func TestOpenCatalogRejectsUnknownBackend(t *testing.T) {
	logger, _ := bufferLogger()
	cfg := config.Load()
	cfg.ContentBackend = "postgres"

	if _, _, err := OpenCatalog(context.Background(), logger, cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestConnectAMQPDisabledWithoutURL(t *testing.T) {
	logger, _ := bufferLogger()
	cfg := config.Load()
	cfg.AMQPURL = ""

	client, err := ConnectAMQP(logger, cfg)
	if !errors.Is(err, ErrAMQPDisabled) {
		t.Fatalf("err = %v, want ErrAMQPDisabled", err)
	}
	if client != nil {
		t.Fatal("expected nil client")
	}
}

func TestSignalContextStop(t *testing.T) {
	logger, _ := bufferLogger()
	ctx, stop := SignalContext(context.Background(), logger)
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by stop")
	}
}

func TestSignalContextFollowsParent(t *testing.T) {
	logger, _ := bufferLogger()
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent, logger)
	defer stop()
	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with parent")
	}
}

func TestGracefulShutdownRunsEveryStep(t *testing.T) {
	logger, buf := bufferLogger()
	var order []string
	boom := errors.New("boom")

	err := GracefulShutdown(logger, time.Second,
		ShutdownStep{Name: "server", Fn: func(context.Context) error {
			order = append(order, "server")
			return boom
		}},
		ShutdownStep{Name: "backend", Fn: func(context.Context) error {
			order = append(order, "backend")
			return nil
		}},
	)

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if strings.Join(order, ",") != "server,backend" {
		t.Errorf("order = %v", order)
	}
	if !strings.Contains(buf.String(), "step=server") {
		t.Errorf("failed step not logged: %s", buf.String())
	}
}

func TestGracefulShutdownNoSteps(t *testing.T) {
	logger, _ := bufferLogger()
	if err := GracefulShutdown(logger, time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
