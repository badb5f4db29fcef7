package backend

import (
	"context"
	"path/filepath"
	"testing"

	"econguide/internal/config"
)

func TestFactoryMemoryAndSQLite(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	mem, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	want, _ := mem.Catalog.ListTopics(ctx)

	res, err := f.CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "catalog.db"),
	})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	defer res.Cleanup()

	got, err := res.Catalog.ListTopics(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(want) || got[0].Slug != want[0].Slug {
		t.Fatalf("sqlite catalog not seeded: got %d topics, want %d", len(got), len(want))
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Type: MemoryBackend}, false},
		{Config{Type: "postgres"}, true},
		{Config{Type: SQLiteBackend}, true},
		{Config{Type: SheetsBackend}, true},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
			t.Fatalf("%+v: err=%v wantErr=%v", tc.cfg, err, tc.wantErr)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg, err := FromAppConfig(&config.Config{
		ContentBackend:      "sheets",
		GoogleSpreadsheetID: "abc",
		GoogleTopicsSheet:   "Topics",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != SheetsBackend || cfg.Google.SpreadsheetID != "abc" || cfg.Google.TopicsSheet != "Topics" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
