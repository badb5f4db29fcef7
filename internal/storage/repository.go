package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"econguide/internal/content"
	"econguide/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	version uint
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db), version: version}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.version
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SeedCatalog inserts topics in a single transaction when the catalog is
// empty. It returns the number of topics written, zero if the database
// already held content.
func (r *SQLiteRepository) SeedCatalog(ctx context.Context, topics []core.Topic) (int, error) {
	n, err := r.queries.CountTopics(ctx)
	if err != nil {
		return 0, fmt.Errorf("count topics: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for _, t := range topics {
		if err := t.Validate(); err != nil {
			return 0, err
		}
		if err := insertTopicTree(ctx, q, t); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Catalog seeded into SQLite", "topics", len(topics))
	return len(topics), nil
}

func insertTopicTree(ctx context.Context, q *Queries, t core.Topic) error {
	notes, err := encodeJSON(t.Notes)
	if err != nil {
		return err
	}
	if err := q.InsertTopic(ctx, TopicRow{
		Slug:     t.Slug,
		Title:    t.Title,
		Icon:     t.Icon,
		Summary:  t.Summary,
		Position: int64(t.Position),
		Widget:   string(t.Widget),
		Status:   string(t.Status),
		Notes:    notes,
	}); err != nil {
		return fmt.Errorf("insert topic %s: %w", t.Slug, err)
	}
	for i, ex := range t.Examples {
		rules, err := encodeJSON(ex.Rules)
		if err != nil {
			return err
		}
		if err := q.InsertExample(ctx, ExampleRow{
			TopicSlug: t.Slug,
			Position:  int64(i),
			Title:     ex.Title,
			Code:      ex.Code,
			Output:    ex.Output,
			Rules:     rules,
		}); err != nil {
			return fmt.Errorf("insert example %q: %w", ex.Title, err)
		}
	}
	for i, c := range t.Charts {
		points, err := encodeJSON(c.Points)
		if err != nil {
			return err
		}
		if err := q.InsertChart(ctx, ChartRow{
			TopicSlug: t.Slug,
			Position:  int64(i),
			Title:     c.Title,
			Kind:      string(c.Kind),
			XLabel:    c.XLabel,
			YLabel:    c.YLabel,
			Points:    points,
		}); err != nil {
			return fmt.Errorf("insert chart %q: %w", c.Title, err)
		}
	}
	return nil
}

// ListTopics implements content.TopicLister
func (r *SQLiteRepository) ListTopics(ctx context.Context) ([]core.Topic, error) {
	rows, err := r.queries.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	exRows, err := r.queries.ListExamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("list examples: %w", err)
	}
	chRows, err := r.queries.ListCharts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}

	examples := make(map[string][]ExampleRow)
	for _, e := range exRows {
		examples[e.TopicSlug] = append(examples[e.TopicSlug], e)
	}
	charts := make(map[string][]ChartRow)
	for _, c := range chRows {
		charts[c.TopicSlug] = append(charts[c.TopicSlug], c)
	}

	topics := make([]core.Topic, 0, len(rows))
	for _, row := range rows {
		t, err := toTopic(row, examples[row.Slug], charts[row.Slug])
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// GetTopic implements content.TopicReader
func (r *SQLiteRepository) GetTopic(ctx context.Context, slug string) (core.Topic, error) {
	row, err := r.queries.GetTopic(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Topic{}, fmt.Errorf("%w: %s", content.ErrTopicNotFound, slug)
	}
	if err != nil {
		return core.Topic{}, fmt.Errorf("get topic %s: %w", slug, err)
	}
	exRows, err := r.queries.ListExamplesByTopic(ctx, slug)
	if err != nil {
		return core.Topic{}, fmt.Errorf("list examples for %s: %w", slug, err)
	}
	chRows, err := r.queries.ListChartsByTopic(ctx, slug)
	if err != nil {
		return core.Topic{}, fmt.Errorf("list charts for %s: %w", slug, err)
	}
	return toTopic(row, exRows, chRows)
}

func toTopic(row TopicRow, exRows []ExampleRow, chRows []ChartRow) (core.Topic, error) {
	t := core.Topic{
		Slug:     row.Slug,
		Title:    row.Title,
		Icon:     row.Icon,
		Summary:  row.Summary,
		Position: int(row.Position),
		Widget:   core.Widget(row.Widget),
		Status:   core.TopicStatus(row.Status),
	}
	if err := decodeJSON(row.Notes, &t.Notes); err != nil {
		return t, fmt.Errorf("topic %s notes: %w", row.Slug, err)
	}
	for _, e := range exRows {
		ex := core.Example{Title: e.Title, Code: e.Code, Output: e.Output}
		if err := decodeJSON(e.Rules, &ex.Rules); err != nil {
			return t, fmt.Errorf("topic %s example rules: %w", row.Slug, err)
		}
		t.Examples = append(t.Examples, ex)
	}
	for _, c := range chRows {
		ch := core.Chart{Title: c.Title, Kind: core.ChartKind(c.Kind), XLabel: c.XLabel, YLabel: c.YLabel}
		if err := decodeJSON(c.Points, &ch.Points); err != nil {
			return t, fmt.Errorf("topic %s chart points: %w", row.Slug, err)
		}
		t.Charts = append(t.Charts, ch)
	}
	return t, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode column: %w", err)
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

var _ content.Catalog = (*SQLiteRepository)(nil)
