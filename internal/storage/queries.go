package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TopicRow struct {
	Slug     string
	Title    string
	Icon     string
	Summary  string
	Position int64
	Widget   string
	Status   string
	Notes    string
}

type ExampleRow struct {
	TopicSlug string
	Position  int64
	Title     string
	Code      string
	Output    string
	Rules     string
}

type ChartRow struct {
	TopicSlug string
	Position  int64
	Title     string
	Kind      string
	XLabel    string
	YLabel    string
	Points    string
}

const countTopics = `SELECT COUNT(*) FROM topics`

func (q *Queries) CountTopics(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTopics)
	var n int64
	err := row.Scan(&n)
	return n, err
}

const insertTopic = `INSERT INTO topics (slug, title, icon, summary, position, widget, status, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTopic(ctx context.Context, t TopicRow) error {
	_, err := q.db.ExecContext(ctx, insertTopic,
		t.Slug, t.Title, t.Icon, t.Summary, t.Position, t.Widget, t.Status, t.Notes)
	return err
}

const insertExample = `INSERT INTO examples (topic_slug, position, title, code, output, rules)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertExample(ctx context.Context, e ExampleRow) error {
	_, err := q.db.ExecContext(ctx, insertExample,
		e.TopicSlug, e.Position, e.Title, e.Code, e.Output, e.Rules)
	return err
}

const insertChart = `INSERT INTO charts (topic_slug, position, title, kind, x_label, y_label, points)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertChart(ctx context.Context, c ChartRow) error {
	_, err := q.db.ExecContext(ctx, insertChart,
		c.TopicSlug, c.Position, c.Title, c.Kind, c.XLabel, c.YLabel, c.Points)
	return err
}

const listTopics = `SELECT slug, title, icon, summary, position, widget, status, notes
FROM topics ORDER BY position, slug`

func (q *Queries) ListTopics(ctx context.Context) ([]TopicRow, error) {
	rows, err := q.db.QueryContext(ctx, listTopics)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TopicRow
	for rows.Next() {
		var i TopicRow
		if err := rows.Scan(&i.Slug, &i.Title, &i.Icon, &i.Summary, &i.Position, &i.Widget, &i.Status, &i.Notes); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getTopic = `SELECT slug, title, icon, summary, position, widget, status, notes
FROM topics WHERE slug = ?`

func (q *Queries) GetTopic(ctx context.Context, slug string) (TopicRow, error) {
	row := q.db.QueryRowContext(ctx, getTopic, slug)
	var i TopicRow
	err := row.Scan(&i.Slug, &i.Title, &i.Icon, &i.Summary, &i.Position, &i.Widget, &i.Status, &i.Notes)
	return i, err
}

const listExamples = `SELECT topic_slug, position, title, code, output, rules
FROM examples ORDER BY topic_slug, position`

func (q *Queries) ListExamples(ctx context.Context) ([]ExampleRow, error) {
	rows, err := q.db.QueryContext(ctx, listExamples)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExampleRow
	for rows.Next() {
		var i ExampleRow
		if err := rows.Scan(&i.TopicSlug, &i.Position, &i.Title, &i.Code, &i.Output, &i.Rules); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listChartsByTopic = `SELECT topic_slug, position, title, kind, x_label, y_label, points
FROM charts WHERE topic_slug = ? ORDER BY position`

func (q *Queries) ListChartsByTopic(ctx context.Context, slug string) ([]ChartRow, error) {
	rows, err := q.db.QueryContext(ctx, listChartsByTopic, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ChartRow
	for rows.Next() {
		var i ChartRow
		if err := rows.Scan(&i.TopicSlug, &i.Position, &i.Title, &i.Kind, &i.XLabel, &i.YLabel, &i.Points); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listExamplesByTopic = `SELECT topic_slug, position, title, code, output, rules
FROM examples WHERE topic_slug = ? ORDER BY position`

func (q *Queries) ListExamplesByTopic(ctx context.Context, slug string) ([]ExampleRow, error) {
	rows, err := q.db.QueryContext(ctx, listExamplesByTopic, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExampleRow
	for rows.Next() {
		var i ExampleRow
		if err := rows.Scan(&i.TopicSlug, &i.Position, &i.Title, &i.Code, &i.Output, &i.Rules); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listCharts = `SELECT topic_slug, position, title, kind, x_label, y_label, points
FROM charts ORDER BY topic_slug, position`

func (q *Queries) ListCharts(ctx context.Context) ([]ChartRow, error) {
	rows, err := q.db.QueryContext(ctx, listCharts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ChartRow
	for rows.Next() {
		var i ChartRow
		if err := rows.Scan(&i.TopicSlug, &i.Position, &i.Title, &i.Kind, &i.XLabel, &i.YLabel, &i.Points); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
