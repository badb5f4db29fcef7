package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"econguide/internal/content"
	"econguide/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads the curriculum from a spreadsheet with one sheet of topics
// and one sheet of examples.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	topicsSheet   string
	examplesSheet string
}

var _ content.Catalog = (*Client)(nil)

// Options configures the spreadsheet location and credentials.
type Options struct {
	SpreadsheetID      string
	TopicsSheet        string
	ExamplesSheet      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID and one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_TOPICS_SHEET (default "Topics"), GOOGLE_EXAMPLES_SHEET
// (default "Examples").
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, Options{
		SpreadsheetID:      os.Getenv("GOOGLE_SPREADSHEET_ID"),
		TopicsSheet:        os.Getenv("GOOGLE_TOPICS_SHEET"),
		ExamplesSheet:      os.Getenv("GOOGLE_EXAMPLES_SHEET"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
}

func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	topics := strings.TrimSpace(opts.TopicsSheet)
	if topics == "" {
		topics = "Topics"
	}
	examples := strings.TrimSpace(opts.ExamplesSheet)
	if examples == "" {
		examples = "Examples"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		topicsSheet:   topics,
		examplesSheet: examples,
	}, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(opts.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(opts.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ListTopics reads both sheets in one batch request and joins examples to
// their topics.
func (c *Client) ListTopics(ctx context.Context) ([]core.Topic, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	ranges := []string{c.topicsSheet + "!A:H", c.examplesSheet + "!A:E"}
	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).Ranges(ranges...).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read catalog sheets: %w", err)
	}
	if len(resp.ValueRanges) != len(ranges) {
		return nil, fmt.Errorf("read catalog sheets: expected %d ranges, got %d", len(ranges), len(resp.ValueRanges))
	}

	topics, err := parseTopics(resp.ValueRanges[0].Values)
	if err != nil {
		return nil, err
	}
	examples, err := parseExamples(resp.ValueRanges[1].Values)
	if err != nil {
		return nil, err
	}
	for i := range topics {
		topics[i].Examples = examples[topics[i].Slug]
	}
	slog.DebugContext(ctx, "Catalog read from sheets", "topics", len(topics))
	return topics, nil
}

func (c *Client) GetTopic(ctx context.Context, slug string) (core.Topic, error) {
	topics, err := c.ListTopics(ctx)
	if err != nil {
		return core.Topic{}, err
	}
	for _, t := range topics {
		if t.Slug == slug {
			return t, nil
		}
	}
	return core.Topic{}, fmt.Errorf("%w: %s", content.ErrTopicNotFound, slug)
}
