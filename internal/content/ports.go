package content

import (
	"context"
	"errors"

	"econguide/internal/core"
)

var ErrTopicNotFound = errors.New("topic not found")

// Ports for curriculum backends.
type (
	// TopicLister returns every topic ordered by menu position.
	TopicLister interface {
		ListTopics(ctx context.Context) ([]core.Topic, error)
	}

	// TopicReader returns a single topic with its examples and charts.
	TopicReader interface {
		// GetTopic returns ErrTopicNotFound when no topic has the given slug.
		GetTopic(ctx context.Context, slug string) (core.Topic, error)
	}

	Catalog interface {
		TopicLister
		TopicReader
	}
)
