package cache

import (
	"context"
	"time"

	"econguide/internal/content"
	"econguide/internal/core"
)

const listKey = "\x00topics"

// Catalog caches topic lookups of another catalog.
type Catalog struct {
	next   content.Catalog
	topics *LRUCache[core.Topic]
	lists  *LRUCache[[]core.Topic]
	byslug *Loader[core.Topic]
	all    *Loader[[]core.Topic]
}

var _ content.Catalog = (*Catalog)(nil)

// NewCatalog wraps next with an LRU cache of size entries that expire after ttl.
// When m is not nil both caches are registered for periodic cleanup.
func NewCatalog(next content.Catalog, size int, ttl time.Duration, m *Manager) *Catalog {
	topics := NewLRUCache[core.Topic](size, ttl)
	lists := NewLRUCache[[]core.Topic](1, ttl)
	if m != nil {
		m.Register(topics)
		m.Register(lists)
	}
	return &Catalog{
		next:   next,
		topics: topics,
		lists:  lists,
		byslug: NewLoader(topics),
		all:    NewLoader(lists),
	}
}

func (c *Catalog) ListTopics(ctx context.Context) ([]core.Topic, error) {
	topics, err := c.all.Get(ctx, listKey, c.next.ListTopics)
	if err != nil {
		return nil, err
	}
	return append([]core.Topic(nil), topics...), nil
}

func (c *Catalog) GetTopic(ctx context.Context, slug string) (core.Topic, error) {
	return c.byslug.Get(ctx, slug, func(ctx context.Context) (core.Topic, error) {
		return c.next.GetTopic(ctx, slug)
	})
}

// Invalidate drops every cached topic.
func (c *Catalog) Invalidate() {
	c.topics.Purge()
	c.lists.Purge()
}

// Stats sums the counters of both caches.
func (c *Catalog) Stats() Stats {
	return c.topics.Stats().add(c.lists.Stats())
}
