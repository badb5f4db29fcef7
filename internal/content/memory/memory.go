package memory

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"econguide/internal/content"
	"econguide/internal/core"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Topics []core.Topic `yaml:"topics"`
}

// Store serves the curriculum from memory.
type Store struct {
	mu     sync.RWMutex
	topics []core.Topic
	bySlug map[string]int
}

// New builds a store from the given topics after validating each one.
func New(topics []core.Topic) (*Store, error) {
	s := &Store{bySlug: make(map[string]int, len(topics))}
	sorted := append([]core.Topic(nil), topics...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	for i, t := range sorted {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("duplicate topic slug %q", t.Slug)
		}
		s.bySlug[t.Slug] = i
	}
	s.topics = sorted
	return s, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) ([]core.Topic, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return f.Topics, nil
}

// Load parses and validates a YAML catalog.
func Load(data []byte) (*Store, error) {
	topics, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return New(topics)
}

// DefaultTopics returns the embedded curriculum.
func DefaultTopics() ([]core.Topic, error) {
	return Parse(catalogYAML)
}

// Default returns a store backed by the embedded curriculum.
func Default() (*Store, error) {
	return Load(catalogYAML)
}

// ListTopics returns every topic ordered by position.
func (s *Store) ListTopics(_ context.Context) ([]core.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Topic(nil), s.topics...), nil
}

func (s *Store) GetTopic(_ context.Context, slug string) (core.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.bySlug[slug]
	if !ok {
		return core.Topic{}, fmt.Errorf("%w: %s", content.ErrTopicNotFound, slug)
	}
	return s.topics[i], nil
}

var _ content.Catalog = (*Store)(nil)
