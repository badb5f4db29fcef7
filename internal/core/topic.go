package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	WidgetNone       Widget = ""
	WidgetCalculator Widget = "calculator"
	WidgetClassifier Widget = "classifier"
)

const (
	StatusPublished TopicStatus = "published"
	StatusDraft     TopicStatus = "draft"
)

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

type (
	// Widget names the interactive panel shown on a topic page.
	Widget string

	TopicStatus string

	ChartKind string

	// Topic is one entry of the curriculum menu.
	Topic struct {
		Slug     string      `yaml:"slug" json:"slug"`
		Title    string      `yaml:"title" json:"title"`
		Icon     string      `yaml:"icon,omitempty" json:"icon,omitempty"`
		Summary  string      `yaml:"summary,omitempty" json:"summary,omitempty"`
		Position int         `yaml:"position" json:"position"`
		Widget   Widget      `yaml:"widget,omitempty" json:"widget,omitempty"`
		Status   TopicStatus `yaml:"status" json:"status"`
		Notes    []string    `yaml:"notes,omitempty" json:"notes,omitempty"`
		Examples []Example   `yaml:"examples,omitempty" json:"examples,omitempty"`
		Charts   []Chart     `yaml:"charts,omitempty" json:"charts,omitempty"`
	}

	// Example pairs a code sample with its expected output and rule summary.
	Example struct {
		Title  string   `yaml:"title" json:"title"`
		Code   string   `yaml:"code" json:"code"`
		Output string   `yaml:"output" json:"output"`
		Rules  []string `yaml:"rules,omitempty" json:"rules,omitempty"`
	}

	Chart struct {
		Title  string       `yaml:"title" json:"title"`
		Kind   ChartKind    `yaml:"kind" json:"kind"`
		XLabel string       `yaml:"x_label,omitempty" json:"x_label,omitempty"`
		YLabel string       `yaml:"y_label,omitempty" json:"y_label,omitempty"`
		Points []ChartPoint `yaml:"points" json:"points"`
	}

	ChartPoint struct {
		Label string  `yaml:"label" json:"label"`
		Value float64 `yaml:"value" json:"value"`
	}
)

var (
	ErrEmptySlug     = errors.New("empty slug")
	ErrEmptyTitle    = errors.New("empty title")
	ErrInvalidWidget = errors.New("invalid widget")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidChart  = errors.New("invalid chart")
)

// Valid reports whether w is a known widget (including none).
func (w Widget) Valid() bool {
	switch w {
	case WidgetNone, WidgetCalculator, WidgetClassifier:
		return true
	default:
		return false
	}
}

func (s TopicStatus) Valid() bool {
	return s == StatusPublished || s == StatusDraft
}

// Published reports whether the topic content is ready to be shown.
func (t Topic) Published() bool {
	return t.Status == StatusPublished
}

func (t Topic) Validate() error {
	if strings.TrimSpace(t.Slug) == "" {
		return ErrEmptySlug
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("topic %s: %w", t.Slug, ErrEmptyTitle)
	}
	if !t.Widget.Valid() {
		return fmt.Errorf("topic %s: %w %q", t.Slug, ErrInvalidWidget, t.Widget)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("topic %s: %w %q", t.Slug, ErrInvalidStatus, t.Status)
	}
	for i, ex := range t.Examples {
		if strings.TrimSpace(ex.Title) == "" {
			return fmt.Errorf("topic %s example %d: %w", t.Slug, i, ErrEmptyTitle)
		}
	}
	for _, c := range t.Charts {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("topic %s: %w", t.Slug, err)
		}
	}
	return nil
}

func (c Chart) Validate() error {
	if c.Kind != ChartBar && c.Kind != ChartLine {
		return fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidChart, c.Title, c.Kind)
	}
	if len(c.Points) == 0 {
		return fmt.Errorf("%w: %q has no points", ErrInvalidChart, c.Title)
	}
	return nil
}

// MaxValue returns the largest point value, or 0 for an empty chart.
func (c Chart) MaxValue() float64 {
	var max float64
	for i, p := range c.Points {
		if i == 0 || p.Value > max {
			max = p.Value
		}
	}
	return max
}

// MinValue returns the smallest point value, or 0 for an empty chart.
func (c Chart) MinValue() float64 {
	var min float64
	for i, p := range c.Points {
		if i == 0 || p.Value < min {
			min = p.Value
		}
	}
	return min
}
