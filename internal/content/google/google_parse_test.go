package google

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"econguide/internal/core"
)

func TestParseTopics(t *testing.T) {
	values := [][]interface{}{
		{"Slug", "Title", "Icon", "Summary", "Position", "Widget", "Status", "Notes"},
		{"loops", "Loops", "🔄", "for and while", 5, "", "published"},
		{"arithmetic", "Arithmetic Operations", "➕", "", "4", "Calculator", "Published", "Use ^ for powers\n\n% is the remainder"},
		{"", "skipped row"},
	}
	got, err := parseTopics(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	want := []core.Topic{
		{
			Slug: "arithmetic", Title: "Arithmetic Operations", Icon: "➕", Position: 4,
			Widget: core.WidgetCalculator, Status: core.StatusPublished,
			Notes: []string{"Use ^ for powers", "% is the remainder"},
		},
		{Slug: "loops", Title: "Loops", Icon: "🔄", Summary: "for and while", Position: 5, Status: core.StatusPublished},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("topics mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTopicsErrors(t *testing.T) {
	if _, err := parseTopics([][]interface{}{{"Slug", "Title"}}); !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader, got %v", err)
	}
	bad := [][]interface{}{
		{"Slug", "Title", "Position", "Status"},
		{"a", "A", "first", "published"},
	}
	if _, err := parseTopics(bad); err == nil {
		t.Fatalf("expected invalid position error")
	}
	invalid := [][]interface{}{
		{"Slug", "Title", "Position", "Status"},
		{"a", "A", "1", "hidden"},
	}
	if _, err := parseTopics(invalid); !errors.Is(err, core.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestParseExamples(t *testing.T) {
	values := [][]interface{}{
		{"Topic", "Title", "Code", "Output", "Rules"},
		{"loops", "Basic for Loop", "for i in 1:3\n    println(i)\nend", "1\n2\n3", "1:5 is a range\nend closes the block"},
		{"loops", "While", "while x < 3\n    x += 1\nend"},
		{"", "orphan", "x"},
	}
	got, err := parseExamples(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(got) != 1 || len(got["loops"]) != 2 {
		t.Fatalf("unexpected grouping: %+v", got)
	}
	first := got["loops"][0]
	if first.Code != "for i in 1:3\n    println(i)\nend" {
		t.Fatalf("code indentation lost: %q", first.Code)
	}
	if diff := cmp.Diff([]string{"1:5 is a range", "end closes the block"}, first.Rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if got["loops"][1].Output != "" {
		t.Fatalf("missing output cell must be empty")
	}
}
