package google

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"econguide/internal/core"
)

var ErrMissingHeader = errors.New("unexpected sheet header")

// parseTopics converts the Topics sheet into topics ordered by position.
// Headers: Slug, Title, Icon, Summary, Position, Widget, Status, Notes.
// Notes are separated by newlines within the cell.
func parseTopics(values [][]interface{}) ([]core.Topic, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	cols, err := columns(headers, "Slug", "Title", "Position", "Status")
	if err != nil {
		return nil, err
	}
	colIcon := indexOf(headers, "Icon")
	colSummary := indexOf(headers, "Summary")
	colWidget := indexOf(headers, "Widget")
	colNotes := indexOf(headers, "Notes")

	var out []core.Topic
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		slug := safeGet(row, cols["Slug"])
		if slug == "" {
			continue
		}
		pos, err := strconv.Atoi(safeGet(row, cols["Position"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid position %q", i+1, safeGet(row, cols["Position"]))
		}
		t := core.Topic{
			Slug:     slug,
			Title:    safeGet(row, cols["Title"]),
			Icon:     safeGet(row, colIcon),
			Summary:  safeGet(row, colSummary),
			Position: pos,
			Widget:   core.Widget(strings.ToLower(safeGet(row, colWidget))),
			Status:   core.TopicStatus(strings.ToLower(safeGet(row, cols["Status"]))),
			Notes:    splitLines(safeGet(row, colNotes)),
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// parseExamples groups the Examples sheet rows by topic slug, keeping sheet
// order. Headers: Topic, Title, Code, Output, Rules.
func parseExamples(values [][]interface{}) (map[string][]core.Example, error) {
	out := map[string][]core.Example{}
	if len(values) == 0 {
		return out, nil
	}
	headers := toStrings(values[0])
	cols, err := columns(headers, "Topic", "Title", "Code")
	if err != nil {
		return nil, err
	}
	colOutput := indexOf(headers, "Output")
	colRules := indexOf(headers, "Rules")

	for i := 1; i < len(values); i++ {
		row := rawStrings(values[i])
		slug := strings.TrimSpace(safeGet(row, cols["Topic"]))
		title := strings.TrimSpace(safeGet(row, cols["Title"]))
		if slug == "" || title == "" {
			continue
		}
		out[slug] = append(out[slug], core.Example{
			Title:  title,
			Code:   safeGet(row, cols["Code"]),
			Output: safeGet(row, colOutput),
			Rules:  splitLines(safeGet(row, colRules)),
		})
	}
	return out, nil
}

func columns(headers []string, required ...string) (map[string]int, error) {
	cols := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		idx := indexOf(headers, name)
		if idx == -1 {
			missing = append(missing, name)
			continue
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s; got headers=%v", ErrMissingHeader, strings.Join(missing, ","), headers)
	}
	return cols, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// rawStrings keeps leading indentation, which matters for code cells.
func rawStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimRight(fmt.Sprint(v), " \t")
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
