package engine

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultStoryPoints is used when neither a field nor a label yields a number.
const DefaultStoryPoints = 1.0

// ErrNoMatchingItems is returned when the sprint filter leaves nothing to chart.
var ErrNoMatchingItems = errors.New("no project items matched the sprint filter")

var labelNumber = regexp.MustCompile(`\d+(\.\d+)?`)

// NormalizeItem applies the sprint filter to raw and, if it passes, resolves
// its story points and timestamps. Unparsable timestamps leave both
// CreatedAt and ClosedAt nil.
func NormalizeItem(raw types.RawItem, hints types.Hints) (types.NormalizedItem, bool) {
	if !inSprint(raw, hints) {
		return types.NormalizedItem{}, false
	}
	item, _ := normalize(raw, hints)
	return item, true
}

// BuildSnapshot filters and normalizes every item of project, in order.
func BuildSnapshot(project *types.RawProject, sprintStart, sprintEnd time.Time, hints types.Hints, log zerolog.Logger) (*types.ProjectSnapshot, error) {
	if project == nil {
		return nil, fmt.Errorf("no valid project data: %w", ErrNoMatchingItems)
	}

	snapshot := &types.ProjectSnapshot{
		ProjectName: project.Title,
		SprintStart: sprintStart,
		SprintEnd:   sprintEnd,
	}
	for i, raw := range project.Items {
		if !inSprint(raw, hints) {
			continue
		}
		item, err := normalize(raw, hints)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Str("title", item.Title).Msg("ignoring item timestamps")
		}
		snapshot.Items = append(snapshot.Items, item)
		snapshot.TotalPoints += item.StoryPoints
	}

	log.Debug().
		Int("fetched", len(project.Items)).
		Int("included", len(snapshot.Items)).
		Float64("total_points", snapshot.TotalPoints).
		Msg("filtered project items")

	if len(snapshot.Items) == 0 {
		return nil, fmt.Errorf("%s: %d items fetched, none in sprint (sprint_field=%q, sprint_label=%q): %w",
			project.Title, len(project.Items), hints.SprintField, hints.SprintLabel, ErrNoMatchingItems)
	}
	return snapshot, nil
}

// normalize assumes raw passed the sprint filter, so Content is non-nil.
// The returned error only reports dropped timestamps; the item is always usable.
func normalize(raw types.RawItem, hints types.Hints) (types.NormalizedItem, error) {
	item := types.NormalizedItem{
		Title:       raw.Content.Title,
		StoryPoints: StoryPoints(raw, hints.PointsField),
		State:       raw.Content.State,
	}
	created, closed, err := parseTimestamps(raw.Content)
	if err != nil {
		return item, err
	}
	item.CreatedAt, item.ClosedAt = created, closed
	return item, nil
}

// StoryPoints resolves an item's estimate. First match wins:
//  1. the field named pointsField (case-insensitive)
//  2. the first numeric field value of any name
//  3. the first number found in a label
//  4. DefaultStoryPoints
func StoryPoints(raw types.RawItem, pointsField string) float64 {
	if pointsField != "" {
		if v, ok := fieldPoints(raw.FieldValues, pointsField); ok {
			return v
		}
	}
	if v, ok := fieldPoints(raw.FieldValues, ""); ok {
		return v
	}
	if raw.Content != nil {
		if v, ok := labelPoints(raw.Content.Labels); ok {
			return v
		}
	}
	return DefaultStoryPoints
}

// fieldPoints returns the first numeric value among values whose field name
// matches name. An empty name matches every field.
func fieldPoints(values []types.FieldValue, name string) (float64, bool) {
	for _, v := range values {
		if name != "" && !strings.EqualFold(v.Field, name) {
			continue
		}
		if n, ok := numericValue(v); ok {
			return n, true
		}
	}
	return 0, false
}

func numericValue(v types.FieldValue) (float64, bool) {
	switch v.Kind {
	case types.FieldNumber:
		if v.Number != nil {
			return validPoints(*v.Number)
		}
	case types.FieldText:
		if v.Text == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err == nil {
			return validPoints(n)
		}
	}
	return 0, false
}

func labelPoints(labels []string) (float64, bool) {
	for _, label := range labels {
		m := labelNumber.FindString(label)
		if m == "" {
			continue
		}
		if n, err := strconv.ParseFloat(m, 64); err == nil {
			return validPoints(n)
		}
	}
	return 0, false
}

// validPoints rejects NaN, infinities and negative estimates.
func validPoints(n float64) (float64, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0, false
	}
	return n, true
}

// SprintTag returns the value of the field named sprintField: a single
// select option name, an iteration title or a text value.
func SprintTag(values []types.FieldValue, sprintField string) (string, bool) {
	for _, v := range values {
		if !strings.EqualFold(v.Field, sprintField) {
			continue
		}
		switch v.Kind {
		case types.FieldSingleSelect:
			if v.Name != "" {
				return v.Name, true
			}
		case types.FieldIteration:
			if v.Title != "" {
				return v.Title, true
			}
		case types.FieldText:
			if v.Text != "" {
				return v.Text, true
			}
		}
	}
	return "", false
}

// inSprint decides membership. With a sprint field configured, the item must
// carry that field and its value must contain the sprint label; there is no
// fallback to labels. Without one, labels are compared to the sprint label,
// and everything is included when no label is configured.
func inSprint(raw types.RawItem, hints types.Hints) bool {
	if raw.Content == nil {
		return false
	}

	if hints.SprintField != "" {
		tag, ok := SprintTag(raw.FieldValues, hints.SprintField)
		if !ok || hints.SprintLabel == "" {
			return false
		}
		return strings.Contains(strings.ToLower(tag), strings.ToLower(hints.SprintLabel))
	}

	if hints.SprintLabel == "" {
		return true
	}
	for _, label := range raw.Content.Labels {
		if strings.EqualFold(label, hints.SprintLabel) {
			return true
		}
	}
	return false
}

// parseTimestamps parses createdAt and closedAt. Either failing drops both.
func parseTimestamps(c *types.ItemContent) (*time.Time, *time.Time, error) {
	created, err := parseTimestamp(c.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("createdAt: %w", err)
	}
	closed, err := parseTimestamp(c.ClosedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("closedAt: %w", err)
	}
	return created, closed, nil
}

func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
