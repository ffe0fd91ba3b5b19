package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func num(v float64) *float64 { return &v }

func issue(title string, labels ...string) *types.ItemContent {
	return &types.ItemContent{
		Kind:      types.ContentIssue,
		Title:     title,
		State:     "OPEN",
		CreatedAt: "2024-01-01T09:00:00Z",
		Labels:    labels,
	}
}

func TestStoryPoints(t *testing.T) {
	tests := []struct {
		name        string
		item        types.RawItem
		pointsField string
		want        float64
	}{
		{
			name: "default when nothing matches",
			item: types.RawItem{Content: issue("a", "bug", "frontend")},
			want: 1.0,
		},
		{
			name: "named field wins over earlier numeric field",
			item: types.RawItem{
				Content: issue("a"),
				FieldValues: []types.FieldValue{
					{Kind: types.FieldNumber, Field: "Priority", Number: num(5)},
					{Kind: types.FieldNumber, Field: "Story Points", Number: num(3)},
				},
			},
			pointsField: "Story Points",
			want:        3,
		},
		{
			name: "named field is case-insensitive and reads text",
			item: types.RawItem{
				Content: issue("a"),
				FieldValues: []types.FieldValue{
					{Kind: types.FieldNumber, Field: "Priority", Number: num(5)},
					{Kind: types.FieldText, Field: "Estimate", Text: " 2.5 "},
				},
			},
			pointsField: "estimate",
			want:        2.5,
		},
		{
			name: "named field unparsable falls back to first numeric field",
			item: types.RawItem{
				Content: issue("a"),
				FieldValues: []types.FieldValue{
					{Kind: types.FieldText, Field: "Estimate", Text: "large"},
					{Kind: types.FieldNumber, Field: "Priority", Number: num(5)},
				},
			},
			pointsField: "Estimate",
			want:        5,
		},
		{
			name: "no points field takes first numeric value in order",
			item: types.RawItem{
				Content: issue("a"),
				FieldValues: []types.FieldValue{
					{Kind: types.FieldSingleSelect, Field: "Sprint", Name: "8"},
					{Kind: types.FieldText, Field: "Notes", Text: "needs review"},
					{Kind: types.FieldText, Field: "Size", Text: "8"},
					{Kind: types.FieldNumber, Field: "Points", Number: num(2)},
				},
			},
			want: 8,
		},
		{
			name: "number field without value is skipped",
			item: types.RawItem{
				Content: issue("a"),
				FieldValues: []types.FieldValue{
					{Kind: types.FieldNumber, Field: "Story Points"},
					{Kind: types.FieldNumber, Field: "Other", Number: num(4)},
				},
			},
			pointsField: "Story Points",
			want:        4,
		},
		{
			name: "label number",
			item: types.RawItem{Content: issue("a", "bug", "SP-5", "size 2.5")},
			want: 5,
		},
		{
			name: "decimal label number",
			item: types.RawItem{Content: issue("a", "points: 1.5")},
			want: 1.5,
		},
		{
			name: "non-finite and negative values are ignored",
			item: types.RawItem{
				Content: issue("a"),
				FieldValues: []types.FieldValue{
					{Kind: types.FieldText, Field: "Story Points", Text: "NaN"},
					{Kind: types.FieldText, Field: "Story Points", Text: "+Inf"},
					{Kind: types.FieldNumber, Field: "Story Points", Number: num(-2)},
				},
			},
			pointsField: "Story Points",
			want:        1.0,
		},
		{
			name: "pull request without labels defaults",
			item: types.RawItem{Content: &types.ItemContent{Kind: types.ContentPullRequest, Title: "pr"}},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StoryPoints(tt.item, tt.pointsField)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) || got < 0 {
				t.Errorf("story points must be finite and non-negative, got %v", got)
			}
		})
	}
}

func TestNormalizeItem_LabelMode(t *testing.T) {
	hints := types.Hints{SprintLabel: "Sprint 3"}

	if _, ok := NormalizeItem(types.RawItem{Content: issue("in", "Sprint 3", "bug")}, hints); !ok {
		t.Error("item labeled Sprint 3 should be included")
	}
	if _, ok := NormalizeItem(types.RawItem{Content: issue("case", "sprint 3")}, hints); !ok {
		t.Error("label comparison should be case-insensitive")
	}
	if _, ok := NormalizeItem(types.RawItem{Content: issue("out", "Sprint 2")}, hints); ok {
		t.Error("item labeled Sprint 2 should be excluded")
	}
	if _, ok := NormalizeItem(types.RawItem{Content: issue("partial", "Sprint 30")}, hints); ok {
		t.Error("label mode requires an exact label match")
	}
	if _, ok := NormalizeItem(types.RawItem{Content: issue("any")}, types.Hints{}); !ok {
		t.Error("without a sprint label every item should be included")
	}
}

func TestNormalizeItem_FieldMode(t *testing.T) {
	withSprint := func(kind types.FieldValueKind, value string) types.RawItem {
		fv := types.FieldValue{Kind: kind, Field: "Sprint"}
		switch kind {
		case types.FieldSingleSelect:
			fv.Name = value
		case types.FieldIteration:
			fv.Title = value
		case types.FieldText:
			fv.Text = value
		}
		return types.RawItem{Content: issue("item", "Sprint 3"), FieldValues: []types.FieldValue{fv}}
	}

	tests := []struct {
		name  string
		item  types.RawItem
		hints types.Hints
		want  bool
	}{
		{"single select substring", withSprint(types.FieldSingleSelect, "Q1 Sprint 3 (Jan)"), types.Hints{SprintField: "sprint", SprintLabel: "sprint 3"}, true},
		{"iteration title", withSprint(types.FieldIteration, "Sprint 3"), types.Hints{SprintField: "Sprint", SprintLabel: "Sprint 3"}, true},
		{"text value", withSprint(types.FieldText, "sprint 3"), types.Hints{SprintField: "Sprint", SprintLabel: "Sprint 3"}, true},
		{"different sprint", withSprint(types.FieldSingleSelect, "Sprint 4"), types.Hints{SprintField: "Sprint", SprintLabel: "Sprint 3"}, false},
		{"no sprint label configured", withSprint(types.FieldSingleSelect, "Sprint 3"), types.Hints{SprintField: "Sprint"}, false},
		{"field absent does not fall back to labels", types.RawItem{Content: issue("item", "Sprint 3")}, types.Hints{SprintField: "Sprint", SprintLabel: "Sprint 3"}, false},
		{"no content", types.RawItem{FieldValues: []types.FieldValue{{Kind: types.FieldSingleSelect, Field: "Sprint", Name: "Sprint 3"}}}, types.Hints{SprintField: "Sprint", SprintLabel: "Sprint 3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NormalizeItem(tt.item, tt.hints)
			if ok != tt.want {
				t.Errorf("expected included=%v, got %v", tt.want, ok)
			}
		})
	}
}

func TestNormalizeItem_Timestamps(t *testing.T) {
	content := issue("done")
	content.State = "CLOSED"
	content.CreatedAt = "2024-01-01T09:00:00Z"
	content.ClosedAt = "2024-01-03T17:30:00.123Z"

	item, ok := NormalizeItem(types.RawItem{Content: content}, types.Hints{})
	if !ok {
		t.Fatal("expected item to be included")
	}
	wantCreated := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if item.CreatedAt == nil || !item.CreatedAt.Equal(wantCreated) {
		t.Errorf("expected created %v, got %v", wantCreated, item.CreatedAt)
	}
	if item.ClosedAt == nil || item.ClosedAt.Location() != time.UTC {
		t.Errorf("expected closed timestamp in UTC, got %v", item.ClosedAt)
	}
	if item.State != "CLOSED" || item.Title != "done" {
		t.Errorf("unexpected item %+v", item)
	}
}

func TestNormalizeItem_BadTimestampDropsBoth(t *testing.T) {
	content := issue("broken")
	content.ClosedAt = "yesterday"

	item, ok := NormalizeItem(types.RawItem{Content: content}, types.Hints{})
	if !ok {
		t.Fatal("a bad timestamp must not exclude the item")
	}
	if item.CreatedAt != nil || item.ClosedAt != nil {
		t.Errorf("expected both timestamps dropped, got created=%v closed=%v", item.CreatedAt, item.ClosedAt)
	}
	if item.StoryPoints != 1.0 {
		t.Errorf("expected default points, got %v", item.StoryPoints)
	}
}

func TestBuildSnapshot(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	project := &types.RawProject{
		Title: "Platform Board",
		Items: []types.RawItem{
			{Content: issue("first", "Sprint 3"), FieldValues: []types.FieldValue{{Kind: types.FieldNumber, Field: "Story Points", Number: num(3)}}},
			{Content: issue("other sprint", "Sprint 2"), FieldValues: []types.FieldValue{{Kind: types.FieldNumber, Field: "Story Points", Number: num(8)}}},
			{Content: nil},
			{Content: issue("second", "5 pts", "Sprint 3")},
			{
				Content:     &types.ItemContent{Kind: types.ContentIssue, Title: "bad time", CreatedAt: "not-a-time", Labels: []string{"Sprint 3"}},
				FieldValues: []types.FieldValue{{Kind: types.FieldText, Field: "Story Points", Text: "1"}},
			},
		},
	}

	snapshot, err := BuildSnapshot(project, start, end, types.Hints{SprintLabel: "Sprint 3", PointsField: "Story Points"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("BuildSnapshot failed: %v", err)
	}

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	want := &types.ProjectSnapshot{
		ProjectName: "Platform Board",
		Items: []types.NormalizedItem{
			{Title: "first", StoryPoints: 3, CreatedAt: &created, State: "OPEN"},
			{Title: "second", StoryPoints: 5, CreatedAt: &created, State: "OPEN"},
			{Title: "bad time", StoryPoints: 1},
		},
		TotalPoints: 9,
		SprintStart: start,
		SprintEnd:   end,
	}
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Errorf("unexpected snapshot (-want +got):\n%s", diff)
	}

	sum := 0.0
	for _, item := range snapshot.Items {
		sum += item.StoryPoints
	}
	if sum != snapshot.TotalPoints {
		t.Errorf("total %v does not equal sum of included items %v", snapshot.TotalPoints, sum)
	}
}

func TestBuildSnapshot_NoMatches(t *testing.T) {
	project := &types.RawProject{
		Title: "Platform Board",
		Items: []types.RawItem{{Content: issue("old", "Sprint 1")}},
	}
	_, err := BuildSnapshot(project, time.Now(), time.Now(), types.Hints{SprintLabel: "Sprint 3"}, zerolog.Nop())
	if !errors.Is(err, ErrNoMatchingItems) {
		t.Errorf("expected ErrNoMatchingItems, got %v", err)
	}

	_, err = BuildSnapshot(nil, time.Now(), time.Now(), types.Hints{}, zerolog.Nop())
	if !errors.Is(err, ErrNoMatchingItems) {
		t.Errorf("expected ErrNoMatchingItems for nil project, got %v", err)
	}
}
