package types

import "time"

// ContentKind tags the Issue | PullRequest union behind a project item.
type ContentKind string

const (
	ContentIssue       ContentKind = "Issue"
	ContentPullRequest ContentKind = "PullRequest"
)

// FieldValueKind tags which payload slot of a FieldValue is active.
type FieldValueKind string

const (
	FieldSingleSelect FieldValueKind = "SingleSelect"
	FieldText         FieldValueKind = "Text"
	FieldNumber       FieldValueKind = "Number"
	FieldIteration    FieldValueKind = "Iteration"
)

// RawProject is a project board as returned by the fetcher, before any filtering.
type RawProject struct {
	Title string
	Items []RawItem
}

// RawItem is a single board item. Content is nil for draft issues, redacted
// items and anything else that is neither an issue nor a pull request.
type RawItem struct {
	Content     *ItemContent
	FieldValues []FieldValue
}

// ItemContent holds the fields shared by issues and pull requests.
// Timestamps are kept as the raw ISO-8601 strings from the API.
type ItemContent struct {
	Kind      ContentKind
	Title     string
	State     string
	CreatedAt string
	ClosedAt  string
	Labels    []string
}

// FieldValue is one custom field value on an item. Only the slot matching
// Kind carries data.
type FieldValue struct {
	Kind   FieldValueKind
	Field  string
	Name   string   // single select option name
	Text   string   // text value
	Number *float64 // number value
	Title  string   // iteration title
}

// NormalizedItem is an item that passed the sprint filter.
type NormalizedItem struct {
	Title       string     `json:"title" yaml:"title"`
	StoryPoints float64    `json:"story_points" yaml:"story_points"`
	CreatedAt   *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty" yaml:"closed_at,omitempty"`
	State       string     `json:"state" yaml:"state"`
}

// ProjectSnapshot is the filtered view of a project for one sprint.
type ProjectSnapshot struct {
	ProjectName string           `json:"project_name" yaml:"project_name"`
	Items       []NormalizedItem `json:"items" yaml:"items"`
	TotalPoints float64          `json:"total_points" yaml:"total_points"`
	SprintStart time.Time        `json:"sprint_start" yaml:"sprint_start"`
	SprintEnd   time.Time        `json:"sprint_end" yaml:"sprint_end"`
}

// BurndownSeries is the daily remaining/ideal series. Dates, Remaining and
// Ideal are parallel slices.
type BurndownSeries struct {
	Dates       []time.Time `json:"dates" yaml:"dates"`
	Remaining   []float64   `json:"remaining" yaml:"remaining"`
	Ideal       []float64   `json:"ideal" yaml:"ideal"`
	TotalPoints float64     `json:"total_points" yaml:"total_points"`
}

// Len returns the number of data points in the series.
func (s BurndownSeries) Len() int {
	return len(s.Dates)
}
