package engine

import (
	"context"
	"fmt"

	"github.com/goblinsan/gh-burndown/pkg/config"
	ghclient "github.com/goblinsan/gh-burndown/pkg/github"
	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/rs/zerolog"
)

// ProjectFetcher defines the GitHub operation needed by the engine.
type ProjectFetcher interface {
	FetchProject(ctx context.Context, ref types.ProjectRef) (*types.RawProject, error)
}

// Ensure *github.Client satisfies the interface at compile time.
var _ ProjectFetcher = (*ghclient.Client)(nil)

// Options configures the behavior of Run.
type Options struct {
	Logger zerolog.Logger
}

// Report holds the results of a Run execution.
type Report struct {
	Project  types.ProjectSnapshot `json:"project"`
	Burndown types.BurndownSeries  `json:"burndown"`
}

func (r *Report) String() string {
	return fmt.Sprintf("Done. Project: %s Total points: %g", r.Project.ProjectName, r.Project.TotalPoints)
}

// Run fetches the project described by cfg, filters it to the sprint and
// computes the burndown series. cfg is expected to have passed config.Check.
func Run(ctx context.Context, fetcher ProjectFetcher, cfg types.Config, opts Options) (*Report, error) {
	log := opts.Logger

	start, end, err := config.SprintWindow(cfg)
	if err != nil {
		return nil, err
	}

	ref := cfg.Ref()
	log.Info().
		Str("type", string(ref.Type)).
		Str("owner", ref.Owner).
		Int("number", ref.Number).
		Msg("fetching project")

	raw, err := fetcher.FetchProject(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project data from GitHub API: %w", err)
	}
	log.Debug().Str("title", raw.Title).Int("items", len(raw.Items)).Msg("project fetched")

	snapshot, err := BuildSnapshot(raw, start, end, cfg.Hints(), log)
	if err != nil {
		return nil, err
	}

	series := CalculateBurndown(*snapshot, cfg.PlannedPoints)
	log.Info().
		Int("items", len(snapshot.Items)).
		Float64("total_points", series.TotalPoints).
		Int("days", series.Len()).
		Msg("burndown calculated")

	return &Report{Project: *snapshot, Burndown: series}, nil
}
