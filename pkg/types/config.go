package types

// ProjectType selects which GraphQL owner object the project hangs off.
type ProjectType string

const (
	ProjectTypeOrganization ProjectType = "organization"
	ProjectTypeRepository   ProjectType = "repository"
	ProjectTypeUser         ProjectType = "user"
)

// ChartType selects which renderers run.
type ChartType string

const (
	ChartStatic      ChartType = "static"
	ChartInteractive ChartType = "interactive"
	ChartBoth        ChartType = "both"
)

// DefaultSavePath is used when no save_path is configured.
const DefaultSavePath = "burndown.png"

// Config defines the structure of the configuration file
type Config struct {
	GitHubToken     string      `mapstructure:"github_token" yaml:"github_token" json:"github_token"`
	Owner           string      `mapstructure:"owner" yaml:"owner" json:"owner"`
	ProjectNumber   int         `mapstructure:"project_number" yaml:"project_number" json:"project_number"`
	ProjectType     ProjectType `mapstructure:"project_type" yaml:"project_type" json:"project_type"`
	Repo            string      `mapstructure:"repo" yaml:"repo,omitempty" json:"repo,omitempty"`
	SprintStart     string      `mapstructure:"sprint_start" yaml:"sprint_start" json:"sprint_start"`
	SprintEnd       string      `mapstructure:"sprint_end" yaml:"sprint_end" json:"sprint_end"`
	SprintLabel     string      `mapstructure:"sprint_label" yaml:"sprint_label,omitempty" json:"sprint_label,omitempty"`
	SprintField     string      `mapstructure:"sprint_field" yaml:"sprint_field,omitempty" json:"sprint_field,omitempty"`
	PointsField     string      `mapstructure:"points_field" yaml:"points_field,omitempty" json:"points_field,omitempty"`
	PlannedPoints   *float64    `mapstructure:"planned_points" yaml:"planned_points,omitempty" json:"planned_points,omitempty"`
	SavePath        string      `mapstructure:"save_path" yaml:"save_path,omitempty" json:"save_path,omitempty"`
	ChartType       ChartType   `mapstructure:"chart_type" yaml:"chart_type" json:"chart_type"`
	GraphQLEndpoint string      `mapstructure:"graphql_endpoint" yaml:"graphql_endpoint,omitempty" json:"graphql_endpoint,omitempty"`
	Timeout         string      `mapstructure:"timeout" yaml:"timeout,omitempty" json:"timeout,omitempty"`
	LogLevel        string      `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat       string      `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
}

// ProjectRef identifies a project board.
type ProjectRef struct {
	Type   ProjectType
	Owner  string
	Repo   string
	Number int
}

// Ref returns the project reference described by the config.
func (c Config) Ref() ProjectRef {
	return ProjectRef{
		Type:   c.ProjectType,
		Owner:  c.Owner,
		Repo:   c.Repo,
		Number: c.ProjectNumber,
	}
}

// Hints returns the field-name hints used by the item normalizer.
func (c Config) Hints() Hints {
	return Hints{
		PointsField: c.PointsField,
		SprintField: c.SprintField,
		SprintLabel: c.SprintLabel,
	}
}

// Hints names the custom fields and label that drive item normalization.
type Hints struct {
	PointsField string
	SprintField string
	SprintLabel string
}
