// Package config loads and validates gh-burndown settings. Values come from,
// highest precedence first: command-line flags, GH_BURNDOWN_* environment
// variables (GITHUB_TOKEN for the token), the config file, built-in defaults.
//
// JSON config files may carry comments and trailing commas; they are
// standardized before viper sees them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tailscale/hujson"
)

// EnvPrefix is the prefix for environment overrides, e.g. GH_BURNDOWN_OWNER.
const EnvPrefix = "GH_BURNDOWN"

var (
	// ErrMissingToken is returned when no GitHub token is configured.
	ErrMissingToken = errors.New("github token not provided")

	// ErrInvalid is returned when the configuration fails validation.
	ErrInvalid = errors.New("invalid configuration")
)

// Keys lists every configuration key.
var Keys = []string{
	"github_token", "owner", "project_number", "project_type", "repo",
	"sprint_start", "sprint_end", "sprint_label", "sprint_field", "points_field",
	"planned_points", "save_path", "chart_type", "graphql_endpoint", "timeout",
	"log_level", "log_format",
}

// SearchPaths are tried in order when no config file is given explicitly.
func SearchPaths() []string {
	paths := []string{"config.json", "config.yaml", "config.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".gh-burndown.yaml"))
	}
	return paths
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("project_type", string(types.ProjectTypeOrganization))
	v.SetDefault("chart_type", string(types.ChartBoth))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range Keys {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("github_token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// A missing file is not an error. Variables already set are left alone.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a config file into v. If path is empty the SearchPaths are
// tried and the first existing file wins; finding none is not an error.
// It returns the path that was read, or "".
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path == "" {
		for _, candidate := range SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return "", nil
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		std, err := hujson.Standardize(data)
		if err != nil {
			return "", fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		v.SetConfigType("json")
		if err := v.ReadConfig(bytes.NewReader(std)); err != nil {
			return "", fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return path, nil
}

// Load decodes v into a Config and normalizes enum aliases. It does not
// validate; call Check for that.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ProjectType = types.ProjectType(strings.ToLower(strings.TrimSpace(string(cfg.ProjectType))))
	cfg.ChartType = NormalizeChartType(string(cfg.ChartType))
	return cfg, nil
}

// NormalizeChartType maps a chart_type value to its canonical form. The
// plotting-library names "matplotlib" and "plotly" are accepted as aliases.
func NormalizeChartType(s string) types.ChartType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return types.ChartBoth
	case "static", "matplotlib", "png":
		return types.ChartStatic
	case "interactive", "plotly", "html":
		return types.ChartInteractive
	default:
		return types.ChartType(s)
	}
}

// Check validates cfg. A missing token is reported on its own as
// ErrMissingToken; every other problem is collected into one ErrInvalid.
func Check(cfg types.Config) error {
	if strings.TrimSpace(cfg.GitHubToken) == "" {
		return fmt.Errorf("%w: set github_token in the config file, the --token flag, or GITHUB_TOKEN", ErrMissingToken)
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// Validate returns every problem found in cfg, excluding the token.
func Validate(cfg types.Config) []string {
	var errs []string

	if cfg.Owner == "" {
		errs = append(errs, "owner is required")
	}
	if cfg.ProjectNumber <= 0 {
		errs = append(errs, "project_number must be a positive integer")
	}

	switch cfg.ProjectType {
	case types.ProjectTypeOrganization, types.ProjectTypeUser:
	case types.ProjectTypeRepository:
		if cfg.Repo == "" {
			errs = append(errs, "repo is required when project_type is repository")
		}
	default:
		errs = append(errs, fmt.Sprintf("project_type %q must be one of organization, repository, user", cfg.ProjectType))
	}

	start, startErr := ParseDate(cfg.SprintStart)
	if cfg.SprintStart == "" {
		errs = append(errs, "sprint_start is required")
	} else if startErr != nil {
		errs = append(errs, fmt.Sprintf("sprint_start: %v", startErr))
	}
	end, endErr := ParseDate(cfg.SprintEnd)
	if cfg.SprintEnd == "" {
		errs = append(errs, "sprint_end is required")
	} else if endErr != nil {
		errs = append(errs, fmt.Sprintf("sprint_end: %v", endErr))
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		errs = append(errs, fmt.Sprintf("sprint_end %s is before sprint_start %s", cfg.SprintEnd, cfg.SprintStart))
	}

	switch cfg.ChartType {
	case types.ChartStatic, types.ChartInteractive, types.ChartBoth:
	default:
		errs = append(errs, fmt.Sprintf("chart_type %q must be one of static (matplotlib), interactive (plotly), both", cfg.ChartType))
	}

	if cfg.PlannedPoints != nil && *cfg.PlannedPoints < 0 {
		errs = append(errs, "planned_points must not be negative")
	}

	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			errs = append(errs, fmt.Sprintf("timeout %q is not a duration", cfg.Timeout))
		}
	}

	return errs
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDate parses an ISO date or date-time. Values without an offset are
// taken as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO date", s)
}

// SprintWindow returns the parsed sprint start and end.
func SprintWindow(cfg types.Config) (time.Time, time.Time, error) {
	start, err := ParseDate(cfg.SprintStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: sprint_start: %v", ErrInvalid, err)
	}
	end, err := ParseDate(cfg.SprintEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: sprint_end: %v", ErrInvalid, err)
	}
	return start, end, nil
}

// Timeout returns the HTTP timeout, or zero when none is configured.
func Timeout(cfg types.Config) time.Duration {
	d, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Masked returns a copy of cfg safe to print.
func Masked(cfg types.Config) types.Config {
	token := cfg.GitHubToken
	switch {
	case token == "":
	case len(token) > 8:
		cfg.GitHubToken = token[:4] + "..." + token[len(token)-4:]
	default:
		cfg.GitHubToken = "****"
	}
	return cfg
}
