package commands

import (
	"fmt"

	"github.com/goblinsan/gh-burndown/pkg/chart"
	"github.com/goblinsan/gh-burndown/pkg/config"
	"github.com/goblinsan/gh-burndown/pkg/engine"
	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	rootCmd.AddCommand(chartCmd)
	addChartFlags(chartCmd.Flags())
}

func addChartFlags(flags *pflag.FlagSet) {
	flags.String("chart-type", "", "static, interactive or both (matplotlib and plotly are accepted)")
	flags.String("save-path", "", "where to write the chart image (default burndown.png)")
	flags.Float64("planned-points", 0, "story points committed at sprint start; overrides the item total")
	flags.String("sprint-label", "", "label or sprint field value selecting the sprint's items")
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Fetch a project board and draw its sprint burndown",
	Long: `Fetch every item of the configured GitHub Projects V2 board in a single
GraphQL request, keep the items belonging to the sprint, and write a burndown
chart of remaining story points against the ideal line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		applyChartFlags(cmd.Flags(), &cfg)
		if err := config.Check(cfg); err != nil {
			return err
		}

		report, err := engine.Run(cmd.Context(), newClient(cfg), cfg, engine.Options{Logger: log})
		if err != nil {
			return err
		}

		if err := chart.Render(cfg.ChartType, report.Burndown, report.Project.ProjectName, cfg.SavePath, log); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), report)
		return nil
	},
}

// applyChartFlags copies explicitly set flags over the loaded config.
func applyChartFlags(flags *pflag.FlagSet, cfg *types.Config) {
	if flags.Changed("chart-type") {
		v, _ := flags.GetString("chart-type")
		cfg.ChartType = config.NormalizeChartType(v)
	}
	if flags.Changed("save-path") {
		cfg.SavePath, _ = flags.GetString("save-path")
	}
	if flags.Changed("planned-points") {
		v, _ := flags.GetFloat64("planned-points")
		cfg.PlannedPoints = &v
	}
	if flags.Changed("sprint-label") {
		cfg.SprintLabel, _ = flags.GetString("sprint-label")
	}
}
