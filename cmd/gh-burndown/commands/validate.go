package commands

import (
	"fmt"
	"strings"

	"github.com/goblinsan/gh-burndown/pkg/config"
	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("print", false, "Print the resolved configuration as YAML (token masked)")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without calling GitHub",
	Long:  `Validate the resolved configuration (file, environment and flags). Checks required keys, sprint dates, project type and chart type.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		if printCfg, _ := cmd.Flags().GetBool("print"); printCfg {
			out, err := yaml.Marshal(config.Masked(cfg))
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
		}

		errs := validateConfig(cfg)
		if len(errs) > 0 {
			errOut := cmd.ErrOrStderr()
			fmt.Fprintf(errOut, "Validation failed with %d error(s):\n", len(errs))
			for i, e := range errs {
				fmt.Fprintf(errOut, "  %d. %s\n", i+1, e)
			}
			return fmt.Errorf("%w: %s", config.ErrInvalid, strings.Join(errs, "; "))
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid.")
		return nil
	},
}

// validateConfig is config.Validate plus the token check.
func validateConfig(cfg types.Config) []string {
	var errs []string
	if strings.TrimSpace(cfg.GitHubToken) == "" {
		errs = append(errs, "github_token is required (config file, --token, GH_BURNDOWN_GITHUB_TOKEN or GITHUB_TOKEN)")
	}
	return append(errs, config.Validate(cfg)...)
}
