package commands

import (
	"fmt"

	"github.com/goblinsan/gh-burndown/pkg/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display information about the authenticated GitHub user",
	Long:  `Display information about the authenticated GitHub user using the configured token. Useful to check the token before charting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.GitHubToken == "" {
			return fmt.Errorf("%w: set it via --token, GITHUB_TOKEN, GH_BURNDOWN_GITHUB_TOKEN or the config file", config.ErrMissingToken)
		}

		user, err := newClient(cfg).GetAuthenticatedUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get authenticated user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Logged in as: %s\n", user.GetLogin())
		if user.GetName() != "" {
			fmt.Fprintf(out, "Name: %s\n", user.GetName())
		}
		if user.GetEmail() != "" {
			fmt.Fprintf(out, "Email: %s\n", user.GetEmail())
		}
		return nil
	},
}
