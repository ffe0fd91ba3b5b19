package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/goblinsan/gh-burndown/pkg/config"
	"github.com/goblinsan/gh-burndown/pkg/github"
	"github.com/goblinsan/gh-burndown/pkg/logging"
	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// usedConfigFile and configFileErr record the outcome of initConfig so
	// commands can report it once a logger exists.
	usedConfigFile string
	configFileErr  error

	rootCmd = &cobra.Command{
		Use:   "gh-burndown",
		Short: "Sprint burndown charts for GitHub Projects V2 boards",
		Long: `gh-burndown fetches the items of a GitHub Projects V2 board, filters them
to a sprint, and draws a burndown chart comparing remaining story points
against an ideal straight-line descent. It can also serve the same
calculation to AI agents over the Model Context Protocol.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// Default action when no subcommand is specified
			cmd.Help()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is config.json, config.yaml or $HOME/.gh-burndown.yaml)")
	pf.String("token", "", "GitHub personal access token")
	pf.String("log-level", "", "log level: debug, info, warn or error")

	// Bind flags to viper
	viper.BindPFlag("github_token", pf.Lookup("token"))
	viper.BindPFlag("log_level", pf.Lookup("log-level"))

	config.SetDefaults(viper.GetViper())
}

// initConfig loads .env, then the config file. Errors are kept for loadConfig.
func initConfig() {
	if err := config.LoadDotEnv(".env"); err != nil {
		configFileErr = err
		return
	}
	usedConfigFile, configFileErr = config.ReadFile(viper.GetViper(), cfgFile)
}

// loadConfig decodes the resolved configuration and builds the logger it
// describes. The returned logger is usable even when err is non-nil.
func loadConfig() (types.Config, zerolog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, log, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	if configFileErr != nil {
		return cfg, log, fmt.Errorf("%w: %v", config.ErrInvalid, configFileErr)
	}
	if usedConfigFile != "" {
		log.Debug().Str("path", usedConfigFile).Msg("using config file")
	}
	return cfg, log, nil
}

// newClient builds a GitHub client from cfg.
func newClient(cfg types.Config) *github.Client {
	return github.NewClientWithOptions(cfg.GitHubToken, github.Options{
		GraphQLEndpoint: cfg.GraphQLEndpoint,
		Timeout:         config.Timeout(cfg),
	})
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, github.ErrUnauthorized),
		errors.Is(err, github.ErrRateLimit),
		errors.Is(err, github.ErrProjectNotFound):
		return 2
	case errors.Is(err, github.ErrNetwork):
		return 3
	case errors.Is(err, config.ErrInvalid), errors.Is(err, config.ErrMissingToken):
		return 4
	default:
		return 1
	}
}
