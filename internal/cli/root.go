package cli

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtran/internal/batch"
	"github.com/mgpai22/subtran/internal/config"
	"github.com/mgpai22/subtran/internal/logging"
	"github.com/mgpai22/subtran/internal/translate"
)

type translatorFactory func(
	ctx context.Context,
	provider translate.Provider,
	apiKey string,
	opts translate.Options,
) (translate.Translator, error)

// app is the state shared by every subcommand of one invocation.
type app struct {
	verbose    bool
	configPath string
	envFile    string

	logger *logging.Logger
	config *config.Config

	// swapped out in tests
	newTranslator translatorFactory
	sleep         batch.Sleeper
}

func newRootCommand() *cobra.Command {
	a := &app{
		newTranslator: translate.Factory,
		sleep:         batch.Sleep,
	}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "subtran",
		Short: "Translate subtitle files through translation APIs",
		Long: `Subtran translates subtitle files (SRT, VTT, ASS/SSA, TTML) with
DeepL, Google Translate or an LLM provider.

Cues are sent in batches. Blank cues and timings are kept untouched,
and a failed batch is logged and skipped instead of aborting the run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = logging.NewLogger(a.verbose).With("run_id", uuid.NewString())
			if cmd.Annotations["skipConfigLoad"] == "true" {
				return nil
			}
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&a.configPath, "config", "", "Configuration file path (default ~/.config/subtran/config.toml)")
	rootCmd.PersistentFlags().
		StringVar(&a.envFile, "env-file", "", "Load environment variables from this file (default ./.env when present)")

	rootCmd.AddCommand(a.translateCommand())
	rootCmd.AddCommand(a.extractCommand())
	rootCmd.AddCommand(a.providersCommand())
	rootCmd.AddCommand(a.configCommand())

	return rootCmd
}

// loadConfig reads .env and the TOML file. Commands annotated with
// skipConfigLoad call it themselves once their own checks pass.
func (a *app) loadConfig() error {
	if a.config != nil {
		return nil
	}
	if err := config.LoadDotEnv(strings.TrimSpace(a.envFile)); err != nil {
		return err
	}
	cfg, path, exists, err := config.Load(strings.TrimSpace(a.configPath))
	if err != nil {
		return err
	}
	a.logger.Debugw("Configuration loaded", "path", path, "exists", exists)
	a.config = cfg
	return nil
}

func Execute() error {
	return newRootCommand().Execute()
}
