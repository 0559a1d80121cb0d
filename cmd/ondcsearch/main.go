package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/config"
	logpkg "github.com/kailas-cloud/ondcsearch/internal/logger"
	"github.com/kailas-cloud/ondcsearch/internal/version"
)

// app carries what every subcommand needs once the root has bootstrapped.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var env string

	root := &cobra.Command{
		Use:          "ondcsearch",
		Short:        "Hybrid keyword and vector product search for the ONDC catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is fine; the environment may already be populated.
			_ = godotenv.Load()

			if cmd.Name() == "version" {
				return nil
			}
			return a.bootstrap(env)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&env, "env", "", "config environment (local, dev, prod); defaults to APP_ENV")

	root.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newIngestCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) bootstrap(env string) error {
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	a.env = env
	a.cfg = cfg
	a.logger = logger
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
