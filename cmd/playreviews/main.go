package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"play_reviews/internal/adapters/observability"
	"play_reviews/internal/adapters/playstore"
	"play_reviews/internal/app"
	"play_reviews/internal/domain"
	"play_reviews/internal/shared"
)

var (
	configPath string
	statePath  string
)

var rootCmd = &cobra.Command{
	Use:           "playreviews",
	Short:         "playreviews syncs Google Play reviews as protocol messages on stdout.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env := shared.Load()
		// stdout is the record stream; logs go to stderr
		log.Logger = observability.NewLogger(env.AppEnv, os.Stderr).
			With().Str("run_id", uuid.NewString()).Str("cmd", cmd.Name()).Logger()
		observability.Serve(env.MetricsAddr, observability.InitRegistry())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "Connector configuration file (JSON or YAML).")
	rootCmd.AddCommand(checkCmd, discoverCmd, readCmd)
	readCmd.Flags().StringVar(&statePath, "state", "", "State file from a previous run (file backend).")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSource(env shared.Config) *app.Source {
	client := playstore.New(playstore.Options{
		BaseURL:     env.PlayBase,
		RPS:         env.PlayRPS,
		MaxRetries:  env.MaxRetries,
		BackoffBase: env.Backoff,
		Timeout:     env.HTTPTimeout,
	})
	return app.NewSource(client, client)
}

func loadConfig() (domain.Config, error) {
	cfg, err := shared.LoadSourceConfig(configPath)
	if err != nil {
		return domain.Config{}, err
	}
	log.Info().Str("path", configPath).Str("app_id", cfg.AppID).Msg("config loaded")
	return cfg, nil
}
