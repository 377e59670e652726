package main

import (
	"context"
	"fmt"
	"time"

	"lecture-sync/internal/cache"
	"lecture-sync/internal/client"
	"lecture-sync/internal/config"
	"lecture-sync/internal/jobs"
	applog "lecture-sync/internal/log"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	v      = config.NewViper()
	cfg    *config.Config
	logger logr.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lecture-sync",
	Short: "Client de synchronisation des jobs de transcription",
	Long: `lecture-sync soumet des fichiers média au backend de traitement et suit
l'avancement des jobs (pending, transcribing, generating_notes, completed, failed)
par polling.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("backend-url", "", "URL du backend (BACKEND_URL)")
	flags.String("user-id", "", "identifiant utilisateur transmis au backend (BACKEND_USER_ID)")
	flags.Duration("poll-interval", 0, "intervalle de polling (POLL_INTERVAL)")
	flags.String("log-level", "", "niveau de log: debug, info, warn, error (LOG_LEVEL)")
	flags.String("log-format", "", "format de log: console ou json (LOG_FORMAT)")

	bindFlag(v, "backend.url", "backend-url")
	bindFlag(v, "backend.user_id", "user-id")
	bindFlag(v, "polling.interval", "poll-interval")
	bindFlag(v, "log.level", "log-level")
	bindFlag(v, "log.format", "log-format")
}

func bindFlag(v *viper.Viper, key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	// .env est optionnel
	envErr := godotenv.Load()

	cfg = config.FromViper(v)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := applog.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	logger = l
	if envErr != nil {
		logger.V(1).Info("no .env file loaded", "error", envErr.Error())
	}
	return nil
}

// newJobService assemble client HTTP, cache et service de jobs
func newJobService(ctx context.Context) (jobs.Service, error) {
	backend := client.New(cfg.Backend.URL,
		client.WithUserID(cfg.Backend.UserID),
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithLogger(logger),
	)

	c, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	return jobs.NewJobServiceImpl(backend, c, logger), nil
}

// requestContext borne les appels ponctuels de la CLI
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.Polling.FetchTimeout+5*time.Second)
}
