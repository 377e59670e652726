package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lecture-sync/internal/api"
	"lecture-sync/internal/events"
	"lecture-sync/internal/storage"
	"lecture-sync/internal/tracking"
	"lecture-sync/internal/upload"
	"lecture-sync/internal/validation"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Démarre l'API de suivi des jobs",
	Long: `Démarre l'API HTTP du moniteur : vue agrégée des jobs avec polling,
suivi individuel, soumission de fichiers et gestion des dossiers.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "port d'écoute (PORT)")
	serveCmd.Flags().String("storage-type", "", "source des uploads: filesystem, garage, minio (STORAGE_TYPE)")
	if err := v.BindPFlag("server.port", serveCmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}
	if err := v.BindPFlag("storage.type", serveCmd.Flags().Lookup("storage-type")); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(serveCmd)
}

// @title Lecture Sync Monitor API
// @version 1.0.0
// @description Suivi des jobs de transcription et de génération de notes
// @host localhost:8090
// @BasePath /api/v1
func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	service, err := newJobService(ctx)
	if err != nil {
		return err
	}

	bus, err := events.NewBus(logger)
	if err != nil {
		return err
	}
	if cfg.Events.AMQPURL != "" {
		publisher, err := bus.ExportToAMQP(cfg.Events.AMQPURL, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		logger.Info("Serve: exporting events to AMQP")
	}

	syncOpts := []tracking.Option{
		tracking.WithInterval(cfg.Polling.Interval),
		tracking.WithFetchTimeout(cfg.Polling.FetchTimeout),
		tracking.WithLogger(logger),
		tracking.WithPublisher(bus),
	}
	aggregate := tracking.NewAggregate(service, syncOpts...)
	registry := tracking.NewRegistry(ctx, service, syncOpts...)
	defer registry.CloseAll()

	bus.OnJobSubmitted("refresh-aggregate", func(ctx context.Context, evt events.JobSubmitted) error {
		if err := aggregate.Refresh(ctx); err != nil {
			logger.Error(err, "Serve: refresh after submission failed", "job_id", evt.Job.ID)
		}
		return nil
	})
	bus.OnStatusChanged("log-status", func(ctx context.Context, evt events.StatusChanged) error {
		logger.Info("Serve: job status changed",
			"job_id", evt.JobID, "from", evt.From, "to", evt.To, "source", evt.Source)
		return nil
	})

	go func() {
		if err := bus.Run(ctx); err != nil {
			logger.Error(err, "Serve: event bus stopped")
		}
	}()
	<-bus.Running()
	defer bus.Close()

	if err := aggregate.Activate(ctx); err != nil {
		// Le polling reprendra au prochain refresh explicite
		logger.Error(err, "Serve: initial job list fetch failed")
	}
	defer aggregate.Deactivate()

	cleanup := tracking.NewCleanupService(registry, cfg.CleanupInterval, cfg.TrackerMaxAge, logger)
	go cleanup.Start(ctx)
	defer cleanup.Stop()

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	validatorCfg := validation.DefaultValidationConfig()
	validatorCfg.MaxFileSize = cfg.MaxUploadBytes

	router := api.SetupRouter(api.Dependencies{
		Service:   service,
		Aggregate: aggregate,
		Registry:  registry,
		Sources:   storage.NewSourceService(store),
		Validator: validation.NewAPIValidator(validatorCfg),
		OnSubmitted: func(ctx context.Context, s upload.Submission) {
			err := bus.PublishJobSubmitted(context.WithoutCancel(ctx), events.JobSubmitted{
				RequestID:   s.RequestID,
				Job:         s.Job,
				SubmittedAt: s.SubmittedAt,
			})
			if err != nil {
				logger.Error(err, "Serve: failed to publish submission", "job_id", s.Job.ID)
			}
		},
		Logger:         logger,
		Environment:    cfg.Environment,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	logger.Info("Serve: starting lecture-sync monitor",
		"port", cfg.Port,
		"backend", cfg.Backend.URL,
		"storage", cfg.Storage.Type,
		"cache", cfg.Cache.Type,
		"poll_interval", cfg.Polling.Interval)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Serve: shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Serve: shutdown complete")
	return nil
}
