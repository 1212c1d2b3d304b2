// Command loaddb fills the vector store with site content.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"iga-community/internal/app"
	"iga-community/internal/bootstrap"
	"iga-community/internal/config"
	"iga-community/internal/logging"
	rabbitmqClient "iga-community/internal/platform/rabbitmq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "loaddb",
		Short:         "Load International Girls Academy site content into the vector store",
		SilenceUsage:  true,
	}
	root.AddCommand(newIngestCmd(), newCreateCollectionCmd())
	return root
}

func newIngestCmd() *cobra.Command {
	var enqueue bool
	var requestedBy string

	cmd := &cobra.Command{
		Use:   "ingest [urls...]",
		Short: "Fetch, split, embed and store pages (configured URLs when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if enqueue {
				return runEnqueue(cmd.Context(), cfg, logger, requestedBy, args)
			}
			return runIngest(cmd.Context(), cfg, logger, args)
		},
	}
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "publish a job for the server's ingest worker instead of running here")
	cmd.Flags().StringVar(&requestedBy, "requested-by", "loaddb", "requester recorded on enqueued jobs")
	return cmd
}

func newCreateCollectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-collection",
		Short: "Create the vector collection if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			svc, closeFn, err := buildIngest(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.CreateCollection(cmd.Context()); err != nil {
				return err
			}
			logger.Info("collection ready", slog.String("collection", cfg.Vector.Collection))
			return nil
		},
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config failed: %w", err)
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format), nil
}

func runIngest(ctx context.Context, cfg *config.Config, logger *slog.Logger, urls []string) error {
	svc, closeFn, err := buildIngest(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := svc.Run(ctx, urls)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runEnqueue(ctx context.Context, cfg *config.Config, logger *slog.Logger, requestedBy string, urls []string) error {
	if cfg.RabbitMQ.URL == "" {
		return app.ErrQueueUnavailable
	}
	conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.IngestQueue)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc, closeFn, err := buildIngest(ctx, cfg, logger, rabbitmqClient.NewJobPublisher(conn, cfg.RabbitMQ.IngestQueue))
	if err != nil {
		return err
	}
	defer closeFn()

	job, err := svc.Enqueue(ctx, requestedBy, urls)
	if err != nil {
		return err
	}
	logger.Info("ingest job enqueued", slog.Int("urls", len(job.URLs)), slog.String("queue", cfg.RabbitMQ.IngestQueue))
	return nil
}

func buildIngest(ctx context.Context, cfg *config.Config, logger *slog.Logger, publisher app.JobPublisher) (*app.IngestService, func(), error) {
	store, err := bootstrap.OpenVectorStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close vector store failed", slog.Any("error", err))
		}
	}

	svc, err := bootstrap.NewIngestService(cfg, bootstrap.NewLLMClient(cfg), store, publisher, logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return svc, closeFn, nil
}
