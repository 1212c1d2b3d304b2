package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"iga-community/internal/ai"
	"iga-community/internal/app"
	"iga-community/internal/config"
	"iga-community/internal/content"
	"iga-community/internal/logging"
	"iga-community/internal/platform/database"
	rabbitmqClient "iga-community/internal/platform/rabbitmq"
	redisClient "iga-community/internal/platform/redis"
	"iga-community/internal/scrape"
	"iga-community/internal/textsplit"
	"iga-community/internal/vectorstore"
	"iga-community/internal/vectorstore/qdrant"
	"iga-community/internal/vectorstore/sqlite"
	"iga-community/internal/worker"
)

type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Catalog     *content.Catalog
	VectorStore vectorstore.Store
	LLM         *ai.OpenAICompatibleClient
	Ingest      *app.IngestService
	IngestWork  *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.connect(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	catalog, err := content.Load()
	if err != nil {
		return fmt.Errorf("load content failed: %w", err)
	}
	a.Catalog = catalog

	a.DB, err = database.New(ctx, cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx, a.DB, cfg.Database.Driver); err != nil {
		return err
	}

	a.Redis, err = redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	a.VectorStore, err = OpenVectorStore(ctx, cfg)
	if err != nil {
		return err
	}
	a.LLM = NewLLMClient(cfg)

	var publisher app.JobPublisher
	if cfg.RabbitMQ.URL != "" {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.IngestQueue)
		if err != nil {
			return err
		}
		publisher = rabbitmqClient.NewJobPublisher(a.MQConn, cfg.RabbitMQ.IngestQueue)
	}

	a.Ingest, err = NewIngestService(cfg, a.LLM, a.VectorStore, publisher, a.Logger)
	if err != nil {
		return err
	}

	if a.MQConn != nil {
		a.IngestWork = worker.NewIngestWorker(a.MQConn, a.Ingest, cfg.RabbitMQ.IngestQueue, a.Logger)
		if err := a.IngestWork.Start(ctx); err != nil {
			return fmt.Errorf("start ingest worker failed: %w", err)
		}
	}
	return nil
}

// OpenVectorStore returns the configured backend.
func OpenVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.Vector.Backend {
	case "sqlite":
		return sqlite.Open(ctx, cfg.Vector.SQLitePath, cfg.Vector.Collection)
	case "qdrant":
		return qdrant.New(qdrant.Config{
			URL:        cfg.Vector.URL,
			APIKey:     cfg.Vector.APIKey,
			Collection: cfg.Vector.Collection,
		}, nil), nil
	default:
		return nil, fmt.Errorf("unsupported vector backend %q", cfg.Vector.Backend)
	}
}

func NewLLMClient(cfg *config.Config) *ai.OpenAICompatibleClient {
	return ai.NewOpenAICompatibleClient(ai.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		ChatModel:      cfg.LLM.ChatModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	}, nil)
}

// NewIngestService wires the loader pipeline. publisher may be nil.
func NewIngestService(cfg *config.Config, embedder app.Embedder, store vectorstore.Store, publisher app.JobPublisher, logger *slog.Logger) (*app.IngestService, error) {
	splitter, err := textsplit.NewRecursiveSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("build splitter failed: %w", err)
	}
	fetcher := scrape.NewFetcher(&http.Client{Timeout: 30 * time.Second}, cfg.Ingest.UserAgent)

	return app.NewIngestService(
		fetcher,
		splitter,
		embedder,
		store,
		publisher,
		app.IngestConfig{
			URLs:             cfg.Ingest.URLs,
			Dimension:        cfg.LLM.EmbeddingDimension,
			Metric:           cfg.Vector.Metric,
			FetchConcurrency: cfg.Ingest.FetchConcurrency,
		},
		logger,
	), nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWork != nil {
		a.IngestWork.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.VectorStore != nil {
		if err := a.VectorStore.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
