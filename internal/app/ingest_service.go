package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"iga-community/internal/model"
	"iga-community/internal/scrape"
	"iga-community/internal/vectorstore"
)

var (
	ErrQueueUnavailable = errors.New("ingest queue is not configured")
	ErrNoIngestURLs     = errors.New("no urls to ingest")
)

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*scrape.Page, error)
}

type Splitter interface {
	Split(text string) []string
}

type JobPublisher interface {
	Publish(ctx context.Context, job model.IngestJob) error
}

type IngestConfig struct {
	URLs             []string
	Dimension        int
	Metric           string
	FetchConcurrency int
}

// IngestReport summarises one loader run. Failed lists URLs that could not
// be fetched; their chunks are simply missing from the store.
type IngestReport struct {
	Pages    int      `json:"pages"`
	Chunks   int      `json:"chunks"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

type IngestService struct {
	fetcher   PageFetcher
	splitter  Splitter
	embedder  Embedder
	store     vectorstore.Store
	publisher JobPublisher
	cfg       IngestConfig
	logger    *slog.Logger
}

// NewIngestService builds the loader. publisher may be nil when RabbitMQ is
// disabled; Enqueue then returns ErrQueueUnavailable.
func NewIngestService(
	fetcher PageFetcher,
	splitter Splitter,
	embedder Embedder,
	store vectorstore.Store,
	publisher JobPublisher,
	cfg IngestConfig,
	logger *slog.Logger,
) *IngestService {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 4
	}
	return &IngestService{
		fetcher:   fetcher,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *IngestService) CreateCollection(ctx context.Context) error {
	if err := s.store.EnsureCollection(ctx, s.cfg.Dimension, s.cfg.Metric); err != nil {
		return fmt.Errorf("ensure collection failed: %w", err)
	}
	return nil
}

// Run fetches urls (the configured list when empty), splits them and stores
// one document per chunk text not already present. Embedding or storage
// errors abort the run.
func (s *IngestService) Run(ctx context.Context, urls []string) (*IngestReport, error) {
	urls = s.resolveURLs(urls)
	if len(urls) == 0 {
		return nil, ErrNoIngestURLs
	}
	if err := s.CreateCollection(ctx); err != nil {
		return nil, err
	}

	pages, err := s.fetchAll(ctx, urls)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{}
	for i, page := range pages {
		if page == nil {
			report.Failed = append(report.Failed, urls[i])
			continue
		}
		report.Pages++

		for _, chunk := range s.splitter.Split(page.Text) {
			report.Chunks++
			inserted, err := s.storeChunk(ctx, chunk)
			if err != nil {
				return report, fmt.Errorf("store chunk from %s failed: %w", page.URL, err)
			}
			if inserted {
				report.Inserted++
			} else {
				report.Skipped++
			}
		}
	}

	s.logger.InfoContext(ctx, "ingest finished",
		slog.Int("pages", report.Pages),
		slog.Int("chunks", report.Chunks),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// Enqueue hands the run to the ingest worker.
func (s *IngestService) Enqueue(ctx context.Context, requestedBy string, urls []string) (*model.IngestJob, error) {
	if s.publisher == nil {
		return nil, ErrQueueUnavailable
	}
	job := model.IngestJob{
		URLs:        s.resolveURLs(urls),
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	}
	if len(job.URLs) == 0 {
		return nil, ErrNoIngestURLs
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		return nil, err
	}
	return &job, nil
}

// fetchAll downloads pages concurrently. The result is index-aligned with
// urls; a nil entry marks a failed fetch.
func (s *IngestService) fetchAll(ctx context.Context, urls []string) ([]*scrape.Page, error) {
	pages := make([]*scrape.Page, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			page, err := s.fetcher.Fetch(gctx, u)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.WarnContext(gctx, "fetch page failed", slog.String("url", u), slog.Any("error", err))
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch pages failed: %w", err)
	}
	return pages, nil
}

func (s *IngestService) storeChunk(ctx context.Context, chunk string) (bool, error) {
	exists, err := s.store.Exists(ctx, chunk)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	vector, err := s.embedder.Embed(ctx, chunk)
	if err != nil {
		return false, err
	}
	if err := s.store.Insert(ctx, vectorstore.Document{Text: chunk, Vector: vector}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *IngestService) resolveURLs(urls []string) []string {
	var out []string
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		out = append(out, s.cfg.URLs...)
	}
	return out
}
