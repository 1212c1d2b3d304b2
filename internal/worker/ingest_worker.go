package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"iga-community/internal/app"
	rabbitmqClient "iga-community/internal/platform/rabbitmq"
)

// IngestRunner is the part of the ingest service the worker drives.
type IngestRunner interface {
	Run(ctx context.Context, urls []string) (*app.IngestReport, error)
}

// IngestWorker consumes ingest jobs one at a time. A job that fails to decode
// or run is dropped, not requeued, so a poison message cannot loop.
type IngestWorker struct {
	conn      *amqp.Connection
	runner    IngestRunner
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestWorker(conn *amqp.Connection, runner IngestRunner, queueName string, logger *slog.Logger) *IngestWorker {
	return &IngestWorker{
		conn:      conn,
		runner:    runner,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *IngestWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker prefetch failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.Handle(workerCtx, d.Body); err != nil {
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// Handle decodes and runs one job body.
func (w *IngestWorker) Handle(ctx context.Context, body []byte) error {
	job, err := rabbitmqClient.DecodeJob(body)
	if err != nil {
		w.logger.ErrorContext(ctx, "worker decode job failed", slog.Any("error", err))
		return err
	}

	report, err := w.runner.Run(ctx, job.URLs)
	if err != nil {
		w.logger.ErrorContext(ctx, "worker ingest failed",
			slog.String("requested_by", job.RequestedBy),
			slog.Any("error", err),
		)
		return err
	}

	w.logger.InfoContext(ctx, "worker ingest finished",
		slog.String("requested_by", job.RequestedBy),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", len(report.Failed)),
	)
	return nil
}

func (w *IngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
