package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"iga-community/internal/model"
)

// JobPublisher enqueues ingestion jobs for the ingest worker.
type JobPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewJobPublisher(conn *amqp.Connection, queueName string) *JobPublisher {
	return &JobPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *JobPublisher) Publish(ctx context.Context, job model.IngestJob) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := EncodeJob(job)
	if err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish ingest job failed: %w", err)
	}
	return nil
}

func EncodeJob(job model.IngestJob) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal ingest job failed: %w", err)
	}
	return payload, nil
}

func DecodeJob(body []byte) (model.IngestJob, error) {
	var job model.IngestJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("decode ingest job failed: %w", err)
	}
	return job, nil
}
