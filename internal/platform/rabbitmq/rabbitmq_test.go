package rabbitmq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iga-community/internal/model"
)

func TestJobCodec(t *testing.T) {
	job := model.IngestJob{
		URLs:        []string{"https://www.theinternationalgirlsacademy.com/programs"},
		RequestedBy: "admin@example.org",
		RequestedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	body, err := EncodeJob(job)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"requested_by":"admin@example.org"`)

	got, err := DecodeJob(body)
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestDecodeJobRejectsGarbage(t *testing.T) {
	_, err := DecodeJob([]byte("{not json"))
	assert.Error(t, err)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), "http://not-amqp", "site.ingest")
	assert.Error(t, err)
}

func TestPingNil(t *testing.T) {
	assert.Error(t, Ping(nil))
}
