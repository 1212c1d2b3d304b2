package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestFixture(pages map[string]string, publisher JobPublisher) (*IngestService, *fakeVectorStore, *fakeEmbedder) {
	store := &fakeVectorStore{}
	embedder := &fakeEmbedder{}
	svc := NewIngestService(
		&fakeFetcher{pages: pages},
		lineSplitter{},
		embedder,
		store,
		publisher,
		IngestConfig{
			URLs:             []string{"https://site/ourteam", "https://site/programs"},
			Dimension:        1536,
			Metric:           "dot_product",
			FetchConcurrency: 2,
		},
		discardLogger(),
	)
	return svc, store, embedder
}

func TestIngestRunInsertsUniqueChunks(t *testing.T) {
	svc, store, embedder := newIngestFixture(map[string]string{
		"https://site/ourteam":  "Meet the team\nDonate today",
		"https://site/programs": "Kumbathon\nDonate today",
	}, nil)

	report, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 4, report.Chunks)
	assert.Equal(t, 3, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Failed)

	assert.Equal(t, 1, store.ensured)
	assert.Equal(t, 1536, store.dimension)
	assert.Equal(t, "dot_product", store.metric)
	require.Len(t, store.docs, 3)
	assert.Equal(t, "Meet the team", store.docs[0].Text)
	assert.Equal(t, "Kumbathon", store.docs[2].Text)
	assert.Len(t, embedder.calls, 3)
}

func TestIngestRunIsIdempotent(t *testing.T) {
	svc, store, _ := newIngestFixture(map[string]string{
		"https://site/ourteam":  "Meet the team",
		"https://site/programs": "Kumbathon",
	}, nil)

	_, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)
	report, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 2, report.Skipped)
	assert.Len(t, store.docs, 2)
}

func TestIngestRunRecordsFailedFetch(t *testing.T) {
	svc, store, _ := newIngestFixture(map[string]string{
		"https://site/programs": "Kumbathon",
	}, nil)

	report, err := svc.Run(context.Background(), []string{"https://site/missing", " https://site/programs "})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://site/missing"}, report.Failed)
	assert.Equal(t, 1, report.Pages)
	assert.Len(t, store.docs, 1)
}

func TestIngestRunAbortsOnEmbedError(t *testing.T) {
	svc, store, embedder := newIngestFixture(map[string]string{
		"https://site/ourteam":  "Meet the team",
		"https://site/programs": "Kumbathon",
	}, nil)
	embedder.err = errors.New("quota exceeded")

	_, err := svc.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Empty(t, store.docs)
}

func TestIngestEnqueue(t *testing.T) {
	pub := &fakePublisher{}
	svc, _, _ := newIngestFixture(nil, pub)

	job, err := svc.Enqueue(context.Background(), "admin@example.org", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://site/ourteam", "https://site/programs"}, job.URLs)
	require.Len(t, pub.jobs, 1)
	assert.Equal(t, "admin@example.org", pub.jobs[0].RequestedBy)
	assert.False(t, pub.jobs[0].RequestedAt.IsZero())
}

func TestIngestEnqueueWithoutQueue(t *testing.T) {
	svc, _, _ := newIngestFixture(nil, nil)
	_, err := svc.Enqueue(context.Background(), "admin@example.org", nil)
	assert.ErrorIs(t, err, ErrQueueUnavailable)
}
