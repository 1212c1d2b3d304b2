package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iga-community/internal/vectorstore"
)

// fakeQdrant keeps points in memory and answers the handful of endpoints
// the store uses.
type fakeQdrant struct {
	mu       sync.Mutex
	created  bool
	distance string
	texts    []string
	apiKey   string
}

func (f *fakeQdrant) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /collections/iga_site", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.apiKey = r.Header.Get("api-key")
		if f.created {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"status":{"error":"Wrong input: Collection iga_site already exists!"}}`))
			return
		}
		var body struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1536, body.Vectors.Size)
		f.created = true
		f.distance = body.Vectors.Distance
		_, _ = w.Write([]byte(`{"result":true}`))
	})
	mux.HandleFunc("POST /collections/iga_site/points/scroll", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filter struct {
				Must []struct {
					Key   string `json:"key"`
					Match struct {
						Value string `json:"value"`
					} `json:"match"`
				} `json:"must"`
			} `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		want := body.Filter.Must[0].Match.Value

		f.mu.Lock()
		defer f.mu.Unlock()
		points := []map[string]any{}
		for i, text := range f.texts {
			if text == want {
				points = append(points, map[string]any{"id": i})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"points": points}})
	})
	mux.HandleFunc("PUT /collections/iga_site/points", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		var body struct {
			Points []struct {
				ID      string `json:"id"`
				Payload struct {
					Text string `json:"text"`
				} `json:"payload"`
			} `json:"points"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Points, 1)
		assert.NotEmpty(t, body.Points[0].ID)

		f.mu.Lock()
		f.texts = append(f.texts, body.Points[0].Payload.Text)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"result":{"status":"completed"}}`))
	})
	mux.HandleFunc("POST /collections/iga_site/points/search", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Limit int `json:"limit"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 10, body.Limit)
		_, _ = w.Write([]byte(`{"result":[
			{"id":"4f1c","score":0.91,"payload":{"text":"Kumbathon is our annual hackathon"}},
			{"id":7,"score":0.42,"payload":{"text":"Donate today"}}
		]}`))
	})
	return mux
}

func newStore(t *testing.T) (*Store, *fakeQdrant) {
	t.Helper()
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return New(Config{URL: srv.URL + "/", APIKey: "secret", Collection: "iga_site"}, srv.Client()), fake
}

func TestEnsureCollectionIsIdempotent(t *testing.T) {
	store, fake := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureCollection(ctx, 1536, vectorstore.MetricDotProduct))
	require.NoError(t, store.EnsureCollection(ctx, 1536, vectorstore.MetricDotProduct))
	assert.Equal(t, "Dot", fake.distance)
	assert.Equal(t, "secret", fake.apiKey)
}

func TestEnsureCollectionRejectsBadInput(t *testing.T) {
	store, _ := newStore(t)
	assert.Error(t, store.EnsureCollection(context.Background(), 0, vectorstore.MetricCosine))
	assert.ErrorIs(t, store.EnsureCollection(context.Background(), 3, "hamming"), vectorstore.ErrUnknownMetric)
}

func TestInsertThenExists(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	found, err := store.Exists(ctx, "Our team")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Insert(ctx, vectorstore.Document{Text: "Our team", Vector: []float32{1, 0}}))

	found, err = store.Exists(ctx, "Our team")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSearch(t *testing.T) {
	store, _ := newStore(t)

	matches, err := store.Search(context.Background(), []float32{0.1, 0.2}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "4f1c", matches[0].ID)
	assert.Equal(t, "7", matches[1].ID)
	assert.Equal(t, "Kumbathon is our annual hackathon", matches[0].Text)
	assert.InDelta(t, 0.91, matches[0].Score, 1e-6)
}

func TestDistanceFor(t *testing.T) {
	d, err := distanceFor(vectorstore.MetricEuclidean)
	require.NoError(t, err)
	assert.Equal(t, "Euclid", d)
	d, err = distanceFor(vectorstore.MetricCosine)
	require.NoError(t, err)
	assert.Equal(t, "Cosine", d)
}
