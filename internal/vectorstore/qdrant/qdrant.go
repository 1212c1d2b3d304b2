// Package qdrant is a small REST client for a Qdrant collection. Each point
// carries its chunk text in the "text" payload field.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"iga-community/internal/vectorstore"
)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

var _ vectorstore.Store = (*Store)(nil)

func New(cfg Config, httpClient *http.Client) *Store {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Store{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     httpClient,
	}
}

func distanceFor(metric string) (string, error) {
	switch metric {
	case vectorstore.MetricDotProduct:
		return "Dot", nil
	case vectorstore.MetricCosine:
		return "Cosine", nil
	case vectorstore.MetricEuclidean:
		return "Euclid", nil
	default:
		return "", vectorstore.ValidateMetric(metric)
	}
}

func (s *Store) EnsureCollection(ctx context.Context, dimension int, metric string) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	distance, err := distanceFor(metric)
	if err != nil {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": distance,
		},
	}

	status, raw, err := s.do(ctx, http.MethodPut, s.collectionURL(""), body)
	if err != nil {
		return err
	}
	if status == http.StatusConflict || strings.Contains(strings.ToLower(string(raw)), "already exists") {
		return nil
	}
	if status >= 300 {
		return fmt.Errorf("qdrant create collection status %d: %s", status, string(raw))
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, text string) (bool, error) {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "text", "match": map[string]any{"value": text}},
			},
		},
		"limit":        1,
		"with_payload": false,
		"with_vector":  false,
	}
	var resp struct {
		Result struct {
			Points []json.RawMessage `json:"points"`
		} `json:"result"`
	}
	if err := s.call(ctx, http.MethodPost, s.collectionURL("/points/scroll"), body, &resp); err != nil {
		return false, err
	}
	return len(resp.Result.Points) > 0, nil
}

func (s *Store) Insert(ctx context.Context, doc vectorstore.Document) error {
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	body := map[string]any{
		"points": []map[string]any{{
			"id":      id,
			"vector":  doc.Vector,
			"payload": map[string]any{"text": doc.Text},
		}},
	}
	return s.call(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil)
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.Match, error) {
	if limit <= 0 {
		limit = 10
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      json.RawMessage `json:"id"`
			Score   float32         `json:"score"`
			Payload struct {
				Text string `json:"text"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := s.call(ctx, http.MethodPost, s.collectionURL("/points/search"), body, &resp); err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, vectorstore.Match{
			ID:    strings.Trim(string(r.ID), `"`),
			Text:  r.Payload.Text,
			Score: r.Score,
		})
	}
	return matches, nil
}

func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Store) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

// call is do plus a status check and optional JSON decoding into out.
func (s *Store) call(ctx context.Context, method, url string, body, out any) error {
	status, raw, err := s.do(ctx, method, url, body)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant %s %s status %d: %s", method, url, status, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse qdrant response failed: %w", err)
	}
	return nil
}

func (s *Store) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal qdrant request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("build qdrant request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read qdrant response failed: %w", err)
	}
	return resp.StatusCode, raw, nil
}
