// Package sqlite is an embedded vector store for local development and small
// deployments. Embeddings are float32 little-endian blobs and search is a
// brute-force scan with a bounded heap.
package sqlite

import (
	"container/heap"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"iga-community/internal/vectorstore"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS vector_collections (
		name       TEXT PRIMARY KEY,
		dimension  INTEGER NOT NULL,
		metric     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vector_documents (
		id         TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		text       TEXT NOT NULL,
		embedding  BLOB NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (collection, text)
	)`,
}

var ErrCollectionNotFound = errors.New("vector collection not found")

type Store struct {
	db         *sql.DB
	collection string
}

var _ vectorstore.Store = (*Store)(nil)

// Open opens (or creates) the database at path. ":memory:" works for tests.
func Open(ctx context.Context, path, collection string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite vector store failed: %w", err)
	}
	// One connection keeps :memory: databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create vector schema failed: %w", err)
		}
	}
	return &Store{db: db, collection: collection}, nil
}

func (s *Store) EnsureCollection(ctx context.Context, dimension int, metric string) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	if err := vectorstore.ValidateMetric(metric); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vector_collections (name, dimension, metric) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		s.collection, dimension, metric)
	if err != nil {
		return fmt.Errorf("create vector collection failed: %w", err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, text string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM vector_documents WHERE collection = ? AND text = ? LIMIT 1`,
		s.collection, text).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup vector document failed: %w", err)
	}
	return true, nil
}

// Insert stores doc. A document whose text is already present is ignored.
func (s *Store) Insert(ctx context.Context, doc vectorstore.Document) error {
	dimension, _, err := s.collectionInfo(ctx)
	if err != nil {
		return err
	}
	if len(doc.Vector) != dimension {
		return fmt.Errorf("vector has %d dimensions, collection expects %d", len(doc.Vector), dimension)
	}
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vector_documents (id, collection, text, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(collection, text) DO NOTHING`,
		id, s.collection, doc.Text, encodeFloat32s(doc.Vector), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert vector document failed: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]vectorstore.Match, error) {
	if limit <= 0 {
		limit = 10
	}
	_, metric, err := s.collectionInfo(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, embedding FROM vector_documents WHERE collection = ?`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("query vectors failed: %w", err)
	}
	defer rows.Close()

	h := &matchHeap{}
	var buf []float32
	for rows.Next() {
		var m vectorstore.Match
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan vector row failed: %w", err)
		}
		buf, err = decodeFloat32sInto(buf, blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding for %s failed: %w", m.ID, err)
		}
		m.Score = score(metric, vector, buf)

		if h.Len() < limit {
			heap.Push(h, m)
		} else if m.Score > (*h)[0].Score {
			(*h)[0] = m
			heap.Fix(h, 0)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector rows failed: %w", err)
	}

	out := make([]vectorstore.Match, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(vectorstore.Match)
	}
	return out, nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vector_documents WHERE collection = ?`, s.collection).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) collectionInfo(ctx context.Context) (int, string, error) {
	var dimension int
	var metric string
	err := s.db.QueryRowContext(ctx,
		`SELECT dimension, metric FROM vector_collections WHERE name = ?`, s.collection).Scan(&dimension, &metric)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", fmt.Errorf("%w: %s", ErrCollectionNotFound, s.collection)
	}
	if err != nil {
		return 0, "", fmt.Errorf("load vector collection failed: %w", err)
	}
	return dimension, metric, nil
}

// score returns a similarity where larger is better. Euclidean distance is
// negated so every metric sorts the same way.
func score(metric string, a, b []float32) float32 {
	if len(a) != len(b) {
		return float32(math.Inf(-1))
	}
	switch metric {
	case vectorstore.MetricCosine:
		na, nb := norm(a), norm(b)
		if na == 0 || nb == 0 {
			return 0
		}
		return dot(a, b) / (na * nb)
	case vectorstore.MetricEuclidean:
		var sum float32
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return -float32(math.Sqrt(float64(sum)))
	default:
		return dot(a, b)
	}
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float32) float32 {
	return float32(math.Sqrt(float64(dot(v, v))))
}

func encodeFloat32s(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeFloat32sInto(dst []float32, blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	n := len(blob) / 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return dst, nil
}

// matchHeap is a min-heap on Score holding the current top-K.
type matchHeap []vectorstore.Match

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x any)        { *h = append(*h, x.(vectorstore.Match)) }
func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
