// Package vectorstore defines the document store behind site search. Each
// document is one unique text chunk and its embedding; documents are written
// once and never updated.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
)

const (
	MetricDotProduct = "dot_product"
	MetricCosine     = "cosine"
	MetricEuclidean  = "euclidean"
)

var ErrUnknownMetric = errors.New("unknown similarity metric")

type Document struct {
	ID     string
	Text   string
	Vector []float32
}

// Match is a search hit. Results are ordered best first; Score is whatever
// the backend reports for the collection's metric.
type Match struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

type Store interface {
	// EnsureCollection creates the collection if missing. An existing
	// collection is not an error.
	EnsureCollection(ctx context.Context, dimension int, metric string) error
	// Exists reports whether a document with exactly this text is stored.
	Exists(ctx context.Context, text string) (bool, error)
	Insert(ctx context.Context, doc Document) error
	Search(ctx context.Context, vector []float32, limit int) ([]Match, error)
	Close() error
}

func ValidateMetric(metric string) error {
	switch metric {
	case MetricDotProduct, MetricCosine, MetricEuclidean:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
}
