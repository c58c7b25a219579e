package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/tieubaoca/manualbot/types"
)

// DefaultQueryResults is used when a caller does not bound a similarity query.
const DefaultQueryResults = 10

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrLengthMismatch     = errors.New("ids, documents, embeddings and metadatas must have equal length")
)

// VectorStore is a vector database holding one collection per manual title.
type VectorStore interface {
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)
	GetCollection(ctx context.Context, name string) (Collection, error)
	ListCollections(ctx context.Context) ([]string, error)
	DeleteCollection(ctx context.Context, name string) error
	Heartbeat(ctx context.Context) (string, error)
}

// Collection is a named, append-only group of embedded chunks.
type Collection interface {
	Name() string
	Add(ctx context.Context, ids, documents []string, embeddings [][]float32, metadatas []map[string]string) error
	Query(ctx context.Context, embedding []float32, nResults int) (*types.QueryResult, error)
	Count(ctx context.Context) (int, error)
}

func checkAddArgs(ids, documents []string, embeddings [][]float32, metadatas []map[string]string) error {
	n := len(ids)
	if len(documents) != n || len(embeddings) != n || len(metadatas) != n {
		return fmt.Errorf("%w: ids=%d documents=%d embeddings=%d metadatas=%d",
			ErrLengthMismatch, n, len(documents), len(embeddings), len(metadatas))
	}
	return nil
}

func resultLimit(nResults int) int {
	if nResults <= 0 {
		return DefaultQueryResults
	}
	return nResults
}
