package database

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"github.com/tieubaoca/manualbot/types"
)

// ChromemStore keeps manuals in an embedded chromem-go database, either in
// memory or persisted under a directory.
type ChromemStore struct {
	db       *chromem.DB
	dbPath   string
	inMemory bool
}

// NewChromemStore opens a persistent database at dbPath, or an in-memory one
// when dbPath is empty.
func NewChromemStore(dbPath string, compress bool) (*ChromemStore, error) {
	if dbPath == "" {
		return &ChromemStore{db: chromem.NewDB(), inMemory: true}, nil
	}
	db, err := chromem.NewPersistentDB(dbPath, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	log.Debug().Str("path", dbPath).Bool("compress", compress).Msg("Opened chromem database")
	return &ChromemStore{db: db, dbPath: dbPath}, nil
}

func (s *ChromemStore) GetOrCreateCollection(ctx context.Context, name string) (Collection, error) {
	c, err := s.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection %q: %w", name, err)
	}
	return &chromemCollection{c: c}, nil
}

func (s *ChromemStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	c := s.db.GetCollection(name, nil)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &chromemCollection{c: c}, nil
}

func (s *ChromemStore) ListCollections(ctx context.Context) ([]string, error) {
	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *ChromemStore) DeleteCollection(ctx context.Context, name string) error {
	if s.db.GetCollection(name, nil) == nil {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("failed to drop collection %q: %w", name, err)
	}
	return nil
}

func (s *ChromemStore) Heartbeat(ctx context.Context) (string, error) {
	if s.inMemory {
		return "chromem (in-memory)", nil
	}
	return "chromem (" + s.dbPath + ")", nil
}

type chromemCollection struct {
	c *chromem.Collection
}

func (c *chromemCollection) Name() string { return c.c.Name }

func (c *chromemCollection) Add(ctx context.Context, ids, documents []string, embeddings [][]float32, metadatas []map[string]string) error {
	if err := checkAddArgs(ids, documents, embeddings, metadatas); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(ids))
	for i := range ids {
		docs[i] = chromem.Document{
			ID:        ids[i],
			Content:   documents[i],
			Metadata:  metadatas[i],
			Embedding: embeddings[i],
		}
	}
	if err := c.c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (c *chromemCollection) Query(ctx context.Context, embedding []float32, nResults int) (*types.QueryResult, error) {
	limit := resultLimit(nResults)
	// chromem rejects nResults larger than the collection.
	if count := c.c.Count(); count < limit {
		limit = count
	}
	result := &types.QueryResult{}
	if limit == 0 {
		return result, nil
	}
	matches, err := c.c.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}
	for _, m := range matches {
		result.IDs = append(result.IDs, m.ID)
		result.Documents = append(result.Documents, m.Content)
		result.Metadatas = append(result.Metadatas, m.Metadata)
		result.Distances = append(result.Distances, 1-m.Similarity)
	}
	return result, nil
}

func (c *chromemCollection) Count(ctx context.Context) (int, error) {
	return c.c.Count(), nil
}
