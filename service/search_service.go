package service

import (
	"context"
	"fmt"

	"github.com/tieubaoca/manualbot/database"
	"github.com/tieubaoca/manualbot/types"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

// SearchService returns the raw chunks nearest to a query, without asking the
// chat model.
type SearchService struct {
	embedder Embedder
	store    database.VectorStore
}

func NewSearchService(embedder Embedder, store database.VectorStore) *SearchService {
	return &SearchService{embedder: embedder, store: store}
}

// Search returns database.ErrCollectionNotFound for unknown manuals.
func (s *SearchService) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	if req.Manual == "" || req.Query == "" {
		return nil, types.BadRequest("manual and query are required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	collection, err := s.store.GetCollection(ctx, req.Manual)
	if err != nil {
		return nil, err
	}
	embedding, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	result, err := collection.Query(ctx, embedding, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]types.SearchHit, 0, result.Len())
	for i := range result.Documents {
		hit := types.SearchHit{
			ID:       result.IDs[i],
			Content:  result.Documents[i],
			Distance: result.Distances[i],
		}
		if i < len(result.Metadatas) && result.Metadatas[i] != nil {
			hit.Title = result.Metadatas[i][types.MetadataTitle]
		}
		hits = append(hits, hit)
	}
	return &types.SearchResponse{Results: hits}, nil
}
