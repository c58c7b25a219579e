package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tieubaoca/manualbot/database"
	"github.com/tieubaoca/manualbot/repository"
	"github.com/tieubaoca/manualbot/types"
)

// ManualService answers questions about the manuals themselves rather than
// their contents.
type ManualService struct {
	store   database.VectorStore
	uploads repository.UploadRepo
}

func NewManualService(store database.VectorStore, uploads repository.UploadRepo) *ManualService {
	return &ManualService{store: store, uploads: uploads}
}

func (s *ManualService) ListManuals(ctx context.Context) ([]string, error) {
	return s.store.ListCollections(ctx)
}

// GetManual returns database.ErrCollectionNotFound when title has never been
// uploaded to.
func (s *ManualService) GetManual(ctx context.Context, title string) (*types.ManualResponse, error) {
	collection, err := s.store.GetCollection(ctx, title)
	if err != nil {
		return nil, err
	}
	count, err := collection.Count(ctx)
	if err != nil {
		return nil, err
	}
	uploads := []*types.UploadRecord{}
	if s.uploads != nil {
		uploads, err = s.uploads.ListUploads(ctx, title)
		if err != nil {
			return nil, err
		}
	}
	return &types.ManualResponse{Title: title, NumChunks: count, Uploads: uploads}, nil
}

func (s *ManualService) DeleteManual(ctx context.Context, title string) error {
	if err := s.store.DeleteCollection(ctx, title); err != nil {
		return err
	}
	if s.uploads != nil {
		n, err := s.uploads.DeleteUploads(ctx, title)
		if err != nil {
			log.Error().Err(err).Str("manual", title).Msg("Failed to delete upload records")
		} else {
			log.Debug().Str("manual", title).Int64("records", n).Msg("Deleted upload records")
		}
	}
	log.Info().Str("manual", title).Msg("Deleted manual")
	return nil
}

func (s *ManualService) Health(ctx context.Context) (string, error) {
	return s.store.Heartbeat(ctx)
}
