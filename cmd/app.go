/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tieubaoca/manualbot/config"
	"github.com/tieubaoca/manualbot/database"
	"github.com/tieubaoca/manualbot/repository"
	"github.com/tieubaoca/manualbot/service"
)

// app holds every long-lived client, built once per process.
type app struct {
	cfg       *config.Config
	store     database.VectorStore
	mongo     *mongo.Client
	uploads   repository.UploadRepo
	extractor *service.ExtractService
	ingest    *service.IngestService
	answer    *service.AnswerService
	manuals   *service.ManualService
	search    *service.SearchService
	closers   []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	store, err := database.NewVectorStore(cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	a.store = store

	if cfg.MongoDB.URI != "" {
		client, err := database.NewMongoClient(ctx, cfg.MongoDB.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		a.mongo = client
		a.uploads = repository.NewUploadRepo(client.Database(cfg.MongoDB.Database).Collection("uploads"))
	} else {
		log.Info().Msg("mongodb.uri not set, upload records are not kept")
	}

	ai, embedder, err := service.NewAIServices(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	for _, v := range []any{ai, embedder} {
		c, ok := v.(io.Closer)
		if ok && (len(a.closers) == 0 || a.closers[0] != c) {
			a.closers = append(a.closers, c)
		}
	}

	a.extractor = service.NewExtractService(
		cfg.OCR,
		service.NewTesseractOCR(cfg.OCR.TesseractCmd, cfg.OCR.Language),
		service.NewPopplerRasterizer(cfg.OCR.PopplerPath, cfg.OCR.DPI),
	)
	splitter := service.NewTextSplitter(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	a.ingest = service.NewIngestService(a.extractor, splitter, embedder, a.store, a.uploads)
	a.answer = service.NewAnswerService(embedder, a.store, ai)
	a.manuals = service.NewManualService(a.store, a.uploads)
	a.search = service.NewSearchService(embedder, a.store)
	return a, nil
}

func (a *app) Close(ctx context.Context) {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close client")
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to disconnect MongoDB")
		}
	}
}
