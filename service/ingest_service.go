package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tieubaoca/manualbot/database"
	"github.com/tieubaoca/manualbot/repository"
	"github.com/tieubaoca/manualbot/types"
)

const defaultEmbedConcurrency = 4

var ErrNoText = errors.New("No text could be extracted from the uploaded files.")

// TextExtractor is the part of ExtractService the orchestrators need.
type TextExtractor interface {
	ExtractFile(ctx context.Context, name string, r io.Reader) (string, error)
}

// Splitter cuts text into ordered chunks.
type Splitter interface {
	Split(text string) ([]string, error)
}

type IngestService struct {
	extractor   TextExtractor
	splitter    Splitter
	embedder    Embedder
	store       database.VectorStore
	uploads     repository.UploadRepo
	concurrency int
}

// NewIngestService wires the ingestion pipeline. uploads may be nil.
func NewIngestService(
	extractor TextExtractor,
	splitter Splitter,
	embedder Embedder,
	store database.VectorStore,
	uploads repository.UploadRepo,
) *IngestService {
	return &IngestService{
		extractor:   extractor,
		splitter:    splitter,
		embedder:    embedder,
		store:       store,
		uploads:     uploads,
		concurrency: defaultEmbedConcurrency,
	}
}

// Ingest extracts, chunks and embeds files and stores every chunk under
// title. It returns the number of chunks stored.
func (s *IngestService) Ingest(ctx context.Context, title string, files []types.SourceFile) (int, error) {
	if err := validateUpload(title, files); err != nil {
		return 0, err
	}

	texts := make([]string, 0, len(files))
	for _, f := range files {
		text, err := s.extractor.ExtractFile(ctx, f.Name, f.Content)
		if err != nil {
			return 0, fmt.Errorf("failed to process %s: %w", f.Name, err)
		}
		log.Debug().Str("file", f.Name).Int("chars", len(text)).Msg("Extracted text")
		texts = append(texts, text)
	}

	chunks, err := s.splitter.Split(strings.Join(texts, "\n"))
	if err != nil {
		return 0, fmt.Errorf("failed to split text: %w", err)
	}
	if len(chunks) == 0 {
		return 0, ErrNoText
	}

	embeddings, err := s.embedAll(ctx, chunks)
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	for i := range chunks {
		ids[i] = title + "_" + uuid.NewString()
		metadatas[i] = map[string]string{types.MetadataTitle: title}
	}

	collection, err := s.store.GetOrCreateCollection(ctx, title)
	if err != nil {
		return 0, err
	}
	if err := collection.Add(ctx, ids, chunks, embeddings, metadatas); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}
	log.Info().Str("manual", title).Int("files", len(files)).Int("chunks", len(chunks)).Msg("Ingested documents")

	s.recordUpload(ctx, title, files, len(chunks))
	return len(chunks), nil
}

func validateUpload(title string, files []types.SourceFile) error {
	if strings.TrimSpace(title) == "" {
		return types.BadRequest("Title is required")
	}
	if len(files) == 0 {
		return types.BadRequest("No file part")
	}
	for _, f := range files {
		if f.Name == "" {
			return types.BadRequest(ErrNoFileSelected.Error())
		}
	}
	for _, f := range files {
		if !IsSupportedFile(f.Name) {
			return types.NewAPIError(http.StatusBadRequest, ErrUnsupportedFileType.Error(), ErrUnsupportedFileType)
		}
	}
	return nil
}

// embedAll embeds chunks concurrently; result i belongs to chunk i.
func (s *IngestService) embedAll(ctx context.Context, chunks []string) ([][]float32, error) {
	embeddings := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			emb, err := s.embedder.Embed(gctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %d: %w", i, err)
			}
			embeddings[i] = emb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

func (s *IngestService) recordUpload(ctx context.Context, title string, files []types.SourceFile, numChunks int) {
	if s.uploads == nil {
		return
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	record := &types.UploadRecord{
		Title:     title,
		Files:     names,
		NumChunks: numChunks,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.uploads.CreateUpload(ctx, record); err != nil {
		log.Error().Err(err).Str("manual", title).Msg("Failed to save upload record")
	}
}
