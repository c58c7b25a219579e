package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/prompts"

	"github.com/tieubaoca/manualbot/database"
	"github.com/tieubaoca/manualbot/types"
)

var ErrInvalidRole = errors.New(`role must be "user"`)

type AnswerService struct {
	embedder Embedder
	store    database.VectorStore
	ai       AIService
	prompt   prompts.PromptTemplate
	topK     int
}

func NewAnswerService(embedder Embedder, store database.VectorStore, ai AIService) *AnswerService {
	return &AnswerService{
		embedder: embedder,
		store:    store,
		ai:       ai,
		prompt:   NewAnswerPrompt(),
	}
}

// Answer retrieves the chunks of manual nearest to content and asks the chat
// model to answer from them, taking history into account.
func (s *AnswerService) Answer(ctx context.Context, manual, role, content string, history []types.Message) (*types.AnswerResponse, error) {
	if role != types.RoleUser {
		return nil, types.NewAPIError(http.StatusBadRequest, ErrInvalidRole.Error(), ErrInvalidRole)
	}
	if manual == "" || content == "" {
		return nil, types.BadRequest("manual and content are required")
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	collection, err := s.store.GetOrCreateCollection(ctx, manual)
	if err != nil {
		return nil, err
	}
	result, err := collection.Query(ctx, embedding, s.topK)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("manual", manual).Int("documents", result.Len()).Msg("Retrieved context")

	prompt, err := s.prompt.Format(map[string]any{
		"context":  FormatContext(result.Documents),
		"question": content,
		"history":  FormatHistory(history),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt: %w", err)
	}

	output, err := s.ai.Chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("chat model failed: %w", err)
	}
	return &types.AnswerResponse{
		Status: http.StatusOK,
		Data:   types.AnswerData{OutputText: output},
		Msg:    "OK",
	}, nil
}
