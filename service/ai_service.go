package service

import (
	"context"
	"fmt"

	"github.com/tieubaoca/manualbot/config"
)

// AIService turns a fully rendered prompt into a model answer.
type AIService interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewAIServices builds the chat model and embedder selected by cfg. Both may
// be served by the same client.
func NewAIServices(ctx context.Context, cfg *config.Config) (AIService, Embedder, error) {
	var (
		openaiSvc *OpenAIService
		geminiSvc *GeminiService
	)
	need := map[string]bool{cfg.LLM.Provider: true, cfg.Embedding.Provider: true}
	if need["openai"] {
		openaiSvc = NewOpenAIService(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel, cfg.OpenAI.EmbeddingModel)
	}
	if need["gemini"] {
		var err error
		geminiSvc, err = NewGeminiService(ctx, cfg.Gemini.APIKeys, cfg.Gemini.ChatModel, cfg.Gemini.EmbeddingModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gemini service: %w", err)
		}
	}

	var (
		ai       AIService
		embedder Embedder
	)
	if cfg.LLM.Provider == "gemini" {
		ai = geminiSvc
	} else {
		ai = openaiSvc
	}
	if cfg.Embedding.Provider == "gemini" {
		embedder = geminiSvc
	} else {
		embedder = openaiSvc
	}
	return ai, embedder, nil
}
