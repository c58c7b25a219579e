package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiService spreads calls across one client per configured API key.
type GeminiService struct {
	clients        []*genai.Client
	next           int
	modelName      string
	embeddingModel string
	mu             sync.Mutex
}

func NewGeminiService(ctx context.Context, apiKeys []string, modelName, embeddingModel string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}
	service := &GeminiService{
		modelName:      modelName,
		embeddingModel: embeddingModel,
	}
	for _, key := range apiKeys {
		client, err := genai.NewClient(ctx, option.WithAPIKey(key))
		if err != nil {
			service.Close()
			return nil, err
		}
		service.clients = append(service.clients, client)
	}
	return service, nil
}

func (s *GeminiService) client() *genai.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.clients[s.next]
	s.next = (s.next + 1) % len(s.clients)
	return c
}

func (s *GeminiService) Chat(ctx context.Context, prompt string) (string, error) {
	model := s.client().GenerativeModel(s.modelName)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}
	var content strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
	}
	return content.String(), nil
}

func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	em := s.client().EmbeddingModel(s.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil {
		return nil, errors.New("no embedding returned")
	}
	return res.Embedding.Values, nil
}

func (s *GeminiService) Close() error {
	var errs []error
	for _, c := range s.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
