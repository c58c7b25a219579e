package service

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestGeminiServiceRotatesClients(t *testing.T) {
	a, b := &genai.Client{}, &genai.Client{}
	svc := &GeminiService{clients: []*genai.Client{a, b}}
	want := []*genai.Client{a, b, a, b}
	for i, w := range want {
		if got := svc.client(); got != w {
			t.Fatalf("call %d: got client %p want %p", i, got, w)
		}
	}
}

func TestNewGeminiServiceNoKeys(t *testing.T) {
	if _, err := NewGeminiService(context.Background(), nil, "gemini-1.5-flash", "text-embedding-004"); err == nil {
		t.Fatalf("expected error without API keys")
	}
}
