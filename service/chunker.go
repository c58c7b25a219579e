package service

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

var chunkSeparators = []string{"\n\n", "\n", " ", ""}

// TextSplitter cuts extracted text into overlapping chunks, largest separator
// first. Sizes are counted in runes.
type TextSplitter struct {
	splitter textsplitter.RecursiveCharacter
}

func NewTextSplitter(chunkSize, chunkOverlap int) *TextSplitter {
	return &TextSplitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators(chunkSeparators),
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

func (s *TextSplitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, p)
	}
	return chunks, nil
}
