package service

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTextSplitterShortText(t *testing.T) {
	s := NewTextSplitter(10000, 1000)
	chunks, err := s.Split("Invoice #123, Total: $50")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "Invoice #123, Total: $50" {
		t.Fatalf("chunks: want one unchanged chunk got=%q", chunks)
	}
}

func TestTextSplitterBlank(t *testing.T) {
	s := NewTextSplitter(100, 10)
	for _, in := range []string{"", "  \n\n \t"} {
		chunks, err := s.Split(in)
		if err != nil {
			t.Fatalf("Split(%q): %v", in, err)
		}
		if len(chunks) != 0 {
			t.Fatalf("Split(%q): want no chunks got=%q", in, chunks)
		}
	}
}

func TestTextSplitterBoundsAndOrder(t *testing.T) {
	var paragraphs []string
	for p := 0; p < 6; p++ {
		var words []string
		for w := 0; w < 12; w++ {
			words = append(words, fmt.Sprintf("p%dw%d", p, w))
		}
		paragraphs = append(paragraphs, strings.Join(words, " "))
	}
	text := strings.Join(paragraphs, "\n\n")

	const size = 60
	s := NewTextSplitter(size, 10)
	chunks, err := s.Split(text)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("want several chunks got=%d", len(chunks))
	}
	last := -1
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > size {
			t.Fatalf("chunk %d: %d runes exceeds %d", i, n, size)
		}
		idx := strings.Index(text, c)
		if idx < 0 {
			t.Fatalf("chunk %d not a substring of the source: %q", i, c)
		}
		if idx < last {
			t.Fatalf("chunk %d out of order", i)
		}
		last = idx
	}
	if !strings.HasPrefix(chunks[0], "p0w0") {
		t.Fatalf("first chunk: got=%q", chunks[0])
	}
	if !strings.HasSuffix(chunks[len(chunks)-1], "p5w11") {
		t.Fatalf("last chunk: got=%q", chunks[len(chunks)-1])
	}

	again, err := s.Split(chunks[0])
	if err != nil {
		t.Fatalf("re-split: %v", err)
	}
	if len(again) != 1 || again[0] != chunks[0] {
		t.Fatalf("re-split: want the chunk back got=%q", again)
	}
}

func TestTextSplitterOverlap(t *testing.T) {
	var words []string
	for w := 0; w < 40; w++ {
		words = append(words, fmt.Sprintf("w%02d", w))
	}
	text := strings.Join(words, " ")

	const size, overlap = 30, 10
	s := NewTextSplitter(size, overlap)
	chunks, err := s.Split(text)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("want several chunks got=%d", len(chunks))
	}
	for i := 0; i+1 < len(chunks); i++ {
		shared := sharedBoundary(chunks[i], chunks[i+1])
		if shared == "" {
			t.Fatalf("chunks %d and %d do not overlap: %q %q", i, i+1, chunks[i], chunks[i+1])
		}
		if n := utf8.RuneCountInString(shared); n > overlap {
			t.Fatalf("chunks %d and %d share %d runes, more than %d", i, i+1, n, overlap)
		}
	}
}

// sharedBoundary returns the longest head of next that is also the tail of prev.
func sharedBoundary(prev, next string) string {
	for n := len(next); n > 0; n-- {
		if strings.HasSuffix(prev, next[:n]) {
			return next[:n]
		}
	}
	return ""
}
