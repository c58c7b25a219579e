// Package testutil holds deterministic stand-ins for the external services
// used by the ingestion and answer pipelines.
package testutil

import (
	"context"
	"errors"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
)

const embeddingDims = 64

// FakeEmbedder hashes words into a bag-of-words vector. Texts sharing words
// land close together.
type FakeEmbedder struct {
	Err error

	mu    sync.Mutex
	calls int
}

func (e *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.Err != nil {
		return nil, e.Err
	}
	vec := make([]float32, embeddingDims)
	// bias keeps the vector non-zero for text without words
	vec[0] = 1
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[1+int(h.Sum32()%(embeddingDims-1))]++
	}
	return vec, nil
}

func (e *FakeEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// FakeChatModel answers with the context section of the prompt it is given.
type FakeChatModel struct {
	Err error

	mu      sync.Mutex
	prompts []string
}

func (m *FakeChatModel) Chat(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return Section(prompt, "Context:", "Question:"), nil
}

func (m *FakeChatModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Section returns the trimmed text of prompt between the start and end headers.
func Section(prompt, start, end string) string {
	i := strings.Index(prompt, start)
	if i < 0 {
		return ""
	}
	rest := prompt[i+len(start):]
	if j := strings.Index(rest, end); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

// FakeOCR returns Text for every image and remembers the paths it saw.
type FakeOCR struct {
	Text string
	Err  error

	mu    sync.Mutex
	paths []string
}

func (o *FakeOCR) Recognize(ctx context.Context, imagePath string) (string, error) {
	o.mu.Lock()
	o.paths = append(o.paths, imagePath)
	o.mu.Unlock()
	if o.Err != nil {
		return "", o.Err
	}
	if _, err := os.Stat(imagePath); err != nil {
		return "", err
	}
	return o.Text, nil
}

func (o *FakeOCR) Paths() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.paths...)
}

// FakeRasterizer writes an empty placeholder image per requested page.
type FakeRasterizer struct {
	Pages []int
}

func (r *FakeRasterizer) Rasterize(ctx context.Context, pdfPath string, page int, outDir string) (string, error) {
	if page < 1 {
		return "", errors.New("invalid page")
	}
	r.Pages = append(r.Pages, page)
	path := filepath.Join(outDir, "page-1.png")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
