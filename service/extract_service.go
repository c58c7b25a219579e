package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tieubaoca/manualbot/config"
)

const (
	StrategyAuto = "auto"
	StrategyText = "text"
	StrategyOCR  = "ocr"
)

var (
	ErrUnsupportedFileType = errors.New("Unsupported file type. Only PDF and images are allowed.")
	ErrNoFileSelected      = errors.New("No file selected")
)

// imageExts maps every accepted image extension to whether tesseract can read
// the file as is.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  false,
	".tif":  false,
	".tiff": false,
	".webp": false,
}

// IsSupportedFile reports whether name has an extension ExtractFile accepts.
func IsSupportedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pdf" {
		return true
	}
	_, ok := imageExts[ext]
	return ok
}

type ExtractService struct {
	ocr        OCREngine
	rasterizer Rasterizer
	strategy   string
	tempDir    string
}

func NewExtractService(cfg config.OCRConfig, ocr OCREngine, rasterizer Rasterizer) *ExtractService {
	strategy := cfg.PDFStrategy
	if strategy == "" {
		strategy = StrategyAuto
	}
	return &ExtractService{
		ocr:        ocr,
		rasterizer: rasterizer,
		strategy:   strategy,
		tempDir:    cfg.TempDir,
	}
}

// ExtractFile spools r to a temporary file named after name and extracts its
// text. The temporary file is always removed.
func (s *ExtractService) ExtractFile(ctx context.Context, name string, r io.Reader) (string, error) {
	if name == "" {
		return "", ErrNoFileSelected
	}
	if !IsSupportedFile(name) {
		return "", fmt.Errorf("%w (%s)", ErrUnsupportedFileType, filepath.Base(name))
	}
	ext := strings.ToLower(filepath.Ext(name))

	tmp, err := os.CreateTemp(s.tempDir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", tmp.Name()).Msg("Failed to remove temp file")
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return s.ExtractPath(ctx, tmp.Name())
}

// ExtractPath extracts the text of a PDF or image already on disk.
func (s *ExtractService) ExtractPath(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var (
		text string
		err  error
	)
	switch {
	case ext == ".pdf":
		text, err = s.extractPDF(ctx, path)
	case IsSupportedFile(path):
		text, err = s.extractImage(ctx, path, imageExts[ext])
	default:
		return "", fmt.Errorf("%w (%s)", ErrUnsupportedFileType, filepath.Base(path))
	}
	if err != nil {
		return "", err
	}
	return cleanText(text), nil
}

func (s *ExtractService) extractImage(ctx context.Context, path string, native bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if native {
		if _, _, err := image.DecodeConfig(f); err != nil {
			return "", fmt.Errorf("failed to decode image: %w", err)
		}
		return s.ocr.Recognize(ctx, path)
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	pngFile, err := os.CreateTemp(s.tempDir, "ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(pngFile.Name())
	if err := png.Encode(pngFile, img); err != nil {
		pngFile.Close()
		return "", fmt.Errorf("failed to re-encode %s image: %w", format, err)
	}
	if err := pngFile.Close(); err != nil {
		return "", err
	}
	return s.ocr.Recognize(ctx, pngFile.Name())
}

func (s *ExtractService) extractPDF(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	r, err := openPDF(f)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	totalPages := r.NumPage()
	log.Debug().Str("path", path).Int("pages", totalPages).Str("strategy", s.strategy).Msg("Extracting pdf")

	pages := make([]string, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text := ""
		if s.strategy != StrategyOCR {
			text, err = pageText(r, pageNum)
			if err != nil {
				if s.strategy == StrategyText {
					return "", fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
				}
				log.Warn().Err(err).Int("page", pageNum).Msg("Text layer unreadable, falling back to OCR")
			}
		}
		if s.strategy != StrategyText && strings.TrimSpace(text) == "" {
			text, err = s.ocrPage(ctx, path, pageNum)
			if err != nil {
				return "", fmt.Errorf("failed to OCR page %d: %w", pageNum, err)
			}
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

// openPDF parses the xref table and trailer. Like page content, a malformed
// trailer can make ledongthuc/pdf panic.
func openPDF(f *os.File) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return pdf.NewReader(f, fi.Size())
}

// pageText reads the native text layer of one page. ledongthuc/pdf panics on
// some malformed content streams.
func pageText(r *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()
	p := r.Page(pageNum)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (s *ExtractService) ocrPage(ctx context.Context, path string, pageNum int) (string, error) {
	dir, err := os.MkdirTemp(s.tempDir, "pages-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	img, err := s.rasterizer.Rasterize(ctx, path, pageNum, dir)
	if err != nil {
		return "", err
	}
	return s.ocr.Recognize(ctx, img)
}

var textReplacer = strings.NewReplacer(
	"\u0000", "",
	"\ufffd", "",
	"\u001b", "",
	"\r", "",
	"\f", "\n",
)

func cleanText(text string) string {
	return strings.TrimSpace(textReplacer.Replace(text))
}
