package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// OCREngine reads the text printed on an image file.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Rasterizer renders one PDF page (1-based) to an image inside outDir and
// returns the image path.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, page int, outDir string) (string, error)
}

// TesseractOCR shells out to the tesseract binary.
type TesseractOCR struct {
	cmd      string
	language string
}

func NewTesseractOCR(cmd, language string) *TesseractOCR {
	if cmd == "" {
		cmd = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractOCR{cmd: cmd, language: language}
}

func (t *TesseractOCR) Recognize(ctx context.Context, imagePath string) (string, error) {
	log.Debug().Str("image", imagePath).Msg("Try extracting with tesseract")
	ocrCmd := exec.CommandContext(ctx, t.cmd,
		imagePath,
		"stdout",
		"-l", t.language,
		"--oem", "3", // LSTM engine
		"--psm", "3", // automatic page segmentation
	)
	var stdout, stderr bytes.Buffer
	ocrCmd.Stdout = &stdout
	ocrCmd.Stderr = &stderr
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// PopplerRasterizer renders pages with pdftoppm.
type PopplerRasterizer struct {
	bin string
	dpi int
}

// NewPopplerRasterizer looks for pdftoppm inside popplerPath, or on PATH when
// popplerPath is empty.
func NewPopplerRasterizer(popplerPath string, dpi int) *PopplerRasterizer {
	bin := "pdftoppm"
	if popplerPath != "" {
		bin = filepath.Join(popplerPath, "pdftoppm")
	}
	if dpi <= 0 {
		dpi = 200
	}
	return &PopplerRasterizer{bin: bin, dpi: dpi}
}

func (p *PopplerRasterizer) Rasterize(ctx context.Context, pdfPath string, page int, outDir string) (string, error) {
	prefix := filepath.Join(outDir, "page")
	pageArg := strconv.Itoa(page)
	convertCmd := exec.CommandContext(ctx, p.bin,
		"-f", pageArg, "-l", pageArg,
		"-r", strconv.Itoa(p.dpi),
		"-png", pdfPath, prefix,
	)
	var stderr bytes.Buffer
	convertCmd.Stderr = &stderr
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("error converting page %d to image: %w: %s", page, err, strings.TrimSpace(stderr.String()))
	}
	// pdftoppm zero-pads the page suffix depending on the page count.
	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to read image files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}
	sort.Strings(files)
	return files[0], nil
}
