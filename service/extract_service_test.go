package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/tieubaoca/manualbot/config"
	"github.com/tieubaoca/manualbot/testutil"
)

func newTestExtractor(t *testing.T, strategy string, ocr *testutil.FakeOCR) (*ExtractService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.OCRConfig{PDFStrategy: strategy, TempDir: dir}
	return NewExtractService(cfg, ocr, &testutil.FakeRasterizer{}), dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir not cleaned: %d entries left", len(entries))
	}
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	return img
}

func TestIsSupportedFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.pdf":   true,
		"A.PDF":   true,
		"b.png":   true,
		"c.JPEG":  true,
		"d.tiff":  true,
		"e.webp":  true,
		"f.docx":  false,
		"noext":   false,
		"g.pdf.x": false,
	} {
		if got := IsSupportedFile(name); got != want {
			t.Fatalf("IsSupportedFile(%q): want=%v got=%v", name, want, got)
		}
	}
}

func TestExtractFileRejectsUnsupported(t *testing.T) {
	ocr := &testutil.FakeOCR{Text: "x"}
	s, dir := newTestExtractor(t, StrategyAuto, ocr)
	_, err := s.ExtractFile(context.Background(), "report.docx", strings.NewReader("PK"))
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("want ErrUnsupportedFileType got=%v", err)
	}
	if len(ocr.Paths()) != 0 {
		t.Fatalf("ocr must not run for rejected files")
	}
	assertDirEmpty(t, dir)
}

func TestExtractFileEmptyName(t *testing.T) {
	s, _ := newTestExtractor(t, StrategyAuto, &testutil.FakeOCR{})
	if _, err := s.ExtractFile(context.Background(), "", strings.NewReader("x")); !errors.Is(err, ErrNoFileSelected) {
		t.Fatalf("want ErrNoFileSelected got=%v", err)
	}
}

func TestExtractFilePDFTextLayer(t *testing.T) {
	ocr := &testutil.FakeOCR{Text: "from ocr"}
	s, dir := newTestExtractor(t, StrategyAuto, ocr)
	pdfBytes := testutil.MinimalPDF("Invoice #123, Total: $50")

	text, err := s.ExtractFile(context.Background(), "invoice.pdf", bytes.NewReader(pdfBytes))
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if !strings.Contains(text, "Invoice #123, Total: $50") {
		t.Fatalf("text: got=%q", text)
	}
	if len(ocr.Paths()) != 0 {
		t.Fatalf("ocr should not run when the text layer has text")
	}
	assertDirEmpty(t, dir)
}

func TestExtractFilePDFEmptyPageFallsBackToOCR(t *testing.T) {
	ocr := &testutil.FakeOCR{Text: "scanned page text"}
	s, dir := newTestExtractor(t, StrategyAuto, ocr)
	text, err := s.ExtractFile(context.Background(), "scan.pdf", bytes.NewReader(testutil.MinimalPDF()))
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if text != "scanned page text" {
		t.Fatalf("text: got=%q", text)
	}
	if len(ocr.Paths()) != 1 {
		t.Fatalf("ocr calls: want=1 got=%d", len(ocr.Paths()))
	}
	assertDirEmpty(t, dir)
}

func TestExtractFilePDFStrategies(t *testing.T) {
	pdfBytes := testutil.MinimalPDF("native text")

	ocr := &testutil.FakeOCR{Text: "ocr text"}
	s, _ := newTestExtractor(t, StrategyOCR, ocr)
	text, err := s.ExtractFile(context.Background(), "a.pdf", bytes.NewReader(pdfBytes))
	if err != nil {
		t.Fatalf("ocr strategy: %v", err)
	}
	if text != "ocr text" {
		t.Fatalf("ocr strategy text: got=%q", text)
	}

	ocr = &testutil.FakeOCR{Text: "ocr text"}
	s, _ = newTestExtractor(t, StrategyText, ocr)
	text, err = s.ExtractFile(context.Background(), "empty.pdf", bytes.NewReader(testutil.MinimalPDF()))
	if err != nil {
		t.Fatalf("text strategy: %v", err)
	}
	if text != "" || len(ocr.Paths()) != 0 {
		t.Fatalf("text strategy must not OCR: text=%q calls=%d", text, len(ocr.Paths()))
	}
}

func TestExtractFileImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	ocr := &testutil.FakeOCR{Text: "\fTotal: $50\r\n\x00"}
	s, dir := newTestExtractor(t, StrategyAuto, ocr)

	text, err := s.ExtractFile(context.Background(), "photo.PNG", &buf)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if text != "Total: $50" {
		t.Fatalf("cleaned text: got=%q", text)
	}
	paths := ocr.Paths()
	if len(paths) != 1 || filepath.Dir(paths[0]) != dir {
		t.Fatalf("ocr paths: got=%v", paths)
	}
	assertDirEmpty(t, dir)
}

func TestExtractFileBMPIsReencoded(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage()); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}
	ocr := &testutil.FakeOCR{Text: "bitmap"}
	s, dir := newTestExtractor(t, StrategyAuto, ocr)
	if _, err := s.ExtractFile(context.Background(), "scan.bmp", &buf); err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	paths := ocr.Paths()
	if len(paths) != 1 || filepath.Ext(paths[0]) != ".png" {
		t.Fatalf("want OCR on a png copy got=%v", paths)
	}
	assertDirEmpty(t, dir)
}

func TestExtractFileCorruptImage(t *testing.T) {
	ocr := &testutil.FakeOCR{Text: "x"}
	s, dir := newTestExtractor(t, StrategyAuto, ocr)
	if _, err := s.ExtractFile(context.Background(), "broken.jpg", strings.NewReader("not an image")); err == nil {
		t.Fatalf("expected decode error")
	}
	if len(ocr.Paths()) != 0 {
		t.Fatalf("ocr must not run on undecodable images")
	}
	assertDirEmpty(t, dir)
}

func TestExtractFileOCRFailureCleansUp(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, testImage())
	ocr := &testutil.FakeOCR{Err: errors.New("tesseract missing")}
	s, dir := newTestExtractor(t, StrategyAuto, ocr)
	if _, err := s.ExtractFile(context.Background(), "a.png", &buf); err == nil {
		t.Fatalf("expected OCR error")
	}
	assertDirEmpty(t, dir)
}

func TestCleanText(t *testing.T) {
	in := "  a\u0000b\ufffdc\u001bd\r\ne\ff  "
	if got := cleanText(in); got != "abcd\ne\nf" {
		t.Fatalf("cleanText: got=%q", got)
	}
}

func TestExtractFileCorruptPDF(t *testing.T) {
	valid := testutil.MinimalPDF("Invoice #123")
	tests := []struct {
		name string
		data []byte
	}{
		{"not a pdf", []byte("%PDF-1.4\nnot really a pdf")},
		{"truncated", valid[:len(valid)/2]},
		{"broken xref", bytes.Replace(valid, []byte("xref\n0 6"), []byte("xref\n0 zz"), 1)},
		{"bad startxref", bytes.Replace(valid, []byte("startxref\n"), []byte("startxref\n9"), 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ocr := &testutil.FakeOCR{Text: "x"}
			s, dir := newTestExtractor(t, StrategyAuto, ocr)
			if _, err := s.ExtractFile(context.Background(), "broken.pdf", bytes.NewReader(tt.data)); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
			assertDirEmpty(t, dir)
		})
	}
}
