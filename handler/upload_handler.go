package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/manualbot/service"
	"github.com/tieubaoca/manualbot/types"
)

const maxUploadMemory = 32 << 20

type UploadHandler struct {
	ingest    *service.IngestService
	extractor *service.ExtractService
}

func NewUploadHandler(ingest *service.IngestService, extractor *service.ExtractService) *UploadHandler {
	return &UploadHandler{
		ingest:    ingest,
		extractor: extractor,
	}
}

// HandleUpload ingests the multipart "files" under the "title" field.
func (h *UploadHandler) HandleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "No file part")
		return
	}
	// mime/multipart files a part whose filename is empty under Value.
	if _, ok := form.Value["files"]; ok {
		badRequest(c, service.ErrNoFileSelected.Error())
		return
	}

	headers := form.File["files"]
	files := make([]types.SourceFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			respondError(c, fmt.Errorf("failed to open %s: %w", header.Filename, err), "Error processing documents.")
			return
		}
		defer f.Close()
		files = append(files, types.SourceFile{Name: header.Filename, Content: f})
	}

	title := c.PostForm("title")
	numChunks, err := h.ingest.Ingest(c.Request.Context(), title, files)
	if err != nil {
		respondError(c, err, "Error processing documents.")
		return
	}
	c.JSON(http.StatusOK, types.UploadResponse{
		Message:   fmt.Sprintf("Documents uploaded under title '%s'.", title),
		NumChunks: numChunks,
	})
}

// HandleExtract returns the text of a single multipart "file" without
// storing anything.
func (h *UploadHandler) HandleExtract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "No file part")
		return
	}
	headers := form.File["file"]
	if _, ok := form.Value["file"]; ok && len(headers) == 0 {
		badRequest(c, service.ErrNoFileSelected.Error())
		return
	}
	if len(headers) == 0 {
		badRequest(c, "No file part")
		return
	}
	header := headers[0]
	if header.Filename == "" {
		badRequest(c, service.ErrNoFileSelected.Error())
		return
	}
	if !service.IsSupportedFile(header.Filename) {
		badRequest(c, service.ErrUnsupportedFileType.Error())
		return
	}

	text, err := h.extractOne(c, header)
	if err != nil {
		respondError(c, err, "Failed to process file.")
		return
	}
	c.JSON(http.StatusOK, types.ExtractResponse{Text: text})
}

func (h *UploadHandler) extractOne(c *gin.Context, header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.extractor.ExtractFile(c.Request.Context(), header.Filename, f)
}
