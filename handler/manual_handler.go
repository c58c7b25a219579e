package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/manualbot/database"
	"github.com/tieubaoca/manualbot/service"
	"github.com/tieubaoca/manualbot/types"
)

type ManualHandler struct {
	manuals *service.ManualService
}

func NewManualHandler(manuals *service.ManualService) *ManualHandler {
	return &ManualHandler{manuals: manuals}
}

func (h *ManualHandler) HandleListManuals(c *gin.Context) {
	titles, err := h.manuals.ListManuals(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error retrieving manual titles.")
		return
	}
	c.JSON(http.StatusOK, types.ManualsResponse{ManualTitles: titles})
}

func (h *ManualHandler) HandleGetManual(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		badRequest(c, "Title is required")
		return
	}
	manual, err := h.manuals.GetManual(c.Request.Context(), title)
	if errors.Is(err, database.ErrCollectionNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: fmt.Sprintf("Manual '%s' not found.", title)})
		return
	}
	if err != nil {
		respondError(c, err, "Error retrieving manual.")
		return
	}
	c.JSON(http.StatusOK, manual)
}

func (h *ManualHandler) HandleDeleteManual(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		badRequest(c, "Title is required")
		return
	}
	err := h.manuals.DeleteManual(c.Request.Context(), title)
	if errors.Is(err, database.ErrCollectionNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: fmt.Sprintf("Manual '%s' not found.", title)})
		return
	}
	if err != nil {
		respondError(c, err, "Error deleting manual.")
		return
	}
	c.JSON(http.StatusOK, types.MessageResponse{Message: fmt.Sprintf("Manual '%s' successfully deleted.", title)})
}

func (h *ManualHandler) HandleHealth(c *gin.Context) {
	connection, err := h.manuals.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{Status: "unhealthy", Connection: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.HealthResponse{Status: "healthy", Connection: connection})
}
