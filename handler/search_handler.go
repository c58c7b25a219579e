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

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{
		search: search,
	}
}

func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	res, err := h.search.Search(c.Request.Context(), req)
	if errors.Is(err, database.ErrCollectionNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: fmt.Sprintf("Manual '%s' not found.", req.Manual)})
		return
	}
	if err != nil {
		respondError(c, err, "Search failed.")
		return
	}
	c.JSON(http.StatusOK, res)
}
