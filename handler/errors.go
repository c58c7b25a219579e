package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tieubaoca/manualbot/service"
	"github.com/tieubaoca/manualbot/types"
)

// respondError sends client errors with their own message and hides
// everything else behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var apiErr *types.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		c.JSON(apiErr.Status, types.ErrorResponse{Error: apiErr.Message})
		return
	case errors.Is(err, service.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: service.ErrUnsupportedFileType.Error()})
		return
	case errors.Is(err, service.ErrNoFileSelected):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: service.ErrNoFileSelected.Error()})
		return
	case errors.Is(err, service.ErrNoText):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: service.ErrNoText.Error()})
		return
	}
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(fallback)
	c.Error(err)
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: fallback})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: msg})
}
