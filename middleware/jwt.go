package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tieubaoca/manualbot/types"
	"github.com/tieubaoca/manualbot/utils"
)

const AdminContextKey = "admin"

// AdminAuth rejects requests without a valid "Bearer <token>" admin JWT.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := utils.ParseAdminToken(secret, parts[1])
		if err != nil {
			log.Debug().Err(err).Msg("Rejected admin token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Invalid admin token"})
			return
		}
		c.Set(AdminContextKey, claims)
		c.Next()
	}
}
