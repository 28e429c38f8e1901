package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/utils/jwt_parse"
)

// AuthMiddleware authenticates the request via its Bearer token and
// guarantees that user_id and role are present in the context for every
// handler behind it.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt_parse.ParseJWTToken()(c)
		if c.IsAborted() {
			return
		}

		if _, exists := c.Get("user_id"); !exists {
			logger.WarnLogger.Warn("Token accepted but user_id missing from claims")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Unauthorized: missing user identification"})
			return
		}
		if _, exists := c.Get("role"); !exists {
			logger.WarnLogger.Warn("Token accepted but role missing from claims")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Unauthorized: missing role"})
			return
		}

		c.Next()
	}
}
