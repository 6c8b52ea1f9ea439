package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AdminMiddleware gates operator endpoints behind a pre-shared key,
// checked against a bcrypt hash so the key itself never sits in the
// config file. An empty hash disables the gated endpoints outright.
func AdminMiddleware(adminKeyHash string, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKeyHash == "" {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
			c.Abort()
			return
		}

		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing admin key"})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(key)); err != nil {
			logger.Debug().Str("path", c.Request.URL.Path).Msg("admin key rejected")
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "invalid admin key"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
