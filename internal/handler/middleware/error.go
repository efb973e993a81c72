package middleware

import (
	"log/slog"
	"net/http"

	"apple-sales-reservations/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

const routeNotFoundMessage = "Route not found"

// ErrorHandler writes the JSON envelope for errors a handler recorded without responding.
// It also runs for unmatched routes, replacing gin's plain-text 404.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]
			if !err.IsType(gin.ErrorTypePublic) {
				continue
			}
			if resp, ok := err.Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}

		switch status := c.Writer.Status(); status {
		case http.StatusOK:
			c.JSON(http.StatusInternalServerError,
				httperr.NewResponse(http.StatusInternalServerError, httperr.KindInternal, "Internal server error"))
		case http.StatusNotFound:
			c.JSON(status, httperr.NewResponse(status, httperr.KindNotFound, routeNotFoundMessage))
		default:
			c.Status(status)
			c.Writer.WriteHeaderNow()
		}
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(c.Request.Context(), "recovered from panic",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"reservation_id", c.Param("id"),
					"request_id", GetRequestID(c))

				resp := httperr.NewResponse(http.StatusInternalServerError, httperr.KindInternal, "Internal server error")
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}
