package middleware

import (
	"log/slog"
	"slices"

	"apple-sales-reservations/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware lets browser clients send and read the request id
// whatever the configured header lists say.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     withHeader(cfg.AllowHeaders, RequestIDHeader),
		ExposeHeaders:    withHeader(cfg.ExposeHeaders, RequestIDHeader),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS configured",
		"allow_origins", cfg.AllowOrigins,
		"allow_credentials", cfg.AllowCredentials)
	return cors.New(corsCfg)
}

func withHeader(headers []string, header string) []string {
	if slices.Contains(headers, header) {
		return headers
	}
	return append(slices.Clone(headers), header)
}
