package bootstrap

import (
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

// NewJWTService verifies tokens from the identity service; nothing here signs them.
func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret,
		jwt.WithIssuer(cfg.JWT.Issuer),
		jwt.WithLeeway(cfg.JWT.Leeway),
	)
}
