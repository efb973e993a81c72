//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"apple-sales-reservations/internal/domain/user"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/jwt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// JWTHelper signs tokens the way the identity service does.
type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, username string, role user.Role) string {
	t.Helper()
	return h.sign(t, username, role, time.Now().Add(time.Hour))
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, username string, role user.Role) string {
	t.Helper()
	return h.sign(t, username, role, time.Now().Add(-h.cfg.Leeway-time.Minute))
}

func (h *JWTHelper) sign(t *testing.T, username string, role user.Role, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.Claims{
		Username: username,
		Role:     role.String(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
			Issuer:    h.cfg.Issuer,
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(h.cfg.Secret))
	require.NoError(t, err)
	return token
}
