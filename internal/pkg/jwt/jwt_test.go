//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"apple-sales-reservations/internal/pkg/jwt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "identity-service-secret"

func sign(t *testing.T, method jwtlib.SigningMethod, claims jwtlib.Claims) string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claims(username, role, issuer string, expiresAt time.Time) jwt.Claims {
	c := jwt.Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer: issuer,
		},
	}
	if !expiresAt.IsZero() {
		c.ExpiresAt = jwtlib.NewNumericDate(expiresAt)
	}
	return c
}

func TestValidateToken(t *testing.T) {
	svc := jwt.NewService(secret, jwt.WithIssuer("apple-sales-auth"), jwt.WithLeeway(time.Minute))
	inAnHour := time.Now().Add(time.Hour)

	t.Run("success", func(t *testing.T) {
		token := sign(t, jwtlib.SigningMethodHS256, claims("ana", "viewer", "apple-sales-auth", inAnHour))

		got, err := svc.ValidateToken(token)

		require.NoError(t, err)
		assert.Equal(t, "ana", got.Username)
		assert.Equal(t, "viewer", got.Role)
	})

	t.Run("success: expired within leeway", func(t *testing.T) {
		token := sign(t, jwtlib.SigningMethodHS256,
			claims("ana", "viewer", "apple-sales-auth", time.Now().Add(-20*time.Second)))

		_, err := svc.ValidateToken(token)

		assert.NoError(t, err)
	})

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "expired beyond leeway",
			token: func(t *testing.T) string {
				return sign(t, jwtlib.SigningMethodHS256,
					claims("ana", "viewer", "apple-sales-auth", time.Now().Add(-5*time.Minute)))
			},
			wantErr: jwt.ErrExpiredToken,
		},
		{
			name: "other issuer",
			token: func(t *testing.T) string {
				return sign(t, jwtlib.SigningMethodHS256, claims("ana", "viewer", "someone-else", inAnHour))
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				return sign(t, jwtlib.SigningMethodHS256, claims("ana", "viewer", "apple-sales-auth", time.Time{}))
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "unexpected algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwtlib.SigningMethodHS512, claims("ana", "viewer", "apple-sales-auth", inAnHour))
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "missing username",
			token: func(t *testing.T) string {
				return sign(t, jwtlib.SigningMethodHS256, claims("", "viewer", "apple-sales-auth", inAnHour))
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name: "missing role",
			token: func(t *testing.T) string {
				return sign(t, jwtlib.SigningMethodHS256, claims("ana", "", "apple-sales-auth", inAnHour))
			},
			wantErr: jwt.ErrInvalidToken,
		},
		{
			name:    "garbage",
			token:   func(t *testing.T) string { return "not-a-token" },
			wantErr: jwt.ErrInvalidToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTokenWithoutIssuer(t *testing.T) {
	svc := jwt.NewService(secret)
	token := sign(t, jwtlib.SigningMethodHS256, claims("seller", "sales", "anyone", time.Now().Add(time.Hour)))

	got, err := svc.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, "seller", got.Username)
}
