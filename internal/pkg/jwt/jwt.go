package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims issued by the identity service.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service only verifies; tokens are minted by the identity service.
type Service struct {
	secretKey []byte
	parser    *jwt.Parser
}

type Option func(*[]jwt.ParserOption)

// WithIssuer rejects tokens whose iss claim differs.
func WithIssuer(issuer string) Option {
	return func(opts *[]jwt.ParserOption) {
		if issuer != "" {
			*opts = append(*opts, jwt.WithIssuer(issuer))
		}
	}
}

// WithLeeway tolerates clock skew between this service and the issuer.
func WithLeeway(leeway time.Duration) Option {
	return func(opts *[]jwt.ParserOption) {
		if leeway > 0 {
			*opts = append(*opts, jwt.WithLeeway(leeway))
		}
	}
}

func NewService(secretKey string, opts ...Option) *Service {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	for _, opt := range opts {
		opt(&parserOpts)
	}
	return &Service{
		secretKey: []byte(secretKey),
		parser:    jwt.NewParser(parserOpts...),
	}
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := s.parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
