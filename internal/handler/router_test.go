//go:build unit

package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"apple-sales-reservations/internal/domain/user"
	"apple-sales-reservations/internal/handler"
	"apple-sales-reservations/internal/handler/api"
	"apple-sales-reservations/internal/handler/httperr"
	"apple-sales-reservations/internal/handler/middleware"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/jwt"
	"apple-sales-reservations/internal/usecase"
	"apple-sales-reservations/tests/common/authtest"
	"apple-sales-reservations/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubDB struct {
	err error
}

func (s stubDB) Ping(context.Context) error {
	return s.err
}

func newEngine(db handler.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.NewTestConfig()
	engine := gin.New()
	auth := middleware.NewAuthMiddleware(usecase.NewTokenValidator(jwt.NewService(cfg.JWT.Secret)))
	handler.NewRouter(engine, cfg, api.NewReservationHandler(nil, nil, cfg.Reservation), auth, db)
	return engine
}

func TestHealth(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		rec := httptest.PerformRequest(t, newEngine(stubDB{}), http.MethodGet, "/health", nil, "")

		var body map[string]string
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, "reachable", body["database"])
	})

	t.Run("database down", func(t *testing.T) {
		rec := httptest.PerformRequest(t, newEngine(stubDB{err: errors.New("connection refused")}), http.MethodGet, "/health", nil, "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "unreachable")
	})
}

func TestRouting(t *testing.T) {
	engine := newEngine(stubDB{})

	t.Run("metrics are exposed", func(t *testing.T) {
		rec := httptest.PerformRequest(t, engine, http.MethodGet, "/metrics", nil, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "reservations_created_total")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.PerformRequest(t, engine, http.MethodGet, "/api/v1/pedidos", nil, "")

		httptest.AssertErrorKind(t, rec, http.StatusNotFound, string(httperr.KindNotFound))
	})

	t.Run("reservation routes need a token", func(t *testing.T) {
		rec := httptest.PerformRequest(t, engine, http.MethodGet, "/api/v1/reservations/mine", nil, "")

		httptest.AssertErrorKind(t, rec, http.StatusUnauthorized, string(httperr.KindUnauthorized))
	})

	t.Run("request id is echoed", func(t *testing.T) {
		rec := httptest.PerformRequest(t, engine, http.MethodGet, "/health", nil, "")

		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	})
}

func TestCustomerOnlyRoutes(t *testing.T) {
	engine := newEngine(stubDB{})
	tokens := authtest.NewJWTHelper(config.NewTestConfig().JWT)
	id := uuid.NewString()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/reservations"},
		{http.MethodGet, "/api/v1/reservations/mine"},
		{http.MethodPost, "/api/v1/reservations/" + id + "/deposit-payment"},
	}
	for _, role := range []user.Role{user.RoleSales, user.RoleAdmin} {
		token := tokens.GenerateToken(t, "staff-"+role.String(), role)
		for _, r := range routes {
			t.Run(role.String()+" "+r.method+" "+r.path, func(t *testing.T) {
				rec := httptest.PerformRequest(t, engine, r.method, r.path, nil, token)

				httptest.AssertErrorKind(t, rec, http.StatusForbidden, string(httperr.KindForbidden))
			})
		}
	}
}
