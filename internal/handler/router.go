package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"apple-sales-reservations/internal/domain/user"
	"apple-sales-reservations/internal/handler/api"
	"apple-sales-reservations/internal/handler/httperr"
	"apple-sales-reservations/internal/handler/middleware"
	"apple-sales-reservations/internal/pkg/config"
)

const healthTimeout = 2 * time.Second

// HealthChecker is satisfied by *pgxpool.Pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, reservationHandler *api.ReservationHandler, authMiddleware *middleware.AuthMiddleware, db HealthChecker) {
	httperr.UseJSONFieldNames()
	setupMiddleware(engine, cfg)
	setupRoutes(engine, reservationHandler, authMiddleware, db)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h *api.ReservationHandler, authMiddleware *middleware.AuthMiddleware, db HealthChecker) {
	engine.GET("/health", healthCheck(db))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	staffOnly := authMiddleware.RequireRoles(user.RoleAdmin, user.RoleSales)
	customerOnly := authMiddleware.RequireRoles(user.RoleViewer)

	apiGroup := engine.Group("/api/v1")
	{
		public := apiGroup.Group("/reservations")
		addRoutes(public, []route{
			{Method: http.MethodPost, Path: "/deposit-quote", Handler: h.DepositQuote},
			{Method: http.MethodGet, Path: "/reserved-devices", Handler: h.ReservedDevices},
		})

		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		addRoutes(reservations, []route{
			{Method: http.MethodPost, Path: "", Handler: h.Request, Mw: []gin.HandlerFunc{customerOnly}},
			{Method: http.MethodGet, Path: "", Handler: h.List, Mw: []gin.HandlerFunc{staffOnly}},
			{Method: http.MethodGet, Path: "/mine", Handler: h.Mine, Mw: []gin.HandlerFunc{customerOnly}},
			{Method: http.MethodGet, Path: "/sync-failures", Handler: h.SyncFailures, Mw: []gin.HandlerFunc{staffOnly}},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Get},
			{Method: http.MethodPost, Path: "/:id/deposit-payment", Handler: h.PayDeposit, Mw: []gin.HandlerFunc{customerOnly}},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Cancel},
			{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Confirm, Mw: []gin.HandlerFunc{staffOnly}},
			{Method: http.MethodPost, Path: "/:id/complete", Handler: h.Complete, Mw: []gin.HandlerFunc{staffOnly}},
		})
	}
}

// healthCheck only covers Postgres; inventory and storage outages degrade single
// operations and are reported by those operations.
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unavailable",
				"database": "unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"database": "reachable",
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
