package components

import (
	"apple-sales-reservations/internal/handler"
	"apple-sales-reservations/internal/handler/api"
	"apple-sales-reservations/internal/handler/middleware"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/usecase/commands"
	"apple-sales-reservations/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		NewReservationHandler,
		middleware.NewAuthMiddleware,
		func(pool *pgxpool.Pool) handler.HealthChecker { return pool },
	),
	fx.Invoke(handler.NewRouter),
)

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries, cfg config.Config) *api.ReservationHandler {
	return api.NewReservationHandler(cmds, q, cfg.Reservation)
}
