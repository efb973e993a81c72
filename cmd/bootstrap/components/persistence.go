package components

import (
	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/infra/readstore"
	"apple-sales-reservations/internal/infra/uow"
	"apple-sales-reservations/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewSQLQueries,
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Reservation
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.ReservationViewQueries)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationReadStore)),
		),
		// Notification
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.NotificationReadQueries)),
		),
		fx.Annotate(
			readstore.NewNotificationReadStore,
			fx.As(new(queries.NotificationReadStore)),
		),
	),
)

// Repositories are built per transaction by the unit of work.
var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		uow.NewPostgresUoW,
	),
)

func NewSQLQueries(_ *pgxpool.Pool) *dbq.Queries {
	return dbq.New()
}

func NewDBTX(pool *pgxpool.Pool) dbq.DBTX {
	return pool
}
