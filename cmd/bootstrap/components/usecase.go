package components

import (
	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/pkg/clock"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/usecase"
	"apple-sales-reservations/internal/usecase/commands"
	"apple-sales-reservations/internal/usecase/queries"
	"apple-sales-reservations/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	func(cfg config.Config) (clock.Clock, error) {
		store, err := clock.LoadStoreLocation(cfg.Reservation.StoreTimeZone)
		if err != nil {
			return nil, err
		}
		return clock.NewRealClock(store), nil
	},
	func(cfg config.Config) reservation.DepositPolicy {
		return reservation.NewDepositPolicy(cfg.Reservation.DepositPercentage, cfg.Reservation.DepositWindow)
	},
	reservation.NewFactory,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		func(
			repo queries.ReservationReadStore,
			notifications queries.NotificationReadStore,
			inventory shared.Inventory,
			cfg config.Config,
		) queries.ReservationQueries {
			return queries.NewReservationQueries(repo, notifications, inventory, cfg.Reservation)
		},
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
