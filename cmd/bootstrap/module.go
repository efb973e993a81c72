package bootstrap

import (
	"apple-sales-reservations/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	TelemetryModule,
	DBModule,
	JWTModule,
	ClientsModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
