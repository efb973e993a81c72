package bootstrap

import (
	"log/slog"

	"apple-sales-reservations/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(logReservationPolicy),
)

// logReservationPolicy records the business settings in effect, never credentials.
func logReservationPolicy(cfg config.Config, logger *slog.Logger) {
	logger.Info("reservation policy loaded",
		"deposit_percentage", cfg.Reservation.DepositPercentage,
		"deposit_window", cfg.Reservation.DepositWindow,
		"store_timezone", cfg.Reservation.StoreTimeZone,
		"max_proof_bytes", cfg.Reservation.MaxProofBytes,
		"inventory_base_url", cfg.Inventory.BaseURL,
		"storage_bucket", cfg.Storage.Bucket,
	)
}
