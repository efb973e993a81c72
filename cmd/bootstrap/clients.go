package bootstrap

import (
	"context"

	"apple-sales-reservations/internal/infra/inventory"
	"apple-sales-reservations/internal/infra/objectstore"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/usecase/shared"

	"go.uber.org/fx"
)

var ClientsModule = fx.Module("clients",
	fx.Provide(
		fx.Annotate(
			NewInventoryClient,
			fx.As(new(shared.Inventory)),
		),
		fx.Annotate(
			NewProofStorage,
			fx.As(new(shared.ProofStorage)),
		),
	),
)

func NewInventoryClient(cfg config.Config) *inventory.Client {
	return inventory.NewClient(cfg.Inventory)
}

func NewProofStorage(cfg config.Config) (*objectstore.Store, error) {
	client, err := objectstore.NewS3Client(context.Background(), cfg.Storage)
	if err != nil {
		return nil, err
	}
	return objectstore.NewStore(client, cfg.Storage), nil
}
