package shared

//go:generate mockgen -source=types.go -destination=../../../tests/mock/shared/types.go -package=sharedmock

import (
	"context"

	"github.com/shopspring/decimal"
)

// Outbox rows written next to reservation changes.
const (
	JobKindEvent     = "event"
	JobKindReconcile = "reconcile"

	JobStatusQueued = "queued"
	JobStatusDone   = "done"
	JobStatusFailed = "failed"

	TopicInventoryMarkSold = "inventory.mark_sold"
	TopicEventPrefix       = "reservation."
)

// Device is the inventory service's view of a sellable unit.
type Device struct {
	ID            string
	ProductID     string
	Condition     string
	Grade         string
	State         string
	BatteryHealth *decimal.Decimal
	Price         decimal.Decimal
	Details       []string
	Accessories   []string
}

type Inventory interface {
	GetDevice(ctx context.Context, deviceID string) (*Device, error)
	// MarkSold sets the device state to sold with the given sale date (YYYY-MM-DD).
	MarkSold(ctx context.Context, deviceID string, soldOn string) error
}

type ProofStorage interface {
	Put(ctx context.Context, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
