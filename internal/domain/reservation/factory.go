package reservation

import (
	"apple-sales-reservations/internal/pkg/clock"

	"github.com/shopspring/decimal"
)

// Factory stamps new reservations with the current time and the deposit deadline.
type Factory struct {
	Clock  clock.Clock
	Policy DepositPolicy
}

func NewFactory(clock clock.Clock, policy DepositPolicy) *Factory {
	return &Factory{
		Clock:  clock,
		Policy: policy,
	}
}

func (f *Factory) CreateReservation(
	customerUsername string,
	deviceID string,
	tradeIn *TradeIn,
	depositAmount decimal.Decimal,
) (*Reservation, error) {
	now := f.Clock.Now()
	return NewReservation(customerUsername, deviceID, tradeIn, depositAmount, now, f.Policy.DueAt(now))
}
