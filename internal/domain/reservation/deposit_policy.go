package reservation

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultDepositPercentage = 0.20
	DefaultDepositWindow     = 30 * time.Minute
)

// DepositPolicy decides how much must be paid up front and how long the customer has to pay it.
type DepositPolicy struct {
	Percentage decimal.Decimal
	Window     time.Duration
}

func NewDepositPolicy(percentage float64, window time.Duration) DepositPolicy {
	if percentage <= 0 || percentage > 1 {
		percentage = DefaultDepositPercentage
	}
	if window <= 0 {
		window = DefaultDepositWindow
	}
	return DepositPolicy{
		Percentage: decimal.NewFromFloat(percentage),
		Window:     window,
	}
}

// Quote returns the deposit for a total price, rounded to cents.
func (p DepositPolicy) Quote(total decimal.Decimal) (decimal.Decimal, error) {
	if !total.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return total.Mul(p.Percentage).Round(2), nil
}

func (p DepositPolicy) DueAt(createdAt time.Time) time.Time {
	return createdAt.Add(p.Window)
}
