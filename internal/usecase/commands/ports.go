package commands

import (
	"github.com/shopspring/decimal"
)

type TradeInInput struct {
	ProductLine   string
	Model         string
	BatteryHealth *decimal.Decimal
}

type RequestReservationInput struct {
	DeviceID string
	TradeIn  *TradeInInput
	// DepositAmount is quoted from the device price when nil.
	DepositAmount *decimal.Decimal
}

type PayDepositInput struct {
	Proof         []byte
	ContentType   string
	PaymentMethod *string
}

type CompleteReservationInput struct {
	FinalPaymentAmount *decimal.Decimal
	PaymentMethod      *string
}

type DepositQuote struct {
	Amount     decimal.Decimal
	Percentage decimal.Decimal
	Deposit    decimal.Decimal
}
