package reservation

import (
	"strings"
	"time"

	"apple-sales-reservations/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrTradeInProductLine = errs.NewKind(errs.ErrMissingInput, "trade-in product line is required")
	ErrTradeInModel       = errs.NewKind(errs.ErrMissingInput, "trade-in model is required")
	ErrBatteryHealthRange = errs.NewKind(errs.ErrValidation, "battery health must be a fraction between 0 and 1")
	ErrNonPositiveAmount  = errs.NewKind(errs.ErrValidation, "amount must be greater than zero")
)

// TradeIn describes a device the customer offers as part of the purchase.
type TradeIn struct {
	productLine   string
	model         string
	batteryHealth *decimal.Decimal
}

func NewTradeIn(productLine, model string, batteryHealth *decimal.Decimal) (TradeIn, error) {
	productLine = strings.TrimSpace(productLine)
	model = strings.TrimSpace(model)
	if productLine == "" {
		return TradeIn{}, ErrTradeInProductLine
	}
	if model == "" {
		return TradeIn{}, ErrTradeInModel
	}
	if batteryHealth != nil && (batteryHealth.IsNegative() || batteryHealth.GreaterThan(decimal.NewFromInt(1))) {
		return TradeIn{}, ErrBatteryHealthRange
	}
	return TradeIn{productLine: productLine, model: model, batteryHealth: batteryHealth}, nil
}

func (t TradeIn) ProductLine() string {
	return t.productLine
}

func (t TradeIn) Model() string {
	return t.model
}

func (t TradeIn) BatteryHealth() *decimal.Decimal {
	return t.batteryHealth
}

// Deposit is the amount the customer pays up front to hold a device.
type Deposit struct {
	amount        decimal.Decimal
	status        DepositStatus
	dueAt         time.Time
	proofURL      *string
	paymentMethod *PaymentMethod
}

func (d Deposit) Amount() decimal.Decimal {
	return d.amount
}

func (d Deposit) Status() DepositStatus {
	return d.status
}

// DueAt only matters while the deposit is still requested.
func (d Deposit) DueAt() time.Time {
	return d.dueAt
}

func (d Deposit) ProofURL() *string {
	return d.proofURL
}

func (d Deposit) PaymentMethod() *PaymentMethod {
	return d.paymentMethod
}

// FinalPayment is what the customer pays at pickup, on top of the deposit.
type FinalPayment struct {
	amount decimal.Decimal
	method *PaymentMethod
}

func NewFinalPayment(amount decimal.Decimal, method *PaymentMethod) (FinalPayment, error) {
	if !amount.IsPositive() {
		return FinalPayment{}, ErrNonPositiveAmount
	}
	return FinalPayment{amount: amount, method: method}, nil
}

func (f FinalPayment) Amount() decimal.Decimal {
	return f.amount
}

func (f FinalPayment) Method() *PaymentMethod {
	return f.method
}

// Sale summarizes the money collected for a completed reservation.
type Sale struct {
	Deposit       decimal.Decimal
	FinalPayment  decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod *PaymentMethod
}
