package reservation

import "errors"

var ErrInvalidPaymentMethod = errors.New("invalid payment method")

type Status string

const (
	StatusRequested Status = "requested"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// HoldsDevice reports whether a reservation in this status still claims its device.
func (s Status) HoldsDevice() bool {
	return s != StatusCancelled && s != StatusExpired
}

type DepositStatus string

const (
	DepositRequested DepositStatus = "requested"
	DepositPaid      DepositStatus = "paid"
	DepositConfirmed DepositStatus = "confirmed"
	DepositExpired   DepositStatus = "expired"
)

func (s DepositStatus) String() string {
	return string(s)
}

func (s DepositStatus) IsValid() bool {
	switch s {
	case DepositRequested, DepositPaid, DepositConfirmed, DepositExpired:
		return true
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentTransfer    PaymentMethod = "transfer"
	PaymentCreditCard  PaymentMethod = "credit_card"
	PaymentDebitCard   PaymentMethod = "debit_card"
	PaymentMercadoPago PaymentMethod = "mercadopago"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func NewPaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCreditCard, PaymentDebitCard, PaymentMercadoPago:
		return m, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// NewPaymentMethodPtr parses an optional method; nil and "" both mean not given.
func NewPaymentMethodPtr(s *string) (*PaymentMethod, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	m, err := NewPaymentMethod(*s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
