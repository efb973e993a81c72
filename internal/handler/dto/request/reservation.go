package request

import (
	"strings"
	"time"

	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/usecase/commands"
	"apple-sales-reservations/internal/usecase/queries"

	"github.com/shopspring/decimal"
)

const dateOnlyLayout = "2006-01-02"

var ErrInvalidDate = errs.NewKind(errs.ErrValidation, "dates must be RFC 3339 timestamps or YYYY-MM-DD")

type CreateReservationRequest struct {
	DeviceID      string           `json:"deviceId"`
	TradeIn       *TradeInRequest  `json:"tradeIn"`
	DepositAmount *decimal.Decimal `json:"depositAmount"`
}

type TradeInRequest struct {
	ProductLine           string           `json:"productLine"`
	Model                 string           `json:"model"`
	BatteryHealthFraction *decimal.Decimal `json:"batteryHealthFraction"`
}

func (r *CreateReservationRequest) ToInput() commands.RequestReservationInput {
	in := commands.RequestReservationInput{
		DeviceID:      strings.TrimSpace(r.DeviceID),
		DepositAmount: r.DepositAmount,
	}
	if r.TradeIn != nil {
		in.TradeIn = &commands.TradeInInput{
			ProductLine:   r.TradeIn.ProductLine,
			Model:         r.TradeIn.Model,
			BatteryHealth: r.TradeIn.BatteryHealthFraction,
		}
	}
	return in
}

// PayDepositForm holds the non-file parts of the multipart deposit payment.
type PayDepositForm struct {
	PaymentMethod string `form:"paymentMethod" binding:"omitempty,oneof=cash transfer credit_card debit_card mercadopago"`
}

type CompleteReservationRequest struct {
	FinalPaymentAmount *decimal.Decimal `json:"finalPaymentAmount"`
	PaymentMethod      *string          `json:"paymentMethod" binding:"omitempty,oneof=cash transfer credit_card debit_card mercadopago"`
}

func (r *CompleteReservationRequest) ToInput() commands.CompleteReservationInput {
	return commands.CompleteReservationInput{
		FinalPaymentAmount: r.FinalPaymentAmount,
		PaymentMethod:      r.PaymentMethod,
	}
}

type CancelReservationRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type DepositQuoteRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

type ListReservationsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=requested confirmed completed cancelled expired"`
	Customer string `form:"customer"`
	DateFrom string `form:"dateFrom"`
	DateTo   string `form:"dateTo"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

func (q *ListReservationsQuery) ToFilters() (queries.ListFilters, error) {
	var f queries.ListFilters
	if q.Status != "" {
		f.Status = &q.Status
	}
	if c := strings.TrimSpace(q.Customer); c != "" {
		f.Customer = &c
	}

	from, err := parseDate(q.DateFrom, false)
	if err != nil {
		return f, err
	}
	to, err := parseDate(q.DateTo, true)
	if err != nil {
		return f, err
	}
	f.DateFrom = from
	f.DateTo = to
	return f, nil
}

func (q *ListReservationsQuery) ToPage() queries.Page {
	return queries.Page{Number: q.Page, Size: q.PageSize}
}

// parseDate accepts a full timestamp or a calendar day. A day used as an upper bound covers the whole day.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidDate)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
