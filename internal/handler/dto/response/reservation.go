package response

import (
	"encoding/json"
	"time"

	"apple-sales-reservations/internal/usecase/commands"
	"apple-sales-reservations/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type ReservationResponse struct {
	ID                 uuid.UUID        `json:"id"`
	CustomerUsername   string           `json:"customerUsername"`
	DeviceID           string           `json:"deviceId"`
	Device             *DeviceResponse  `json:"device,omitempty"`
	TradeIn            *TradeInResponse `json:"tradeIn,omitempty"`
	Status             string           `json:"status"`
	CancellationReason *string          `json:"cancellationReason,omitempty"`
	Deposit            DepositResponse  `json:"deposit"`
	Sale               *SaleResponse    `json:"sale,omitempty"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

type DepositResponse struct {
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	DueAt         time.Time       `json:"dueAt"`
	ProofURL      *string         `json:"proofOfPaymentUrl,omitempty"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
}

type TradeInResponse struct {
	ProductLine   string           `json:"productLine"`
	Model         string           `json:"model"`
	BatteryHealth *decimal.Decimal `json:"batteryHealthFraction,omitempty"`
}

// SaleResponse splits the total into the deposit and what remained to pay on pickup.
type SaleResponse struct {
	Deposit       decimal.Decimal `json:"deposit"`
	FinalPayment  decimal.Decimal `json:"remaining"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
}

type DeviceResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"productId"`
	Condition     string           `json:"condition"`
	Grade         string           `json:"grade,omitempty"`
	State         string           `json:"state"`
	BatteryHealth *decimal.Decimal `json:"batteryHealthFraction,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	Details       []string         `json:"details,omitempty"`
	Accessories   []string         `json:"accessories,omitempty"`
}

type ReservationPageResponse struct {
	Items      []*ReservationResponse `json:"items"`
	Pagination PaginationResponse     `json:"pagination"`
}

type PaginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type DepositQuoteResponse struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Deposit    decimal.Decimal `json:"deposit"`
}

type SyncFailureResponse struct {
	ID            uuid.UUID       `json:"id"`
	ReservationID *uuid.UUID      `json:"reservationId,omitempty"`
	DeviceID      string          `json:"deviceId,omitempty"`
	FechaVenta    string          `json:"fechaVenta,omitempty"`
	Topic         string          `json:"topic"`
	Payload       json.RawMessage `json:"payload"`
	Attempts      int32           `json:"attempts"`
	LastError     *string         `json:"lastError,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func FromReservationView(v *queries.ReservationView) (*ReservationResponse, error) {
	resp := &ReservationResponse{}
	if err := copier.Copy(resp, v); err != nil {
		return nil, err
	}
	return resp, nil
}

func FromReservationViews(views []*queries.ReservationView) ([]*ReservationResponse, error) {
	items := make([]*ReservationResponse, 0, len(views))
	for _, v := range views {
		resp, err := FromReservationView(v)
		if err != nil {
			return nil, err
		}
		items = append(items, resp)
	}
	return items, nil
}

func FromReservationPage(p *queries.ReservationPage) (*ReservationPageResponse, error) {
	items, err := FromReservationViews(p.Items)
	if err != nil {
		return nil, err
	}
	return &ReservationPageResponse{
		Items: items,
		Pagination: PaginationResponse{
			Total:      p.Total,
			Page:       p.Page,
			PageSize:   p.PageSize,
			TotalPages: p.TotalPages,
		},
	}, nil
}

func FromDepositQuote(q *commands.DepositQuote) *DepositQuoteResponse {
	return &DepositQuoteResponse{
		Amount:     q.Amount,
		Percentage: q.Percentage,
		Deposit:    q.Deposit,
	}
}

func FromSyncFailures(jobs []*queries.NotificationJobView) []*SyncFailureResponse {
	items := make([]*SyncFailureResponse, len(jobs))
	for i, j := range jobs {
		items[i] = &SyncFailureResponse{
			ID:        j.ID,
			Topic:     j.Topic,
			Payload:   json.RawMessage(j.Payload),
			Attempts:  j.Attempts,
			LastError: j.LastError,
			CreatedAt: j.CreatedAt,
			UpdatedAt: j.UpdatedAt,
		}
		if sub := j.Subject; sub != nil {
			items[i].ReservationID = &sub.ReservationID
			items[i].DeviceID = sub.DeviceID
			items[i].FechaVenta = sub.SoldOn
		}
	}
	return items
}
