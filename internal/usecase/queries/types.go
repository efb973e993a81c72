package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models (DTO for read side)
type ReservationView struct {
	ID                 uuid.UUID
	CustomerUsername   string
	DeviceID           string
	Device             *DeviceView // nil when the inventory service could not be reached
	TradeIn            *TradeInView
	Status             string
	CancellationReason *string
	Deposit            DepositView
	Sale               *SaleView
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type DepositView struct {
	Amount        decimal.Decimal
	Status        string
	DueAt         time.Time
	ProofURL      *string
	PaymentMethod *string
}

type TradeInView struct {
	ProductLine   string
	Model         string
	BatteryHealth *decimal.Decimal
}

type SaleView struct {
	Deposit       decimal.Decimal
	FinalPayment  decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod *string
}

type DeviceView struct {
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

type ListFilters struct {
	Status   *string
	Customer *string // case-insensitive substring
	DateFrom *time.Time
	DateTo   *time.Time
}

type Page struct {
	Number int
	Size   int
}

type ReservationPage struct {
	Items      []*ReservationView
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// JobSubject identifies the reservation a queued job acts on. Decoded from
// the job payload; nil when the payload carries no reservation.
type JobSubject struct {
	ReservationID uuid.UUID
	DeviceID      string
	SoldOn        string
}

type NotificationJobView struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	Subject   *JobSubject
	RunAt     time.Time
	Attempts  int32
	Status    string
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
