//go:build unit || e2e

package builder

import (
	"time"

	domres "apple-sales-reservations/internal/domain/reservation"
	reqdto "apple-sales-reservations/internal/handler/dto/request"
	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/pkg/pgconv"
	"apple-sales-reservations/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type TradeInSpec struct {
	ProductLine   string
	Model         string
	BatteryHealth *decimal.Decimal
}

type ReservationBuilder struct {
	ID                 uuid.UUID
	CustomerUsername   string
	DeviceID           string
	TradeIn            *TradeInSpec
	Status             domres.Status
	CancellationReason *string
	DepositAmount      decimal.Decimal
	DepositStatus      domres.DepositStatus
	DepositDueAt       time.Time
	ProofURL           *string
	DepositMethod      *domres.PaymentMethod
	FinalPaymentAmount *decimal.Decimal
	FinalPaymentMethod *domres.PaymentMethod
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &ReservationBuilder{
		ID:               uuid.New(),
		CustomerUsername: "customer1",
		DeviceID:         "dev-iphone-13-001",
		Status:           domres.StatusRequested,
		DepositAmount:    decimal.RequireFromString("150.00"),
		DepositStatus:    domres.DepositRequested,
		DepositDueAt:     now.Add(domres.DefaultDepositWindow),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

// BuildDomain goes through the constructor, so only creation-time fields apply.
func (b *ReservationBuilder) BuildDomain() (*domres.Reservation, error) {
	var tradeIn *domres.TradeIn
	if b.TradeIn != nil {
		t, err := domres.NewTradeIn(b.TradeIn.ProductLine, b.TradeIn.Model, b.TradeIn.BatteryHealth)
		if err != nil {
			return nil, err
		}
		tradeIn = &t
	}
	return domres.NewReservation(b.CustomerUsername, b.DeviceID, tradeIn, b.DepositAmount, b.CreatedAt, b.DepositDueAt)
}

// BuildStored rebuilds a reservation in whatever state the builder holds.
func (b *ReservationBuilder) BuildStored() *domres.Reservation {
	var tradeIn *domres.TradeIn
	if b.TradeIn != nil {
		t, err := domres.NewTradeIn(b.TradeIn.ProductLine, b.TradeIn.Model, b.TradeIn.BatteryHealth)
		if err != nil {
			panic(err)
		}
		tradeIn = &t
	}
	return domres.Reconstruct(domres.ReconstructParams{
		ID:                 b.ID,
		CustomerUsername:   b.CustomerUsername,
		DeviceID:           b.DeviceID,
		TradeIn:            tradeIn,
		Status:             b.Status,
		CancellationReason: b.CancellationReason,
		DepositAmount:      b.DepositAmount,
		DepositStatus:      b.DepositStatus,
		DepositDueAt:       b.DepositDueAt,
		DepositProofURL:    b.ProofURL,
		DepositMethod:      b.DepositMethod,
		FinalPaymentAmount: b.FinalPaymentAmount,
		FinalPaymentMethod: b.FinalPaymentMethod,
		CompletedAt:        b.CompletedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	})
}

func (b *ReservationBuilder) BuildInfra() dbq.Reservations {
	row := dbq.Reservations{
		ID:                   b.ID,
		CustomerUsername:     b.CustomerUsername,
		DeviceID:             b.DeviceID,
		Status:               b.Status.String(),
		CancellationReason:   pgconv.StringPtrToPgtype(b.CancellationReason),
		DepositAmount:        pgconv.DecimalToNumeric(b.DepositAmount),
		DepositStatus:        b.DepositStatus.String(),
		DepositDueAt:         pgconv.TimeToPgtype(b.DepositDueAt),
		DepositProofUrl:      pgconv.StringPtrToPgtype(b.ProofURL),
		DepositPaymentMethod: methodText(b.DepositMethod),
		FinalPaymentAmount:   pgconv.DecimalPtrToNumeric(b.FinalPaymentAmount),
		FinalPaymentMethod:   methodText(b.FinalPaymentMethod),
		CompletedAt:          pgconv.TimePtrToPgtype(b.CompletedAt),
		CreatedAt:            pgconv.TimeToPgtype(b.CreatedAt),
		UpdatedAt:            pgconv.TimeToPgtype(b.UpdatedAt),
	}
	if b.TradeIn != nil {
		row.TradeInProductLine = pgconv.StringToPgtype(b.TradeIn.ProductLine)
		row.TradeInModel = pgconv.StringToPgtype(b.TradeIn.Model)
		row.TradeInBatteryHealth = pgconv.DecimalPtrToNumeric(b.TradeIn.BatteryHealth)
	}
	return row
}

func (b *ReservationBuilder) BuildView() *queries.ReservationView {
	return queries.ViewFromDomain(b.BuildStored())
}

func (b *ReservationBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	req := reqdto.CreateReservationRequest{
		DeviceID: b.DeviceID,
	}
	amount := b.DepositAmount
	req.DepositAmount = &amount
	if b.TradeIn != nil {
		req.TradeIn = &reqdto.TradeInRequest{
			ProductLine:           b.TradeIn.ProductLine,
			Model:                 b.TradeIn.Model,
			BatteryHealthFraction: b.TradeIn.BatteryHealth,
		}
	}
	return req
}

// Fluent builder methods
func (b *ReservationBuilder) WithID(id uuid.UUID) *ReservationBuilder {
	b.ID = id
	return b
}

func (b *ReservationBuilder) WithCustomer(username string) *ReservationBuilder {
	b.CustomerUsername = username
	return b
}

func (b *ReservationBuilder) WithDevice(deviceID string) *ReservationBuilder {
	b.DeviceID = deviceID
	return b
}

func (b *ReservationBuilder) WithTradeIn(productLine, model string, batteryHealth *decimal.Decimal) *ReservationBuilder {
	b.TradeIn = &TradeInSpec{ProductLine: productLine, Model: model, BatteryHealth: batteryHealth}
	return b
}

func (b *ReservationBuilder) WithDepositAmount(amount string) *ReservationBuilder {
	b.DepositAmount = decimal.RequireFromString(amount)
	return b
}

func (b *ReservationBuilder) WithDueAt(dueAt time.Time) *ReservationBuilder {
	b.DepositDueAt = dueAt
	return b
}

func (b *ReservationBuilder) WithCreatedAt(createdAt time.Time) *ReservationBuilder {
	b.CreatedAt = createdAt
	b.UpdatedAt = createdAt
	return b
}

func (b *ReservationBuilder) WithState(status domres.Status, deposit domres.DepositStatus) *ReservationBuilder {
	b.Status = status
	b.DepositStatus = deposit
	return b
}

// AsPaid puts the deposit in paid with a stored proof.
func (b *ReservationBuilder) AsPaid() *ReservationBuilder {
	url := "https://proofs.example.com/deposits/proof.png"
	method := domres.PaymentTransfer
	b.Status = domres.StatusRequested
	b.DepositStatus = domres.DepositPaid
	b.ProofURL = &url
	b.DepositMethod = &method
	return b
}

func (b *ReservationBuilder) AsConfirmed() *ReservationBuilder {
	b.AsPaid()
	b.Status = domres.StatusConfirmed
	b.DepositStatus = domres.DepositConfirmed
	return b
}

func (b *ReservationBuilder) AsCompleted(final string, method domres.PaymentMethod) *ReservationBuilder {
	b.AsConfirmed()
	amount := decimal.RequireFromString(final)
	completedAt := b.UpdatedAt
	b.Status = domres.StatusCompleted
	b.FinalPaymentAmount = &amount
	b.FinalPaymentMethod = &method
	b.CompletedAt = &completedAt
	return b
}

func (b *ReservationBuilder) AsCancelled(reason string) *ReservationBuilder {
	b.Status = domres.StatusCancelled
	b.CancellationReason = &reason
	return b
}

// AsOverdue moves the deposit deadline into the past while still unpaid.
func (b *ReservationBuilder) AsOverdue(now time.Time) *ReservationBuilder {
	b.Status = domres.StatusRequested
	b.DepositStatus = domres.DepositRequested
	b.DepositDueAt = now.Add(-time.Minute)
	return b
}

func methodText(m *domres.PaymentMethod) pgtype.Text {
	if m == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: m.String(), Valid: true}
}
