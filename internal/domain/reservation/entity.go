package reservation

import (
	"strings"
	"time"

	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/pkg/patch"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultCancellationReason = "Unspecified"

var (
	ErrCustomerRequired = errs.NewKind(errs.ErrMissingInput, "customer username is required")
	ErrDeviceRequired   = errs.NewKind(errs.ErrMissingInput, "device id is required")
	ErrProofRequired    = errs.NewKind(errs.ErrMissingInput, "proof of payment is required")
	ErrNotRequested     = errs.NewKind(errs.ErrInvalidState, "reservation not in requested state")
	ErrDepositNotPaid   = errs.NewKind(errs.ErrInvalidState, "deposit has not been paid")
	ErrNotConfirmed     = errs.NewKind(errs.ErrInvalidState, "reservation must be confirmed before completing it")
	ErrNotCancellable   = errs.NewKind(errs.ErrInvalidState, "reservation can no longer be cancelled")
	ErrNotOverdue       = errs.NewKind(errs.ErrInvalidState, "deposit is not overdue")
)

type Reservation struct {
	id                 uuid.UUID
	customerUsername   string
	deviceID           string
	tradeIn            *TradeIn
	status             Status
	cancellationReason *string
	deposit            Deposit
	finalPayment       *FinalPayment
	completedAt        *time.Time
	createdAt          time.Time
	updatedAt          time.Time

	// persisted is the state last read from or written to storage.
	// Saves are conditional on it.
	persisted stateSnapshot
}

type stateSnapshot struct {
	status        Status
	depositStatus DepositStatus
}

func NewReservation(
	customerUsername string,
	deviceID string,
	tradeIn *TradeIn,
	depositAmount decimal.Decimal,
	createdAt time.Time,
	dueAt time.Time,
) (*Reservation, error) {
	customerUsername = strings.TrimSpace(customerUsername)
	deviceID = strings.TrimSpace(deviceID)
	if customerUsername == "" {
		return nil, ErrCustomerRequired
	}
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}
	if !depositAmount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	r := &Reservation{
		id:               uuid.New(),
		customerUsername: customerUsername,
		deviceID:         deviceID,
		tradeIn:          tradeIn,
		status:           StatusRequested,
		deposit: Deposit{
			amount: depositAmount,
			status: DepositRequested,
			dueAt:  dueAt,
		},
		createdAt: createdAt,
		updatedAt: createdAt,
	}
	r.MarkPersisted()
	return r, nil
}

// ReconstructParams carries every stored column of a reservation.
type ReconstructParams struct {
	ID                 uuid.UUID
	CustomerUsername   string
	DeviceID           string
	TradeIn            *TradeIn
	Status             Status
	CancellationReason *string
	DepositAmount      decimal.Decimal
	DepositStatus      DepositStatus
	DepositDueAt       time.Time
	DepositProofURL    *string
	DepositMethod      *PaymentMethod
	FinalPaymentAmount *decimal.Decimal
	FinalPaymentMethod *PaymentMethod
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func Reconstruct(p ReconstructParams) *Reservation {
	r := &Reservation{
		id:                 p.ID,
		customerUsername:   p.CustomerUsername,
		deviceID:           p.DeviceID,
		tradeIn:            p.TradeIn,
		status:             p.Status,
		cancellationReason: p.CancellationReason,
		deposit: Deposit{
			amount:        p.DepositAmount,
			status:        p.DepositStatus,
			dueAt:         p.DepositDueAt,
			proofURL:      p.DepositProofURL,
			paymentMethod: p.DepositMethod,
		},
		completedAt: p.CompletedAt,
		createdAt:   p.CreatedAt,
		updatedAt:   p.UpdatedAt,
	}
	if p.FinalPaymentAmount != nil {
		r.finalPayment = &FinalPayment{amount: *p.FinalPaymentAmount, method: p.FinalPaymentMethod}
	}
	r.MarkPersisted()
	return r
}

func (r *Reservation) ID() uuid.UUID {
	return r.id
}

func (r *Reservation) CustomerUsername() string {
	return r.customerUsername
}

func (r *Reservation) DeviceID() string {
	return r.deviceID
}

func (r *Reservation) TradeIn() *TradeIn {
	return r.tradeIn
}

func (r *Reservation) Status() Status {
	return r.status
}

func (r *Reservation) CancellationReason() *string {
	return r.cancellationReason
}

func (r *Reservation) Deposit() Deposit {
	return r.deposit
}

func (r *Reservation) FinalPayment() *FinalPayment {
	return r.finalPayment
}

func (r *Reservation) CompletedAt() *time.Time {
	return r.completedAt
}

func (r *Reservation) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Reservation) UpdatedAt() time.Time {
	return r.updatedAt
}

// PersistedState returns the status pair a conditional save must still find in storage.
func (r *Reservation) PersistedState() (Status, DepositStatus) {
	return r.persisted.status, r.persisted.depositStatus
}

func (r *Reservation) MarkPersisted() {
	r.persisted = stateSnapshot{status: r.status, depositStatus: r.deposit.status}
}

func (r *Reservation) IsOwnedBy(username string) bool {
	return r.customerUsername == username
}

// CheckPayable verifies the preconditions of a deposit payment without changing anything.
func (r *Reservation) CheckPayable() error {
	if r.status != StatusRequested {
		return ErrNotRequested
	}
	return checkDeposit(r.deposit.status, DepositPaid)
}

func (r *Reservation) PayDeposit(proofURL string, method *PaymentMethod, now time.Time) error {
	if err := r.CheckPayable(); err != nil {
		return err
	}
	if strings.TrimSpace(proofURL) == "" {
		return ErrProofRequired
	}
	if err := r.TransitionDepositTo(DepositPaid); err != nil {
		return err
	}
	r.deposit.proofURL = &proofURL
	r.deposit.paymentMethod = method
	r.updatedAt = now
	return nil
}

// Confirm moves both the deposit and the reservation to confirmed.
func (r *Reservation) Confirm(now time.Time) error {
	if r.deposit.status != DepositPaid {
		return ErrDepositNotPaid
	}
	if err := r.transitionBoth(DepositConfirmed, StatusConfirmed); err != nil {
		return err
	}
	r.updatedAt = now
	return nil
}

func (r *Reservation) Complete(final *FinalPayment, now time.Time) error {
	if r.status != StatusConfirmed {
		return ErrNotConfirmed
	}
	if err := r.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	r.finalPayment = final
	r.completedAt = &now
	r.updatedAt = now
	return nil
}

// Cancel leaves the deposit untouched; refunds are handled manually.
func (r *Reservation) Cancel(reason string, now time.Time) error {
	if r.status != StatusRequested && r.status != StatusConfirmed {
		return ErrNotCancellable
	}
	if err := r.TransitionTo(StatusCancelled); err != nil {
		return err
	}
	reason = patch.CoalesceText(&reason, DefaultCancellationReason)
	r.cancellationReason = &reason
	r.updatedAt = now
	return nil
}

// IsOverdue reports whether the deposit deadline passed without payment.
func (r *Reservation) IsOverdue(now time.Time) bool {
	return !r.status.IsTerminal() &&
		r.deposit.status == DepositRequested &&
		now.After(r.deposit.dueAt)
}

func (r *Reservation) Expire(now time.Time) error {
	if !r.IsOverdue(now) {
		return ErrNotOverdue
	}
	if err := r.transitionBoth(DepositExpired, StatusExpired); err != nil {
		return err
	}
	r.updatedAt = now
	return nil
}

// Sale is nil until the reservation is completed with a final payment.
func (r *Reservation) Sale() *Sale {
	if r.status != StatusCompleted || r.finalPayment == nil {
		return nil
	}
	return &Sale{
		Deposit:       r.deposit.amount,
		FinalPayment:  r.finalPayment.amount,
		Total:         r.deposit.amount.Add(r.finalPayment.amount),
		PaymentMethod: r.finalPayment.method,
	}
}
