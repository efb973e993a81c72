package commands

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/commands/reservation.go -package=commandsmock

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/domain/user"
	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/metrics"
	"apple-sales-reservations/internal/pkg/clock"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/usecase/queries"
	"apple-sales-reservations/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrConcurrentChange   = errs.NewKind(errs.ErrInvalidState, "reservation was modified concurrently")
	ErrStaffOnly          = errs.NewKind(errs.ErrForbidden, "operation requires admin or sales role")
	ErrCustomerOnly       = errs.NewKind(errs.ErrForbidden, "operation is reserved for the customer")
	ErrNotOwner           = errs.NewKind(errs.ErrForbidden, "reservation belongs to another customer")
	ErrDeviceNotFound     = errs.NewKind(errs.ErrValidation, "device not found in inventory")
	ErrMethodWithoutTotal = errs.NewKind(errs.ErrValidation, "payment method requires a final payment amount")
)

type ReservationCommands interface {
	Request(ctx context.Context, actor user.Actor, in RequestReservationInput) (*queries.ReservationView, error)
	PayDeposit(ctx context.Context, id uuid.UUID, actor user.Actor, in PayDepositInput) (*queries.ReservationView, error)
	Confirm(ctx context.Context, id uuid.UUID, actor user.Actor) (*queries.ReservationView, error)
	Complete(ctx context.Context, id uuid.UUID, actor user.Actor, in CompleteReservationInput) (*queries.ReservationView, error)
	Cancel(ctx context.Context, id uuid.UUID, actor user.Actor, reason string) (*queries.ReservationView, error)
	// ExpireOverdue expires the customer's unpaid reservations whose deposit deadline passed.
	ExpireOverdue(ctx context.Context, customerUsername string) (int, error)
	QuoteDeposit(amount decimal.Decimal) (*DepositQuote, error)
}

type reservationUseCaseImpl struct {
	uow       shared.UnitOfWork
	inventory shared.Inventory
	storage   shared.ProofStorage
	factory   *reservation.Factory
	clock     clock.Clock
}

func NewReservationUseCase(
	uow shared.UnitOfWork,
	inventory shared.Inventory,
	storage shared.ProofStorage,
	factory *reservation.Factory,
	clk clock.Clock,
) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:       uow,
		inventory: inventory,
		storage:   storage,
		factory:   factory,
		clock:     clk,
	}
}

func (uc *reservationUseCaseImpl) Request(ctx context.Context, actor user.Actor, in RequestReservationInput) (*queries.ReservationView, error) {
	var tradeIn *reservation.TradeIn
	if in.TradeIn != nil {
		t, err := reservation.NewTradeIn(in.TradeIn.ProductLine, in.TradeIn.Model, in.TradeIn.BatteryHealth)
		if err != nil {
			return nil, err
		}
		tradeIn = &t
	}

	amount, err := uc.depositFor(ctx, in)
	if err != nil {
		return nil, err
	}

	res, err := uc.factory.CreateReservation(actor.Username, in.DeviceID, tradeIn, amount)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Reservations().Create(ctx, tx.DB(), res); err != nil {
			return err
		}
		return recordEvent(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationsCreatedTotal.Inc()
	slog.InfoContext(ctx, "reservation requested",
		"reservation_id", res.ID().String(),
		"device_id", res.DeviceID(),
		"customer", res.CustomerUsername(),
		"deposit", res.Deposit().Amount().String(),
		"due_at", res.Deposit().DueAt())

	return queries.ViewFromDomain(res), nil
}

func (uc *reservationUseCaseImpl) depositFor(ctx context.Context, in RequestReservationInput) (decimal.Decimal, error) {
	if in.DepositAmount != nil {
		return *in.DepositAmount, nil
	}
	if in.DeviceID == "" {
		return decimal.Zero, reservation.ErrDeviceRequired
	}

	device, err := uc.inventory.GetDevice(ctx, in.DeviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return decimal.Zero, errs.Mark(err, ErrDeviceNotFound)
		}
		return decimal.Zero, errs.Mark(err, errs.ErrUpstreamFailure)
	}
	return uc.factory.Policy.Quote(device.Price)
}

// PayDeposit uploads the proof before touching the record, so a failed upload leaves nothing behind.
func (uc *reservationUseCaseImpl) PayDeposit(ctx context.Context, id uuid.UUID, actor user.Actor, in PayDepositInput) (*queries.ReservationView, error) {
	if actor.Role != user.RoleViewer {
		return nil, ErrCustomerOnly
	}
	method, err := reservation.NewPaymentMethodPtr(in.PaymentMethod)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := uc.loadOwnedByCustomer(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		return res.CheckPayable()
	})
	if err != nil {
		return nil, err
	}
	if len(in.Proof) == 0 {
		return nil, reservation.ErrProofRequired
	}

	url, err := uc.storage.Put(ctx, in.Proof, in.ContentType)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrUpstreamFailure)
	}

	var (
		paid *reservation.Reservation
		from stateBefore
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := uc.loadOwnedByCustomer(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		from = stateOf(res)
		if err := res.PayDeposit(url, method, uc.clock.Now()); err != nil {
			return err
		}
		if err := save(ctx, tx, res); err != nil {
			return err
		}
		paid = res
		return recordEvent(ctx, tx, res)
	})
	if err != nil {
		uc.discardProof(ctx, id, url)
		return nil, err
	}

	uc.logTransition(ctx, paid, from)
	return queries.ViewFromDomain(paid), nil
}

func (uc *reservationUseCaseImpl) Confirm(ctx context.Context, id uuid.UUID, actor user.Actor) (*queries.ReservationView, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	var from stateBefore
	res, err := uc.mutate(ctx, id, func(res *reservation.Reservation) error {
		from = stateOf(res)
		return res.Confirm(uc.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	uc.logTransition(ctx, res, from)
	return queries.ViewFromDomain(res), nil
}

// Complete persists the completion first. Marking the device sold afterwards is best-effort:
// a failure is logged, counted and left in the outbox as a failed reconcile job.
func (uc *reservationUseCaseImpl) Complete(ctx context.Context, id uuid.UUID, actor user.Actor, in CompleteReservationInput) (*queries.ReservationView, error) {
	if !actor.IsStaff() {
		return nil, ErrStaffOnly
	}

	final, err := finalPaymentFrom(in)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	soldOn := uc.clock.Today()

	var (
		completed *reservation.Reservation
		from      stateBefore
		jobID     uuid.UUID
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		from = stateOf(res)
		if err := res.Complete(final, now); err != nil {
			return err
		}
		if err := save(ctx, tx, res); err != nil {
			return err
		}
		if err := recordEvent(ctx, tx, res); err != nil {
			return err
		}

		payload, err := json.Marshal(markSoldPayload{
			ReservationID: res.ID().String(),
			DeviceID:      res.DeviceID(),
			SoldOn:        soldOn,
		})
		if err != nil {
			return err
		}
		jobID, err = tx.Notifications().CreateJob(ctx, tx.DB(), shared.JobKindReconcile, shared.TopicInventoryMarkSold, payload, now)
		if err != nil {
			return err
		}
		completed = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logTransition(ctx, completed, from)
	uc.syncInventory(context.WithoutCancel(ctx), completed, jobID, soldOn)

	return queries.ViewFromDomain(completed), nil
}

func (uc *reservationUseCaseImpl) Cancel(ctx context.Context, id uuid.UUID, actor user.Actor, reason string) (*queries.ReservationView, error) {
	var (
		cancelled *reservation.Reservation
		from      stateBefore
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := uc.loadOwned(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		from = stateOf(res)
		if err := res.Cancel(reason, uc.clock.Now()); err != nil {
			return err
		}
		if err := save(ctx, tx, res); err != nil {
			return err
		}
		cancelled = res
		return recordEvent(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}

	uc.logTransition(ctx, cancelled, from)
	return queries.ViewFromDomain(cancelled), nil
}

// ExpireOverdue runs one transaction per record. A record changed by someone else in the
// meantime is skipped; the next sweep looks at it again.
func (uc *reservationUseCaseImpl) ExpireOverdue(ctx context.Context, customerUsername string) (int, error) {
	now := uc.clock.Now()

	var overdue []*reservation.Reservation
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		overdue, err = tx.Reservations().FindOverdue(ctx, tx.DB(), customerUsername, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range overdue {
		var (
			res  *reservation.Reservation
			from stateBefore
		)
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			res = nil
			current, err := loadReservation(ctx, tx, candidate.ID())
			if err != nil {
				return err
			}
			if !current.IsOverdue(now) {
				return nil
			}
			from = stateOf(current)
			if err := current.Expire(now); err != nil {
				return err
			}
			if err := save(ctx, tx, current); err != nil {
				return err
			}
			res = current
			return recordEvent(ctx, tx, current)
		})
		if errors.Is(err, ErrConcurrentChange) || errors.Is(err, errs.ErrReservationNotFound) {
			slog.WarnContext(ctx, "skipping reservation changed during expiration",
				"reservation_id", candidate.ID().String())
			continue
		}
		if err != nil {
			return expired, err
		}
		if res == nil {
			continue
		}

		expired++
		metrics.ReservationsExpiredTotal.Inc()
		uc.logTransition(ctx, res, from)
	}

	return expired, nil
}

func (uc *reservationUseCaseImpl) QuoteDeposit(amount decimal.Decimal) (*DepositQuote, error) {
	deposit, err := uc.factory.Policy.Quote(amount)
	if err != nil {
		return nil, err
	}
	return &DepositQuote{
		Amount:     amount,
		Percentage: uc.factory.Policy.Percentage,
		Deposit:    deposit,
	}, nil
}

// mutate loads, changes and conditionally saves a reservation in one transaction.
func (uc *reservationUseCaseImpl) mutate(ctx context.Context, id uuid.UUID, change func(*reservation.Reservation) error) (*reservation.Reservation, error) {
	var changed *reservation.Reservation
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := loadReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := change(res); err != nil {
			return err
		}
		if err := save(ctx, tx, res); err != nil {
			return err
		}
		changed = res
		return recordEvent(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

func (uc *reservationUseCaseImpl) loadOwned(ctx context.Context, tx shared.Tx, id uuid.UUID, actor user.Actor) (*reservation.Reservation, error) {
	res, err := loadReservation(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(res.CustomerUsername()) {
		return nil, ErrNotOwner
	}
	return res, nil
}

// loadOwnedByCustomer is loadOwned without the staff bypass.
func (uc *reservationUseCaseImpl) loadOwnedByCustomer(ctx context.Context, tx shared.Tx, id uuid.UUID, actor user.Actor) (*reservation.Reservation, error) {
	res, err := loadReservation(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != user.RoleViewer || !res.IsOwnedBy(actor.Username) {
		return nil, ErrNotOwner
	}
	return res, nil
}

func (uc *reservationUseCaseImpl) syncInventory(ctx context.Context, res *reservation.Reservation, jobID uuid.UUID, soldOn string) {
	status := shared.JobStatusDone
	var lastErr *string

	if err := uc.inventory.MarkSold(ctx, res.DeviceID(), soldOn); err != nil {
		msg := err.Error()
		status = shared.JobStatusFailed
		lastErr = &msg

		metrics.InventorySyncFailuresTotal.Inc()
		slog.ErrorContext(ctx, "failed to mark device sold; reconciliation required",
			"reservation_id", res.ID().String(),
			"device_id", res.DeviceID(),
			"at", uc.clock.Now(),
			"job_id", jobID.String(),
			"error", msg)
	}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Notifications().UpdateJobStatus(ctx, tx.DB(), jobID, status, lastErr)
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("update_sync_job").Inc()
		slog.WarnContext(ctx, "failed to record inventory sync result",
			"job_id", jobID.String(),
			"status", status,
			"error", err.Error())
	}
}

func (uc *reservationUseCaseImpl) discardProof(ctx context.Context, id uuid.UUID, url string) {
	if err := uc.storage.Delete(context.WithoutCancel(ctx), url); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("discard_proof").Inc()
		slog.WarnContext(ctx, "failed to delete orphaned proof",
			"reservation_id", id.String(),
			"url", url,
			"error", err.Error())
	}
}

// stateBefore is the pair of machine states a command started from.
type stateBefore struct {
	status  reservation.Status
	deposit reservation.DepositStatus
}

func stateOf(res *reservation.Reservation) stateBefore {
	return stateBefore{status: res.Status(), deposit: res.Deposit().Status()}
}

// logTransition counts each machine only when it moved.
func (uc *reservationUseCaseImpl) logTransition(ctx context.Context, res *reservation.Reservation, from stateBefore) {
	to := stateOf(res)
	if to.status != from.status {
		metrics.ReservationTransitionsTotal.WithLabelValues(reservation.MachineStatus, to.status.String()).Inc()
	}
	if to.deposit != from.deposit {
		metrics.ReservationTransitionsTotal.WithLabelValues(reservation.MachineDeposit, to.deposit.String()).Inc()
	}
	slog.InfoContext(ctx, "reservation changed",
		"reservation_id", res.ID().String(),
		"device_id", res.DeviceID(),
		"customer", res.CustomerUsername(),
		"from", from.status.String(),
		"to", to.status.String(),
		"deposit_from", from.deposit.String(),
		"deposit_to", to.deposit.String(),
		"at", res.UpdatedAt())
}

func loadReservation(ctx context.Context, tx shared.Tx, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := tx.Reservations().FindByID(ctx, tx.DB(), id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrReservationNotFound)
		}
		return nil, err
	}
	return res, nil
}

func save(ctx context.Context, tx shared.Tx, res *reservation.Reservation) error {
	err := tx.Reservations().Save(ctx, tx.DB(), res)
	if infra.IsKind(err, infra.KindConflict) {
		return errs.Mark(err, ErrConcurrentChange)
	}
	return err
}

type markSoldPayload struct {
	ReservationID string `json:"reservation_id"`
	DeviceID      string `json:"device_id"`
	SoldOn        string `json:"sold_on"`
}

type eventPayload struct {
	ReservationID string    `json:"reservation_id"`
	DeviceID      string    `json:"device_id"`
	Customer      string    `json:"customer"`
	Status        string    `json:"status"`
	DepositStatus string    `json:"deposit_status"`
	At            time.Time `json:"at"`
}

func recordEvent(ctx context.Context, tx shared.Tx, res *reservation.Reservation) error {
	payload, err := json.Marshal(eventPayload{
		ReservationID: res.ID().String(),
		DeviceID:      res.DeviceID(),
		Customer:      res.CustomerUsername(),
		Status:        res.Status().String(),
		DepositStatus: res.Deposit().Status().String(),
		At:            res.UpdatedAt(),
	})
	if err != nil {
		return err
	}
	_, err = tx.Notifications().CreateJob(ctx, tx.DB(), shared.JobKindEvent, shared.TopicEventPrefix+res.Status().String(), payload, res.UpdatedAt())
	return err
}

func finalPaymentFrom(in CompleteReservationInput) (*reservation.FinalPayment, error) {
	method, err := reservation.NewPaymentMethodPtr(in.PaymentMethod)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}
	if in.FinalPaymentAmount == nil {
		if method != nil {
			return nil, ErrMethodWithoutTotal
		}
		return nil, nil
	}
	fp, err := reservation.NewFinalPayment(*in.FinalPaymentAmount, method)
	if err != nil {
		return nil, err
	}
	return &fp, nil
}
