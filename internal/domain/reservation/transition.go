package reservation

import (
	"fmt"
	"slices"

	"apple-sales-reservations/internal/pkg/errs"
)

var statusTransitions = map[Status][]Status{
	StatusRequested: {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusExpired},
	StatusCompleted: nil,
	StatusCancelled: nil,
	StatusExpired:   nil,
}

var depositTransitions = map[DepositStatus][]DepositStatus{
	DepositRequested: {DepositPaid, DepositExpired},
	DepositPaid:      {DepositConfirmed, DepositExpired},
	DepositConfirmed: nil,
	DepositExpired:   nil,
}

// ErrInvalidTransition matches every *TransitionError.
var ErrInvalidTransition = errs.ErrInvalidTransition

const (
	MachineStatus  = "status"
	MachineDeposit = "deposit"
)

// TransitionError is returned when a requested edge is not in the transition table.
type TransitionError struct {
	Machine string
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %q to %q", e.Machine, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func CanTransition(from, to Status) bool {
	return slices.Contains(statusTransitions[from], to)
}

func CanTransitionDeposit(from, to DepositStatus) bool {
	return slices.Contains(depositTransitions[from], to)
}

func checkStatus(from, to Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{Machine: MachineStatus, From: from.String(), To: to.String()}
	}
	return nil
}

func checkDeposit(from, to DepositStatus) error {
	if !CanTransitionDeposit(from, to) {
		return &TransitionError{Machine: MachineDeposit, From: from.String(), To: to.String()}
	}
	return nil
}

// TransitionTo moves the reservation status along one edge of the table.
// Nothing is written on failure.
func (r *Reservation) TransitionTo(to Status) error {
	if err := checkStatus(r.status, to); err != nil {
		return err
	}
	r.status = to
	return nil
}

// TransitionDepositTo moves the deposit status along one edge of the table.
func (r *Reservation) TransitionDepositTo(to DepositStatus) error {
	if err := checkDeposit(r.deposit.status, to); err != nil {
		return err
	}
	r.deposit.status = to
	return nil
}

// transitionBoth applies a deposit edge and a status edge, or neither.
func (r *Reservation) transitionBoth(deposit DepositStatus, status Status) error {
	if err := checkDeposit(r.deposit.status, deposit); err != nil {
		return err
	}
	if err := checkStatus(r.status, status); err != nil {
		return err
	}
	r.deposit.status = deposit
	r.status = status
	return nil
}
