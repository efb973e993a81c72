package converter

import (
	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgtype"
)

func ReservationToInfra(res *reservation.Reservation) dbq.CreateReservationParams {
	params := dbq.CreateReservationParams{
		ID:               res.ID(),
		CustomerUsername: res.CustomerUsername(),
		DeviceID:         res.DeviceID(),
		Status:           res.Status().String(),
		DepositAmount:    pgconv.DecimalToNumeric(res.Deposit().Amount()),
		DepositStatus:    res.Deposit().Status().String(),
		DepositDueAt:     pgconv.TimeToPgtype(res.Deposit().DueAt()),
		CreatedAt:        pgconv.TimeToPgtype(res.CreatedAt()),
		UpdatedAt:        pgconv.TimeToPgtype(res.UpdatedAt()),
	}

	if t := res.TradeIn(); t != nil {
		params.TradeInProductLine = pgconv.StringToPgtype(t.ProductLine())
		params.TradeInModel = pgconv.StringToPgtype(t.Model())
		params.TradeInBatteryHealth = pgconv.DecimalPtrToNumeric(t.BatteryHealth())
	}

	return params
}

// ReservationToUpdateParams guards the update with the state the aggregate was loaded in.
func ReservationToUpdateParams(res *reservation.Reservation) dbq.UpdateReservationStateParams {
	expectedStatus, expectedDeposit := res.PersistedState()
	deposit := res.Deposit()

	params := dbq.UpdateReservationStateParams{
		ID:                    res.ID(),
		ExpectedStatus:        expectedStatus.String(),
		ExpectedDepositStatus: expectedDeposit.String(),
		Status:                res.Status().String(),
		CancellationReason:    pgconv.StringPtrToPgtype(res.CancellationReason()),
		DepositStatus:         deposit.Status().String(),
		DepositProofUrl:       pgconv.StringPtrToPgtype(deposit.ProofURL()),
		DepositPaymentMethod:  methodToPgtype(deposit.PaymentMethod()),
		CompletedAt:           pgconv.TimePtrToPgtype(res.CompletedAt()),
		UpdatedAt:             pgconv.TimeToPgtype(res.UpdatedAt()),
	}

	if fp := res.FinalPayment(); fp != nil {
		params.FinalPaymentAmount = pgconv.DecimalToNumeric(fp.Amount())
		params.FinalPaymentMethod = methodToPgtype(fp.Method())
	}

	return params
}

func ReservationFromInfra(row dbq.Reservations) (*reservation.Reservation, error) {
	depositAmount, err := pgconv.DecimalFromNumeric(row.DepositAmount)
	if err != nil {
		return nil, err
	}
	finalAmount, err := pgconv.DecimalPtrFromNumeric(row.FinalPaymentAmount)
	if err != nil {
		return nil, err
	}

	var tradeIn *reservation.TradeIn
	if row.TradeInProductLine.Valid {
		battery, err := pgconv.DecimalPtrFromNumeric(row.TradeInBatteryHealth)
		if err != nil {
			return nil, err
		}
		t, err := reservation.NewTradeIn(row.TradeInProductLine.String, row.TradeInModel.String, battery)
		if err != nil {
			return nil, err
		}
		tradeIn = &t
	}

	return reservation.Reconstruct(reservation.ReconstructParams{
		ID:                 row.ID,
		CustomerUsername:   row.CustomerUsername,
		DeviceID:           row.DeviceID,
		TradeIn:            tradeIn,
		Status:             reservation.Status(row.Status),
		CancellationReason: pgconv.StringPtrFromPgtype(row.CancellationReason),
		DepositAmount:      depositAmount,
		DepositStatus:      reservation.DepositStatus(row.DepositStatus),
		DepositDueAt:       pgconv.TimeFromPgtype(row.DepositDueAt),
		DepositProofURL:    pgconv.StringPtrFromPgtype(row.DepositProofUrl),
		DepositMethod:      methodFromPgtype(row.DepositPaymentMethod),
		FinalPaymentAmount: finalAmount,
		FinalPaymentMethod: methodFromPgtype(row.FinalPaymentMethod),
		CompletedAt:        pgconv.TimePtrFromPgtype(row.CompletedAt),
		CreatedAt:          pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:          pgconv.TimeFromPgtype(row.UpdatedAt),
	}), nil
}

func methodToPgtype(m *reservation.PaymentMethod) pgtype.Text {
	if m == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: m.String(), Valid: true}
}

func methodFromPgtype(t pgtype.Text) *reservation.PaymentMethod {
	if !t.Valid {
		return nil
	}
	m := reservation.PaymentMethod(t.String)
	return &m
}
