package dbq

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `id, customer_username, device_id, trade_in_product_line, trade_in_model,
       trade_in_battery_health, status, cancellation_reason, deposit_amount, deposit_status,
       deposit_due_at, deposit_proof_url, deposit_payment_method, final_payment_amount,
       final_payment_method, completed_at, created_at, updated_at`

func scanReservation(row scanner) (Reservations, error) {
	var i Reservations
	err := row.Scan(
		&i.ID,
		&i.CustomerUsername,
		&i.DeviceID,
		&i.TradeInProductLine,
		&i.TradeInModel,
		&i.TradeInBatteryHealth,
		&i.Status,
		&i.CancellationReason,
		&i.DepositAmount,
		&i.DepositStatus,
		&i.DepositDueAt,
		&i.DepositProofUrl,
		&i.DepositPaymentMethod,
		&i.FinalPaymentAmount,
		&i.FinalPaymentMethod,
		&i.CompletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryReservations(ctx context.Context, db DBTX, sql string, args ...interface{}) ([]Reservations, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Reservations{}
	for rows.Next() {
		i, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createReservation = `-- name: CreateReservation :one
INSERT INTO reservations (
    id, customer_username, device_id, trade_in_product_line, trade_in_model,
    trade_in_battery_health, status, deposit_amount, deposit_status, deposit_due_at,
    created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
)
RETURNING id`

type CreateReservationParams struct {
	ID                   uuid.UUID          `json:"id"`
	CustomerUsername     string             `json:"customer_username"`
	DeviceID             string             `json:"device_id"`
	TradeInProductLine   pgtype.Text        `json:"trade_in_product_line"`
	TradeInModel         pgtype.Text        `json:"trade_in_model"`
	TradeInBatteryHealth pgtype.Numeric     `json:"trade_in_battery_health"`
	Status               string             `json:"status"`
	DepositAmount        pgtype.Numeric     `json:"deposit_amount"`
	DepositStatus        string             `json:"deposit_status"`
	DepositDueAt         pgtype.Timestamptz `json:"deposit_due_at"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
	UpdatedAt            pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateReservation(ctx context.Context, db DBTX, arg CreateReservationParams) (uuid.UUID, error) {
	row := db.QueryRow(ctx, createReservation,
		arg.ID,
		arg.CustomerUsername,
		arg.DeviceID,
		arg.TradeInProductLine,
		arg.TradeInModel,
		arg.TradeInBatteryHealth,
		arg.Status,
		arg.DepositAmount,
		arg.DepositStatus,
		arg.DepositDueAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const getReservationByID = `-- name: GetReservationByID :one
SELECT ` + reservationColumns + `
FROM reservations
WHERE id = $1`

func (q *Queries) GetReservationByID(ctx context.Context, db DBTX, id uuid.UUID) (Reservations, error) {
	return scanReservation(db.QueryRow(ctx, getReservationByID, id))
}

const updateReservationState = `-- name: UpdateReservationState :execrows
UPDATE reservations
SET status = $4,
    cancellation_reason = $5,
    deposit_status = $6,
    deposit_proof_url = $7,
    deposit_payment_method = $8,
    final_payment_amount = $9,
    final_payment_method = $10,
    completed_at = $11,
    updated_at = $12
WHERE id = $1
  AND status = $2
  AND deposit_status = $3`

type UpdateReservationStateParams struct {
	ID                    uuid.UUID          `json:"id"`
	ExpectedStatus        string             `json:"expected_status"`
	ExpectedDepositStatus string             `json:"expected_deposit_status"`
	Status                string             `json:"status"`
	CancellationReason    pgtype.Text        `json:"cancellation_reason"`
	DepositStatus         string             `json:"deposit_status"`
	DepositProofUrl       pgtype.Text        `json:"deposit_proof_url"`
	DepositPaymentMethod  pgtype.Text        `json:"deposit_payment_method"`
	FinalPaymentAmount    pgtype.Numeric     `json:"final_payment_amount"`
	FinalPaymentMethod    pgtype.Text        `json:"final_payment_method"`
	CompletedAt           pgtype.Timestamptz `json:"completed_at"`
	UpdatedAt             pgtype.Timestamptz `json:"updated_at"`
}

// UpdateReservationState only touches the row while it still holds the expected status pair.
func (q *Queries) UpdateReservationState(ctx context.Context, db DBTX, arg UpdateReservationStateParams) (int64, error) {
	result, err := db.Exec(ctx, updateReservationState,
		arg.ID,
		arg.ExpectedStatus,
		arg.ExpectedDepositStatus,
		arg.Status,
		arg.CancellationReason,
		arg.DepositStatus,
		arg.DepositProofUrl,
		arg.DepositPaymentMethod,
		arg.FinalPaymentAmount,
		arg.FinalPaymentMethod,
		arg.CompletedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listOverdueReservationsByCustomer = `-- name: ListOverdueReservationsByCustomer :many
SELECT ` + reservationColumns + `
FROM reservations
WHERE customer_username = $1
  AND deposit_status = 'requested'
  AND status IN ('requested', 'confirmed')
  AND deposit_due_at < $2
ORDER BY deposit_due_at`

type ListOverdueReservationsByCustomerParams struct {
	CustomerUsername string             `json:"customer_username"`
	Now              pgtype.Timestamptz `json:"now"`
}

func (q *Queries) ListOverdueReservationsByCustomer(ctx context.Context, db DBTX, arg ListOverdueReservationsByCustomerParams) ([]Reservations, error) {
	return q.queryReservations(ctx, db, listOverdueReservationsByCustomer, arg.CustomerUsername, arg.Now)
}

const reservationFilter = `
WHERE ($1::text IS NULL OR status = $1::text)
  AND ($2::text IS NULL OR strpos(lower(customer_username), lower($2::text)) > 0)
  AND ($3::timestamptz IS NULL OR created_at >= $3::timestamptz)
  AND ($4::timestamptz IS NULL OR created_at <= $4::timestamptz)`

const listReservations = `-- name: ListReservations :many
SELECT ` + reservationColumns + `
FROM reservations` + reservationFilter + `
ORDER BY created_at DESC, id DESC
LIMIT $5 OFFSET $6`

type ListReservationsParams struct {
	Status   pgtype.Text        `json:"status"`
	Customer pgtype.Text        `json:"customer"`
	DateFrom pgtype.Timestamptz `json:"date_from"`
	DateTo   pgtype.Timestamptz `json:"date_to"`
	Limit    int32              `json:"limit"`
	Offset   int32              `json:"offset"`
}

func (q *Queries) ListReservations(ctx context.Context, db DBTX, arg ListReservationsParams) ([]Reservations, error) {
	return q.queryReservations(ctx, db, listReservations,
		arg.Status,
		arg.Customer,
		arg.DateFrom,
		arg.DateTo,
		arg.Limit,
		arg.Offset,
	)
}

const countReservations = `-- name: CountReservations :one
SELECT count(*)
FROM reservations` + reservationFilter

type CountReservationsParams struct {
	Status   pgtype.Text        `json:"status"`
	Customer pgtype.Text        `json:"customer"`
	DateFrom pgtype.Timestamptz `json:"date_from"`
	DateTo   pgtype.Timestamptz `json:"date_to"`
}

func (q *Queries) CountReservations(ctx context.Context, db DBTX, arg CountReservationsParams) (int64, error) {
	row := db.QueryRow(ctx, countReservations,
		arg.Status,
		arg.Customer,
		arg.DateFrom,
		arg.DateTo,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listReservationsByCustomer = `-- name: ListReservationsByCustomer :many
SELECT ` + reservationColumns + `
FROM reservations
WHERE customer_username = $1
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListReservationsByCustomer(ctx context.Context, db DBTX, customerUsername string) ([]Reservations, error) {
	return q.queryReservations(ctx, db, listReservationsByCustomer, customerUsername)
}

const listReservedDeviceIDs = `-- name: ListReservedDeviceIDs :many
SELECT DISTINCT device_id
FROM reservations
WHERE status NOT IN ('cancelled', 'expired')
ORDER BY device_id`

func (q *Queries) ListReservedDeviceIDs(ctx context.Context, db DBTX) ([]string, error) {
	rows, err := db.Query(ctx, listReservedDeviceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var deviceID string
		if err := rows.Scan(&deviceID); err != nil {
			return nil, err
		}
		items = append(items, deviceID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
