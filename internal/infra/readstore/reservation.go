package readstore

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/readstore/reservation.go -package=readstoremock

import (
	"context"

	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/pkg/pgconv"
	"apple-sales-reservations/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationViewQueries interface {
	GetReservationByID(ctx context.Context, db dbq.DBTX, id uuid.UUID) (dbq.Reservations, error)
	ListReservations(ctx context.Context, db dbq.DBTX, arg dbq.ListReservationsParams) ([]dbq.Reservations, error)
	CountReservations(ctx context.Context, db dbq.DBTX, arg dbq.CountReservationsParams) (int64, error)
	ListReservationsByCustomer(ctx context.Context, db dbq.DBTX, customerUsername string) ([]dbq.Reservations, error)
	ListReservedDeviceIDs(ctx context.Context, db dbq.DBTX) ([]string, error)
}

type ReservationReadStore struct {
	queries ReservationViewQueries
	db      dbq.DBTX
}

func NewReservationReadStore(queries ReservationViewQueries, db dbq.DBTX) *ReservationReadStore {
	return &ReservationReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	row, err := r.queries.GetReservationByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	return toReservationView(row)
}

func (r *ReservationReadStore) List(ctx context.Context, filters queries.ListFilters, limit, offset int32) ([]*queries.ReservationView, error) {
	params := dbq.ListReservationsParams{
		Status:   pgconv.StringPtrToPgtype(filters.Status),
		Customer: pgconv.StringPtrToPgtype(filters.Customer),
		DateFrom: pgconv.TimePtrToPgtype(filters.DateFrom),
		DateTo:   pgconv.TimePtrToPgtype(filters.DateTo),
		Limit:    limit,
		Offset:   offset,
	}

	rows, err := r.queries.ListReservations(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservations", err)
	}

	return toReservationViews(rows)
}

func (r *ReservationReadStore) Count(ctx context.Context, filters queries.ListFilters) (int64, error) {
	params := dbq.CountReservationsParams{
		Status:   pgconv.StringPtrToPgtype(filters.Status),
		Customer: pgconv.StringPtrToPgtype(filters.Customer),
		DateFrom: pgconv.TimePtrToPgtype(filters.DateFrom),
		DateTo:   pgconv.TimePtrToPgtype(filters.DateTo),
	}

	total, err := r.queries.CountReservations(ctx, r.db, params)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count reservations", err)
	}
	return total, nil
}

func (r *ReservationReadStore) ListByCustomer(ctx context.Context, customerUsername string) ([]*queries.ReservationView, error) {
	rows, err := r.queries.ListReservationsByCustomer(ctx, r.db, customerUsername)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list customer reservations", err)
	}
	return toReservationViews(rows)
}

func (r *ReservationReadStore) ReservedDeviceIDs(ctx context.Context) ([]string, error) {
	ids, err := r.queries.ListReservedDeviceIDs(ctx, r.db)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reserved devices", err)
	}
	return ids, nil
}

func toReservationViews(rows []dbq.Reservations) ([]*queries.ReservationView, error) {
	result := make([]*queries.ReservationView, len(rows))
	for i, row := range rows {
		view, err := toReservationView(row)
		if err != nil {
			return nil, err
		}
		result[i] = view
	}
	return result, nil
}

func toReservationView(row dbq.Reservations) (*queries.ReservationView, error) {
	depositAmount, err := pgconv.DecimalFromNumeric(row.DepositAmount)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode deposit amount", err, infra.KindDBFailure)
	}

	view := &queries.ReservationView{
		ID:                 row.ID,
		CustomerUsername:   row.CustomerUsername,
		DeviceID:           row.DeviceID,
		Status:             row.Status,
		CancellationReason: pgconv.StringPtrFromPgtype(row.CancellationReason),
		Deposit: queries.DepositView{
			Amount:        depositAmount,
			Status:        row.DepositStatus,
			DueAt:         pgconv.TimeFromPgtype(row.DepositDueAt),
			ProofURL:      pgconv.StringPtrFromPgtype(row.DepositProofUrl),
			PaymentMethod: pgconv.StringPtrFromPgtype(row.DepositPaymentMethod),
		},
		CompletedAt: pgconv.TimePtrFromPgtype(row.CompletedAt),
		CreatedAt:   pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:   pgconv.TimeFromPgtype(row.UpdatedAt),
	}

	if row.TradeInProductLine.Valid {
		battery, err := pgconv.DecimalPtrFromNumeric(row.TradeInBatteryHealth)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode battery health", err, infra.KindDBFailure)
		}
		view.TradeIn = &queries.TradeInView{
			ProductLine:   row.TradeInProductLine.String,
			Model:         row.TradeInModel.String,
			BatteryHealth: battery,
		}
	}

	sale, err := toSaleView(row, depositAmount)
	if err != nil {
		return nil, err
	}
	view.Sale = sale

	return view, nil
}

func toSaleView(row dbq.Reservations, deposit decimal.Decimal) (*queries.SaleView, error) {
	if row.Status != "completed" || !row.FinalPaymentAmount.Valid {
		return nil, nil
	}
	final, err := pgconv.DecimalFromNumeric(row.FinalPaymentAmount)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode final payment", err, infra.KindDBFailure)
	}
	return &queries.SaleView{
		Deposit:       deposit,
		FinalPayment:  final,
		Total:         deposit.Add(final),
		PaymentMethod: pgconv.StringPtrFromPgtype(row.FinalPaymentMethod),
	}, nil
}
