package repository

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/repository/reservation.go -package=repositorymock

import (
	"context"
	"time"

	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/infra/repository/converter"
	"apple-sales-reservations/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type ReservationWriteQueries interface {
	CreateReservation(ctx context.Context, db dbq.DBTX, arg dbq.CreateReservationParams) (uuid.UUID, error)
	GetReservationByID(ctx context.Context, db dbq.DBTX, id uuid.UUID) (dbq.Reservations, error)
	UpdateReservationState(ctx context.Context, db dbq.DBTX, arg dbq.UpdateReservationStateParams) (int64, error)
	ListOverdueReservationsByCustomer(ctx context.Context, db dbq.DBTX, arg dbq.ListOverdueReservationsByCustomerParams) ([]dbq.Reservations, error)
}

type ReservationRepository struct {
	queries ReservationWriteQueries
	db      dbq.DBTX
}

func NewReservationRepository(queries ReservationWriteQueries, db dbq.DBTX) *ReservationRepository {
	return &ReservationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *ReservationRepository) Create(ctx context.Context, tx dbq.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	params := converter.ReservationToInfra(res)

	resultID, err := r.queries.CreateReservation(ctx, tx, params)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create reservation", err)
	}

	return resultID, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, tx dbq.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	row, err := r.queries.GetReservationByID(ctx, tx, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	res, err := converter.ReservationFromInfra(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode reservation", err, infra.KindDBFailure)
	}
	return res, nil
}

func (r *ReservationRepository) Save(ctx context.Context, tx dbq.DBTX, res *reservation.Reservation) error {
	params := converter.ReservationToUpdateParams(res)

	affected, err := r.queries.UpdateReservationState(ctx, tx, params)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if affected == 0 {
		return infra.WrapRepoErr("reservation changed concurrently", nil, infra.KindConflict)
	}

	res.MarkPersisted()
	return nil
}

func (r *ReservationRepository) FindOverdue(ctx context.Context, tx dbq.DBTX, customerUsername string, now time.Time) ([]*reservation.Reservation, error) {
	rows, err := r.queries.ListOverdueReservationsByCustomer(ctx, tx, dbq.ListOverdueReservationsByCustomerParams{
		CustomerUsername: customerUsername,
		Now:              pgconv.TimeToPgtype(now),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list overdue reservations", err)
	}

	result := make([]*reservation.Reservation, 0, len(rows))
	for _, row := range rows {
		res, err := converter.ReservationFromInfra(row)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode reservation", err, infra.KindDBFailure)
		}
		result = append(result, res)
	}
	return result, nil
}
