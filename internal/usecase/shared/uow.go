package shared

import (
	"context"
	"time"

	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/infra/dbq"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db dbq.DBTX) error) error
}

type Tx interface {
	Reservations() ReservationRepository
	Notifications() NotificationRepository
	DB() dbq.DBTX
}

type ReservationRepository interface {
	Create(ctx context.Context, tx dbq.DBTX, res *reservation.Reservation) (uuid.UUID, error)
	FindByID(ctx context.Context, tx dbq.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	// Save fails with a CONFLICT repository error when the stored status pair
	// no longer matches res.PersistedState().
	Save(ctx context.Context, tx dbq.DBTX, res *reservation.Reservation) error
	FindOverdue(ctx context.Context, tx dbq.DBTX, customerUsername string, now time.Time) ([]*reservation.Reservation, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx dbq.DBTX, kind, topic string, payload []byte, runAt time.Time) (uuid.UUID, error)
	UpdateJobStatus(ctx context.Context, tx dbq.DBTX, jobID uuid.UUID, status string, lastError *string) error
}
