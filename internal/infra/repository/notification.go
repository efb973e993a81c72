package repository

//go:generate mockgen -source=notification.go -destination=../../../tests/mock/repository/notification.go -package=repositorymock

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationWriteQueries interface {
	CreateNotificationJob(ctx context.Context, db dbq.DBTX, arg dbq.CreateNotificationJobParams) (uuid.UUID, error)
	UpdateNotificationJobStatus(ctx context.Context, db dbq.DBTX, arg dbq.UpdateNotificationJobStatusParams) error
}

type NotificationRepository struct {
	queries NotificationWriteQueries
	db      dbq.DBTX
}

func NewNotificationRepository(queries NotificationWriteQueries, db dbq.DBTX) *NotificationRepository {
	return &NotificationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx dbq.DBTX, kind, topic string, payload []byte, runAt time.Time) (uuid.UUID, error) {
	params := dbq.CreateNotificationJobParams{
		Kind:    kind,
		Topic:   topic,
		Payload: payload,
		RunAt:   pgtype.Timestamptz{Time: runAt, Valid: true},
		Status:  shared.JobStatusQueued,
	}

	id, err := r.queries.CreateNotificationJob(ctx, tx, params)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create notification job", err)
	}

	return id, nil
}

// maxLastErrorLen bounds last_error; upstream failures can carry whole response bodies.
const maxLastErrorLen = 1000

var errUnknownJobStatus = errors.New("unknown notification job status")

// UpdateJobStatus finishes a job attempt. A done job never keeps an error.
func (r *NotificationRepository) UpdateJobStatus(ctx context.Context, tx dbq.DBTX, jobID uuid.UUID, status string, lastError *string) error {
	switch status {
	case shared.JobStatusQueued, shared.JobStatusDone, shared.JobStatusFailed:
	default:
		return infra.WrapRepoErr("failed to update notification job status", fmt.Errorf("%w: %q", errUnknownJobStatus, status), infra.KindDBFailure)
	}

	params := dbq.UpdateNotificationJobStatusParams{
		ID:     jobID,
		Status: status,
	}
	if lastError != nil && status != shared.JobStatusDone {
		params.LastError = pgtype.Text{String: truncateRunes(*lastError, maxLastErrorLen), Valid: true}
	}

	if err := r.queries.UpdateNotificationJobStatus(ctx, tx, params); err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
