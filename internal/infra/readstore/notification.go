package readstore

//go:generate mockgen -source=notification.go -destination=../../../tests/mock/readstore/notification.go -package=readstoremock

import (
	"context"
	"encoding/json"

	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/pkg/pgconv"
	"apple-sales-reservations/internal/usecase/queries"

	"github.com/google/uuid"
)

type NotificationReadQueries interface {
	ListNotificationJobs(ctx context.Context, db dbq.DBTX, arg dbq.ListNotificationJobsParams) ([]dbq.NotificationJobs, error)
}

// NotificationReadStore reads the outbox for operators chasing inventory drift.
type NotificationReadStore struct {
	queries NotificationReadQueries
	db      dbq.DBTX
}

func NewNotificationReadStore(queries NotificationReadQueries, db dbq.DBTX) *NotificationReadStore {
	return &NotificationReadStore{queries: queries, db: db}
}

func (s *NotificationReadStore) ListJobs(ctx context.Context, topic string, status *string, limit int32) ([]*queries.NotificationJobView, error) {
	rows, err := s.queries.ListNotificationJobs(ctx, s.db, dbq.ListNotificationJobsParams{
		Topic:  topic,
		Status: pgconv.StringPtrToPgtype(status),
		Limit:  limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list notification jobs", err)
	}

	jobs := make([]*queries.NotificationJobView, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, &queries.NotificationJobView{
			ID:        row.ID,
			Kind:      row.Kind,
			Topic:     row.Topic,
			Payload:   row.Payload,
			Subject:   subjectOf(row.Payload),
			RunAt:     row.RunAt.Time,
			Attempts:  row.Attempts,
			Status:    row.Status,
			LastError: pgconv.StringPtrFromPgtype(row.LastError),
			CreatedAt: row.CreatedAt.Time,
			UpdatedAt: row.UpdatedAt.Time,
		})
	}
	return jobs, nil
}

// subjectOf pulls the reservation reference out of a job payload. Both the
// reconcile job and the status events carry reservation_id and device_id.
func subjectOf(payload []byte) *queries.JobSubject {
	var p struct {
		ReservationID string `json:"reservation_id"`
		DeviceID      string `json:"device_id"`
		SoldOn        string `json:"sold_on"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil
	}
	id, err := uuid.Parse(p.ReservationID)
	if err != nil {
		return nil
	}
	return &queries.JobSubject{ReservationID: id, DeviceID: p.DeviceID, SoldOn: p.SoldOn}
}
