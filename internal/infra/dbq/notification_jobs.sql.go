package dbq

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createNotificationJob = `-- name: CreateNotificationJob :one
INSERT INTO notification_jobs (kind, topic, payload, run_at, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

type CreateNotificationJobParams struct {
	Kind    string             `json:"kind"`
	Topic   string             `json:"topic"`
	Payload []byte             `json:"payload"`
	RunAt   pgtype.Timestamptz `json:"run_at"`
	Status  string             `json:"status"`
}

func (q *Queries) CreateNotificationJob(ctx context.Context, db DBTX, arg CreateNotificationJobParams) (uuid.UUID, error) {
	row := db.QueryRow(ctx, createNotificationJob,
		arg.Kind,
		arg.Topic,
		arg.Payload,
		arg.RunAt,
		arg.Status,
	)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const updateNotificationJobStatus = `-- name: UpdateNotificationJobStatus :exec
UPDATE notification_jobs
SET status = $2,
    last_error = $3,
    attempts = attempts + 1,
    updated_at = now()
WHERE id = $1`

type UpdateNotificationJobStatusParams struct {
	ID        uuid.UUID   `json:"id"`
	Status    string      `json:"status"`
	LastError pgtype.Text `json:"last_error"`
}

func (q *Queries) UpdateNotificationJobStatus(ctx context.Context, db DBTX, arg UpdateNotificationJobStatusParams) error {
	_, err := db.Exec(ctx, updateNotificationJobStatus, arg.ID, arg.Status, arg.LastError)
	return err
}

const listNotificationJobs = `-- name: ListNotificationJobs :many
SELECT id, kind, topic, payload, run_at, attempts, status, last_error, created_at, updated_at
FROM notification_jobs
WHERE topic = $1
  AND ($2::text IS NULL OR status = $2::text)
ORDER BY created_at DESC
LIMIT $3`

type ListNotificationJobsParams struct {
	Topic  string      `json:"topic"`
	Status pgtype.Text `json:"status"`
	Limit  int32       `json:"limit"`
}

func (q *Queries) ListNotificationJobs(ctx context.Context, db DBTX, arg ListNotificationJobsParams) ([]NotificationJobs, error) {
	rows, err := db.Query(ctx, listNotificationJobs, arg.Topic, arg.Status, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []NotificationJobs{}
	for rows.Next() {
		var i NotificationJobs
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Topic,
			&i.Payload,
			&i.RunAt,
			&i.Attempts,
			&i.Status,
			&i.LastError,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
