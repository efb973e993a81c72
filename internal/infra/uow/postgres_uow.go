package uow

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/infra/repository"
	"apple-sales-reservations/internal/metrics"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

// retryReasons maps the SQLSTATEs worth another attempt to a metric label.
var retryReasons = map[string]string{
	"40001": "serialization_failure",
	"40P01": "deadlock",
}

type retryPolicy struct {
	maxRetries int
	base       time.Duration
}

// backoff doubles per attempt and adds up to 20% jitter.
func (p retryPolicy) backoff(attempt int) time.Duration {
	wait := time.Duration(1<<attempt) * p.base
	if jitter := int64(wait / 5); jitter > 0 {
		wait += time.Duration(rand.Int64N(jitter))
	}
	return wait
}

// retryReason returns the metric label for a retryable failure, or "" when the
// error must be returned as is. Lost conditional updates are not retried here;
// the caller decides what a concurrent change means.
func retryReason(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	return retryReasons[pgErr.Code]
}

// PostgresUoW runs reservation writes and their outbox rows in one transaction.
type PostgresUoW struct {
	pool   *pgxpool.Pool
	q      *dbq.Queries
	policy retryPolicy
	tracer trace.Tracer
}

func NewPostgresUoW(pool *pgxpool.Pool, q *dbq.Queries, cfg config.Config) shared.UnitOfWork {
	return &PostgresUoW{
		pool: pool,
		q:    q,
		policy: retryPolicy{
			maxRetries: cfg.DB.TxMaxRetries,
			base:       cfg.DB.TxRetryBase,
		},
		tracer: otel.Tracer("reservations-uow"),
	}
}

// Within uses READ COMMITTED; reservation rows are guarded by conditional updates instead.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	ctx, span := u.tracer.Start(ctx, "uow.Within")
	defer span.End()

	attempts, err := u.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
	span.SetAttributes(attribute.Int("tx.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db dbq.DBTX) error) error {
	return fn(ctx, u.pool)
}

// run begins a fresh transaction per attempt; rollback happens inline so
// nothing is deferred across iterations.
func (u *PostgresUoW) run(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) (int, error) {
	for attempt := 0; ; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return attempt + 1, errs.Mark(err, errTransactionBegin)
		}

		err = fn(ctx, &reservationTx{dbtx: pgxTx, q: u.q})
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return attempt + 1, nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rbErr := pgxTx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "rollback failed", "attempt", attempt+1, "error", rbErr.Error())
		}

		reason := retryReason(err)
		if reason == "" {
			return attempt + 1, err
		}
		if attempt >= u.policy.maxRetries {
			slog.ErrorContext(ctx, "transaction failed after max retries",
				"attempts", attempt+1,
				"error", err.Error())
			return attempt + 1, errs.Mark(err, errMaxRetriesExceeded)
		}

		metrics.TransactionRetriesTotal.WithLabelValues(reason).Inc()
		wait := u.policy.backoff(attempt)
		slog.WarnContext(ctx, "retrying reservation transaction",
			"attempt", attempt+1,
			"reason", reason,
			"wait_ms", wait.Milliseconds())

		select {
		case <-ctx.Done():
			return attempt + 1, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// reservationTx builds its repositories on first use, bound to the open transaction.
type reservationTx struct {
	dbtx dbq.DBTX
	q    *dbq.Queries

	reservations  shared.ReservationRepository
	notifications shared.NotificationRepository
}

func (t *reservationTx) DB() dbq.DBTX {
	return t.dbtx
}

func (t *reservationTx) Reservations() shared.ReservationRepository {
	if t.reservations == nil {
		t.reservations = repository.NewReservationRepository(t.q, t.dbtx)
	}
	return t.reservations
}

func (t *reservationTx) Notifications() shared.NotificationRepository {
	if t.notifications == nil {
		t.notifications = repository.NewNotificationRepository(t.q, t.dbtx)
	}
	return t.notifications
}
