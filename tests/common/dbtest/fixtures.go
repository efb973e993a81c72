//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"apple-sales-reservations/internal/infra/dbq"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// InsertReservation writes a row as-is, bypassing the usecases. Useful for states the API
// cannot reach directly, such as a deposit deadline in the past.
func InsertReservation(t *testing.T, db dbq.DBTX, row dbq.Reservations) uuid.UUID {
	t.Helper()

	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	_, err := db.Exec(context.Background(), `
		INSERT INTO reservations (
		    id, customer_username, device_id,
		    trade_in_product_line, trade_in_model, trade_in_battery_health,
		    status, cancellation_reason,
		    deposit_amount, deposit_status, deposit_due_at, deposit_proof_url, deposit_payment_method,
		    final_payment_amount, final_payment_method, completed_at,
		    created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		row.ID, row.CustomerUsername, row.DeviceID,
		row.TradeInProductLine, row.TradeInModel, row.TradeInBatteryHealth,
		row.Status, row.CancellationReason,
		row.DepositAmount, row.DepositStatus, row.DepositDueAt, row.DepositProofUrl, row.DepositPaymentMethod,
		row.FinalPaymentAmount, row.FinalPaymentMethod, row.CompletedAt,
		row.CreatedAt, row.UpdatedAt,
	)
	require.NoError(t, err)
	return row.ID
}

// ReservationState returns the persisted status pair.
func ReservationState(t *testing.T, db dbq.DBTX, id uuid.UUID) (status, depositStatus string) {
	t.Helper()

	err := db.QueryRow(context.Background(),
		"SELECT status, deposit_status FROM reservations WHERE id = $1", id).Scan(&status, &depositStatus)
	require.NoError(t, err)
	return status, depositStatus
}

// JobStatuses lists the status of every outbox row for a topic, oldest first.
func JobStatuses(t *testing.T, db dbq.DBTX, topic string) []string {
	t.Helper()

	var statuses []string
	err := db.QueryRow(context.Background(),
		"SELECT coalesce(array_agg(status ORDER BY created_at), '{}') FROM notification_jobs WHERE topic = $1", topic).
		Scan(&statuses)
	require.NoError(t, err)
	return statuses
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates every table except the migration ledger.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
