//go:build unit

package uow

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"apple-sales-reservations/internal/infra"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRetryReason(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, expected: "serialization_failure"},
		{name: "deadlock", err: fmt.Errorf("save: %w", &pgconn.PgError{Code: "40P01"}), expected: "deadlock"},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, expected: ""},
		{name: "lost conditional update", err: infra.WrapRepoErr("reservation changed", errors.New("0 rows"), infra.KindConflict), expected: ""},
		{name: "plain error", err: errors.New("boom"), expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, retryReason(tc.err))
		})
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	policy := retryPolicy{maxRetries: 3, base: 100 * time.Millisecond}

	for attempt := range 3 {
		wait := policy.backoff(attempt)
		floor := time.Duration(1<<attempt) * policy.base
		assert.GreaterOrEqual(t, wait, floor)
		assert.Less(t, wait, floor+floor/5)
	}

	assert.Equal(t, time.Duration(0), retryPolicy{}.backoff(2))
}
