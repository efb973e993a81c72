//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/pkg/clock"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.ReservationBuilder)
	errIs  error
}

func TestNewReservation(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewReservationBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, reservation.StatusRequested, actual.Status())
		assert.Equal(t, reservation.DepositRequested, actual.Deposit().Status())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
		assert.Nil(t, actual.Deposit().ProofURL())
		assert.Nil(t, actual.CancellationReason())
		assert.Nil(t, actual.Sale())

		status, deposit := actual.PersistedState()
		assert.Equal(t, reservation.StatusRequested, status)
		assert.Equal(t, reservation.DepositRequested, deposit)
	})

	t.Run("required fields", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "empty customer",
				mutate: func(b *builder.ReservationBuilder) { b.WithCustomer("") },
				errIs:  reservation.ErrCustomerRequired,
			},
			{
				name:   "blank device",
				mutate: func(b *builder.ReservationBuilder) { b.WithDevice("   ") },
				errIs:  reservation.ErrDeviceRequired,
			},
			{
				name:   "zero deposit",
				mutate: func(b *builder.ReservationBuilder) { b.WithDepositAmount("0") },
				errIs:  reservation.ErrNonPositiveAmount,
			},
			{
				name:   "negative deposit",
				mutate: func(b *builder.ReservationBuilder) { b.WithDepositAmount("-10") },
				errIs:  reservation.ErrNonPositiveAmount,
			},
		})
	})

	t.Run("trade-in validation", func(t *testing.T) {
		half := decimal.RequireFromString("0.5")
		over := decimal.RequireFromString("1.01")
		below := decimal.RequireFromString("-0.01")
		one := decimal.NewFromInt(1)

		runCases(t, []testCase{
			{
				name:   "complete trade-in",
				mutate: func(b *builder.ReservationBuilder) { b.WithTradeIn("iPhone", "iPhone 12", &half) },
			},
			{
				name:   "battery health omitted",
				mutate: func(b *builder.ReservationBuilder) { b.WithTradeIn("iPhone", "iPhone 12", nil) },
			},
			{
				name:   "battery health at upper bound",
				mutate: func(b *builder.ReservationBuilder) { b.WithTradeIn("iPhone", "iPhone 12", &one) },
			},
			{
				name:   "missing product line",
				mutate: func(b *builder.ReservationBuilder) { b.WithTradeIn("", "iPhone 12", nil) },
				errIs:  reservation.ErrTradeInProductLine,
			},
			{
				name:   "missing model",
				mutate: func(b *builder.ReservationBuilder) { b.WithTradeIn("iPhone", " ", nil) },
				errIs:  reservation.ErrTradeInModel,
			},
			{
				name:   "battery health above one",
				mutate: func(b *builder.ReservationBuilder) { b.WithTradeIn("iPhone", "iPhone 12", &over) },
				errIs:  reservation.ErrBatteryHealthRange,
			},
			{
				name:   "negative battery health",
				mutate: func(b *builder.ReservationBuilder) { b.WithTradeIn("iPhone", "iPhone 12", &below) },
				errIs:  reservation.ErrBatteryHealthRange,
			},
		})
	})

	t.Run("missing input errors share a kind", func(t *testing.T) {
		_, err := builder.NewReservationBuilder().WithTradeIn("", "x", nil).BuildDomain()
		require.ErrorIs(t, err, errs.ErrMissingInput)
		assert.NotErrorIs(t, err, errs.ErrValidation)
	})
}

func TestPayDeposit(t *testing.T) {
	now := time.Now().UTC()
	method := reservation.PaymentTransfer

	t.Run("requested deposit becomes paid", func(t *testing.T) {
		res := builder.NewReservationBuilder().BuildStored()

		err := res.PayDeposit("https://proofs/1.png", &method, now)
		require.NoError(t, err)

		assert.Equal(t, reservation.StatusRequested, res.Status())
		assert.Equal(t, reservation.DepositPaid, res.Deposit().Status())
		require.NotNil(t, res.Deposit().ProofURL())
		assert.Equal(t, "https://proofs/1.png", *res.Deposit().ProofURL())
		assert.Equal(t, &method, res.Deposit().PaymentMethod())
		assert.Equal(t, now, res.UpdatedAt())

		status, deposit := res.PersistedState()
		assert.Equal(t, reservation.DepositRequested, deposit, "persisted state only moves on save")
		assert.Equal(t, reservation.StatusRequested, status)
	})

	t.Run("empty proof leaves the deposit requested", func(t *testing.T) {
		res := builder.NewReservationBuilder().BuildStored()

		err := res.PayDeposit("  ", nil, now)
		require.ErrorIs(t, err, reservation.ErrProofRequired)
		assert.Equal(t, reservation.DepositRequested, res.Deposit().Status())
	})

	t.Run("second payment is an invalid transition", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsPaid().BuildStored()

		err := res.PayDeposit("https://proofs/2.png", nil, now)
		require.ErrorIs(t, err, reservation.ErrInvalidTransition)

		var te *reservation.TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, reservation.MachineDeposit, te.Machine)
		assert.Equal(t, "paid", te.From)
		assert.Equal(t, "paid", te.To)
	})

	t.Run("reservation not in requested", func(t *testing.T) {
		for _, b := range []*builder.ReservationBuilder{
			builder.NewReservationBuilder().AsConfirmed(),
			builder.NewReservationBuilder().AsCancelled("changed my mind"),
			builder.NewReservationBuilder().WithState(reservation.StatusExpired, reservation.DepositExpired),
		} {
			res := b.BuildStored()
			err := res.PayDeposit("https://proofs/3.png", nil, now)
			require.ErrorIs(t, err, reservation.ErrNotRequested, "status %s", res.Status())
			require.ErrorIs(t, err, errs.ErrInvalidState)
		}
	})
}

func TestConfirm(t *testing.T) {
	now := time.Now().UTC()

	t.Run("paid deposit confirms both machines", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsPaid().BuildStored()

		require.NoError(t, res.Confirm(now))
		assert.Equal(t, reservation.StatusConfirmed, res.Status())
		assert.Equal(t, reservation.DepositConfirmed, res.Deposit().Status())
		assert.Equal(t, now, res.UpdatedAt())
	})

	t.Run("unpaid deposit", func(t *testing.T) {
		res := builder.NewReservationBuilder().BuildStored()

		err := res.Confirm(now)
		require.ErrorIs(t, err, reservation.ErrDepositNotPaid)
		assert.Equal(t, reservation.StatusRequested, res.Status())
	})

	t.Run("already confirmed", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsConfirmed().BuildStored()

		err := res.Confirm(now)
		require.ErrorIs(t, err, reservation.ErrDepositNotPaid)
	})

	t.Run("paid deposit on a cancelled reservation changes nothing", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsPaid().AsCancelled("no stock").BuildStored()

		err := res.Confirm(now)
		require.ErrorIs(t, err, reservation.ErrInvalidTransition)
		assert.Equal(t, reservation.StatusCancelled, res.Status())
		assert.Equal(t, reservation.DepositPaid, res.Deposit().Status())
	})
}

func TestComplete(t *testing.T) {
	now := time.Now().UTC()

	t.Run("with final payment", func(t *testing.T) {
		res := builder.NewReservationBuilder().WithDepositAmount("150").AsConfirmed().BuildStored()
		method := reservation.PaymentCash
		final, err := reservation.NewFinalPayment(decimal.RequireFromString("600"), &method)
		require.NoError(t, err)

		require.NoError(t, res.Complete(&final, now))

		assert.Equal(t, reservation.StatusCompleted, res.Status())
		assert.Equal(t, reservation.DepositConfirmed, res.Deposit().Status())
		require.NotNil(t, res.CompletedAt())
		assert.Equal(t, now, *res.CompletedAt())

		sale := res.Sale()
		require.NotNil(t, sale)
		assert.True(t, decimal.RequireFromString("150").Equal(sale.Deposit))
		assert.True(t, decimal.RequireFromString("600").Equal(sale.FinalPayment))
		assert.True(t, decimal.RequireFromString("750").Equal(sale.Total))
		assert.Equal(t, &method, sale.PaymentMethod)
	})

	t.Run("without final payment has no sale", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsConfirmed().BuildStored()

		require.NoError(t, res.Complete(nil, now))
		assert.Equal(t, reservation.StatusCompleted, res.Status())
		assert.Nil(t, res.Sale())
	})

	t.Run("not confirmed", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsPaid().BuildStored()

		err := res.Complete(nil, now)
		require.ErrorIs(t, err, reservation.ErrNotConfirmed)
		assert.Nil(t, res.CompletedAt())
	})

	t.Run("final payment must be positive", func(t *testing.T) {
		_, err := reservation.NewFinalPayment(decimal.Zero, nil)
		require.ErrorIs(t, err, reservation.ErrNonPositiveAmount)
		require.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestCancel(t *testing.T) {
	now := time.Now().UTC()

	t.Run("requested with reason", func(t *testing.T) {
		res := builder.NewReservationBuilder().BuildStored()

		require.NoError(t, res.Cancel("  found a better deal ", now))
		assert.Equal(t, reservation.StatusCancelled, res.Status())
		require.NotNil(t, res.CancellationReason())
		assert.Equal(t, "found a better deal", *res.CancellationReason())
		assert.Equal(t, reservation.DepositRequested, res.Deposit().Status(), "deposit is left as is")
	})

	t.Run("confirmed without reason", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsConfirmed().BuildStored()

		require.NoError(t, res.Cancel("", now))
		require.NotNil(t, res.CancellationReason())
		assert.Equal(t, reservation.DefaultCancellationReason, *res.CancellationReason())
		assert.Equal(t, reservation.DepositConfirmed, res.Deposit().Status())
	})

	t.Run("terminal states", func(t *testing.T) {
		for _, b := range []*builder.ReservationBuilder{
			builder.NewReservationBuilder().AsCompleted("100", reservation.PaymentCash),
			builder.NewReservationBuilder().AsCancelled("first"),
			builder.NewReservationBuilder().WithState(reservation.StatusExpired, reservation.DepositExpired),
		} {
			res := b.BuildStored()
			before := res.CancellationReason()

			err := res.Cancel("again", now)
			require.ErrorIs(t, err, reservation.ErrNotCancellable, "status %s", res.Status())
			assert.Equal(t, before, res.CancellationReason())
		}
	})
}

func TestExpire(t *testing.T) {
	now := time.Now().UTC()

	t.Run("overdue unpaid reservation", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsOverdue(now).BuildStored()

		require.True(t, res.IsOverdue(now))
		require.NoError(t, res.Expire(now))
		assert.Equal(t, reservation.StatusExpired, res.Status())
		assert.Equal(t, reservation.DepositExpired, res.Deposit().Status())
		assert.False(t, res.IsOverdue(now))
	})

	t.Run("deadline exactly now is not overdue", func(t *testing.T) {
		res := builder.NewReservationBuilder().WithDueAt(now).BuildStored()

		assert.False(t, res.IsOverdue(now))
		require.ErrorIs(t, res.Expire(now), reservation.ErrNotOverdue)
	})

	t.Run("paid deposit never becomes overdue", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsPaid().WithDueAt(now.Add(-time.Hour)).BuildStored()

		assert.False(t, res.IsOverdue(now))
		require.ErrorIs(t, res.Expire(now), reservation.ErrNotOverdue)
		assert.Equal(t, reservation.DepositPaid, res.Deposit().Status())
	})

	t.Run("cancelled reservation is not overdue", func(t *testing.T) {
		res := builder.NewReservationBuilder().AsOverdue(now).AsCancelled("x").BuildStored()

		assert.False(t, res.IsOverdue(now))
	})
}

func TestFactory(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	policy := reservation.NewDepositPolicy(0.2, 45*time.Minute)
	factory := reservation.NewFactory(clock.NewMockClock(created), policy)

	res, err := factory.CreateReservation("customer1", "dev-1", nil, decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.Equal(t, created, res.CreatedAt())
	assert.Equal(t, created.Add(45*time.Minute), res.Deposit().DueAt())
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewReservationBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
