//go:build unit

package queries_test

import (
	"context"
	"errors"
	"testing"

	"apple-sales-reservations/internal/domain/user"
	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/usecase/queries"
	"apple-sales-reservations/internal/usecase/shared"
	"apple-sales-reservations/tests/common/builder"
	queriesmock "apple-sales-reservations/tests/mock/queries"
	sharedmock "apple-sales-reservations/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	store         *queriesmock.MockReservationReadStore
	notifications *queriesmock.MockNotificationReadStore
	inventory     *sharedmock.MockInventory
	q             queries.ReservationQueries
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		store:         queriesmock.NewMockReservationReadStore(ctrl),
		notifications: queriesmock.NewMockNotificationReadStore(ctrl),
		inventory:     sharedmock.NewMockInventory(ctrl),
	}
	f.q = queries.NewReservationQueries(f.store, f.notifications, f.inventory, config.ReservationConfig{
		DefaultPageSize:   10,
		MaxPageSize:       50,
		EnrichConcurrency: 4,
	})
	return f
}

func device(id string) *shared.Device {
	return &shared.Device{
		ID:          id,
		ProductID:   "iphone-13",
		Condition:   "used",
		Grade:       "A",
		State:       "available",
		Price:       decimal.RequireFromString("750"),
		Accessories: []string{"charger"},
	}
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	owner := user.Actor{Username: "ana", Role: user.RoleViewer}

	t.Run("owner sees the enriched view", func(t *testing.T) {
		f := newFixture(t)
		view := builder.NewReservationBuilder().WithCustomer("ana").WithDevice("dev-1").BuildView()
		f.store.EXPECT().FindByID(ctx, view.ID).Return(view, nil)
		f.inventory.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(device("dev-1"), nil)

		got, err := f.q.GetByID(ctx, view.ID, owner)
		require.NoError(t, err)
		require.NotNil(t, got.Device)
		assert.Equal(t, "iphone-13", got.Device.ProductID)
		assert.True(t, decimal.RequireFromString("750").Equal(got.Device.Price))
	})

	t.Run("staff may read any reservation", func(t *testing.T) {
		f := newFixture(t)
		view := builder.NewReservationBuilder().WithCustomer("someone").BuildView()
		f.store.EXPECT().FindByID(ctx, view.ID).Return(view, nil)
		f.inventory.EXPECT().GetDevice(gomock.Any(), gomock.Any()).Return(device("x"), nil)

		_, err := f.q.GetByID(ctx, view.ID, user.Actor{Username: "boss", Role: user.RoleAdmin})
		require.NoError(t, err)
	})

	t.Run("another customer is forbidden", func(t *testing.T) {
		f := newFixture(t)
		view := builder.NewReservationBuilder().WithCustomer("bruno").BuildView()
		f.store.EXPECT().FindByID(ctx, view.ID).Return(view, nil)

		got, err := f.q.GetByID(ctx, view.ID, owner)
		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Nil(t, got)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		f.store.EXPECT().FindByID(ctx, id).Return(nil, infra.WrapRepoErr("reservation not found", pgx.ErrNoRows, infra.KindNotFound))

		_, err := f.q.GetByID(ctx, id, owner)
		require.ErrorIs(t, err, errs.ErrReservationNotFound)
	})

	t.Run("inventory failure degrades to no device", func(t *testing.T) {
		f := newFixture(t)
		view := builder.NewReservationBuilder().WithCustomer("ana").BuildView()
		f.store.EXPECT().FindByID(ctx, view.ID).Return(view, nil)
		f.inventory.EXPECT().GetDevice(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		got, err := f.q.GetByID(ctx, view.ID, owner)
		require.NoError(t, err)
		assert.Nil(t, got.Device)
		assert.Equal(t, view.ID, got.ID)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("pagination and partial enrichment", func(t *testing.T) {
		f := newFixture(t)
		items := []*queries.ReservationView{
			builder.NewReservationBuilder().WithDevice("dev-1").BuildView(),
			builder.NewReservationBuilder().WithDevice("dev-2").BuildView(),
			builder.NewReservationBuilder().WithDevice("dev-3").BuildView(),
		}
		filters := queries.ListFilters{}

		f.store.EXPECT().Count(ctx, filters).Return(int64(23), nil)
		f.store.EXPECT().List(ctx, filters, int32(10), int32(20)).Return(items, nil)
		f.inventory.EXPECT().GetDevice(gomock.Any(), "dev-1").Return(device("dev-1"), nil)
		f.inventory.EXPECT().GetDevice(gomock.Any(), "dev-2").Return(nil, errors.New("timeout"))
		f.inventory.EXPECT().GetDevice(gomock.Any(), "dev-3").Return(device("dev-3"), nil)

		page, err := f.q.List(ctx, filters, queries.Page{Number: 3, Size: 10})
		require.NoError(t, err)

		assert.Equal(t, int64(23), page.Total)
		assert.Equal(t, 3, page.Page)
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Items, 3)
		assert.NotNil(t, page.Items[0].Device)
		assert.Nil(t, page.Items[1].Device)
		assert.NotNil(t, page.Items[2].Device)
	})

	t.Run("page defaults and size cap", func(t *testing.T) {
		tests := []struct {
			name       string
			in         queries.Page
			wantLimit  int32
			wantOffset int32
		}{
			{name: "zero values use defaults", in: queries.Page{}, wantLimit: 10, wantOffset: 0},
			{name: "size above max is capped", in: queries.Page{Number: 2, Size: 500}, wantLimit: 50, wantOffset: 50},
			{name: "negative page is first page", in: queries.Page{Number: -4, Size: 5}, wantLimit: 5, wantOffset: 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.store.EXPECT().Count(ctx, gomock.Any()).Return(int64(0), nil)
				f.store.EXPECT().List(ctx, gomock.Any(), tt.wantLimit, tt.wantOffset).Return(nil, nil)

				page, err := f.q.List(ctx, queries.ListFilters{}, tt.in)
				require.NoError(t, err)
				assert.Equal(t, 0, page.TotalPages)
				assert.Empty(t, page.Items)
			})
		}
	})

	t.Run("count failure", func(t *testing.T) {
		f := newFixture(t)
		f.store.EXPECT().Count(ctx, gomock.Any()).Return(int64(0), infra.WrapRepoErr("failed to count reservations", errors.New("boom")))

		_, err := f.q.List(ctx, queries.ListFilters{}, queries.Page{})
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := user.Actor{Username: "ana", Role: user.RoleViewer}

	items := []*queries.ReservationView{builder.NewReservationBuilder().WithCustomer("ana").BuildView()}
	f.store.EXPECT().ListByCustomer(ctx, "ana").Return(items, nil)
	f.inventory.EXPECT().GetDevice(gomock.Any(), gomock.Any()).Return(device("dev"), nil)

	got, err := f.q.ListMine(ctx, actor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Device)
}

func TestReservedDeviceIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.EXPECT().ReservedDeviceIDs(ctx).Return([]string{"dev-1"}, nil)

	ids, err := f.q.ReservedDeviceIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev-1"}, ids)
}

func TestListSyncFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		limit     int
		wantLimit int32
	}{
		{name: "explicit limit", limit: 20, wantLimit: 20},
		{name: "zero uses the cap", limit: 0, wantLimit: 200},
		{name: "above the cap", limit: 1000, wantLimit: 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.notifications.EXPECT().ListJobs(ctx, shared.TopicInventoryMarkSold, gomock.Any(), tt.wantLimit).
				DoAndReturn(func(_ context.Context, _ string, status *string, _ int32) ([]*queries.NotificationJobView, error) {
					require.NotNil(t, status)
					assert.Equal(t, shared.JobStatusFailed, *status)
					return []*queries.NotificationJobView{{ID: uuid.New(), Status: shared.JobStatusFailed}}, nil
				})

			jobs, err := f.q.ListSyncFailures(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, jobs, 1)
		})
	}
}
