package queries

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/queries/reservation.go -package=queriesmock

import (
	"context"
	"log/slog"

	"apple-sales-reservations/internal/domain/user"
	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/metrics"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/usecase/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const maxSyncFailureLimit = 200

type ReservationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID, actor user.Actor) (*ReservationView, error)
	List(ctx context.Context, filters ListFilters, page Page) (*ReservationPage, error)
	ListMine(ctx context.Context, actor user.Actor) ([]*ReservationView, error)
	ReservedDeviceIDs(ctx context.Context) ([]string, error)
	ListSyncFailures(ctx context.Context, limit int) ([]*NotificationJobView, error)
}

type ReservationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	List(ctx context.Context, filters ListFilters, limit, offset int32) ([]*ReservationView, error)
	Count(ctx context.Context, filters ListFilters) (int64, error)
	ListByCustomer(ctx context.Context, customerUsername string) ([]*ReservationView, error)
	ReservedDeviceIDs(ctx context.Context) ([]string, error)
}

type NotificationReadStore interface {
	ListJobs(ctx context.Context, topic string, status *string, limit int32) ([]*NotificationJobView, error)
}

type reservationQueriesImpl struct {
	repo          ReservationReadStore
	notifications NotificationReadStore
	inventory     shared.Inventory
	cfg           config.ReservationConfig
}

func NewReservationQueries(
	repo ReservationReadStore,
	notifications NotificationReadStore,
	inventory shared.Inventory,
	cfg config.ReservationConfig,
) ReservationQueries {
	return &reservationQueriesImpl{
		repo:          repo,
		notifications: notifications,
		inventory:     inventory,
		cfg:           cfg,
	}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID, actor user.Actor) (*ReservationView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrReservationNotFound)
		}
		return nil, err
	}
	if !actor.CanAccess(view.CustomerUsername) {
		return nil, errs.ErrForbidden
	}

	q.enrich(ctx, []*ReservationView{view})
	return view, nil
}

func (q *reservationQueriesImpl) List(ctx context.Context, filters ListFilters, page Page) (*ReservationPage, error) {
	page = q.normalizePage(page)

	total, err := q.repo.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	offset := (page.Number - 1) * page.Size
	items, err := q.repo.List(ctx, filters, int32(page.Size), int32(offset)) // #nosec G115 -- bounded by MaxPageSize
	if err != nil {
		return nil, err
	}

	q.enrich(ctx, items)

	return &ReservationPage{
		Items:      items,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages(total, page.Size),
	}, nil
}

// ListMine does not expire anything by itself; callers run the overdue sweep first.
func (q *reservationQueriesImpl) ListMine(ctx context.Context, actor user.Actor) ([]*ReservationView, error) {
	items, err := q.repo.ListByCustomer(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	q.enrich(ctx, items)
	return items, nil
}

func (q *reservationQueriesImpl) ReservedDeviceIDs(ctx context.Context) ([]string, error) {
	return q.repo.ReservedDeviceIDs(ctx)
}

func (q *reservationQueriesImpl) ListSyncFailures(ctx context.Context, limit int) ([]*NotificationJobView, error) {
	if limit <= 0 || limit > maxSyncFailureLimit {
		limit = maxSyncFailureLimit
	}
	status := shared.JobStatusFailed
	return q.notifications.ListJobs(ctx, shared.TopicInventoryMarkSold, &status, int32(limit)) // #nosec G115 -- bounded above
}

// enrich attaches live device details. A failed lookup leaves Device nil for that record only.
func (q *reservationQueriesImpl) enrich(ctx context.Context, items []*ReservationView) {
	if len(items) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(max(q.cfg.EnrichConcurrency, 1))

	for _, item := range items {
		g.Go(func() error {
			device, err := q.inventory.GetDevice(ctx, item.DeviceID)
			if err != nil {
				metrics.EnrichmentFailuresTotal.Inc()
				slog.WarnContext(ctx, "device enrichment failed",
					"reservation_id", item.ID.String(),
					"device_id", item.DeviceID,
					"error", err.Error())
				return nil
			}
			item.Device = DeviceViewFrom(device)
			return nil
		})
	}
	_ = g.Wait()
}

func (q *reservationQueriesImpl) normalizePage(p Page) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = q.cfg.DefaultPageSize
	}
	if q.cfg.MaxPageSize > 0 && p.Size > q.cfg.MaxPageSize {
		p.Size = q.cfg.MaxPageSize
	}
	if p.Size < 1 {
		p.Size = 10
	}
	return p
}

func totalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
