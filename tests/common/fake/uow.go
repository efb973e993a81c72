//go:build unit || e2e

// Package fake holds an in-memory unit of work for use case tests.
package fake

import (
	"context"
	"slices"
	"sync"
	"time"

	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/infra"
	"apple-sales-reservations/internal/infra/dbq"
	"apple-sales-reservations/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Job struct {
	ID        uuid.UUID
	Kind      string
	Topic     string
	Payload   []byte
	RunAt     time.Time
	Status    string
	LastError *string
}

// Store keeps reservations and outbox jobs. Saves are conditional on the
// persisted status pair, like the SQL update.
type Store struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]reservation.Reservation
	jobs         []Job

	// BeforeSave runs inside Save before the state check, without the lock held.
	BeforeSave func(res *reservation.Reservation)

	FailCreateJob       error
	FailUpdateJobStatus error
}

func NewStore() *Store {
	return &Store{reservations: make(map[uuid.UUID]reservation.Reservation)}
}

// Put stores res as if it had been read from the database.
func (s *Store) Put(res *reservation.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res.MarkPersisted()
	s.reservations[res.ID()] = *res
}

func (s *Store) Get(id uuid.UUID) (*reservation.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return nil, false
	}
	return &res, true
}

func (s *Store) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.jobs)
}

func (s *Store) JobsByTopic(topic string) []Job {
	var out []Job
	for _, j := range s.Jobs() {
		if j.Topic == topic {
			out = append(out, j)
		}
	}
	return out
}

// UnitOfWork runs each Within against the store and undoes its writes on error.
type UnitOfWork struct {
	Store *Store
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{Store: store}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	tx := &fakeTx{store: u.Store, before: make(map[uuid.UUID]*reservation.Reservation)}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (u *UnitOfWork) WithDB(ctx context.Context, fn func(ctx context.Context, db dbq.DBTX) error) error {
	return fn(ctx, nil)
}

type fakeTx struct {
	store  *Store
	before map[uuid.UUID]*reservation.Reservation // nil value: row did not exist
	jobIDs []uuid.UUID
}

func (t *fakeTx) Reservations() shared.ReservationRepository {
	return &reservationRepo{tx: t}
}

func (t *fakeTx) Notifications() shared.NotificationRepository {
	return &notificationRepo{tx: t}
}

func (t *fakeTx) DB() dbq.DBTX {
	return nil
}

// touch records the pre-transaction row once. Caller holds the lock.
func (t *fakeTx) touch(id uuid.UUID) {
	if _, seen := t.before[id]; seen {
		return
	}
	if prev, ok := t.store.reservations[id]; ok {
		t.before[id] = &prev
		return
	}
	t.before[id] = nil
}

func (t *fakeTx) rollback() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, prev := range t.before {
		if prev == nil {
			delete(s.reservations, id)
			continue
		}
		s.reservations[id] = *prev
	}
	s.jobs = slices.DeleteFunc(s.jobs, func(j Job) bool {
		return slices.Contains(t.jobIDs, j.ID)
	})
}

type reservationRepo struct {
	tx *fakeTx
}

func (r *reservationRepo) Create(_ context.Context, _ dbq.DBTX, res *reservation.Reservation) (uuid.UUID, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reservations[res.ID()]; exists {
		return uuid.Nil, infra.WrapRepoErr("failed to create reservation", nil, infra.KindDuplicateKey)
	}
	r.tx.touch(res.ID())
	res.MarkPersisted()
	s.reservations[res.ID()] = *res
	return res.ID(), nil
}

func (r *reservationRepo) FindByID(_ context.Context, _ dbq.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return &res, nil
}

func (r *reservationRepo) Save(_ context.Context, _ dbq.DBTX, res *reservation.Reservation) error {
	s := r.tx.store
	if s.BeforeSave != nil {
		s.BeforeSave(res)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reservations[res.ID()]
	expectedStatus, expectedDeposit := res.PersistedState()
	if !ok || stored.Status() != expectedStatus || stored.Deposit().Status() != expectedDeposit {
		return infra.WrapRepoErr("reservation changed concurrently", nil, infra.KindConflict)
	}
	r.tx.touch(res.ID())
	res.MarkPersisted()
	s.reservations[res.ID()] = *res
	return nil
}

func (r *reservationRepo) FindOverdue(_ context.Context, _ dbq.DBTX, customerUsername string, now time.Time) ([]*reservation.Reservation, error) {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*reservation.Reservation
	for _, res := range s.reservations {
		if res.CustomerUsername() == customerUsername && res.IsOverdue(now) {
			out = append(out, &res)
		}
	}
	slices.SortFunc(out, func(a, b *reservation.Reservation) int {
		return a.Deposit().DueAt().Compare(b.Deposit().DueAt())
	})
	return out, nil
}

type notificationRepo struct {
	tx *fakeTx
}

func (n *notificationRepo) CreateJob(_ context.Context, _ dbq.DBTX, kind, topic string, payload []byte, runAt time.Time) (uuid.UUID, error) {
	s := n.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreateJob != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create notification job", s.FailCreateJob)
	}
	id := uuid.New()
	s.jobs = append(s.jobs, Job{
		ID:      id,
		Kind:    kind,
		Topic:   topic,
		Payload: payload,
		RunAt:   runAt,
		Status:  shared.JobStatusQueued,
	})
	n.tx.jobIDs = append(n.tx.jobIDs, id)
	return id, nil
}

func (n *notificationRepo) UpdateJobStatus(_ context.Context, _ dbq.DBTX, jobID uuid.UUID, status string, lastError *string) error {
	s := n.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdateJobStatus != nil {
		return infra.WrapRepoErr("failed to update notification job status", s.FailUpdateJobStatus)
	}
	for i := range s.jobs {
		if s.jobs[i].ID == jobID {
			s.jobs[i].Status = status
			s.jobs[i].LastError = lastError
			return nil
		}
	}
	return infra.WrapRepoErr("notification job not found", pgx.ErrNoRows, infra.KindNotFound)
}
