//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"arequita-backend/internal/domain/agenda"
	"arequita-backend/internal/domain/camping"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeTxRunner serializes transactions with a mutex, standing in for the
// row locks the real runner relies on.
type fakeTxRunner struct {
	mu sync.Mutex
}

func (r *fakeTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, tx shared.DBTX) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, nil)
}

type fakeServiceRepo struct {
	mu       sync.Mutex
	services map[uuid.UUID]*camping.Service
	updates  int
}

func newFakeServiceRepo(services ...*camping.Service) *fakeServiceRepo {
	m := make(map[uuid.UUID]*camping.Service, len(services))
	for _, s := range services {
		m[s.ID()] = s
	}
	return &fakeServiceRepo{services: m}
}

func (f *fakeServiceRepo) FindByID(_ context.Context, _ shared.DBTX, id uuid.UUID) (*camping.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.services[id], nil
}

func (f *fakeServiceRepo) FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*camping.Service, error) {
	return f.FindByID(ctx, tx, id)
}

func (f *fakeServiceRepo) UpdateAvailableUnits(_ context.Context, _ shared.DBTX, _ uuid.UUID, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return nil
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*camping.PreReservation
	codes   map[string]bool
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{
		records: make(map[uuid.UUID]*camping.PreReservation),
		codes:   make(map[string]bool),
	}
}

func (f *fakeRecordRepo) Create(_ context.Context, _ shared.DBTX, p *camping.PreReservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[p.ID()] = p
	f.codes[p.Code()] = true
	return nil
}

func (f *fakeRecordRepo) FindByID(_ context.Context, _ shared.DBTX, id uuid.UUID) (*camping.PreReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id], nil
}

func (f *fakeRecordRepo) FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*camping.PreReservation, error) {
	return f.FindByID(ctx, tx, id)
}

func (f *fakeRecordRepo) FindByConfirmationToken(_ context.Context, _ shared.DBTX, token uuid.UUID) (*camping.PreReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ConfirmationToken() == token {
			return rec, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, _ shared.DBTX, _ *camping.PreReservation) error {
	return nil
}

func (f *fakeRecordRepo) CodeExists(_ context.Context, _ shared.DBTX, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[code], nil
}

func (f *fakeRecordRepo) ExpirePendingBefore(_ context.Context, _ shared.DBTX, now time.Time, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, rec := range f.records {
		if rec.Status() == camping.StatusPending && rec.HasExpired(now) {
			if err := rec.MarkExpired(now); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func (f *fakeRecordRepo) FindActiveFinishedForUpdate(_ context.Context, _ shared.DBTX, today time.Time) ([]*camping.PreReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*camping.PreReservation
	for _, rec := range f.records {
		if rec.Status() == camping.StatusActive && rec.Stay().FinishedBy(today) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*agenda.Slot
}

func newFakeSlotRepo(slots ...*agenda.Slot) *fakeSlotRepo {
	m := make(map[uuid.UUID]*agenda.Slot, len(slots))
	for _, s := range slots {
		m[s.ID()] = s
	}
	return &fakeSlotRepo{slots: m}
}

func (f *fakeSlotRepo) Create(_ context.Context, _ shared.DBTX, s *agenda.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[s.ID()] = s
	return nil
}

func (f *fakeSlotRepo) FindByID(_ context.Context, _ shared.DBTX, id uuid.UUID) (*agenda.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[id], nil
}

func (f *fakeSlotRepo) FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*agenda.Slot, error) {
	return f.FindByID(ctx, tx, id)
}

func (f *fakeSlotRepo) UpdateCurrentBookings(_ context.Context, _ shared.DBTX, _ uuid.UUID, _ int) error {
	return nil
}

func (f *fakeSlotRepo) ExistsAt(_ context.Context, _ shared.DBTX, procedureID, localityID uuid.UUID, date time.Time, timeOfDay string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slots {
		if s.ProcedureID() == procedureID && s.LocalityID() == localityID &&
			s.Date().Equal(date) && s.TimeOfDay() == timeOfDay {
			return true, nil
		}
	}
	return false, nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*agenda.Reservation
	codes        map[string]bool
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: make(map[uuid.UUID]*agenda.Reservation),
		codes:        make(map[string]bool),
	}
}

func (f *fakeReservationRepo) Create(_ context.Context, _ shared.DBTX, r *agenda.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reservations[r.ID()] = r
	f.codes[r.Code()] = true
	return nil
}

func (f *fakeReservationRepo) FindByID(_ context.Context, _ shared.DBTX, id uuid.UUID) (*agenda.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reservations[id], nil
}

func (f *fakeReservationRepo) FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*agenda.Reservation, error) {
	return f.FindByID(ctx, tx, id)
}

func (f *fakeReservationRepo) FindByCancellationToken(_ context.Context, _ shared.DBTX, token uuid.UUID) (*agenda.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.CancellationToken() == token {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) Update(_ context.Context, _ shared.DBTX, _ *agenda.Reservation) error {
	return nil
}

func (f *fakeReservationRepo) CodeExists(_ context.Context, _ shared.DBTX, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[code], nil
}

type sentMail struct {
	Recipient string
	Template  string
	Data      map[string]any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeNotifier) Send(_ context.Context, recipient, template string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{Recipient: recipient, Template: template, Data: data})
}

func (f *fakeNotifier) Sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMail, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInvalidator) Invalidate(_ context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func (f *fakeInvalidator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type auditEntry struct {
	Action  string
	Details string
	Actor   string
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (f *fakeAudit) Record(_ context.Context, action, details, actor string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, auditEntry{Action: action, Details: details, Actor: actor})
}

func (f *fakeAudit) Entries() []auditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]auditEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

func newTestService(totalUnits, availableUnits int) *camping.Service {
	svc, err := camping.NewService(
		uuid.New(), "parcela-estandar", "parcela",
		camping.LocalizedText{ES: "Parcela estándar", EN: "Standard pitch", PT: "Parcela padrão"},
		camping.LocalizedText{ES: "Parcela con parrillero"},
		950, "UYU",
		6, totalUnits, availableUnits,
		false, false, true,
	)
	if err != nil {
		panic(err)
	}
	return svc
}
