package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/queue"
	"github.com/iliyamo/partner-booking/internal/repository"
)

// memStore is an in-memory BookingStore that mirrors the conditional-update
// semantics of the SQL repository: every transition checks the current state
// under a single lock, so concurrent callers see the same single-winner
// behavior the database gives the real services.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Booking

	clock func() time.Time
}

func newMemStore() *memStore {
	return &memStore{rows: map[uint64]*model.Booking{}, clock: func() time.Time { return time.Now().UTC() }}
}

func copyBooking(b *model.Booking) *model.Booking {
	cp := *b
	if b.ExpiresAt != nil {
		t := *b.ExpiresAt
		cp.ExpiresAt = &t
	}
	return &cp
}

// put seeds a booking directly, bypassing Create.
func (m *memStore) put(b *model.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		m.nextID++
		b.ID = m.nextID
	} else if b.ID > m.nextID {
		m.nextID = b.ID
	}
	m.rows[b.ID] = copyBooking(b)
}

func (m *memStore) get(id uint64) *model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.rows[id]; ok {
		return copyBooking(b)
	}
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memStore) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	b.Status = model.BookingStatusNew
	if b.CreatedAt.IsZero() {
		b.CreatedAt = m.clock()
	}
	m.rows[b.ID] = copyBooking(b)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

func (m *memStore) MarkSent(_ context.Context, id uint64, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.Status != model.BookingStatusNew {
		return false, nil
	}
	b.Status = model.BookingStatusSent
	t := expiresAt
	b.ExpiresAt = &t
	return true, nil
}

func (m *memStore) Decide(_ context.Context, id uint64, status model.BookingStatus, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.Status != model.BookingStatusSent || b.ExpiresAt == nil || !b.ExpiresAt.After(now) {
		return false, nil
	}
	b.Status = status
	return true, nil
}

func expiredEligible(b *model.Booking, now, staleBefore time.Time) bool {
	if b.Status == model.BookingStatusSent && b.ExpiresAt != nil && !b.ExpiresAt.After(now) {
		return true
	}
	return b.Status == model.BookingStatusNew && !b.CreatedAt.After(staleBefore)
}

func (m *memStore) ListExpired(_ context.Context, now, staleBefore time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.rows {
		if expiredEligible(b, now, staleBefore) {
			out = append(out, *copyBooking(b))
		}
	}
	return out, nil
}

func (m *memStore) ClaimTimeout(_ context.Context, id uint64, now, staleBefore time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || !expiredEligible(b, now, staleBefore) {
		return false, nil
	}
	b.Status = model.BookingStatusTimeout
	return true, nil
}

func (m *memStore) ListByRequester(_ context.Context, requesterID int64, limit int) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.rows {
		if b.RequesterID == requesterID {
			out = append(out, *copyBooking(b))
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memListings is an in-memory ListingDirectory.
type memListings struct {
	rows map[uint64]model.Listing
}

func (m *memListings) GetByID(_ context.Context, id uint64) (*model.Listing, error) {
	l, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	return &l, nil
}

// memPartners is an in-memory PartnerDirectory.
type memPartners struct {
	rows map[uint64]model.Partner
}

func (m *memPartners) GetByID(_ context.Context, id uint64) (*model.Partner, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrPartnerNotFound
	}
	return &p, nil
}

// recordNotifier records every event it is asked to send.  The optional
// fail hook lets tests inject per-event delivery failures.
type recordNotifier struct {
	mu     sync.Mutex
	events []queue.NotificationEvent
	fail   func(ev queue.NotificationEvent) error
}

func (n *recordNotifier) Send(_ context.Context, ev queue.NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		if err := n.fail(ev); err != nil {
			return err
		}
	}
	n.events = append(n.events, ev)
	return nil
}

func (n *recordNotifier) sent() []queue.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]queue.NotificationEvent, len(n.events))
	copy(out, n.events)
	return out
}

// byKind filters recorded events by kind.
func (n *recordNotifier) byKind(kind string) []queue.NotificationEvent {
	var out []queue.NotificationEvent
	for _, ev := range n.sent() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
