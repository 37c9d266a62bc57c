package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/queue"
	"github.com/iliyamo/partner-booking/internal/repository"
	"github.com/iliyamo/partner-booking/internal/service"
)

// fakeStore implements service.BookingStore in memory with the same
// conditional-update semantics as the SQL repository.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Booking
}

func newFakeStore() *fakeStore { return &fakeStore{rows: map[uint64]*model.Booking{}} }

func (f *fakeStore) put(b *model.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID > f.nextID {
		f.nextID = b.ID
	}
	cp := *b
	f.rows[b.ID] = &cp
}

func (f *fakeStore) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	b.Status = model.BookingStatusNew
	b.CreatedAt = time.Now().UTC()
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) MarkSent(_ context.Context, id uint64, expiresAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok || b.Status != model.BookingStatusNew {
		return false, nil
	}
	b.Status = model.BookingStatusSent
	b.ExpiresAt = &expiresAt
	return true, nil
}

func (f *fakeStore) Decide(_ context.Context, id uint64, status model.BookingStatus, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok || b.Status != model.BookingStatusSent || b.ExpiresAt == nil || !b.ExpiresAt.After(now) {
		return false, nil
	}
	b.Status = status
	return true, nil
}

func (f *fakeStore) ListExpired(_ context.Context, now, staleBefore time.Time) ([]model.Booking, error) {
	return nil, nil
}

func (f *fakeStore) ClaimTimeout(_ context.Context, id uint64, now, staleBefore time.Time) (bool, error) {
	return false, nil
}

func (f *fakeStore) ListByRequester(_ context.Context, requesterID int64, limit int) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.rows {
		if b.RequesterID == requesterID {
			out = append(out, *b)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeListings struct{ rows map[uint64]model.Listing }

func (f *fakeListings) GetByID(_ context.Context, id uint64) (*model.Listing, error) {
	l, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	return &l, nil
}

type fakePartners struct{ rows map[uint64]model.Partner }

func (f *fakePartners) GetByID(_ context.Context, id uint64) (*model.Partner, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrPartnerNotFound
	}
	return &p, nil
}

type nopNotifier struct{}

func (nopNotifier) Send(context.Context, queue.NotificationEvent) error { return nil }

func newDispatcherOver(store *fakeStore, listings *fakeListings, partners *fakePartners) *service.Dispatcher {
	return service.NewDispatcher(store, listings, partners, nopNotifier{}, 5*time.Minute, time.Second, nil)
}

// newDispatchFixture assembles a Dispatcher over one active listing (id 7)
// owned by a connected partner (id 3, chat 900).
func newDispatchFixture() (*service.Dispatcher, *fakeStore) {
	store := newFakeStore()
	listings := &fakeListings{rows: map[uint64]model.Listing{
		7: {ID: 7, PartnerID: 3, Category: model.CategoryHotel, Title: "Grand Hotel", IsActive: true},
		8: {ID: 8, PartnerID: 3, Category: model.CategoryTaxi, Title: "Airport Transfer", IsActive: false},
	}}
	partners := &fakePartners{rows: map[uint64]model.Partner{
		3: {ID: 3, DisplayName: "Grand Hotel LLC", ChatID: 900, IsActive: true},
	}}
	return newDispatcherOver(store, listings, partners), store
}

// request builds an echo context for a handler-level test, bypassing the
// router and auth middleware the same way the middleware would have left it.
func request(method, target, body string, sub interface{}, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sub != nil {
		c.Set("user_id", sub)
	}
	if role != "" {
		c.Set("role", role)
	}
	return c, rec
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]interface{} {
	var m map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &m)
	return m
}
