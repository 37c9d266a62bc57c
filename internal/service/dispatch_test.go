package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/queue"
)

func testDispatcher(store *memStore, listings *memListings, partners *memPartners, notifier *recordNotifier, adminChats []int64) *Dispatcher {
	d := NewDispatcher(store, listings, partners, notifier, 5*time.Minute, time.Second, adminChats)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return base }
	store.clock = d.now
	return d
}

func TestCreateAndDispatchSuccess(t *testing.T) {
	store := newMemStore()
	listings := &memListings{rows: map[uint64]model.Listing{
		7: {ID: 7, PartnerID: 3, Category: model.CategoryHotel, Title: "Grand Hotel", IsActive: true},
	}}
	partners := &memPartners{rows: map[uint64]model.Partner{
		3: {ID: 3, DisplayName: "Grand Hotel LLC", ChatID: 900, IsActive: true},
	}}
	notifier := &recordNotifier{}
	d := testDispatcher(store, listings, partners, notifier, nil)

	payload := json.RawMessage(`{"name":"Aziz","phone":"+998901234567","date_from":"2026-03-10","date_to":"2026-03-12","guests":2}`)
	res, err := d.CreateAndDispatch(context.Background(), 7, 555, payload)
	if err != nil {
		t.Fatalf("CreateAndDispatch: %v", err)
	}
	if !res.Delivered || res.Warning != "" {
		t.Fatalf("expected clean delivery, got delivered=%v warning=%q", res.Delivered, res.Warning)
	}
	b := res.Booking
	if b.Status != model.BookingStatusSent {
		t.Fatalf("status = %q, want %q", b.Status, model.BookingStatusSent)
	}
	wantExpiry := d.now().Add(d.Window()).Truncate(time.Second)
	if b.ExpiresAt == nil || !b.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expires_at = %v, want %v", b.ExpiresAt, wantExpiry)
	}
	if stored := store.get(b.ID); stored.Status != model.BookingStatusSent {
		t.Fatalf("stored status = %q, want sent", stored.Status)
	}

	reqs := notifier.byKind("partner_request")
	if len(reqs) != 1 {
		t.Fatalf("partner_request events = %d, want 1", len(reqs))
	}
	ev := reqs[0]
	if ev.ChatID != 900 || ev.BookingID != b.ID {
		t.Fatalf("event routed to chat=%d booking=%d", ev.ChatID, ev.BookingID)
	}
	if len(ev.Actions) != 2 || !strings.HasPrefix(ev.Actions[0].Data, "bk:ok:") || !strings.HasPrefix(ev.Actions[1].Data, "bk:no:") {
		t.Fatalf("unexpected actions: %+v", ev.Actions)
	}
	if !strings.Contains(ev.Text, "Grand Hotel") || !strings.Contains(ev.Text, "Check-in: 2026-03-10") {
		t.Fatalf("unexpected partner text:\n%s", ev.Text)
	}
}

func TestCreateAndDispatchListingErrors(t *testing.T) {
	store := newMemStore()
	listings := &memListings{rows: map[uint64]model.Listing{
		2: {ID: 2, PartnerID: 3, Category: model.CategoryGuide, Title: "Old Town Walk", IsActive: false},
	}}
	partners := &memPartners{rows: map[uint64]model.Partner{3: {ID: 3, ChatID: 1, IsActive: true}}}
	notifier := &recordNotifier{}
	d := testDispatcher(store, listings, partners, notifier, nil)

	cases := []struct {
		name      string
		listingID uint64
		want      error
	}{
		{"unknown listing", 99, ErrListingNotFound},
		{"inactive listing", 2, ErrListingInactive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.CreateAndDispatch(context.Background(), tc.listingID, 555, json.RawMessage(`{}`))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if store.count() != 0 {
		t.Fatalf("rejected requests must not persist bookings, have %d rows", store.count())
	}
	if len(notifier.sent()) != 0 {
		t.Fatalf("rejected requests must not notify, sent %d events", len(notifier.sent()))
	}
}

func TestCreateAndDispatchPartnerNotConnected(t *testing.T) {
	store := newMemStore()
	listings := &memListings{rows: map[uint64]model.Listing{
		7: {ID: 7, PartnerID: 3, Category: model.CategoryTaxi, Title: "Airport Transfer", IsActive: true},
	}}
	partners := &memPartners{rows: map[uint64]model.Partner{
		3: {ID: 3, DisplayName: "City Cabs", ChatID: 0, IsActive: true},
	}}
	notifier := &recordNotifier{}
	d := testDispatcher(store, listings, partners, notifier, []int64{-100, -200})

	res, err := d.CreateAndDispatch(context.Background(), 7, 555, json.RawMessage(`{}`))
	if !errors.Is(err, ErrPartnerUnavailable) {
		t.Fatalf("err = %v, want ErrPartnerUnavailable", err)
	}
	if res == nil || res.Booking == nil {
		t.Fatal("result must carry the persisted booking")
	}
	if stored := store.get(res.Booking.ID); stored == nil || stored.Status != model.BookingStatusNew {
		t.Fatalf("booking must be persisted in new, got %+v", stored)
	}
	alerts := notifier.byKind("admin_alert")
	if len(alerts) != 2 {
		t.Fatalf("admin alerts = %d, want one per admin chat", len(alerts))
	}
	if alerts[0].ChatID != -100 || alerts[1].ChatID != -200 {
		t.Fatalf("alerts routed to %d,%d", alerts[0].ChatID, alerts[1].ChatID)
	}
	if len(notifier.byKind("partner_request")) != 0 {
		t.Fatal("no partner notification must be attempted without a chat target")
	}
}

func TestCreateAndDispatchDeliveryFailure(t *testing.T) {
	store := newMemStore()
	listings := &memListings{rows: map[uint64]model.Listing{
		7: {ID: 7, PartnerID: 3, Category: model.CategoryPlace, Title: "Registan Tour", IsActive: true},
	}}
	partners := &memPartners{rows: map[uint64]model.Partner{
		3: {ID: 3, DisplayName: "Sights Co", ChatID: 900, IsActive: true},
	}}
	notifier := &recordNotifier{fail: func(ev queue.NotificationEvent) error {
		if ev.Kind == "partner_request" {
			return errors.New("broker unreachable")
		}
		return nil
	}}
	d := testDispatcher(store, listings, partners, notifier, []int64{-100})

	res, err := d.CreateAndDispatch(context.Background(), 7, 555, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("delivery failure must not be an error: %v", err)
	}
	if res.Delivered || res.Warning == "" {
		t.Fatalf("expected undelivered result with warning, got delivered=%v warning=%q", res.Delivered, res.Warning)
	}
	// The window must not start for a notification that never went out.
	if stored := store.get(res.Booking.ID); stored.Status != model.BookingStatusNew || stored.ExpiresAt != nil {
		t.Fatalf("booking must stay new without expiry, got status=%q expires=%v", stored.Status, stored.ExpiresAt)
	}
	if len(notifier.byKind("admin_alert")) != 1 {
		t.Fatal("admins must be alerted about the failed delivery")
	}
}
