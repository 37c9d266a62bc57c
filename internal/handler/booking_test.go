package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/iliyamo/partner-booking/internal/middleware"
	"github.com/iliyamo/partner-booking/internal/model"
)

func TestCreateBooking(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"created", `{"listing_id":7,"payload":{"name":"Aziz"}}`, http.StatusCreated},
		{"missing listing_id", `{"payload":{}}`, http.StatusBadRequest},
		{"unknown listing", `{"listing_id":99}`, http.StatusNotFound},
		{"inactive listing", `{"listing_id":8}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, store := newDispatchFixture()
			h := NewBookingHandler(d, store)
			c, rec := request(http.MethodPost, "/v1/bookings", tc.body, float64(555), middleware.RoleUser)

			if err := h.CreateBooking(c); err != nil {
				t.Fatalf("CreateBooking: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusCreated {
				item, _ := decodeBody(rec)["item"].(map[string]interface{})
				if item == nil {
					t.Fatal("response missing item")
				}
				if item["status"] != "sent" {
					t.Fatalf("item.status = %v, want sent", item["status"])
				}
				if _, ok := item["expires_at"].(string); !ok {
					t.Fatal("dispatched booking must expose expires_at")
				}
			}
		})
	}
}

func TestCreateBookingPartnerNotConnected(t *testing.T) {
	store := newFakeStore()
	listings := &fakeListings{rows: map[uint64]model.Listing{
		7: {ID: 7, PartnerID: 3, Category: model.CategoryGuide, Title: "Old Town Walk", IsActive: true},
	}}
	partners := &fakePartners{rows: map[uint64]model.Partner{
		3: {ID: 3, DisplayName: "Guides Co", ChatID: 0, IsActive: true},
	}}
	d := newDispatcherOver(store, listings, partners)
	h := NewBookingHandler(d, store)

	c, rec := request(http.MethodPost, "/v1/bookings", `{"listing_id":7}`, float64(555), middleware.RoleUser)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(rec)
	if body["warning"] == nil {
		t.Fatal("202 response must carry a warning")
	}
	item, _ := body["item"].(map[string]interface{})
	if item == nil || item["status"] != "new" {
		t.Fatalf("item = %v, want persisted booking in new", item)
	}
}

func TestGetBookingOwnership(t *testing.T) {
	d, store := newDispatchFixture()
	h := NewBookingHandler(d, store)
	exp := time.Now().UTC().Add(time.Minute)
	store.put(&model.Booking{
		ID: 11, ListingID: 7, RequesterID: 555, PartnerID: 3,
		Status: model.BookingStatusSent, ExpiresAt: &exp, CreatedAt: time.Now().UTC(),
	})

	cases := []struct {
		name       string
		id         string
		sub        interface{}
		role       string
		wantStatus int
	}{
		{"requester sees own", "11", float64(555), middleware.RoleUser, http.StatusOK},
		{"partner sees dispatched", "11", float64(3), middleware.RolePartner, http.StatusOK},
		{"foreign requester hidden", "11", float64(777), middleware.RoleUser, http.StatusNotFound},
		{"foreign partner hidden", "11", float64(8), middleware.RolePartner, http.StatusNotFound},
		{"unknown id", "99", float64(555), middleware.RoleUser, http.StatusNotFound},
		{"malformed id", "abc", float64(555), middleware.RoleUser, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := request(http.MethodGet, "/v1/bookings/"+tc.id, "", tc.sub, tc.role)
			c.SetPath("/v1/bookings/:id")
			c.SetParamNames("id")
			c.SetParamValues(tc.id)
			if err := h.GetBooking(c); err != nil {
				t.Fatalf("GetBooking: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestListMyBookings(t *testing.T) {
	d, store := newDispatchFixture()
	h := NewBookingHandler(d, store)
	now := time.Now().UTC()
	store.put(&model.Booking{ID: 1, ListingID: 7, RequesterID: 555, PartnerID: 3, Status: model.BookingStatusTimeout, CreatedAt: now})
	store.put(&model.Booking{ID: 2, ListingID: 7, RequesterID: 555, PartnerID: 3, Status: model.BookingStatusNew, CreatedAt: now})
	store.put(&model.Booking{ID: 3, ListingID: 7, RequesterID: 777, PartnerID: 3, Status: model.BookingStatusNew, CreatedAt: now})

	c, rec := request(http.MethodGet, "/v1/bookings", "", float64(555), middleware.RoleUser)
	if err := h.ListMyBookings(c); err != nil {
		t.Fatalf("ListMyBookings: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	items, _ := decodeBody(rec)["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("items = %d, want only the caller's 2", len(items))
	}
}
