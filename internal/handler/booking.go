package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/partner-booking/internal/middleware"
	"github.com/iliyamo/partner-booking/internal/repository"
	"github.com/iliyamo/partner-booking/internal/service"
)

// BookingHandler exposes booking submission and lookup on behalf of
// requesters.  All methods assume JWT authentication and role validation
// has already been performed by middleware.
type BookingHandler struct {
	Dispatch *service.Dispatcher  // creates and routes bookings
	Store    service.BookingStore // read access for listing/lookup
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must be
// non-nil.
func NewBookingHandler(dispatch *service.Dispatcher, store service.BookingStore) *BookingHandler {
	if dispatch == nil || store == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Dispatch: dispatch, Store: store}
}

// CreateBooking handles POST /v1/bookings.  The request body carries the
// listing id and an opaque payload that is forwarded to the partner
// untouched.  Responses:
//   - 201 Created with the booking when dispatch succeeded; a "warning"
//     field is present when the partner notification could not be
//     delivered (the booking still resolves via the sweeper).
//   - 202 Accepted when the partner has never connected: the booking is
//     recorded but nobody was notified.
//   - 404/409 for unknown/inactive listings, 400 for a malformed body.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	requester, err := requesterChatID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ListingID uint64          `json:"listing_id"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := c.Bind(&body); err != nil || body.ListingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "listing_id is required"})
	}
	if len(body.Payload) == 0 {
		body.Payload = json.RawMessage("{}")
	}

	res, err := h.Dispatch.CreateAndDispatch(c.Request().Context(), body.ListingID, requester, body.Payload)
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "listing not found"})
	case errors.Is(err, service.ErrListingInactive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "listing is not accepting bookings"})
	case errors.Is(err, service.ErrPartnerUnavailable):
		// The booking was persisted; the requester is told the team will
		// follow up rather than being bounced.
		return c.JSON(http.StatusAccepted, echo.Map{
			"item":    bookingJSON(res.Booking),
			"warning": "partner is not connected yet; our team will contact you",
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	resp := echo.Map{"item": bookingJSON(res.Booking)}
	if res.Warning != "" {
		resp["warning"] = res.Warning
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListMyBookings handles GET /v1/bookings.  It returns the caller's most
// recent bookings, newest first.  The optional ?limit query parameter
// caps the page size (default 10, max 50).
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	requester, err := requesterChatID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 50 {
		limit = 50
	}
	items, err := h.Store.ListByRequester(c.Request().Context(), requester, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	out := make([]echo.Map, 0, len(items))
	for i := range items {
		out = append(out, bookingJSON(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetBooking handles GET /v1/bookings/:id.  Requesters may view their own
// bookings; partners may view bookings dispatched to them.  Anything else
// is reported as not found so booking ids cannot be probed.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Store.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}

	role, _ := c.Get("role").(string)
	sub, err := subjectID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	owned := (role == middleware.RoleUser && b.RequesterID == int64(sub)) ||
		(role == middleware.RolePartner && b.PartnerID == sub)
	if !owned {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": bookingJSON(b)})
}
