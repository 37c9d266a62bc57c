package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/partner-booking/internal/model"
)

// subjectID extracts the JWT subject stored in the context by the auth
// middleware and converts it to uint64.  JSON numeric claims decode as
// float64, but other shapes are tolerated for robustness.
func subjectID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// requesterChatID returns the authenticated user's chat id (the JWT
// subject for USER tokens).
func requesterChatID(c echo.Context) (int64, error) {
	id, err := subjectID(c)
	if err != nil {
		return 0, err
	}
	return int64(id), nil
}

// partnerID returns the authenticated partner's id (the JWT subject for
// PARTNER tokens).
func partnerID(c echo.Context) (uint64, error) { return subjectID(c) }

// bookingJSON renders a booking for API responses.  The payload is echoed
// back verbatim since it is opaque to this service.
func bookingJSON(b *model.Booking) echo.Map {
	out := echo.Map{
		"id":         b.ID,
		"listing_id": b.ListingID,
		"status":     string(b.Status),
		"payload":    b.Payload,
		"created_at": b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.ExpiresAt != nil {
		out["expires_at"] = b.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return out
}
