package service

import (
	"encoding/json"
	"fmt"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/queue"
)

// The chat frontend renders these texts verbatim, so they are kept short
// and field-per-line.  Payload fields are display-only here: the payload is
// opaque to this service and missing keys simply render as a dash.

func payloadField(payload json.RawMessage, key string) string {
	var m map[string]interface{}
	if err := json.Unmarshal(payload, &m); err != nil {
		return "—"
	}
	v, ok := m[key]
	if !ok || v == nil {
		return "—"
	}
	s := fmt.Sprint(v)
	if s == "" {
		return "—"
	}
	return s
}

// partnerRequestText formats the partner-facing alert for a new booking.
// Each category leads with the fields its partners triage on.
func partnerRequestText(b *model.Booking, l *model.Listing) string {
	head := fmt.Sprintf("New booking request #%d — %s\n", b.ID, l.Title)
	common := fmt.Sprintf("Name: %s\nPhone: %s\n",
		payloadField(b.Payload, "name"), payloadField(b.Payload, "phone"))

	switch l.Category {
	case model.CategoryHotel:
		return head + common + fmt.Sprintf("Check-in: %s\nCheck-out: %s\nGuests: %s\nRoom: %s\nNote: %s",
			payloadField(b.Payload, "date_from"), payloadField(b.Payload, "date_to"),
			payloadField(b.Payload, "guests"), payloadField(b.Payload, "room_type"),
			payloadField(b.Payload, "note"))
	case model.CategoryGuide:
		return head + common + fmt.Sprintf("Date: %s\nRoute: %s\nPeople: %s\nNote: %s",
			payloadField(b.Payload, "date"), payloadField(b.Payload, "route"),
			payloadField(b.Payload, "people_count"), payloadField(b.Payload, "note"))
	case model.CategoryTaxi:
		return head + common + fmt.Sprintf("From: %s\nTo: %s\nTime: %s\nPassengers: %s\nNote: %s",
			payloadField(b.Payload, "pickup_location"), payloadField(b.Payload, "dropoff_location"),
			payloadField(b.Payload, "pickup_time"), payloadField(b.Payload, "passengers"),
			payloadField(b.Payload, "note"))
	default:
		return head + common + fmt.Sprintf("Date: %s\nNote: %s",
			payloadField(b.Payload, "date"), payloadField(b.Payload, "note"))
	}
}

// partnerRequestActions builds the accept/reject affordances attached to a
// partner alert.  The callback data format is stable: the chat frontend
// parses "bk:ok:<id>" / "bk:no:<id>" and calls the decision endpoint.
func partnerRequestActions(bookingID uint64) []queue.Action {
	return []queue.Action{
		{Label: "Accept", Data: fmt.Sprintf("bk:ok:%d", bookingID)},
		{Label: "Reject", Data: fmt.Sprintf("bk:no:%d", bookingID)},
	}
}

func outcomeText(b *model.Booking, listingTitle string, status model.BookingStatus) string {
	if listingTitle == "" {
		listingTitle = "your request"
	}
	switch status {
	case model.BookingStatusAccepted:
		return fmt.Sprintf("Your booking for %s was accepted. The partner will contact you shortly.", listingTitle)
	case model.BookingStatusRejected:
		return fmt.Sprintf("Your booking for %s was rejected. Please try another listing or a different date.", listingTitle)
	default: // timeout
		return fmt.Sprintf("No response for your booking for %s within the allotted time. Please try again later or pick another listing.", listingTitle)
	}
}

func adminAlertText(bookingID, partnerID uint64, partnerName, reason string) string {
	return fmt.Sprintf("Booking #%d could not be delivered.\nPartner: %s (#%d)\nReason: %s\nPlease contact the customer.",
		bookingID, partnerName, partnerID, reason)
}
