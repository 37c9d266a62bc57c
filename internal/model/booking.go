package model

import (
	"encoding/json"
	"time"
)

// BookingStatus enumerates the lifecycle states of a booking.  Transitions
// only ever move forward: new→sent when the partner notification goes out,
// then exactly one of sent→accepted, sent→rejected or sent→timeout.  The
// storage layer enforces single-winner semantics with conditional updates,
// so no state is ever re-entered.
type BookingStatus string

const (
	BookingStatusNew      BookingStatus = "new"      // persisted, partner not yet notified
	BookingStatusSent     BookingStatus = "sent"     // partner notified, decision window running
	BookingStatusAccepted BookingStatus = "accepted" // partner accepted within the window
	BookingStatusRejected BookingStatus = "rejected" // partner rejected within the window
	BookingStatusTimeout  BookingStatus = "timeout"  // window elapsed without a decision
)

// Terminal reports whether no further transition is permitted from s.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusAccepted, BookingStatusRejected, BookingStatusTimeout:
		return true
	}
	return false
}

// Booking is a single user request against one listing, tracked through a
// bounded decision window.  The partner identity and chat target are bound
// at dispatch time and never re-resolved, so a listing reassignment while a
// booking is in flight does not redirect the pending request.
//
// Fields:
//  ID            – primary key identifier, immutable.
//  ListingID     – listing being booked, immutable.
//  RequesterID   – chat target of the requesting user, immutable.
//  PartnerID     – owning partner resolved at dispatch time.
//  PartnerChatID – partner's chat target at dispatch time (0 = not connected).
//  Payload       – opaque requester-supplied data (name, phone, dates);
//                  never validated or interpreted by this service.
//  Status        – current lifecycle state.
//  ExpiresAt     – end of the decision window; set on new→sent, nil while new.
//  CreatedAt     – creation timestamp, immutable.
type Booking struct {
	ID            uint64          // bookings.id
	ListingID     uint64          // bookings.listing_id
	RequesterID   int64           // bookings.requester_id
	PartnerID     uint64          // bookings.partner_id
	PartnerChatID int64           // bookings.partner_chat_id
	Payload       json.RawMessage // bookings.payload
	Status        BookingStatus   // bookings.status
	ExpiresAt     *time.Time      // bookings.expires_at (nullable)
	CreatedAt     time.Time       // bookings.created_at
}
