// Package service implements the booking dispatch core: creating and
// routing booking requests to their owning partner, processing partner
// decisions, and reclaiming bookings whose decision window elapsed.  All
// cross-actor coordination is delegated to conditional updates in the
// booking store; the services here never hold in-process locks.
package service

import "errors"

// Input errors: the caller's request is invalid and no state was changed.
var (
	// ErrListingNotFound is returned when the requested listing id does
	// not exist.
	ErrListingNotFound = errors.New("listing not found")

	// ErrListingInactive is returned when the listing exists but is not
	// currently accepting bookings.
	ErrListingInactive = errors.New("listing inactive")

	// ErrUnauthorized is returned when the deciding actor is not the
	// partner the booking was dispatched to.
	ErrUnauthorized = errors.New("actor is not the booking's partner")
)

// Race/conflict errors: expected, non-fatal outcomes of legitimate
// concurrency.  Callers surface them as informational results, never as
// system faults.
var (
	// ErrAlreadyDecided is returned when the transition out of "sent"
	// already happened; the caller must not assume whether a partner or
	// the sweeper won.
	ErrAlreadyDecided = errors.New("booking already decided")

	// ErrAlreadyExpired is returned for a decision on a booking whose
	// window has closed but which the sweeper has not yet claimed, and
	// for decisions on bookings that were never successfully dispatched.
	ErrAlreadyExpired = errors.New("booking offer expired")
)

// ErrPartnerUnavailable is returned when the owning partner has never
// connected a chat target.  The booking is still persisted in status "new"
// so the request is not silently lost; the sweeper resolves it later.
var ErrPartnerUnavailable = errors.New("partner not reachable")
