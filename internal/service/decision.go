package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/queue"
)

// Decision is a partner's verdict on a dispatched booking.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Status maps the decision to the terminal booking status it produces.
func (d Decision) Status() (model.BookingStatus, bool) {
	switch d {
	case DecisionAccept:
		return model.BookingStatusAccepted, true
	case DecisionReject:
		return model.BookingStatusRejected, true
	}
	return "", false
}

// DecisionService processes partner accept/reject actions.  The transition
// out of "sent" is a single conditional update in the store, so a decision
// racing a sweeper run (or a duplicate decision) resolves to exactly one
// winner; the loser learns it lost through zero affected rows, never
// through an error implying corruption.
type DecisionService struct {
	bookings BookingStore
	listings ListingDirectory
	notifier Notifier

	notifyTimeout time.Duration
	now           func() time.Time
}

// NewDecisionService constructs a DecisionService.
func NewDecisionService(bookings BookingStore, listings ListingDirectory, notifier Notifier, notifyTimeout time.Duration) *DecisionService {
	if bookings == nil || listings == nil || notifier == nil {
		panic("nil dependency passed to NewDecisionService")
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 3 * time.Second
	}
	return &DecisionService{
		bookings:      bookings,
		listings:      listings,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

// Resolve applies a partner decision to a booking.  actorPartnerID must be
// the partner the booking was dispatched to (the binding recorded at
// dispatch time, so a mid-flight listing reassignment does not transfer
// pending bookings).  On success the requester is notified best-effort;
// the committed status change is the authoritative outcome either way.
//
// Error cases: the store's not-found error, ErrUnauthorized, ErrAlreadyDecided
// (partner or sweeper already resolved it), ErrAlreadyExpired (window
// closed but not yet swept, or the booking was never dispatched).
func (s *DecisionService) Resolve(ctx context.Context, bookingID uint64, actorPartnerID uint64, dec Decision) (*model.Booking, error) {
	status, ok := dec.Status()
	if !ok {
		return nil, fmt.Errorf("unknown decision %q", dec)
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PartnerID != actorPartnerID {
		return nil, ErrUnauthorized
	}

	now := s.now().UTC()
	won, err := s.bookings.Decide(ctx, bookingID, status, now)
	if err != nil {
		return nil, fmt.Errorf("decide booking %d: %w", bookingID, err)
	}
	if !won {
		// Zero rows affected: re-read to tell a lost race apart from a
		// late decision on an expired-but-unswept booking.
		cur, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if cur.Status == model.BookingStatusSent || cur.Status == model.BookingStatusNew {
			return nil, ErrAlreadyExpired
		}
		return nil, ErrAlreadyDecided
	}

	b.Status = status
	log.Printf("decision: booking %d -> %s by partner %d", bookingID, status, actorPartnerID)

	title := ""
	if l, err := s.listings.GetByID(ctx, b.ListingID); err == nil {
		title = l.Title
	}
	ev := queue.NotificationEvent{
		ChatID:    b.RequesterID,
		Kind:      "booking_" + string(status),
		BookingID: b.ID,
		Text:      outcomeText(b, title, status),
	}
	if err := notifyDetached(ctx, s.notifier, s.notifyTimeout, ev); err != nil {
		log.Printf("decision: notify requester %d for booking %d failed: %v", b.RequesterID, b.ID, err)
	}
	return b, nil
}
