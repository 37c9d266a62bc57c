package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/queue"
)

// Dispatcher creates bookings and routes them to their owning partner.
// The booking row is always persisted first; the partner notification is a
// best-effort side effect, and only a confirmed send starts the decision
// window (new→sent).  A booking whose notification never went out stays in
// "new" and is resolved by the sweeper, so no request is ever lost.
type Dispatcher struct {
	bookings BookingStore
	listings ListingDirectory
	partners PartnerDirectory
	notifier Notifier

	window        time.Duration // decision window, default 5 minutes
	notifyTimeout time.Duration
	adminChats    []int64 // operations chat targets alerted on delivery failures

	now func() time.Time
}

// NewDispatcher constructs a Dispatcher.  window and notifyTimeout fall
// back to 5 minutes and 3 seconds when non-positive.
func NewDispatcher(bookings BookingStore, listings ListingDirectory, partners PartnerDirectory, notifier Notifier, window, notifyTimeout time.Duration, adminChats []int64) *Dispatcher {
	if bookings == nil || listings == nil || partners == nil || notifier == nil {
		panic("nil dependency passed to NewDispatcher")
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 3 * time.Second
	}
	return &Dispatcher{
		bookings:      bookings,
		listings:      listings,
		partners:      partners,
		notifier:      notifier,
		window:        window,
		notifyTimeout: notifyTimeout,
		adminChats:    adminChats,
		now:           time.Now,
	}
}

// Window returns the configured decision window.
func (d *Dispatcher) Window() time.Duration { return d.window }

// DispatchResult reports the outcome of CreateAndDispatch.  Booking is
// always set once the row was persisted, even when an error is returned
// alongside it (ErrPartnerUnavailable).  Warning carries a non-fatal
// delivery diagnostic surfaced to the caller.
type DispatchResult struct {
	Booking   *model.Booking
	Delivered bool
	Warning   string
}

// CreateAndDispatch validates the listing, binds the owning partner,
// persists the booking and attempts exactly one partner notification.
// On a confirmed send it transitions new→sent with expires_at = now+window
// as a single conditional update.
//
// Error cases:
//   - ErrListingNotFound / ErrListingInactive: nothing persisted.
//   - ErrPartnerUnavailable: booking persisted in "new", result carries it.
//   - delivery failure: no error; booking stays "new", Warning is set and
//     the admin chats are alerted.
func (d *Dispatcher) CreateAndDispatch(ctx context.Context, listingID uint64, requesterID int64, payload json.RawMessage) (*DispatchResult, error) {
	listing, err := d.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	if !listing.IsActive {
		return nil, ErrListingInactive
	}

	partner, err := d.partners.GetByID(ctx, listing.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("resolve partner for listing %d: %w", listingID, err)
	}

	b := &model.Booking{
		ListingID:     listing.ID,
		RequesterID:   requesterID,
		PartnerID:     partner.ID,
		PartnerChatID: partner.ChatID,
		Payload:       payload,
	}
	if err := d.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	if !partner.Connected() {
		log.Printf("dispatch: partner %q not connected, booking %d kept in %q", partner.DisplayName, b.ID, b.Status)
		d.alertAdmins(ctx, b.ID, partner, "partner has not connected a chat account")
		return &DispatchResult{Booking: b}, ErrPartnerUnavailable
	}

	ev := queue.NotificationEvent{
		ChatID:    partner.ChatID,
		Kind:      "partner_request",
		BookingID: b.ID,
		Text:      partnerRequestText(b, listing),
		Actions:   partnerRequestActions(b.ID),
	}
	if err := notifyDetached(ctx, d.notifier, d.notifyTimeout, ev); err != nil {
		log.Printf("dispatch: notify partner %q for booking %d failed: %v", partner.DisplayName, b.ID, err)
		d.alertAdmins(ctx, b.ID, partner, fmt.Sprintf("notification send failed: %v", err))
		return &DispatchResult{
			Booking: b,
			Warning: "partner notification could not be delivered; the request will expire automatically if unanswered",
		}, nil
	}

	expiresAt := d.now().UTC().Add(d.window).Truncate(time.Second)
	sent, err := d.bookings.MarkSent(ctx, b.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("mark booking %d sent: %w", b.ID, err)
	}
	if sent {
		b.Status = model.BookingStatusSent
		b.ExpiresAt = &expiresAt
		log.Printf("dispatch: booking %d sent to partner %q, expires at %s", b.ID, partner.DisplayName, expiresAt.Format(time.RFC3339))
	}
	return &DispatchResult{Booking: b, Delivered: true}, nil
}

// alertAdmins fans a delivery-failure alert out to the configured
// operations chats.  Alert failures are logged and otherwise ignored.
func (d *Dispatcher) alertAdmins(ctx context.Context, bookingID uint64, partner *model.Partner, reason string) {
	text := adminAlertText(bookingID, partner.ID, partner.DisplayName, reason)
	for _, chat := range d.adminChats {
		ev := queue.NotificationEvent{
			ChatID:    chat,
			Kind:      "admin_alert",
			BookingID: bookingID,
			Text:      text,
		}
		if err := notifyDetached(ctx, d.notifier, d.notifyTimeout, ev); err != nil {
			log.Printf("dispatch: alert admin chat %d failed: %v", chat, err)
		}
	}
}
