package service

import (
	"context"
	"time"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/queue"
)

// BookingStore is the persistence boundary the services mutate bookings
// through.  Every transition method is a conditional compare-and-set: it
// reports whether this caller won the transition, and losing (false, nil)
// is a normal outcome of concurrent actors, never an error.
// *repository.BookingRepo satisfies this interface.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	MarkSent(ctx context.Context, id uint64, expiresAt time.Time) (bool, error)
	Decide(ctx context.Context, id uint64, status model.BookingStatus, now time.Time) (bool, error)
	ListExpired(ctx context.Context, now, staleBefore time.Time) ([]model.Booking, error)
	ClaimTimeout(ctx context.Context, id uint64, now, staleBefore time.Time) (bool, error)
	ListByRequester(ctx context.Context, requesterID int64, limit int) ([]model.Booking, error)
}

// ListingDirectory resolves listings to their owning partner and display
// data.  The directory is maintained externally; the services only read it.
type ListingDirectory interface {
	GetByID(ctx context.Context, id uint64) (*model.Listing, error)
}

// PartnerDirectory resolves partner identities to their chat targets.
type PartnerDirectory interface {
	GetByID(ctx context.Context, id uint64) (*model.Partner, error)
}

// Notifier delivers a notification event to the outbound transport.
// Delivery is best-effort: implementations must be time-bounded via the
// context and callers never roll back state because a send failed.
type Notifier interface {
	Send(ctx context.Context, ev queue.NotificationEvent) error
}

// notifyDetached sends a notification decoupled from the caller's request
// lifetime: the send keeps its own short deadline and survives caller
// cancellation, because the state transition it reports has already been
// committed.  The error is returned for logging only.
func notifyDetached(ctx context.Context, n Notifier, timeout time.Duration, ev queue.NotificationEvent) error {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return n.Send(sendCtx, ev)
}
