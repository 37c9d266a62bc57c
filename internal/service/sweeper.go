package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/partner-booking/internal/model"
	"github.com/iliyamo/partner-booking/internal/queue"
)

// Sweeper is the periodic reclamation pass that resolves bookings whose
// decision window elapsed without a partner verdict.  Any number of
// sweeper instances may run concurrently across worker processes: each
// candidate row is claimed with a per-row conditional update, so two
// sweepers (or a sweeper and a racing decision) can never both resolve the
// same booking.  The sweeper also reclaims bookings stuck in "new" whose
// partner notification never went out, guaranteeing that every booking
// reaches a terminal state.
type Sweeper struct {
	bookings BookingStore
	listings ListingDirectory
	notifier Notifier

	interval      time.Duration // default 30 seconds
	window        time.Duration // stale cutoff for undispatched bookings
	notifyTimeout time.Duration

	now func() time.Time
}

// NewSweeper constructs a Sweeper.  interval and window fall back to the
// defaults (30s, 5m) when non-positive.
func NewSweeper(bookings BookingStore, listings ListingDirectory, notifier Notifier, interval, window, notifyTimeout time.Duration) *Sweeper {
	if bookings == nil || listings == nil || notifier == nil {
		panic("nil dependency passed to NewSweeper")
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 3 * time.Second
	}
	return &Sweeper{
		bookings:      bookings,
		listings:      listings,
		notifier:      notifier,
		interval:      interval,
		window:        window,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

// Run executes the sweep on a fixed interval until ctx is cancelled.
// A failed sweep is logged and retried on the next tick; the interval
// itself bounds retry frequency, so no extra backoff is applied.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("sweeper: started, interval=%s window=%s", s.interval, s.window)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweeper: expired %d bookings", n)
			}
		}
	}
}

// SweepOnce performs a single reclamation pass and returns the number of
// bookings this instance transitioned to "timeout".  Candidates that were
// resolved between the candidate query and the claim affect zero rows and
// are skipped silently; a notification failure for one booking never
// blocks the rest of the batch.  Running with no eligible rows is a no-op.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now().UTC()
	staleBefore := now.Add(-s.window)

	candidates, err := s.bookings.ListExpired(ctx, now, staleBefore)
	if err != nil {
		return 0, err
	}

	claimed := 0
	for i := range candidates {
		b := &candidates[i]
		won, err := s.bookings.ClaimTimeout(ctx, b.ID, now, staleBefore)
		if err != nil {
			log.Printf("sweeper: claim booking %d failed: %v", b.ID, err)
			continue
		}
		if !won {
			continue // decided, or claimed by a concurrent sweeper
		}
		claimed++
		b.Status = model.BookingStatusTimeout

		title := ""
		if l, err := s.listings.GetByID(ctx, b.ListingID); err == nil {
			title = l.Title
		}
		ev := queue.NotificationEvent{
			ChatID:    b.RequesterID,
			Kind:      "booking_timeout",
			BookingID: b.ID,
			Text:      outcomeText(b, title, model.BookingStatusTimeout),
		}
		if err := notifyDetached(ctx, s.notifier, s.notifyTimeout, ev); err != nil {
			log.Printf("sweeper: notify requester %d for booking %d failed: %v", b.RequesterID, b.ID, err)
		}
	}
	return claimed, nil
}
