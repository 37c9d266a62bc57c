package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/partner-booking/internal/model"
)

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides data access to the bookings table.  It is the sole
// arbiter of concurrent booking mutation: every state transition is a
// single conditional UPDATE whose WHERE clause names the required current
// status, so of any number of racing actors (decision handlers, sweeper
// instances in other worker processes) exactly one update affects the row.
// All timestamps are stored and compared in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, listing_id, requester_id, partner_id, partner_chat_id, payload, status, expires_at, created_at`

// Create inserts a booking in status "new" with the partner identity and
// chat target already bound.  On success the generated id and creation
// timestamp are written back into b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (listing_id, requester_id, partner_id, partner_chat_id, payload, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ListingID, b.RequesterID, b.PartnerID, b.PartnerChatID, []byte(b.Payload), string(model.BookingStatusNew), now,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingStatusNew
	b.CreatedAt = now
	return nil
}

// GetByID returns a single booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// MarkSent performs the new→sent transition, stamping the end of the
// decision window.  It returns false when the booking was not in status
// "new" (already dispatched or resolved), which callers must treat as a
// benign lost race rather than a failure.
func (r *BookingRepo) MarkSent(ctx context.Context, id uint64, expiresAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, expires_at = ? WHERE id = ? AND status = ?`,
		string(model.BookingStatusSent), expiresAt.UTC(), id, string(model.BookingStatusNew),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Decide performs the sent→accepted or sent→rejected transition.  The
// update only matches while the booking is exactly "sent" and its window
// has not yet closed, so a decision can never overwrite a timeout (or
// another decision) and an expired-but-unswept booking cannot be accepted.
// It returns false when zero rows were affected; callers distinguish the
// reason by re-reading the row.
func (r *BookingRepo) Decide(ctx context.Context, id uint64, status model.BookingStatus, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ? AND expires_at > ?`,
		string(status), id, string(model.BookingStatusSent), now.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ListExpired returns the bookings currently eligible for timeout: sent
// bookings whose window has closed, plus bookings stuck in "new" (their
// partner notification never went out) created before staleBefore.  The
// result is only a candidate set; each row must still be claimed with
// ClaimTimeout before acting on it.
func (r *BookingRepo) ListExpired(ctx context.Context, now, staleBefore time.Time) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE (status = ? AND expires_at <= ?) OR (status = ? AND created_at <= ?)`,
		string(model.BookingStatusSent), now.UTC(), string(model.BookingStatusNew), staleBefore.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// ClaimTimeout attempts the transition to "timeout" for one expired
// booking.  The WHERE clause repeats the eligibility conditions, so a
// candidate that was decided (or claimed by a concurrent sweeper) between
// the candidate query and this update affects zero rows and is skipped.
func (r *BookingRepo) ClaimTimeout(ctx context.Context, id uint64, now, staleBefore time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?
		 WHERE id = ? AND ((status = ? AND expires_at <= ?) OR (status = ? AND created_at <= ?))`,
		string(model.BookingStatusTimeout),
		id,
		string(model.BookingStatusSent), now.UTC(),
		string(model.BookingStatusNew), staleBefore.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ListByRequester returns the most recent bookings submitted by a user.
func (r *BookingRepo) ListByRequester(ctx context.Context, requesterID int64, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE requester_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		requesterID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var (
		b       model.Booking
		status  string
		payload []byte
		expires sql.NullTime
	)
	if err := row.Scan(&b.ID, &b.ListingID, &b.RequesterID, &b.PartnerID, &b.PartnerChatID,
		&payload, &status, &expires, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Payload = payload
	b.Status = model.BookingStatus(status)
	if expires.Valid {
		t := expires.Time.UTC()
		b.ExpiresAt = &t
	}
	return &b, nil
}
