package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/partner-booking/internal/model"
)

// ErrListingNotFound is returned when a listing id does not exist.
var ErrListingNotFound = errors.New("listing not found")

// ListingRepo provides read access to the listings table.  Listings are
// created and edited by an external admin tool; this service never writes
// them, it only resolves booking targets and serves browse endpoints.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the provided database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

const listingColumns = `id, partner_id, category, title, description, is_active, created_at`

// GetByID returns a single listing (active or not) or ErrListingNotFound.
func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (*model.Listing, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	return l, err
}

// ListActive returns active listings, optionally filtered by category.
// Pass an empty category to list all.  Results are ordered by title so
// browse pages are stable.
func (r *ListingRepo) ListActive(ctx context.Context, category model.ListingCategory) ([]model.Listing, error) {
	q := `SELECT ` + listingColumns + ` FROM listings WHERE is_active = 1`
	args := []interface{}{}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, string(category))
	}
	q += ` ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

// ListByPartner returns every listing owned by a partner, including
// inactive ones, so partners can review their own inventory.
func (r *ListingRepo) ListByPartner(ctx context.Context, partnerID uint64) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE partner_id = ? ORDER BY title`, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectListings(rows)
}

func collectListings(rows *sql.Rows) ([]model.Listing, error) {
	var out []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanListing(row rowScanner) (*model.Listing, error) {
	var (
		l        model.Listing
		category string
	)
	if err := row.Scan(&l.ID, &l.PartnerID, &category, &l.Title, &l.Description, &l.IsActive, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Category = model.ListingCategory(category)
	return &l, nil
}
