package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/partner-booking/internal/model"
)

// ErrPartnerNotFound is returned when a partner id does not exist.
var ErrPartnerNotFound = errors.New("partner not found")

// PartnerRepo provides data access to the partners table.  Partner rows
// are provisioned externally with a hashed connect code; the only write
// this service performs is binding the chat target when a partner redeems
// its code.
type PartnerRepo struct {
	db *sql.DB
}

// NewPartnerRepo returns a new PartnerRepo bound to the provided database.
func NewPartnerRepo(db *sql.DB) *PartnerRepo { return &PartnerRepo{db: db} }

// GetByID returns a single partner or ErrPartnerNotFound.
func (r *PartnerRepo) GetByID(ctx context.Context, id uint64) (*model.Partner, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, display_name, connect_code_hash, chat_id, is_active, created_at
		 FROM partners WHERE id = ?`, id)
	var p model.Partner
	err := row.Scan(&p.ID, &p.DisplayName, &p.ConnectCodeHash, &p.ChatID, &p.IsActive, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// BindChat records the chat target a partner connected from.  Only active
// partners can bind.  Re-connecting overwrites the previous target, which
// lets a partner move to a new device; in-flight bookings keep the target
// bound at their dispatch time.
func (r *PartnerRepo) BindChat(ctx context.Context, id uint64, chatID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE partners SET chat_id = ? WHERE id = ? AND is_active = 1`, chatID, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n >= 1, err
}
