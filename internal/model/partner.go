package model

import "time"

// Partner is a service provider (hotel, guide, taxi operator or venue)
// that owns listings and decides on incoming booking requests.  Partners
// are provisioned by an external admin tool with a one-time connect code;
// they bind their chat identity by redeeming that code, which sets ChatID.
//
// Fields:
//  ID              – primary key identifier.
//  DisplayName     – human-readable name used in notifications.
//  ConnectCodeHash – bcrypt hash of the onboarding connect code.
//  ChatID          – bound chat/notification target; 0 until connected.
//  IsActive        – disabled partners cannot connect or receive bookings.
//  CreatedAt       – creation timestamp.
type Partner struct {
	ID              uint64    // partners.id
	DisplayName     string    // partners.display_name
	ConnectCodeHash string    // partners.connect_code_hash
	ChatID          int64     // partners.chat_id (0 = not connected)
	IsActive        bool      // partners.is_active
	CreatedAt       time.Time // partners.created_at
}

// Connected reports whether the partner has bound a chat target and can
// be notified about new bookings.
func (p *Partner) Connected() bool { return p.ChatID != 0 }
