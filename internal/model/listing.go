package model

import "time"

// ListingCategory classifies the kind of service a listing offers.
type ListingCategory string

const (
	CategoryHotel ListingCategory = "hotel"
	CategoryGuide ListingCategory = "guide"
	CategoryTaxi  ListingCategory = "taxi"
	CategoryPlace ListingCategory = "place"
)

// Listing is a partner-owned bookable offering.  The listing directory is
// maintained by an external admin tool; this service only reads it.  A
// listing has exactly one owning partner at any time.
//
// Fields:
//  ID          – primary key identifier.
//  PartnerID   – owning partner; booking requests are routed here.
//  Category    – hotel, guide, taxi or place.
//  Title       – display name shown to users and in notifications.
//  Description – free-form display text.
//  IsActive    – inactive listings cannot receive bookings.
//  CreatedAt   – creation timestamp.
type Listing struct {
	ID          uint64          // listings.id
	PartnerID   uint64          // listings.partner_id
	Category    ListingCategory // listings.category
	Title       string          // listings.title
	Description string          // listings.description
	IsActive    bool            // listings.is_active
	CreatedAt   time.Time       // listings.created_at
}
