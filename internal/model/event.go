package model

import "time"

// Event represents a scheduled, ticketed activity with finite
// capacity.  Events are created by organizers and referenced by
// subscriptions, invitations and wishlist entries.  The Date and
// Time columns are kept separate (DATE and TIME) so that expiry
// can be decided by comparing Date against the current day.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – display name of the event.
//  TypeID          – foreign key into event_types.
//  Date            – day of the event (YYYY-MM-DD).
//  Time            – start time of the event (HH:MM:SS).
//  Location        – free-form venue string.
//  Description     – long description shown on the detail page.
//  NoOfTickets     – total capacity; must be positive.
//  SoldTickets     – tickets sold so far; never exceeds NoOfTickets
//                    and only grows through the reservation
//                    transaction.
//  SubscriptionFee – price per ticket; zero means a free event.
//  CreatedBy       – user ID of the organizer who owns the event.
//  IsActive        – false once the event is expired or deleted.
//  ImageKey        – object key of the event image; exchanged for a
//                    presigned URL before leaving the API.
//  ExternalLinks   – optional links (website, social media).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Event struct {
	ID              uint64    // events.id
	Name            string    // events.name
	TypeID          uint64    // events.type_id
	Date            string    // events.date
	Time            string    // events.time
	Location        string    // events.location
	Description     string    // events.description
	NoOfTickets     uint32    // events.no_of_tickets
	SoldTickets     uint32    // events.sold_tickets
	SubscriptionFee uint32    // events.subscription_fee
	CreatedBy       uint64    // events.created_by
	IsActive        bool      // events.is_active
	ImageKey        string    // events.image_key
	ExternalLinks   string    // events.external_links
	CreatedAt       time.Time // events.created_at
	UpdatedAt       time.Time // events.updated_at
}

// EventType is a category an event belongs to, e.g. concert,
// workshop or meetup.  Rows come from a small lookup table.
type EventType struct {
	ID   uint64 // event_types.id
	Type string // event_types.type
}

// RemainingTickets reports how many tickets are still available.
func (e *Event) RemainingTickets() uint32 {
	if e.SoldTickets >= e.NoOfTickets {
		return 0
	}
	return e.NoOfTickets - e.SoldTickets
}
