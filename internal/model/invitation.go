package model

import "time"

// Invitation is an organizer-issued, per-user discount offer scoped
// to a single event.  It is addressed to an email; once the invited
// email registers or logs in, the UserID is bound so the discount can
// be resolved for that account.
//
// Fields:
//  ID                 – primary key identifier.
//  EventID            – event the offer applies to.
//  Email              – invited email address.
//  UserID             – resolved user, nil until the email registers.
//  DiscountPercentage – offered discount in the range 0–100.
//  IsActive           – false once revoked by the organizer.
//  CreatedAt          – creation timestamp.
type Invitation struct {
	ID                 uint64    // invitations.id
	EventID            uint64    // invitations.event_id
	Email              string    // invitations.email
	UserID             *uint64   // invitations.user_id (nullable)
	DiscountPercentage uint8     // invitations.discount_percentage
	IsActive           bool      // invitations.is_active
	CreatedAt          time.Time // invitations.created_at
}
