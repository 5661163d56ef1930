package model

import "time"

// Subscription is a confirmed ticket purchase by a user for an
// event.  It is created exactly once per purchase inside the
// reservation transaction and never modified afterwards; partial
// refunds are not modelled.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – event the tickets belong to.
//  UserID      – purchasing user.
//  NoOfTickets – number of tickets bought; always positive.  The sum
//                over all subscriptions of an event never exceeds
//                that event's capacity.
//  PaymentID   – reference to an externally produced payment row;
//                nil for free events.
//  IsActive    – false once the subscription is cancelled.
//  CreatedAt   – creation timestamp.
type Subscription struct {
	ID          uint64    // subscriptions.id
	EventID     uint64    // subscriptions.event_id
	UserID      uint64    // subscriptions.user_id
	NoOfTickets uint32    // subscriptions.no_of_tickets
	PaymentID   *uint64   // subscriptions.payment_id (nullable)
	IsActive    bool      // subscriptions.is_active
	CreatedAt   time.Time // subscriptions.created_at
}

// Payment mirrors the payments table.  Payment rows are produced by
// an external processor and treated as immutable facts; this service
// only reads them to display amounts and to derive the percentage
// actually discounted on a purchase.
//
// Fields:
//  ID             – primary key identifier.
//  TotalAmount    – total charged amount.
//  DiscountAmount – portion of the total that was discounted.
type Payment struct {
	ID             uint64 // payments.id
	TotalAmount    uint32 // payments.total_amount
	DiscountAmount uint32 // payments.discount_amount
}

// DiscountPercentage derives the percentage actually given on this
// payment from its stored amounts.  This is a display quantity and is
// intentionally distinct from the pre-purchase eligibility percentage
// carried by an invitation.  Rows where the discount exceeds the total
// should not exist, but the result is capped at 100 so a corrupt row
// cannot render a wrapped figure.
func (p *Payment) DiscountPercentage() uint8 {
	if p.TotalAmount == 0 {
		return 0
	}
	pct := uint64(p.DiscountAmount) * 100 / uint64(p.TotalAmount)
	if pct > 100 {
		return 100
	}
	return uint8(pct)
}
