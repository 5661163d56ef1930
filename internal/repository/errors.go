// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrInsufficientTickets signals that a purchase
// asked for more tickets than the event has left.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEventNotFound is returned when an event ID does not resolve to
// an active event row.
var ErrEventNotFound = errors.New("event not found")

// ErrInsufficientTickets is returned by the reservation transaction
// when the remaining capacity of an event is smaller than the
// requested ticket count. The counter is left untouched.
var ErrInsufficientTickets = errors.New("insufficient tickets")

// ErrSubscriptionNotFound is returned when a user has no active
// subscription for an event. Absence is an expected state on the
// read path; services convert it into default values rather than
// surfacing it to clients.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// ErrInvitationNotFound is returned when no active invitation exists
// for a (user, event) pair. Like ErrSubscriptionNotFound this is a
// normal state, not a failure.
var ErrInvitationNotFound = errors.New("invitation not found")

// ErrPaymentNotFound is returned when a referenced payment row does
// not exist.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, e.g. wishlisting the same event twice. Handlers give
// this a dedicated message distinct from generic validation errors.
var ErrDuplicate = errors.New("duplicate entry")
